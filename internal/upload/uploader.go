package upload

import "context"

// Uploader is the capability consumed by the orchestrators and the version
// engine. Chain is the production implementation.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (Result, error)
}

var _ Uploader = (*Chain)(nil)
