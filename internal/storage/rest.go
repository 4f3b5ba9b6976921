package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"

	"github.com/minio/minio-go/v7/pkg/signer"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"docaudit/internal/config"
)

// RESTUploader writes objects with a plain signed HTTP PUT against the
// storage REST endpoint, bypassing the SDK entirely. Some bucket policies
// reject SDK write paths that a raw PUT passes, so the upload strategy chain
// keeps this as its last resort.
type RESTUploader struct {
	endpoint  *url.URL
	bucket    string
	accessKey string
	secretKey string
	client    *http.Client
}

// NewRESTUploader builds an uploader from a credential set. It performs no
// network calls; failures surface on first use.
func NewRESTUploader(cfg config.StorageConfig) (*RESTUploader, error) {
	if !cfg.Configured() || cfg.Bucket == "" {
		return nil, fmt.Errorf("rest uploader: storage credentials and bucket are required")
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	u, err := url.Parse(scheme + "://" + cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("rest uploader: parse endpoint: %w", err)
	}
	return &RESTUploader{
		endpoint:  u,
		bucket:    cfg.Bucket,
		accessKey: cfg.AccessKey,
		secretKey: cfg.SecretKey,
		client:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}, nil
}

// Put uploads the payload with a SigV4-signed PUT. Overwrites any existing
// object under the key.
func (r *RESTUploader) Put(ctx context.Context, key string, data []byte, contentType string) error {
	target := *r.endpoint
	target.Path = "/" + r.bucket + "/" + key

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target.String(), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.ContentLength = int64(len(data))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	sum := sha256.Sum256(data)
	req.Header.Set("X-Amz-Content-Sha256", hex.EncodeToString(sum[:]))

	signed := signer.SignV4(*req, r.accessKey, r.secretKey, "", "us-east-1")

	resp, err := r.client.Do(signed)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("put %s: unexpected status %d", key, resp.StatusCode)
	}
	return nil
}
