package upload

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"docaudit/internal/storage"
)

const presignExpiry = 15 * time.Minute

// PresignedURLStrategy asks the elevated client for a pre-signed PUT URL and
// uploads directly to it with a plain HTTP client.
type PresignedURLStrategy struct {
	Store  storage.Storage
	Client *http.Client
}

func (s *PresignedURLStrategy) Name() string { return "presigned_url" }

func (s *PresignedURLStrategy) Attempt(ctx context.Context, key string, data []byte, contentType string) error {
	u, err := s.Store.PresignPut(ctx, key, presignExpiry)
	if err != nil {
		return fmt.Errorf("presign: %v", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %v", err)
	}
	req.ContentLength = int64(len(data))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	cli := s.Client
	if cli == nil {
		cli = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	resp, err := cli.Do(req)
	if err != nil {
		return fmt.Errorf("put: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("put: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// SDKStrategy uploads through the object-storage SDK under one authority.
type SDKStrategy struct {
	StrategyName string
	Store        storage.Storage
}

func (s *SDKStrategy) Name() string { return s.StrategyName }

func (s *SDKStrategy) Attempt(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.Store.Put(ctx, key, bytes.NewReader(data), storage.PutObjectOptions{
		Size:        int64(len(data)),
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("sdk put: %v", err)
	}
	return nil
}

// RESTStrategy uploads with a raw signed HTTP PUT against the storage REST
// endpoint, sidestepping SDK behavior entirely.
type RESTStrategy struct {
	StrategyName string
	Uploader     *storage.RESTUploader
}

func (s *RESTStrategy) Name() string { return s.StrategyName }

func (s *RESTStrategy) Attempt(ctx context.Context, key string, data []byte, contentType string) error {
	return s.Uploader.Put(ctx, key, data, contentType)
}

// UnavailableStrategy stands in for an authority that was never constructed
// (no caller-scoped credentials). It always fails with a recorded reason so
// the trace stays complete.
type UnavailableStrategy struct {
	StrategyName string
}

func (s *UnavailableStrategy) Name() string { return s.StrategyName }

func (s *UnavailableStrategy) Attempt(context.Context, string, []byte, string) error {
	return fmt.Errorf("not_configured")
}

// NewDefaultChain assembles the production strategy order:
//  1. pre-signed PUT URL under elevated authority
//  2. SDK put under elevated authority
//  3. SDK put under caller authority
//  4. raw signed REST PUT under elevated authority
//  5. raw signed REST PUT under caller authority
//
// Caller-authority slots degrade to UnavailableStrategy when no caller-scoped
// client or credential set exists.
func NewDefaultChain(elevated storage.Storage, caller storage.Storage, elevatedREST, callerREST *storage.RESTUploader) *Chain {
	strategies := []Strategy{
		&PresignedURLStrategy{Store: elevated},
		&SDKStrategy{StrategyName: "sdk_elevated", Store: elevated},
	}
	if caller != nil {
		strategies = append(strategies, &SDKStrategy{StrategyName: "sdk_caller", Store: caller})
	} else {
		strategies = append(strategies, &UnavailableStrategy{StrategyName: "sdk_caller"})
	}
	if elevatedREST != nil {
		strategies = append(strategies, &RESTStrategy{StrategyName: "rest_elevated", Uploader: elevatedREST})
	} else {
		strategies = append(strategies, &UnavailableStrategy{StrategyName: "rest_elevated"})
	}
	if callerREST != nil {
		strategies = append(strategies, &RESTStrategy{StrategyName: "rest_caller", Uploader: callerREST})
	} else {
		strategies = append(strategies, &UnavailableStrategy{StrategyName: "rest_caller"})
	}
	return NewChain(strategies...)
}
