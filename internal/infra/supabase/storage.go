package supabase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/kamau/sugarbloom-api/internal/domain"
	"github.com/kamau/sugarbloom-api/internal/infra/resilience"
)

// Storage wraps the hosted object storage API. Uploads pass through a
// bulkhead so a burst of image submissions cannot exhaust the HTTP client.
type Storage struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	serviceRoleKey string
	bulkhead       *resilience.Bulkhead
	logger         *zap.Logger
}

// NewStorage creates a storage client.
func NewStorage(httpClient *http.Client, baseURL, apiKey, serviceRoleKey string, bulkhead *resilience.Bulkhead, logger *zap.Logger) *Storage {
	return &Storage{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         apiKey,
		serviceRoleKey: serviceRoleKey,
		bulkhead:       bulkhead,
		logger:         logger,
	}
}

// Upload stores a file at bucket/path.
func (s *Storage) Upload(ctx context.Context, bucket, path string, file *domain.UploadedFile) error {
	ctx, span := tracer.Start(ctx, "Storage.Upload")
	defer span.End()
	span.SetAttributes(
		attribute.String("storage.bucket", bucket),
		attribute.String("storage.path", path),
	)

	if err := s.bulkhead.Acquire(ctx); err != nil {
		return &domain.ErrTimeout{Operation: "storage upload"}
	}
	defer s.bulkhead.Release()

	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, bucket, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(file.Data))
	if err != nil {
		return err
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.serviceRoleKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("storage: upload failed",
			zap.String("bucket", bucket),
			zap.String("path", path),
			zap.Error(err),
		)
		return &domain.ErrExternalService{Service: "supabase/storage", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		s.logger.Warn("storage: upload non-2xx",
			zap.String("bucket", bucket),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return &domain.ErrExternalService{
			Service: "supabase/storage",
			Err:     fmt.Errorf("upload returned %d: %s", resp.StatusCode, string(body)),
		}
	}

	s.logger.Debug("storage: upload OK",
		zap.String("bucket", bucket),
		zap.String("path", path),
	)
	return nil
}

// PublicURL returns the stable public URL for an object in a public bucket.
func (s *Storage) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, bucket, path)
}
