package store

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

const maxImageBytes = 20 << 20

// UploadImage downloads uri and stores it in the object store under
// images/<unix-millis>-photo.jpg. It returns the public URL, or "" when any
// step fails.
func (s *Store) UploadImage(ctx context.Context, uri string) string {
	if uri == "" {
		s.logger.Error("No URI provided for upload")
		return ""
	}
	if s.bucket == nil {
		s.logger.Error("Object store is not configured")
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		s.logger.Error("Invalid image URI", zap.String("uri", uri), zap.Error(err))
		return ""
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("Failed to fetch image", zap.String("uri", uri), zap.Error(err))
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Error("Failed to fetch image", zap.String("uri", uri), zap.Int("status", resp.StatusCode))
		return ""
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		s.logger.Error("Failed to read image", zap.String("uri", uri), zap.Error(err))
		return ""
	}
	if len(data) > maxImageBytes {
		s.logger.Error("Image exceeds size limit", zap.String("uri", uri), zap.Int("limit_bytes", maxImageBytes))
		return ""
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	key := fmt.Sprintf("images/%d-photo.jpg", s.now().UnixMilli())
	if err := s.bucket.Upload(ctx, key, data, contentType); err != nil {
		s.logger.Error("Error uploading image", zap.String("key", key), zap.Error(err))
		return ""
	}

	url := s.bucket.URL(key)
	s.logger.Info("Upload successful", zap.String("url", url))
	return url
}
