// Package imagehost talks to the third-party image hosting collaborator. The
// core hands it a binary blob plus a namespace label and consumes the public
// URL it returns; the blob's pixels are never inspected here.
package imagehost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ripple/internal/models"

	"github.com/google/uuid"
)

// MaxUploadBytes is the size ceiling accepted by the collaborator.
const MaxUploadBytes = 10000000 // 10MB

var allowedExtensions = map[string]string{
	"image/jpeg": "jpeg",
	"image/png":  "png",
	"image/gif":  "gif",
}

// Blob is an image payload destined for the host.
type Blob struct {
	Data        []byte
	ContentType string
	// Name is the caller-supplied original name, used only in error messages.
	Name string
}

// Host uploads a blob under a namespace label and returns its public URL.
type Host interface {
	Upload(ctx context.Context, blob Blob, namespace string) (string, error)
}

// Validate checks the blob's declared type and size against the
// collaborator's limits.
func Validate(blob Blob) error {
	if _, ok := allowedExtensions[blob.ContentType]; !ok {
		return models.NewValidationError(fmt.Sprintf("%s has an invalid file type", blob.Name))
	}
	if len(blob.Data) > MaxUploadBytes {
		return models.NewValidationError(fmt.Sprintf("%s should be less than 10MB", blob.Name))
	}
	return nil
}

// formatName derives the hosted object name from the namespace label and
// content type.
func formatName(namespace, contentType string) string {
	return fmt.Sprintf("%s/%s.%s", namespace, uuid.NewString(), allowedExtensions[contentType])
}

// HTTPHost is the HTTP client for the image hosting collaborator.
type HTTPHost struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPHost creates a host client for the given endpoint.
func NewHTTPHost(baseURL, apiKey string) *HTTPHost {
	return &HTTPHost{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload validates the blob, posts it under a derived name and returns the
// public URL from the collaborator's response.
func (h *HTTPHost) Upload(ctx context.Context, blob Blob, namespace string) (string, error) {
	if err := Validate(blob); err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/upload?name=%s", h.baseURL, formatName(namespace, blob.ContentType))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(blob.Data))
	if err != nil {
		return "", models.NewInternalError(err)
	}
	req.Header.Set("Content-Type", blob.ContentType)
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", models.NewInternalError(fmt.Errorf("image host returned %d: %s", resp.StatusCode, string(body)))
	}

	var payload struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", models.NewInternalError(err)
	}
	if payload.URL == "" {
		return "", models.NewInternalError(fmt.Errorf("image host returned no URL"))
	}
	return payload.URL, nil
}
