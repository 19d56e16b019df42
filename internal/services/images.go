// Package services implements the caching and synchronization core: the
// TMDB catalog client, image encoding, the read-through cache
// orchestration, and marker synchronization.
package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bgergo/reelcache/internal/constants"
	"github.com/bgergo/reelcache/pkg/httputil"
	"github.com/bgergo/reelcache/pkg/logger"
)

// ErrFetchFailed indicates an image download or decode failed. Callers
// leave the affected reference unconverted; the next enrichment pass
// retries.
var ErrFetchFailed = errors.New("image fetch failed")

// ImageService downloads images and converts them into self-contained
// data URIs that render without further network access.
type ImageService struct {
	httpClient *http.Client
	logger     logger.Logger
}

// NewImageService creates an image service with the default HTTP client.
func NewImageService(log logger.Logger) *ImageService {
	return &ImageService{
		httpClient: httputil.NewHTTPClient(constants.ImageFetchTimeout),
		logger:     log,
	}
}

// IsEncoded reports whether an image reference is already in encoded
// form. A freshly mapped TMDB reference is a path starting with '/';
// anything else (non-empty) has been converted and must not be fetched
// again.
func IsEncoded(ref string) bool {
	return ref != "" && !strings.HasPrefix(ref, "/")
}

// FetchAsDataURI downloads the image at url and returns it as a
// data:<type>;base64 string. An empty url yields ("", nil), which is
// distinct from a failed fetch.
func (s *ImageService) FetchAsDataURI(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d for %s", ErrFetchFailed, resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
