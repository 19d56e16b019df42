package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bgergo/reelcache/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEncoded(t *testing.T) {
	assert.False(t, IsEncoded(""))
	assert.False(t, IsEncoded("/abc123.jpg"))
	assert.True(t, IsEncoded("data:image/jpeg;base64,AAAA"))
}

func TestFetchAsDataURI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("fake-png-bytes"))
	}))
	defer srv.Close()

	svc := NewImageService(logger.New())
	got, err := svc.FetchAsDataURI(context.Background(), srv.URL+"/poster.png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "data:image/png;base64,"))
	assert.True(t, IsEncoded(got))
}

func TestFetchAsDataURIEmptyURL(t *testing.T) {
	svc := NewImageService(logger.New())

	got, err := svc.FetchAsDataURI(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFetchAsDataURIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	svc := NewImageService(logger.New())
	_, err := svc.FetchAsDataURI(context.Background(), srv.URL+"/missing.jpg")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
}
