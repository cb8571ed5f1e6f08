package fetch

import (
	"bytes"
	"context"
	"image/color"
	"image/png"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	return Options{
		RetryMax:     2,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
		Timeout:      time.Second,
	}
}

func testFetcher() *Fetcher {
	return New(slog.New(slog.DiscardHandler), testOptions())
}

func TestGetSuccess(t *testing.T) {
	body := []byte("fake-image-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		w.Write(body)
	}))
	defer srv.Close()

	data, err := testFetcher().Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, body, data)
}

func TestGetRetriesTransientErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	data, err := testFetcher().Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), data)
	assert.Equal(t, int32(3), hits.Load())
}

func TestGetExhaustsRetryBudget(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testFetcher().Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, int32(3), hits.Load(), "initial attempt plus RetryMax retries")
}

func TestGetDoesNotRetryNotFound(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testFetcher().Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestGetOrPlaceholderDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	data := testFetcher().GetOrPlaceholder(context.Background(), srv.URL, "Lead0")
	require.NotEmpty(t, data)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err, "placeholder must be a valid PNG")
	assert.Equal(t, placeholderWidth, img.Bounds().Dx())
	assert.Equal(t, placeholderHeight, img.Bounds().Dy())
}

func TestGetOrPlaceholderPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("real-bytes"))
	}))
	defer srv.Close()

	data := testFetcher().GetOrPlaceholder(context.Background(), srv.URL, "Lead0")
	assert.Equal(t, []byte("real-bytes"), data)
}

func TestPlaceholderCanvas(t *testing.T) {
	data := Placeholder("Image Not Found:\nLead3")
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, placeholderWidth, img.Bounds().Dx())
	require.Equal(t, placeholderHeight, img.Bounds().Dy())

	// Border pixels are light gray, interior is white.
	assert.Equal(t, placeholderBorder, color.RGBAModel.Convert(img.At(0, 0)))
	assert.Equal(t, placeholderBg, color.RGBAModel.Convert(img.At(placeholderWidth/2, 10)))
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, 3, opts.RetryMax)
	assert.Equal(t, 10*time.Second, opts.Timeout)
}
