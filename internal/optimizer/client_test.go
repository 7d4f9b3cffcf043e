package optimizer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/SlabPlan/internal/model"
)

const sampleResponse = `{
  "global_metrics": {"material_type": "sheet", "total_sheets_used": 1, "total_placed_pieces": 2, "total_pieces": 3},
  "sheets": [{
    "sheet_index": 1,
    "sheet_dimensions": {"width": 2440, "height": 1220},
    "placed_pieces": [
      {"id": "shelf-1", "x": 0, "y": 0, "width": 600, "height": 300, "rotated": false},
      {"id": "shelf-2", "x": 600, "y": 0, "width": 600, "height": 300, "rotated": true}
    ],
    "metrics": {"piece_count": 2, "efficiency_percentage": 12.1}
  }],
  "impossible_to_place_ids": ["huge"],
  "unplaced_piece_ids": []
}`

func testRequest() model.OptimizationRequest {
	req := model.NewRequest(model.MaterialSheet, model.Dimensions{Width: 2440, Height: 1220}, 3)
	req.Pieces = append(req.Pieces, model.NewRequestPiece("shelf", 600, 300, 2), model.NewRequestPiece("huge", 5000, 300, 1))
	return req
}

func quietLogger() *log.Logger {
	l := log.New(io.Discard)
	l.SetLevel(log.FatalLevel)
	return l
}

func TestOptimize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, OptimizePath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req model.OptimizationRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, model.MaterialSheet, req.MaterialType)
		assert.Len(t, req.Pieces, 2)
		assert.Equal(t, 3, req.TotalPieces())

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	c := New(server.URL+"/", time.Second, WithLogger(quietLogger()))
	result, err := c.Optimize(context.Background(), testRequest())
	require.NoError(t, err)

	require.Len(t, result.Sheets, 1)
	pieces := result.Sheets[0].PlacedPieces
	require.Len(t, pieces, 2)
	assert.Equal(t, "shelf", pieces[1].BaseID)
	assert.Equal(t, 2, pieces[1].InstanceIndex)
	assert.True(t, pieces[1].Rotated)
	assert.Equal(t, []string{"huge"}, result.ImpossibleToPlaceIDs)
}

func TestOptimizeRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	c := New(server.URL, time.Second, WithLogger(quietLogger()), WithRetry(3, time.Millisecond))
	result, err := c.Optimize(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Len(t, result.Sheets, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestOptimizeGivesUpAfterAttempts(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail": "solver crashed"}`))
	}))
	defer server.Close()

	c := New(server.URL, time.Second, WithLogger(quietLogger()), WithRetry(2, time.Millisecond))
	_, err := c.Optimize(context.Background(), testRequest())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "solver crashed", apiErr.Detail())
	assert.Equal(t, int32(2), calls.Load())
}

func TestOptimizeDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail": [{"loc": ["body", "kerf"], "msg": "field required"}]}`))
	}))
	defer server.Close()

	c := New(server.URL, time.Second, WithLogger(quietLogger()), WithRetry(3, time.Millisecond))
	_, err := c.Optimize(context.Background(), testRequest())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "optimizer returned 422: field required", apiErr.Error())
	assert.Equal(t, int32(1), calls.Load())
}

func TestOptimizeNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c := New(url, time.Second, WithLogger(quietLogger()), WithRetry(2, time.Millisecond))
	_, err := c.Optimize(context.Background(), testRequest())
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestOptimizeBadBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	c := New(server.URL, time.Second, WithLogger(quietLogger()), WithRetry(3, time.Millisecond))
	_, err := c.Optimize(context.Background(), testRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestRetry(t *testing.T) {
	t.Run("non-retryable returns immediately", func(t *testing.T) {
		calls := 0
		want := errors.New("fatal")
		err := Retry(context.Background(), 5, time.Millisecond, func() error {
			calls++
			return want
		})
		assert.ErrorIs(t, err, want)
		assert.Equal(t, 1, calls)
	})

	t.Run("cancelled while waiting", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		err := Retry(ctx, 5, time.Hour, func() error {
			cancel()
			return &RetryableError{Err: errors.New("transient")}
		})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("zero attempts runs once", func(t *testing.T) {
		calls := 0
		require.NoError(t, Retry(context.Background(), 0, time.Millisecond, func() error {
			calls++
			return nil
		}))
		assert.Equal(t, 1, calls)
	})
}

func TestAPIErrorDetail(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"detail": "bad sheet"}`, "bad sheet"},
		{`{"detail": [{"msg": "a"}, {"msg": "b"}]}`, "a; b"},
		{"plain text\n", "plain text"},
		{`{"other": 1}`, `{"other": 1}`},
	}
	for _, tt := range tests {
		e := &APIError{Status: 400, Body: tt.body}
		assert.Equal(t, tt.want, e.Detail(), "body %q", tt.body)
	}
}
