// internal/workers/verification/check-raw/handler_test.go
package checkraw

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "claimcheck/internal/common/errors"
	backendhttp "claimcheck/internal/common/http"
	"claimcheck/internal/common/logger"
	"claimcheck/internal/models"
)

func newTestHandler(t *testing.T, fn http.HandlerFunc) *Handler {
	server := httptest.NewServer(fn)
	t.Cleanup(server.Close)
	client := backendhttp.NewClient(server.URL, 5*time.Second)
	return NewHandler(LoadConfig(), client, logger.NewTestLogger(t))
}

func TestHandler_CheckRawText_ForwardsVerbatim(t *testing.T) {
	raw := "Protein Bar & Co - 20g protein!\nIngredients: whey (milk), cocoa; 100% natural?"
	want := models.VerificationResult{Verdict: "trustworthy", Why: "Matches label", TrustabilityScore: 81}

	handler := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/check-raw", r.URL.Path)
		assert.Equal(t, raw, r.URL.Query().Get("raw_text"))
		body, _ := io.ReadAll(r.Body)
		assert.Empty(t, body)

		out, _ := models.EncodeVerification(want)
		w.Write(out)
	})

	got, err := handler.CheckRawText(context.Background(), raw)

	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestHandler_CheckRawText_Errors(t *testing.T) {
	tests := []struct {
		name     string
		fn       http.HandlerFunc
		sentinel error
		code     stderrors.ErrorCode
	}{
		{
			name: "status error",
			fn: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
			},
			sentinel: ErrVerificationFailed,
			code:     stderrors.ErrCodeBackendStatus,
		},
		{
			name: "payload decode",
			fn: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"extracted-text": "{\"verdict\": "}`))
			},
			sentinel: ErrParseFailed,
			code:     stderrors.ErrCodePayloadDecodeFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestHandler(t, tt.fn).CheckRawText(context.Background(), "text")
			assert.ErrorIs(t, err, tt.sentinel)
			assert.True(t, stderrors.HasCode(err, tt.code))
		})
	}
}

func TestHandler_Execute_RequiresText(t *testing.T) {
	handler := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend must not be called")
	})

	_, err := handler.Execute(context.Background(), &Input{RawText: "  "})

	assert.True(t, stderrors.HasCode(err, stderrors.ErrCodeInvalidInput))
}
