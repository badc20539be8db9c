// internal/workers/verification/verify-url/handler_test.go
package verifyurl

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	stderrors "claimcheck/internal/common/errors"
	"claimcheck/internal/common/logger"
	"claimcheck/internal/models"
)

// ==========================
// Mocks
// ==========================

type mockExtractor struct{ mock.Mock }

func (m *mockExtractor) ExtractFromURL(ctx context.Context, rawURL string) (*models.ExtractURLResult, error) {
	args := m.Called(ctx, rawURL)
	res, _ := args.Get(0).(*models.ExtractURLResult)
	return res, args.Error(1)
}

type mockRawChecker struct{ mock.Mock }

func (m *mockRawChecker) CheckRawText(ctx context.Context, rawText string) (*models.VerificationResult, error) {
	args := m.Called(ctx, rawText)
	res, _ := args.Get(0).(*models.VerificationResult)
	return res, args.Error(1)
}

type mockEnricher struct{ mock.Mock }

func (m *mockEnricher) Suggest(ctx context.Context, claims, ingredients string) []models.AlternativeProduct {
	args := m.Called(ctx, claims, ingredients)
	res, _ := args.Get(0).([]models.AlternativeProduct)
	return res
}

type fixture struct {
	extractor *mockExtractor
	raw       *mockRawChecker
	enricher  *mockEnricher
	handler   *Handler
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		extractor: new(mockExtractor),
		raw:       new(mockRawChecker),
		enricher:  new(mockEnricher),
	}
	h, err := NewHandler(HandlerOptions{
		Extractor:  f.extractor,
		RawChecker: f.raw,
		Enricher:   f.enricher,
		Logger:     logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	f.handler = h
	return f
}

func (f *fixture) assertExpectations(t *testing.T) {
	f.extractor.AssertExpectations(t)
	f.raw.AssertExpectations(t)
	f.enricher.AssertExpectations(t)
}

const productURL = "https://shop.example.com/products/granola"

// ==========================
// Branching Tests
// ==========================

func TestHandler_VerifyURL_NotParsedUsesRawTextPath(t *testing.T) {
	f := newFixture(t)
	raw := "Crunchy granola. Ingredients: oats, honey, almonds"
	alts := []models.AlternativeProduct{{ProductName: "Muesli"}}

	f.extractor.On("ExtractFromURL", mock.Anything, productURL).
		Return(&models.ExtractURLResult{Status: models.ExtractStatusNotParsed, RawResponse: raw}, nil)
	f.raw.On("CheckRawText", mock.Anything, raw).
		Return(&models.VerificationResult{Verdict: "trustworthy", TrustabilityScore: 77}, nil)
	f.enricher.On("Suggest", mock.Anything, raw, "").Return(alts)

	out, err := f.handler.VerifyURL(context.Background(), productURL)

	require.NoError(t, err)
	assert.Equal(t, models.ExtractStatusNotParsed, out.Status)
	assert.Equal(t, 77, out.Result.TrustabilityScore)
	assert.Equal(t, alts, out.Result.Alternatives)
	f.assertExpectations(t)
}

func TestHandler_VerifyURL_NotParsedEnrichmentFailureIsInvisible(t *testing.T) {
	f := newFixture(t)
	f.extractor.On("ExtractFromURL", mock.Anything, productURL).
		Return(&models.ExtractURLResult{Status: models.ExtractStatusNotParsed, RawResponse: "text"}, nil)
	f.raw.On("CheckRawText", mock.Anything, "text").
		Return(&models.VerificationResult{Verdict: "misleading"}, nil)
	f.enricher.On("Suggest", mock.Anything, "text", "").Return(nil)

	out, err := f.handler.VerifyURL(context.Background(), productURL)

	require.NoError(t, err)
	assert.Nil(t, out.Result.Alternatives)
}

func TestHandler_VerifyURL_OtherStatusFails(t *testing.T) {
	tests := []struct {
		name       string
		extraction *models.ExtractURLResult
	}{
		{"unknown status", &models.ExtractURLResult{Status: "error", RawResponse: "x", Message: "site blocked scraping"}},
		{"structured success", &models.ExtractURLResult{
			Status:       models.ExtractStatusSuccess,
			RawResponse:  `{"claims":"High fiber","ingredients":"oats, sugar"}`,
			Alternatives: []models.AlternativeProduct{{ProductName: "Plain Oats"}},
		}},
		{"unstructured success", &models.ExtractURLResult{Status: models.ExtractStatusSuccess, RawResponse: "just scraped prose"}},
		{"not parsed without text", &models.ExtractURLResult{Status: models.ExtractStatusNotParsed}},
		{"empty status", &models.ExtractURLResult{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.extractor.On("ExtractFromURL", mock.Anything, productURL).Return(tt.extraction, nil)

			out, err := f.handler.VerifyURL(context.Background(), productURL)

			assert.Nil(t, out)
			assert.ErrorIs(t, err, ErrExtractionFailed)
			stdErr, ok := stderrors.AsStandard(err)
			require.True(t, ok)
			assert.Equal(t, stderrors.ErrCodeExtractionFailed, stdErr.Code)
			assert.Equal(t, "Failed to extract data from URL", stdErr.Message)
			f.raw.AssertNotCalled(t, "CheckRawText", mock.Anything, mock.Anything)
			f.enricher.AssertNotCalled(t, "Suggest", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_VerifyURL_InvalidURL(t *testing.T) {
	for _, in := range []string{"", "not a url", "shop.example.com/p", "/relative/path", "https://"} {
		t.Run(in, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.handler.VerifyURL(context.Background(), in)

			stdErr, ok := stderrors.AsStandard(err)
			require.True(t, ok)
			assert.Equal(t, InvalidURLMessage, stdErr.Message)
			f.extractor.AssertNotCalled(t, "ExtractFromURL", mock.Anything, mock.Anything)
		})
	}
}

func TestHandler_VerifyURL_PropagatesStageErrors(t *testing.T) {
	boom := stderrors.NewBackendStatusError("/check-raw", 500, errors.New("internal"))

	f := newFixture(t)
	f.extractor.On("ExtractFromURL", mock.Anything, productURL).
		Return(&models.ExtractURLResult{Status: models.ExtractStatusNotParsed, RawResponse: "t"}, nil)
	f.raw.On("CheckRawText", mock.Anything, "t").Return(nil, boom)

	_, err := f.handler.VerifyURL(context.Background(), productURL)

	assert.ErrorIs(t, err, boom)
	f.enricher.AssertNotCalled(t, "Suggest", mock.Anything, mock.Anything, mock.Anything)
}

func TestNewHandler_RequiresCollaborators(t *testing.T) {
	_, err := NewHandler(HandlerOptions{})
	assert.Error(t, err)
}
