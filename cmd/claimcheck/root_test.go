// cmd/claimcheck/root_test.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimcheck/internal/app"
	"claimcheck/internal/common/auth"
	"claimcheck/internal/common/config"
	stderrors "claimcheck/internal/common/errors"
	"claimcheck/internal/common/logger"
	"claimcheck/internal/models"
	verifymanual "claimcheck/internal/workers/verification/verify-manual"
)

// backendStub serves the REST endpoints the CLI reaches through the services.
func backendStub(t *testing.T) *httptest.Server {
	t.Helper()

	verdict, err := json.Marshal(models.VerificationResult{
		Verdict:           models.VerdictMisleading,
		Why:               "Cane sugar is listed",
		TrustabilityScore: 22,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/manual-check":
			json.NewEncoder(w).Encode(map[string]string{"extracted-text": string(verdict)})
		case "/suggestions":
			w.WriteHeader(http.StatusBadGateway)
		case "/chat":
			var req models.ChatRequest
			json.NewDecoder(r.Body).Decode(&req)
			json.NewEncoder(w).Encode(models.ChatResponse{Answer: `{"response":"You asked: ` + req.Question + `"}`})
		case "/check-health":
			json.NewEncoder(w).Encode(models.HealthCheckResponse{
				OverallStatus: "Fair",
				BMI:           models.BMI{Value: 22.9, Category: "Normal"},
				HealthRisks:   []models.HealthRisk{{Risk: "Hypertension", Severity: "moderate"}},
			})
		case "/get-from-s3":
			w.Write([]byte(`{"data":{"products":[{"title":"Oat Crunch","brand":"Acme","matchScore":81}]}}`))
		case "/check-image":
			w.Write([]byte(`{"extracted-text":"INGREDIENTS: oats, dates"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testBuilder(t *testing.T, baseURL string, signedIn bool) envBuilder {
	return func(context.Context, *rootOptions) (*env, error) {
		cfg := &config.Config{
			API:     config.APIConfig{BaseURL: baseURL, Timeout: 5000, UserAgent: "claimcheck-test"},
			Catalog: config.CatalogConfig{CacheKey: "catalog:test", CacheTTL: 60000},
		}
		log := logger.NewTestLogger(t)
		services, err := app.New(cfg, nil, log)
		if err != nil {
			return nil, err
		}
		return &env{services: services, gate: auth.Static(signedIn), log: log}, nil
	}
}

func run(t *testing.T, build envBuilder, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(build)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVerifyManual(t *testing.T) {
	srv := backendStub(t)

	out, err := run(t, testBuilder(t, srv.URL, true), "",
		"verify", "manual", "--claims", "No added sugar", "--ingredients", "oats, cane sugar")

	require.NoError(t, err)
	assert.Contains(t, out, "MISLEADING")
	assert.Contains(t, out, "22/100")
	assert.Contains(t, out, "Cane sugar is listed")
	assert.NotContains(t, out, "Alternatives")
}

func TestVerifyManual_JSON(t *testing.T) {
	srv := backendStub(t)

	out, err := run(t, testBuilder(t, srv.URL, true), "",
		"--json", "verify", "manual", "--claims", "No added sugar", "--ingredients", "oats")

	require.NoError(t, err)
	var got models.VerificationResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, models.VerdictMisleading, got.Verdict)
	assert.Equal(t, 22, got.TrustabilityScore)
}

func TestVerifyManual_EmptyInputsRejected(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	tests := map[string][]string{
		"no flags":          {"verify", "manual"},
		"claims only":       {"verify", "manual", "--claims", "No added sugar"},
		"blank ingredients": {"verify", "manual", "--claims", "No added sugar", "--ingredients", "   "},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := run(t, testBuilder(t, srv.URL, true), "", args...)
			require.Error(t, err)
			assert.True(t, stderrors.HasCode(err, stderrors.ErrCodeInvalidInput), "got %v", err)
			assert.Contains(t, err.Error(), verifymanual.MissingInputMessage)
		})
	}
	assert.Zero(t, calls.Load())
}

func TestVerifyManual_PlainWhenNotTerminal(t *testing.T) {
	srv := backendStub(t)

	for _, flags := range [][]string{nil, {"--no-color"}} {
		args := append(flags, "verify", "manual", "--claims", "No added sugar", "--ingredients", "oats, cane sugar")
		out, err := run(t, testBuilder(t, srv.URL, true), "", args...)

		require.NoError(t, err)
		assert.Contains(t, out, "MISLEADING")
		assert.NotContains(t, out, "\x1b[")
	}
}

func TestSessionRequired(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	tests := [][]string{
		{"verify", "manual", "--claims", "a", "--ingredients", "b"},
		{"verify", "url", "https://shop.example.com/p/1"},
		{"health"},
		{"chat", "--message", "hi"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args[:1], " "), func(t *testing.T) {
			_, err := run(t, testBuilder(t, srv.URL, false), "", args...)
			assert.True(t, stderrors.HasCode(err, stderrors.ErrCodeSessionRequired), "got %v", err)
		})
	}
	assert.Zero(t, calls.Load())
}

func TestHealth_DefaultsAndOverrides(t *testing.T) {
	var got models.HealthCheckInput
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"overall_status":"Good","bmi":{"value":21.5,"category":"Normal"}}`))
	}))
	defer srv.Close()

	out, err := run(t, testBuilder(t, srv.URL, true), "", "health", "--age", "52", "--stress", "3")

	require.NoError(t, err)
	want := models.DefaultHealthCheckInput()
	want.Age = 52
	want.Stress = 3
	assert.Equal(t, want, got)
	assert.Contains(t, out, "Good")
	assert.Contains(t, out, "21.5 (Normal)")
}

func TestChat_REPL(t *testing.T) {
	srv := backendStub(t)

	out, err := run(t, testBuilder(t, srv.URL, true), "is oat milk vegan?\n/reset\n\n/quit\n", "chat")

	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "How can I help you today?"))
	assert.Contains(t, out, "assistant> You asked: is oat milk vegan?")
}

func TestChat_SingleMessage(t *testing.T) {
	srv := backendStub(t)

	out, err := run(t, testBuilder(t, srv.URL, true), "", "chat", "-m", "hello")

	require.NoError(t, err)
	assert.Equal(t, "You asked: hello\n", out)
}

func TestExplore(t *testing.T) {
	srv := backendStub(t)

	out, err := run(t, testBuilder(t, srv.URL, false), "", "explore")

	require.NoError(t, err)
	assert.Contains(t, out, "Oat Crunch")
	assert.Contains(t, out, "81%")
	assert.Contains(t, strings.ToLower(out), "from backend")
}

func TestWorkers(t *testing.T) {
	build := func(context.Context, *rootOptions) (*env, error) {
		t.Fatal("workers must not build services")
		return nil, nil
	}

	out, err := run(t, build, "", "workers", "--category", "verification")

	require.NoError(t, err)
	assert.Contains(t, out, "verify-url")
	assert.NotContains(t, out, "list-products")
}

func TestWorkers_RegistryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activities.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"activities":[
		{"id":"claimcheck.verification.manual","taskType":"verify-manual","timeout":"60s","retries":3}
	]}`), 0o600))

	_, err := run(t, testBuilder(t, "http://localhost:1", false), "", "workers", "--registry", path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "retries must be 0")
}

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	path := filepath.Join(t.TempDir(), "label.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestCrop_WritesJPEG(t *testing.T) {
	src := writePNG(t, 40, 30)
	dst := filepath.Join(t.TempDir(), "out.jpg")

	out, err := run(t, testBuilder(t, "http://localhost:1", false), "", "crop", src, "--area", "5,5,20,10", "-o", dst)

	require.NoError(t, err)
	assert.Contains(t, out, "image/jpeg")

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 20, cfg.Width)
	assert.Equal(t, 10, cfg.Height)
}

func TestCrop_BadArea(t *testing.T) {
	src := writePNG(t, 10, 10)

	_, err := run(t, testBuilder(t, "http://localhost:1", false), "", "crop", src, "--area", "1,2,3")

	assert.True(t, stderrors.HasCode(err, stderrors.ErrCodeInvalidInput))
}

func TestOCR_LocalFile(t *testing.T) {
	srv := backendStub(t)
	src := writePNG(t, 10, 10)

	out, err := run(t, testBuilder(t, srv.URL, false), "", "ocr", src)

	require.NoError(t, err)
	assert.Equal(t, "INGREDIENTS: oats, dates\n", out)
}

func TestParseCropArea(t *testing.T) {
	area, err := parseCropArea(" 1, 2,30 ,40")
	require.NoError(t, err)
	assert.Equal(t, models.CropArea{X: 1, Y: 2, Width: 30, Height: 40}, area)

	_, err = parseCropArea("1,2,x,4")
	assert.Error(t, err)
}

func TestToImageSource(t *testing.T) {
	assert.Equal(t, "data:image/png;base64,AA==", toImageSource("data:image/png;base64,AA=="))
	assert.Equal(t, "https://cdn.example.com/a.jpg", toImageSource("https://cdn.example.com/a.jpg"))
	assert.Equal(t, "file:///tmp/label.jpg", toImageSource("/tmp/label.jpg"))
	assert.True(t, strings.HasPrefix(toImageSource("label.jpg"), "file:///"))
}
