package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/phambaophuc/packshot-composer/internal/models"
	"github.com/phambaophuc/packshot-composer/internal/pipeline"
	"github.com/phambaophuc/packshot-composer/internal/retry"
	"github.com/phambaophuc/packshot-composer/internal/services/background"
	"github.com/phambaophuc/packshot-composer/internal/services/compositor"
	"github.com/phambaophuc/packshot-composer/internal/services/fetcher"
	"github.com/phambaophuc/packshot-composer/internal/services/prompt"
	"github.com/phambaophuc/packshot-composer/internal/services/publisher"
	"github.com/phambaophuc/packshot-composer/internal/services/vertex"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubTextGenerator struct {
	text  string
	err   error
	calls int
}

func (s *stubTextGenerator) GenerateText(ctx context.Context, p string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

type stubImageGenerator struct {
	images [][]byte
	err    error
}

func (s *stubImageGenerator) GenerateImages(ctx context.Context, p string, count int, aspect string) ([][]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.images, nil
}

type stubStore struct {
	writes int
}

func (s *stubStore) Write(ctx context.Context, name, contentType string, data []byte) (string, error) {
	s.writes++
	return "https://storage.googleapis.com/test-bucket/" + name, nil
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

type testEnv struct {
	router   http.Handler
	text     *stubTextGenerator
	images   *stubImageGenerator
	store    *stubStore
	packshot *httptest.Server
	layout   *compositor.Layout
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		text:   &stubTextGenerator{text: "A photorealistic marble countertop scene with empty center..."},
		images: &stubImageGenerator{images: [][]byte{encodePNG(t, 1024, 1024)}},
		store:  &stubStore{},
	}

	packshotPNG := encodePNG(t, 400, 800)
	env.packshot = httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "image/png")
		rw.Write(packshotPNG)
	}))
	t.Cleanup(env.packshot.Close)

	logger := zap.NewNop()
	retryCfg := retry.Config{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		Jitter:      0.2,
		Retryable:   vertex.IsUnavailable,
		Sleep:       func(time.Duration) {},
	}

	composite := func(bg image.Image, ps *image.NRGBA) *image.NRGBA {
		layout := compositor.ComputeLayout(bg, ps)
		env.layout = &layout
		return compositor.Composite(bg, ps)
	}

	pipe := pipeline.New(
		prompt.NewSynthesizer(env.text, retryCfg, logger),
		background.NewGenerator(env.images, retryCfg, logger),
		fetcher.NewFetcher(time.Second, logger),
		composite,
		publisher.NewPublisher(env.store, logger),
		logger,
	)

	engine := gin.New()
	h := NewGenerateHandler(pipe, logger)
	engine.POST("/", h.Generate)
	engine.POST("/stream", h.GenerateStream)
	engine.GET("/healthz", h.HealthCheck)
	env.router = engine

	return env
}

func (e *testEnv) requestBody() map[string]string {
	return map[string]string{
		"general_description":    "modern minimalist",
		"background_description": "marble countertop",
		"copy":                   "SALE 50%",
		"packshot_url":           e.packshot.URL + "/bottle.png",
	}
}

func (e *testEnv) post(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestGenerateSuccess(t *testing.T) {
	env := newTestEnv(t)

	rec := env.post(t, "/", env.requestBody())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Regexp(t, `^https://storage\.googleapis\.com/test-bucket/generated-image-.+\.png$`, resp.ImageURL)
	assert.Equal(t, "A photorealistic marble countertop scene with empty center...", resp.GeminiGeneratedPrompt)

	require.NotNil(t, env.layout)
	assert.Equal(t, 460, env.layout.Width)
	assert.Equal(t, 920, env.layout.Height)
	assert.Equal(t, 1, env.store.writes)
}

func TestGenerateMissingFieldSubsets(t *testing.T) {
	env := newTestEnv(t)
	fields := []string{"background_description", "copy", "general_description", "packshot_url"}

	for mask := 1; mask < 1<<len(fields); mask++ {
		body := env.requestBody()
		var removed []string
		for i, name := range fields {
			if mask&(1<<i) != 0 {
				delete(body, name)
				removed = append(removed, name)
			}
		}
		sort.Strings(removed)

		rec := env.post(t, "/", body)
		require.Equal(t, http.StatusBadRequest, rec.Code, "mask %b", mask)

		var resp models.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Missing required field(s): "+strings.Join(removed, ", "), resp.Error)
	}

	assert.Zero(t, env.store.writes)
}

func TestGenerateMalformedJSON(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid JSON payload", resp.Error)
}

func TestGenerateInvalidPackshotURL(t *testing.T) {
	env := newTestEnv(t)

	body := env.requestBody()
	body["packshot_url"] = "not-a-url"

	rec := env.post(t, "/", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateUpstreamUnavailable(t *testing.T) {
	env := newTestEnv(t)
	env.text.err = genai.APIError{Code: http.StatusServiceUnavailable, Message: "model overloaded"}

	rec := env.post(t, "/", env.requestBody())
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Vertex AI service error.", resp.Error)
	assert.NotEmpty(t, resp.Details)

	assert.Equal(t, 3, env.text.calls, "transient failures retry before surfacing")
	assert.Zero(t, env.store.writes, "nothing is published on failure")
}

func TestGenerateEmptyGeneration(t *testing.T) {
	env := newTestEnv(t)
	env.images.images = nil

	rec := env.post(t, "/", env.requestBody())
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
	assert.Zero(t, env.store.writes)
}

func TestGeneratePackshotFetchFailure(t *testing.T) {
	env := newTestEnv(t)

	missing := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		http.Error(rw, "gone", http.StatusNotFound)
	}))
	defer missing.Close()

	body := env.requestBody()
	body["packshot_url"] = missing.URL + "/bottle.png"

	rec := env.post(t, "/", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Unable to download packshot", resp.Error)
	assert.Zero(t, env.store.writes)
}

func TestStreamDeliversSuccessAsJSON(t *testing.T) {
	env := newTestEnv(t)

	rec := env.post(t, "/stream", env.requestBody())
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.ImageURL)
}

func TestStreamDeliversFailureAsValidJSON(t *testing.T) {
	env := newTestEnv(t)
	env.text.err = genai.APIError{Code: http.StatusServiceUnavailable, Message: "model overloaded"}

	rec := env.post(t, "/stream", env.requestBody())

	// Headers were already sent when the failure surfaced.
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Vertex AI service error.", resp.Error)
	assert.Zero(t, env.store.writes)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
