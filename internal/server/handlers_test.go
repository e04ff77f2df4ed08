package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docshot/docshot/internal/pipeline"
)

func TestHealthHandler(t *testing.T) {
	s := newMockServer(&mockAnalyzer{}, &mockSession{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.healthHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.NotEmpty(t, resp.Time)
}

func TestHealthHandler_MethodNotAllowed(t *testing.T) {
	s := newMockServer(&mockAnalyzer{}, &mockSession{})

	req := httptest.NewRequest(http.MethodPost, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.healthHandler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestDetectHandler_JSON(t *testing.T) {
	s := newMockServer(&mockAnalyzer{frameResult: foundFrameResult()}, &mockSession{})

	data, err := encodeImageToPNG(createTestImage(320, 240))
	require.NoError(t, err)
	req, err := createMultipartRequest("/v1/detect",
		[]upload{{field: "image", filename: "frame.png", data: data}}, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.detectHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp DetectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Result)
	assert.True(t, resp.Result.Detection.Found)
	assert.Equal(t, "contour", resp.Result.Strategy)
	require.NotNil(t, resp.Result.Estimate)
	assert.InDelta(t, 0.8, resp.Result.Estimate.Ratio, 1e-9)
}

func TestDetectHandler_TextFormat(t *testing.T) {
	s := newMockServer(&mockAnalyzer{frameResult: foundFrameResult()}, &mockSession{})

	data, err := encodeImageToPNG(createTestImage(64, 48))
	require.NoError(t, err)
	req, err := createMultipartRequest("/v1/detect",
		[]upload{{field: "image", filename: "frame.png", data: data}},
		map[string]string{"format": "text"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.detectHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Body.String(), "strategy=contour")
	assert.Contains(t, rec.Body.String(), "aspect ratio")
}

func TestDetectHandler_Overlay(t *testing.T) {
	s := newMockServer(&mockAnalyzer{frameResult: foundFrameResult()}, &mockSession{})

	data, err := encodeImageToPNG(createTestImage(64, 48))
	require.NoError(t, err)
	req, err := createMultipartRequest("/v1/detect",
		[]upload{{field: "image", filename: "frame.png", data: data}},
		map[string]string{"overlay": "1"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.detectHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	ov, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 64, ov.Bounds().Dx())
}

func TestDetectHandler_OverlayDisabled(t *testing.T) {
	s := newMockServer(&mockAnalyzer{frameResult: foundFrameResult()}, &mockSession{})
	s.overlayEnabled = false

	data, err := encodeImageToPNG(createTestImage(64, 48))
	require.NoError(t, err)
	req, err := createMultipartRequest("/v1/detect",
		[]upload{{field: "image", filename: "frame.png", data: data}},
		map[string]string{"overlay": "1"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.detectHandler(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDetectHandler_MissingFile(t *testing.T) {
	s := newMockServer(&mockAnalyzer{}, &mockSession{})

	req, err := createMultipartRequest("/v1/detect", nil, map[string]string{"format": "json"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.detectHandler(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp DetectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "no image file")
}

func TestDetectHandler_InvalidImage(t *testing.T) {
	s := newMockServer(&mockAnalyzer{}, &mockSession{})

	req, err := createMultipartRequest("/v1/detect",
		[]upload{{field: "image", filename: "frame.png", data: []byte("not a png")}}, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.detectHandler(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp DetectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "invalid image format")
}

func TestDetectHandler_MethodNotAllowed(t *testing.T) {
	s := newMockServer(&mockAnalyzer{}, &mockSession{})

	req := httptest.NewRequest(http.MethodGet, "/v1/detect", nil)
	rec := httptest.NewRecorder()
	s.detectHandler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestDetectHandler_AnalyzerError(t *testing.T) {
	s := newMockServer(&mockAnalyzer{frameErr: assert.AnError}, &mockSession{})

	data, err := encodeImageToPNG(createTestImage(64, 48))
	require.NoError(t, err)
	req, err := createMultipartRequest("/v1/detect",
		[]upload{{field: "image", filename: "frame.png", data: data}}, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.detectHandler(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp DetectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "detection failed")
}

// End-to-end check without mocks: a real analyzer behind the handler
// finds a synthetic document.
func TestDetectHandler_RealAnalyzer(t *testing.T) {
	s, err := NewServer(Config{
		CORSOrigin:     "*",
		MaxUploadMB:    10,
		AnalyzerConfig: pipeline.DefaultConfig(),
		OverlayEnabled: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	data, err := encodeImageToPNG(createDocumentImage())
	require.NoError(t, err)
	req, err := createMultipartRequest("/v1/detect",
		[]upload{{field: "image", filename: "doc.png", data: data}}, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.detectHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp DetectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Result)
	assert.True(t, resp.Result.Detection.Found)
	assert.Len(t, resp.Result.Detection.Corners, 4)
}
