package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docshot/docshot/internal/aspect"
	"github.com/docshot/docshot/internal/pipeline"
)

func TestRatioHandler_MultiFrame(t *testing.T) {
	mock := &mockAnalyzer{
		seqFrames: []*pipeline.FrameResult{foundFrameResult(), foundFrameResult()},
		seqMulti:  &aspect.MultiFrameEstimate{Ratio: 0.7727, Confidence: 0.9, FrameCount: 2},
	}
	s := newMockServer(mock, &mockSession{})

	data, err := encodeImageToPNG(createTestImage(64, 48))
	require.NoError(t, err)
	req, err := createMultipartRequest("/v1/ratio", []upload{
		{field: "images", filename: "a.png", data: data},
		{field: "images", filename: "b.png", data: data},
	}, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.ratioHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp RatioResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Frames, 2)
	require.NotNil(t, resp.Multi)
	assert.InDelta(t, 0.7727, resp.Multi.Ratio, 1e-9)
	assert.Equal(t, 2, resp.Multi.FrameCount)
}

func TestRatioHandler_SingleImageField(t *testing.T) {
	mock := &mockAnalyzer{seqFrames: []*pipeline.FrameResult{foundFrameResult()}}
	s := newMockServer(mock, &mockSession{})

	data, err := encodeImageToPNG(createTestImage(64, 48))
	require.NoError(t, err)
	req, err := createMultipartRequest("/v1/ratio",
		[]upload{{field: "image", filename: "a.png", data: data}}, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.ratioHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp RatioResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Frames, 1)
	assert.Nil(t, resp.Multi)
}

func TestRatioHandler_NoFiles(t *testing.T) {
	s := newMockServer(&mockAnalyzer{}, &mockSession{})

	req, err := createMultipartRequest("/v1/ratio", nil, map[string]string{"format": "json"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.ratioHandler(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp RatioResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "no image files provided")
}

func TestRatioHandler_TooManyFrames(t *testing.T) {
	s := newMockServer(&mockAnalyzer{}, &mockSession{})

	data, err := encodeImageToPNG(createTestImage(16, 16))
	require.NoError(t, err)
	uploads := make([]upload, maxRatioFrames+1)
	for i := range uploads {
		uploads[i] = upload{field: "images", filename: "f.png", data: data}
	}
	req, err := createMultipartRequest("/v1/ratio", uploads, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.ratioHandler(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRatioHandler_InvalidFrame(t *testing.T) {
	s := newMockServer(&mockAnalyzer{}, &mockSession{})

	data, err := encodeImageToPNG(createTestImage(16, 16))
	require.NoError(t, err)
	req, err := createMultipartRequest("/v1/ratio", []upload{
		{field: "images", filename: "a.png", data: data},
		{field: "images", filename: "b.png", data: []byte("garbage")},
	}, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.ratioHandler(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp RatioResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "frame 1")
	assert.Contains(t, resp.Error, "invalid image format")
}

func TestRatioHandler_AnalyzerError(t *testing.T) {
	s := newMockServer(&mockAnalyzer{seqErr: assert.AnError}, &mockSession{})

	data, err := encodeImageToPNG(createTestImage(16, 16))
	require.NoError(t, err)
	req, err := createMultipartRequest("/v1/ratio",
		[]upload{{field: "images", filename: "a.png", data: data}}, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.ratioHandler(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp RatioResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "estimation failed")
}

func TestRatioHandler_MethodNotAllowed(t *testing.T) {
	s := newMockServer(&mockAnalyzer{}, &mockSession{})

	req := httptest.NewRequest(http.MethodGet, "/v1/ratio", nil)
	rec := httptest.NewRecorder()
	s.ratioHandler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
