package server

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"

	"github.com/docshot/docshot/internal/aspect"
	"github.com/docshot/docshot/internal/pipeline"
)

// mockAnalyzer is a canned implementation of analyzerInterface.
type mockAnalyzer struct {
	frameResult *pipeline.FrameResult
	frameErr    error
	seqFrames   []*pipeline.FrameResult
	seqMulti    *aspect.MultiFrameEstimate
	seqErr      error
	closed      bool
}

func (m *mockAnalyzer) AnalyzeFrame(ctx context.Context, img image.Image) (*pipeline.FrameResult, error) {
	return m.frameResult, m.frameErr
}

func (m *mockAnalyzer) AnalyzeSequence(ctx context.Context, imgs []image.Image) ([]*pipeline.FrameResult, *aspect.MultiFrameEstimate, error) {
	return m.seqFrames, m.seqMulti, m.seqErr
}

func (m *mockAnalyzer) Close() error {
	m.closed = true
	return nil
}

// mockSession is a canned implementation of frameSession.
type mockSession struct {
	feedResult *pipeline.FrameResult
	feedErr    error
	resets     int
	closed     bool
}

func (m *mockSession) Feed(ctx context.Context, img image.Image) (*pipeline.FrameResult, error) {
	return m.feedResult, m.feedErr
}

func (m *mockSession) Reset() { m.resets++ }

func (m *mockSession) Close() error {
	m.closed = true
	return nil
}

// newMockServer builds a server around canned analyzer and session mocks.
func newMockServer(a *mockAnalyzer, sess *mockSession) *Server {
	return &Server{
		analyzer:       a,
		newSession:     func() (frameSession, error) { return sess, nil },
		corsOrigin:     "*",
		maxUploadMB:    50,
		overlayEnabled: true,
	}
}

// foundFrameResult builds a plausible successful detection result.
func foundFrameResult() *pipeline.FrameResult {
	return &pipeline.FrameResult{
		Width:    320,
		Height:   240,
		Scene:    "normal",
		Strategy: "contour",
		Detection: pipeline.DetectionResult{
			Found: true,
			Corners: []pipeline.Corner{
				{X: 60, Y: 40}, {X: 260, Y: 40}, {X: 260, Y: 200}, {X: 60, Y: 200},
			},
			Confidence: 0.91,
		},
		Estimate: &aspect.Estimate{Ratio: 0.8, Method: "angular", Confidence: 0.85},
	}
}

// createTestImage draws a color gradient for upload fixtures.
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 0, 255})
		}
	}
	return img
}

// createDocumentImage draws a bright sheet on a dark background, enough
// contrast for the real detection cascade to find it.
func createDocumentImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 320, 240))
	for y := range 240 {
		for x := range 320 {
			v := uint8(40)
			if x >= 60 && x < 260 && y >= 40 && y < 200 {
				v = 200
			}
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

// encodeImageToPNG encodes an image to PNG bytes.
func encodeImageToPNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	err := png.Encode(&buf, img)
	return buf.Bytes(), err
}

// upload is one multipart file part.
type upload struct {
	field    string
	filename string
	data     []byte
}

// createMultipartRequest builds a multipart POST with the given parts.
func createMultipartRequest(target string, uploads []upload, extraFields map[string]string) (*http.Request, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, u := range uploads {
		part, err := writer.CreateFormFile(u.field, u.filename)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(u.data); err != nil {
			return nil, err
		}
	}
	for key, value := range extraFields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req, nil
}
