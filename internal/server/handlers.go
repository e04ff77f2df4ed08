package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	_ "golang.org/x/image/bmp"

	"github.com/docshot/docshot/internal/pipeline"
	"github.com/docshot/docshot/internal/version"
)

const formatText = "text"

// HealthResponse is the payload of the health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// DetectResponse is the JSON payload of the detect endpoint.
type DetectResponse struct {
	Success bool                  `json:"success"`
	Result  *pipeline.FrameResult `json:"result,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("encoding health response", "error", err)
	}
}

// detectHandler runs document detection on one uploaded image.
func (s *Server) detectHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	img, status, err := s.readImageUpload(w, r, "image")
	if err != nil {
		s.writeErrorResponse(w, err.Error(), status)
		return
	}

	start := time.Now()
	fr, err := s.analyzeFrame(r.Context(), img)
	if err != nil {
		detectionsTotal.WithLabelValues("none", "error").Inc()
		s.writeErrorResponse(w, fmt.Sprintf("detection failed: %v", err), http.StatusInternalServerError)
		return
	}
	recordDetection("http", fr, time.Since(start))

	format := r.FormValue("format")
	if format == "" {
		format = r.URL.Query().Get("format")
	}

	if format == formatText {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		out, err := pipeline.ToText(fr)
		if err != nil {
			http.Error(w, fmt.Sprintf("formatting failed: %v", err), http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(out))
		return
	}

	if format == "overlay" || r.FormValue("overlay") == "1" {
		s.handleOverlayOutput(w, img, fr)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(DetectResponse{Success: true, Result: fr}); err != nil {
		slog.Error("encoding detect response", "error", err)
	}
}

// handleOverlayOutput renders the detection over the frame as PNG.
func (s *Server) handleOverlayOutput(w http.ResponseWriter, img image.Image, fr *pipeline.FrameResult) {
	if !s.overlayEnabled {
		http.Error(w, "overlay output disabled", http.StatusForbidden)
		return
	}

	ov := pipeline.RenderOverlay(img, fr)
	if ov == nil {
		http.Error(w, "overlay failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_ = png.Encode(w, ov)
}

// readImageUpload parses a single multipart image upload under the given
// field name. The returned status is meaningful only when err is set.
func (s *Server) readImageUpload(w http.ResponseWriter, r *http.Request, field string) (image.Image, int, error) {
	limit := s.maxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		return nil, http.StatusBadRequest, errors.New("failed to parse form data")
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("no %s file provided", field)
	}
	defer func() { _ = file.Close() }()

	if header.Size > limit {
		return nil, http.StatusRequestEntityTooLarge, errors.New("file too large")
	}

	img, err := decodeUpload(file)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	return img, 0, nil
}

// decodeUpload reads and decodes one uploaded image part.
func decodeUpload(file multipart.File) (image.Image, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.New("failed to read image data")
	}
	uploadSizeBytes.Observe(float64(len(data)))

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.New("invalid image format")
	}
	return img, nil
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := DetectResponse{Success: false, Error: message}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("writing error response", "error", err)
	}
}
