package server

import (
	"encoding/json"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"time"

	"github.com/docshot/docshot/internal/aspect"
	"github.com/docshot/docshot/internal/pipeline"
)

// maxRatioFrames caps how many frames one ratio request may carry.
const maxRatioFrames = 32

// RatioResponse is the JSON payload of the ratio endpoint.
type RatioResponse struct {
	Success bool                       `json:"success"`
	Frames  []*pipeline.FrameResult    `json:"frames,omitempty"`
	Multi   *aspect.MultiFrameEstimate `json:"multi,omitempty"`
	Error   string                     `json:"error,omitempty"`
}

// ratioHandler estimates the true aspect ratio from one or more frames
// of the same document. Multiple files under the "images" field feed the
// multi-frame estimator.
func (s *Server) ratioHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := s.maxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		s.writeErrorResponse(w, "failed to parse form data", http.StatusBadRequest)
		return
	}

	parts := r.MultipartForm.File["images"]
	if len(parts) == 0 {
		parts = r.MultipartForm.File["image"]
	}
	if len(parts) == 0 {
		s.writeErrorResponse(w, "no image files provided", http.StatusBadRequest)
		return
	}
	if len(parts) > maxRatioFrames {
		s.writeErrorResponse(w, fmt.Sprintf("too many frames: %d (limit %d)", len(parts), maxRatioFrames),
			http.StatusRequestEntityTooLarge)
		return
	}

	imgs := make([]image.Image, 0, len(parts))
	for i, part := range parts {
		file, err := part.Open()
		if err != nil {
			s.writeErrorResponse(w, fmt.Sprintf("frame %d: cannot open upload", i), http.StatusBadRequest)
			return
		}
		img, err := decodeUpload(file)
		_ = file.Close()
		if err != nil {
			s.writeErrorResponse(w, fmt.Sprintf("frame %d: %v", i, err), http.StatusBadRequest)
			return
		}
		imgs = append(imgs, img)
	}

	start := time.Now()
	frames, multi, err := s.analyzeSequence(r.Context(), imgs)
	if err != nil {
		detectionsTotal.WithLabelValues("none", "error").Inc()
		s.writeErrorResponse(w, fmt.Sprintf("estimation failed: %v", err), http.StatusInternalServerError)
		return
	}
	elapsed := time.Since(start)
	for _, fr := range frames {
		recordDetection("http", fr, elapsed/time.Duration(len(frames)))
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(RatioResponse{Success: true, Frames: frames, Multi: multi}); err != nil {
		slog.Error("encoding ratio response", "error", err)
	}
}
