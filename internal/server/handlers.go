package server

import (
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/taigrr/avatarfit/internal/studio"
	"github.com/taigrr/avatarfit/pkg/fit"
	"github.com/taigrr/avatarfit/pkg/models"
	"github.com/taigrr/avatarfit/pkg/render"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Debug("write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// handleUpload accepts a multipart upload in the "file" field.
func (s *Server) handleUpload(slot studio.Slot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.UploadLimit())

		file, header, err := r.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				s.writeError(w, http.StatusRequestEntityTooLarge, err)
				return
			}
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}

		load := s.session.LoadAvatar
		if slot == studio.SlotClothing {
			load = s.session.LoadClothing
		}
		if err := load(header.Filename, data); err != nil {
			status := http.StatusUnprocessableEntity
			if errors.Is(err, models.ErrUnsupportedFormat) {
				status = http.StatusUnsupportedMediaType
			}
			s.writeError(w, status, err)
			return
		}
		s.writeJSON(w, http.StatusOK, s.session.State())
	}
}

type colorRequest struct {
	Color string `json:"color"`
}

func (s *Server) handleColor(w http.ResponseWriter, r *http.Request) {
	var req colorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.session.SetColor(req.Color); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, fit.ErrInvalidColor) {
			status = http.StatusBadRequest
		}
		s.writeError(w, status, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.session.State())
}

type visibilityRequest struct {
	Visible *bool `json:"visible"`
}

func (s *Server) handleVisibility(w http.ResponseWriter, r *http.Request) {
	var req visibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Visible == nil {
		s.writeError(w, http.StatusBadRequest, errors.New(`missing "visible"`))
		return
	}
	s.session.SetClothingVisible(*req.Visible)
	s.writeJSON(w, http.StatusOK, s.session.State())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.session.Reset()
	s.writeJSON(w, http.StatusOK, s.session.State())
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.session.State())
}

func (s *Server) handlePalette(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.cfg.Studio.Palette)
}

// handleSnapshot renders the scene to PNG. The optional yaw query
// parameter turns the camera, in radians.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	var yaw float64
	if v := r.URL.Query().Get("yaw"); v != "" {
		var err error
		if yaw, err = strconv.ParseFloat(v, 64); err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	frame := s.session.Frame(s.cfg.Preview.MaxTriangles)
	img := render.Snapshot(s.cfg.RenderOptions(), frame, s.cfg.Preview.Supersample, yaw)

	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		s.log.Warn("encode snapshot", zap.Error(err))
	}
}
