package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"github.com/smartwardrobe/wardrobe-server/internal/http/response"
	"github.com/smartwardrobe/wardrobe-server/internal/media/images"
)

// Object routes stream raw bytes, so they use chi directly instead of huma.
func (s *Server) registerObjectRoutes() {
	s.router.Put("/objects/*", s.handlePutObject)
	s.router.Get("/objects/*", s.handleGetObject)
	s.router.Head("/objects/*", s.handleGetObject)
}

// ObjectResponse is returned after a successful upload.
type ObjectResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

func (s *Server) handlePutObject(w http.ResponseWriter, r *http.Request) {
	if s.objects == nil {
		response.Error(w, http.StatusServiceUnavailable, "object storage not configured", s.logger)
		return
	}

	key, err := images.CleanKey(chi.URLParam(r, "*"))
	if err != nil {
		response.BadRequest(w, "invalid object key", s.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxObjectBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.TooLarge(w, "object exceeds the size limit", s.logger)
			return
		}
		response.BadRequest(w, "failed to read request body", s.logger)
		return
	}
	if len(data) == 0 {
		response.BadRequest(w, "object body is empty", s.logger)
		return
	}

	if err := s.objects.Put(r.Context(), key, data, r.Header.Get("Content-Type")); err != nil {
		s.logger.Error("Failed to store object", "key", key, "error", err)
		response.InternalError(w, "failed to store object", s.logger)
		return
	}

	s.logger.Info("Object stored", "key", key, "bytes", len(data))
	response.Created(w, ObjectResponse{Key: key, URL: s.objects.PublicURL(key)}, s.logger)
}

func (s *Server) handleGetObject(w http.ResponseWriter, r *http.Request) {
	if s.objects == nil {
		response.NotFound(w, "object not found", s.logger)
		return
	}

	key, err := images.CleanKey(chi.URLParam(r, "*"))
	if err != nil {
		response.BadRequest(w, "invalid object key", s.logger)
		return
	}

	data, err := s.objects.Get(key)
	if err != nil {
		if errors.Is(err, images.ErrObjectNotFound) {
			response.NotFound(w, "object not found", s.logger)
			return
		}
		s.logger.Error("Failed to read object", "key", key, "error", err)
		response.InternalError(w, "failed to read object", s.logger)
		return
	}

	hash, err := s.objects.Hash(key)
	if err == nil {
		etag := `"` + hash + `"`
		w.Header().Set("ETag", etag)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	w.Header().Set("Content-Type", mimetype.Detect(data).String())
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Debug("Object write aborted", "key", key, "error", err)
	}
}
