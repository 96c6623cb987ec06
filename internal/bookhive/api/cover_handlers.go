package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Sanjay-nithin/campuscore-server/internal/http/response"
)

// maxCoverUploadSize caps cover image uploads at 10 MiB.
const maxCoverUploadSize = 10 << 20

func (s *Server) registerCoverRoutes() {
	// Cover routes use chi directly: the GET streams file bytes with
	// conditional-request support, the POST reads a multipart form.
	s.router.Get("/api/books/{id}/cover", s.handleServeCover)
	s.router.Post("/api/admin/books/{id}/cover", s.handleUploadCover)
}

// handleServeCover streams the processed cover image for a book.
// Responses carry a strong ETag over the file contents so clients can
// revalidate with If-None-Match.
func (s *Server) handleServeCover(w http.ResponseWriter, r *http.Request) {
	bookID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.Error(w, http.StatusNotFound, "Book not found", s.logger)
		return
	}

	hash, err := s.covers.Hash(bookID)
	if err != nil {
		response.Error(w, http.StatusNotFound, "Cover not found", s.logger)
		return
	}

	etag := `"` + hash + `"`
	if r.Header.Get("If-None-Match") == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	data, err := s.covers.Get(bookID)
	if err != nil {
		response.Error(w, http.StatusNotFound, "Cover not found", s.logger)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("failed to write cover response", "book_id", bookID, "error", err)
	}
}

// handleUploadCover accepts a multipart cover image for a book,
// processes it to JPEG with a blurhash and stores it under the book id.
func (s *Server) handleUploadCover(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, err := s.RequireAdmin(ctx); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	bookID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.Error(w, http.StatusNotFound, "Book not found", s.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxCoverUploadSize)

	file, _, err := r.FormFile("cover")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "No file uploaded. Use field name 'cover'", s.logger)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Failed to read uploaded file", s.logger)
		return
	}

	book, err := s.admin.UploadCover(ctx, bookID, data)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.JSON(w, http.StatusOK, book, s.logger)
}
