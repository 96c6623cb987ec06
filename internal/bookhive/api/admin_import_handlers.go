package api

import (
	"net/http"

	"github.com/Sanjay-nithin/campuscore-server/internal/http/response"
)

// maxImportUploadSize caps CSV uploads at 50 MiB.
const maxImportUploadSize = 50 << 20

func (s *Server) registerImportRoutes() {
	// Multipart form handling stays on chi.
	s.router.Post("/api/admin/books/import", s.handleImportBooksCSV)
	s.router.Post("/api/admin/genres/import", s.handleImportGenresCSV)
}

// handleImportBooksCSV runs the uploaded CSV through the book import
// pipeline and returns the per-row report.
func (s *Server) handleImportBooksCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, err := s.RequireAdmin(ctx); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportUploadSize)

	file, _, err := r.FormFile("file")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "No file uploaded. Use field name 'file'", s.logger)
		return
	}
	defer file.Close()

	report, err := s.admin.ImportBooksCSV(ctx, file)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.JSON(w, http.StatusOK, report, s.logger)
}

// handleImportGenresCSV imports genre names from an uploaded CSV with a
// 'name' or 'genre' column, or one name per line when no header is present.
func (s *Server) handleImportGenresCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, err := s.RequireAdmin(ctx); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportUploadSize)

	file, _, err := r.FormFile("file")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "No file uploaded. Use field name 'file'", s.logger)
		return
	}
	defer file.Close()

	report, err := s.admin.ImportGenresCSV(ctx, file)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.JSON(w, http.StatusOK, report, s.logger)
}
