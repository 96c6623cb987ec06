package importer

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/google/uuid"

	domainerrors "github.com/Sanjay-nithin/campuscore-server/internal/errors"
)

// GenreReport summarizes one genre import run.
type GenreReport struct {
	Created  int        `json:"created"`
	Existing int        `json:"existing"`
	Errors   []RowError `json:"errors"`
}

// ImportGenresCSV reads genre names from a CSV upload. Files with a
// "name" or "genre" header column use that column, rows counted from 2.
// Files without a usable header are treated as one name per line, first
// comma-separated field, every line counted from 1.
func (im *Importer) ImportGenresCSV(ctx context.Context, r io.Reader) (*GenreReport, error) {
	jobID := uuid.New().String()
	logger := im.logger.With("job_id", jobID)

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, domainerrors.Validationf("Failed to read file: %v", err)
	}

	content := strings.ReplaceAll(string(raw), "\r\n", "\n")
	if strings.TrimSpace(content) == "" {
		return nil, domainerrors.Validation("Empty file")
	}

	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	report := &GenreReport{Errors: make([]RowError, 0)}

	nameIdx, headerOK := genreHeaderIndex(lines[0])
	if headerOK {
		im.importGenresWithHeader(ctx, content, nameIdx, report)
	} else {
		im.importGenresPlain(ctx, lines, report)
	}

	logger.Info("genre import finished",
		"created", report.Created,
		"existing", report.Existing,
		"failed", len(report.Errors),
	)
	return report, nil
}

// genreHeaderIndex parses the first line as a CSV header and looks for
// a "name" or "genre" column.
func genreHeaderIndex(line string) (int, bool) {
	record, err := csv.NewReader(strings.NewReader(line)).Read()
	if err != nil {
		return 0, false
	}
	for i, cell := range normalizeHeader(record) {
		if cell == "name" || cell == "genre" {
			return i, true
		}
	}
	return 0, false
}

func (im *Importer) importGenresWithHeader(ctx context.Context, content string, nameIdx int, report *GenreReport) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1

	row := 1
	if _, err := reader.Read(); err != nil {
		return // header already parsed once, so this cannot really fail
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			return
		}
		row++
		if err != nil {
			report.Errors = append(report.Errors, RowError{Row: row, Message: "Malformed row"})
			continue
		}

		var name string
		if nameIdx < len(record) {
			name = strings.TrimSpace(record[nameIdx])
		}
		if name == "" {
			report.Errors = append(report.Errors, RowError{Row: row, Message: "Missing name"})
			continue
		}

		im.recordGenre(ctx, name, row, report)
	}
}

// importGenresPlain treats every line as a bare genre name, taking the
// text before the first comma. Used when the file has no usable header,
// so the first line counts too.
func (im *Importer) importGenresPlain(ctx context.Context, lines []string, report *GenreReport) {
	for i, line := range lines {
		row := i + 1
		name := strings.TrimSpace(strings.SplitN(line, ",", 2)[0])
		if name == "" {
			report.Errors = append(report.Errors, RowError{Row: row, Message: "Empty line"})
			continue
		}
		im.recordGenre(ctx, name, row, report)
	}
}

func (im *Importer) recordGenre(ctx context.Context, name string, row int, report *GenreReport) {
	_, created, err := im.store.GetOrCreateGenre(ctx, name)
	if err != nil {
		report.Errors = append(report.Errors, RowError{Row: row, Message: err.Error()})
		return
	}
	if created {
		report.Created++
	} else {
		report.Existing++
	}
}
