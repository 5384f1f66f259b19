package main

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Simplici0/scenarios/internal/quote"
	"github.com/Simplici0/scenarios/internal/store"
)

// Fixed defaults applied to every scenario bootstrapped from a quote.
const (
	importMargin     = 0.15
	importDollarRate = 5.20
)

const maxUploadBytes = 32 << 20

// handleUpload bootstraps a scenario from an uploaded quote PDF: spool the
// file, extract its text, scan for product lines, and persist the result.
// The spooled file is removed on success and failure alike.
func (s *server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("quotePdf")
	if err != nil {
		respondError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	path, err := s.spoolUpload(file)
	if err != nil {
		s.log.Error("spool upload", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to store the uploaded file")
		return
	}
	defer os.Remove(path)

	text, err := s.extractText(path)
	if err != nil {
		s.log.Error("extract pdf text", zap.String("file", header.Filename), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to process the PDF file")
		return
	}

	candidates, err := quote.Extract(text)
	if errors.Is(err, quote.ErrNoProducts) {
		respondError(w, http.StatusBadRequest, "no valid products found in the PDF; the file layout may be incompatible")
		return
	}
	if err != nil {
		s.log.Error("scan quote text", zap.String("file", header.Filename), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to process the PDF file")
		return
	}

	products := make([]store.ProductInput, len(candidates))
	for i, c := range candidates {
		products[i] = store.ProductInput{Name: c.Name, BaseValue: c.BaseValue}
	}

	name := scenarioNameFromFilename(header.Filename)
	created, err := s.store.Create(r.Context(), name, importMargin, importDollarRate, products)
	if errors.Is(err, store.ErrNameTaken) {
		respondError(w, http.StatusBadRequest, "a scenario with this name already exists")
		return
	}
	if err != nil {
		s.log.Error("create scenario from upload", zap.String("name", name), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to create scenario")
		return
	}

	s.log.Info("scenario imported from quote",
		zap.Int64("id", created.ID),
		zap.String("name", name),
		zap.Int("products", len(products)),
	)
	respondJSON(w, http.StatusCreated, map[string]int64{"id": created.ID})
}

func (s *server) spoolUpload(file io.Reader) (string, error) {
	tmp, err := os.CreateTemp(s.uploadDir, "quote-*.pdf")
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	return tmp.Name(), nil
}

func scenarioNameFromFilename(filename string) string {
	name := filepath.Base(filename)
	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		name = name[:len(name)-len(".pdf")]
	}
	return name
}
