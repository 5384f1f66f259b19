package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doUpload(t *testing.T, handler http.Handler, fieldName, filename string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(fieldName, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 fake content"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/scenarios/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestUploadCreatesScenarioFromQuote(t *testing.T) {
	srv, handler := newTestServer(t)
	srv.extractText = func(path string) (string, error) {
		return strings.Join([]string{
			"Vendor Quote 2026-214",
			"1 Widget Pro Annual USD 1,234.56 USD 0.00 (0.0% Tax)",
			"2 Gadget Suite USD 2,000.00 USD 0.00 (0.0% Tax)",
			"Total USD 3,234.56",
		}, "\n"), nil
	}

	rec := doUpload(t, handler, "quotePdf", "vendor-quote.pdf")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var response map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.NotZero(t, response["id"])

	get := doJSON(t, handler, http.MethodGet, fmt.Sprintf("/api/scenarios/%d", response["id"]), nil)
	require.Equal(t, http.StatusOK, get.Code)

	created := decodeScenario(t, get)
	assert.Equal(t, "vendor-quote", created.Name)
	assert.Equal(t, 0.15, created.Margin)
	assert.Equal(t, 5.20, created.DollarRate)
	require.Len(t, created.Products, 2)
	assert.Equal(t, "Widget Pro", created.Products[0].Name)
	assert.Equal(t, 1234.56, created.Products[0].BaseValue)
	assert.Equal(t, "Gadget Suite", created.Products[1].Name)
	assert.Equal(t, 2000.0, created.Products[1].BaseValue)
}

func TestUploadNoMatchingLines(t *testing.T) {
	srv, handler := newTestServer(t)
	srv.extractText = func(path string) (string, error) {
		return "An invoice with no product table at all", nil
	}

	rec := doUpload(t, handler, "quotePdf", "letter.pdf")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no valid products")

	// No scenario must be created on a failed import.
	list := doJSON(t, handler, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, list.Code)
	assert.JSONEq(t, `[]`, list.Body.String())
}

func TestUploadExtractionFailure(t *testing.T) {
	srv, handler := newTestServer(t)
	srv.extractText = func(path string) (string, error) {
		return "", fmt.Errorf("broken xref table")
	}

	rec := doUpload(t, handler, "quotePdf", "corrupt.pdf")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed to process")
}

func TestUploadMissingFile(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doUpload(t, handler, "wrongField", "quote.pdf")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no file uploaded")
}

func TestScenarioNameFromFilename(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"vendor-quote.pdf", "vendor-quote"},
		{"VENDOR QUOTE.PDF", "VENDOR QUOTE"},
		{"archive.tar", "archive.tar"},
		{"nested/path/quote.pdf", "quote"},
	}

	for _, tc := range cases {
		if got := scenarioNameFromFilename(tc.filename); got != tc.want {
			t.Fatalf("scenarioNameFromFilename(%q) = %q, want %q", tc.filename, got, tc.want)
		}
	}
}
