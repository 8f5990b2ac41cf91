package ingest

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/storage/memory"
)

func multipartUpload(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestHandleImport_Success(t *testing.T) {
	store := memory.New()
	handler := NewHandler(store, 0, nil)

	content := "metricId;dateTime;aggDay;aggMonth;aggYear\n" +
		"7;01/01/2024 10:00;10;1;2024\n" +
		"7;bad-date;20;1;2024\n"
	body, contentType := multipartUpload(t, "metrics.csv", content)

	req := httptest.NewRequest(http.MethodPost, "/v1/import", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	handler.HandleImport(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var result Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	require.Equal(t, 1, result.RecordsWritten)
	require.Equal(t, 1, result.RowsDiscarded)
}

func TestHandleImport_NoFile(t *testing.T) {
	store := memory.New()
	handler := NewHandler(store, 0, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/import", bytes.NewReader(nil))
	rr := httptest.NewRecorder()

	handler.HandleImport(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Contains(t, resp["message"], "no file uploaded")
}

func TestHandleImport_EmptyFile(t *testing.T) {
	store := memory.New()
	handler := NewHandler(store, 0, nil)

	body, contentType := multipartUpload(t, "empty.csv", "")

	req := httptest.NewRequest(http.MethodPost, "/v1/import", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	handler.HandleImport(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Contains(t, resp["message"], "no header row")
}

func TestHandleImport_MethodNotAllowed(t *testing.T) {
	store := memory.New()
	handler := NewHandler(store, 0, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/import", nil)
	rr := httptest.NewRecorder()

	handler.HandleImport(rr, req)

	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
