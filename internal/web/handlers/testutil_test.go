package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/fras/internal/enroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEnroller records calls and returns canned results
type fakeEnroller struct {
	outcome   enroll.Outcome
	enrollErr error
	removed   int64
	removeErr error

	lastLabel  string
	lastSource enroll.ImageSource
	enrollCall int
	removeCall int
}

func (f *fakeEnroller) Enroll(_ context.Context, label string, src enroll.ImageSource) (enroll.Outcome, error) {
	f.enrollCall++
	f.lastLabel = label
	f.lastSource = src
	return f.outcome, f.enrollErr
}

func (f *fakeEnroller) Remove(_ context.Context, label string) (int64, error) {
	f.removeCall++
	f.lastLabel = label
	return f.removed, f.removeErr
}

// multipartRequest builds a multipart POST. A nil image omits the part; fileImage
// selects a file part over a plain field.
func multipartRequest(t *testing.T, path string, image []byte, fileImage bool, name *string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if image != nil {
		if fileImage {
			part, err := w.CreateFormFile("image", "face.jpg")
			require.NoError(t, err)
			_, err = part.Write(image)
			require.NoError(t, err)
		} else {
			require.NoError(t, w.WriteField("image", string(image)))
		}
	}
	if name != nil {
		require.NoError(t, w.WriteField("name", *name))
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, path, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func strPtr(s string) *string { return &s }

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), target), "body: %s", recorder.Body.String())
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	assert.Equal(t, expected, recorder.Code, "body: %s", recorder.Body.String())
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	assert.Equal(t, expected, recorder.Header().Get("Content-Type"))
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	parseJSONResponse(t, recorder, &result)
	assert.Equal(t, expectedMessage, result["error"])
}
