package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/fras/internal/database"
	"github.com/kozaktomas/fras/internal/database/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelsHandler_List(t *testing.T) {
	store := mock.NewMockStore()
	ctx := context.Background()
	for _, name := range []string{"zoe", "alice", "zoe", "Bob"} {
		_, err := store.Append(ctx, name, database.Descriptor{1, 2})
		require.NoError(t, err)
	}

	handler := NewLabelsHandler(store, nil)
	recorder := httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest("GET", "/api/v0/labels", nil))

	assertStatusCode(t, recorder, http.StatusOK)
	assertContentType(t, recorder, "application/json")

	var resp LabelsResponse
	parseJSONResponse(t, recorder, &resp)

	assert.Equal(t, 4, resp.Total)
	want := []database.LabelCount{{Label: "alice", Count: 1}, {Label: "Bob", Count: 1}, {Label: "zoe", Count: 2}}
	assert.Equal(t, want, resp.Labels)
}

func TestLabelsHandler_List_Empty(t *testing.T) {
	handler := NewLabelsHandler(mock.NewMockStore(), nil)
	recorder := httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest("GET", "/api/v0/labels", nil))

	assertStatusCode(t, recorder, http.StatusOK)
	assert.JSONEq(t, `{"labels":[],"total":0}`, recorder.Body.String())
}

func TestLabelsHandler_List_StoreError(t *testing.T) {
	store := mock.NewMockStore()
	store.ScanError = database.ErrStoreUnavailable

	handler := NewLabelsHandler(store, nil)
	recorder := httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest("GET", "/api/v0/labels", nil))

	assertStatusCode(t, recorder, http.StatusInternalServerError)
	assertJSONError(t, recorder, "failed to list labels")
}
