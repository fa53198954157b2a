package adminclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "admin-secret"

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprint(w, body)
}

func TestClient_SendsTokenAndDecodesList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testToken, r.Header.Get(TokenHeader))
		assert.Equal(t, "/certificates", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"data":[{"id":"c1","userId":7,"courseId":3,"status":"pending"}]}`)
	}))
	defer srv.Close()

	certs, err := New(srv.URL, testToken, time.Second).List(t.Context())
	require.NoError(t, err)
	require.Len(t, certs, 1)
	assert.Equal(t, "c1", certs[0].ID)
	assert.Equal(t, int64(7), certs[0].UserID)
}

func TestClient_CreateOmitsEmptyStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotContains(t, body, "status")
		assert.InDelta(t, 7, body["userId"], 0)
		writeJSON(w, http.StatusCreated, `{"id":"c1","userId":7,"courseId":3,"status":"pending"}`)
	}))
	defer srv.Close()

	cert, err := New(srv.URL, testToken, time.Second).Create(t.Context(), 7, 3, "")
	require.NoError(t, err)
	assert.Equal(t, "pending", cert.Status)
}

func TestClient_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusConflict, `{"error":"conflict","error_description":"certificate already exists"}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL, testToken, time.Second).Create(t.Context(), 7, 3, "approved")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "conflict", apiErr.Code)
	assert.Equal(t, "certificate already exists", apiErr.Description)
	assert.True(t, IsStatus(err, http.StatusConflict))
}

func TestClient_DeleteWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		if r.URL.Path == "/certificates/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, testToken, time.Second)
	require.NoError(t, c.Delete(t.Context(), "c1"))

	err := c.Delete(t.Context(), "missing")
	assert.True(t, IsStatus(err, http.StatusNotFound))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "not_found", apiErr.Code)
}

func TestClient_SetStatusAllTracksEachCertificate(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		mu.Lock()
		seen[r.URL.Path] = body["status"]
		mu.Unlock()
		if r.URL.Path == "/certificates/bad" {
			writeJSON(w, http.StatusNotFound, `{"error":"not_found","error_description":"certificate not found"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"id":"x","status":"approved"}`)
	}))
	defer srv.Close()

	tracker := NewTracker()
	err := New(srv.URL, testToken, time.Second).
		SetStatusAll(t.Context(), tracker, []string{"a", "bad", "b"}, "approved", 2)
	require.Error(t, err)

	assert.Len(t, seen, 3)
	assert.Equal(t, "approved", seen["/certificates/a"])
	assert.Equal(t, PhaseSucceeded, tracker.State(OpID("status", "a")).Phase)
	assert.Equal(t, PhaseSucceeded, tracker.State(OpID("status", "b")).Phase)
	assert.Equal(t, PhaseFailed, tracker.State(OpID("status", "bad")).Phase)
	assert.Equal(t, []string{OpID("status", "bad")}, tracker.Failed())
	assert.True(t, IsStatus(err, http.StatusNotFound))
}
