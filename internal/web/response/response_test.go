package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodigyview/helium/internal/orm/validation"
)

func TestCreateResponse(t *testing.T) {
	r := CreateResponse(http.StatusFound)
	assert.Equal(t, 302, r.Code)
	assert.Equal(t, "Found", r.Status)
	assert.Equal(t, "302 Found", r.Body)

	assert.Equal(t, "799 Unknown Status", CreateResponse(799).String())
}

func TestResponse_Write(t *testing.T) {
	w := httptest.NewRecorder()
	w.Header().Set("Location", "/posts")

	require.NoError(t, CreateResponse(http.StatusSeeOther).Write(w))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "303 See Other", w.Body.String())
	assert.Equal(t, "/posts", w.Header().Get("Location"))
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
}

func TestRenderError(t *testing.T) {
	w := httptest.NewRecorder()
	RenderError(w, http.StatusInternalServerError, errors.New("something went wrong"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "something went wrong", resp.Message)
	assert.Equal(t, "internal_error", resp.Code)
}

func TestRenderValidationError(t *testing.T) {
	errs := validation.Errors{}
	errs.Add("title", "Title is required")

	w := httptest.NewRecorder()
	RenderValidationError(w, errs)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp ValidationErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, []string{"Title is required"}, resp.Fields["title"])
}

func TestHTTPError(t *testing.T) {
	err := NewHTTPError(http.StatusNotFound, "no such post")
	assert.Equal(t, "not_found", err.Code)

	w := httptest.NewRecorder()
	err.Render(w)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "no such post")
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{http.StatusBadRequest, "bad_request"},
		{http.StatusTooManyRequests, "too_many_requests"},
		{http.StatusTeapot, "error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorCode(tt.status))
	}
}

func TestWantsJSON(t *testing.T) {
	tests := []struct {
		accept string
		want   bool
	}{
		{"", false},
		{"text/html,application/xhtml+xml", false},
		{"application/json", true},
		{"text/html, application/vnd.api+json;q=0.9", true},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Accept", tt.accept)
		assert.Equal(t, tt.want, WantsJSON(r), tt.accept)
	}
}

func TestFail(t *testing.T) {
	jsonReq := httptest.NewRequest(http.MethodGet, "/", nil)
	jsonReq.Header.Set("Accept", "application/json")
	plainReq := httptest.NewRequest(http.MethodGet, "/", nil)

	errs := validation.Errors{}
	errs.Add("title", "Title is required")

	t.Run("internal errors hide the message", func(t *testing.T) {
		w := httptest.NewRecorder()
		Fail(w, jsonReq, errors.New("db password is hunter2"))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "hunter2")
		assert.Contains(t, w.Body.String(), "internal_error")
	})

	t.Run("http errors keep their status", func(t *testing.T) {
		err := fmt.Errorf("postsController.edit: %w", NewHTTPError(http.StatusForbidden, "not yours"))
		w := httptest.NewRecorder()
		Fail(w, jsonReq, err)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "not yours")

		w = httptest.NewRecorder()
		Fail(w, plainReq, err)
		assert.Equal(t, "403 Forbidden", w.Body.String())
	})

	t.Run("validation errors list the fields", func(t *testing.T) {
		w := httptest.NewRecorder()
		Fail(w, jsonReq, &ValidationError{Errors: errs})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		var resp ValidationErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, []string{"Title is required"}, resp.Fields["title"])

		w = httptest.NewRecorder()
		Fail(w, plainReq, &ValidationError{Errors: errs})
		assert.Equal(t, "422 Unprocessable Entity", w.Body.String())
	})
}
