package response

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/smartwardrobe/wardrobe-server/internal/errors"
	"github.com/smartwardrobe/wardrobe-server/internal/store"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestSuccess(t *testing.T) {
	w := httptest.NewRecorder()

	Success(w, map[string]any{"key": "items/2024/05/01/a.jpg"}, discard())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	env := decode(t, w)
	assert.Equal(t, Version, env.V)
	assert.True(t, env.Success)
	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "items/2024/05/01/a.jpg", data["key"])
}

func TestCreated(t *testing.T) {
	w := httptest.NewRecorder()

	Created(w, map[string]string{"url": "http://localhost/objects/a.jpg"}, nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decode(t, w).Success)
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()

	NoContent(w)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(http.ResponseWriter)
		status int
		code   string
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "bad key", nil) }, 400, "VALIDATION"},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "no object", nil) }, 404, "NOT_FOUND"},
		{"too large", func(w http.ResponseWriter) { TooLarge(w, "too big", nil) }, 413, "INVALID_INPUT"},
		{"too many", func(w http.ResponseWriter) { TooManyRequests(w, "slow down", nil) }, 429, "UNAVAILABLE"},
		{"internal", func(w http.ResponseWriter) { InternalError(w, "boom", nil) }, 500, "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			assert.Equal(t, tt.status, w.Code)
			env := decode(t, w)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Code)
			assert.NotEmpty(t, env.Error)
			assert.Equal(t, env.Error, env.Message)
			assert.Nil(t, env.Data)
		})
	}
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:    "domain error",
			err:     domainerrors.InvalidInput("image exceeds the size limit", "too_large"),
			status:  http.StatusBadRequest,
			code:    "INVALID_INPUT",
			message: "image exceeds the size limit",
		},
		{
			name:    "store error",
			err:     store.ErrAlreadyExists.WithMessage("sections.name already taken"),
			status:  http.StatusConflict,
			code:    "DUPLICATE",
			message: "sections.name already taken",
		},
		{
			name:    "wrapped store error",
			err:     errors.Join(errors.New("tx"), store.ErrNotFound),
			status:  http.StatusNotFound,
			code:    "NOT_FOUND",
			message: store.ErrNotFound.Message,
		},
		{
			name:    "unknown error is hidden",
			err:     errors.New("disk exploded"),
			status:  http.StatusInternalServerError,
			code:    "INTERNAL",
			message: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			HandleError(w, tt.err, discard())

			assert.Equal(t, tt.status, w.Code)
			env := decode(t, w)
			assert.Equal(t, tt.code, env.Code)
			assert.Equal(t, tt.message, env.Message)
		})
	}
}

func TestHandleError_KeepsDetails(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, domainerrors.InvalidInput("unsupported image type", "unsupported_type"), nil)

	assert.Equal(t, "unsupported_type", decode(t, w).Details)
}

func TestStatusBoundary(t *testing.T) {
	for _, tt := range []struct {
		status  int
		success bool
	}{
		{200, true}, {201, true}, {399, true}, {400, false}, {404, false}, {500, false},
	} {
		w := httptest.NewRecorder()
		JSON(w, tt.status, nil, nil)
		assert.Equal(t, tt.success, decode(t, w).Success, "status %d", tt.status)
	}
}

func TestEnvelope_OmitEmpty(t *testing.T) {
	data, err := json.Marshal(Ok("x"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1,"success":true,"data":"x"}`, string(data))

	data, err = json.Marshal(Fail("NOT_FOUND", "gone", nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1,"success":false,"error":"gone","code":"NOT_FOUND","message":"gone"}`, string(data))
}
