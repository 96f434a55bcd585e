package response

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	customError "github.com/segyhp/installment-engine/pkg/errors"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{customError.InvalidArgument("bad"), http.StatusBadRequest},
		{customError.WrapCountMismatch(3, 2), http.StatusBadRequest},
		{customError.WrapContractNotFound("CT-1"), http.StatusNotFound},
		{customError.WrapEventNotFound("CT-1", 2), http.StatusNotFound},
		{customError.WrapAdministratorNotFound("CT-1", "52998224725"), http.StatusNotFound},
		{customError.WrapContractAlreadyExists("A", "CT-1"), http.StatusConflict},
		{customError.WrapInvalidStateTransition("event 1", "COMPLETED", "COMPLETED"), http.StatusConflict},
		{customError.WrapSumMismatch("10.00", "9.99"), http.StatusUnprocessableEntity},
		{customError.WrapDatabaseError(errors.New("down")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusFor(tt.err))
		})
	}
}

func TestFromError(t *testing.T) {
	w := httptest.NewRecorder()
	FromError(w, "Failed", customError.WrapContractNotFound("CT-1"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"CONTRACT_NOT_FOUND"`)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"path":"/health"`)
}
