package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pebbling/spaarpot/internal/imaging"
	"github.com/pebbling/spaarpot/internal/model"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", fmt.Errorf("claim tx: %w", model.ErrNotFound), http.StatusNotFound, "claim tx: not found"},
		{"already resolved", model.ErrAlreadyResolved, http.StatusConflict, model.ErrAlreadyResolved.Error()},
		{"insufficient", &model.InsufficientInventoryError{Available: 1, Requested: 2}, http.StatusUnprocessableEntity, ""},
		{"validation", &model.ValidationError{Field: "quantity", Message: "must be positive"}, http.StatusBadRequest, ""},
		{"image format", imaging.ErrUnsupportedFormat, http.StatusBadRequest, imaging.ErrUnsupportedFormat.Error()},
		{"infrastructure", errors.New("disk I/O error"), http.StatusInternalServerError, "failed to do it"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err, "failed to do it")

			assert.Equal(t, tt.status, rec.Code)
			var body map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			if tt.message != "" {
				assert.Equal(t, tt.message, body["error"])
			}
			if tt.status == http.StatusInternalServerError {
				assert.NotContains(t, body["error"], "disk")
			}
		})
	}
}
