package response

import (
	"errors"
	"net/http"
	"testing"

	"github.com/dootask/asset-hub-sub002/pkg/apperror"

	"github.com/stretchr/testify/assert"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"typed", apperror.New(apperror.CodeAlreadyFinalized, "approval request is already approved"), http.StatusConflict, "ALREADY_FINALIZED", "approval request is already approved"},
		{"internal hides cause", apperror.Wrap(errors.New("pq: relation missing"), apperror.CodeInternal, "database error"), http.StatusInternalServerError, "", "database error"},
		{"untyped", errors.New("boom"), http.StatusInternalServerError, "", "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := FromError(tt.err)
			assert.Equal(t, "error", resp.Status)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, tt.wantMsg, resp.Error)
		})
	}
}
