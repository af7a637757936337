package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/formai-backend/internal/apperr"
)

func TestRespondAppErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "not_found", err: apperr.NotFound("sport_config_not_found", errors.New("x")), wantStatus: http.StatusNotFound, wantCode: "sport_config_not_found"},
		{name: "bad_credentials", err: apperr.Auth("invalid_credentials", errors.New("x")), wantStatus: http.StatusUnauthorized, wantCode: "invalid_credentials"},
		{name: "duplicate_username", err: apperr.Auth("username_taken", errors.New("x")), wantStatus: http.StatusBadRequest, wantCode: "username_taken"},
		{name: "provider", err: apperr.Provider("provider_processing_failed", errors.New("x")), wantStatus: http.StatusBadGateway, wantCode: "provider_processing_failed"},
		{name: "timeout", err: apperr.Timeout("provider_processing_timeout", errors.New("x")), wantStatus: http.StatusGatewayTimeout, wantCode: "provider_processing_timeout"},
		{name: "plain_error", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			RespondAppError(c, tc.err)

			if w.Code != tc.wantStatus {
				t.Fatalf("status=%d, want %d", w.Code, tc.wantStatus)
			}
			var envelope ErrorEnvelope
			if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
				t.Fatalf("invalid error body: %v", err)
			}
			if envelope.Error.Code != tc.wantCode {
				t.Fatalf("code=%q, want %q", envelope.Error.Code, tc.wantCode)
			}
		})
	}
}

func TestRootLiveness(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Root(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body["status"] != "active" || body["system"] != "FormAI Brain" {
		t.Fatalf("unexpected liveness payload: %v", body)
	}
}
