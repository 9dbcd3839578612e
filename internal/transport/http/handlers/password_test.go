package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Redabouizer/crealik-auth/internal/infra/security"
)

func newStrengthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewPasswordHandler(nil)
	handler.RegisterRoutes(router.Group("/password"))
	return router
}

func TestPasswordStrengthEndpoint(t *testing.T) {
	router := newStrengthRouter()

	body := strings.NewReader(`{"password":"Abcdef1!"}`)
	req := httptest.NewRequest(http.MethodPost, "/password/strength", body)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var result security.StrengthResult
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if result.Score != 5 || result.Tier != security.StrengthStrong {
		t.Fatalf("expected score 5 strong, got %d %s", result.Score, result.Tier)
	}
	if len(result.Feedback) != 0 {
		t.Fatalf("expected no feedback for a strong password, got %v", result.Feedback)
	}
}

func TestPasswordStrengthEndpointListsHints(t *testing.T) {
	router := newStrengthRouter()

	body := strings.NewReader(`{"password":"abc"}`)
	req := httptest.NewRequest(http.MethodPost, "/password/strength", body)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var result security.StrengthResult
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if result.Tier != security.StrengthWeak {
		t.Fatalf("expected weak tier, got %s", result.Tier)
	}
	if len(result.Feedback) == 0 {
		t.Fatalf("expected remediation hints for a weak password")
	}
}

func TestPasswordStrengthEndpointRejectsBadPayload(t *testing.T) {
	router := newStrengthRouter()

	req := httptest.NewRequest(http.MethodPost, "/password/strength", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}
