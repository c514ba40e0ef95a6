package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/estate-backoffice/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type fakeLifecycle struct {
	result services.LifecycleResult
	err    error
	calls  int
}

func (f *fakeLifecycle) ProcessLifecycle(ctx context.Context) (services.LifecycleResult, error) {
	f.calls++
	return f.result, f.err
}

func newCronApp(lifecycle LifecycleRunner, secret string) *fiber.App {
	app := fiber.New()
	h := NewCronHandler(lifecycle, secret, zap.NewNop())
	app.Get("/api/cron/process-lifecycle", h.ProcessLifecycle)
	return app
}

func TestCronLifecycleMissingSecret(t *testing.T) {
	lifecycle := &fakeLifecycle{}
	app := newCronApp(lifecycle, "")

	req := httptest.NewRequest(http.MethodGet, "/api/cron/process-lifecycle", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 when secret is unconfigured", resp.StatusCode)
	}
	if lifecycle.calls != 0 {
		t.Error("lifecycle should not run without a configured secret")
	}
}

func TestCronLifecycleBadToken(t *testing.T) {
	lifecycle := &fakeLifecycle{}
	app := newCronApp(lifecycle, "topsecret")

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong token", "Bearer nope"},
		{"empty bearer", "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/cron/process-lifecycle", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			if resp.StatusCode != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", resp.StatusCode)
			}
		})
	}
	if lifecycle.calls != 0 {
		t.Error("lifecycle should not run with a bad token")
	}
}

func TestCronLifecycleSuccess(t *testing.T) {
	lifecycle := &fakeLifecycle{
		result: services.LifecycleResult{PreVisitDecayed: 2, PostVisitDecayed: 1, Total: 3},
	}
	app := newCronApp(lifecycle, "topsecret")

	req := httptest.NewRequest(http.MethodGet, "/api/cron/process-lifecycle", nil)
	req.Header.Set("Authorization", "Bearer topsecret")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var payload struct {
		Success bool                     `json:"success"`
		Result  services.LifecycleResult `json:"result"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !payload.Success {
		t.Error("success should be true")
	}
	if payload.Result.Total != 3 {
		t.Errorf("total = %d, want 3", payload.Result.Total)
	}
	if lifecycle.calls != 1 {
		t.Errorf("lifecycle calls = %d, want 1", lifecycle.calls)
	}
}

func TestCronLifecyclePartialFailureStillResponds(t *testing.T) {
	lifecycle := &fakeLifecycle{
		result: services.LifecycleResult{PostVisitDecayed: 1, Total: 1},
		err:    errors.New("pre-visit pass timeout"),
	}
	app := newCronApp(lifecycle, "topsecret")

	req := httptest.NewRequest(http.MethodGet, "/api/cron/process-lifecycle", nil)
	req.Header.Set("Authorization", "Bearer topsecret")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 with partial results", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var payload struct {
		Success bool                     `json:"success"`
		Result  services.LifecycleResult `json:"result"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.Success {
		t.Error("success should be false on a failing pass")
	}
	if payload.Result.Total != 1 {
		t.Errorf("total = %d, want the partial count", payload.Result.Total)
	}
}
