package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

func TestLiveness(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

	if err := NewHealthHandler().Liveness(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func runReadiness(t *testing.T, checks ...Check) (int, readinessResponse) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)

	if err := NewHealthDependenciesHandler(checks...).Readiness(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return rec.Code, body
}

func TestReadiness_AllHealthy(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	code, body := runReadiness(t,
		RedisCheck(rdb),
		Check{Name: "mongodb", Ping: func(context.Context) error { return nil }},
	)
	if code != http.StatusOK || body.Status != "ok" {
		t.Fatalf("expected ok, got %d %q", code, body.Status)
	}
	if body.Dependencies["redis"].Status != "ok" {
		t.Fatalf("expected redis ok, got %+v", body.Dependencies["redis"])
	}
}

func TestReadiness_Degraded(t *testing.T) {
	code, body := runReadiness(t,
		Check{Name: "mongodb", Ping: func(context.Context) error { return errors.New("no reachable servers") }},
		Check{Name: "redis", Ping: func(context.Context) error { return nil }},
	)
	if code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", code)
	}
	if body.Status != "degraded" {
		t.Fatalf("expected degraded, got %q", body.Status)
	}
	if body.Dependencies["mongodb"].Error != "no reachable servers" {
		t.Fatalf("unexpected mongodb status: %+v", body.Dependencies["mongodb"])
	}
	if body.Dependencies["redis"].Status != "ok" {
		t.Fatalf("unexpected redis status: %+v", body.Dependencies["redis"])
	}
}
