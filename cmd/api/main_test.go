package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appconfig "github.com/casablancax/travel-ai-platform/internal/config"
	"github.com/casablancax/travel-ai-platform/pkg/logging"
)

func TestSetupVoiceMetricsExposesMetrics(t *testing.T) {
	handler, m := setupVoiceMetrics()
	if handler == nil || m == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	m.ObserveLookup("phone", "found")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "travelbucks_status_lookup_total") {
		t.Fatalf("expected lookup counter to be exported")
	}
}

func TestConnectPostgresPoolEmptyURLReturnsNil(t *testing.T) {
	logger := logging.New("error")
	if pool := connectPostgresPool(context.Background(), "", logger); pool != nil {
		t.Fatalf("expected nil pool for empty URL")
	}
}

func TestBuildCaspioClientWithoutCredentials(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{}
	if client := buildCaspioClient(cfg, logger); client != nil {
		t.Fatalf("expected nil client without credentials")
	}
}

func TestBuildRetellClientWithoutKey(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{}
	if client := buildRetellClient(cfg, logger); client != nil {
		t.Fatalf("expected nil client without API key")
	}
}

func TestBuildStoresMockMode(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{UseMockData: true, CustomerStore: "auto"}

	store, memoRepo, leadRepo, recorder := buildStores(cfg, nil, nil, logger)
	if store == nil || memoRepo == nil || leadRepo == nil || recorder == nil {
		t.Fatalf("expected all mock stores to be non-nil")
	}

	rec, err := store.FindByPhone(context.Background(), "8182121359")
	if err != nil {
		t.Fatalf("mock lookup failed: %v", err)
	}
	if rec == nil {
		t.Fatalf("expected a mock customer record")
	}
}

func TestHealthCheckNilClient(t *testing.T) {
	if healthCheck(nil) != nil {
		t.Fatalf("expected nil health check without caspio client")
	}
}
