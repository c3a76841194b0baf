package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/threadchat/threadchat-server/internal/auth"
	"github.com/threadchat/threadchat-server/internal/config"
	"github.com/threadchat/threadchat-server/internal/core"
	"github.com/threadchat/threadchat-server/internal/store"
	"github.com/threadchat/threadchat-server/internal/store/sqlite"
)

// createTestStore creates an in-memory SQLite store with the user schema.
func createTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// createTestAuthService creates an auth service for testing.
func createTestAuthService(t *testing.T, st store.Store, jwtSecret string) *auth.Service {
	t.Helper()

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(jwtSecret),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}

	return auth.NewService(st, jwtConfig)
}

// startTestServer boots a full hub + HTTP stack on an httptest server.
func startTestServer(t *testing.T) (*httptest.Server, *auth.Service) {
	t.Helper()

	logger := zerolog.Nop()
	st := createTestStore(t)
	authService := createTestAuthService(t, st, "test-secret-change-me")

	hub := core.NewHub(&logger, core.FanoutBroadcast)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := NewServer(hub, authService, config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
	}, &logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, authService
}
