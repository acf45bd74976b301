package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tripbite/internal/config"
	"github.com/mmynk/tripbite/internal/consensus"
	"github.com/mmynk/tripbite/internal/places"
	"github.com/mmynk/tripbite/internal/service"
	"github.com/mmynk/tripbite/internal/storage/memory"
)

func testConfig() *config.Config {
	return &config.Config{
		Addr:       ":0",
		Driver:     config.DriverMemory,
		JWTSecret:  "test-secret",
		SessionTTL: time.Hour,
		BcryptCost: 4,
		Weights:    consensus.DefaultWeights,
	}
}

func TestHandlerWiring(t *testing.T) {
	server := httptest.NewServer(newHandler(testConfig(), memory.New(), places.MockSearcher{}))
	t.Cleanup(server.Close)

	register := connect.NewClient[service.RegisterRequest, service.RegisterResponse](
		server.Client(), server.URL+service.AuthServiceRegisterProcedure, service.Codec())
	_, err := register.CallUnary(context.Background(), connect.NewRequest(&service.RegisterRequest{
		ID: "alice", Password: "password1", DisplayName: "Alice",
	}))
	require.NoError(t, err)

	current := connect.NewClient[service.GetCurrentUserRequest, service.GetCurrentUserResponse](
		server.Client(), server.URL+service.AuthServiceGetCurrentUserProcedure, service.Codec())
	_, err = current.CallUnary(context.Background(), connect.NewRequest(&service.GetCurrentUserRequest{}))
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))

	resp, err := server.Client().Get(server.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "tripbite_rpc_requests_total"))

	resp, err = server.Client().Get(server.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	handler := newHandler(testConfig(), memory.New(), places.MockSearcher{})
	req := httptest.NewRequest(http.MethodOptions, service.GroupServiceCreateGroupProcedure, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestNewSearcher(t *testing.T) {
	assert.IsType(t, places.MockSearcher{}, newSearcher(config.Places{}))
	assert.IsType(t, &places.GoogleClient{}, newSearcher(config.Places{APIKey: "key"}))
}

func TestOpenStoreRejectsUnknownDriver(t *testing.T) {
	cfg := testConfig()
	cfg.Driver = "postgres"
	_, err := openStore(cfg)
	assert.Error(t, err)
}
