package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukex/resumeflow/pkg/agents"
	"github.com/dukex/resumeflow/pkg/config"
	"github.com/dukex/resumeflow/pkg/models"
	"github.com/dukex/resumeflow/pkg/persistence/memory"
	"github.com/dukex/resumeflow/pkg/providers/file"
	"github.com/dukex/resumeflow/pkg/registry"
	"github.com/dukex/resumeflow/pkg/testutil"
	"github.com/dukex/resumeflow/pkg/web"
	"github.com/dukex/resumeflow/pkg/workflow"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := config.Default()
	reg := registry.NewRegistry(slog.Default())
	require.NoError(t, registry.RegisterDefaultAgents(reg, agents.Dependencies{
		Generation: testutil.NewStubGenerator(),
		Config:     cfg,
	}))

	store := memory.NewStore()
	engine := workflow.NewEngine(reg, cfg, workflow.WithStatusStore(store))
	docs := t.TempDir()

	api := NewAPI(slog.Default(), engine, reg, store, file.NewProfileStore(docs), file.NewJobDescriptions(docs))

	return api.App()
}

func TestAPI_RootEndpoint(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "resumeflow API", string(body))
}

func TestAPI_Probes(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	for _, path := range []string{"/livez", "/readyz", "/health"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		_ = resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestAPI_RunRoundTrip(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	payload, err := json.Marshal(web.CreateRunRequest{
		Profile:        testutil.CreateTestProfile(),
		Instructions:   "Tailor my resume toward staff platform engineering roles",
		JobDescription: testutil.JobDescription,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs?wait=true", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result models.WorkflowResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, models.WorkflowStatusCompleted, result.Status)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/runs/"+result.RequestID, nil))
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
