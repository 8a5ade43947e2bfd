// Package web provides HTTP handlers and REST API endpoints for tailoring runs.
package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/dukex/resumeflow/pkg/models"
	"github.com/dukex/resumeflow/pkg/persistence"
	"github.com/dukex/resumeflow/pkg/protocol"
	"github.com/dukex/resumeflow/pkg/providers"
	"github.com/dukex/resumeflow/pkg/registry"
	"github.com/dukex/resumeflow/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	engine    *workflow.Engine
	registry  *registry.Registry
	store     persistence.RunStore
	profiles  providers.ProfileStore
	jobs      providers.JobDescriptionProvider
	validator *validator.Validate
}

// NewAPIHandlers builds the handlers. profiles and jobs may be nil, in which
// case requests must carry documents inline.
func NewAPIHandlers(
	engine *workflow.Engine,
	registry *registry.Registry,
	store persistence.RunStore,
	profiles providers.ProfileStore,
	jobs providers.JobDescriptionProvider,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		engine:    engine,
		registry:  registry,
		store:     store,
		profiles:  profiles,
		jobs:      jobs,
		validator: validator,
	}
}

// Routes mounts the API on router.
func (h *APIHandlers) Routes(router fiber.Router) {
	runs := router.Group("/api/v1/runs")
	runs.Post("/", h.CreateRun)
	runs.Get("/:id", h.GetRun)

	router.Get("/api/v1/agents", h.ListAgents)
	router.Get("/health", h.HealthCheck)
}

// CreateRun starts a run. By default the run continues in the background and
// 202 is returned with its request id; with ?wait=true the finished result is
// returned.
func (h *APIHandlers) CreateRun(c fiber.Ctx) error {
	var req CreateRunRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	wait, err := strconv.ParseBool(c.Query("wait", "false"))
	if err != nil {
		return badRequest(c, "wait must be a boolean")
	}

	runReq, err := h.buildRequest(c.Context(), req)
	if err != nil {
		return handleServiceError(c, err)
	}

	if runReq.Profile == nil {
		return badRequest(c, "profile_id requires a configured profile store")
	}

	if wait {
		result := h.engine.Run(c.Context(), runReq)

		return c.JSON(result)
	}

	// The request context is recycled once the handler returns.
	requestID, err := h.engine.Submit(context.Background(), runReq)
	if err != nil {
		return handleServiceError(c, err)
	}

	statusURL := "/api/v1/runs/" + requestID

	c.Set(fiber.HeaderLocation, statusURL)

	return c.Status(fiber.StatusAccepted).JSON(CreateRunResponse{
		RequestID: requestID,
		Status:    models.WorkflowStatusRunning,
		StatusURL: statusURL,
	})
}

func (h *APIHandlers) buildRequest(ctx context.Context, req CreateRunRequest) (workflow.Request, error) {
	runReq := workflow.Request{
		Profile:        req.Profile,
		Instructions:   req.Instructions,
		JobDescription: req.JobDescription,
	}

	if runReq.Profile == nil && h.profiles != nil {
		profile, err := h.profiles.LoadProfile(ctx, req.ProfileID)
		if err != nil {
			return runReq, err
		}

		runReq.Profile = profile
	}

	if req.JobDescriptionID != "" {
		if h.jobs == nil {
			return runReq, providers.NewDocumentError("JobDescription", req.JobDescriptionID, providers.ErrDocumentNotFound)
		}

		text, err := h.jobs.JobDescription(ctx, req.JobDescriptionID)
		if err != nil {
			return runReq, err
		}

		runReq.JobDescription = text
	}

	return runReq, nil
}

func (h *APIHandlers) GetRun(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Run ID is required")
	}

	status, err := h.engine.GetStepStatus(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(status)
}

func (h *APIHandlers) ListAgents(c fiber.Ctx) error {
	names := h.registry.Names()
	agents := make([]AgentResponse, 0, len(names))

	for _, name := range names {
		response := AgentResponse{Name: name}

		agent, err := h.registry.Resolve(name)
		if err != nil {
			return internalError(c, err)
		}

		if describer, ok := agent.(protocol.Describer); ok {
			response.Description = describer.Description()
		}

		agents = append(agents, response)
	}

	return c.JSON(fiber.Map{"agents": agents})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	checkers := map[string]string{"registry": "ok", "store": "ok"}
	healthy := true

	if len(h.registry.Names()) == 0 {
		checkers["registry"] = "no agents registered"
		healthy = false
	}

	if err := h.store.HealthCheck(c.Context()); err != nil {
		checkers["store"] = err.Error()
		healthy = false
	}

	response := HealthResponse{
		Status:    "unhealthy",
		Message:   "resumeflow API is unhealthy",
		Checkers:  checkers,
		Timestamp: time.Now().UTC(),
	}
	httpStatus := http.StatusServiceUnavailable

	if healthy {
		response.Status = "healthy"
		response.Message = "resumeflow API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(response)
}
