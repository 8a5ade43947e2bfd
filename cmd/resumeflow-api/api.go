// Package main provides the resumeflow API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/dukex/resumeflow/pkg/persistence"
	"github.com/dukex/resumeflow/pkg/providers"
	"github.com/dukex/resumeflow/pkg/registry"
	"github.com/dukex/resumeflow/pkg/web"
	"github.com/dukex/resumeflow/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	logger   *slog.Logger
	engine   *workflow.Engine
	registry *registry.Registry
	store    persistence.RunStore
	profiles providers.ProfileStore
	jobs     providers.JobDescriptionProvider
	validate *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	engine *workflow.Engine,
	registry *registry.Registry,
	store persistence.RunStore,
	profiles providers.ProfileStore,
	jobs providers.JobDescriptionProvider,
) *API {
	return &API{
		logger:   logger,
		engine:   engine,
		registry: registry,
		store:    store,
		profiles: profiles,
		jobs:     jobs,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.engine, a.registry, a.store, a.profiles, a.jobs, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("resumeflow API")
	})

	handlers.Routes(app)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	a.logger.Info("Starting API server", "port", port)

	return app.Listen(":" + strconv.Itoa(port))
}
