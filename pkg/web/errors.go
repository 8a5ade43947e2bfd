package web

import (
	"errors"

	"github.com/dukex/resumeflow/pkg/persistence"
	"github.com/dukex/resumeflow/pkg/providers"
	"github.com/dukex/resumeflow/pkg/workflow"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, kind, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType(kind).
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleServiceError maps store and provider errors to problem responses.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case persistence.IsRunNotFound(err):
		return notFound(c, "run_not_found", "run not found")

	case providers.IsDocumentNotFound(err):
		return notFound(c, "document_not_found", err.Error())

	case persistence.IsInvalidRequestID(err), errors.Is(err, providers.ErrInvalidID):
		return badRequest(c, err.Error())

	case providers.IsInvalidDocument(err):
		problem := problems.NewStatusProblem(422).
			WithInstance(c.Path()).
			WithType("invalid_document").
			WithDetail(err.Error())

		return c.Status(fiber.StatusUnprocessableEntity).JSON(problem)

	case errors.Is(err, workflow.ErrTooManyRuns):
		problem := problems.NewStatusProblem(429).
			WithInstance(c.Path()).
			WithType("too_many_runs").
			WithDetail("all run slots are busy, retry later")

		return c.Status(fiber.StatusTooManyRequests).JSON(problem)

	default:
		return internalError(c, err)
	}
}
