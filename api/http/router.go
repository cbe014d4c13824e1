package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/copilot/api/http/handlers"
)

// Register wires all HTTP routes onto given Fiber app.
func Register(
	app *fiber.App,
	authMW fiber.Handler,
	auth *handlers.AuthHandler,
	health *handlers.HealthHandler,
	sess *handlers.SessionHandler,
	flow *handlers.WorkflowHandler,
	gen *handlers.GenerateHandler,
	hist *handlers.HistoryHandler,
) {
	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Health and readiness endpoints for probes/monitoring
	v1.Get("/health", health.Health)
	v1.Get("/ready", health.Ready)

	a := v1.Group("/auth")
	a.Post("/login", auth.Login)

	// Всё остальное только под JWT.
	s := v1.Group("/session", authMW)
	s.Post("/", sess.Start)
	s.Get("/", sess.Get)
	s.Post("/resume", sess.UploadResume)
	s.Post("/job", sess.SetJob)

	s.Post("/navigate", flow.Navigate)
	s.Post("/back", flow.Back)
	s.Get("/progress", flow.Progress)

	s.Post("/analyze", gen.Analyze)

	s.Post("/resumes/generate", gen.Resumes)
	s.Post("/resumes/select", sess.SelectArtifact(false))
	s.Put("/resumes/:index", sess.EditArtifact(false))

	s.Post("/coverletters/generate", gen.CoverLetters)
	s.Post("/coverletters/select", sess.SelectArtifact(true))
	s.Put("/coverletters/:index", sess.EditArtifact(true))

	s.Post("/questions/generate", gen.Questions)
	s.Post("/answers", gen.Answer)
	s.Post("/candidate-questions/generate", gen.CandidateQuestions)

	s.Post("/mock/utterance", gen.MockUtterance)
	s.Post("/mock/feedback", gen.MockFeedback)

	s.Post("/finish", sess.Finish)
	s.Post("/error/dismiss", sess.DismissError)

	h := v1.Group("/history", authMW)
	h.Get("/", hist.List)
	h.Post("/:id/load", hist.Load)
}
