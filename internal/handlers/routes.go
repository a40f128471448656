package handlers

import (
	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Upload *UploadHandler
	Resume *ResumeHandler
	Match  *MatchHandler
	Health *HealthHandler
}

// Register mounts every endpoint under router, normally the /api/v1 group.
func (h *Handlers) Register(router fiber.Router) {
	router.Get("/health", h.Health.HandleHealth)

	resumes := router.Group("/resumes")
	resumes.Post("/upload", h.Upload.HandleUpload)
	resumes.Post("/search", h.Match.HandleSearch)
	resumes.Get("/:id", h.Resume.HandleGet)
	resumes.Put("/:id", h.Resume.HandleUpdate)
	resumes.Delete("/:id", h.Resume.HandleDelete)
	resumes.Get("/:id/status", h.Resume.HandleStatus)
	resumes.Post("/:id/reprocess", h.Resume.HandleReprocess)
	resumes.Post("/:id/match", h.Match.HandleMatch)
}
