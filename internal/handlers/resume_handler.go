package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"sjaggi1/resume-parser/internal/models"
	"sjaggi1/resume-parser/internal/services"
)

type ResumeHandler struct {
	resumeService services.ResumeService
}

func NewResumeHandler(resumeService services.ResumeService) *ResumeHandler {
	return &ResumeHandler{
		resumeService: resumeService,
	}
}

func resumeID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// HandleGet handles GET /resumes/:id
func (h *ResumeHandler) HandleGet(c *fiber.Ctx) error {
	id, ok := resumeID(c)
	if !ok {
		return badRequest(c, "Invalid resume ID format")
	}

	rec, err := h.resumeService.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}

	response := models.ResumeResponse{
		ResumeID: rec.ID,
		Status:   rec.Status,
	}
	if rec.Status == models.StatusCompleted {
		response.Profile = rec.Profile
	}
	if rec.Status == models.StatusFailed {
		response.ErrorCode = rec.ErrorCode
		response.ErrorMessage = rec.ErrorMessage
	}

	return c.JSON(response)
}

// HandleUpdate handles PUT /resumes/:id
func (h *ResumeHandler) HandleUpdate(c *fiber.Ctx) error {
	id, ok := resumeID(c)
	if !ok {
		return badRequest(c, "Invalid resume ID format")
	}

	profile, err := h.resumeService.Update(c.UserContext(), id, c.Body())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.ResumeResponse{
		ResumeID: id,
		Status:   models.StatusCompleted,
		Profile:  profile,
	})
}

// HandleDelete handles DELETE /resumes/:id
func (h *ResumeHandler) HandleDelete(c *fiber.Ctx) error {
	id, ok := resumeID(c)
	if !ok {
		return badRequest(c, "Invalid resume ID format")
	}

	if err := h.resumeService.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// HandleStatus handles GET /resumes/:id/status
func (h *ResumeHandler) HandleStatus(c *fiber.Ctx) error {
	id, ok := resumeID(c)
	if !ok {
		return badRequest(c, "Invalid resume ID format")
	}

	status, err := h.resumeService.Status(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(status)
}

// HandleReprocess handles POST /resumes/:id/reprocess
func (h *ResumeHandler) HandleReprocess(c *fiber.Ctx) error {
	id, ok := resumeID(c)
	if !ok {
		return badRequest(c, "Invalid resume ID format")
	}

	if err := h.resumeService.Reprocess(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"resumeId": id,
		"status":   models.StatusQueued,
		"message":  "Resume queued for reprocessing",
	})
}
