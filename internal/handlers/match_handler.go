package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"sjaggi1/resume-parser/internal/models"
	"sjaggi1/resume-parser/internal/services"
)

const maxSearchLimit = 50

type MatchHandler struct {
	resumeService services.ResumeService
}

func NewMatchHandler(resumeService services.ResumeService) *MatchHandler {
	return &MatchHandler{
		resumeService: resumeService,
	}
}

type matchRequestBody struct {
	JobDescription json.RawMessage     `json:"jobDescription"`
	Options        models.MatchOptions `json:"options"`
}

// HandleMatch handles POST /resumes/:id/match
func (h *MatchHandler) HandleMatch(c *fiber.Ctx) error {
	id, ok := resumeID(c)
	if !ok {
		return badRequest(c, "Invalid resume ID format")
	}

	var req matchRequestBody
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	job, err := services.ParseJobDescription(req.JobDescription)
	if err != nil {
		return respondError(c, err)
	}

	resp, err := h.resumeService.Match(c.UserContext(), id, *job, req.Options)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(resp)
}

// HandleSearch handles POST /resumes/search
func (h *MatchHandler) HandleSearch(c *fiber.Ctx) error {
	var req models.SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}
	if req.Query == "" {
		return badRequest(c, "query is required")
	}
	if req.Limit <= 0 {
		req.Limit = 10
	}
	if req.Limit > maxSearchLimit {
		req.Limit = maxSearchLimit
	}

	resp, err := h.resumeService.Search(c.UserContext(), req.Query, req.Limit)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(resp)
}
