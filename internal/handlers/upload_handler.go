package handlers

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"sjaggi1/resume-parser/internal/models"
	"sjaggi1/resume-parser/internal/services"
)

type UploadHandler struct {
	resumeService services.ResumeService
	maxFileSize   int64
}

func NewUploadHandler(resumeService services.ResumeService, maxFileSize int64) *UploadHandler {
	return &UploadHandler{
		resumeService: resumeService,
		maxFileSize:   maxFileSize,
	}
}

// HandleUpload handles POST /resumes/upload. The multipart form carries the
// document in "file" and an optional JSON "options" field.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "No file provided. Upload the resume in the 'file' form field.")
	}

	if h.maxFileSize > 0 && fileHeader.Size > h.maxFileSize {
		return respondError(c, fmt.Errorf("%w: %d bytes, limit is %d", models.ErrFileTooLarge, fileHeader.Size, h.maxFileSize))
	}

	opts := models.DefaultParseOptions()
	if raw := c.FormValue("options"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &opts); err != nil {
			return badRequest(c, "options must be a JSON object")
		}
	}

	src, err := fileHeader.Open()
	if err != nil {
		return respondError(c, fmt.Errorf("failed to open uploaded file: %w", err))
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return respondError(c, fmt.Errorf("failed to read uploaded file: %w", err))
	}

	resp, err := h.resumeService.Submit(c.UserContext(), fileHeader.Filename, data, opts)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(resp)
}
