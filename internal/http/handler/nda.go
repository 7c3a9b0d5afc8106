package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"ndavault/internal/http/middleware"
	"ndavault/internal/nda"
	"ndavault/internal/service"
)

// confidentialArrayKey is the bracketed field name browser forms post for the list.
const confidentialArrayKey = "confidential[]"

type generateTextResponse struct {
	Text string `json:"text"`
}

type generatePDFRequest struct {
	Text string `json:"text" form:"text"`
}

// GenerateText builds the agreement text from the submitted form.
//
// @Summary Generate NDA text
// @Tags nda
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param form body nda.Form true "Agreement parties and terms"
// @Success 200 {object} generateTextResponse
// @Failure 400 {object} errorPayload
// @Security BearerAuth
// @Router /nda/generate [post]
func GenerateText() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var form nda.Form
		if err := c.BodyParser(&form); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_FORM", "unreadable form")
		}
		if len(form.Confidential) == 0 {
			form.Confidential = confidentialArray(c)
		}

		text, err := nda.Generate(form)
		if err != nil {
			var ve *nda.ValidationError
			if errors.As(err, &ve) {
				return writeError(c, fiber.StatusBadRequest, "INVALID_FORM", ve.Error())
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(generateTextResponse{Text: text})
	}
}

func confidentialArray(c *fiber.Ctx) []string {
	var items []string
	for _, v := range c.Request().PostArgs().PeekMulti(confidentialArrayKey) {
		items = append(items, string(v))
	}
	if len(items) == 0 && strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		if mf, err := c.MultipartForm(); err == nil {
			items = append(items, mf.Value[confidentialArrayKey]...)
		}
	}
	return items
}

// GeneratePDF renders the reviewed agreement text, stores it and returns the PDF.
//
// @Summary Generate, store and download the NDA PDF
// @Tags nda
// @Accept json,x-www-form-urlencoded
// @Produce application/pdf
// @Param body body generatePDFRequest true "Final agreement text"
// @Success 201 {file} file
// @Failure 400 {object} errorPayload
// @Failure 402 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Security BearerAuth
// @Router /nda/generate-pdf [post]
func GeneratePDF(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		var req generatePDFRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "CONTENT_REQUIRED", "document content is required")
		}

		gen, err := docSvc.GeneratePDF(c.UserContext(), *user, req.Text)
		if err != nil {
			return writeServiceError(c, err)
		}

		c.Set(middleware.DocumentIDHeader, gen.Document.ID)
		c.Attachment(gen.Document.Filename)
		return c.Status(fiber.StatusCreated).Send(gen.PDF)
	}
}
