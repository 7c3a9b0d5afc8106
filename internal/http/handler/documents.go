package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ndavault/internal/http/middleware"
	"ndavault/internal/service"
)

// ListDocuments returns the caller's documents, newest first.
//
// @Summary List my documents
// @Tags documents
// @Produce json
// @Param limit query int false "page size" default(10)
// @Param offset query int false "page offset" default(0)
// @Success 200 {object} service.DocumentListResult
// @Failure 400 {object} errorPayload
// @Security BearerAuth
// @Router /documents [get]
func ListDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := docSvc.List(c.UserContext(), user.ID, limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// OpenDocument redirects to a short-lived URL for viewing or downloading.
//
// @Summary Open a document
// @Tags documents
// @Param id path string true "document id"
// @Param action query string false "view or download" Enums(view, download)
// @Success 302
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Security BearerAuth
// @Router /documents/{id} [get]
func OpenDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var download bool
		switch c.Query("action", "view") {
		case "view":
		case "download":
			download = true
		default:
			return writeError(c, fiber.StatusBadRequest, "INVALID_ACTION", "action must be view or download")
		}

		target, err := docSvc.Open(c.UserContext(), user.ID, id, download)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Redirect(target, fiber.StatusFound)
	}
}

// DeleteDocument removes a document and its stored file.
//
// @Summary Delete a document
// @Tags documents
// @Param id path string true "document id"
// @Success 204
// @Failure 404 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Security BearerAuth
// @Router /documents/{id} [delete]
func DeleteDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := docSvc.Delete(c.UserContext(), user.ID, id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SweepExpired removes every expired document.
//
// @Summary Remove expired documents
// @Tags internal
// @Produce json
// @Success 200 {object} service.SweepResult
// @Failure 401 {object} errorPayload
// @Security InternalToken
// @Router /internal/cleanup [post]
func SweepExpired(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := docSvc.SweepExpired(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// Me returns the authenticated account with its plan and credit balance.
//
// @Summary Current user
// @Tags users
// @Produce json
// @Success 200 {object} model.User
// @Security BearerAuth
// @Router /me [get]
func Me() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		return c.JSON(user)
	}
}
