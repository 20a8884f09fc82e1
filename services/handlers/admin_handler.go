package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/psikotes-ai/psikotes_api/dto"
	"github.com/psikotes-ai/psikotes_api/shared"
)

type AdminHandler struct {
	adminSvc AdminServiceInterface
	bookSvc  BookServiceInterface
}

func NewAdminHandler(adminSvc AdminServiceInterface, bookSvc BookServiceInterface) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc, bookSvc: bookSvc}
}

// @Summary List users
// @Tags admin
// @Produce json
// @Security Bearer
// @Param page query int false "Page" default(1)
// @Param limit query int false "Limit" default(20)
// @Param search query string false "Filter by email or username"
// @Success 200 {object} shared.Response{data=dto.AdminUserListResponse}
// @Router /api/v1/admin/users [get]
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	search := c.Query("search")

	resp, err := h.adminSvc.ListUsers(c.UserContext(), page, limit, search)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "OK", resp)
}

// @Summary Update a user
// @Description Change role, membership or membership expiry
// @Tags admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "User ID"
// @Param updateRequest body dto.AdminUpdateUserRequest true "Fields to update"
// @Success 200 {object} shared.Response{data=dto.UserInfo}
// @Router /api/v1/admin/users/{id} [patch]
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	var req dto.AdminUpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.adminSvc.UpdateUser(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Pengguna diperbarui", resp)
}

// @Summary Delete a user
// @Description Remove the account and all data keyed on it
// @Tags admin
// @Produce json
// @Security Bearer
// @Param id path string true "User ID"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.adminSvc.DeleteUser(c.UserContext(), c.Params("id")); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Pengguna dihapus", nil)
}

// @Summary List all test sessions
// @Tags admin
// @Produce json
// @Security Bearer
// @Param page query int false "Page" default(1)
// @Param limit query int false "Limit" default(20)
// @Success 200 {object} shared.Response{data=dto.AdminSessionListResponse}
// @Router /api/v1/admin/sessions [get]
func (h *AdminHandler) ListSessions(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	resp, err := h.adminSvc.ListSessions(c.UserContext(), page, limit)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "OK", resp)
}

// @Summary Delete a book
// @Tags admin
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/admin/books/{id} [delete]
func (h *AdminHandler) DeleteBook(c *fiber.Ctx) error {
	if err := h.bookSvc.DeleteBook(c.UserContext(), c.Params("id")); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Buku dihapus", nil)
}
