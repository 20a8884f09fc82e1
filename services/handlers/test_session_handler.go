package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/psikotes-ai/psikotes_api/dto"
	"github.com/psikotes-ai/psikotes_api/services"
	"github.com/psikotes-ai/psikotes_api/shared"
)

type TestSessionHandler struct {
	sessionSvc TestSessionServiceInterface
}

func NewTestSessionHandler(sessionSvc TestSessionServiceInterface) *TestSessionHandler {
	return &TestSessionHandler{sessionSvc: sessionSvc}
}

// @Summary Create a test session
// @Description Generate questions and persist a scored test session
// @Tags test-session
// @Accept json
// @Produce json
// @Security Bearer
// @Param createRequest body dto.CreateTestSessionRequest true "Session parameters"
// @Success 201 {object} shared.Response{data=dto.TestSessionResponse}
// @Router /api/v1/test-sessions [post]
func (h *TestSessionHandler) Create(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.CreateTestSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	session, err := h.sessionSvc.CreateSession(c.UserContext(), userID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Sesi dibuat", services.MapSessionToResponse(session, true))
}

// @Summary Get a test session
// @Tags test-session
// @Produce json
// @Security Bearer
// @Param id path string true "Session ID"
// @Success 200 {object} shared.Response{data=dto.TestSessionResponse}
// @Router /api/v1/test-sessions/{id} [get]
func (h *TestSessionHandler) Get(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	session, err := h.sessionSvc.GetSession(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "OK", services.MapSessionToResponse(session, true))
}

// @Summary Publish or unpublish a test session
// @Tags test-session
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Session ID"
// @Param patchRequest body dto.PatchTestSessionRequest true "Publish flag"
// @Success 200 {object} shared.Response{data=dto.PublishSessionResponse}
// @Router /api/v1/test-sessions/{id} [patch]
func (h *TestSessionHandler) Patch(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.PatchTestSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if req.Publish == nil {
		return shared.NewBadRequestError(nil, "Tidak ada perubahan yang diminta")
	}

	var resp *dto.PublishSessionResponse
	var err error
	if *req.Publish {
		resp, err = h.sessionSvc.Publish(c.UserContext(), userID, c.Params("id"))
	} else {
		resp, err = h.sessionSvc.Unpublish(c.UserContext(), userID, c.Params("id"))
	}
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "OK", resp)
}

// @Summary Delete a test session
// @Description Remove the session with its question instances and answers
// @Tags test-session
// @Produce json
// @Security Bearer
// @Param id path string true "Session ID"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/test-sessions/{id} [delete]
func (h *TestSessionHandler) Delete(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	if err := h.sessionSvc.DeleteSession(c.UserContext(), userID, c.Params("id")); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Sesi dihapus", nil)
}

// @Summary Answer a test session question
// @Description Record the answer; re-answering the same index overwrites
// @Tags test-session
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Session ID"
// @Param answerRequest body dto.SubmitAnswerRequest true "Answer"
// @Success 200 {object} shared.Response{data=dto.AnswerResponse}
// @Router /api/v1/test-sessions/{id}/answer [post]
func (h *TestSessionHandler) Answer(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.SubmitAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.sessionSvc.SubmitAnswer(c.UserContext(), userID, c.Params("id"), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Jawaban tersimpan", resp)
}

// @Summary Complete a test session
// @Description Score answered questions against the configured count
// @Tags test-session
// @Produce json
// @Security Bearer
// @Param id path string true "Session ID"
// @Success 200 {object} shared.Response{data=dto.CompleteSessionResponse}
// @Router /api/v1/test-sessions/{id}/complete [post]
func (h *TestSessionHandler) Complete(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.sessionSvc.Complete(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Sesi selesai", resp)
}

// @Summary Save session draft state
// @Tags test-session
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Session ID"
// @Param draftRequest body dto.SaveDraftRequest true "Draft position"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/test-sessions/{id}/draft [post]
func (h *TestSessionHandler) SaveDraft(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.SaveDraftRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	if err := h.sessionSvc.SaveDraft(c.UserContext(), userID, c.Params("id"), req); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Draf tersimpan", nil)
}

// @Summary View a shared session
// @Description Read only view of a published session by its public ID
// @Tags test-session
// @Produce json
// @Param publicId path string true "Public ID"
// @Success 200 {object} shared.Response{data=dto.TestSessionResponse}
// @Router /api/v1/public/sessions/{publicId} [get]
func (h *TestSessionHandler) GetPublic(c *fiber.Ctx) error {
	session, err := h.sessionSvc.GetPublicSession(c.UserContext(), c.Params("publicId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "OK", services.MapSessionToResponse(session, true))
}
