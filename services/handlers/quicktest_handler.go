package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/psikotes-ai/psikotes_api/dto"
	"github.com/psikotes-ai/psikotes_api/model"
	"github.com/psikotes-ai/psikotes_api/services"
	"github.com/psikotes-ai/psikotes_api/shared"
)

type QuickTestHandler struct {
	quickSvc QuickTestServiceInterface
}

func NewQuickTestHandler(quickSvc QuickTestServiceInterface) *QuickTestHandler {
	return &QuickTestHandler{quickSvc: quickSvc}
}

// @Summary Generate a quick test
// @Description Generate AI questions and open an ephemeral practice session
// @Tags quick-test
// @Accept json
// @Produce json
// @Param generateRequest body dto.GenerateQuestionsRequest true "Generation parameters"
// @Success 201 {object} shared.Response{data=dto.QuickSessionResponse}
// @Router /api/v1/generate-questions [post]
func (h *QuickTestHandler) Generate(c *fiber.Ctx) error {
	var req dto.GenerateQuestionsRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	session, err := h.quickSvc.CreateQuickTest(c.UserContext(), services.GenerationParams{
		Mode:          req.Mode,
		Category:      req.Category,
		Difficulty:    req.Difficulty,
		QuestionCount: req.QuestionCount,
	})
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Soal berhasil dibuat", mapQuickSession(session))
}

// @Summary List quick sessions
// @Tags quick-test
// @Produce json
// @Success 200 {object} shared.Response{data=[]dto.QuickSessionResponse}
// @Router /api/v1/quick-sessions [get]
func (h *QuickTestHandler) List(c *fiber.Ctx) error {
	sessions, err := h.quickSvc.ListSessions()
	if err != nil {
		return err
	}

	resp := make([]dto.QuickSessionResponse, 0, len(sessions))
	for _, session := range sessions {
		resp = append(resp, mapQuickSession(session))
	}

	return shared.ResponseJSON(c, http.StatusOK, "OK", resp)
}

// @Summary Get a quick session
// @Tags quick-test
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} shared.Response{data=dto.QuickSessionResponse}
// @Router /api/v1/quick-sessions/{id} [get]
func (h *QuickTestHandler) Get(c *fiber.Ctx) error {
	session, err := h.quickSvc.GetSession(c.Params("id"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "OK", mapQuickSession(session))
}

// @Summary Update quick session position
// @Tags quick-test
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param patchRequest body dto.QuickPatchRequest true "Fields to update"
// @Success 200 {object} shared.Response{data=dto.QuickSessionResponse}
// @Router /api/v1/quick-sessions/{id} [patch]
func (h *QuickTestHandler) Patch(c *fiber.Ctx) error {
	var req dto.QuickPatchRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	if req.CurrentIndex == nil {
		return shared.NewBadRequestError(nil, "Tidak ada perubahan yang diminta")
	}

	session, err := h.quickSvc.SetCurrentIndex(c.Params("id"), *req.CurrentIndex)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "OK", mapQuickSession(session))
}

// @Summary Delete a quick session
// @Tags quick-test
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/quick-sessions/{id} [delete]
func (h *QuickTestHandler) Delete(c *fiber.Ctx) error {
	if err := h.quickSvc.DeleteSession(c.Params("id")); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Sesi dihapus", nil)
}

// @Summary Answer a quick session question
// @Tags quick-test
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param answerRequest body dto.QuickAnswerRequest true "Answer"
// @Success 200 {object} shared.Response{data=model.QuickAnswer}
// @Router /api/v1/quick-sessions/{id}/answer [post]
func (h *QuickTestHandler) Answer(c *fiber.Ctx) error {
	var req dto.QuickAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	answer, err := h.quickSvc.SubmitAnswer(c.Params("id"), req.QuestionIndex, req.SelectedLabel, req.TimeSpentSeconds)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Jawaban tersimpan", answer)
}

// @Summary Complete a quick session
// @Description Score the session against its configured question count
// @Tags quick-test
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} shared.Response{data=dto.QuickSessionResponse}
// @Router /api/v1/quick-sessions/{id}/complete [post]
func (h *QuickTestHandler) Complete(c *fiber.Ctx) error {
	session, err := h.quickSvc.Complete(c.Params("id"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Sesi selesai", mapQuickSession(session))
}

func mapQuickSession(session *model.QuickSession) dto.QuickSessionResponse {
	return dto.QuickSessionResponse{
		ID:            session.ID,
		Mode:          session.Mode,
		Category:      session.Category,
		Difficulty:    session.Difficulty,
		QuestionCount: session.QuestionCount,
		Questions:     session.Questions,
		Answers:       session.Answers,
		CurrentIndex:  session.CurrentIndex,
		Completed:     session.Completed,
		Score:         session.Score,
		CreatedAt:     session.CreatedAt,
	}
}
