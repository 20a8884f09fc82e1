package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/psikotes-ai/psikotes_api/dto"
	"github.com/psikotes-ai/psikotes_api/shared"
)

type KreplinHandler struct {
	kreplinSvc KreplinServiceInterface
}

func NewKreplinHandler(kreplinSvc KreplinServiceInterface) *KreplinHandler {
	return &KreplinHandler{kreplinSvc: kreplinSvc}
}

// @Summary Store a Kreplin typing test result
// @Tags kreplin
// @Accept json
// @Produce json
// @Security Bearer
// @Param resultRequest body dto.CreateKreplinResultRequest true "Result payload"
// @Success 201 {object} shared.Response{data=model.KreplinResult}
// @Router /api/v1/kreplin-results [post]
func (h *KreplinHandler) Create(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.CreateKreplinResultRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	result, err := h.kreplinSvc.CreateResult(c.UserContext(), userID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Hasil tersimpan", result)
}

// @Summary Get a Kreplin result
// @Tags kreplin
// @Produce json
// @Security Bearer
// @Param id path string true "Result ID"
// @Success 200 {object} shared.Response{data=model.KreplinResult}
// @Router /api/v1/kreplin-results/{id} [get]
func (h *KreplinHandler) Get(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	result, err := h.kreplinSvc.GetResult(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "OK", result)
}

// @Summary Analyze a Kreplin result
// @Description Generate the AI analysis once; later calls return the stored text
// @Tags kreplin
// @Produce json
// @Security Bearer
// @Param id path string true "Result ID"
// @Success 200 {object} shared.Response{data=dto.KreplinAnalysisResponse}
// @Router /api/v1/kreplin-results/{id}/analyze [post]
func (h *KreplinHandler) Analyze(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.kreplinSvc.Analyze(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "OK", resp)
}
