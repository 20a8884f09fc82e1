package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/psikotes-ai/psikotes_api/dto"
	"github.com/psikotes-ai/psikotes_api/shared"
)

// DuelHandler serves both duel kinds; the kind is fixed per route group.
type DuelHandler struct {
	duelSvc DuelServiceInterface
	authSvc AuthServiceInterface
	kind    string
}

func NewDuelHandler(duelSvc DuelServiceInterface, authSvc AuthServiceInterface, kind string) *DuelHandler {
	return &DuelHandler{duelSvc: duelSvc, authSvc: authSvc, kind: kind}
}

// @Summary Create a duel room
// @Description Open a room and return its join code
// @Tags duel
// @Accept json
// @Produce json
// @Security Bearer
// @Param createRequest body dto.CreateDuelRequest true "Duel settings"
// @Success 201 {object} shared.Response{data=model.Duel}
// @Router /api/v1/kreplin-duels [post]
func (h *DuelHandler) Create(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)
	username, err := h.username(c, userID)
	if err != nil {
		return err
	}

	var req dto.CreateDuelRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	duel, err := h.duelSvc.CreateDuel(c.UserContext(), h.kind, userID, username, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Ruang dibuat", duel)
}

// @Summary Join a duel room
// @Tags duel
// @Accept json
// @Produce json
// @Security Bearer
// @Param joinRequest body dto.JoinDuelRequest true "Room code"
// @Success 200 {object} shared.Response{data=model.Duel}
// @Router /api/v1/kreplin-duels/join [post]
func (h *DuelHandler) Join(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)
	username, err := h.username(c, userID)
	if err != nil {
		return err
	}

	var req dto.JoinDuelRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	duel, err := h.duelSvc.JoinDuel(c.UserContext(), h.kind, userID, username, req.RoomCode)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Bergabung ke ruang", duel)
}

// @Summary Get duel state
// @Tags duel
// @Produce json
// @Security Bearer
// @Param code path string true "Room code"
// @Success 200 {object} shared.Response{data=model.Duel}
// @Router /api/v1/kreplin-duels/{code} [get]
func (h *DuelHandler) Get(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	duel, err := h.duelSvc.GetDuel(c.UserContext(), h.kind, userID, c.Params("code"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "OK", duel)
}

// @Summary Set ready state
// @Description Both players ready starts the duel; un-ready reverts it
// @Tags duel
// @Accept json
// @Produce json
// @Security Bearer
// @Param code path string true "Room code"
// @Param readyRequest body dto.DuelReadyRequest true "Ready flag"
// @Success 200 {object} shared.Response{data=model.Duel}
// @Router /api/v1/kreplin-duels/{code}/ready [patch]
func (h *DuelHandler) Ready(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.DuelReadyRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	duel, err := h.duelSvc.SetReady(c.UserContext(), h.kind, userID, c.Params("code"), req.Ready)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "OK", duel)
}

// @Summary Submit duel result
// @Description Each player submits once; the second submission completes the duel
// @Tags duel
// @Accept json
// @Produce json
// @Security Bearer
// @Param code path string true "Room code"
// @Param resultRequest body dto.DuelResultRequest true "Result payload"
// @Success 200 {object} shared.Response{data=model.Duel}
// @Router /api/v1/kreplin-duels/{code}/result [post]
func (h *DuelHandler) Result(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.DuelResultRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	duel, err := h.duelSvc.SubmitResult(c.UserContext(), h.kind, userID, c.Params("code"), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "OK", duel)
}

func (h *DuelHandler) username(c *fiber.Ctx, userID string) (string, error) {
	user, err := h.authSvc.GetUser(c.UserContext(), userID)
	if err != nil {
		return "", err
	}
	return user.Username, nil
}
