package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SleepTheGod/Cryptozoo/internal/domain/models"
	"github.com/SleepTheGod/Cryptozoo/internal/service/lifecycle"
	"github.com/SleepTheGod/Cryptozoo/internal/service/reporting"
)

// AccruedReader exposes the running yield counter.
type AccruedReader interface {
	Accrued() int64
}

// GameHandler adapts the game session to JSON over HTTP.
type GameHandler struct {
	engine  *lifecycle.Engine
	accrual AccruedReader
	reports *reporting.Service
	logger  *zap.Logger
}

// NewGameHandler constructs the HTTP handler adapter.
func NewGameHandler(engine *lifecycle.Engine, accrual AccruedReader, reports *reporting.Service, logger *zap.Logger) *GameHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GameHandler{engine: engine, accrual: accrual, reports: reports, logger: logger}
}

type stateResponse struct {
	lifecycle.State
	RecentlyAccrued int64 `json:"recently_accrued"`
}

type viewRequest struct {
	View string `json:"view" binding:"required"`
}

type buyEggRequest struct {
	Tier string `json:"tier" binding:"required"`
}

// State returns the full session projection.
func (h *GameHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.state())
}

// Market lists the egg catalog.
func (h *GameHandler) Market(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"offers": h.engine.Market()})
}

// Portfolio returns the derived portfolio summary.
func (h *GameHandler) Portfolio(c *gin.Context) {
	c.JSON(http.StatusOK, h.reports.Summarize())
}

// SetView switches the active view.
func (h *GameHandler) SetView(c *gin.Context) {
	var req viewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	view, err := models.ParseView(req.View)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.engine.SetView(view)
	c.JSON(http.StatusOK, h.state())
}

// BuyEgg purchases an egg at its catalog price.
func (h *GameHandler) BuyEgg(c *gin.Context) {
	var req buyEggRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	egg, err := h.engine.BuyCatalogEgg(c.Request.Context(), models.EggTier(req.Tier))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"egg": egg, "state": h.state()})
}

// HatchEgg starts hatching the egg named in the path.
func (h *GameHandler) HatchEgg(c *gin.Context) {
	if err := h.engine.StartHatch(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, h.state())
}

// ToggleSelection selects or deselects a breeding parent.
func (h *GameHandler) ToggleSelection(c *gin.Context) {
	if _, err := h.engine.ToggleSelection(c.Param("animalId")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.state())
}

// ClearSlot empties a breeding slot.
func (h *GameHandler) ClearSlot(c *gin.Context) {
	slot, err := strconv.Atoi(c.Param("slot"))
	if err != nil {
		h.badRequest(c, err)
		return
	}

	if _, err := h.engine.ClearSlot(slot); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.state())
}

// InitiateBreed asks for confirmation of the selected pair.
func (h *GameHandler) InitiateBreed(c *gin.Context) {
	conf, err := h.engine.InitiateBreed()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"confirmation": conf})
}

// ConfirmBreed spends the breeding cost and starts minting the hybrid.
func (h *GameHandler) ConfirmBreed(c *gin.Context) {
	if err := h.engine.StartBreed(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, h.state())
}

// CancelBreed dismisses the pending confirmation.
func (h *GameHandler) CancelBreed(c *gin.Context) {
	if err := h.engine.CancelBreed(); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.state())
}

func (h *GameHandler) state() stateResponse {
	resp := stateResponse{State: h.engine.State()}
	if h.accrual != nil {
		resp.RecentlyAccrued = h.accrual.Accrued()
	}
	return resp
}

func (h *GameHandler) badRequest(c *gin.Context, err error) {
	h.logger.Warn("invalid request", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}

func (h *GameHandler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	} else {
		h.logger.Info("request rejected", zap.String("path", c.FullPath()), zap.Error(err))
	}

	body := gin.H{"error": err.Error()}
	if notice, ok := h.engine.Notice(); ok {
		body["notice"] = notice
	}
	c.JSON(status, body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, models.ErrHatchInProgress),
		errors.Is(err, models.ErrBreedInProgress),
		errors.Is(err, models.ErrNoPendingBreed),
		errors.Is(err, models.ErrParentsNotSelected):
		return http.StatusConflict
	case errors.Is(err, models.ErrEggNotFound),
		errors.Is(err, models.ErrAnimalNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrUnknownTier),
		errors.Is(err, models.ErrUnknownView),
		errors.Is(err, models.ErrSlotOutOfRange),
		errors.Is(err, models.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrGenerationFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
