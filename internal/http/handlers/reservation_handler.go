package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/daengle/petcare-backend/internal/dto"
	"github.com/daengle/petcare-backend/internal/http/handlers/common"
	"github.com/daengle/petcare-backend/internal/models"
	"github.com/daengle/petcare-backend/internal/service"
)

// ReservationHandler предоставляет HTTP слой для бронирований.
type ReservationHandler struct {
	reservations *service.ReservationService
}

// NewReservationHandler создаёт хэндлер.
func NewReservationHandler(reservations *service.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservations: reservations}
}

// GetReservation обрабатывает GET /reservations/:id.
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	accountID, err := common.CurrentAccountID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	reservation, err := h.reservations.GetReservation(c.Request.Context(), accountID, id)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, reservation)
}

// Pay обрабатывает POST /reservations/:id/pay.
func (h *ReservationHandler) Pay(c *gin.Context) {
	userID, err := common.CurrentAccountID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.PayReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	paid, err := h.reservations.Pay(c.Request.Context(), userID, id, req.Amount)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, paid)
}

// Complete обрабатывает POST /reservations/:id/complete. Завершает услугу
// исполнитель; после этого владелец может оставить отзыв.
func (h *ReservationHandler) Complete(c *gin.Context) {
	providerID, err := common.CurrentAccountID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	completed, err := h.reservations.Complete(c.Request.Context(), providerID, id)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, completed)
}

// Cancel обрабатывает POST /reservations/:id/cancel.
func (h *ReservationHandler) Cancel(c *gin.Context) {
	accountID, err := common.CurrentAccountID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	cancelled, err := h.reservations.Cancel(c.Request.Context(), accountID, id)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, cancelled)
}

// ListMyReservations обрабатывает GET /reservations/my. Исполнители видят
// бронирования на свои услуги, владельцы — свои заказы.
func (h *ReservationHandler) ListMyReservations(c *gin.Context) {
	accountID, err := common.CurrentAccountID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	role, err := common.CurrentRole(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)

	var reservations []models.Reservation
	if role == models.RoleVet || role == models.RoleGroomer {
		reservations, err = h.reservations.ListProviderReservations(c.Request.Context(), accountID, limit, offset)
	} else {
		reservations, err = h.reservations.ListMyReservations(c.Request.Context(), accountID, limit, offset)
	}
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reservations": reservations})
}
