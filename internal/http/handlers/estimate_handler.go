package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/daengle/petcare-backend/internal/dto"
	"github.com/daengle/petcare-backend/internal/http/handlers/common"
	"github.com/daengle/petcare-backend/internal/service"
)

// EstimateHandler предоставляет HTTP слой для заявок и предложений.
type EstimateHandler struct {
	estimates *service.EstimateService
}

// NewEstimateHandler создаёт хэндлер.
func NewEstimateHandler(estimates *service.EstimateService) *EstimateHandler {
	return &EstimateHandler{estimates: estimates}
}

// CreateEstimate обрабатывает POST /estimates.
func (h *EstimateHandler) CreateEstimate(c *gin.Context) {
	userID, err := common.CurrentAccountID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CreateEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	est, err := h.estimates.CreateEstimate(c.Request.Context(), userID, service.CreateEstimateInput{
		PetID:        req.PetID,
		ServiceType:  req.ServiceType,
		ProviderID:   req.ProviderID,
		Address:      req.Address,
		ReservedDate: req.ReservedDate,
		Symptoms:     req.Symptoms,
		Requirements: req.Requirements,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, est)
}

// GetEstimate обрабатывает GET /estimates/:id.
func (h *EstimateHandler) GetEstimate(c *gin.Context) {
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

	est, quotes, err := h.estimates.GetEstimate(c.Request.Context(), userID, id)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.EstimateResponse{Estimate: est, Quotes: quotes})
}

// ListMyEstimates обрабатывает GET /estimates/my.
func (h *EstimateHandler) ListMyEstimates(c *gin.Context) {
	userID, err := common.CurrentAccountID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)

	estimates, err := h.estimates.ListMyEstimates(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"estimates": estimates})
}

// ListOpen обрабатывает GET /estimates/open. Доступно только исполнителям:
// возвращает общие заявки их вида услуг и адресные, назначенные им.
func (h *EstimateHandler) ListOpen(c *gin.Context) {
	providerID, err := common.CurrentAccountID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)

	estimates, err := h.estimates.ListOpenForProvider(c.Request.Context(), providerID, limit, offset)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"estimates": estimates})
}

// CancelEstimate обрабатывает POST /estimates/:id/cancel.
func (h *EstimateHandler) CancelEstimate(c *gin.Context) {
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

	cancelled, err := h.estimates.CancelEstimate(c.Request.Context(), userID, id)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, cancelled)
}

// CreateQuote обрабатывает POST /estimates/:id/quotes.
func (h *EstimateHandler) CreateQuote(c *gin.Context) {
	providerID, err := common.CurrentAccountID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	rootID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	quote, err := h.estimates.CreateQuote(c.Request.Context(), providerID, rootID, service.CreateQuoteInput{
		ReservedDate: req.ReservedDate,
		Diagnosis:    req.Diagnosis,
		Cause:        req.Cause,
		Treatment:    req.Treatment,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, quote)
}

// AcceptQuote обрабатывает POST /quotes/:id/accept. Принятие атомарно:
// проигравшие параллельные вызовы получают 409.
func (h *EstimateHandler) AcceptQuote(c *gin.Context) {
	userID, err := common.CurrentAccountID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	quoteID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	quote, reservation, err := h.estimates.AcceptQuote(c.Request.Context(), userID, quoteID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AcceptQuoteResponse{Quote: quote, Reservation: reservation})
}

// RejectQuote обрабатывает POST /quotes/:id/reject.
func (h *EstimateHandler) RejectQuote(c *gin.Context) {
	userID, err := common.CurrentAccountID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	quoteID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	rejected, err := h.estimates.RejectQuote(c.Request.Context(), userID, quoteID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, rejected)
}

// CancelQuote обрабатывает POST /quotes/:id/cancel. Отзывает предложение
// самого исполнителя.
func (h *EstimateHandler) CancelQuote(c *gin.Context) {
	providerID, err := common.CurrentAccountID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	quoteID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	cancelled, err := h.estimates.CancelQuote(c.Request.Context(), providerID, quoteID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, cancelled)
}

// ListMyQuotes обрабатывает GET /quotes/my.
func (h *EstimateHandler) ListMyQuotes(c *gin.Context) {
	providerID, err := common.CurrentAccountID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)

	quotes, err := h.estimates.ListMyQuotes(c.Request.Context(), providerID, limit, offset)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"quotes": quotes})
}
