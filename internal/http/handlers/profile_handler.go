package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/daengle/petcare-backend/internal/dto"
	"github.com/daengle/petcare-backend/internal/http/handlers/common"
	"github.com/daengle/petcare-backend/internal/service"
)

// ProfileHandler предоставляет HTTP слой для профилей исполнителей и питомцев.
type ProfileHandler struct {
	profiles *service.ProfileService
}

// NewProfileHandler создаёт хэндлер.
func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// ListProviders обрабатывает GET /providers?service_type=care.
func (h *ProfileHandler) ListProviders(c *gin.Context) {
	serviceType := c.Query("service_type")
	limit, offset := common.GetPagination(c)

	providers, err := h.profiles.ListProviders(c.Request.Context(), serviceType, limit, offset)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"providers": providers})
}

// GetProvider обрабатывает GET /providers/:id.
func (h *ProfileHandler) GetProvider(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	provider, err := h.profiles.GetProvider(c.Request.Context(), id)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, provider)
}

// UpdateMyProvider обрабатывает PUT /providers/me.
func (h *ProfileHandler) UpdateMyProvider(c *gin.Context) {
	accountID, err := common.CurrentAccountID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.UpdateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	provider, err := h.profiles.UpdateProvider(c.Request.Context(), accountID, service.UpdateProviderInput{
		Name:         req.Name,
		Address:      req.Address,
		Introduction: req.Introduction,
		ImageURL:     req.ImageURL,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, provider)
}

// CreatePet обрабатывает POST /pets.
func (h *ProfileHandler) CreatePet(c *gin.Context) {
	ownerID, err := common.CurrentAccountID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CreatePetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	pet, err := h.profiles.CreatePet(c.Request.Context(), ownerID, req.Name, req.Breed, req.ImageURL)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, pet)
}

// ListMyPets обрабатывает GET /pets.
func (h *ProfileHandler) ListMyPets(c *gin.Context) {
	ownerID, err := common.CurrentAccountID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	pets, err := h.profiles.ListMyPets(c.Request.Context(), ownerID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pets": pets})
}
