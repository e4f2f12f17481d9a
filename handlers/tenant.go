package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	tenantRepoPkg "concierge/database/repository/tenant"
	"concierge/models"
	"concierge/utils"
)

// TenantHandler manages the tenant catalog.
type TenantHandler struct {
	Repo tenantRepoPkg.Repository
}

func NewTenantHandler(repo tenantRepoPkg.Repository) *TenantHandler {
	return &TenantHandler{Repo: repo}
}

// GetTenantHandler returns one tenant catalog record.
func (h *TenantHandler) GetTenantHandler(c *gin.Context) {
	rec, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to fetch tenant", err.Error())
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "tenant not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// UpsertTenantHandler creates or replaces a tenant catalog record.
func (h *TenantHandler) UpsertTenantHandler(c *gin.Context) {
	var rec models.TenantRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid tenant record", err.Error())
		return
	}
	if id := c.Param("id"); id != "" {
		rec.TenantID = id
	}
	if rec.TenantID == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid tenant record", "tenant_id is required")
		return
	}
	if rec.BookingMode != string(models.DomainService) && rec.BookingMode != string(models.DomainReservation) {
		utils.JSONError(c, http.StatusBadRequest, "invalid tenant record",
			"booking_mode must be service or reservation")
		return
	}

	if err := h.Repo.Upsert(c.Request.Context(), &rec); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to save tenant", err.Error())
		return
	}
	c.JSON(http.StatusOK, rec)
}

// DeleteTenantHandler removes a tenant catalog record.
func (h *TenantHandler) DeleteTenantHandler(c *gin.Context) {
	if err := h.Repo.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to delete tenant", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
