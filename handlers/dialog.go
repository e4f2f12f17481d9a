package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	tenantRepoPkg "concierge/database/repository/tenant"
	"concierge/models"
	"concierge/services/dialog"
	"concierge/services/session"
	"concierge/utils"
)

// DialogHandler exposes the conversation turn endpoints.
type DialogHandler struct {
	Svc        dialog.DialogService
	Sessions   session.Store
	TenantRepo tenantRepoPkg.Repository
}

func NewDialogHandler(svc dialog.DialogService, sessions session.Store, tenants tenantRepoPkg.Repository) *DialogHandler {
	return &DialogHandler{Svc: svc, Sessions: sessions, TenantRepo: tenants}
}

// HandleTurn processes one user utterance and returns the turn outcome.
func (h *DialogHandler) HandleTurn(c *gin.Context) {
	var req models.TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid turn request", err.Error())
		return
	}

	// An inline tenant context wins; otherwise resolve tenant_id against
	// the catalog. A failed lookup degrades to a tenant-less turn.
	if req.TenantContext == nil && req.TenantID != "" && h.TenantRepo != nil {
		rec, err := h.TenantRepo.GetByID(c.Request.Context(), req.TenantID)
		if err != nil {
			getLogger(c).Error("Tenant catalog lookup failed",
				zap.String("tenant_id", req.TenantID), zap.Error(err))
		} else if rec != nil {
			req.TenantContext = rec.ToContext()
		}
	}
	if req.Domain == "" && req.TenantContext != nil {
		req.Domain = req.TenantContext.Domain()
	}

	resp, err := h.Svc.ProcessTurn(c.Request.Context(), req)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to process turn", err.Error())
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ResetSession clears the conversation state for a user and domain.
func (h *DialogHandler) ResetSession(c *gin.Context) {
	userID := c.Param("userID")
	domain := models.Domain(c.DefaultQuery("domain", string(models.DomainService)))

	if err := h.Sessions.Clear(c.Request.Context(), userID, domain); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to clear session", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetSession returns the persisted conversation state, if any.
func (h *DialogHandler) GetSession(c *gin.Context) {
	userID := c.Param("userID")
	domain := models.Domain(c.DefaultQuery("domain", string(models.DomainService)))

	sess, err := h.Sessions.Get(c.Request.Context(), userID, domain)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to fetch session", err.Error())
		return
	}
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active session"})
		return
	}
	c.JSON(http.StatusOK, sess)
}
