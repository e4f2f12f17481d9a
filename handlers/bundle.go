package handlers

import (
	tenantRepoPkg "concierge/database/repository/tenant"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	TenantRepo tenantRepoPkg.Repository

	// Dialog endpoints
	HandleTurnHandler   gin.HandlerFunc
	GetSessionHandler   gin.HandlerFunc
	ResetSessionHandler gin.HandlerFunc

	// Tenant catalog endpoints
	GetTenantHandler    gin.HandlerFunc
	UpsertTenantHandler gin.HandlerFunc
	DeleteTenantHandler gin.HandlerFunc
}
