package api

import (
	"github.com/gin-gonic/gin"

	"alerting-destinations/internal/logging"
)

// ClusterAPIPath serves the whitelisted cluster APIs.
const ClusterAPIPath = "/_plugins/_alerting/_cluster_api"

type RouterConfig struct {
	BasePath       string
	LegacyBasePath string
}

func NewRouter(h *Handler, logger *logging.Logger, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(logger))
	r.Use(RequestLoggingMiddleware(logger))

	for _, base := range []string{cfg.BasePath, cfg.LegacyBasePath} {
		if base == "" {
			continue
		}
		api := r.Group(base)
		{
			// Email accounts
			api.GET("/email_accounts", h.SearchEmailAccounts)
			api.POST("/email_accounts", h.CreateEmailAccount)
			api.GET("/email_accounts/_search", h.SearchEmailAccountsQuery)
			api.POST("/email_accounts/_search", h.SearchEmailAccountsQuery)
			api.GET("/email_accounts/:id", h.GetEmailAccount)
			api.HEAD("/email_accounts/:id", h.GetEmailAccount)
			api.PUT("/email_accounts/:id", h.UpdateEmailAccount)
			api.DELETE("/email_accounts/:id", h.DeleteEmailAccount)

			// Email groups
			api.GET("/email_groups", h.SearchEmailGroups)
			api.POST("/email_groups", h.CreateEmailGroup)
			api.GET("/email_groups/_search", h.SearchEmailGroupsQuery)
			api.POST("/email_groups/_search", h.SearchEmailGroupsQuery)
			api.GET("/email_groups/:id", h.GetEmailGroup)
			api.HEAD("/email_groups/:id", h.GetEmailGroup)
			api.PUT("/email_groups/:id", h.UpdateEmailGroup)
			api.DELETE("/email_groups/:id", h.DeleteEmailGroup)
		}
	}
	r.GET(ClusterAPIPath, h.ClusterAPI)
	return r
}
