package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	adminsvc "github.com/alanyang/promptbox/internal/service/admin"
)

func Register(rg *gin.RouterGroup, svc *adminsvc.Service) {
	rg.POST("/clear-app-data", clearAppData(svc))
	rg.POST("/clear-all", clearAll(svc))
}

func clearAppData(svc *adminsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		removed, err := svc.ClearAppData(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if removed == nil {
			removed = []string{}
		}
		c.JSON(http.StatusOK, gin.H{"removed": removed})
	}
}

func clearAll(svc *adminsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.ClearAll(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
