// Package editor exposes the hand-off channel between the main view and
// the editing context: submit, sync, and the courtesy vocabulary snapshot.
package editor

import (
	"net/http"

	"github.com/gin-gonic/gin"

	docsvc "github.com/alanyang/promptbox/internal/service/document"
	handoffsvc "github.com/alanyang/promptbox/internal/service/handoff"
)

func Register(rg *gin.RouterGroup, doc *docsvc.Service, handoff *handoffsvc.Service) {
	rg.POST("/handoff", submitHandoff(handoff))
	rg.POST("/sync", syncFromEditor(doc))
	rg.GET("/filters", editorFilters(handoff))
	rg.POST("/filters/snapshot", snapshotFilters(doc))
}

func submitHandoff(svc *handoffsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p handoffsvc.Payload
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := svc.Submit(c.Request.Context(), p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusAccepted)
	}
}

func syncFromEditor(svc *docsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		applied := svc.SyncFromEditor(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"applied": applied})
	}
}

func editorFilters(svc *handoffsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.EditorFilters(c.Request.Context()))
	}
}

func snapshotFilters(svc *docsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.SnapshotFilters(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
