package filters

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domaindoc "github.com/alanyang/promptbox/internal/domain/document"
	domainfilter "github.com/alanyang/promptbox/internal/domain/filter"
	docsvc "github.com/alanyang/promptbox/internal/service/document"
)

func Register(rg *gin.RouterGroup, svc *docsvc.Service) {
	rg.GET("", getFilters(svc))
	rg.POST("/categories/toggle", toggleCategory(svc))
	rg.POST("/tags/toggle", toggleTag(svc))
	rg.PUT("/search", setSearch(svc))
	rg.DELETE("/categories/:name", deleteCategory(svc))
	rg.DELETE("/tags/:name", deleteTag(svc))
}

type filtersResponse struct {
	Vocabulary domaindoc.Vocabulary   `json:"vocabulary"`
	Selection  domainfilter.Selection `json:"selection"`
}

func getFilters(svc *docsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, filtersResponse{
			Vocabulary: svc.Document().Filters,
			Selection:  svc.Selection(),
		})
	}
}

type toggleReq struct {
	Name string `json:"name" binding:"required"`
}

func toggleCategory(svc *docsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req toggleReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, svc.ToggleCategory(req.Name))
	}
}

func toggleTag(svc *docsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req toggleReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, svc.ToggleTag(req.Name))
	}
}

type searchReq struct {
	Search string `json:"search"`
}

func setSearch(svc *docsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req searchReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, svc.SetSearch(req.Search))
	}
}

func deleteCategory(svc *docsvc.Service) gin.HandlerFunc {
	return deleteLabel(func(c *gin.Context, name string) bool {
		return svc.DeleteCategory(c.Request.Context(), name)
	})
}

func deleteTag(svc *docsvc.Service) gin.HandlerFunc {
	return deleteLabel(func(c *gin.Context, name string) bool {
		return svc.DeleteTag(c.Request.Context(), name)
	})
}

func deleteLabel(del func(*gin.Context, string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		if name == domaindoc.Sentinel {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete the catch-all entry"})
			return
		}
		if !del(c, name) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown name"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
