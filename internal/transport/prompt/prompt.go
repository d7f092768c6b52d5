package prompt

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domaindoc "github.com/alanyang/promptbox/internal/domain/document"
	domainfilter "github.com/alanyang/promptbox/internal/domain/filter"
	domainprompt "github.com/alanyang/promptbox/internal/domain/prompt"
	docsvc "github.com/alanyang/promptbox/internal/service/document"
)

func Register(rg *gin.RouterGroup, svc *docsvc.Service) {
	rg.GET("", listPrompts(svc))
	rg.POST("", upsertPrompt(svc))
	rg.PUT("/:id", updatePrompt(svc))
	rg.DELETE("/:id", deletePrompt(svc))
	rg.POST("/:id/pin", togglePin(svc))
	rg.PUT("/:id/rating", setRating(svc))
}

// GetDocument serves the whole persisted document: vocabulary, header,
// search config, and the full prompt collection.
func GetDocument(svc *docsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Document())
	}
}

type listResponse struct {
	Prompts   []domainprompt.Prompt  `json:"prompts"`
	Selection domainfilter.Selection `json:"selection"`
}

func listPrompts(svc *docsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Query parameters form a one-shot explicit selection; without them
		// the stored selection applies.
		if sel, ok := querySelection(c); ok {
			c.JSON(http.StatusOK, listResponse{
				Prompts:   svc.VisibleWith(sel),
				Selection: sel,
			})
			return
		}
		c.JSON(http.StatusOK, listResponse{
			Prompts:   svc.VisiblePrompts(),
			Selection: svc.Selection(),
		})
	}
}

func querySelection(c *gin.Context) (domainfilter.Selection, bool) {
	sel := domainfilter.Selection{
		Categories: c.QueryArray("categories"),
		Tags:       c.QueryArray("tags"),
		Search:     c.Query("search"),
	}
	if len(sel.Categories) == 0 && len(sel.Tags) == 0 && sel.Search == "" {
		return domainfilter.Selection{}, false
	}
	if len(sel.Categories) == 0 {
		sel.Categories = []string{domaindoc.Sentinel}
	}
	if len(sel.Tags) == 0 {
		sel.Tags = []string{domaindoc.Sentinel}
	}
	return sel, true
}

func upsertPrompt(svc *docsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p domainprompt.Prompt
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := p.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		created := p.ID == ""
		stored := svc.CreateOrUpdatePrompt(c.Request.Context(), p)

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		c.JSON(status, stored)
	}
}

func updatePrompt(svc *docsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p domainprompt.Prompt
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p.ID = c.Param("id")
		if err := p.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, svc.CreateOrUpdatePrompt(c.Request.Context(), p))
	}
}

func deletePrompt(svc *docsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !svc.DeletePrompt(c.Request.Context(), c.Param("id")) {
			c.JSON(http.StatusNotFound, gin.H{"error": "prompt not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func togglePin(svc *docsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		stored, ok := svc.TogglePin(c.Request.Context(), c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "prompt not found"})
			return
		}
		c.JSON(http.StatusOK, stored)
	}
}

type ratingReq struct {
	Rating domainprompt.Rating `json:"rating"`
}

func setRating(svc *docsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ratingReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		stored, ok := svc.SetRating(c.Request.Context(), c.Param("id"), req.Rating)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "prompt not found"})
			return
		}
		c.JSON(http.StatusOK, stored)
	}
}
