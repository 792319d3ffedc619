package adapter

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"scantrack/internal/browse"
)

// Handler exposes the registry over HTTP: adapter discovery and
// per-site title search. Each search opens a fresh browsing session.
type Handler struct {
	Registry *Registry
	Sessions browse.Factory
}

func NewHandler(registry *Registry, sessions browse.Factory) *Handler {
	return &Handler{Registry: registry, Sessions: sessions}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/adapters", h.list)
	rg.GET("/adapters/:name/search", h.search)
}

func (h *Handler) list(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"adapters": h.Registry.Names()})
}

func (h *Handler) search(c *gin.Context) {
	name := strings.ToLower(strings.TrimSpace(c.Param("name")))
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q required"})
		return
	}

	session, err := h.Sessions()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session failed"})
		return
	}
	defer session.Close()

	site, err := h.Registry.Resolve(name, session)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":    "unknown adapter",
			"adapters": h.Registry.Names(),
		})
		return
	}

	results, err := site.Search(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"adapter": name,
		"query":   query,
		"total":   len(results),
		"results": results,
	})
}
