package catalog

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"scantrack/pkg/models"
)

type Handler struct {
	Repo *Repo

	// AdapterNames guards pair creation against typos; empty means any
	// adapter name is accepted.
	AdapterNames []string
}

func NewHandler(repo *Repo, adapterNames []string) *Handler {
	return &Handler{Repo: repo, AdapterNames: adapterNames}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/items", h.listItems)
	rg.POST("/items", h.upsertItem)
	rg.GET("/items/:id", h.getItem)
	rg.GET("/items/:id/pairs", h.listPairs)
	rg.POST("/items/:id/pairs", h.createPair)
	rg.PUT("/pairs/:id/verify", h.setPairFlag((*Repo).SetPairVerified, "verified"))
	rg.PUT("/pairs/:id/activate", h.setPairFlag((*Repo).SetPairActive, "active"))
	rg.DELETE("/pairs/:id", h.deletePair)
}

func (h *Handler) listItems(c *gin.Context) {
	q := ListQuery{
		Q:      c.Query("q"),
		Limit:  parseInt(c.Query("limit"), 20),
		Offset: parseInt(c.Query("offset"), 0),
	}

	total, err := h.Repo.CountItems(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}

	items, err := h.Repo.ListItems(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  q.Limit,
		"offset": q.Offset,
		"items":  items,
	})
}

type upsertItemReq struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	CoverURL string `json:"cover_url"`
}

func (h *Handler) upsertItem(c *gin.Context) {
	var req upsertItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	req.ID = strings.TrimSpace(req.ID)
	req.Title = strings.TrimSpace(req.Title)
	if req.ID == "" || req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id and title required"})
		return
	}

	item := models.Item{ID: req.ID, Title: req.Title, CoverURL: strings.TrimSpace(req.CoverURL)}
	if err := h.Repo.UpsertItem(c.Request.Context(), item); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) getItem(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	item, err := h.Repo.GetItem(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) listPairs(c *gin.Context) {
	itemID := strings.TrimSpace(c.Param("id"))
	pairs, err := h.Repo.ListPairs(c.Request.Context(), itemID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"item_id": itemID,
		"total":   len(pairs),
		"pairs":   pairs,
	})
}

type createPairReq struct {
	Adapter   string `json:"adapter"`
	SourceURL string `json:"source_url"`
}

func (h *Handler) createPair(c *gin.Context) {
	itemID := strings.TrimSpace(c.Param("id"))

	var req createPairReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	adapterName := strings.ToLower(strings.TrimSpace(req.Adapter))
	sourceURL := strings.TrimSpace(req.SourceURL)
	if adapterName == "" || sourceURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "adapter and source_url required"})
		return
	}
	if !h.adapterAllowed(adapterName) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    "unknown adapter",
			"adapters": h.AdapterNames,
		})
		return
	}

	pair, err := h.Repo.CreatePair(c.Request.Context(), itemID, adapterName, sourceURL)
	if err != nil {
		switch {
		case errors.Is(err, ErrPairExists):
			c.JSON(http.StatusConflict, gin.H{"error": "pair already exists"})
		case errors.Is(err, ErrItemMissing):
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, pair)
}

type flagReq struct {
	Value *bool `json:"value"`
}

func (h *Handler) setPairFlag(set func(*Repo, context.Context, int64, bool) (bool, error), name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pair id"})
			return
		}

		// default true; {"value": false} clears the flag
		value := true
		var req flagReq
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
				return
			}
			if req.Value != nil {
				value = *req.Value
			}
		}

		ok, err := set(h.Repo, c.Request.Context(), id, value)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "pair not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id, name: value})
	}
}

func (h *Handler) deletePair(c *gin.Context) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pair id"})
		return
	}

	ok, err := h.Repo.DeletePair(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "pair not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *Handler) adapterAllowed(name string) bool {
	if len(h.AdapterNames) == 0 {
		return true
	}
	for _, n := range h.AdapterNames {
		if n == name {
			return true
		}
	}
	return false
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
