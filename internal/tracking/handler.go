package tracking

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Service  *Service
	Chapters *SQLStore
}

func NewHandler(service *Service, chapters *SQLStore) *Handler {
	return &Handler{Service: service, Chapters: chapters}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/tracking/run", h.triggerRun)
	rg.GET("/tracking/runs", h.listRuns)
	rg.GET("/tracking/runs/:id", h.getRun)
	rg.GET("/tracking/chapters/unread", h.listUnread)
	rg.PUT("/tracking/chapters/:id/read", h.markRead(true))
	rg.PUT("/tracking/chapters/:id/unread", h.markRead(false))
}

type triggerReq struct {
	ItemID  string `json:"item_id"`
	Adapter string `json:"adapter"`
	Limit   int    `json:"limit"`
}

func (h *Handler) triggerRun(c *gin.Context) {
	var req triggerReq
	// An empty body means "run everything".
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
	}
	if req.Limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be >= 0"})
		return
	}

	job := h.Service.Trigger(PairFilter{
		ItemID:  strings.TrimSpace(req.ItemID),
		Adapter: strings.TrimSpace(strings.ToLower(req.Adapter)),
		Limit:   req.Limit,
	})

	c.JSON(http.StatusAccepted, job)
}

func (h *Handler) listRuns(c *gin.Context) {
	jobs := h.Service.ListJobs()
	c.JSON(http.StatusOK, gin.H{
		"total": len(jobs),
		"runs":  jobs,
	})
}

func (h *Handler) getRun(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	job, ok := h.Service.GetJob(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *Handler) listUnread(c *gin.Context) {
	limit := parseInt(c.Query("limit"), 100)
	offset := parseInt(c.Query("offset"), 0)

	chapters, err := h.Chapters.ListUnread(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list unread failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":    len(chapters),
		"limit":    limit,
		"offset":   offset,
		"chapters": chapters,
	})
}

func (h *Handler) markRead(read bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chapter id"})
			return
		}

		ok, err := h.Chapters.SetRead(c.Request.Context(), id, read)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "chapter not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id, "read": read})
	}
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
