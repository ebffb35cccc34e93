package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/IbrahimDoba/CallPlatter-sub001/internal/entities"
)

func (h *Handler) ListKnowledge(c *gin.Context) {
	businessID := getBusinessID(c)
	if businessID == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "No business yet"})
		return
	}

	entries, err := h.knowledgeRepo.ListActive(c.Request.Context(), businessID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load knowledge base"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) CreateKnowledge(c *gin.Context) {
	businessID := getBusinessID(c)
	if businessID == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "No business yet"})
		return
	}

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if !ValidateLength(req.Title, 1, MaxKnowledgeTitleLength) || !ValidateLength(req.Content, 1, MaxKnowledgeContentLength) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title or content missing or too long"})
		return
	}

	entry := &entities.KnowledgeEntry{
		BusinessID: businessID,
		Title:      SanitizeString(req.Title),
		Content:    SanitizeString(req.Content),
		IsActive:   true,
	}
	if err := h.knowledgeRepo.Create(c.Request.Context(), entry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save knowledge entry"})
		return
	}

	h.resyncAfterKnowledgeChange(c, businessID)
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) UpdateKnowledge(c *gin.Context) {
	businessID := getBusinessID(c)
	if businessID == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "No business yet"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entry id"})
		return
	}

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if !ValidateLength(req.Title, 1, MaxKnowledgeTitleLength) || !ValidateLength(req.Content, 1, MaxKnowledgeContentLength) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title or content missing or too long"})
		return
	}

	existing, err := h.knowledgeRepo.GetByID(c.Request.Context(), businessID, id)
	if err != nil || existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		return
	}

	existing.Title = SanitizeString(req.Title)
	existing.Content = SanitizeString(req.Content)
	if err := h.knowledgeRepo.Update(c.Request.Context(), existing); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update knowledge entry"})
		return
	}

	h.resyncAfterKnowledgeChange(c, businessID)
	c.JSON(http.StatusOK, existing)
}

func (h *Handler) DeleteKnowledge(c *gin.Context) {
	businessID := getBusinessID(c)
	if businessID == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "No business yet"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entry id"})
		return
	}

	if err := h.knowledgeRepo.Deactivate(c.Request.Context(), businessID, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete knowledge entry"})
		return
	}

	h.resyncAfterKnowledgeChange(c, businessID)
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// resyncAfterKnowledgeChange pushes the refreshed prompt to the remote agent.
// An empty settings update re-reads the active entries; the hash check makes
// it a no-op if nothing effective changed.
func (h *Handler) resyncAfterKnowledgeChange(c *gin.Context, businessID string) {
	if err := h.agentService.UpdateAgent(c.Request.Context(), businessID, entities.AgentSettings{}); err != nil {
		// Entry is saved either way; the next settings change will re-sync.
		slog.Warn("agent re-sync after knowledge change failed", "business_id", businessID, "error", err)
	}
}
