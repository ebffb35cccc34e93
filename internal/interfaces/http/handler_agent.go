package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/IbrahimDoba/CallPlatter-sub001/internal/entities"
	"github.com/IbrahimDoba/CallPlatter-sub001/internal/usecases"
)

// CompleteOnboarding creates the business and provisions its remote agent.
// Safe to retry: an existing business/agent is reused, never duplicated.
func (h *Handler) CompleteOnboarding(c *gin.Context) {
	userID := getUserID(c)

	var req struct {
		BusinessName        string `json:"business_name"`
		BusinessDescription string `json:"business_description"`
		Voice               string `json:"voice"`
		FirstMessage        string `json:"first_message"`
		entities.AgentSettings
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if !ValidateLength(req.BusinessName, 1, MaxBusinessNameLength) ||
		!ValidateLength(req.BusinessDescription, 1, MaxDescriptionLength) ||
		!ValidateLength(req.FirstMessage, 1, MaxFirstMessageLength) ||
		req.Voice == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid onboarding fields"})
		return
	}
	if req.Temperature != nil && !ValidTemperature(*req.Temperature) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Temperature must be between 0 and 1"})
		return
	}
	req.BusinessName = SanitizeString(req.BusinessName)
	req.BusinessDescription = SanitizeString(req.BusinessDescription)
	req.FirstMessage = SanitizeString(req.FirstMessage)

	ctx := c.Request.Context()

	businessID := getBusinessID(c)
	if businessID == "" {
		user, err := h.userRepo.GetByID(ctx, userID)
		if err != nil || user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}
		businessID = user.BusinessID
	}

	if businessID == "" {
		business := &entities.Business{
			ID:          uuid.NewString(),
			OwnerUserID: userID,
			Name:        req.BusinessName,
			Description: req.BusinessDescription,
		}
		if err := h.businessRepo.Create(ctx, business); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create business"})
			return
		}
		if err := h.userRepo.AttachBusiness(ctx, userID, business.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to link business"})
			return
		}
		businessID = business.ID
	}

	agentID, err := h.agentService.CreateAgent(ctx, businessID,
		req.BusinessName, req.BusinessDescription, req.Voice, req.FirstMessage, req.AgentSettings)
	if err != nil {
		switch {
		case errors.Is(err, usecases.ErrMissingRequiredField):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required field"})
		case errors.Is(err, usecases.ErrRemoteCallFailed):
			// Nothing partial was persisted; the client may retry onboarding.
			c.JSON(http.StatusBadGateway, gin.H{"error": "Agent provisioning failed, please retry"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create agent"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"business_id": businessID,
		"agent_id":    agentID,
	})
}

func (h *Handler) GetAgent(c *gin.Context) {
	businessID := getBusinessID(c)
	if businessID == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "No business yet"})
		return
	}

	rec, err := h.agentService.GetAgentDetails(c.Request.Context(), businessID)
	if err != nil {
		if errors.Is(err, usecases.ErrAgentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No agent yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load agent"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// UpdateAgentSettings applies a partial settings change and re-syncs the
// remote agent only if the effective configuration changed.
func (h *Handler) UpdateAgentSettings(c *gin.Context) {
	businessID := getBusinessID(c)
	if businessID == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "No business yet"})
		return
	}

	var settings entities.AgentSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if settings.Temperature != nil && !ValidTemperature(*settings.Temperature) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Temperature must be between 0 and 1"})
		return
	}
	if settings.FirstMessage != nil && !ValidateLength(*settings.FirstMessage, 1, MaxFirstMessageLength) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "First message too long or empty"})
		return
	}
	if settings.SystemPromptOverride != nil && !ValidateLength(*settings.SystemPromptOverride, 0, MaxPromptOverrideLength) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Instructions too long"})
		return
	}

	if err := h.agentService.UpdateAgent(c.Request.Context(), businessID, settings); err != nil {
		switch {
		case errors.Is(err, usecases.ErrAgentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "No agent yet"})
		case errors.Is(err, usecases.ErrRemoteCallFailed):
			// Previous configuration stays active; the client may retry.
			c.JSON(http.StatusBadGateway, gin.H{"error": "Agent sync failed, settings not applied"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update agent"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *Handler) DeleteAgent(c *gin.Context) {
	businessID := getBusinessID(c)
	if businessID == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "No business yet"})
		return
	}

	if err := h.agentService.DeleteAgent(c.Request.Context(), businessID); err != nil {
		if errors.Is(err, usecases.ErrAgentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No agent yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete agent"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) GetUsage(c *gin.Context) {
	businessID := getBusinessID(c)
	if businessID == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "No business yet"})
		return
	}

	status, err := h.usageRepo.GetUsageStatus(c.Request.Context(), businessID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load usage"})
		return
	}
	c.JSON(http.StatusOK, status)
}
