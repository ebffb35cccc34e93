package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/IbrahimDoba/CallPlatter-sub001/internal/infrastructure"
	"github.com/IbrahimDoba/CallPlatter-sub001/internal/repository"
	"github.com/IbrahimDoba/CallPlatter-sub001/internal/usecases"
)

type Handler struct {
	agentService  *usecases.AgentService
	businessRepo  *repository.BusinessRepository
	knowledgeRepo *repository.KnowledgeRepository
	usageRepo     *repository.UsageRepository
	userRepo      *repository.UserRepository
	twilio        *infrastructure.TwilioClient
	callLimiter   *infrastructure.CallRateLimiter
}

func NewHandler(agentService *usecases.AgentService, businessRepo *repository.BusinessRepository,
	knowledgeRepo *repository.KnowledgeRepository, usageRepo *repository.UsageRepository,
	userRepo *repository.UserRepository, twilio *infrastructure.TwilioClient,
	callLimiter *infrastructure.CallRateLimiter) *Handler {
	return &Handler{
		agentService:  agentService,
		businessRepo:  businessRepo,
		knowledgeRepo: knowledgeRepo,
		usageRepo:     usageRepo,
		userRepo:      userRepo,
		twilio:        twilio,
		callLimiter:   callLimiter,
	}
}

func SetupRoutes(r *gin.Engine, h *Handler, auth *usecases.AuthUsecase, middleware *Middleware) {
	// Apply Security Middleware
	r.Use(SecurityHeaders())
	r.Use(RequestSizeLimiter(1 << 20)) // 1MB max request size
	r.Use(middleware.CORSMiddleware())

	// Public call-time webhook
	r.POST("/webhook/inbound-call", h.HandleInboundCall)

	// Public Auth Routes
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", func(c *gin.Context) {
			var req struct {
				Email    string `json:"email"`
				Password string `json:"password"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}
			if !ValidEmail(req.Email) || !ValidateLength(req.Password, 8, 128) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email or password too short"})
				return
			}
			if err := auth.Register(c.Request.Context(), req.Email, req.Password); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "verification code sent"})
		})

		authGroup.POST("/verify", func(c *gin.Context) {
			var req struct {
				Email string `json:"email"`
				Code  string `json:"code"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}
			if err := auth.Verify(c.Request.Context(), req.Email, req.Code); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "verified"})
		})

		authGroup.POST("/login", func(c *gin.Context) {
			var req struct {
				Email    string `json:"email"`
				Password string `json:"password"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}
			token, err := auth.Login(c.Request.Context(), req.Email, req.Password)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"token": token})
		})
	}

	// Authenticated dashboard API
	api := r.Group("/api")
	api.Use(middleware.AuthRequired())
	{
		api.POST("/onboarding/complete", middleware.RateLimitPerUser(rate.Limit(1), 3), h.CompleteOnboarding)

		api.GET("/agent", h.GetAgent)
		api.PUT("/agent/settings", middleware.RateLimitPerUser(rate.Limit(2), 5), h.UpdateAgentSettings)
		api.DELETE("/agent", h.DeleteAgent)

		api.GET("/knowledge", h.ListKnowledge)
		api.POST("/knowledge", middleware.RateLimitPerUser(rate.Limit(2), 5), h.CreateKnowledge)
		api.PUT("/knowledge/:id", middleware.RateLimitPerUser(rate.Limit(2), 5), h.UpdateKnowledge)
		api.DELETE("/knowledge/:id", h.DeleteKnowledge)

		api.GET("/numbers/search", h.SearchNumbers)
		api.POST("/numbers/purchase", middleware.RateLimitPerUser(rate.Limit(1), 2), h.PurchaseNumber)

		api.GET("/usage", h.GetUsage)
	}
}

// HandleInboundCall resolves the called number to its business and returns
// the remote agent ID. This is the call-time hot path: one local lookup, no
// vendor calls.
func (h *Handler) HandleInboundCall(c *gin.Context) {
	var req struct {
		BusinessID string `json:"business_id"`
		To         string `json:"to"` // called number, E.164
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	businessID := req.BusinessID
	if businessID == "" {
		if req.To == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "business_id or to required"})
			return
		}
		business, err := h.businessRepo.GetByPhoneNumber(c.Request.Context(), req.To)
		if err != nil || business == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown number"})
			return
		}
		businessID = business.ID
	}

	if !h.callLimiter.Allow(businessID) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many calls"})
		return
	}

	agentID, err := h.agentService.GetAgentID(c.Request.Context(), businessID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No agent for business"})
		return
	}

	if err := h.usageRepo.IncrementCalls(c.Request.Context(), businessID); err != nil {
		// Usage accounting must not fail the call.
		slog.Warn("call usage increment failed", "business_id", businessID, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"agent_id": agentID})
}

// getBusinessID extracts business_id from JWT context, empty until onboarding
func getBusinessID(c *gin.Context) string {
	businessID, exists := c.Get("business_id")
	if !exists || businessID == nil {
		return ""
	}
	if s, ok := businessID.(string); ok {
		return s
	}
	return ""
}

func getUserID(c *gin.Context) int {
	userID, exists := c.Get("user_id")
	if !exists {
		return 0
	}
	if f, ok := userID.(float64); ok { // JWT numbers are float64 by default
		return int(f)
	}
	return 0
}
