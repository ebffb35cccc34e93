package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) SearchNumbers(c *gin.Context) {
	if h.twilio == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Number provisioning not configured"})
		return
	}

	areaCode := c.Query("area_code")
	if areaCode != "" && !ValidAreaCode(areaCode) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid area code"})
		return
	}

	numbers, err := h.twilio.SearchLocalNumbers(c.Request.Context(), areaCode)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Number search failed"})
		return
	}
	c.JSON(http.StatusOK, numbers)
}

func (h *Handler) PurchaseNumber(c *gin.Context) {
	if h.twilio == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Number provisioning not configured"})
		return
	}

	businessID := getBusinessID(c)
	if businessID == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "No business yet"})
		return
	}

	var req struct {
		PhoneNumber string `json:"phone_number"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.PhoneNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone_number required"})
		return
	}

	purchased, err := h.twilio.PurchaseNumber(c.Request.Context(), req.PhoneNumber)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Number purchase failed"})
		return
	}

	if err := h.businessRepo.SetPhoneNumber(c.Request.Context(), businessID, purchased); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Number purchased but could not be saved"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"phone_number": purchased})
}
