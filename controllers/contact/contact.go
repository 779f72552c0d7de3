package contactControllers

import (
	"net/http"

	"github.com/John-Gaitho/branded-in-grace-api/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type contactInput struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
}

// POST /api/contact/ stores a contact form submission.
func Create(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input contactInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		msg := models.ContactMessage{
			Name:    input.Name,
			Email:   input.Email,
			Subject: input.Subject,
			Message: input.Message,
		}
		if err := db.Create(&msg).Error; err != nil {
			log.Error("store contact message failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Message received"})
	}
}

// GET /api/admin/contact (admin)
func List(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var messages []models.ContactMessage
		if err := db.Order("created_at DESC").Find(&messages).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
			return
		}
		c.JSON(http.StatusOK, messages)
	}
}
