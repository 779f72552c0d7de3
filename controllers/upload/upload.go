package uploadControllers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// POST /api/upload/product-image (admin)
//
// Files land in the uploads dir served under /uploads; the response
// carries the public URL the admin form writes onto the product.
func ProductImage(uploadsDir string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
			return
		}

		ext := strings.ToLower(filepath.Ext(file.Filename))
		if !allowedExtensions[ext] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported image type"})
			return
		}

		if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare uploads directory"})
			return
		}

		filename := uuid.NewString() + ext
		dest := filepath.Join(uploadsDir, filename)
		if err := c.SaveUploadedFile(file, dest); err != nil {
			log.Error("save upload failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save image"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"url": "/uploads/" + filename})
	}
}
