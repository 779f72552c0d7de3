package models

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID             uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string            `gorm:"not null" json:"name"`
	Description    string            `json:"description"`
	Price          float64           `gorm:"not null" json:"price"` // KES, major units
	Image          string            `json:"image_url"`
	Category       string            `gorm:"index" json:"category"`
	Stock          int               `json:"stock_quantity"`
	Slug           string            `gorm:"uniqueIndex;not null" json:"slug"`
	Featured       bool              `gorm:"default:false" json:"featured"`
	Specifications map[string]string `gorm:"serializer:json;type:jsonb" json:"specifications"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	DeletedAt      gorm.DeletedAt    `gorm:"index" json:"-"`
}
