package productControllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Grace & Glam Tote", "grace-glam-tote"},
		{"Classic Hoodie", "classic-hoodie"},
		{"  Leading spaces  ", "leading-spaces"},
		{"UPPER case", "upper-case"},
		{"100% Cotton T-Shirt", "100-cotton-t-shirt"},
		{"---", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.name), "name %q", tt.name)
	}
}
