package productControllers

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Slugify derives a URL-safe slug from a product name: lowercase, with
// every run of non-alphanumeric characters collapsed into one hyphen.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // swallow leading separators
	for _, r := range strings.ToLower(name) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if isAlnum {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// uniqueSlug appends a numeric suffix until the slug is free. Slugs are
// unique at creation time; renames keep the original slug.
func uniqueSlug(db *gorm.DB, base string) (string, error) {
	slug := base
	for i := 2; ; i++ {
		var count int64
		if err := db.Table("products").Where("slug = ?", slug).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}
