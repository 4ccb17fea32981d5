package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// ImmutableCache marks responses as cacheable forever. Uploaded lesson files
// are stored under random names and never rewritten, so a name always maps
// to the same bytes.
func ImmutableCache(maxAgeSeconds int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d, immutable", maxAgeSeconds))
		c.Next()
	}
}

// NoStore disables caching, used for quiz definitions and grading results
// whose content changes whenever an author saves.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
