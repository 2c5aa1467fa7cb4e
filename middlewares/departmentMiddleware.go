package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DepartmentMiddleware gates routes to department accounts. It runs after
// AuthMiddleware and requires the department claim set by it.
func DepartmentMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		department, exists := c.Get("department")
		if !exists || department == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Department account required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
