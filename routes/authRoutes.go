package routes

import (
	"civicconnect-be/controllers"
	"civicconnect-be/middlewares"

	"github.com/gin-gonic/gin"
)

// AuthRoutes sets up the authentication routes
func AuthRoutes(r *gin.Engine, ctrl *controllers.Controller) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", ctrl.RegisterUser)
		auth.POST("/login", ctrl.LoginUser)
		auth.GET("/me", middlewares.AuthMiddleware(), ctrl.GetMe)
		auth.GET("/logout", ctrl.LogoutUser)
	}
}
