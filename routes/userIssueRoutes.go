package routes

import (
	"civicconnect-be/controllers"
	"civicconnect-be/middlewares"

	"github.com/gin-gonic/gin"
)

// UserIssueRoutes sets up the issue visibility, voting, and progress routes
func UserIssueRoutes(r *gin.Engine, ctrl *controllers.Controller) {
	userIssue := r.Group("/user-issue")
	{
		userIssue.GET("", middlewares.AuthMiddleware(), ctrl.GetMyIssues)
		userIssue.GET("/all-issue", ctrl.GetAllIssues)
		userIssue.PATCH("/set-location", middlewares.AuthMiddleware(), ctrl.SetLocation)
		userIssue.PATCH("/update-location", middlewares.AuthMiddleware(), ctrl.UpdateLocation)
		userIssue.POST("/verify-issues", middlewares.AuthMiddleware(), ctrl.VerifyIssue)
		userIssue.GET("/other-issues", middlewares.AuthMiddleware(), ctrl.GetOtherIssues)
		userIssue.GET("/issue/:id", middlewares.AuthMiddleware(), ctrl.GetIssue)

		department := userIssue.Group("/department-issues",
			middlewares.AuthMiddleware(),
			middlewares.DepartmentMiddleware(),
		)
		{
			department.GET("/:department", ctrl.GetDepartmentIssues)
			department.PATCH("/progress", ctrl.UpdateProgress)
		}
	}
}
