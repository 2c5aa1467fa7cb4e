package routes

import (
	"civicconnect-be/controllers"
	"civicconnect-be/middlewares"

	"github.com/gin-gonic/gin"
)

// IssueRoutes sets up the report-submission and thumbnail routes.
// Reporting is rate limited per user per day.
func IssueRoutes(r *gin.Engine, ctrl *controllers.Controller, dailyReportLimit int) {
	r.POST("/report-issue",
		middlewares.AuthMiddleware(),
		middlewares.IssueRateLimiter(dailyReportLimit),
		ctrl.ReportIssue,
	)

	r.GET("/thumbnail", ctrl.GetThumbnail)
}
