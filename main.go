package main

import (
	"log"
	"net/http"
	"os"

	"civicconnect-be/config"
	"civicconnect-be/controllers"
	"civicconnect-be/routes"
	"civicconnect-be/store"
	"civicconnect-be/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const dailyReportLimit = 5

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	db := config.ConnectDB()
	if db == nil {
		log.Fatal("Failed to connect to MongoDB")
	}
	config.ConnectRedis()

	uploader, err := utils.NewHTTPUploader()
	if err != nil {
		log.Fatalf("Failed to configure media uploader: %v", err)
	}

	ctrl := controllers.New(
		store.NewMongoUserStore(db),
		store.NewMongoIssueStore(db),
		uploader,
	)

	r := gin.Default()

	allowedOrigins := []string{"http://localhost:5173"}
	if frontend := os.Getenv("FRONTEND_URL"); frontend != "" {
		allowedOrigins = append(allowedOrigins, frontend)
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	routes.AuthRoutes(r, ctrl)
	routes.IssueRoutes(r, ctrl, dailyReportLimit)
	routes.UserIssueRoutes(r, ctrl)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
