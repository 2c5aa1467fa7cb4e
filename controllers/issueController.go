package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicconnect-be/models"
	"civicconnect-be/utils"
)

// ReportIssue handles the report-submission flow: it validates the form,
// uploads the video evidence, computes the visibility snapshot from the
// current user location table, and persists the issue. Nothing is written
// if the upload fails.
func (ctrl *Controller) ReportIssue(c *gin.Context) {
	createdByID, ok := currentUserID(c)
	if !ok {
		return
	}

	title := c.PostForm("title")
	category := c.PostForm("category")
	if title == "" || len(title) > 200 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}
	if !models.ValidCategory(category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}

	latitude, errLat := strconv.ParseFloat(c.PostForm("latitude"), 64)
	longitude, errLng := strconv.ParseFloat(c.PostForm("longitude"), 64)
	if errLat != nil || errLng != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates"})
		return
	}
	if latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Coordinates out of range"})
		return
	}

	fileHeader, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No video file provided"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read video file"})
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	videoURL, err := ctrl.Uploader.Upload(ctx, file, fileHeader.Filename)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Report submission failed"})
		return
	}

	locatedUsers, err := ctrl.Users.ListLocated(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Report submission failed"})
		return
	}
	visibleTo := utils.VisibleUsers(latitude, longitude, createdByID, locatedUsers)

	now := time.Now()
	issue := models.Issue{
		Title:    title,
		Category: models.IssueCategory(category),
		VideoURL: videoURL,
		Location: models.GeoPoint{
			Lat: latitude,
			Lng: longitude,
		},
		CreatedBy: createdByID,
		VisibleTo: visibleTo,
		Verifications: models.Verifications{
			Real: []primitive.ObjectID{},
			Fake: []primitive.ObjectID{},
		},
		Progress: models.Progress{
			Reported: models.StageRecord{Completed: true, Date: &now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := ctrl.Issues.Create(ctx, &issue); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create issue"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Issue reported successfully",
		"issue":   issue,
	})
}

// GetThumbnail rewrites a stored video URL into its thumbnail URL.
func (ctrl *Controller) GetThumbnail(c *gin.Context) {
	videoURL := c.Query("videoUrl")
	if videoURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "videoUrl is required"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"thumbnailUrl": utils.ThumbnailURL(videoURL)})
}
