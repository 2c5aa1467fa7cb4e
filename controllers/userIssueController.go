package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicconnect-be/models"
	"civicconnect-be/store"
)

type locationInput struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

func (in *locationInput) point() (models.GeoPoint, bool) {
	lat, lng := *in.Lat, *in.Lng
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return models.GeoPoint{}, false
	}
	return models.GeoPoint{Lat: lat, Lng: lng}, true
}

func (ctrl *Controller) saveLocation(c *gin.Context, clearFirstTime bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input locationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng are required"})
		return
	}
	point, ok := input.point()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Coordinates out of range"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := ctrl.Users.SetLocation(ctx, userID, point, clearFirstTime)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save location"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"location":  user.Location,
		"firstTime": user.FirstTime,
	})
}

// SetLocation records the user's coordinates for the first time and clears
// the firstTime flag.
func (ctrl *Controller) SetLocation(c *gin.Context) {
	ctrl.saveLocation(c, true)
}

// UpdateLocation refreshes the user's coordinates without touching the
// firstTime flag.
func (ctrl *Controller) UpdateLocation(c *gin.Context) {
	ctrl.saveLocation(c, false)
}

// VerifyIssue records a single real/fake vote. The duplicate check and the
// append happen as one atomic store operation; a crossing real-vote count
// completes the verified stage exactly once.
func (ctrl *Controller) VerifyIssue(c *gin.Context) {
	voterID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input struct {
		ID   string `json:"id" binding:"required"`
		Type string `json:"type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidVoteKind(input.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vote type"})
		return
	}

	issueID, err := primitive.ObjectIDFromHex(input.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issue, err := ctrl.Issues.AddVote(ctx, issueID, voterID, models.VoteKind(input.Type))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrIssueNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		case errors.Is(err, store.ErrAlreadyVoted):
			existing, findErr := ctrl.Issues.FindByID(ctx, issueID)
			if findErr != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing vote"})
				return
			}
			kind, _ := existing.Verifications.HasVoted(voterID)
			c.JSON(http.StatusConflict, gin.H{
				"error": "You have already voted on this issue",
				"vote":  kind,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record vote"})
		}
		return
	}

	// One-time threshold fire: only real votes drive the verified stage.
	if models.VoteKind(input.Type) == models.VoteReal &&
		len(issue.Verifications.Real) > models.VerifyThreshold &&
		!issue.Progress.Verified.Completed {
		verified, err := ctrl.Issues.MarkVerified(ctx, issueID, time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update progress"})
			return
		}
		issue = verified
	}

	c.JSON(http.StatusOK, gin.H{
		"verifications": gin.H{
			"real": len(issue.Verifications.Real),
			"fake": len(issue.Verifications.Fake),
		},
		"progress": issue.Progress,
	})
}

// GetMyIssues returns the issues created by the logged-in user.
func (ctrl *Controller) GetMyIssues(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issues, err := ctrl.Issues.ListByCreator(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user issues"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User issues fetched successfully",
		"issues":  issues,
	})
}

// GetOtherIssues returns issues visible to the caller that they did not
// create themselves.
func (ctrl *Controller) GetOtherIssues(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issues, err := ctrl.Issues.ListVisibleTo(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch issues"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"issues": issues})
}

// GetAllIssues returns every issue, for the admin dashboard.
func (ctrl *Controller) GetAllIssues(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issues, err := ctrl.Issues.ListAll(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch issues"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(issues),
		"issues":  issues,
	})
}

// GetIssue retrieves a single issue by its ID. A malformed id is treated
// the same as a missing one.
func (ctrl *Controller) GetIssue(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issue, err := ctrl.Issues.FindByID(ctx, issueID)
	if err != nil {
		if errors.Is(err, store.ErrIssueNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"issue": issue})
}

// GetDepartmentIssues lists verified issues of the department's category.
func (ctrl *Controller) GetDepartmentIssues(c *gin.Context) {
	department := c.Param("department")
	if !models.ValidCategory(department) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid department"})
		return
	}

	claim, _ := c.Get("department")
	if claim != department {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized for this department"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issues, err := ctrl.Issues.ListVerifiedByCategory(ctx, models.IssueCategory(department))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch department issues"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"issues": issues})
}

// UpdateProgress applies a department transition to an issue: inProgress or
// resolved, optionally with completion video evidence and coordinates.
// The stage stamp is monotonic; ordering between stages is not enforced.
func (ctrl *Controller) UpdateProgress(c *gin.Context) {
	stage := c.PostForm("progressStage")
	if !models.DepartmentStage(stage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid progress stage"})
		return
	}

	issueID, err := primitive.ObjectIDFromHex(c.PostForm("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	var completeLoc *models.GeoPoint
	latStr, lngStr := c.PostForm("latitude"), c.PostForm("longitude")
	if latStr != "" || lngStr != "" {
		latitude, errLat := strconv.ParseFloat(latStr, 64)
		longitude, errLng := strconv.ParseFloat(lngStr, 64)
		if errLat != nil || errLng != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates"})
			return
		}
		completeLoc = &models.GeoPoint{Lat: latitude, Lng: longitude}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// Completion evidence is uploaded before any record is touched; an
	// upload failure aborts the whole transition.
	var evidenceURL *string
	if fileHeader, err := c.FormFile("video"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read video file"})
			return
		}
		defer file.Close()

		url, err := ctrl.Uploader.Upload(ctx, file, fileHeader.Filename)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Evidence upload failed"})
			return
		}
		evidenceURL = &url
	}

	issue, err := ctrl.Issues.SetStage(ctx, issueID, models.Stage(stage), time.Now(), evidenceURL, completeLoc)
	if err != nil {
		if errors.Is(err, store.ErrIssueNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update progress"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Progress updated successfully",
		"issue":   issue,
	})
}
