package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicconnect-be/store"
	"civicconnect-be/utils"
)

// Controller bundles the stores and the media collaborator behind the gin
// handlers so routes can be wired against any backing implementation.
type Controller struct {
	Users    store.UserStore
	Issues   store.IssueStore
	Uploader utils.Uploader
}

func New(users store.UserStore, issues store.IssueStore, uploader utils.Uploader) *Controller {
	return &Controller{
		Users:    users,
		Issues:   issues,
		Uploader: uploader,
	}
}

// currentUserID pulls the authenticated user's id set by the auth
// middleware. It writes the error response itself when the id is missing
// or malformed.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return primitive.NilObjectID, false
	}

	userID, ok := userIDVal.(string)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return primitive.NilObjectID, false
	}

	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return primitive.NilObjectID, false
	}
	return objectID, true
}
