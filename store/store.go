package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicconnect-be/models"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrIssueNotFound = errors.New("issue not found")
	ErrEmailTaken    = errors.New("email already registered")
	// ErrAlreadyVoted means the voter is already present in one of the
	// issue's verification sets; nothing was written.
	ErrAlreadyVoted = errors.New("user has already voted on this issue")
)

// UserStore persists user accounts and their last known locations.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// SetLocation records the user's coordinates. When clearFirstTime is
	// true the firstTime flag is also cleared (the set-location flow);
	// the update-location flow leaves it untouched.
	SetLocation(ctx context.Context, id primitive.ObjectID, loc models.GeoPoint, clearFirstTime bool) (*models.User, error)
	// ListLocated returns every user with a known location.
	ListLocated(ctx context.Context) ([]models.User, error)
}

// IssueStore persists issues, their visibility snapshots, vote sets and
// progress records.
type IssueStore interface {
	Create(ctx context.Context, issue *models.Issue) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error)
	ListByCreator(ctx context.Context, userID primitive.ObjectID) ([]models.Issue, error)
	// ListVisibleTo returns issues whose visibility snapshot contains the
	// user, excluding issues the user created.
	ListVisibleTo(ctx context.Context, userID primitive.ObjectID) ([]models.Issue, error)
	// ListVerifiedByCategory returns issues of the category whose verified
	// stage has completed, for department dashboards.
	ListVerifiedByCategory(ctx context.Context, category models.IssueCategory) ([]models.Issue, error)
	ListAll(ctx context.Context) ([]models.Issue, error)

	// AddVote appends the voter to the chosen set as one atomic
	// conditional write: it succeeds only if the voter is absent from
	// both sets. Returns ErrAlreadyVoted or ErrIssueNotFound otherwise.
	AddVote(ctx context.Context, issueID, voterID primitive.ObjectID, kind models.VoteKind) (*models.Issue, error)

	// MarkVerified completes the verified stage and stamps it, once.
	// Calling it on an already-verified issue is a no-op that returns the
	// current document.
	MarkVerified(ctx context.Context, issueID primitive.ObjectID, at time.Time) (*models.Issue, error)

	// SetStage completes a department-settable stage. The stamp is only
	// written if the stage has not completed yet; completion evidence and
	// coordinates, when supplied, are attached regardless.
	SetStage(ctx context.Context, issueID primitive.ObjectID, stage models.Stage, at time.Time, evidenceURL *string, loc *models.GeoPoint) (*models.Issue, error)
}
