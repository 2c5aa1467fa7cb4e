package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueCategory enum
type IssueCategory string

const (
	Road        IssueCategory = "Road"
	Water       IssueCategory = "Water"
	Street      IssueCategory = "Street"
	Electricity IssueCategory = "Electricity"
	Sanitation  IssueCategory = "Sanitation"
	Other       IssueCategory = "Other"
)

// ValidCategory reports whether s is one of the fixed issue categories.
// Department names are the same set.
func ValidCategory(s string) bool {
	switch IssueCategory(s) {
	case Road, Water, Street, Electricity, Sanitation, Other:
		return true
	}
	return false
}

// VoteKind is a verification opinion: "real" or "fake".
type VoteKind string

const (
	VoteReal VoteKind = "real"
	VoteFake VoteKind = "fake"
)

func ValidVoteKind(s string) bool {
	return VoteKind(s) == VoteReal || VoteKind(s) == VoteFake
}

// VerifyThreshold is the real-vote count an issue must strictly exceed
// before its verified stage completes.
const VerifyThreshold = 5

// Stage names the four ordered progress milestones.
type Stage string

const (
	StageReported   Stage = "reported"
	StageVerified   Stage = "verified"
	StageInProgress Stage = "inProgress"
	StageResolved   Stage = "resolved"
)

// stageOrder gives each stage its position in the intended pipeline.
var stageOrder = map[Stage]int{
	StageReported:   0,
	StageVerified:   1,
	StageInProgress: 2,
	StageResolved:   3,
}

// DepartmentStage reports whether s is a stage a department may set.
// reported and verified are never externally settable.
func DepartmentStage(s string) bool {
	return Stage(s) == StageInProgress || Stage(s) == StageResolved
}

// StageRecord marks one milestone: whether it completed and when.
// A date, once stamped, is never cleared or moved.
type StageRecord struct {
	Completed bool       `bson:"completed" json:"completed"`
	Date      *time.Time `bson:"date,omitempty" json:"date,omitempty"`
}

// Progress holds the four per-issue milestones. Stages are visited in
// pipeline order but ordering is not enforced on department transitions.
type Progress struct {
	Reported   StageRecord `bson:"reported" json:"reported"`
	Verified   StageRecord `bson:"verified" json:"verified"`
	InProgress StageRecord `bson:"inProgress" json:"inProgress"`
	Resolved   StageRecord `bson:"resolved" json:"resolved"`
}

// Record returns the record for the named stage.
func (p *Progress) Record(s Stage) *StageRecord {
	switch s {
	case StageReported:
		return &p.Reported
	case StageVerified:
		return &p.Verified
	case StageInProgress:
		return &p.InProgress
	case StageResolved:
		return &p.Resolved
	}
	return nil
}

// Highest returns the furthest completed stage in pipeline order.
func (p *Progress) Highest() Stage {
	highest := StageReported
	for _, s := range []Stage{StageVerified, StageInProgress, StageResolved} {
		if p.Record(s).Completed && stageOrder[s] > stageOrder[highest] {
			highest = s
		}
	}
	return highest
}

// Verifications are the disjoint real/fake voter sets for an issue.
// A user id appears in at most one of the two.
type Verifications struct {
	Real []primitive.ObjectID `bson:"real" json:"real"`
	Fake []primitive.ObjectID `bson:"fake" json:"fake"`
}

// HasVoted returns the kind of the user's existing vote, if any.
func (v *Verifications) HasVoted(userID primitive.ObjectID) (VoteKind, bool) {
	for _, id := range v.Real {
		if id == userID {
			return VoteReal, true
		}
	}
	for _, id := range v.Fake {
		if id == userID {
			return VoteFake, true
		}
	}
	return "", false
}

// Issue represents a civic issue reported by a user. Core fields are
// immutable after creation; VisibleTo is a snapshot of the users within
// range when the issue was filed and is never recomputed.
type Issue struct {
	ID                   primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title                string               `bson:"title" json:"title"`
	Category             IssueCategory        `bson:"category" json:"category"`
	VideoURL             string               `bson:"videoUrl" json:"videoUrl"`
	TaskCompleteVideoURL *string              `bson:"taskCompleteVideoUrl,omitempty" json:"taskCompleteVideoUrl,omitempty"`
	Location             GeoPoint             `bson:"location" json:"location"`
	TaskCompleteLocation *GeoPoint            `bson:"taskCompleteLocation,omitempty" json:"taskCompleteLocation,omitempty"`
	CreatedBy            primitive.ObjectID   `bson:"createdBy" json:"createdBy"`
	VisibleTo            []primitive.ObjectID `bson:"visibleTo" json:"visibleTo"`
	Verifications        Verifications        `bson:"verifications" json:"verifications"`
	Progress             Progress             `bson:"progress" json:"progress"`
	CreatedAt            time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time            `bson:"updatedAt" json:"updatedAt"`
}
