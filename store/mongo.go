package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civicconnect-be/models"
)

// MongoUserStore is the Mongo-backed UserStore.
type MongoUserStore struct {
	coll *mongo.Collection
}

func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{coll: db.Collection("users")}
}

func (s *MongoUserStore) Create(ctx context.Context, user *models.User) error {
	count, err := s.coll.CountDocuments(ctx, bson.M{"email": user.Email})
	if err != nil {
		return fmt.Errorf("failed to check existing user: %w", err)
	}
	if count > 0 {
		return ErrEmailTaken
	}

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *MongoUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}

func (s *MongoUserStore) SetLocation(ctx context.Context, id primitive.ObjectID, loc models.GeoPoint, clearFirstTime bool) (*models.User, error) {
	set := bson.M{"location": loc, "updatedAt": time.Now()}
	if clearFirstTime {
		set["firstTime"] = false
	}

	var user models.User
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to set user location: %w", err)
	}
	return &user, nil
}

func (s *MongoUserStore) ListLocated(ctx context.Context) ([]models.User, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"location": bson.M{"$exists": true, "$ne": nil}})
	if err != nil {
		return nil, fmt.Errorf("failed to list located users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode located users: %w", err)
	}
	return users, nil
}

// MongoIssueStore is the Mongo-backed IssueStore.
type MongoIssueStore struct {
	coll *mongo.Collection
}

func NewMongoIssueStore(db *mongo.Database) *MongoIssueStore {
	return &MongoIssueStore{coll: db.Collection("issues")}
}

func (s *MongoIssueStore) Create(ctx context.Context, issue *models.Issue) error {
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, issue); err != nil {
		return fmt.Errorf("failed to insert issue: %w", err)
	}
	return nil
}

func (s *MongoIssueStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	var issue models.Issue
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrIssueNotFound
		}
		return nil, fmt.Errorf("failed to find issue: %w", err)
	}
	return &issue, nil
}

func (s *MongoIssueStore) list(ctx context.Context, filter bson.M) ([]models.Issue, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	defer cursor.Close(ctx)

	issues := make([]models.Issue, 0)
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, fmt.Errorf("failed to decode issues: %w", err)
	}
	return issues, nil
}

func (s *MongoIssueStore) ListByCreator(ctx context.Context, userID primitive.ObjectID) ([]models.Issue, error) {
	return s.list(ctx, bson.M{"createdBy": userID})
}

func (s *MongoIssueStore) ListVisibleTo(ctx context.Context, userID primitive.ObjectID) ([]models.Issue, error) {
	return s.list(ctx, bson.M{
		"visibleTo": userID,
		"createdBy": bson.M{"$ne": userID},
	})
}

func (s *MongoIssueStore) ListVerifiedByCategory(ctx context.Context, category models.IssueCategory) ([]models.Issue, error) {
	return s.list(ctx, bson.M{
		"category":                    category,
		"progress.verified.completed": true,
	})
}

func (s *MongoIssueStore) ListAll(ctx context.Context) ([]models.Issue, error) {
	return s.list(ctx, bson.M{})
}

// AddVote appends the voter with one conditional FindOneAndUpdate: the
// filter excludes documents already containing the voter in either set, so
// two concurrent votes cannot both pass the duplicate check.
func (s *MongoIssueStore) AddVote(ctx context.Context, issueID, voterID primitive.ObjectID, kind models.VoteKind) (*models.Issue, error) {
	filter := bson.M{
		"_id":                issueID,
		"verifications.real": bson.M{"$ne": voterID},
		"verifications.fake": bson.M{"$ne": voterID},
	}
	update := bson.M{
		"$addToSet": bson.M{"verifications." + string(kind): voterID},
		"$set":      bson.M{"updatedAt": time.Now()},
	}

	var issue models.Issue
	err := s.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&issue)
	if err == nil {
		return &issue, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to add vote: %w", err)
	}

	// The conditional write matched nothing: either the issue is missing
	// or the voter already voted. Disambiguate with a plain lookup.
	if _, err := s.FindByID(ctx, issueID); err != nil {
		return nil, err
	}
	return nil, ErrAlreadyVoted
}

// MarkVerified stamps the verified stage, guarded on completed=false so the
// transition fires exactly once and the date never moves.
func (s *MongoIssueStore) MarkVerified(ctx context.Context, issueID primitive.ObjectID, at time.Time) (*models.Issue, error) {
	filter := bson.M{"_id": issueID, "progress.verified.completed": false}
	update := bson.M{"$set": bson.M{
		"progress.verified.completed": true,
		"progress.verified.date":      at,
		"updatedAt":                   time.Now(),
	}}

	var issue models.Issue
	err := s.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&issue)
	if err == nil {
		return &issue, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to mark issue verified: %w", err)
	}
	// Already verified (or missing); return the current state.
	return s.FindByID(ctx, issueID)
}

func (s *MongoIssueStore) SetStage(ctx context.Context, issueID primitive.ObjectID, stage models.Stage, at time.Time, evidenceURL *string, loc *models.GeoPoint) (*models.Issue, error) {
	set := bson.M{"updatedAt": time.Now()}
	if evidenceURL != nil {
		set["taskCompleteVideoUrl"] = *evidenceURL
	}
	if loc != nil {
		set["taskCompleteLocation"] = *loc
	}
	if len(set) > 1 {
		if _, err := s.coll.UpdateOne(ctx, bson.M{"_id": issueID}, bson.M{"$set": set}); err != nil {
			return nil, fmt.Errorf("failed to attach completion evidence: %w", err)
		}
	}

	prefix := "progress." + string(stage)
	filter := bson.M{"_id": issueID, prefix + ".completed": false}
	update := bson.M{"$set": bson.M{
		prefix + ".completed": true,
		prefix + ".date":      at,
		"updatedAt":           time.Now(),
	}}

	var issue models.Issue
	err := s.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&issue)
	if err == nil {
		return &issue, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to set progress stage: %w", err)
	}
	// Stage already stamped; keep the original date.
	return s.FindByID(ctx, issueID)
}
