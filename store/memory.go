package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicconnect-be/models"
)

// MemoryUserStore is an in-memory UserStore for tests.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[primitive.ObjectID]*models.User)}
}

func copyUser(u *models.User) *models.User {
	out := *u
	if u.Location != nil {
		loc := *u.Location
		out.Location = &loc
	}
	return &out
}

func (s *MemoryUserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return ErrEmailTaken
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	s.users[user.ID] = copyUser(user)
	return nil
}

func (s *MemoryUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return copyUser(user), nil
}

func (s *MemoryUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			return copyUser(user), nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *MemoryUserStore) SetLocation(ctx context.Context, id primitive.ObjectID, loc models.GeoPoint, clearFirstTime bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	user.Location = &models.GeoPoint{Lat: loc.Lat, Lng: loc.Lng}
	if clearFirstTime {
		user.FirstTime = false
	}
	user.UpdatedAt = time.Now()
	return copyUser(user), nil
}

func (s *MemoryUserStore) ListLocated(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	located := make([]models.User, 0)
	for _, user := range s.users {
		if user.Location != nil {
			located = append(located, *copyUser(user))
		}
	}
	return located, nil
}

// MemoryIssueStore is an in-memory IssueStore for tests. The mutex gives
// AddVote the same check-then-append atomicity the Mongo conditional
// update provides.
type MemoryIssueStore struct {
	mu     sync.Mutex
	issues map[primitive.ObjectID]*models.Issue
}

func NewMemoryIssueStore() *MemoryIssueStore {
	return &MemoryIssueStore{issues: make(map[primitive.ObjectID]*models.Issue)}
}

func copyIssue(i *models.Issue) *models.Issue {
	out := *i
	out.VisibleTo = append([]primitive.ObjectID(nil), i.VisibleTo...)
	out.Verifications.Real = append([]primitive.ObjectID(nil), i.Verifications.Real...)
	out.Verifications.Fake = append([]primitive.ObjectID(nil), i.Verifications.Fake...)
	if i.TaskCompleteVideoURL != nil {
		url := *i.TaskCompleteVideoURL
		out.TaskCompleteVideoURL = &url
	}
	if i.TaskCompleteLocation != nil {
		loc := *i.TaskCompleteLocation
		out.TaskCompleteLocation = &loc
	}
	return &out
}

func (s *MemoryIssueStore) Create(ctx context.Context, issue *models.Issue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	s.issues[issue.ID] = copyIssue(issue)
	return nil
}

func (s *MemoryIssueStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issue, ok := s.issues[id]
	if !ok {
		return nil, ErrIssueNotFound
	}
	return copyIssue(issue), nil
}

func (s *MemoryIssueStore) list(match func(*models.Issue) bool) []models.Issue {
	out := make([]models.Issue, 0)
	for _, issue := range s.issues {
		if match(issue) {
			out = append(out, *copyIssue(issue))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *MemoryIssueStore) ListByCreator(ctx context.Context, userID primitive.ObjectID) ([]models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.list(func(i *models.Issue) bool {
		return i.CreatedBy == userID
	}), nil
}

func (s *MemoryIssueStore) ListVisibleTo(ctx context.Context, userID primitive.ObjectID) ([]models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.list(func(i *models.Issue) bool {
		if i.CreatedBy == userID {
			return false
		}
		for _, id := range i.VisibleTo {
			if id == userID {
				return true
			}
		}
		return false
	}), nil
}

func (s *MemoryIssueStore) ListVerifiedByCategory(ctx context.Context, category models.IssueCategory) ([]models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.list(func(i *models.Issue) bool {
		return i.Category == category && i.Progress.Verified.Completed
	}), nil
}

func (s *MemoryIssueStore) ListAll(ctx context.Context) ([]models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.list(func(*models.Issue) bool { return true }), nil
}

func (s *MemoryIssueStore) AddVote(ctx context.Context, issueID, voterID primitive.ObjectID, kind models.VoteKind) (*models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issue, ok := s.issues[issueID]
	if !ok {
		return nil, ErrIssueNotFound
	}
	if _, voted := issue.Verifications.HasVoted(voterID); voted {
		return nil, ErrAlreadyVoted
	}

	if kind == models.VoteReal {
		issue.Verifications.Real = append(issue.Verifications.Real, voterID)
	} else {
		issue.Verifications.Fake = append(issue.Verifications.Fake, voterID)
	}
	issue.UpdatedAt = time.Now()
	return copyIssue(issue), nil
}

func (s *MemoryIssueStore) MarkVerified(ctx context.Context, issueID primitive.ObjectID, at time.Time) (*models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issue, ok := s.issues[issueID]
	if !ok {
		return nil, ErrIssueNotFound
	}
	if !issue.Progress.Verified.Completed {
		stamped := at
		issue.Progress.Verified.Completed = true
		issue.Progress.Verified.Date = &stamped
		issue.UpdatedAt = time.Now()
	}
	return copyIssue(issue), nil
}

func (s *MemoryIssueStore) SetStage(ctx context.Context, issueID primitive.ObjectID, stage models.Stage, at time.Time, evidenceURL *string, loc *models.GeoPoint) (*models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issue, ok := s.issues[issueID]
	if !ok {
		return nil, ErrIssueNotFound
	}

	if evidenceURL != nil {
		url := *evidenceURL
		issue.TaskCompleteVideoURL = &url
	}
	if loc != nil {
		point := *loc
		issue.TaskCompleteLocation = &point
	}

	record := issue.Progress.Record(stage)
	if record != nil && !record.Completed {
		stamped := at
		record.Completed = true
		record.Date = &stamped
	}
	issue.UpdatedAt = time.Now()
	return copyIssue(issue), nil
}
