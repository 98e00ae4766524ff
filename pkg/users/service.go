package users

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/readify/readify/pkg/apperrors"
	"github.com/readify/readify/pkg/auth"
	"github.com/sirupsen/logrus"
)

// User-facing failure messages
const (
	MsgRequestNil        = "The request cannot be null"
	MsgFieldsRequired    = "All fields are required"
	MsgUserAlreadyExists = "User already exists!"
	MsgNoUsersFound      = "No users found!"
	MsgUserNotFound      = auth.MsgUserNotFound
	MsgEmptyID           = "The id cannot be empty."
)

// maxAgeYears bounds how far back a birth date may lie
const maxAgeYears = 150

// Service implements user management and serves as the session manager's
// user directory
type Service struct {
	repo  Repository
	clock clockwork.Clock
	log   *logrus.Logger
}

var _ auth.UserDirectory = (*Service)(nil)

// NewService creates a user service
func NewService(repo Repository, clock clockwork.Clock, log *logrus.Logger) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = logrus.New()
	}
	return &Service{repo: repo, clock: clock, log: log}
}

func (s *Service) validBirthDate(d time.Time) bool {
	now := s.clock.Now().UTC()
	return !d.Before(now.AddDate(-maxAgeYears, 0, 0)) && !d.After(now)
}

// Create registers a user. An inactive account with the same email is
// reactivated with the new password instead of creating a duplicate.
func (s *Service) Create(ctx context.Context, req *CreateUserRequest) (uuid.UUID, error) {
	if req == nil {
		return uuid.Nil, apperrors.InvalidInput(MsgRequestNil)
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" || !s.validBirthDate(req.BirthDate) {
		return uuid.Nil, apperrors.InvalidInput(MsgFieldsRequired)
	}

	existing, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return uuid.Nil, apperrors.FromStore(err)
	}
	if existing != nil && existing.IsActive {
		return uuid.Nil, apperrors.Conflict(MsgUserAlreadyExists)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return uuid.Nil, apperrors.Internal(apperrors.MsgSomethingWentWrong, err)
	}

	if existing != nil {
		existing.IsActive = true
		existing.PasswordHash = hash
		if err := s.repo.Update(ctx, existing); err != nil {
			return uuid.Nil, apperrors.FromStore(err)
		}
		s.log.WithField("user_id", existing.ID).Info("reactivated user")
		return existing.ID, nil
	}

	user := &User{
		Name:         req.Name,
		Email:        req.Email,
		BirthDate:    req.BirthDate,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now().UTC(),
		IsActive:     true,
	}
	id, err := s.repo.Create(ctx, user)
	if err != nil {
		return uuid.Nil, apperrors.FromStore(err)
	}
	if id == uuid.Nil {
		return uuid.Nil, apperrors.New(apperrors.KindInternal, apperrors.MsgSomethingWentWrong)
	}

	s.log.WithField("user_id", id).Info("created user")
	return id, nil
}

// List returns every user
func (s *Service) List(ctx context.Context) ([]*User, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	if len(list) == 0 {
		return nil, apperrors.NotFound(MsgNoUsersFound)
	}
	return list, nil
}

// GetByID returns one user
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	if id == uuid.Nil {
		return nil, apperrors.InvalidInput(MsgEmptyID)
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	if user == nil {
		return nil, apperrors.NotFound(MsgUserNotFound)
	}
	return user, nil
}

// Update applies a partial update and returns the stored user
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateUserRequest) (*User, error) {
	if req == nil {
		return nil, apperrors.InvalidInput(MsgRequestNil)
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != "" {
		user.Name = *req.Name
	}
	if req.Email != nil && *req.Email != "" {
		email := strings.TrimSpace(*req.Email)
		if email != user.Email {
			other, err := s.repo.GetByEmail(ctx, email)
			if err != nil {
				return nil, apperrors.FromStore(err)
			}
			if other != nil && other.ID != user.ID {
				return nil, apperrors.Conflict(MsgUserAlreadyExists)
			}
			user.Email = email
		}
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, apperrors.Internal(apperrors.MsgSomethingWentWrong, err)
		}
		user.PasswordHash = hash
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.BirthDate != nil {
		if !s.validBirthDate(*req.BirthDate) {
			return nil, apperrors.InvalidInput(MsgFieldsRequired)
		}
		user.BirthDate = *req.BirthDate
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, apperrors.FromStore(err)
	}
	return user, nil
}

// FindIdentityByEmail resolves a login email
func (s *Service) FindIdentityByEmail(ctx context.Context, email string) (*auth.Identity, error) {
	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	if user == nil {
		return nil, apperrors.NotFound(MsgUserNotFound)
	}
	return identityOf(user), nil
}

// FindIdentityByID resolves the user behind a session
func (s *Service) FindIdentityByID(ctx context.Context, id uuid.UUID) (*auth.Identity, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return identityOf(user), nil
}

// GetPasswordHash returns the stored bcrypt hash of the user
func (s *Service) GetPasswordHash(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.PasswordHash, nil
}

func identityOf(u *User) *auth.Identity {
	return &auth.Identity{ID: u.ID, Email: u.Email, IsActive: u.IsActive}
}
