package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tasknest/tasknest-backend/internal/auth"
	"github.com/tasknest/tasknest-backend/internal/api/validate"
	"github.com/tasknest/tasknest-backend/internal/metrics"
	"github.com/tasknest/tasknest-backend/internal/models"
	repo "github.com/tasknest/tasknest-backend/internal/repository"
)

type UserService struct {
	users    repo.Users
	sessions repo.Sessions
	tm       *auth.TokenManager
}

func NewUserService(users repo.Users, sessions repo.Sessions, tm *auth.TokenManager) *UserService {
	return &UserService{users: users, sessions: sessions, tm: tm}
}

type RegisterInput struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
}

// Register validates and creates a new account, returning the user and a
// fresh session token.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (models.User, string, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	var errs validate.Errs
	if e := validate.Required("username", in.Username); e != nil {
		errs = append(errs, *e)
	} else if !models.ValidUsername(in.Username) {
		errs.Add("username", "can only contain letters, numbers, and underscores")
	} else if taken, err := s.users.UsernameExists(ctx, in.Username, ""); err != nil {
		return models.User{}, "", err
	} else if taken {
		errs.Add("username", "a user with this username already exists")
	}

	errs = append(errs, validate.Password("password", in.Password)...)
	if in.Password != in.PasswordConfirm {
		errs.Add("password_confirm", "passwords do not match")
	}
	if e := validate.Required("first_name", in.FirstName); e != nil {
		errs = append(errs, *e)
	}
	if e := validate.Required("last_name", in.LastName); e != nil {
		errs = append(errs, *e)
	}
	if in.Email != "" {
		if !strings.Contains(in.Email, "@") {
			errs.Add("email", "invalid email address")
		} else if taken, err := s.users.EmailExists(ctx, in.Email, ""); err != nil {
			return models.User{}, "", err
		} else if taken {
			errs.Add("email", "a user with this email already exists")
		}
	}
	if len(errs) > 0 {
		return models.User{}, "", errs
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, "", err
	}
	u, err := s.users.Create(ctx, models.User{
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
	})
	if err != nil {
		return models.User{}, "", mapRepoUniqueErr(err)
	}

	token, err := s.issueToken(ctx, u.ID)
	if err != nil {
		return models.User{}, "", err
	}
	metrics.RegistrationsTotal.Inc()
	return u, token, nil
}

// Login authenticates by username and returns the user with a fresh session
// token. Failures carry field detail: unknown username, wrong password, or a
// deactivated account.
func (s *UserService) Login(ctx context.Context, username, password string) (models.User, string, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repo.ErrNotFound) {
		return models.User{}, "", authErr("username", "no account found with this username")
	}
	if err != nil {
		return models.User{}, "", err
	}
	if err := auth.VerifyPassword(password, u.PasswordHash); err != nil {
		return models.User{}, "", authErr("password", "incorrect password")
	}
	if !u.IsActive {
		return models.User{}, "", authErr("username", "this account has been deactivated")
	}

	token, err := s.issueToken(ctx, u.ID)
	if err != nil {
		return models.User{}, "", err
	}
	if err := s.users.UpdateLastLogin(ctx, u.ID); err != nil {
		return models.User{}, "", err
	}
	now := time.Now()
	u.LastLogin = &now
	return u, token, nil
}

// Logout revokes the session behind the token.
func (s *UserService) Logout(ctx context.Context, sessionID string) error {
	err := s.sessions.Delete(ctx, sessionID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrInvalidSession
	}
	return err
}

// Authenticate resolves a bearer token to a live user. Used by the auth
// middleware on every request.
func (s *UserService) Authenticate(ctx context.Context, token string) (models.User, string, error) {
	claims, err := s.tm.Parse(token)
	if err != nil {
		return models.User{}, "", ErrInvalidSession
	}
	sess, err := s.sessions.Get(ctx, claims.ID)
	if err != nil || sess.Expired() || sess.UserID != claims.UserID {
		return models.User{}, "", ErrInvalidSession
	}
	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		return models.User{}, "", ErrInvalidSession
	}
	if !u.IsActive {
		return models.User{}, "", ErrInvalidSession
	}
	return u, sess.ID, nil
}

func (s *UserService) Profile(ctx context.Context, userID string) (models.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return models.User{}, ErrNotFound
	}
	return u, err
}

type ProfileUpdateInput struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// UpdateProfile applies a partial profile update. A username edit that
// actually changes the value re-checks the cooldown, uniqueness, and the
// allowed character set, then stamps last_username_change. Email is only
// re-checked for uniqueness when it differs from the current value.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdateInput) (models.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}

	var errs validate.Errs

	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		if name != u.Username {
			if !u.CanChangeUsername() {
				return models.User{}, &UsernameLockedError{DaysLeft: u.DaysUntilUsernameChange()}
			}
			if name == "" {
				errs.Add("username", "required")
			} else if !models.ValidUsername(name) {
				errs.Add("username", "can only contain letters, numbers, and underscores")
			} else if taken, err := s.users.UsernameExists(ctx, name, u.ID); err != nil {
				return models.User{}, err
			} else if taken {
				errs.Add("username", "a user with this username already exists")
			} else {
				now := time.Now()
				u.Username = name
				u.LastUsernameChange = &now
			}
		}
	}

	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email != u.Email {
			if email != "" && !strings.Contains(email, "@") {
				errs.Add("email", "invalid email address")
			} else if email != "" {
				if taken, err := s.users.EmailExists(ctx, email, u.ID); err != nil {
					return models.User{}, err
				} else if taken {
					errs.Add("email", "a user with this email already exists")
				} else {
					u.Email = email
				}
			} else {
				u.Email = ""
			}
		}
	}

	if in.FirstName != nil {
		if e := validate.Required("first_name", *in.FirstName); e != nil {
			errs = append(errs, *e)
		} else {
			u.FirstName = strings.TrimSpace(*in.FirstName)
		}
	}
	if in.LastName != nil {
		if e := validate.Required("last_name", *in.LastName); e != nil {
			errs = append(errs, *e)
		} else {
			u.LastName = strings.TrimSpace(*in.LastName)
		}
	}

	if len(errs) > 0 {
		return models.User{}, errs
	}
	if err := s.users.Update(ctx, u); err != nil {
		return models.User{}, mapRepoUniqueErr(err)
	}
	return s.users.GetByID(ctx, u.ID)
}

func (s *UserService) issueToken(ctx context.Context, userID string) (string, error) {
	token, sessionID, expiresAt, err := s.tm.Generate(userID)
	if err != nil {
		return "", err
	}
	if err := s.sessions.Create(ctx, models.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}); err != nil {
		return "", err
	}
	return token, nil
}

// mapRepoUniqueErr turns constraint-violation sentinels from the repository
// into field errors, covering races past the pre-checks.
func mapRepoUniqueErr(err error) error {
	switch {
	case errors.Is(err, repo.ErrUsernameTaken):
		return validate.Errs{{Field: "username", Msg: "a user with this username already exists"}}
	case errors.Is(err, repo.ErrEmailTaken):
		return validate.Errs{{Field: "email", Msg: "a user with this email already exists"}}
	}
	return err
}
