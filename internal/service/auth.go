package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alphabank/alphabank-api/internal/auth"
	"github.com/alphabank/alphabank-api/internal/cpf"
	"github.com/alphabank/alphabank-api/internal/metrics"
	"github.com/alphabank/alphabank-api/internal/model"
	"github.com/alphabank/alphabank-api/internal/ratelimit"
	"github.com/alphabank/alphabank-api/internal/repository"
)

// ForgotPasswordMessage is returned for every forgot-password request so
// callers cannot probe which emails are registered.
const ForgotPasswordMessage = "If the email exists, a recovery link will be sent"

// UserStore is the persistence the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	EmailExists(ctx context.Context, email, excludeID string) (bool, error)
	CPFExists(ctx context.Context, cpf string) (bool, error)
	UpdateUser(ctx context.Context, id string, upd model.UserUpdate) (*model.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// AuthService handles registration, login and profile management.
type AuthService struct {
	users   UserStore
	tokens  *auth.TokenIssuer
	lockout ratelimit.Lockout
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewAuthService creates a new AuthService. lockout may be nil to disable
// login lockout.
func NewAuthService(users UserStore, tokens *auth.TokenIssuer, lockout ratelimit.Lockout, recorder metrics.Recorder, logger *slog.Logger) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:   users,
		tokens:  tokens,
		lockout: lockout,
		metrics: recorder,
		logger:  logger,
		now:     time.Now,
	}
}

// Session is a freshly issued token with its user.
type Session struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// RegisterInput defines input for registering a user.
type RegisterInput struct {
	FullName  string
	Email     string
	Password  string
	CPF       string
	BirthDate model.Date
	Phone     string
}

// Register validates input, creates the user and issues a token.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.Email = normalizeEmail(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)

	if err := validateLength("full_name", input.FullName, MinNameLength, MaxNameLength); err != nil {
		return nil, err
	}
	if err := validateEmail(input.Email); err != nil {
		return nil, err
	}
	if err := validatePassword("password", input.Password); err != nil {
		return nil, err
	}
	if !cpf.Valid(input.CPF) {
		return nil, invalid("cpf", "is invalid")
	}
	if input.BirthDate.IsZero() {
		return nil, invalid("birth_date", "is required")
	}
	if input.BirthDate.After(s.now()) {
		return nil, invalid("birth_date", "must be in the past")
	}
	if len(input.Phone) > MaxPhoneLength {
		return nil, invalid("phone", "must be at most %d characters", MaxPhoneLength)
	}

	digits := cpf.Normalize(input.CPF)

	exists, err := s.users.EmailExists(ctx, input.Email, "")
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	exists, err = s.users.CPFExists(ctx, digits)
	if err != nil {
		return nil, fmt.Errorf("check cpf: %w", err)
	}
	if exists {
		return nil, ErrCPFTaken
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := &model.User{
		ID:           newID(),
		FullName:     input.FullName,
		Email:        input.Email,
		PasswordHash: hash,
		CPF:          digits,
		BirthDate:    input.BirthDate,
		Phone:        input.Phone,
		CreatedAt:    now.Truncate(time.Microsecond),
	}

	// The pre-checks above can race with a concurrent registration; the
	// unique constraints are authoritative.
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, translate(err, "create user")
	}

	s.metrics.IncUserRegistered()

	token, err := s.tokens.Issue(user.ID, now)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &Session{Token: token, User: user}, nil
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password both return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, invalid("password", "is required")
	}

	if s.lockout != nil {
		locked, retryAfter, err := s.lockout.Locked(ctx, email)
		if err != nil {
			s.logger.Warn("lockout check failed", slog.String("error", err.Error()))
		} else if locked {
			s.metrics.IncLoginLocked()
			return nil, &LockedError{RetryAfter: retryAfter}
		}
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("get user: %w", err)
		}
		auth.BurnVerify(password)
		s.recordFailure(ctx, email)
		return nil, ErrInvalidCredentials
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.recordFailure(ctx, email)
		return nil, ErrInvalidCredentials
	}
	s.upgradeHash(ctx, user, password)

	if s.lockout != nil {
		if err := s.lockout.Reset(ctx, email); err != nil {
			s.logger.Warn("lockout reset failed", slog.String("error", err.Error()))
		}
	}
	s.metrics.IncLoginSucceeded()

	token, err := s.tokens.Issue(user.ID, s.now())
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &Session{Token: token, User: user}, nil
}

// upgradeHash re-hashes password when the stored hash predates the current
// argon2 parameters. Failures are logged; the login still succeeds.
func (s *AuthService) upgradeHash(ctx context.Context, user *model.User, password string) {
	if !auth.NeedsRehash(user.PasswordHash) {
		return
	}
	hash, err := auth.HashPassword(password)
	if err == nil {
		err = s.users.UpdatePassword(ctx, user.ID, hash)
	}
	if err != nil {
		s.logger.Warn("password rehash failed", slog.String("user_id", user.ID), slog.String("error", err.Error()))
		return
	}
	user.PasswordHash = hash
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	s.metrics.IncLoginFailed()
	if s.lockout == nil {
		return
	}
	if err := s.lockout.Fail(ctx, email); err != nil {
		s.logger.Warn("lockout record failed", slog.String("error", err.Error()))
	}
}

// Me returns the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, translate(err, "get user")
	}
	return user, nil
}

// UpdateProfileInput holds optional profile changes.
type UpdateProfileInput struct {
	FullName  *string
	Email     *string
	Phone     *string
	BirthDate *model.Date
}

// UpdateProfile applies a partial profile update.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*model.User, error) {
	upd := model.UserUpdate{BirthDate: input.BirthDate}

	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if err := validateLength("full_name", name, MinNameLength, MaxNameLength); err != nil {
			return nil, err
		}
		upd.FullName = &name
	}
	if input.Phone != nil {
		phone := strings.TrimSpace(*input.Phone)
		if len(phone) > MaxPhoneLength {
			return nil, invalid("phone", "must be at most %d characters", MaxPhoneLength)
		}
		upd.Phone = &phone
	}
	if input.BirthDate != nil && input.BirthDate.After(s.now()) {
		return nil, invalid("birth_date", "must be in the past")
	}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		exists, err := s.users.EmailExists(ctx, email, userID)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if exists {
			return nil, ErrEmailTaken
		}
		upd.Email = &email
	}

	if upd.IsEmpty() {
		return nil, ErrNoFieldsToUpdate
	}

	user, err := s.users.UpdateUser(ctx, userID, upd)
	if err != nil {
		return nil, translate(err, "update user")
	}
	return user, nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if err := validatePassword("old_password", oldPassword); err != nil {
		return err
	}
	if err := validatePassword("new_password", newPassword); err != nil {
		return err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return translate(err, "get user")
	}

	ok, err := auth.VerifyPassword(oldPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return ErrWrongPassword
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return translate(err, "update password")
	}
	return nil
}

// ForgotPassword validates the email and returns the same message whether
// or not it is registered. No email is sent.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return "", err
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return "", fmt.Errorf("get user: %w", err)
	}

	s.logger.Info("password recovery requested", slog.String("email_hash", auth.Fingerprint(email)))
	return ForgotPasswordMessage, nil
}
