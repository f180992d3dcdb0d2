package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator"

	"github.com/amaralkaff/lsa-backend/internal/crypto"
	"github.com/amaralkaff/lsa-backend/internal/model"
	"github.com/amaralkaff/lsa-backend/internal/repository"
)

const (
	tokenType              = "bearer"
	generatedAdminPassword = 20
)

var (
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInactiveAccount    = errors.New("inactive user")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrUnauthenticated    = errors.New("could not validate credentials")
	ErrStoreUnavailable   = repository.ErrStoreUnavailable
)

// UserStore is the persistence the auth flow needs.
type UserStore interface {
	Insert(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	CountByEmail(ctx context.Context, email string) (int64, error)
	CountByUsername(ctx context.Context, username string) (int64, error)
	SetAdmin(ctx context.Context, email string) error
}

// IdentityCache caches resolved users by token subject.
type IdentityCache interface {
	Get(ctx context.Context, subject string) (*model.User, bool, error)
	Set(ctx context.Context, user *model.User) error
	Invalidate(ctx context.Context, subject string) error
}

// AuthOption configures optional AuthService collaborators.
type AuthOption func(*AuthService)

// WithIdentityCache enables the identity cache for Authenticate.
func WithIdentityCache(c IdentityCache) AuthOption {
	return func(s *AuthService) { s.cache = c }
}

// AuthService handles registration, login and bearer token resolution.
type AuthService struct {
	users    UserStore
	hasher   *crypto.PasswordHasher
	tokens   *crypto.TokenCodec
	cache    IdentityCache
	validate *validator.Validate
	now      func() time.Time

	// secretOut receives a generated admin password instead of the log.
	secretOut io.Writer
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, hasher *crypto.PasswordHasher, tokens *crypto.TokenCodec, opts ...AuthOption) *AuthService {
	s := &AuthService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		validate:  newValidator(),
		now:       time.Now,
		secretOut: os.Stderr,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new active, non-admin user.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	req.Email = normalizeEmail(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	req.FullName = strings.TrimSpace(req.FullName)

	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	// Fast path only. The unique indexes decide at insert time.
	if n, err := s.users.CountByEmail(ctx, req.Email); err != nil {
		return nil, err
	} else if n > 0 {
		return nil, ErrEmailTaken
	}
	if n, err := s.users.CountByUsername(ctx, req.Username); err != nil {
		return nil, err
	} else if n > 0 {
		return nil, ErrUsernameTaken
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, crypto.ErrPasswordTooLong) {
			return nil, &ValidationError{Field: "password", Message: "is too long"}
		}
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Email:        req.Email,
		Username:     req.Username,
		FullName:     req.FullName,
		PasswordHash: hash,
		IsActive:     true,
		IsAdmin:      false,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.users.Insert(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, ErrEmailTaken
		case errors.Is(err, repository.ErrDuplicateUsername):
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	slog.Info("user registered", "user_id", user.ID.Hex())
	return user, nil
}

// Login verifies credentials and issues an access token. Unknown email and
// wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.TokenResponse, error) {
	email := normalizeEmail(req.Email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.hasher.Verify(req.Password, s.hasher.DummyHash())
			slog.Info("login failed", "reason", "unknown_identifier")
			return model.TokenResponse{}, ErrInvalidCredentials
		}
		return model.TokenResponse{}, err
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		slog.Info("login failed", "reason", "bad_password", "user_id", user.ID.Hex())
		return model.TokenResponse{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		slog.Info("login failed", "reason", "inactive", "user_id", user.ID.Hex())
		return model.TokenResponse{}, ErrInactiveAccount
	}

	token, _, err := s.tokens.Issue(user.Email, crypto.TokenExtras{
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	})
	if err != nil {
		return model.TokenResponse{}, fmt.Errorf("issuing token: %w", err)
	}

	return model.TokenResponse{
		AccessToken: token,
		TokenType:   tokenType,
		ExpiresIn:   int(s.tokens.TTL().Seconds()),
	}, nil
}

// Authenticate resolves a bearer token to the live user record. Every token
// or lookup failure is ErrUnauthenticated except store outages, which are
// returned as is.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	subject := claims.Subject
	if subject == "" {
		return nil, ErrUnauthenticated
	}

	if s.cache != nil {
		user, ok, err := s.cache.Get(ctx, subject)
		if err != nil {
			slog.Warn("identity cache read failed", "error", err)
		} else if ok {
			return user, nil
		}
	}

	user, err := s.users.FindByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, user); err != nil {
			slog.Warn("identity cache write failed", "error", err)
		}
	}
	return user, nil
}

// RequireActive rejects identities whose account is deactivated.
func RequireActive(user *model.User) error {
	if user == nil || !user.IsActive {
		return ErrInactiveAccount
	}
	return nil
}

// AdminAccount describes the bootstrap administrator.
type AdminAccount struct {
	Email    string
	Username string
	Password string
}

// EnsureAdmin creates the bootstrap administrator if it does not exist, or
// promotes the existing account. An empty password is replaced by a
// generated one that is printed once to stderr, never to the log.
func (s *AuthService) EnsureAdmin(ctx context.Context, admin AdminAccount) error {
	email := normalizeEmail(admin.Email)
	if email == "" {
		return nil
	}

	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.IsAdmin && existing.IsActive {
			return nil
		}
		if err := s.users.SetAdmin(ctx, email); err != nil {
			return fmt.Errorf("promoting admin: %w", err)
		}
		if s.cache != nil {
			if err := s.cache.Invalidate(ctx, email); err != nil {
				slog.Warn("identity cache invalidation failed", "error", err)
			}
		}
		slog.Info("existing user promoted to admin", "user_id", existing.ID.Hex())
		return nil
	case !errors.Is(err, repository.ErrUserNotFound):
		return fmt.Errorf("looking up admin: %w", err)
	}

	password := admin.Password
	if password == "" {
		password, err = crypto.GeneratePassword(generatedAdminPassword)
		if err != nil {
			return fmt.Errorf("generating admin password: %w", err)
		}
		slog.Warn("ADMIN_PASSWORD not set, generated one and printed it to stderr; change it after first login",
			"email", email)
		fmt.Fprintf(s.secretOut, "generated admin password for %s: %s\n", email, password)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	user := &model.User{
		Email:        email,
		Username:     strings.TrimSpace(admin.Username),
		PasswordHash: hash,
		IsActive:     true,
		IsAdmin:      true,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return fmt.Errorf("creating admin: %w", err)
	}

	slog.Info("admin user created", "user_id", user.ID.Hex())
	return nil
}
