package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrDuplicateUsername rejects signup with a taken username.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrUnknownUser is internal to the package; Verify folds it into false.
	ErrUnknownUser = errors.New("unknown user")
)

// Repository defines persistence operations for accounts.
type Repository interface {
	Insert(ctx context.Context, u User) error
	GetByUsername(ctx context.Context, username string) (User, error)
}

// Service encapsulates account creation and login verification.
type Service struct {
	repo Repository
}

// NewService creates a service backed by a repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateAccount hashes the password and stores a new account.
func (s *Service) CreateAccount(ctx context.Context, username, password string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return User{}, errors.New("username and password required")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	u := User{ID: uuid.NewString(), Username: username, PasswordHash: hashed}
	if err := s.repo.Insert(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Verify reports whether the credentials match a stored account. Unknown
// username and wrong password both come back as a plain false; bcrypt's
// comparison is constant time, and neither case is distinguishable to the
// caller. The error is non-nil only when the store itself failed.
func (s *Service) Verify(ctx context.Context, username, password string) (bool, error) {
	_, ok, err := s.Authenticate(ctx, username, password)
	return ok, err
}

// Authenticate verifies credentials and returns the matching account.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, bool, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, ErrUnknownUser) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, err
	}
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
		return User{}, false, nil
	}
	return u, true, nil
}
