// Package auth registers players and checks their credentials.
package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/verte-zerg/typechallenge/internal/logger"
	"github.com/verte-zerg/typechallenge/internal/model"
	"github.com/verte-zerg/typechallenge/internal/store"
)

const (
	alphabet       = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffixLength   = 4
	passwordLength = 10
	maxAttempts    = 5
)

var (
	// ErrMissingFields is returned when a required field is empty.
	ErrMissingFields = errors.New("missing required fields")
	// ErrEmailTaken is returned when the e-mail is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers both an unknown login and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserStore is the persistence the service needs.
type UserStore interface {
	EmailTaken(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, u model.User) (model.User, error)
	UserByLogin(ctx context.Context, login string) (model.User, error)
}

// Credentials are generated once at registration.
type Credentials struct {
	Name     string
	Email    string
	Username string
	Password string
}

// Notifier delivers generated credentials to the player.
type Notifier interface {
	Deliver(ctx context.Context, creds Credentials) error
}

// RegisterResult is returned to the caller after registration.
type RegisterResult struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// Service implements registration and login.
type Service struct {
	users    UserStore
	notifier Notifier
	cost     int
}

// NewService creates a service. A nil notifier logs delivery notices only.
func NewService(users UserStore, notifier Notifier) *Service {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Service{users: users, notifier: notifier, cost: bcrypt.DefaultCost}
}

// WithCost overrides the bcrypt cost.
func (s *Service) WithCost(cost int) *Service {
	s.cost = cost
	return s
}

// Register creates an account with a generated username and password.
func (s *Service) Register(ctx context.Context, name, email string) (RegisterResult, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return RegisterResult{}, fmt.Errorf("%w: name and email are required", ErrMissingFields)
	}
	log := logger.FromContext(ctx).With(slog.String("component", "auth"))

	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil {
		return RegisterResult{}, err
	}
	if taken {
		return RegisterResult{}, ErrEmailTaken
	}

	password, err := randomString(passwordLength)
	if err != nil {
		return RegisterResult{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return RegisterResult{}, fmt.Errorf("failed to hash password: %w", err)
	}

	var user model.User
	for attempt := 0; ; attempt++ {
		username, err := GenerateUsername(name)
		if err != nil {
			return RegisterResult{}, err
		}
		user, err = s.users.CreateUser(ctx, model.User{
			Name:         name,
			Username:     username,
			Email:        email,
			PasswordHash: string(hash),
		})
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrConflict) {
			return RegisterResult{}, err
		}
		if taken, terr := s.users.EmailTaken(ctx, email); terr == nil && taken {
			return RegisterResult{}, ErrEmailTaken
		}
		if attempt+1 >= maxAttempts {
			return RegisterResult{}, fmt.Errorf("failed to allocate username: %w", err)
		}
	}

	if err := s.notifier.Deliver(ctx, Credentials{
		Name:     user.Name,
		Email:    user.Email,
		Username: user.Username,
		Password: password,
	}); err != nil {
		return RegisterResult{}, fmt.Errorf("failed to deliver credentials: %w", err)
	}
	log.Info("user registered", slog.String("user", user.Username))
	return RegisterResult{
		Username: user.Username,
		Message:  "Registration successful. Credentials sent to email.",
	}, nil
}

// Login accepts a username or e-mail with the password.
func (s *Service) Login(ctx context.Context, login, password string) (model.Profile, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return model.Profile{}, fmt.Errorf("%w: all fields are required", ErrMissingFields)
	}
	user, err := s.users.UserByLogin(ctx, login)
	if errors.Is(err, store.ErrUserNotFound) {
		return model.Profile{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.Profile{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.Profile{}, ErrInvalidCredentials
	}
	return model.Profile{Name: user.Name, Username: user.Username, Email: user.Email}, nil
}

// GenerateUsername lowercases name, strips whitespace and appends a random suffix.
func GenerateUsername(name string) (string, error) {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	suffix, err := randomString(suffixLength)
	if err != nil {
		return "", err
	}
	return b.String() + suffix, nil
}

func randomString(n int) (string, error) {
	out := make([]byte, n)
	limit := big.NewInt(int64(len(alphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to generate random string: %w", err)
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out), nil
}
