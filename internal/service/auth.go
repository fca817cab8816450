package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dwinston/pushpickup/internal/auth"
	"github.com/dwinston/pushpickup/internal/domain"
	domainerrors "github.com/dwinston/pushpickup/internal/errors"
	"github.com/dwinston/pushpickup/internal/id"
	"github.com/dwinston/pushpickup/internal/mail"
	"github.com/dwinston/pushpickup/internal/store"
)

// AuthService handles account registration and authentication.
// Session management is delegated to SessionService.
type AuthService struct {
	store          *store.Store
	sessionService *SessionService
	mailer         mail.Mailer
	baseURL        string
	from           string
	logger         *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store *store.Store,
	sessionService *SessionService,
	mailer mail.Mailer,
	baseURL string,
	from string,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:          store,
		sessionService: sessionService,
		mailer:         mailer,
		baseURL:        baseURL,
		from:           from,
		logger:         logger,
	}
}

// RegisterRequest contains user registration data.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
	Name     string `json:"name" validate:"required,max=100"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	ClientName string `json:"client_name"`
	IPAddress  string `json:"-"` // Extracted from request by handler
}

// RefreshRequest contains the refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
	ClientName   string `json:"client_name"`
	IPAddress    string `json:"-"` // Extracted from request by handler
}

// AuthResponse contains authentication tokens and user data.
type AuthResponse struct {
	User *domain.User `json:"user"`
	SessionResponse
}

// Register creates a new user account and sends a verification email.
// The account is usable immediately; notifications are only delivered once
// the address is verified.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	// Validate request
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	// Hash password
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}
	verifyToken, err := id.Generate("verify")
	if err != nil {
		return nil, fmt.Errorf("generate verification token: %w", err)
	}

	user := &domain.User{
		ID:                userID,
		Emails:            []domain.Email{{Address: req.Email, Verified: false}},
		PasswordHash:      passwordHash,
		DisplayName:       req.Name,
		VerificationToken: verifyToken,
		LastLoginAt:       time.Now(),
	}

	// Save user
	if err := s.store.CreateUser(ctx, user); err != nil {
		if domainerrors.Is(err, store.ErrEmailExists) {
			return nil, domainerrors.AlreadyExists("email already in use")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.sendVerificationEmail(ctx, user, verifyToken)

	// Create initial session
	sessionResp, err := s.sessionService.CreateSession(ctx, user, "", "")
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("user registered",
		"user_id", userID,
		"email", req.Email,
	)

	return &AuthResponse{
		User:            user.Sanitized(),
		SessionResponse: *sessionResp,
	}, nil
}

// Login authenticates a user and creates a session.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	// Validate request
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		// Same error as a bad password so probing for accounts fails.
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	user.LastLoginAt = time.Now()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}

	sessionResp, err := s.sessionService.CreateSession(ctx, user, req.ClientName, req.IPAddress)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)

	return &AuthResponse{
		User:            user.Sanitized(),
		SessionResponse: *sessionResp,
	}, nil
}

// Refresh rotates session tokens.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	sessionResp, user, err := s.sessionService.RefreshSession(ctx, req.RefreshToken, req.ClientName, req.IPAddress)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:            user.Sanitized(),
		SessionResponse: *sessionResp,
	}, nil
}

// Logout ends the session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessionService.DeleteSession(ctx, sessionID)
}

// GetUser returns a user by ID.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if domainerrors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// VerifyEmail marks the address behind a pending verification token as
// verified and invalidates the token.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domainerrors.Validation("verification token is required")
	}

	user, err := s.store.GetUserByVerificationToken(ctx, token)
	if err != nil {
		return nil, domainerrors.NotFound("invalid or already used verification token")
	}

	for i := range user.Emails {
		user.Emails[i].Verified = true
	}
	user.VerificationToken = ""

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("email verified", "user_id", user.ID)
	return user.Sanitized(), nil
}

// UnsubscribeAll stops every email to the user. The link in each mail footer
// lands here.
func (s *AuthService) UnsubscribeAll(ctx context.Context, userID string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	user.UnsubscribedAll = true
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("user unsubscribed from all email", "user_id", userID)
	return nil
}

// sendVerificationEmail delivers the verification link without blocking
// registration. Failures are logged; the user can request another token.
func (s *AuthService) sendVerificationEmail(ctx context.Context, user *domain.User, token string) {
	msg := mail.Message{
		From:    s.from,
		To:      []mail.Recipient{{Name: user.Name(), Address: user.PrimaryEmail()}},
		Subject: "Verify your email for Push Pickup",
		Text: "Welcome to Push Pickup, " + user.Name() + "!\n\n" +
			"Please [verify your email](" + s.baseURL + "/verify-email#" + token + ") " +
			"so game organizers can reach you.",
	}

	go func(ctx context.Context) {
		if err := s.mailer.Send(ctx, msg); err != nil {
			s.logger.Error("failed to send verification email",
				"user_id", user.ID,
				"error", err)
		}
	}(context.WithoutCancel(ctx))
}
