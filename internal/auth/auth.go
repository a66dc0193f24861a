// Package auth is the identity collaborator: signup, email verification
// tokens, sessions, and auth-state change events. The admissions form is
// gated on a confirmed email, so verification state lives here.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/littlegems/admissions/internal/models"
	"github.com/littlegems/admissions/internal/services"
	"github.com/littlegems/admissions/internal/validation"
)

var (
	ErrEmailInUse         = errors.New("auth: email already registered")
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
	ErrUserNotFound       = errors.New("auth: user not found")
	ErrAlreadyVerified    = errors.New("auth: email already verified")
	ErrInvalidToken       = errors.New("auth: invalid or expired verification token")
	ErrWeakPassword       = errors.New("auth: password must be at least 8 characters")
	ErrBadSignup          = errors.New("auth: invalid signup details")
)

const verifyTokenTTL = 24 * time.Hour

// Service implements the identity operations. All state is in the users
// table; events fan out through the Bus.
type Service struct {
	gdb     *gorm.DB
	log     *zap.Logger
	mail    services.EmailSender
	bus     *Bus
	baseURL string // e.g. http://localhost:8080, for the emailed link

	now func() time.Time
}

func NewService(gdb *gorm.DB, log *zap.Logger, mail services.EmailSender, bus *Bus, baseURL string) *Service {
	return &Service{gdb: gdb, log: log, mail: mail, bus: bus, baseURL: baseURL, now: time.Now}
}

// SetClock overrides the clock; tests only.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Bus exposes the auth-state event bus for subscribers.
func (s *Service) Bus() *Bus { return s.bus }

// SignUp creates an unverified parent account and sends the verification
// email. The email failing to send is logged but does not fail signup; the
// user can always hit resend.
func (s *Service) SignUp(ctx context.Context, email, password, fullName string) (*models.User, error) {
	email, ok := validation.NormEmail(email)
	if !ok || email == "" {
		return nil, ErrBadSignup
	}
	if len(password) < 8 {
		return nil, ErrWeakPassword
	}
	if len(strings.TrimSpace(fullName)) < 2 {
		return nil, ErrBadSignup
	}

	var dup models.User
	if err := s.gdb.WithContext(ctx).Where("email = ?", email).First(&dup).Error; err == nil {
		return nil, ErrEmailInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	exp := s.now().Add(verifyTokenTTL)
	user := models.User{
		ID:             uuid.NewString(),
		Email:          email,
		PasswordHash:   string(hash),
		FullName:       strings.TrimSpace(fullName),
		Role:           "parent",
		VerifyToken:    uuid.NewString(),
		VerifyTokenExp: &exp,
	}
	if err := s.gdb.WithContext(ctx).Create(&user).Error; err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return nil, ErrEmailInUse
		}
		return nil, err
	}

	s.sendVerification(ctx, &user)
	s.bus.Publish(Event{Type: EventSignedIn, UserID: user.ID, Email: user.Email, Confirmed: false})
	return &user, nil
}

// SignIn checks credentials and returns the user for session issuance.
func (s *Service) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	email, _ = validation.NormEmail(email)
	var user models.User
	if err := s.gdb.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	s.bus.Publish(Event{Type: EventSignedIn, UserID: user.ID, Email: user.Email, Confirmed: user.Verified()})
	return &user, nil
}

// GetUser re-fetches the current identity record; the verification gate
// polls this for the confirmation timestamp.
func (s *Service) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.gdb.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// GetUserByEmail looks a user up by normalized email.
func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	email, _ = validation.NormEmail(email)
	var user models.User
	if err := s.gdb.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// VerifyToken consumes a verification token (from the emailed link or the
// manual paste box) and marks the email confirmed. email may be empty when
// the token arrives via the callback link. Verification is idempotent at
// the storage level: an already-confirmed user gets ErrAlreadyVerified.
func (s *Service) VerifyToken(ctx context.Context, email, token string) (*models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	q := s.gdb.WithContext(ctx).Where("verify_token = ?", token)
	if email != "" {
		norm, _ := validation.NormEmail(email)
		q = q.Where("email = ?", norm)
	}
	var user models.User
	if err := q.First(&user).Error; err != nil {
		return nil, ErrInvalidToken
	}
	if user.Verified() {
		return nil, ErrAlreadyVerified
	}
	if user.VerifyTokenExp == nil || s.now().After(*user.VerifyTokenExp) {
		return nil, ErrInvalidToken
	}

	now := s.now()
	user.EmailConfirmedAt = &now
	user.VerifyToken = ""
	user.VerifyTokenExp = nil
	if err := s.gdb.WithContext(ctx).Save(&user).Error; err != nil {
		return nil, err
	}

	s.log.Info("email verified", zap.String("user_id", user.ID))
	s.bus.Publish(Event{Type: EventEmailVerified, UserID: user.ID, Email: user.Email, Confirmed: true})
	s.bus.Publish(Event{Type: EventSignedIn, UserID: user.ID, Email: user.Email, Confirmed: true})
	return &user, nil
}

// ResendVerification rotates the user's token and re-sends the email.
// Rate limiting is the handler's job; this always sends when the user
// exists and is unverified.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.Verified() {
		return ErrAlreadyVerified
	}

	exp := s.now().Add(verifyTokenTTL)
	user.VerifyToken = uuid.NewString()
	user.VerifyTokenExp = &exp
	if err := s.gdb.WithContext(ctx).Save(user).Error; err != nil {
		return err
	}

	return s.sendVerificationErr(ctx, user)
}

func (s *Service) sendVerification(ctx context.Context, user *models.User) {
	if err := s.sendVerificationErr(ctx, user); err != nil {
		s.log.Warn("verification email failed", zap.String("email", user.Email), zap.Error(err))
	}
}

func (s *Service) sendVerificationErr(ctx context.Context, user *models.User) error {
	link := s.baseURL + "/auth/callback?token=" + user.VerifyToken
	html, text, err := services.VerificationEmail(user.FullName, link, user.VerifyToken)
	if err != nil {
		return err
	}
	return s.mail.Send(ctx, user.Email, "Verify your email - Little Gems School", html, text)
}
