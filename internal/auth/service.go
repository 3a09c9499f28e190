package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agriconnect/agriconnect/internal/apperror"
	"github.com/agriconnect/agriconnect/internal/email"
	"github.com/agriconnect/agriconnect/internal/identity"
	"github.com/agriconnect/agriconnect/internal/notification"
	"github.com/agriconnect/agriconnect/internal/otp"
	"github.com/agriconnect/agriconnect/internal/profile"
)

const sideEffectTimeout = 10 * time.Second

// Deps aggregates everything the auth service orchestrates.
type Deps struct {
	Users     identity.Repository
	Profiles  profile.Repository
	Registrar Registrar
	Hasher    identity.Hasher
	Tokens    *TokenIssuer
	OTPs      *otp.Service
	Limiter   *LoginLimiter
	Notifier  *notification.Service
	Mailer    email.Mailer
	Logger    *slog.Logger
}

// Service implements registration, login and the OTP-backed account flows.
type Service struct {
	users     identity.Repository
	profiles  profile.Repository
	registrar Registrar
	hasher    identity.Hasher
	tokens    *TokenIssuer
	otps      *otp.Service
	limiter   *LoginLimiter
	notifier  *notification.Service
	mailer    email.Mailer
	logger    *slog.Logger
}

// NewService builds the auth service.
func NewService(d Deps) *Service {
	return &Service{
		users:     d.Users,
		profiles:  d.Profiles,
		registrar: d.Registrar,
		hasher:    d.Hasher,
		tokens:    d.Tokens,
		otps:      d.OTPs,
		limiter:   d.Limiter,
		notifier:  d.Notifier,
		mailer:    d.Mailer,
		logger:    d.Logger,
	}
}

// RegisterInput is the registration payload: shared credential fields plus
// the role-specific attribute bag.
type RegisterInput struct {
	Name      string
	Mobile    string
	Password  string
	Email     string
	Role      string
	Latitude  float64
	Longitude float64
	Address   string
	Profile   profile.Input
}

// AuthResult is returned from registration and login.
type AuthResult struct {
	Token   string
	User    identity.User
	Profile *profile.Record
}

// Register runs the registration sequence: structural validation, uniqueness
// check, atomic creation of the credential record and role profile, then the
// fire-and-forget welcome side effects and token issuance. No partial state
// survives a failure at any step.
func (s *Service) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	if fields := validateRegister(in); len(fields) > 0 {
		return AuthResult{}, apperror.Validation("invalid registration payload", fields)
	}
	role, _ := identity.ParseRole(in.Role)

	emailAddr := strings.ToLower(strings.TrimSpace(in.Email))
	if emailAddr == "" {
		emailAddr = identity.SyntheticEmail(in.Mobile)
	}

	exists, err := s.users.IdentityExists(ctx, in.Mobile, emailAddr)
	if err != nil {
		return AuthResult{}, err
	}
	if exists {
		return AuthResult{}, apperror.Conflict("mobile or email already registered")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return AuthResult{}, err
	}

	now := time.Now().UTC()
	user := identity.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(in.Name),
		Mobile:       in.Mobile,
		Email:        emailAddr,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		Address:      in.Address,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	rec, err := profile.NewRecord(user.ID, role, in.Profile, now)
	if err != nil {
		return AuthResult{}, err
	}

	// The unique index is the backstop for two concurrent registrations that
	// both pass the pre-check; the loser surfaces the same conflict error.
	if err := s.registrar.CreateAccount(ctx, user, rec); err != nil {
		return AuthResult{}, translateConflict(err)
	}

	go s.sendWelcome(user)

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: token, User: user, Profile: &rec}, nil
}

// sendWelcome runs after commit and never affects the registration response.
func (s *Service) sendWelcome(user identity.User) {
	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	message := "Hi " + user.Name + ", welcome to AgriConnect! Your " + string(user.Role) + " account is ready."
	if _, err := s.notifier.Notify(ctx, user.ID, "Welcome to AgriConnect", message, notification.TypeWelcome); err != nil {
		s.logger.Warn("welcome notification failed", "user_id", user.ID, "error", err)
	}

	if s.mailer == nil || strings.HasSuffix(user.Email, "@agriconnect.local") {
		return
	}
	if err := s.mailer.Send(user.Email, "Welcome to AgriConnect", message); err != nil {
		s.logger.Warn("welcome email failed", "to", user.Email, "error", err)
	}
}

// LoginInput carries either mobile+password or mobile+OTP credentials.
type LoginInput struct {
	Mobile   string
	Password string
	OTP      string
}

// Login verifies credentials and issues a token. Rejections never reveal
// whether the mobile number is registered, and repeated failures trip the
// lockout before any verification happens.
func (s *Service) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	if !ValidMobile(in.Mobile) {
		return AuthResult{}, apperror.Validation("invalid login payload",
			map[string]string{"mobile": "mobile must be 10 digits starting with 6-9"})
	}
	if in.Password == "" && in.OTP == "" {
		return AuthResult{}, apperror.Validation("invalid login payload",
			map[string]string{"password": "password or otp is required"})
	}

	if err := s.limiter.Allow(ctx, in.Mobile); err != nil {
		return AuthResult{}, apperror.TooManyRequests("too many failed attempts, try again later")
	}

	user, err := s.users.FindByMobile(ctx, in.Mobile)
	if err != nil {
		s.limiter.RecordFailure(ctx, in.Mobile)
		return AuthResult{}, apperror.Unauthenticated("invalid credentials")
	}
	if !user.Active {
		return AuthResult{}, apperror.Forbidden("account is deactivated")
	}

	if in.OTP != "" {
		if err := s.otps.Verify(ctx, in.Mobile, in.OTP); err != nil {
			s.limiter.RecordFailure(ctx, in.Mobile)
			return AuthResult{}, apperror.Unauthenticated("invalid credentials")
		}
		if !user.Verified {
			if err := s.users.SetVerified(ctx, in.Mobile); err != nil {
				s.logger.Warn("mark verified failed", "mobile", in.Mobile, "error", err)
			} else {
				user.Verified = true
			}
		}
	} else if !s.hasher.Verify(in.Password, user.PasswordHash) {
		s.limiter.RecordFailure(ctx, in.Mobile)
		return AuthResult{}, apperror.Unauthenticated("invalid credentials")
	}

	s.limiter.Reset(ctx, in.Mobile)

	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("update last login failed", "user_id", user.ID, "error", err)
	} else {
		user.LastLogin = &now
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: token, User: user}, nil
}

// SendOTP issues a verification code for the mobile number. The response is
// identical whether or not an account exists, to avoid enumeration.
func (s *Service) SendOTP(ctx context.Context, mobile string) error {
	if !ValidMobile(mobile) {
		return apperror.Validation("invalid mobile",
			map[string]string{"mobile": "mobile must be 10 digits starting with 6-9"})
	}
	emailAddr := ""
	if user, err := s.users.FindByMobile(ctx, mobile); err == nil {
		if !strings.HasSuffix(user.Email, "@agriconnect.local") {
			emailAddr = user.Email
		}
	}
	return s.otps.Issue(ctx, mobile, emailAddr)
}

// VerifyOTP checks a code and, when an account owns the mobile number, marks
// it phone-verified. The code is consumed on success.
func (s *Service) VerifyOTP(ctx context.Context, mobile, code string) error {
	if !ValidMobile(mobile) {
		return apperror.Validation("invalid mobile",
			map[string]string{"mobile": "mobile must be 10 digits starting with 6-9"})
	}
	if err := s.verifyCode(ctx, mobile, code); err != nil {
		return err
	}
	if err := s.users.SetVerified(ctx, mobile); err != nil && !errors.Is(err, identity.ErrNotFound) {
		return err
	}
	return nil
}

// ResetPassword sets a new password after proving phone ownership via OTP.
func (s *Service) ResetPassword(ctx context.Context, mobile, code, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return apperror.Validation("invalid password",
			map[string]string{"password": "password must be at least 6 characters"})
	}
	if err := s.verifyCode(ctx, mobile, code); err != nil {
		return err
	}
	user, err := s.users.FindByMobile(ctx, mobile)
	if err != nil {
		return apperror.NotFound("account not found")
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.SetPassword(ctx, user.ID, hash); err != nil {
		return err
	}
	s.limiter.Reset(ctx, mobile)
	return nil
}

func (s *Service) verifyCode(ctx context.Context, mobile, code string) error {
	switch err := s.otps.Verify(ctx, mobile, code); {
	case err == nil:
		return nil
	case errors.Is(err, otp.ErrCodeExpired):
		return apperror.Unauthenticated("otp expired")
	case errors.Is(err, otp.ErrCodeInvalid):
		return apperror.Unauthenticated("invalid otp")
	default:
		return err
	}
}

// Me returns the sanitized account plus its role profile. Admin accounts
// carry no role profile.
func (s *Service) Me(ctx context.Context, userID string) (identity.User, *profile.Record, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return identity.User{}, nil, apperror.Unauthenticated("account not found")
	}
	rec, err := s.profiles.FindByUser(ctx, userID, user.Role)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) && user.Role == identity.RoleAdmin {
			return user, nil, nil
		}
		return identity.User{}, nil, err
	}
	return user, &rec, nil
}

// UpdateAccount applies an allow-listed partial update to credential fields.
// Role and mobile are not changeable through this path.
func (s *Service) UpdateAccount(ctx context.Context, userID string, patch identity.Patch) (identity.User, error) {
	if patch.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*patch.Email))
		if !strings.Contains(e, "@") {
			return identity.User{}, apperror.Validation("invalid profile fields",
				map[string]string{"email": "email is invalid"})
		}
		patch.Email = &e
	}
	user, err := s.users.Update(ctx, userID, patch)
	if err != nil {
		return identity.User{}, translateConflict(err)
	}
	return user, nil
}

// Deactivate soft-disables the account; the guard rejects it from then on.
func (s *Service) Deactivate(ctx context.Context, userID string) error {
	return s.users.Deactivate(ctx, userID)
}

func translateConflict(err error) error {
	switch {
	case errors.Is(err, identity.ErrMobileTaken):
		return apperror.Conflict("mobile already registered")
	case errors.Is(err, identity.ErrEmailTaken):
		return apperror.Conflict("email already registered")
	default:
		return err
	}
}
