package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/agriconnect/agriconnect/internal/email"
	"github.com/agriconnect/agriconnect/internal/sms"
)

// Verification outcomes.
var (
	ErrCodeInvalid = errors.New("code does not match")
	ErrCodeExpired = errors.New("code expired")
)

// CodeLength is fixed at six digits across every flow.
const CodeLength = 6

var codeSpace = big.NewInt(1_000_000)

// Service issues and verifies one-time codes for phone verification and
// password reset.
type Service struct {
	ledger Ledger
	sender sms.Sender
	mailer email.Mailer
	ttl    time.Duration
	logger *slog.Logger
}

// NewService builds the OTP service.
func NewService(ledger Ledger, sender sms.Sender, mailer email.Mailer, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{ledger: ledger, sender: sender, mailer: mailer, ttl: ttl, logger: logger}
}

// Issue generates a fresh code for the mobile number and delivers it
// out-of-band. Saving overwrites any earlier code, so previously issued codes
// stop verifying immediately. SMS and email delivery are each best-effort and
// independent; failures are logged and never surfaced to the caller.
func (s *Service) Issue(ctx context.Context, mobile, emailAddr string) error {
	code, err := GenerateCode()
	if err != nil {
		return err
	}
	if err := s.ledger.Save(ctx, mobile, code, s.ttl); err != nil {
		return err
	}

	message := fmt.Sprintf("Your AgriConnect verification code is %s. It expires in %d minutes.",
		code, int(s.ttl.Minutes()))

	if s.sender != nil {
		if err := s.sender.Send(ctx, mobile, message); err != nil {
			s.logger.Warn("otp sms delivery failed", "mobile", mobile, "error", err)
		}
	}
	if s.mailer != nil && emailAddr != "" {
		go func() {
			if err := s.mailer.Send(emailAddr, "Your AgriConnect verification code", message); err != nil {
				s.logger.Warn("otp email delivery failed", "to", emailAddr, "error", err)
			}
		}()
	}
	return nil
}

// Verify checks the submitted code against the ledger. A successful match
// consumes the code so it cannot be replayed within the expiry window.
func (s *Service) Verify(ctx context.Context, mobile, code string) error {
	stored, err := s.ledger.Get(ctx, mobile)
	if err != nil {
		if errors.Is(err, ErrNoCode) {
			return ErrCodeExpired
		}
		return err
	}
	if stored != code {
		return ErrCodeInvalid
	}
	if err := s.ledger.Delete(ctx, mobile); err != nil {
		// The code already matched; a failed delete only widens the replay
		// window until the TTL fires.
		s.logger.Warn("otp consume failed", "mobile", mobile, "error", err)
	}
	return nil
}

// GenerateCode produces a random six-digit numeric code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", CodeLength, n), nil
}
