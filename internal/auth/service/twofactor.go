package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/parkmead/sprintdeck/internal/auth/domain"
	"github.com/parkmead/sprintdeck/internal/auth/store"
	"github.com/parkmead/sprintdeck/pkg/cryptox"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// recoveryCodeBytes gives recovery codes 128 bits of entropy.
const recoveryCodeBytes = cryptox.TokenSize128

var (
	ErrInvalidCode             = errors.New("invalid TOTP code")
	ErrTwoFactorNotEnrolled    = errors.New("two-factor not enrolled for this user")
	ErrTwoFactorAlreadyEnabled = errors.New("two-factor already enabled for this user")
)

// TwoFactorService owns TOTP enrollment and code verification.
type TwoFactorService struct {
	Store  store.Store
	Issuer string // Issuer name for TOTP (e.g., "Sprintdeck")
}

// GenerateSetup produces a fresh TOTP secret, its otpauth:// enrollment URI
// and a single-use recovery code. It has no side effects; persisting the
// secret is the caller's concern.
func (s *TwoFactorService) GenerateSetup(accountLabel string) (domain.TwoFactorSetup, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: accountLabel,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return domain.TwoFactorSetup{}, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	recoveryCode, err := cryptox.GenerateToken(recoveryCodeBytes)
	if err != nil {
		return domain.TwoFactorSetup{}, fmt.Errorf("failed to generate recovery code: %w", err)
	}

	return domain.TwoFactorSetup{
		Secret:       key.Secret(),
		QRCode:       key.URL(),
		Issuer:       s.Issuer,
		Account:      accountLabel,
		RecoveryCode: recoveryCode,
	}, nil
}

// VerifyCode reports whether a submitted code matches the secret for the
// current 30-second step, with the standard one-step skew window either
// side. Any internal failure reads as "code is wrong"; the two cases must be
// indistinguishable to the caller.
func (s *TwoFactorService) VerifyCode(submittedCode, secret string) bool {
	if submittedCode == "" || secret == "" {
		return false
	}
	return totp.Validate(submittedCode, secret)
}

// Enroll generates a TOTP setup for the user and stores the secret together
// with the recovery code hash. This does NOT enable 2FA yet; the user must
// confirm a code via Activate first. Re-enrolling before activation simply
// replaces the pending secret.
func (s *TwoFactorService) Enroll(ctx context.Context, userID string) (domain.TwoFactorSetup, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.TwoFactorSetup{}, fmt.Errorf("failed to load user: %w", err)
	}
	if user.TwoFactorEnabled() {
		return domain.TwoFactorSetup{}, ErrTwoFactorAlreadyEnabled
	}

	setup, err := s.GenerateSetup(user.Username)
	if err != nil {
		return domain.TwoFactorSetup{}, err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdateTwoFactorSecret(ctx, userID, setup.Secret); err != nil {
			return fmt.Errorf("failed to store secret: %w", err)
		}
		if err := tx.RecoveryCodes().DeleteAllRecoveryCodes(ctx, userID); err != nil {
			return fmt.Errorf("failed to clear old recovery codes: %w", err)
		}
		hash := cryptox.FingerprintToken(setup.RecoveryCode)
		if err := tx.RecoveryCodes().CreateRecoveryCode(ctx, userID, hash); err != nil {
			return fmt.Errorf("failed to store recovery code: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.TwoFactorSetup{}, err
	}

	return setup, nil
}

// Activate verifies a code against the user's pending secret and enables
// 2FA. Sessions created before activation keep working; only their
// second-factor state changes on the next guard check.
func (s *TwoFactorService) Activate(ctx context.Context, userID string, code string) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if user.TwoFactorEnabled() {
		return ErrTwoFactorAlreadyEnabled
	}
	if user.TwoFactorSecret == nil || *user.TwoFactorSecret == "" {
		return ErrTwoFactorNotEnrolled
	}

	if !s.VerifyCode(code, *user.TwoFactorSecret) {
		return ErrInvalidCode
	}

	if err := s.Store.Users().EnableTwoFactor(ctx, userID); err != nil {
		return fmt.Errorf("failed to enable two-factor: %w", err)
	}
	return nil
}

// Disable turns 2FA off for a user after verifying a current code, clearing
// the secret and all recovery codes.
func (s *TwoFactorService) Disable(ctx context.Context, userID string, code string) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if err := s.VerifyUserCode(ctx, user, code); err != nil {
		return err
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().DisableTwoFactor(ctx, userID); err != nil {
			return fmt.Errorf("failed to disable two-factor: %w", err)
		}
		if err := tx.RecoveryCodes().DeleteAllRecoveryCodes(ctx, userID); err != nil {
			return fmt.Errorf("failed to clear recovery codes: %w", err)
		}
		return nil
	})
}

// VerifyUserCode checks a code against a user's active secret. Used by the
// session verification endpoint; requires 2FA to be fully enabled.
func (s *TwoFactorService) VerifyUserCode(ctx context.Context, user domain.User, code string) error {
	if !user.TwoFactorEnabled() || user.TwoFactorSecret == nil || *user.TwoFactorSecret == "" {
		return ErrTwoFactorNotEnrolled
	}
	if !s.VerifyCode(code, *user.TwoFactorSecret) {
		return ErrInvalidCode
	}
	return nil
}
