package service

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/sportlink-dev/sportlink/internal/config"
	"github.com/sportlink-dev/sportlink/internal/domain"
	"github.com/sportlink-dev/sportlink/internal/errors"
	"github.com/sportlink-dev/sportlink/internal/logger"
	"github.com/sportlink-dev/sportlink/internal/utils"
	"github.com/sportlink-dev/sportlink/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

type AccountService interface {
	Register(email, password string, profile domain.Profile) (domain.PublicAccount, error)
	Login(email, password string) (domain.PublicAccount, string, error)
	VerifyEmail(email, token string) (string, error)
	ResendVerification(email string) error
	ForgotPassword(email string) error
	ResetPassword(email, token, password, confirm string) error
}

type Accounts struct {
	storage  AccountStorage
	notifier Notifier
	jwt      Jwt
	cfg      *config.Config
}

// AccountStorage is the only collaborator allowed to mutate accounts. Every
// multi-step mutation is a single atomic operation on the storage side so
// concurrent requests against one account cannot lose updates.
type AccountStorage interface {
	Account(email domain.Email) (domain.Account, error)
	SaveAccount(account domain.Account) (domain.Account, error)
	DeleteAccount(id domain.AccountId) error

	// RegisterFailedLogin increments the attempt counter and, when the new
	// count reaches threshold, sets the lockout in the same statement.
	RegisterFailedLogin(id domain.AccountId, threshold int, lockout time.Duration) (int, *time.Time, error)
	ClearLoginFailures(id domain.AccountId) error

	MarkVerified(id domain.AccountId) error
	ClearVerificationToken(id domain.AccountId) error
	RotateVerificationToken(id domain.AccountId, token string, expires, sent time.Time) error

	SetResetToken(id domain.AccountId, token string, expires time.Time) error
	ClearResetToken(id domain.AccountId) error
	// ResetPassword matches the stored token and its unexpired window in one
	// statement; on match it swaps the hash, clears the reset fields and the
	// login failure state. Returns false when nothing matched.
	ResetPassword(id domain.AccountId, token string, now time.Time, newPassHash string) (bool, error)
}

type Notifier interface {
	SendVerification(email, token string) error
	SendWelcome(email string) error
	SendPasswordReset(email, token string) error
}

type Jwt interface {
	NewToken(account domain.Account) (string, error)
}

func NewAccounts(storage AccountStorage, notifier Notifier, jwt Jwt, cfg *config.Config) *Accounts {
	return &Accounts{
		storage:  storage,
		notifier: notifier,
		jwt:      jwt,
		cfg:      cfg,
	}
}

func credentialsInvalid() error {
	return errors.New("Invalid credentials", http.StatusUnauthorized, errors.CodeCredentialsInvalid)
}

func deliveryFailed(message string) error {
	return errors.New(message, http.StatusBadGateway, errors.CodeDeliveryFailed)
}

func remainingMinutes(until time.Time) int {
	return int(math.Ceil(time.Until(until).Minutes()))
}

// Register validates the input, creates the unverified account and sends the
// verification email. If the email cannot be delivered the account is removed
// again: registration must not leave an unreachable account behind.
func (a *Accounts) Register(email, password string, profile domain.Profile) (domain.PublicAccount, error) {
	email = validation.NormalizeEmail(email)

	if err := validation.ValidateEmail(email); err != nil {
		return domain.PublicAccount{}, err
	}
	if err := validation.ValidateRegistrationPassword(password); err != nil {
		return domain.PublicAccount{}, err
	}
	profile = validation.SanitizeProfile(profile)

	existing, err := a.storage.Account(email)
	if err != nil && !errors.IsNotFound(err) {
		return domain.PublicAccount{}, err
	}
	if err == nil {
		if existing.EmailVerified {
			return domain.PublicAccount{}, errors.Conflict("An account with this email already exists", errors.CodeEmailExistsVerified)
		}
		return domain.PublicAccount{}, errors.Conflict("An account with this email is awaiting verification. Use the resend option if you did not receive the email", errors.CodeEmailExistsUnverified)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), a.cfg.Public.BcryptCost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return domain.PublicAccount{}, err
	}

	token := utils.GenerateToken(utils.VerificationTokenBytes)
	now := time.Now().UTC()
	expires := now.Add(a.cfg.VerificationTTL())

	account, err := a.storage.SaveAccount(domain.Account{
		Email:                email,
		PassHash:             string(passHash),
		EmailVerified:        false,
		VerificationToken:    &token,
		VerificationExpires:  &expires,
		LastVerificationSent: &now,
		Profile:              profile,
	})
	if err != nil {
		if errors.IsConflict(err) {
			// Lost a race with a concurrent registration for the same email.
			return domain.PublicAccount{}, errors.Conflict("An account with this email already exists", errors.CodeEmailExistsUnverified)
		}
		return domain.PublicAccount{}, err
	}

	if err := a.notifier.SendVerification(email, token); err != nil {
		logger.Log.Error("verification email failed, rolling back registration", "account_id", account.Id, "error", err)
		if delErr := a.storage.DeleteAccount(account.Id); delErr != nil {
			logger.Log.Error("failed to delete account after delivery failure", "account_id", account.Id, "error", delErr)
		}
		return domain.PublicAccount{}, deliveryFailed("Failed to send verification email, please try again")
	}

	return account.Public(), nil
}

// Login authenticates the credentials and issues a session token. Failures
// stay deliberately generic so callers cannot probe which emails exist; the
// only exception is the unverified-email case, which is a distinct class.
func (a *Accounts) Login(email, password string) (domain.PublicAccount, string, error) {
	email = validation.NormalizeEmail(email)

	if err := validation.ValidateEmail(email); err != nil {
		return domain.PublicAccount{}, "", err
	}

	account, err := a.storage.Account(email)
	if err != nil {
		if errors.IsNotFound(err) {
			// to not leak existing users
			return domain.PublicAccount{}, "", credentialsInvalid()
		}
		return domain.PublicAccount{}, "", err
	}

	now := time.Now()
	if account.Locked(now) {
		return domain.PublicAccount{}, "", errors.New(
			fmt.Sprintf("Account temporarily locked, try again in %d minutes", remainingMinutes(*account.LockoutUntil)),
			http.StatusForbidden, errors.CodeAccountLocked)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PassHash), []byte(password)); err != nil {
		attempts, lockedUntil, recErr := a.storage.RegisterFailedLogin(account.Id, a.cfg.Public.LockoutThreshold, a.cfg.LockoutDuration())
		if recErr != nil {
			logger.Log.Error("failed to record failed login", "account_id", account.Id, "error", recErr)
			return domain.PublicAccount{}, "", recErr
		}
		if lockedUntil != nil && lockedUntil.After(now) {
			logger.Log.Warn("account locked after repeated failed logins", "account_id", account.Id, "attempts", attempts)
			return domain.PublicAccount{}, "", errors.New(
				fmt.Sprintf("Too many failed attempts, account locked for %d minutes", remainingMinutes(*lockedUntil)),
				http.StatusForbidden, errors.CodeAccountLocked)
		}
		return domain.PublicAccount{}, "", credentialsInvalid()
	}

	if !account.EmailVerified {
		return domain.PublicAccount{}, "", errors.New(
			"Please verify your email address before logging in",
			http.StatusForbidden, errors.CodeEmailNotVerified)
	}

	if err := a.storage.ClearLoginFailures(account.Id); err != nil {
		logger.Log.Error("failed to clear login failures", "account_id", account.Id, "error", err)
		return domain.PublicAccount{}, "", err
	}

	token, err := a.jwt.NewToken(account)
	if err != nil {
		logger.Log.Error("failed to create session token", "account_id", account.Id, "error", err)
		return domain.PublicAccount{}, "", err
	}

	return account.Public(), token, nil
}

// VerifyEmail consumes a verification token. The returned code is either
// VERIFICATION_SUCCESS or ALREADY_VERIFIED; re-verification is a safe replay.
func (a *Accounts) VerifyEmail(email, token string) (string, error) {
	email = validation.NormalizeEmail(email)

	account, err := a.storage.Account(email)
	if err != nil {
		if errors.IsNotFound(err) {
			return "", errors.NotFound("User not found", errors.CodeUserNotFound)
		}
		return "", err
	}

	if account.EmailVerified {
		return errors.CodeAlreadyVerified, nil
	}

	if account.VerificationToken == nil {
		return "", errors.BadRequest("No verification token on file, request a new one", errors.CodeNoToken)
	}

	if account.VerificationExpires == nil || account.VerificationExpires.Before(time.Now()) {
		// Eager cleanup: a token past its window is dead either way.
		if err := a.storage.ClearVerificationToken(account.Id); err != nil {
			logger.Log.Error("failed to clear expired verification token", "account_id", account.Id, "error", err)
		}
		return "", errors.BadRequest("Verification token expired, request a new one", errors.CodeTokenExpired)
	}

	// Mismatch leaves the stored token alone so a third party spamming
	// garbage tokens cannot deny verification to the real owner.
	if !utils.SecureCompare(token, *account.VerificationToken) {
		return "", errors.BadRequest("Invalid verification token", errors.CodeInvalidToken)
	}

	if err := a.storage.MarkVerified(account.Id); err != nil {
		return "", err
	}

	// Best effort: the verification already succeeded.
	go func(recipient string) {
		if err := a.notifier.SendWelcome(recipient); err != nil {
			logger.Log.Warn("welcome email failed", "error", err)
		}
	}(email)

	return errors.CodeVerificationSuccess, nil
}

// ResendVerification rotates the verification token and re-sends the email.
// A per-account cooldown applies on top of the coarse per-email rate limit.
func (a *Accounts) ResendVerification(email string) error {
	email = validation.NormalizeEmail(email)

	if err := validation.ValidateEmail(email); err != nil {
		return err
	}

	account, err := a.storage.Account(email)
	if err != nil {
		if errors.IsNotFound(err) {
			return errors.NotFound("User not found", errors.CodeUserNotFound)
		}
		return err
	}

	if account.EmailVerified {
		return errors.BadRequest("Email is already verified, you can log in", errors.CodeAlreadyVerified)
	}

	if account.LastVerificationSent != nil {
		nextAllowed := account.LastVerificationSent.Add(a.cfg.ResendCooldown())
		if time.Now().Before(nextAllowed) {
			return errors.New(
				fmt.Sprintf("Verification email was sent recently, try again in %d minutes", remainingMinutes(nextAllowed)),
				http.StatusTooEarly, errors.CodeRateLimited)
		}
	}

	token := utils.GenerateToken(utils.VerificationTokenBytes)
	now := time.Now().UTC()
	if err := a.storage.RotateVerificationToken(account.Id, token, now.Add(a.cfg.VerificationTTL()), now); err != nil {
		return err
	}

	// Unlike registration there is nothing to compensate here: the rotated
	// token stays valid and a later resend can still reach the user.
	if err := a.notifier.SendVerification(email, token); err != nil {
		logger.Log.Error("resend verification email failed", "account_id", account.Id, "error", err)
		return deliveryFailed("Failed to send verification email, please try again")
	}

	return nil
}

// ForgotPassword starts account recovery. It never reveals whether the
// account exists: the handler responds with the same message either way. The
// only distinct failure is delivery to an account that does exist.
func (a *Accounts) ForgotPassword(email string) error {
	email = validation.NormalizeEmail(email)

	if err := validation.ValidateEmail(email); err != nil {
		return err
	}

	account, err := a.storage.Account(email)
	if err != nil {
		if errors.IsNotFound(err) {
			logger.Log.Info("password reset requested for unknown email")
			return nil
		}
		return err
	}

	if !account.EmailVerified {
		// Unverified addresses were never proven reachable; treat like unknown.
		logger.Log.Info("password reset requested for unverified account", "account_id", account.Id)
		return nil
	}

	if account.ResetToken != nil && account.ResetExpires != nil && account.ResetExpires.After(time.Now()) {
		return errors.New(
			fmt.Sprintf("A reset link was already sent, try again in %d minutes", remainingMinutes(*account.ResetExpires)),
			http.StatusTooEarly, errors.CodeRateLimited)
	}

	token := utils.GenerateToken(utils.ResetTokenBytes)
	expires := time.Now().UTC().Add(a.cfg.ResetTTL())
	if err := a.storage.SetResetToken(account.Id, token, expires); err != nil {
		return err
	}

	if err := a.notifier.SendPasswordReset(email, token); err != nil {
		logger.Log.Error("password reset email failed, rolling back token", "account_id", account.Id, "error", err)
		if clrErr := a.storage.ClearResetToken(account.Id); clrErr != nil {
			logger.Log.Error("failed to roll back reset token", "account_id", account.Id, "error", clrErr)
		}
		return deliveryFailed("Failed to send reset email, please try again")
	}

	return nil
}

// ResetPassword consumes a reset token and installs the new password. Token
// match and expiry are checked in one storage operation; wrong and expired
// tokens are indistinguishable to the caller.
func (a *Accounts) ResetPassword(email, token, password, confirm string) error {
	email = validation.NormalizeEmail(email)

	if password != confirm {
		return errors.BadRequest("Passwords do not match", errors.CodeValidationFailed)
	}
	if err := validation.ValidateResetPassword(password); err != nil {
		return err
	}

	account, err := a.storage.Account(email)
	if err != nil {
		if errors.IsNotFound(err) {
			return errors.BadRequest("Reset link is invalid or expired", errors.CodeResetInvalid)
		}
		return err
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), a.cfg.Public.BcryptCost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return err
	}

	ok, err := a.storage.ResetPassword(account.Id, token, time.Now().UTC(), string(passHash))
	if err != nil {
		return err
	}
	if !ok {
		return errors.BadRequest("Reset link is invalid or expired", errors.CodeResetInvalid)
	}

	return nil
}
