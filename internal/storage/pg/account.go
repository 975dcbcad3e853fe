package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sportlink-dev/sportlink/internal/domain"
	internal_errors "github.com/sportlink-dev/sportlink/internal/errors"
)

const uniqueViolation = "23505"

const accountColumns = `
	id, email, password_hash, is_admin, email_verified,
	verification_token, (verification_expires at time zone 'utc'), (last_verification_sent at time zone 'utc'),
	reset_token, (reset_expires at time zone 'utc'),
	login_attempts, (lockout_until at time zone 'utc'),
	location, sport, level, phone, availability, (created_at at time zone 'utc')`

// =========================================================================
// Public Methods (satisfy the service.AccountStorage interface)
// =========================================================================

// Account is a read-only lookup by normalized email, using the pool directly.
func (s *Storage) Account(email domain.Email) (domain.Account, error) {
	return s.account(s.db, email)
}

// SaveAccount creates a new account row. Duplicate emails surface as a
// conflict error; the unique index on email is the uniqueness authority.
func (s *Storage) SaveAccount(account domain.Account) (domain.Account, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		account, err = s.saveAccount(tx, account)
		return err
	})
	return account, err
}

func (s *Storage) DeleteAccount(id domain.AccountId) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.deleteAccount(tx, id)
	})
}

// RegisterFailedLogin bumps the attempt counter and applies the lockout
// transition in the same statement, so two concurrent failures cannot both
// observe the pre-threshold count and skip the lockout.
func (s *Storage) RegisterFailedLogin(id domain.AccountId, threshold int, lockout time.Duration) (int, *time.Time, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var attempts int
	var lockedUntil *time.Time
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		attempts, lockedUntil, err = s.registerFailedLogin(tx, id, threshold, lockout)
		return err
	})
	return attempts, lockedUntil, err
}

func (s *Storage) ClearLoginFailures(id domain.AccountId) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.exec(tx, id,
			"UPDATE accounts SET login_attempts = 0, lockout_until = NULL WHERE id = $1")
	})
}

// MarkVerified flips the verified flag and clears the token fields in one
// update; a consumed token must not stay behind.
func (s *Storage) MarkVerified(id domain.AccountId) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.exec(tx, id,
			"UPDATE accounts SET email_verified = TRUE, verification_token = NULL, verification_expires = NULL WHERE id = $1")
	})
}

func (s *Storage) ClearVerificationToken(id domain.AccountId) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.exec(tx, id,
			"UPDATE accounts SET verification_token = NULL, verification_expires = NULL WHERE id = $1")
	})
}

func (s *Storage) RotateVerificationToken(id domain.AccountId, token string, expires, sent time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec(
			"UPDATE accounts SET verification_token = $2, verification_expires = $3, last_verification_sent = $4 WHERE id = $1",
			id, token, expires, sent)
		if err != nil {
			return fmt.Errorf("failed to rotate verification token: %w", err)
		}
		return requireRowAffected(result)
	})
}

func (s *Storage) SetResetToken(id domain.AccountId, token string, expires time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec(
			"UPDATE accounts SET reset_token = $2, reset_expires = $3 WHERE id = $1",
			id, token, expires)
		if err != nil {
			return fmt.Errorf("failed to set reset token: %w", err)
		}
		return requireRowAffected(result)
	})
}

func (s *Storage) ClearResetToken(id domain.AccountId) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.exec(tx, id,
			"UPDATE accounts SET reset_token = NULL, reset_expires = NULL WHERE id = $1")
	})
}

// ResetPassword matches the token and its validity window inside the UPDATE
// itself: the password swap, token clear and lockout reset all land only if
// the row still holds this exact unexpired token.
func (s *Storage) ResetPassword(id domain.AccountId, token string, now time.Time, newPassHash string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var matched bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec(`
			UPDATE accounts
			SET password_hash = $4,
			    reset_token = NULL,
			    reset_expires = NULL,
			    login_attempts = 0,
			    lockout_until = NULL
			WHERE id = $1 AND reset_token = $2 AND reset_expires > $3`,
			id, token, now, newPassHash)
		if err != nil {
			return fmt.Errorf("failed to reset password: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check affected rows for password reset: %w", err)
		}
		matched = rows > 0
		return nil
	})
	return matched, err
}

// =========================================================================
// Internal Methods (Core Database Logic)
// These methods accept a Querier and are transaction-agnostic.
// =========================================================================

func (s *Storage) account(q Querier, email domain.Email) (domain.Account, error) {
	var a domain.Account
	var verificationToken, resetToken sql.NullString
	var verificationExpires, lastSent, resetExpires, lockoutUntil sql.NullTime

	err := q.QueryRow("SELECT"+accountColumns+" FROM accounts WHERE email = $1", email).Scan(
		&a.Id, &a.Email, &a.PassHash, &a.Admin, &a.EmailVerified,
		&verificationToken, &verificationExpires, &lastSent,
		&resetToken, &resetExpires,
		&a.LoginAttempts, &lockoutUntil,
		&a.Profile.Location, &a.Profile.Sport, &a.Profile.Level, &a.Profile.Phone, &a.Profile.Availability,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, internal_errors.NotFound("Account not found", "")
		}
		return domain.Account{}, fmt.Errorf("failed to query account: %w", err)
	}

	a.VerificationToken = nullString(verificationToken)
	a.VerificationExpires = nullTime(verificationExpires)
	a.LastVerificationSent = nullTime(lastSent)
	a.ResetToken = nullString(resetToken)
	a.ResetExpires = nullTime(resetExpires)
	a.LockoutUntil = nullTime(lockoutUntil)

	return a, nil
}

func (s *Storage) saveAccount(q Querier, account domain.Account) (domain.Account, error) {
	err := q.QueryRow(`
		INSERT INTO accounts(
			email, password_hash, is_admin, email_verified,
			verification_token, verification_expires, last_verification_sent,
			location, sport, level, phone, availability)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, (created_at at time zone 'utc')`,
		account.Email, account.PassHash, account.Admin, account.EmailVerified,
		account.VerificationToken, account.VerificationExpires, account.LastVerificationSent,
		account.Profile.Location, account.Profile.Sport, account.Profile.Level,
		account.Profile.Phone, account.Profile.Availability,
	).Scan(&account.Id, &account.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return domain.Account{}, internal_errors.Conflict("Account with this email already exists", "")
		}
		return domain.Account{}, fmt.Errorf("failed to insert account: %w", err)
	}
	return account, nil
}

func (s *Storage) deleteAccount(q Querier, id domain.AccountId) error {
	result, err := q.Exec("DELETE FROM accounts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return requireRowAffected(result)
}

func (s *Storage) registerFailedLogin(q Querier, id domain.AccountId, threshold int, lockout time.Duration) (int, *time.Time, error) {
	var attempts int
	var lockedUntil sql.NullTime
	err := q.QueryRow(`
		UPDATE accounts
		SET login_attempts = login_attempts + 1,
		    lockout_until = CASE
				WHEN login_attempts + 1 >= $2 THEN now() + make_interval(secs => $3)
				ELSE lockout_until
			END
		WHERE id = $1
		RETURNING login_attempts, (lockout_until at time zone 'utc')`,
		id, threshold, lockout.Seconds(),
	).Scan(&attempts, &lockedUntil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil, internal_errors.NotFound("Account not found", "")
		}
		return 0, nil, fmt.Errorf("failed to register failed login: %w", err)
	}
	return attempts, nullTime(lockedUntil), nil
}

func (s *Storage) exec(q Querier, id domain.AccountId, query string) error {
	result, err := q.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return requireRowAffected(result)
}

func requireRowAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rows == 0 {
		return internal_errors.NotFound("Account not found", "")
	}
	return nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	return &v.Time
}
