package domain

import "time"

type AccountId = int64
type Email = string

// Account is the persistent user record. Secret material (PassHash, tokens)
// never leaves the service layer; Public() is the only shape handlers return.
type Account struct {
	Id            AccountId
	Email         Email
	PassHash      string
	Admin         bool
	EmailVerified bool

	VerificationToken   *string
	VerificationExpires *time.Time
	LastVerificationSent *time.Time

	ResetToken   *string
	ResetExpires *time.Time

	LoginAttempts int
	LockoutUntil  *time.Time

	Profile   Profile
	CreatedAt time.Time
}

// Profile holds the free-text matchmaking attributes. All fields are
// sanitized before they reach storage.
type Profile struct {
	Location     string `json:"location"`
	Sport        string `json:"sport"`
	Level        string `json:"level"`
	Phone        string `json:"phone"`
	Availability string `json:"availability"`
}

// PublicAccount is the caller-facing projection of an Account.
type PublicAccount struct {
	Id            AccountId `json:"id"`
	Email         Email     `json:"email"`
	EmailVerified bool      `json:"emailVerified"`
	Admin         bool      `json:"admin"`
	Profile       Profile   `json:"profile"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (a Account) Public() PublicAccount {
	return PublicAccount{
		Id:            a.Id,
		Email:         a.Email,
		EmailVerified: a.EmailVerified,
		Admin:         a.Admin,
		Profile:       a.Profile,
		CreatedAt:     a.CreatedAt,
	}
}

// Locked reports whether the account is under a login lockout at the given time.
func (a Account) Locked(now time.Time) bool {
	return a.LockoutUntil != nil && a.LockoutUntil.After(now)
}
