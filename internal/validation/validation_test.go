package validation

import (
	"strings"
	"testing"

	"github.com/sportlink-dev/sportlink/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "player@example.com", NormalizeEmail("  Player@Example.COM  "))

	// idempotent
	once := NormalizeEmail("  Player@Example.COM  ")
	assert.Equal(t, once, NormalizeEmail(once))
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr string
	}{
		{"valid", "player@example.com", ""},
		{"valid with plus tag", "player+tennis@example.com", ""},
		{"empty", "", "required"},
		{"no at sign", "playerexample.com", "invalid"},
		{"display name form rejected", "Player <player@example.com>", "invalid"},
		{"spaces inside", "pla yer@example.com", "invalid"},
		{"too long", strings.Repeat("a", 250) + "@example.com", "at most"},
		{"disposable domain", "player@mailinator.com", "Disposable"},
		{"disposable domain 2", "player@yopmail.com", "Disposable"},
		{"typo domain suggests fix", "player@gmail.co", "gmail.com"},
		{"typo domain 2", "player@hotmial.com", "hotmail.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRegistrationPassword(t *testing.T) {
	assert.NoError(t, ValidateRegistrationPassword("zxcvb6"))
	assert.NoError(t, ValidateRegistrationPassword("correct horse battery"))

	assert.Error(t, ValidateRegistrationPassword(""))
	assert.Error(t, ValidateRegistrationPassword("short"))
	assert.Error(t, ValidateRegistrationPassword(strings.Repeat("x", 129)))
	assert.Error(t, ValidateRegistrationPassword("password"))
	assert.Error(t, ValidateRegistrationPassword("PASSWORD"), "denylist must be case insensitive")
	assert.Error(t, ValidateRegistrationPassword("qwerty123"))
}

func TestValidateResetPassword(t *testing.T) {
	assert.NoError(t, ValidateResetPassword("NewPass123"))

	assert.Error(t, ValidateResetPassword("Np1"))
	assert.Error(t, ValidateResetPassword("alllowercase1"))
	assert.Error(t, ValidateResetPassword("ALLUPPERCASE1"))
	assert.Error(t, ValidateResetPassword("NoDigitsHere"))

	// valid for registration, too weak for reset
	assert.NoError(t, ValidateRegistrationPassword("weakpass"))
	assert.Error(t, ValidateResetPassword("weakpass"))
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "Lyon", SanitizeText("  Lyon  "))
	assert.Equal(t, "Lyon", SanitizeText("Lyon <script>alert(1)</script>"))
	assert.Equal(t, "bold move", SanitizeText("<b>bold</b> move"))
	assert.Equal(t, "", SanitizeText("<img src=x onerror=alert(1)>"))

	long := strings.Repeat("a", 300)
	assert.Len(t, SanitizeText(long), 255)
}

func TestSanitizeProfile(t *testing.T) {
	p := SanitizeProfile(domain.Profile{
		Location:     " Lyon ",
		Sport:        "tennis<script>x</script>",
		Level:        "intermediate",
		Phone:        "<i>+33 6 00 00 00 00</i>",
		Availability: "weekends",
	})

	assert.Equal(t, "Lyon", p.Location)
	assert.Equal(t, "tennis", p.Sport)
	assert.Equal(t, "intermediate", p.Level)
	assert.Equal(t, "+33 6 00 00 00 00", p.Phone)
	assert.Equal(t, "weekends", p.Availability)
}
