package email

import (
	"strings"
	"testing"

	"github.com/sportlink-dev/sportlink/internal/config"
	"github.com/stretchr/testify/assert"
)

func testNotifier() *Notifier {
	return New(&config.Email{
		SMTPServer: "smtp.example.com",
		SMTPPort:   587,
		Username:   "noreply@sportlink.app",
		Password:   "secret",
		SenderName: "sportlink",
	}, "https://sportlink.app")
}

func TestBuildMessage(t *testing.T) {
	n := testNotifier()

	msg := string(n.buildMessage("player@example.com", "Confirm your sportlink account", "hello"))

	assert.Contains(t, msg, "To: player@example.com\r\n")
	assert.Contains(t, msg, "From: sportlink <noreply@sportlink.app>\r\n")
	assert.Contains(t, msg, "Subject: Confirm your sportlink account\r\n")
	assert.Contains(t, msg, "Message-ID: <")
	assert.Contains(t, msg, "@sportlink.app>\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\nhello"), "body must follow the blank line")
}

func TestBuildMessageEncodesNonASCII(t *testing.T) {
	n := testNotifier()
	n.config.SenderName = "spörtlink"

	msg := string(n.buildMessage("player@example.com", "Héllo", "body"))

	assert.Contains(t, msg, "=?utf-8?q?", "non-ascii headers must be Q-encoded")
	assert.NotContains(t, msg, "Subject: Héllo")
}

func TestGenerateMessageID(t *testing.T) {
	a := generateMessageID("sportlink.app")
	b := generateMessageID("sportlink.app")

	assert.True(t, strings.HasPrefix(a, "<"))
	assert.True(t, strings.HasSuffix(a, "@sportlink.app>"))
	assert.NotEqual(t, a, b)
}
