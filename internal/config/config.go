package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

// Public holds non-secret knobs. Durations are declared in explicit units so
// the yaml stays readable; use the accessor methods in code.
type Public struct {
	Port          int    `yaml:"port"`
	LogLevel      string `yaml:"log_level"`
	LogJSON       bool   `yaml:"log_json"`
	SecureCookies bool   `yaml:"secure_cookies"`

	// Base URL embedded in verification/reset links sent by email.
	AppBaseURL string `yaml:"app_base_url"`

	BcryptCost int `yaml:"bcrypt_cost"`

	SessionTTLHours       int `yaml:"session_ttl_hours"`
	VerificationTTLHours  int `yaml:"verification_ttl_hours"`
	ResetTTLMinutes       int `yaml:"reset_ttl_minutes"`
	LockoutThreshold      int `yaml:"lockout_threshold"`
	LockoutMinutes        int `yaml:"lockout_minutes"`
	ResendCooldownMinutes int `yaml:"resend_cooldown_minutes"`

	RateLimits RateLimits `yaml:"rate_limits"`
}

// RateLimit is one fixed window: at most Limit requests per WindowMinutes.
type RateLimit struct {
	Limit         int `yaml:"limit"`
	WindowMinutes int `yaml:"window_minutes"`
}

func (r RateLimit) Window() time.Duration {
	return time.Duration(r.WindowMinutes) * time.Minute
}

type RateLimits struct {
	Register RateLimit `yaml:"register"`
	Login    RateLimit `yaml:"login"`
	Verify   RateLimit `yaml:"verify"`
	Resend   RateLimit `yaml:"resend"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

type Email struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	SenderName string `yaml:"sender_name"`
	Timeout    int    `yaml:"timeout"`
}

type Private struct {
	JwtKey string `yaml:"jwt_key"`
	Pg     Pg     `yaml:"pg"`
	Email  Email  `yaml:"email"`
}

func (c *Config) JwtKey() string {
	return c.Private.JwtKey
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Public.SessionTTLHours) * time.Hour
}

func (c *Config) VerificationTTL() time.Duration {
	return time.Duration(c.Public.VerificationTTLHours) * time.Hour
}

func (c *Config) ResetTTL() time.Duration {
	return time.Duration(c.Public.ResetTTLMinutes) * time.Minute
}

func (c *Config) LockoutDuration() time.Duration {
	return time.Duration(c.Public.LockoutMinutes) * time.Minute
}

func (c *Config) ResendCooldown() time.Duration {
	return time.Duration(c.Public.ResendCooldownMinutes) * time.Minute
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)

	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file")
	}
}

func (c *Config) validate() {
	required := map[string]bool{
		"jwt_key":                c.Private.JwtKey != "",
		"pg.host":                c.Private.Pg.Host != "",
		"pg.dbname":              c.Private.Pg.Dbname != "",
		"bcrypt_cost":            c.Public.BcryptCost > 0,
		"session_ttl_hours":      c.Public.SessionTTLHours > 0,
		"verification_ttl_hours": c.Public.VerificationTTLHours > 0,
		"reset_ttl_minutes":      c.Public.ResetTTLMinutes > 0,
		"lockout_threshold":      c.Public.LockoutThreshold > 0,
		"lockout_minutes":        c.Public.LockoutMinutes > 0,
	}
	for field, ok := range required {
		if !ok {
			panic(fmt.Sprintf("config field missing or invalid: %s", field))
		}
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{public, private}
	cfg.validate()
	return cfg
}
