// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds client-specific configuration for Dojo.
//
// These values come from environment variables (DOJO_*), configuration
// files, or command-line flags, loaded in LoadConfig. WAFFLE's CoreConfig
// still supplies the logging level and format.
type AppConfig struct {
	// API endpoint
	APIBaseURL string // e.g. http://127.0.0.1:8000

	// Persisted session token
	TokenPath     string // file holding the encoded token (~ is expanded)
	TokenHashKey  string // securecookie hash key; blank means a generated key file next to TokenPath
	TokenBlockKey string // securecookie block key; optional

	// Client-side timeouts. Zero disables them.
	RequestTimeout time.Duration
	LoginTimeout   time.Duration

	// Shell logging. WAFFLE core owns log_level, so the client has its own key.
	ShellLogLevel string

	// Behavior switches
	RefreshHistoryOnCreate bool // reload challenge history after creating a challenge
	FeedbackAuth           bool // send the bearer token on the feedback endpoint

	// Local fake API (cmd/dojofake only)
	FakeAddr     string
	FakeSeed     bool
	FakeTokenKey string
}
