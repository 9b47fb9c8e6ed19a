// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"

	"github.com/dalemusser/dojo/internal/app/system/inputval"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for Dojo.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: api_base_url, token_path, etc.
//   - Environment variables: DOJO_API_BASE_URL, DOJO_TOKEN_PATH, etc.
//   - Command-line flags: --api_base_url, --token_path, etc.
var appConfigKeys = []config.AppKey{
	{Name: "api_base_url", Default: "http://127.0.0.1:8000", Desc: "Base URL of the Dojo API"},

	// Token storage
	{Name: "token_path", Default: "~/.dojo/token", Desc: "File that stores the session token"},
	{Name: "token_hash_key", Default: "", Desc: "Hash key for the token file (blank: generated key file)"},
	{Name: "token_block_key", Default: "", Desc: "Block key for the token file (optional)"},

	// Timeouts
	{Name: "request_timeout", Default: "0s", Desc: "Per-request timeout (0 disables)"},
	{Name: "login_timeout", Default: "0s", Desc: "Login request timeout (0 disables)"},

	// Logging
	{Name: "shell_log_level", Default: "warn", Desc: "Log level for the dojo shell (debug, info, warn, error)"},

	// Behavior
	{Name: "refresh_history_on_create", Default: false, Desc: "Reload challenge history after creating a challenge"},
	{Name: "feedback_auth", Default: false, Desc: "Send the bearer token when fetching feedback"},

	// Fake API
	{Name: "fake_addr", Default: ":8000", Desc: "Listen address for dojofake"},
	{Name: "fake_seed", Default: true, Desc: "Load demo data into dojofake"},
	{Name: "fake_token_key", Default: "", Desc: "Signing key for dojofake tokens (blank: random per run)"},
}

// LoadConfig loads WAFFLE core config and Dojo's app config.
//
// Precedence is flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "DOJO", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		APIBaseURL: appValues.String("api_base_url"),

		TokenPath:     appValues.String("token_path"),
		TokenHashKey:  appValues.String("token_hash_key"),
		TokenBlockKey: appValues.String("token_block_key"),

		RequestTimeout: appValues.Duration("request_timeout", 0),
		LoginTimeout:   appValues.Duration("login_timeout", 0),

		ShellLogLevel: appValues.String("shell_log_level"),

		RefreshHistoryOnCreate: appValues.Bool("refresh_history_on_create"),
		FeedbackAuth:           appValues.Bool("feedback_auth"),

		FakeAddr:     appValues.String("fake_addr"),
		FakeSeed:     appValues.Bool("fake_seed"),
		FakeTokenKey: appValues.String("fake_token_key"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(appCfg AppConfig, logger *zap.Logger) error {
	if !inputval.IsValidHTTPURL(appCfg.APIBaseURL) {
		logger.Error("invalid api_base_url", zap.String("api_base_url", appCfg.APIBaseURL))
		return fmt.Errorf("api_base_url must be an absolute http(s) URL, got %q", appCfg.APIBaseURL)
	}
	if appCfg.TokenPath == "" {
		return fmt.Errorf("token_path must be set")
	}
	if appCfg.RequestTimeout < 0 || appCfg.LoginTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	switch n := len(appCfg.TokenBlockKey); n {
	case 0, 16, 24, 32:
	default:
		return fmt.Errorf("token_block_key must be 16, 24 or 32 bytes, got %d", n)
	}
	if appCfg.TokenBlockKey != "" && appCfg.TokenHashKey == "" {
		// Without a hash key both keys come from the generated key file.
		return fmt.Errorf("token_block_key requires token_hash_key")
	}
	return nil
}
