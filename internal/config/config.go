package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds credentials and client settings for graphctl and live fixtures.
type Config struct {
	LogLevel string

	// Graph API
	GraphBaseURL      string
	GraphAPIVersion   string
	MessengerVersion  string
	HTTPTimeout       time.Duration
	UserAgent         string
	AppSecretProof    bool
	MetricsEnabled    bool
	AppID             string
	AppSecret         string
	AccessToken       string
	PageAccessToken   string
	TestUserLocale    string
	TestUserName      string
	TestUserInstalled bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		LogLevel: getEnv("LOG_LEVEL", "info"),

		GraphBaseURL:      strings.TrimRight(getEnv("GRAPH_BASE_URL", "https://graph.facebook.com"), "/"),
		GraphAPIVersion:   strings.Trim(getEnv("GRAPH_API_VERSION", ""), "/"),
		MessengerVersion:  strings.Trim(getEnv("MESSENGER_API_VERSION", "v2.6"), "/"),
		HTTPTimeout:       getEnvAsDuration("GRAPH_HTTP_TIMEOUT", 10*time.Second),
		UserAgent:         getEnv("GRAPH_USER_AGENT", ""),
		AppSecretProof:    getEnvAsBool("GRAPH_APPSECRET_PROOF", false),
		MetricsEnabled:    getEnvAsBool("METRICS_ENABLED", false),
		AppID:             getEnv("FB_APP_ID", ""),
		AppSecret:         getEnv("FB_APP_SECRET", ""),
		AccessToken:       getEnv("FB_ACCESS_TOKEN", ""),
		PageAccessToken:   getEnv("FB_PAGE_ACCESS_TOKEN", ""),
		TestUserLocale:    getEnv("FB_TEST_USER_LOCALE", "en_US"),
		TestUserName:      getEnv("FB_TEST_USER_NAME", "John Smith"),
		TestUserInstalled: getEnvAsBool("FB_TEST_USER_INSTALLED", true),
	}
}

// HasAppCredentials reports whether both halves of the app credential are set.
func (c *Config) HasAppCredentials() bool {
	return c.AppID != "" && c.AppSecret != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	if secs, err := strconv.Atoi(valueStr); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
