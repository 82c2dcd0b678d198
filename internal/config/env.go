package config

import "os"

// parseEnv overlays c with environment variables. Only set, non-empty
// variables override; the client credentials ones match what a .env file
// next to the binary carries during development.
func (c *Config) parseEnv() {
	if v := os.Getenv("GOOGLE_CLIENT_ID"); v != "" {
		c.Google.ClientID = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_SECRET"); v != "" {
		c.Google.ClientSecret = v
	}
	if v := os.Getenv("LVSK_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("LVSK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LVSK_LOG_FILE"); v != "" {
		c.Log.File = v
	}
}
