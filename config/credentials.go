package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Credentials holds the bearer token issued by the backend at login.
// Stored as user-only JSON in the data directory; the token is short-lived
// and invalidated server-side on logout or expiry.
type Credentials struct {
	AccessToken string `json:"access_token"`
	UserID      int64  `json:"user_id"`
	Username    string `json:"username,omitempty"`
}

func credentialsPath(dataDir string) string {
	return filepath.Join(dataDir, "credentials.json")
}

// LoadCredentials loads stored credentials from the data directory.
// A missing file is not an error: it returns empty credentials (logged out).
func LoadCredentials(dataDir string) (Credentials, error) {
	var creds Credentials

	data, err := os.ReadFile(credentialsPath(dataDir))
	if os.IsNotExist(err) {
		return creds, nil
	}
	if err != nil {
		return creds, fmt.Errorf("failed to read credentials file: %w", err)
	}

	if err := json.Unmarshal(data, &creds); err != nil {
		return creds, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	return creds, nil
}

// SaveCredentials writes credentials to disk (0600 - contains the bearer token)
func SaveCredentials(dataDir string, creds Credentials) error {
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := os.WriteFile(credentialsPath(dataDir), data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}

	return nil
}

// ClearCredentials removes stored credentials. Missing file is a no-op.
func ClearCredentials(dataDir string) error {
	err := os.Remove(credentialsPath(dataDir))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// IsLoggedIn reports whether a bearer token is present on disk.
func (c Credentials) IsLoggedIn() bool {
	return c.AccessToken != ""
}
