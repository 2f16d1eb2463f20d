package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	configDir = ".homeplanner"
	tokenFile = "token"

	// configDirEnv overrides the config directory.
	configDirEnv = "PLANNER_CONFIG_DIR"
)

// TokenData holds the session token and the server it belongs to.
type TokenData struct {
	Token  string `json:"token"`
	Server string `json:"server"`
	Label  string `json:"label,omitempty"`
}

func configDirPath() (string, error) {
	if dir := os.Getenv(configDirEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, configDir), nil
}

func ensureConfigDir() (string, error) {
	dir, err := configDirPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("cannot create config directory %s: %w", dir, err)
	}
	return dir, nil
}

// SaveToken persists the token to ~/.homeplanner/token with 0600 permissions.
func SaveToken(data TokenData) error {
	dir, err := ensureConfigDir()
	if err != nil {
		return err
	}

	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("cannot marshal token data: %w", err)
	}

	path := filepath.Join(dir, tokenFile)
	if err := os.WriteFile(path, b, 0600); err != nil {
		return fmt.Errorf("cannot write token file %s: %w", path, err)
	}
	return nil
}

// LoadToken reads the stored token from ~/.homeplanner/token.
func LoadToken() (TokenData, error) {
	dir, err := configDirPath()
	if err != nil {
		return TokenData{}, err
	}

	path := filepath.Join(dir, tokenFile)
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return TokenData{}, fmt.Errorf("not logged in. Run 'planner login' first")
		}
		return TokenData{}, fmt.Errorf("cannot read token file: %w", err)
	}

	var data TokenData
	if err := json.Unmarshal(b, &data); err != nil {
		return TokenData{}, fmt.Errorf("corrupt token file: %w", err)
	}

	if data.Token == "" {
		return TokenData{}, fmt.Errorf("empty token. Run 'planner login' to re-authenticate")
	}

	return data, nil
}

// RemoveToken deletes the stored token. A missing file is not an error.
func RemoveToken() error {
	dir, err := configDirPath()
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(dir, tokenFile)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("cannot remove token file: %w", err)
	}
	return nil
}
