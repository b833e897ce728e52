package commands

import (
	"errors"
	"fmt"
	"os"

	"oralia-konnector/lib/configutil"
)

const (
	envLogin    = "ORALIA_LOGIN"
	envPassword = "ORALIA_PASSWORD"
)

type Config struct {
	Login             string  `json:"login"`
	Password          string  `json:"password"`
	BaseUrl           string  `json:"base_url"`
	Database          string  `json:"database"`
	DownloadDir       string  `json:"download_dir"`
	FirstAccountOnly  *bool   `json:"first_account_only"`
	BypassCloudflare  *bool   `json:"bypass_cloudflare"`
	RequestsPerSecond float64 `json:"requests_per_second"`
}

// loadConfig reads the config file, then lets the environment override the
// credentials. A missing file is fine as long as the environment has them.
func loadConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if login := os.Getenv(envLogin); login != "" {
		cfg.Login = login
	}
	if password := os.Getenv(envPassword); password != "" {
		cfg.Password = password
	}
	if cfg.Database == "" {
		cfg.Database = "bills.db"
	}
	return cfg, nil
}

func (c Config) validateCredentials() error {
	if c.Login == "" || c.Password == "" {
		return fmt.Errorf("login and password are required (config file or %s/%s)", envLogin, envPassword)
	}
	return nil
}

func (c Config) bypassCloudflare() bool {
	if c.BypassCloudflare == nil {
		return true
	}
	return *c.BypassCloudflare
}

func (c Config) firstAccountOnly() bool {
	return c.FirstAccountOnly != nil && *c.FirstAccountOnly
}
