package app

import (
	"fmt"
	"os"

	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/config"
)

// validateConfig performs quick, fail-fast validation of the effective
// configuration before starting long-running services. Keep checks light
// and focused so callers can surface user-friendly errors.
func validateConfig(cfg *config.Config) error {
	if cfg.Server.DBPath == "" {
		return fmt.Errorf("database path is empty: set --db flag, TRACKNAMIC_DB_PATH env, or server.db_path in config")
	}

	// TLS cert/key presence check if one is set
	cert := cfg.Server.TLS.CertFile
	key := cfg.Server.TLS.KeyFile
	if (cert != "" && key == "") || (cert == "" && key != "") {
		return fmt.Errorf("incomplete TLS configuration: both server.tls.cert_file and server.tls.key_file must be set")
	}
	if cert != "" {
		if _, err := os.Stat(cert); err != nil {
			return fmt.Errorf("tls cert file not accessible: %w", err)
		}
		if _, err := os.Stat(key); err != nil {
			return fmt.Errorf("tls key file not accessible: %w", err)
		}
	}

	if cfg.Upstream.URL == "" && cfg.Upstream.APIKey != "" {
		return fmt.Errorf("upstream.api_key is set but upstream.url is empty")
	}
	if cfg.Refresh.Enabled && cfg.Upstream.URL == "" {
		return fmt.Errorf("refresh is enabled but no upstream.url is configured")
	}
	return nil
}
