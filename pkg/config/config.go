// Package config loads the workspace configuration from a YAML file with
// environment and flag overrides layered on top, in that order.
package config

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Addr returns host:port for the HTTP server.
func (c *Config) Addr() string {
	addr := c.Server.Address
	if addr == "" {
		addr = "0.0.0.0"
	}
	p := c.Server.Port
	if p == 0 {
		p = 8080
	}
	return fmt.Sprintf("%s:%d", addr, p)
}

// Load reads and parses the YAML config at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Flags holds parsed command-line flag values and which were set.
type Flags struct {
	Addr   string
	DB     string
	Config string
	Set    map[string]bool
}

// ParseFlags parses command-line flags and returns them as a Flags struct.
func ParseFlags() Flags {
	addrPtr := flag.String("addr", ":8080", "HTTP listen address")
	dbPtr := flag.String("db", "./.workspace", "Pebble DB path")
	cfgPtr := flag.String("config", "./config.yaml", "Path to config file")
	flag.Parse()
	setFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	return Flags{Addr: *addrPtr, DB: *dbPtr, Config: *cfgPtr, Set: setFlags}
}

// ResolveConfigPath decides the config file path using the flag-provided
// value and TRACKNAMIC_CONFIG when the flag was not set.
func ResolveConfigPath(flagPath string, flagSet bool) string {
	if flagSet {
		return flagPath
	}
	if p := os.Getenv("TRACKNAMIC_CONFIG"); p != "" {
		return p
	}
	return flagPath
}

// ApplyEnv layers environment overrides onto cfg and reports whether any
// env var was used.
func ApplyEnv(cfg *Config) bool {
	envUsed := false
	parseList := func(v string) []string {
		if v == "" {
			return nil
		}
		parts := []string{}
		for _, p := range strings.Split(v, ",") {
			if s := strings.TrimSpace(p); s != "" {
				parts = append(parts, s)
			}
		}
		return parts
	}

	if v := os.Getenv("TRACKNAMIC_ADDR"); v != "" {
		envUsed = true
		if h, p, err := net.SplitHostPort(v); err == nil {
			cfg.Server.Address = h
			if pi, err := strconv.Atoi(p); err == nil {
				cfg.Server.Port = pi
			}
		} else {
			cfg.Server.Address = v
		}
	} else {
		if host := os.Getenv("TRACKNAMIC_ADDRESS"); host != "" {
			envUsed = true
			cfg.Server.Address = host
		}
		if port := os.Getenv("TRACKNAMIC_PORT"); port != "" {
			envUsed = true
			if pi, err := strconv.Atoi(port); err == nil {
				cfg.Server.Port = pi
			}
		}
	}

	if v := os.Getenv("TRACKNAMIC_DB_PATH"); v != "" {
		envUsed = true
		cfg.Server.DBPath = v
	}
	if v := os.Getenv("TRACKNAMIC_CORS_ORIGINS"); v != "" {
		envUsed = true
		cfg.Security.CORS.AllowedOrigins = parseList(v)
	}
	if v := os.Getenv("TRACKNAMIC_RATE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			envUsed = true
			cfg.Security.RateLimit.RPS = f
		}
	}
	if v := os.Getenv("TRACKNAMIC_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.Security.RateLimit.Burst = n
		}
	}
	if v := os.Getenv("TRACKNAMIC_ALLOWED_DOMAINS"); v != "" {
		envUsed = true
		cfg.Security.AllowedDomains = parseList(v)
	}
	if v := os.Getenv("TRACKNAMIC_LOG_LEVEL"); v != "" {
		envUsed = true
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TRACKNAMIC_SANDBOX_MODEL"); v != "" {
		envUsed = true
		cfg.Sandbox.Model = v
	}
	// GEMINI_API_KEY is the conventional provider variable; the prefixed
	// form wins when both are set.
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		envUsed = true
		cfg.Sandbox.APIKey = v
	}
	if v := os.Getenv("TRACKNAMIC_GEMINI_API_KEY"); v != "" {
		envUsed = true
		cfg.Sandbox.APIKey = v
	}
	if v := os.Getenv("TRACKNAMIC_UPSTREAM_URL"); v != "" {
		envUsed = true
		cfg.Upstream.URL = v
	}
	if v := os.Getenv("TRACKNAMIC_UPSTREAM_API_KEY"); v != "" {
		envUsed = true
		cfg.Upstream.APIKey = v
	}
	if v := os.Getenv("TRACKNAMIC_REFRESH_CRON"); v != "" {
		envUsed = true
		cfg.Refresh.Enabled = true
		cfg.Refresh.Cron = v
	}
	if c := os.Getenv("TRACKNAMIC_TLS_CERT"); c != "" {
		envUsed = true
		cfg.Server.TLS.CertFile = c
	}
	if k := os.Getenv("TRACKNAMIC_TLS_KEY"); k != "" {
		envUsed = true
		cfg.Server.TLS.KeyFile = k
	}
	return envUsed
}

// LoadEffective builds the effective config: file values first, env
// overrides second, explicit flags last. A missing config file is fine
// unless --config was passed explicitly.
func LoadEffective(flags Flags) (*Config, error) {
	cfgPath := ResolveConfigPath(flags.Config, flags.Set["config"])
	cfg, err := Load(cfgPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		if flags.Set["config"] {
			return nil, fmt.Errorf("config file %s not found", flags.Config)
		}
		cfg = &Config{}
	}

	ApplyEnv(cfg)

	if flags.Set["addr"] {
		if h, p, err := net.SplitHostPort(flags.Addr); err == nil {
			cfg.Server.Address = h
			if pi, err := strconv.Atoi(p); err == nil {
				cfg.Server.Port = pi
			}
		} else {
			cfg.Server.Address = flags.Addr
		}
	}
	if flags.Set["db"] {
		cfg.Server.DBPath = flags.DB
	}
	if cfg.Server.DBPath == "" {
		cfg.Server.DBPath = flags.DB
	}
	return cfg, nil
}
