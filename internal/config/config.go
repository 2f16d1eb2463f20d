// Package config loads server configuration from an HCL file, a .env file
// and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/joho/godotenv"

	"github.com/homeplanner/homeplanner/internal/auth"
)

const (
	DefaultPath       = "planner.hcl"
	defaultListenAddr = ":8080"
	defaultAPIURL     = "http://localhost:8000"
	defaultAPITimeout = 30 * time.Second
)

// Config is the resolved server configuration.
type Config struct {
	ListenAddr  string         `validate:"required"`
	Location    *time.Location `validate:"required"`
	CORSOrigins []string

	APIBaseURL string        `validate:"required,url"`
	APIToken   string        // service token; empty forwards the caller's token
	APITimeout time.Duration `validate:"gt=0"`

	JWTSecret   string `validate:"required"`
	DatabaseURL string

	AccessCodes []AccessCode `validate:"dive"`

	RollbarToken string
	Environment  string `validate:"required"`
}

// AccessCode is a configured login code.
type AccessCode struct {
	Label  string `validate:"required"`
	Role   string `validate:"oneof=admin member"`
	Hash   string `validate:"required"`
	Active bool
}

// AuthCodes converts the configured codes for the auth package.
func (c *Config) AuthCodes() []auth.AccessCode {
	codes := make([]auth.AccessCode, 0, len(c.AccessCodes))
	for _, ac := range c.AccessCodes {
		codes = append(codes, auth.AccessCode{
			Label:  ac.Label,
			Role:   auth.Role(ac.Role),
			Hash:   ac.Hash,
			Active: ac.Active,
		})
	}
	return codes
}

// fileConfig mirrors the HCL layout:
//
//	listen_addr  = ":8080"
//	timezone     = "America/Chicago"
//	cors_origins = ["http://localhost:5173"]
//
//	upstream {
//	  base_url = "http://localhost:8000"
//	  timeout  = "30s"
//	}
//
//	access_code "Parent" {
//	  role = "admin"
//	  hash = "$2a$10$..."
//	}
//
//	rollbar {
//	  token       = "..."
//	  environment = "production"
//	}
type fileConfig struct {
	ListenAddr  string            `hcl:"listen_addr,optional"`
	Timezone    string            `hcl:"timezone,optional"`
	CORSOrigins []string          `hcl:"cors_origins,optional"`
	Upstream    *upstreamBlock    `hcl:"upstream,block"`
	AccessCodes []accessCodeBlock `hcl:"access_code,block"`
	Rollbar     *rollbarBlock     `hcl:"rollbar,block"`
}

type upstreamBlock struct {
	BaseURL string `hcl:"base_url"`
	Token   string `hcl:"token,optional"`
	Timeout string `hcl:"timeout,optional"`
}

type accessCodeBlock struct {
	Label  string `hcl:"label,label"`
	Role   string `hcl:"role"`
	Hash   string `hcl:"hash"`
	Active *bool  `hcl:"active,optional"`
}

type rollbarBlock struct {
	Token       string `hcl:"token"`
	Environment string `hcl:"environment,optional"`
}

// Load reads the config file at path (missing is fine), then .env, then the
// environment, and validates the result.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	fc := &fileConfig{}
	src, err := os.ReadFile(path)
	switch {
	case err == nil:
		if fc, err = parse(src, path); err != nil {
			return nil, err
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg, err := resolve(fc, os.Getenv)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parse decodes an HCL config document.
func parse(src []byte, filename string) (*fileConfig, error) {
	var fc fileConfig
	if err := hclsimple.Decode(filename, src, nil, &fc); err != nil {
		if diags, ok := err.(hcl.Diagnostics); ok {
			for _, diag := range diags {
				if diag.Severity == hcl.DiagError {
					return nil, fmt.Errorf("config error at %s: %s", diag.Subject, diag.Detail)
				}
			}
		}
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &fc, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("checking %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func resolve(fc *fileConfig, getenv func(string) string) (*Config, error) {
	env := func(key, fallback string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		ListenAddr:  env("LISTEN_ADDR", or(fc.ListenAddr, defaultListenAddr)),
		CORSOrigins: fc.CORSOrigins,
		APIBaseURL:  defaultAPIURL,
		APITimeout:  defaultAPITimeout,
		JWTSecret:   getenv("JWT_SECRET"),
		DatabaseURL: getenv("DATABASE_URL"),
		Environment: env("PLANNER_ENV", "development"),
	}

	if origins := getenv("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = splitList(origins)
	}

	if fc.Upstream != nil {
		cfg.APIBaseURL = fc.Upstream.BaseURL
		cfg.APIToken = fc.Upstream.Token
		if fc.Upstream.Timeout != "" {
			d, err := time.ParseDuration(fc.Upstream.Timeout)
			if err != nil {
				return nil, fmt.Errorf("parsing upstream timeout: %w", err)
			}
			cfg.APITimeout = d
		}
	}
	cfg.APIBaseURL = env("PLANNER_API_URL", cfg.APIBaseURL)
	cfg.APIToken = env("PLANNER_API_TOKEN", cfg.APIToken)

	tz := env("PLANNER_TZ", fc.Timezone)
	if tz == "" {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("loading timezone %q: %w", tz, err)
		}
		cfg.Location = loc
	}

	for _, b := range fc.AccessCodes {
		active := true
		if b.Active != nil {
			active = *b.Active
		}
		cfg.AccessCodes = append(cfg.AccessCodes, AccessCode{
			Label:  b.Label,
			Role:   b.Role,
			Hash:   b.Hash,
			Active: active,
		})
	}

	if fc.Rollbar != nil {
		cfg.RollbarToken = fc.Rollbar.Token
		if fc.Rollbar.Environment != "" {
			cfg.Environment = fc.Rollbar.Environment
		}
	}
	cfg.RollbarToken = env("ROLLBAR_TOKEN", cfg.RollbarToken)

	return cfg, nil
}

// Validate checks a resolved config.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("validating config: %w", err)
	}
	return nil
}

func or(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
