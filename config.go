package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"crewboard/audiofilestore"
	"crewboard/auth"
	"crewboard/model"

	"gopkg.in/yaml.v3"
)

type CrewboardConfig struct {
	HttpListenAddr string
	DB             string // sqlite file path, or a postgres:// URL
	Uploads        UploadsConfig
	Session        SessionConfig
	LogLevel       string
}

type UploadsConfig struct {
	Dir               string
	AllowedExtensions []string
	MaxBytes          int64 // 0: unlimited
}

type SessionConfig struct {
	SecretKey    string // empty: random per process, sessions die on restart
	TTL          time.Duration
	CookieSecure bool
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *CrewboardConfig {
	return &CrewboardConfig{
		HttpListenAddr: ":8080",
		DB:             "crewboard.db",
		Uploads: UploadsConfig{
			Dir:               model.DefaultUploadDir(),
			AllowedExtensions: audiofilestore.DefaultAllowedExtensions,
		},
		Session: SessionConfig{
			TTL: auth.DefaultSessionTTL,
		},
		LogLevel: "info",
	}
}

// LoadConfig reads the yaml file at path (if path is not empty) over the
// defaults, then applies CREWBOARD_* environment variables.
func LoadConfig(path string) (*CrewboardConfig, error) {
	c := DefaultConfig()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("LoadConfig: %w", err)
		}
		defer f.Close()

		if err := c.Read(f); err != nil {
			return nil, fmt.Errorf("LoadConfig: %s: %w", path, err)
		}
	}

	if err := c.applyEnv(os.LookupEnv); err != nil {
		return nil, fmt.Errorf("LoadConfig: %w", err)
	}

	return c, nil
}

func (c *CrewboardConfig) Read(src io.Reader) error {
	err := yaml.NewDecoder(src).Decode(c)
	if errors.Is(err, io.EOF) { // empty file
		return nil
	}
	return err
}

func (c *CrewboardConfig) Write(dst io.Writer) error {
	return yaml.NewEncoder(dst).Encode(&c)
}

// environment variables overriding the config file
const (
	EnvListenAddr        = "CREWBOARD_LISTEN"
	EnvDB                = "CREWBOARD_DB"
	EnvUploadDir         = "CREWBOARD_UPLOAD_DIR"
	EnvAllowedExtensions = "CREWBOARD_ALLOWED_EXTENSIONS"
	EnvMaxUploadBytes    = "CREWBOARD_MAX_UPLOAD_BYTES"
	EnvSecretKey         = "CREWBOARD_SECRET_KEY"
	EnvSessionTTL        = "CREWBOARD_SESSION_TTL"
	EnvCookieSecure      = "CREWBOARD_COOKIE_SECURE"
	EnvLogLevel          = "CREWBOARD_LOG_LEVEL"
)

func (c *CrewboardConfig) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str(EnvListenAddr, &c.HttpListenAddr)
	str(EnvDB, &c.DB)
	str(EnvUploadDir, &c.Uploads.Dir)
	str(EnvSecretKey, &c.Session.SecretKey)
	str(EnvLogLevel, &c.LogLevel)

	if v, ok := lookup(EnvAllowedExtensions); ok && v != "" {
		c.Uploads.AllowedExtensions = strings.Split(v, ",")
	}
	if v, ok := lookup(EnvMaxUploadBytes); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxUploadBytes, err)
		}
		c.Uploads.MaxBytes = n
	}
	if v, ok := lookup(EnvSessionTTL); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSessionTTL, err)
		}
		c.Session.TTL = d
	}
	if v, ok := lookup(EnvCookieSecure); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCookieSecure, err)
		}
		c.Session.CookieSecure = b
	}

	return nil
}
