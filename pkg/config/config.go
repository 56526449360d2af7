package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docker/go-units"
	"gopkg.in/yaml.v3"

	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/agent"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/sandbox"
)

// Config defines runtime settings for vshell.
type Config struct {
	LogLevel  string          `yaml:"logLevel"`
	LogFormat string          `yaml:"logFormat"`
	Workspace WorkspaceConfig `yaml:"workspace"`
	Server    ServerConfig    `yaml:"server"`
	Gateway   GatewayConfig   `yaml:"gateway"`
	Fallback  FallbackConfig  `yaml:"fallback"`
	Commands  CommandsConfig  `yaml:"commands"`
}

type WorkspaceConfig struct {
	Root           string   `yaml:"root"`
	ForbiddenRoots []string `yaml:"forbiddenRoots"`
	// MaxReadSize limits cat output, e.g. "1MiB". Empty or "0" disables the limit.
	MaxReadSize string `yaml:"maxReadSize"`
}

type ServerConfig struct {
	HTTPAddr        string   `yaml:"httpAddr"`
	GRPCAddr        string   `yaml:"grpcAddr"`
	StaticDir       string   `yaml:"staticDir"`
	AllowedOrigins  []string `yaml:"allowedOrigins"`
	ShutdownTimeout string   `yaml:"shutdownTimeout"`
}

type GatewayConfig struct {
	// Addr enables the JSON-RPC TCP gateway when set.
	Addr            string   `yaml:"addr"`
	MaxSessions     int      `yaml:"maxSessions"`
	AllowedAddrs    []string `yaml:"allowedAddrs"`
	IsolateSessions bool     `yaml:"isolateSessions"`
}

type FallbackConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	Endpoint string `yaml:"endpoint"`
	Token    string `yaml:"token"`
	Timeout  string `yaml:"timeout"`
}

type CommandsConfig struct {
	Disabled    []string `yaml:"disabled"`
	CPUInterval string   `yaml:"cpuInterval"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "json",
		Workspace: WorkspaceConfig{
			Root:        sandbox.DefaultRoot(),
			MaxReadSize: "1MiB",
		},
		Server: ServerConfig{
			HTTPAddr:        ":5000",
			GRPCAddr:        ":5001",
			StaticDir:       "static",
			AllowedOrigins:  []string{"*"},
			ShutdownTimeout: "5s",
		},
		Gateway: GatewayConfig{
			MaxSessions: 64,
		},
		Fallback: FallbackConfig{
			Provider: agent.ProviderHuggingFace,
			Timeout:  agent.DefaultTimeout.String(),
		},
		Commands: CommandsConfig{
			CPUInterval: "500ms",
		},
	}
}

// Load reads configuration from path, falling back to DefaultConfigPath when
// path is empty and that file exists, then applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if p := DefaultConfigPath(); fileExists(p) {
			path = p
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setFromEnv(&c.LogLevel, "VSHELL_LOG_LEVEL")
	setFromEnv(&c.LogFormat, "VSHELL_LOG_FORMAT")
	setFromEnv(&c.Workspace.Root, "VSHELL_WORKSPACE")
	setFromEnv(&c.Server.HTTPAddr, "VSHELL_HTTP_ADDR")
	setFromEnv(&c.Server.GRPCAddr, "VSHELL_GRPC_ADDR")
	setFromEnv(&c.Fallback.Provider, "VSHELL_FALLBACK_PROVIDER")
	setFromEnv(&c.Fallback.Model, "VSHELL_FALLBACK_MODEL")

	switch strings.ToLower(c.Fallback.Provider) {
	case agent.ProviderHuggingFace, "hf", "":
		setFromEnv(&c.Fallback.Token, "HF_TOKEN")
	case agent.ProviderGemini:
		setFromEnv(&c.Fallback.Token, "GEMINI_API_KEY")
	case agent.ProviderOllama:
		setFromEnv(&c.Fallback.Endpoint, "OLLAMA_HOST")
	}
}

func setFromEnv(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// Validate checks enumerations, durations, sizes and paths.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("unknown log format: %s", c.LogFormat))
	}

	if !knownProvider(c.Fallback.Provider) {
		errs = append(errs, fmt.Errorf("unknown fallback provider: %s", c.Fallback.Provider))
	}

	for _, root := range c.Workspace.ForbiddenRoots {
		if !filepath.IsAbs(root) {
			errs = append(errs, fmt.Errorf("forbidden root must be absolute: %s", root))
		}
	}
	if strings.TrimSpace(c.Workspace.Root) == "" {
		errs = append(errs, errors.New("workspace root is empty"))
	}

	if _, err := c.MaxReadSize(); err != nil {
		errs = append(errs, err)
	}
	for name, v := range map[string]string{
		"server.shutdownTimeout": c.Server.ShutdownTimeout,
		"fallback.timeout":       c.Fallback.Timeout,
		"commands.cpuInterval":   c.Commands.CPUInterval,
	} {
		if _, err := parseDuration(v, 0); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	if c.Gateway.MaxSessions < 0 {
		errs = append(errs, fmt.Errorf("gateway.maxSessions must not be negative: %d", c.Gateway.MaxSessions))
	}

	return errors.Join(errs...)
}

func knownProvider(p string) bool {
	switch strings.ToLower(p) {
	case "", "hf", "off":
		return true
	}
	for _, known := range agent.Providers {
		if strings.EqualFold(p, known) {
			return true
		}
	}
	return false
}

// MaxReadSize returns the read limit in bytes; zero means unlimited.
func (c *Config) MaxReadSize() (int64, error) {
	s := strings.TrimSpace(c.Workspace.MaxReadSize)
	if s == "" || s == "0" {
		return 0, nil
	}
	n, err := units.RAMInBytes(s)
	if err != nil {
		return 0, fmt.Errorf("workspace.maxReadSize: %w", err)
	}
	if n < 0 {
		return 0, fmt.Errorf("workspace.maxReadSize must not be negative: %s", s)
	}
	return n, nil
}

func (c *Config) ShutdownTimeout() time.Duration {
	d, _ := parseDuration(c.Server.ShutdownTimeout, 5*time.Second)
	return d
}

func (c *Config) FallbackTimeout() time.Duration {
	d, _ := parseDuration(c.Fallback.Timeout, agent.DefaultTimeout)
	return d
}

func (c *Config) CPUInterval() time.Duration {
	d, _ := parseDuration(c.Commands.CPUInterval, 500*time.Millisecond)
	return d
}

// FallbackOptions maps the fallback section onto provider options.
func (c *Config) FallbackOptions() agent.Options {
	return agent.Options{
		Provider: c.Fallback.Provider,
		Model:    c.Fallback.Model,
		Endpoint: c.Fallback.Endpoint,
		Token:    c.Fallback.Token,
		Timeout:  c.FallbackTimeout(),
	}
}

// ForbiddenRoots returns the configured deny-list, or nil for the default one.
func (c *Config) ForbiddenRoots() []string {
	if len(c.Workspace.ForbiddenRoots) == 0 {
		return nil
	}
	out := make([]string, len(c.Workspace.ForbiddenRoots))
	for i, r := range c.Workspace.ForbiddenRoots {
		out[i] = filepath.Clean(r)
	}
	return out
}

func parseDuration(s string, def time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def, err
	}
	if d < 0 {
		return def, fmt.Errorf("negative duration %s", s)
	}
	return d, nil
}

// DefaultConfigPath returns the default location for the config file.
func DefaultConfigPath() string {
	if path := os.Getenv("VSHELL_CONFIG"); path != "" {
		return path
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".vshell", "config.yaml")
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
