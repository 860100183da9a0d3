// Package config resolves server settings from defaults, an optional
// devserve.yaml and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultHost = "0.0.0.0"
	DefaultPort = 5000
	DefaultRoot = "."
	DefaultLang = "en"
)

// ErrUsage wraps command-line mistakes: unknown flags, bad values, stray
// arguments.
var ErrUsage = errors.New("usage error")

// Config files looked up in the working directory when -config is not given.
var configFiles = []string{"devserve.yaml", ".devserve.yaml"}

type Config struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Root string `yaml:"root"`

	// MimeTypes maps a file extension (".js") to the Content-Type sent for
	// it, taking precedence over the platform table.
	MimeTypes map[string]string `yaml:"mimeTypes"`

	Gzip  bool   `yaml:"gzip"`
	Watch bool   `yaml:"watch"`
	Quiet bool   `yaml:"quiet"`
	Lang  string `yaml:"lang"`

	ShutdownTimeout  time.Duration `yaml:"shutdownTimeout"`  // Graceful shutdown limit (default: 5s)
	DebounceDuration time.Duration `yaml:"debounceDuration"` // Watcher debounce (default: 300ms)

	// ConfigFile is the YAML file the values were read from, if any.
	ConfigFile string `yaml:"-"`
}

// Default returns the configuration used when nothing else is specified.
func Default() *Config {
	return &Config{
		Host: DefaultHost,
		Port: DefaultPort,
		Root: DefaultRoot,
		MimeTypes: map[string]string{
			".js":   "application/javascript",
			".mjs":  "application/javascript",
			".wasm": "application/wasm",
		},
		Lang:             DefaultLang,
		ShutdownTimeout:  5 * time.Second,
		DebounceDuration: 300 * time.Millisecond,
	}
}

// Addr returns the host:port pair to listen on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load builds the configuration for the serve command. Flags always win
// over the YAML file, which wins over the defaults. flag.ErrHelp is
// returned unchanged when -h was requested.
func Load(args []string, output io.Writer) (*Config, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(output)

	configFlag := fs.String("config", "", "Path to a YAML config file")
	hostFlag := fs.String("host", DefaultHost, "The host/IP to bind to")
	portFlag := fs.Int("port", DefaultPort, "The port to listen on")
	rootFlag := fs.String("root", DefaultRoot, "Directory to serve")
	gzipFlag := fs.Bool("gzip", false, "Compress responses for clients that accept gzip")
	watchFlag := fs.Bool("watch", false, "Print a notice when files under the root change")
	quietFlag := fs.Bool("quiet", false, "Disable the per-request log")
	langFlag := fs.String("lang", DefaultLang, "Console language (en, fr)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}
	if *portFlag < 1 || *portFlag > 65535 {
		return nil, fmt.Errorf("%w: port %d out of range 1-65535", ErrUsage, *portFlag)
	}

	cfg := Default()
	if err := cfg.loadFile(*configFlag); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			cfg.Host = *hostFlag
		case "port":
			cfg.Port = *portFlag
		case "root":
			cfg.Root = *rootFlag
		case "gzip":
			cfg.Gzip = *gzipFlag
		case "watch":
			cfg.Watch = *watchFlag
		case "quiet":
			cfg.Quiet = *quietFlag
		case "lang":
			cfg.Lang = *langFlag
		}
	})

	cfg.validate()

	absRoot, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("invalid root directory: %w", err)
	}
	cfg.Root = absRoot

	return cfg, nil
}

// loadFile merges YAML settings into c. An explicit path must exist; the
// implicit lookups are skipped when absent. A file that fails to parse is
// reported and ignored.
func (c *Config) loadFile(explicit string) error {
	candidates := configFiles
	if explicit != "" {
		candidates = []string{explicit}
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			if explicit == "" && errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to read config %s: %w", path, err)
		}

		parsed := Default()
		parsed.MimeTypes = nil
		if err := yaml.Unmarshal(data, parsed); err != nil {
			slog.Warn("Ignoring invalid config file", "path", path, "error", err)
			return nil
		}

		extra := parsed.MimeTypes
		parsed.MimeTypes = c.MimeTypes
		for ext, typ := range extra {
			parsed.MimeTypes[ext] = typ
		}
		parsed.ConfigFile = path
		*c = *parsed
		return nil
	}
	return nil
}

// validate ensures configuration values are within reasonable bounds.
// Out-of-range values from the YAML file fall back to defaults; flags are
// checked in Load.
func (c *Config) validate() {
	if strings.TrimSpace(c.Host) == "" {
		c.Host = DefaultHost
	}
	if c.Port < 1 || c.Port > 65535 {
		c.Port = DefaultPort
	}
	if strings.TrimSpace(c.Root) == "" {
		c.Root = DefaultRoot
	}

	switch c.Lang = strings.ToLower(strings.TrimSpace(c.Lang)); c.Lang {
	case "en", "fr":
	default:
		c.Lang = DefaultLang
	}

	// Timeouts
	if c.ShutdownTimeout < 1*time.Second {
		c.ShutdownTimeout = 1 * time.Second
	}
	if c.ShutdownTimeout > 60*time.Second {
		c.ShutdownTimeout = 60 * time.Second
	}
	if c.DebounceDuration < 10*time.Millisecond {
		c.DebounceDuration = 10 * time.Millisecond
	}
	if c.DebounceDuration > 5*time.Second {
		c.DebounceDuration = 5 * time.Second
	}

	normalized := make(map[string]string, len(c.MimeTypes))
	for ext, typ := range c.MimeTypes {
		ext = strings.ToLower(strings.TrimSpace(ext))
		typ = strings.TrimSpace(typ)
		if ext == "" || typ == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized[ext] = typ
	}
	// .js is never left to the platform table.
	normalized[".js"] = "application/javascript"
	c.MimeTypes = normalized
}
