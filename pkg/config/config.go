// Package config loads the kintree configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/kintree/config.toml unless a
// path is given. Every field is optional; missing fields keep their defaults.
//
//	[store]
//	kind = "file"            # file | mongo | dynamo
//	path = "families.json"
//
//	[cache]
//	kind = "redis"           # file | redis | none
//	url  = "redis://localhost:6379/0"
//
//	[server]
//	addr = ":8080"
//
//	[outline]
//	max_depth = 8
//	locale    = "de"
//	policy    = "first"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/kintree/pkg/errors"
)

// AppName names the config and cache directories.
const AppName = "kintree"

// Store kinds.
const (
	StoreFile   = "file"
	StoreMongo  = "mongo"
	StoreDynamo = "dynamo"
)

// Cache kinds.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the parsed configuration file.
type Config struct {
	Store   Store   `toml:"store"`
	Cache   Cache   `toml:"cache"`
	Server  Server  `toml:"server"`
	Outline Outline `toml:"outline"`
}

// Store selects and configures the family store.
type Store struct {
	Kind string `toml:"kind" validate:"oneof=file mongo dynamo"`

	// file
	Path string `toml:"path" validate:"required_if=Kind file"`

	// mongo
	URI        string `toml:"uri" validate:"required_if=Kind mongo,omitempty,uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`

	// dynamo
	Table    string `toml:"table" validate:"required_if=Kind dynamo"`
	Region   string `toml:"region"`
	Endpoint string `toml:"endpoint" validate:"omitempty,url"`

	Timeout time.Duration `toml:"timeout" validate:"gte=0"`
}

// Cache selects and configures the outline cache.
type Cache struct {
	Kind string `toml:"kind" validate:"oneof=file redis none"`
	Dir  string `toml:"dir"`
	URL  string `toml:"url" validate:"required_if=Kind redis,omitempty,url"`
}

// Server configures "kintree serve".
type Server struct {
	Addr        string `toml:"addr" validate:"required"`
	Concurrency int    `toml:"concurrency" validate:"gte=0,lte=256"`
}

// Outline holds the default outline options.
type Outline struct {
	MaxDepth        int    `toml:"max_depth" validate:"gte=0,lte=64"`
	GenerationLabel string `toml:"generation_label" validate:"omitempty,contains=%d"`
	Locale          string `toml:"locale" validate:"omitempty,bcp47_language_tag"`
	Policy          string `toml:"policy" validate:"omitempty,oneof=male first"`
	Seed            uint64 `toml:"seed"`
	Title           string `toml:"title"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Store:  Store{Kind: StoreFile, Path: "families.json"},
		Cache:  Cache{Kind: CacheFile},
		Server: Server{Addr: ":8080"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/kintree/config.toml, falling back to
// ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns $XDG_CACHE_HOME/kintree, falling back to ~/.cache.
func CacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// Load reads the configuration at path. An empty path means DefaultPath;
// a missing default file yields Default, while a missing explicit file is
// an error. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	switch {
	case os.IsNotExist(err) && !explicit:
		return Default(), nil
	case os.IsNotExist(err):
		return nil, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
	case err != nil:
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s: %v", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", describe(err))
	}
	return nil
}

func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "invalid config"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s: failed %q", strings.ToLower(strings.TrimPrefix(fe.Namespace(), "Config.")), fe.Tag()))
	}
	return "invalid config: " + strings.Join(parts, "; ")
}

// Write encodes c as TOML to path, creating parent directories.
func (c *Config) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return fmt.Errorf("encode config: %w", err)
	}
	return f.Close()
}
