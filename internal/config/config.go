// Package config provides configuration management for wunderkammer.
//
// A config file names one collection: where its unit databases live, how
// object URLs resolve to units, the collection's URI templates and its
// capabilities.
//
// Config file locations (priority order):
//  1. $WUNDERKAMMER_CONFIG
//  2. ./wunderkammer.yaml
//  3. ~/.config/wunderkammer/config.yaml
//  4. /etc/wunderkammer/config.yaml
//
// WUNDERKAMMER_ROOT, WUNDERKAMMER_DATA_DIR and WUNDERKAMMER_RESOLVER
// override the corresponding file values.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"wunderkammer/internal/cache"
	"wunderkammer/internal/collection"
	"wunderkammer/internal/domain"
	"wunderkammer/internal/registry"
	"wunderkammer/internal/resolver"
)

const (
	EnvRoot     = "WUNDERKAMMER_ROOT"
	EnvDataDir  = "WUNDERKAMMER_DATA_DIR"
	EnvResolver = "WUNDERKAMMER_RESOLVER"
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		cfg := DefaultConfig()
		cfg.applyEnv()
		return cfg, "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Collection.Name == "" {
		c.Collection.Name = "wunderkammer"
	}
	if c.Collection.Root == "" {
		c.Collection.Root = c.Collection.Name
	}
	if c.Collection.Extension == "" {
		c.Collection.Extension = registry.DefaultExtension
	}
	if c.Resolver.Mode == "" {
		c.Resolver.Mode = string(resolver.ModeFragment)
	}
	if c.Templates.OEmbedURL == "" {
		c.Templates.OEmbedURL = collection.DefaultOEmbedURLTemplate
	}
	if c.Cache.Policy == "" {
		c.Cache.Policy = string(cache.PolicyLRU)
	}
	if c.Cache.Size <= 0 {
		c.Cache.Size = cache.DefaultSize
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
}

// applyEnv lets the environment override file values
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvRoot); v != "" {
		c.Collection.Root = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		c.Collection.DataDir = v
	}
	if v := os.Getenv(EnvResolver); v != "" {
		c.Resolver.Mode = v
	}
}

// Validate checks values that would otherwise only fail after I/O
func (c *Config) Validate() error {
	switch resolver.Mode(c.Resolver.Mode) {
	case resolver.ModeFixed:
		if c.Resolver.Unit == "" {
			return fmt.Errorf("resolver: fixed mode requires unit")
		}
	case resolver.ModeFragment, resolver.ModeID:
	default:
		return fmt.Errorf("resolver: %w: %q", resolver.ErrInvalidMode, c.Resolver.Mode)
	}

	if _, err := cache.ParsePolicy(c.Cache.Policy); err != nil {
		return fmt.Errorf("cache: %w", err)
	}

	return nil
}

// PathProvider returns how the collection root is resolved
func (c *Config) PathProvider() (registry.PathProvider, error) {
	if c.Collection.DataDir != "" {
		return registry.DataDir{Base: c.Collection.DataDir}, nil
	}
	return registry.UserDataDir()
}

// CollectionOptions assembles collection.Options from the config. Logger
// and the other injectable collaborators are left to the caller.
func (c *Config) CollectionOptions() (collection.Options, error) {
	if err := c.Validate(); err != nil {
		return collection.Options{}, err
	}

	res, err := resolver.New(resolver.Mode(c.Resolver.Mode), c.Resolver.Unit)
	if err != nil {
		return collection.Options{}, err
	}

	paths, err := c.PathProvider()
	if err != nil {
		return collection.Options{}, err
	}

	policy, _ := cache.ParsePolicy(c.Cache.Policy)
	objects, err := cache.New[string, *domain.Object](policy, c.Cache.Size)
	if err != nil {
		return collection.Options{}, err
	}

	return collection.Options{
		Name:              c.Collection.Name,
		Root:              c.Collection.Root,
		Paths:             paths,
		Resolver:          res,
		Capabilities:      c.Capabilities,
		ObjectURLTemplate: c.Templates.ObjectURL,
		ObjectTagTemplate: c.Templates.ObjectTag,
		OEmbedURLTemplate: c.Templates.OEmbedURL,
		Extension:         c.Collection.Extension,
		AllFiles:          c.Collection.AllFiles,
		Cache:             objects,
	}, nil
}
