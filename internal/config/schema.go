package config

import (
	"wunderkammer/internal/domain"
)

// Config is the root configuration structure
type Config struct {
	Version      int                 `yaml:"version"`
	Collection   CollectionConfig    `yaml:"collection"`
	Resolver     ResolverConfig      `yaml:"resolver"`
	Templates    TemplatesConfig     `yaml:"templates"`
	Capabilities domain.Capabilities `yaml:"capabilities"`
	Cache        CacheConfig         `yaml:"cache"`
	Server       ServerConfig        `yaml:"server"`
}

// CollectionConfig locates the unit databases
type CollectionConfig struct {
	Name string `yaml:"name"`
	Root string `yaml:"root"`
	// DataDir is the base that relative roots resolve against; empty
	// means the per-user data area
	DataDir   string `yaml:"data_dir,omitempty"`
	Extension string `yaml:"extension"`
	// AllFiles registers every file in the root, not only those with
	// Extension
	AllFiles bool `yaml:"all_files,omitempty"`
}

// ResolverConfig selects how object URLs map to units
type ResolverConfig struct {
	Mode string `yaml:"mode"`           // fixed, fragment or id
	Unit string `yaml:"unit,omitempty"` // fixed mode only
}

// TemplatesConfig holds the collection's URI templates
type TemplatesConfig struct {
	ObjectURL string `yaml:"object_url,omitempty"`
	ObjectTag string `yaml:"object_tag,omitempty"`
	OEmbedURL string `yaml:"oembed_url"`
}

// CacheConfig sizes the object cache
type CacheConfig struct {
	Policy string `yaml:"policy"`
	Size   int    `yaml:"size"`
}

// ServerConfig holds HTTP settings for the serve command
type ServerConfig struct {
	Addr string `yaml:"addr"`
}
