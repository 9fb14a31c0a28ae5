// Package collection is the public access point to a museum collection
// bundled as one or more SQLite unit databases.
//
// A Collection combines the unit registry, the URL resolver, a bounded
// object cache and the oEmbed codec. It serves point lookups by URL,
// random objects, capability queries and a lazy enumeration of every
// stored record.
//
// Collection is safe for concurrent use. Iterators are not.
package collection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"sync"

	"github.com/yosida95/uritemplate/v3"
	"golang.org/x/sync/singleflight"

	"wunderkammer/internal/cache"
	"wunderkammer/internal/codec"
	"wunderkammer/internal/domain"
	"wunderkammer/internal/logger"
	"wunderkammer/internal/metrics"
	"wunderkammer/internal/registry"
	"wunderkammer/internal/repository"
	"wunderkammer/internal/resolver"
)

var (
	ErrInvalidURL                  = errors.New("invalid url")
	ErrInvalidNFCURL               = errors.New("invalid nfc url")
	ErrInvalidOEmbed               = errors.New("invalid oembed record")
	ErrMissingUnitID               = errors.New("missing unit id")
	ErrMissingUnitDatabase         = errors.New("missing unit database")
	ErrMissingOEmbedQueryParameter = errors.New("missing oembed query parameter")
	ErrMissingTemplate             = errors.New("template not configured")
	ErrUnknownCapability           = errors.New("unknown capability")
)

// DefaultOEmbedURLTemplate builds the sentinel-scheme URL for an object URI
const DefaultOEmbedURLTemplate = "nfc:///?url={url}"

// Options configures a Collection
type Options struct {
	// Name is reported by every object served
	Name string
	// Root is the collection directory, resolved through Paths
	Root     string
	Paths    registry.PathProvider
	Resolver resolver.Resolver

	Capabilities domain.Capabilities

	// ObjectURLTemplate expands {object_id} into an object URI for records
	// lacking object_uri
	ObjectURLTemplate string
	ObjectTagTemplate string
	// OEmbedURLTemplate defaults to DefaultOEmbedURLTemplate
	OEmbedURLTemplate string

	// Extension and AllFiles control which files in Root are candidates
	Extension string
	AllFiles  bool

	// Cache defaults to an LRU of cache.DefaultSize entries
	Cache cache.Cache[string, *domain.Object]
	// Decoder defaults to the JSON codec
	Decoder codec.Decoder
	// Open defaults to registry.OpenSQLite
	Open registry.Opener
	// IntN picks a random index in [0, n). Defaults to math/rand/v2.
	IntN   func(n int) int
	Logger *slog.Logger
}

// Collection implements lookup, random selection and enumeration over a
// registry of unit databases
type Collection struct {
	name         string
	resolver     resolver.Resolver
	registry     *registry.Registry
	capabilities domain.Capabilities

	objectURLTemplate *uritemplate.Template
	objectTagTemplate *uritemplate.Template
	oembedURLTemplate *uritemplate.Template

	cache   cache.Cache[string, *domain.Object]
	decoder codec.Decoder
	lookups singleflight.Group
	intN    func(n int) int
	logger  *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// New builds the registry eagerly and returns a ready collection. It
// performs blocking file and database I/O.
func New(ctx context.Context, opts Options) (*Collection, error) {
	if opts.Logger == nil {
		opts.Logger = logger.L()
	}
	if opts.Decoder == nil {
		opts.Decoder = codec.NewJSONCodec()
	}
	if opts.IntN == nil {
		opts.IntN = rand.IntN
	}
	if opts.OEmbedURLTemplate == "" {
		opts.OEmbedURLTemplate = DefaultOEmbedURLTemplate
	}
	if opts.Cache == nil {
		c, err := cache.New[string, *domain.Object](cache.PolicyLRU, cache.DefaultSize)
		if err != nil {
			return nil, err
		}
		opts.Cache = c
	}

	c := &Collection{
		name:         opts.Name,
		resolver:     opts.Resolver,
		capabilities: opts.Capabilities,
		cache:        opts.Cache,
		decoder:      opts.Decoder,
		intN:         opts.IntN,
		logger:       opts.Logger.With("collection", opts.Name),
	}

	var err error
	if c.objectURLTemplate, err = parseTemplate("object url", opts.ObjectURLTemplate); err != nil {
		return nil, err
	}
	if c.objectTagTemplate, err = parseTemplate("object tag", opts.ObjectTagTemplate); err != nil {
		return nil, err
	}
	if c.oembedURLTemplate, err = parseTemplate("oembed url", opts.OEmbedURLTemplate); err != nil {
		return nil, err
	}

	c.registry, err = registry.New(ctx, registry.Options{
		Root:      opts.Root,
		Paths:     opts.Paths,
		Resolver:  opts.Resolver,
		Extension: opts.Extension,
		AllFiles:  opts.AllFiles,
		Open:      opts.Open,
		Logger:    c.logger,
	})
	if err != nil {
		return nil, err
	}

	metrics.UnitsRegistered.Add(float64(c.registry.Len()))
	return c, nil
}

func parseTemplate(name, raw string) (*uritemplate.Template, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := uritemplate.New(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s template: %w", name, err)
	}
	return t, nil
}

// Name returns the collection name
func (c *Collection) Name() string {
	return c.name
}

// Units returns the registered unit identifiers
func (c *Collection) Units() []string {
	return c.registry.Units()
}

// GetOEmbed returns the object stored for u. Results are cached by the
// string form of u; failed lookups are not cached.
func (c *Collection) GetOEmbed(ctx context.Context, u *url.URL) (*domain.Object, error) {
	key := u.String()

	if obj, ok := c.cache.Get(key); ok {
		metrics.LookupsTotal.WithLabelValues(lookupKind(u), "hit").Inc()
		return obj, nil
	}

	v, err, _ := c.lookups.Do(key, func() (any, error) {
		// A concurrent flight may have filled the cache meanwhile.
		if obj, ok := c.cache.Get(key); ok {
			return obj, nil
		}
		obj, err := c.lookup(ctx, u)
		if err != nil {
			return nil, err
		}
		c.cache.Add(key, obj)
		return obj, nil
	})
	if err != nil {
		metrics.LookupsTotal.WithLabelValues(lookupKind(u), "error").Inc()
		return nil, err
	}

	metrics.LookupsTotal.WithLabelValues(lookupKind(u), "miss").Inc()
	return v.(*domain.Object), nil
}

func lookupKind(u *url.URL) string {
	if u.Scheme == SentinelScheme {
		return "indirect"
	}
	return "direct"
}

func (c *Collection) lookup(ctx context.Context, u *url.URL) (*domain.Object, error) {
	l, err := ParseLookup(u)
	if err != nil {
		return nil, err
	}

	var (
		unit  string
		query string
		fetch func(repository.Store) ([]byte, error)
	)

	switch l := l.(type) {
	case DirectLookup:
		unit, err = c.resolver.DeriveDatabase(l.URL)
		query = "url"
		target := l.URL.String()
		fetch = func(s repository.Store) ([]byte, error) { return s.BodyByURL(ctx, target) }
	case IndirectLookup:
		unit, err = c.resolver.DeriveDatabase(l.Embedded)
		query = "object_uri"
		fetch = func(s repository.Store) ([]byte, error) { return s.BodyByObjectURI(ctx, l.ObjectURI) }
	default:
		return nil, fmt.Errorf("unsupported lookup %T", l)
	}
	if err != nil {
		return nil, err
	}

	if unit == "" {
		return nil, ErrMissingUnitID
	}

	store, ok := c.registry.Get(unit)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingUnitDatabase, unit)
	}

	metrics.QueriesTotal.WithLabelValues(unit, query).Inc()
	body, err := fetch(store)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: no %s match in unit %s", ErrInvalidOEmbed, query, unit)
	}
	if err != nil {
		return nil, fmt.Errorf("query unit %s: %w", unit, err)
	}

	record, err := c.decoder.Decode(body)
	if err != nil {
		return nil, err
	}

	return domain.NewObject(c.name, c.objectURLTemplate, record), nil
}

// GetRandomURL picks a random unit, then a random record within it, and
// passes the record URL to completion before returning. Records in small
// units are therefore more likely to be chosen than records in large ones.
func (c *Collection) GetRandomURL(ctx context.Context, completion func(*url.URL, error)) {
	completion(c.RandomURL(ctx))
}

// RandomURL is GetRandomURL without the callback
func (c *Collection) RandomURL(ctx context.Context) (*url.URL, error) {
	units := c.registry.Units()
	unit := units[c.intN(len(units))]
	store, _ := c.registry.Get(unit)

	metrics.RandomTotal.WithLabelValues(unit).Inc()
	metrics.QueriesTotal.WithLabelValues(unit, "random").Inc()

	raw, err := store.RandomURL(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: unit %s returned no url", ErrInvalidURL, unit)
	}
	if err != nil {
		return nil, fmt.Errorf("query unit %s: %w", unit, err)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return u, nil
}

// HasCapability reports whether the collection is configured with c
func (c *Collection) HasCapability(capability domain.Capability) (bool, error) {
	switch capability {
	case domain.CapabilityNFCTags:
		return c.capabilities.NFCTags, nil
	case domain.CapabilityBLETags:
		return c.capabilities.BLETags, nil
	case domain.CapabilityRandomObject:
		return c.capabilities.RandomObject, nil
	case domain.CapabilitySaveObject:
		return c.capabilities.SaveObject, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownCapability, capability)
	}
}

// Capabilities returns the configured capability flags
func (c *Collection) Capabilities() domain.Capabilities {
	return c.capabilities
}

// SaveObject is a placeholder; nothing is persisted and image is ignored.
func (c *Collection) SaveObject(_ context.Context, _ *domain.Object, _ io.Reader) (domain.SaveResponse, error) {
	return domain.SaveNoop, nil
}

func (c *Collection) ObjectTagTemplate() (*uritemplate.Template, error) {
	return templateOrErr("object tag", c.objectTagTemplate)
}

func (c *Collection) ObjectURLTemplate() (*uritemplate.Template, error) {
	return templateOrErr("object url", c.objectURLTemplate)
}

func (c *Collection) OEmbedURLTemplate() (*uritemplate.Template, error) {
	return templateOrErr("oembed url", c.oembedURLTemplate)
}

func templateOrErr(name string, t *uritemplate.Template) (*uritemplate.Template, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingTemplate, name)
	}
	return t, nil
}

// IndirectURL expands the oEmbed URL template for objectURI, producing the
// URL written to object tags
func (c *Collection) IndirectURL(objectURI string) (*url.URL, error) {
	t, err := c.OEmbedURLTemplate()
	if err != nil {
		return nil, err
	}

	raw, err := t.Expand(uritemplate.Values{"url": uritemplate.String(objectURI)})
	if err != nil {
		return nil, fmt.Errorf("expand oembed url template: %w", err)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return u, nil
}

// Purge empties the object cache
func (c *Collection) Purge() {
	c.cache.Purge()
}

// Close closes every unit database. The collection must not be used
// afterwards; repeated calls return the first result.
func (c *Collection) Close() error {
	c.closeOnce.Do(func() {
		metrics.UnitsRegistered.Sub(float64(c.registry.Len()))
		c.closeErr = c.registry.Close()
	})
	return c.closeErr
}
