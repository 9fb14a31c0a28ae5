// Package registry discovers the unit databases of a collection and maps
// each unit identifier to its open handle.
//
// Construction scans the collection root, opens every candidate file,
// samples one record URL from it and asks the resolver which unit that
// URL belongs to. The unit of a database is therefore derived from its
// content, not from its file name. The mapping is read-only once built.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"wunderkammer/internal/logger"
	"wunderkammer/internal/repository"
	"wunderkammer/internal/repository/sqlite"
	"wunderkammer/internal/resolver"
)

var (
	ErrMissingDatabaseRoot  = errors.New("database root does not exist")
	ErrMissingDatabaseFiles = errors.New("no database files in root")
	ErrDatabaseOpen         = errors.New("failed to open database")
	ErrInvalidSampleURL     = errors.New("sampled url is invalid")
)

// DefaultExtension is the file extension of unit databases
const DefaultExtension = ".db"

// Opener opens one database file
type Opener func(ctx context.Context, path string) (repository.Store, error)

// OpenSQLite is the default Opener
func OpenSQLite(ctx context.Context, path string) (repository.Store, error) {
	return sqlite.Open(ctx, path)
}

// Options configures registry construction
type Options struct {
	// Root names the collection directory, resolved through Paths
	Root string
	// Paths resolves Root; required
	Paths PathProvider
	// Resolver derives a unit from a sampled record URL; required
	Resolver resolver.Resolver
	// Extension filters candidate files. Defaults to DefaultExtension.
	Extension string
	// AllFiles disables the extension filter
	AllFiles bool
	// Open defaults to OpenSQLite
	Open   Opener
	Logger *slog.Logger
}

// Registry maps unit identifiers to open database handles
type Registry struct {
	units  map[string]repository.Store
	order  []string
	logger *slog.Logger
}

// New builds the registry. It fails if the root is missing or holds no
// candidate files, or if any file cannot be opened, sampled or resolved.
// On failure every handle opened so far is closed.
func New(ctx context.Context, opts Options) (*Registry, error) {
	if opts.Paths == nil {
		return nil, errors.New("registry: path provider is required")
	}
	if opts.Resolver == nil {
		return nil, errors.New("registry: resolver is required")
	}
	if opts.Open == nil {
		opts.Open = OpenSQLite
	}
	if opts.Extension == "" {
		opts.Extension = DefaultExtension
	}
	if opts.Logger == nil {
		opts.Logger = logger.L()
	}

	root, err := opts.Paths.Resolve(opts.Root)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("registry_root", "root", root)

	paths, err := listCandidates(root, opts.Extension, opts.AllFiles)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		units:  make(map[string]repository.Store, len(paths)),
		logger: opts.Logger,
	}

	for _, path := range paths {
		if err := r.register(ctx, path, opts); err != nil {
			r.Close()
			return nil, err
		}
	}

	return r, nil
}

func listCandidates(root, ext string, all bool) ([]string, error) {
	info, err := os.Stat(root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingDatabaseRoot, root)
	}
	if err != nil {
		return nil, fmt.Errorf("stat database root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrMissingDatabaseRoot, root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("list database root: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !all && !strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			continue
		}
		paths = append(paths, filepath.Join(root, entry.Name()))
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingDatabaseFiles, root)
	}
	return paths, nil
}

func (r *Registry) register(ctx context.Context, path string, opts Options) error {
	store, err := opts.Open(ctx, path)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrDatabaseOpen, path, err)
	}

	unit, err := deriveUnit(ctx, store, opts.Resolver)
	if err != nil {
		store.Close()
		return fmt.Errorf("register %s: %w", path, err)
	}

	// Later files win; each unit is expected to be backed by one file.
	if previous, ok := r.units[unit]; ok {
		r.logger.Warn("registry_unit_replaced", "unit", unit, "path", path)
		if err := previous.Close(); err != nil {
			r.logger.Warn("registry_close_failed", "unit", unit, "err", err)
		}
	} else {
		r.order = append(r.order, unit)
	}

	r.units[unit] = store
	r.logger.Info("registry_unit_registered", "unit", unit, "path", path)
	return nil
}

// deriveUnit resolves the unit of a database from one of its own records
func deriveUnit(ctx context.Context, store repository.Store, res resolver.Resolver) (string, error) {
	raw, err := store.RandomURL(ctx)
	if err != nil {
		return "", fmt.Errorf("sample url: %w", err)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidSampleURL, raw)
	}

	return res.DeriveDatabase(u)
}

// Get returns the handle for unit
func (r *Registry) Get(unit string) (repository.Store, bool) {
	store, ok := r.units[unit]
	return store, ok
}

// Units returns the registered unit identifiers in registration order
func (r *Registry) Units() []string {
	units := make([]string, len(r.order))
	copy(units, r.order)
	return units
}

// Len returns the number of registered units
func (r *Registry) Len() int {
	return len(r.order)
}

// Close closes every handle
func (r *Registry) Close() error {
	var errs []error
	for _, unit := range r.order {
		if err := r.units[unit].Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", unit, err))
		}
	}
	return errors.Join(errs...)
}
