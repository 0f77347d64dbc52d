package specification

import (
	"context"
	"fmt"
	"sort"

	"github.com/kailas-cloud/specdex/internal/domain"
	domspec "github.com/kailas-cloud/specdex/internal/domain/specification"
)

// store is the consumer interface for specifications (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo stores specifications as Redis hashes under {prefix}spec:{name}.
type Repo struct {
	store  store
	prefix string
}

// New creates a specification repository.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// Create stores a new specification.
func (r *Repo) Create(ctx context.Context, spec domspec.Specification) error {
	key := r.key(spec.Name())
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return domain.ErrAlreadyExists
	}
	return r.Save(ctx, spec)
}

// Save overwrites a specification.
func (r *Repo) Save(ctx context.Context, spec domspec.Specification) error {
	data, err := specToHash(spec)
	if err != nil {
		return err
	}
	if err := r.store.HSet(ctx, r.key(spec.Name()), data); err != nil {
		return fmt.Errorf("hset specification %s: %w", spec.Name(), err)
	}
	return nil
}

// Get retrieves a specification by name.
func (r *Repo) Get(ctx context.Context, name string) (domspec.Specification, error) {
	m, err := r.store.HGetAll(ctx, r.key(name))
	if err != nil {
		return domspec.Specification{}, fmt.Errorf("hgetall specification %s: %w", name, err)
	}
	if len(m) == 0 {
		return domspec.Specification{}, domain.ErrSpecificationNotFound
	}
	return specFromHash(m)
}

// List returns all specifications sorted by name.
func (r *Repo) List(ctx context.Context) ([]domspec.Specification, error) {
	keys, err := r.store.Scan(ctx, r.key("*"))
	if err != nil {
		return nil, fmt.Errorf("scan specifications: %w", err)
	}
	if len(keys) == 0 {
		return []domspec.Specification{}, nil
	}

	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi specifications: %w", err)
	}

	specs := make([]domspec.Specification, 0, len(results))
	for i, m := range results {
		if len(m) == 0 {
			continue
		}
		spec, err := specFromHash(m)
		if err != nil {
			return nil, fmt.Errorf("parse specification %s: %w", keys[i], err)
		}
		specs = append(specs, spec)
	}

	sort.Slice(specs, func(i, j int) bool { return specs[i].Name() < specs[j].Name() })
	return specs, nil
}

// Delete removes a specification.
func (r *Repo) Delete(ctx context.Context, name string) error {
	key := r.key(name)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if !exists {
		return domain.ErrSpecificationNotFound
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del specification %s: %w", name, err)
	}
	return nil
}

func (r *Repo) key(name string) string {
	return fmt.Sprintf("%sspec:%s", r.prefix, name)
}
