// Package registry maps persisted variant tags to constructors for a
// polymorphic family (notifications, notification templates).
//
// A Registry has two phases. During startup, Register populates it from any
// number of call sites. Freeze closes the write phase; after that the
// registry is read-only and safe for concurrent use without locking.
package registry

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/go-notifications-nosql/internal/domain"
)

type entry[T any] struct {
	tag   string
	ctor  func() T
	shape string
	typ   reflect.Type
}

// Registry is the tag -> constructor mapping for one family rooted at T.
type Registry[T any] struct {
	family string

	mu     sync.Mutex
	frozen atomic.Bool
	byTag  map[string]entry[T]
	byType map[reflect.Type]string
}

// New creates an empty registry for the named family.
func New[T any](family string) *Registry[T] {
	return &Registry[T]{
		family: family,
		byTag:  make(map[string]entry[T]),
		byType: make(map[reflect.Type]string),
	}
}

// Family returns the name of the family root.
func (r *Registry[T]) Family() string { return r.family }

// Register associates tag with ctor and the persisted record shape it maps to.
// Constructors are compared by the concrete type they produce: registering a
// tag again with a constructor of the same type is a no-op, a different type
// is a conflict.
func (r *Registry[T]) Register(tag string, ctor func() T, shape string) error {
	if tag == "" || ctor == nil {
		return fmt.Errorf("%s registry: tag and constructor are required: %w", r.family, domain.ErrBadRequest)
	}
	typ := reflect.TypeOf(ctor())
	if typ == nil {
		return fmt.Errorf("%s registry: constructor for %q returned nil: %w", r.family, tag, domain.ErrBadRequest)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen.Load() {
		return fmt.Errorf("%s registry: register %q: %w", r.family, tag, domain.ErrRegistryFrozen)
	}
	if existing, ok := r.byTag[tag]; ok {
		if existing.typ == typ {
			return nil
		}
		return fmt.Errorf("%s registry: tag %q is bound to %s, cannot rebind to %s: %w",
			r.family, tag, existing.typ, typ, domain.ErrConflictingRegistration)
	}
	r.byTag[tag] = entry[T]{tag: tag, ctor: ctor, shape: shape, typ: typ}
	if _, ok := r.byType[typ]; !ok {
		r.byType[typ] = tag
	}
	return nil
}

// MustRegister is Register for startup code where a failure is fatal.
func (r *Registry[T]) MustRegister(tag string, ctor func() T, shape string) {
	if err := r.Register(tag, ctor, shape); err != nil {
		panic(err)
	}
}

// Freeze ends the registration phase.
func (r *Registry[T]) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen.Store(true)
}

// Frozen reports whether Freeze has been called.
func (r *Registry[T]) Frozen() bool { return r.frozen.Load() }

// Resolve returns a new blank instance of the variant registered under tag.
func (r *Registry[T]) Resolve(tag string) (T, error) {
	e, ok := r.lookup(tag)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s registry: %q: %w", r.family, tag, domain.ErrUnknownVariant)
	}
	return e.ctor(), nil
}

// TagOf returns the first tag registered for the concrete type of v.
func (r *Registry[T]) TagOf(v T) (string, bool) {
	typ := reflect.TypeOf(v)
	if !r.frozen.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	tag, ok := r.byType[typ]
	return tag, ok
}

// Shape returns the persisted record shape registered for tag.
func (r *Registry[T]) Shape(tag string) (string, bool) {
	e, ok := r.lookup(tag)
	return e.shape, ok
}

// Tags returns the registered tags in lexical order.
func (r *Registry[T]) Tags() []string {
	if !r.frozen.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	tags := make([]string, 0, len(r.byTag))
	for tag := range r.byTag {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func (r *Registry[T]) lookup(tag string) (entry[T], bool) {
	if !r.frozen.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	e, ok := r.byTag[tag]
	return e, ok
}
