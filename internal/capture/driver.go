package capture

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Driver opens capture sources for one backend.
type Driver interface {
	Name() string
	Open(ctx context.Context, req Request) (Source, error)
}

// Lifecycle is implemented by drivers whose library keeps process-wide state.
type Lifecycle interface {
	Init() error
	Shutdown()
}

// FallbackName registers a driver that receives every format name no other
// driver claims.
const FallbackName = ""

// Registry maps driver names to drivers.
type Registry struct {
	mu      sync.Mutex
	drivers map[string]Driver
	order   []string
	started []Lifecycle
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{drivers: make(map[string]Driver)}
}

// Register adds d under name. Registering a name twice replaces the driver.
func (r *Registry) Register(name string, d Driver) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.drivers[name]; !ok {
		r.order = append(r.order, name)
	}
	r.drivers[name] = d
}

// Names lists the explicitly named drivers, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.drivers))
	for name := range r.drivers {
		if name != FallbackName {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Lookup resolves format to a driver: an exact name first, then the fallback.
func (r *Registry) Lookup(format string) (Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d, ok := r.drivers[format]; ok && format != FallbackName {
		return d, nil
	}
	if d, ok := r.drivers[FallbackName]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrFormatNotFound, format)
}

// Init runs the library setup of the driver format resolves to, once. Other
// registered drivers are left alone, so an unused backend's runtime need not
// be installed.
func (r *Registry) Init(format string) error {
	d, err := r.Lookup(format)
	if err != nil {
		return err
	}
	lc, ok := d.(Lifecycle)
	if !ok {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, started := range r.started {
		if started == lc {
			return nil
		}
	}
	if err := lc.Init(); err != nil {
		return fmt.Errorf("init driver %q: %w", d.Name(), err)
	}
	r.started = append(r.started, lc)
	return nil
}

// Shutdown undoes Init in reverse order.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shutdownLocked()
}

func (r *Registry) shutdownLocked() {
	for i := len(r.started) - 1; i >= 0; i-- {
		r.started[i].Shutdown()
	}
	r.started = nil
}

// Open resolves req.Format and opens the device with the chosen driver.
func (r *Registry) Open(ctx context.Context, req Request) (Source, error) {
	d, err := r.Lookup(req.Format)
	if err != nil {
		return nil, err
	}
	src, err := d.Open(ctx, req)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, errors.Join(ErrOpenDevice, fmt.Errorf("driver %q returned no source", d.Name()))
	}
	return src, nil
}

var defaultRegistry = NewRegistry()

// Register adds d to the process-wide registry under d.Name(). Backends call it from init.
func Register(d Driver) { defaultRegistry.Register(d.Name(), d) }

// RegisterFallback installs d as the driver for unclaimed format names.
func RegisterFallback(d Driver) { defaultRegistry.Register(FallbackName, d) }

// Drivers lists the named drivers of the process-wide registry.
func Drivers() []string { return defaultRegistry.Names() }

// Init runs the one-time library setup of the driver serving format.
func Init(format string) error { return defaultRegistry.Init(format) }

// Shutdown tears down what Init set up.
func Shutdown() { defaultRegistry.Shutdown() }

// Open opens a source through the process-wide registry.
func Open(ctx context.Context, req Request) (Source, error) { return defaultRegistry.Open(ctx, req) }
