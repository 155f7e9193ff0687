// Package discover implements the metadata-driven discovery engine: it
// lazily expands a type's reachable-type graph and brings every declared
// mapping effect into force exactly once, wiring aliases, attribute and
// implicit-collection markings, omissions and converters into the
// collaborator stages of the mapper chain.
package discover

import (
	"reflect"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/serialmap/serialmap/mapper"
	"github.com/serialmap/serialmap/metadata"
)

// ReflectionProvider constructs values of a type. It participates in the
// constructor injection pool; the engine itself never builds objects.
type ReflectionProvider interface {
	New(t reflect.Type) (reflect.Value, error)
}

// RuntimeProbe answers host-capability questions for injected constructors.
type RuntimeProbe interface {
	Supports(feature string) bool
}

// StaticProbe is a RuntimeProbe backed by a fixed feature table.
type StaticProbe map[string]bool

func (p StaticProbe) Supports(feature string) bool { return p[feature] }

// Engine is a chain stage that triggers discovery before answering
// metadata-backed queries. Safe for concurrent use; discovery of distinct
// types proceeds in parallel, discovery of the same type serializes.
type Engine struct {
	mapper.Wrapper

	registry        mapper.ConverterRegistry
	kinds           *KindRegistry
	reader          metadata.Reader
	log             *zap.Logger
	excludePrefixes []string
	pool            []reflect.Value

	auto atomic.Bool

	procMu    sync.RWMutex
	processed map[reflect.Type]struct{}

	lockMu sync.Mutex
	locks  map[reflect.Type]*sync.Mutex

	cache *converterCache
}

// Option configures an Engine.
type Option func(*Engine)

// WithReader sets the metadata reader. Default is the struct-tag reader.
func WithReader(r metadata.Reader) Option {
	return func(e *Engine) { e.reader = r }
}

// WithKinds sets the converter kind registry.
func WithKinds(k *KindRegistry) Option {
	return func(e *Engine) { e.kinds = k }
}

// WithResolver adds a type resolver (the module handle) to the injection
// pool.
func WithResolver(r metadata.TypeResolver) Option {
	return func(e *Engine) { e.addCollaborator(r) }
}

// WithLookup adds a converter lookup to the injection pool.
func WithLookup(l mapper.ConverterLookup) Option {
	return func(e *Engine) { e.addCollaborator(l) }
}

// WithReflectionProvider adds a reflection provider to the injection pool.
func WithReflectionProvider(p ReflectionProvider) Option {
	return func(e *Engine) { e.addCollaborator(p) }
}

// WithProbe replaces the runtime-capability probe in the injection pool.
func WithProbe(p RuntimeProbe) Option {
	return func(e *Engine) { e.addCollaborator(p) }
}

// WithLogger sets the engine logger. Default is a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithExcludedPrefixes adds package path prefixes whose types are silently
// excluded from discovery, alongside the standard library.
func WithExcludedPrefixes(prefixes ...string) Option {
	return func(e *Engine) {
		e.excludePrefixes = append(e.excludePrefixes, prefixes...)
	}
}

// New returns an Engine wrapping inner. The registry may be nil, in which
// case globally declared converters are not registered. Auto discovery
// starts enabled.
func New(inner mapper.Mapper, registry mapper.ConverterRegistry, opts ...Option) *Engine {
	e := &Engine{
		Wrapper:   mapper.Wrap(inner),
		registry:  registry,
		kinds:     NewKindRegistry(),
		reader:    metadata.TagReader{},
		log:       zap.NewNop(),
		processed: make(map[reflect.Type]struct{}),
		locks:     make(map[reflect.Type]*sync.Mutex),
		cache:     newConverterCache(),
	}
	e.auto.Store(true)
	for _, opt := range opts {
		opt(e)
	}

	// The chain itself and a default probe are always injectable.
	pool := []reflect.Value{reflect.ValueOf(mapper.Mapper(e))}
	if !e.hasCollaborator(reflect.TypeOf((*RuntimeProbe)(nil)).Elem()) {
		pool = append(pool, reflect.ValueOf(RuntimeProbe(StaticProbe(nil))))
	}
	e.pool = append(pool, e.pool...)

	return e
}

// addCollaborator appends v to the injection pool under its interface type
// so constructor parameters of that interface bind to it.
func (e *Engine) addCollaborator(v any) {
	if v == nil {
		return
	}
	e.pool = append(e.pool, reflect.ValueOf(v))
}

func (e *Engine) hasCollaborator(iface reflect.Type) bool {
	for _, v := range e.pool {
		if v.IsValid() && v.Type().AssignableTo(iface) {
			return true
		}
	}
	return false
}

// SetAutoDiscovery switches between implicit per-query triggering (enabled)
// and manual mode, where callers pre-register types via ProcessTypes.
func (e *Engine) SetAutoDiscovery(enabled bool) {
	e.auto.Store(enabled)
}

// ProcessTypes runs discovery for the given types and everything
// structurally reachable from them. Already processed types are skipped.
// The first configuration error aborts the call; the offending type is
// still marked processed and unrelated types remain unaffected in later
// calls.
func (e *Engine) ProcessTypes(types ...reflect.Type) error {
	if len(types) == 0 {
		return nil
	}
	work := newWorklist(e)
	for _, t := range types {
		work.add(t)
	}
	return e.drain(work)
}

// SerializedType triggers discovery of t before delegating.
func (e *Engine) SerializedType(t reflect.Type) (string, error) {
	if err := e.trigger(t); err != nil {
		return "", err
	}
	return e.Wrapper.SerializedType(t)
}

// SerializedMember triggers discovery of owner before delegating.
func (e *Engine) SerializedMember(owner reflect.Type, member string) (string, error) {
	if err := e.trigger(owner); err != nil {
		return "", err
	}
	return e.Wrapper.SerializedMember(owner, member)
}

// DefaultImplementation triggers discovery of t, delegates, then triggers
// discovery of the resolved implementation as well.
func (e *Engine) DefaultImplementation(t reflect.Type) (reflect.Type, error) {
	if err := e.trigger(t); err != nil {
		return nil, err
	}
	impl, err := e.Wrapper.DefaultImplementation(t)
	if err != nil {
		return nil, err
	}
	if err := e.trigger(impl); err != nil {
		return nil, err
	}
	return impl, nil
}

// LocalConverter triggers discovery of owner before delegating.
func (e *Engine) LocalConverter(owner reflect.Type, field string) (mapper.Converter, error) {
	if err := e.trigger(owner); err != nil {
		return nil, err
	}
	return e.Wrapper.LocalConverter(owner, field)
}

// trigger runs discovery for t unless manual mode is active.
func (e *Engine) trigger(t reflect.Type) error {
	if t == nil || !e.auto.Load() {
		return nil
	}
	return e.ProcessTypes(t)
}

// drain processes pending types until the worklist is empty.
func (e *Engine) drain(work *worklist) error {
	for {
		t, ok := work.next()
		if !ok {
			return nil
		}
		if err := e.processType(t, work); err != nil {
			return err
		}
	}
}

// processType applies all metadata effects for one type inside a critical
// section scoped to that type alone. The type enters the processed set
// unconditionally, whether the section succeeds or fails, so a failed type
// is never retried and never blocks unrelated types.
func (e *Engine) processType(t reflect.Type, work *worklist) (err error) {
	lock := e.lockFor(t)
	lock.Lock()
	defer lock.Unlock()

	if e.isProcessed(t) {
		return nil
	}
	defer func() {
		e.markProcessed(t)
		e.log.Debug("type processed", zap.String("type", t.String()), zap.Bool("failed", err != nil))
	}()

	if primitive(t) {
		return nil
	}

	visited := make(map[reflect.Type]struct{})
	work.addReachable(t, visited)

	meta, rerr := e.reader.TypeMeta(t)
	if rerr != nil {
		return &ConfigError{Reason: "malformed type metadata", Type: t, Err: rerr}
	}

	for _, inc := range meta.IncludeAlso {
		work.add(inc)
	}
	if err := e.applyConverters(t, meta.Converters); err != nil {
		return err
	}
	if err := e.applyAlias(t, meta, work); err != nil {
		return err
	}
	if err := e.applyAliasType(t, meta); err != nil {
		return err
	}

	// Interfaces declare no fields; non-struct types have none to map.
	if t.Kind() != reflect.Struct {
		return nil
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		work.addReachable(field.Type, visited)

		// Unexported fields never serialize and carry no metadata.
		if field.PkgPath != "" {
			continue
		}
		if err := e.applyFieldMeta(t, field); err != nil {
			return err
		}
	}
	return nil
}

// lockFor returns the per-type lock, creating it on first use.
func (e *Engine) lockFor(t reflect.Type) *sync.Mutex {
	e.lockMu.Lock()
	defer e.lockMu.Unlock()
	lock, ok := e.locks[t]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[t] = lock
	}
	return lock
}

// isProcessed reports membership in the processed set.
func (e *Engine) isProcessed(t reflect.Type) bool {
	e.procMu.RLock()
	defer e.procMu.RUnlock()
	_, ok := e.processed[t]
	return ok
}

// markProcessed inserts t into the processed set. The set is append-only.
func (e *Engine) markProcessed(t reflect.Type) {
	e.procMu.Lock()
	defer e.procMu.Unlock()
	e.processed[t] = struct{}{}
}

// ProcessedCount returns the size of the processed set.
func (e *Engine) ProcessedCount() int {
	e.procMu.RLock()
	defer e.procMu.RUnlock()
	return len(e.processed)
}
