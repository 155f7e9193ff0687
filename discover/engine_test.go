package discover

import (
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serialmap/serialmap/mapper"
	"github.com/serialmap/serialmap/metadata"
)

type item struct {
	N int
}

type box[T any] struct {
	Val T
}

type vessel[T any] struct {
	Inner T
}

type holder struct {
	Field box[vessel[item]]
}

type stamped struct {
	ID      string    `serial:"alias=id,attr"`
	Lines   []item    `serial:"implicit=line"`
	Hidden  string    `serial:"omit"`
	When    time.Time // excluded namespace, silently skipped
	private string    // unexported, never processed
}

type clocked struct {
	Stamp string `serial:"conv=timestamp"`
}

type linked struct {
	Next *linked
	Tags map[string][]item
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *mapper.PriorityRegistry) {
	t.Helper()
	registry := mapper.NewPriorityRegistry()
	return NewDefault(registry, opts...), registry
}

func TestClosureReachesNestedGenerics(t *testing.T) {
	e, _ := newTestEngine(t)

	require.NoError(t, e.ProcessTypes(reflect.TypeOf(holder{})))

	assert.True(t, e.isProcessed(reflect.TypeOf(holder{})))
	assert.True(t, e.isProcessed(reflect.TypeOf(box[vessel[item]]{})))
	assert.True(t, e.isProcessed(reflect.TypeOf(vessel[item]{})))
	assert.True(t, e.isProcessed(reflect.TypeOf(item{})))
}

func TestClosureExcludesStandardNamespaces(t *testing.T) {
	e, _ := newTestEngine(t)

	require.NoError(t, e.ProcessTypes(reflect.TypeOf(stamped{})))

	assert.True(t, e.isProcessed(reflect.TypeOf(stamped{})))
	assert.False(t, e.isProcessed(reflect.TypeOf(time.Time{})))
}

func TestClosureSurvivesCycles(t *testing.T) {
	e, _ := newTestEngine(t)

	require.NoError(t, e.ProcessTypes(reflect.TypeOf(linked{})))

	assert.True(t, e.isProcessed(reflect.TypeOf(linked{})))
	assert.True(t, e.isProcessed(reflect.TypeOf(item{})))
}

func TestClosureStripsPointerAndSliceShells(t *testing.T) {
	e, _ := newTestEngine(t)

	require.NoError(t, e.ProcessTypes(reflect.TypeOf([][]*item{})))

	assert.True(t, e.isProcessed(reflect.TypeOf(item{})))
}

func TestExcludedPrefixesOption(t *testing.T) {
	e, _ := newTestEngine(t, WithExcludedPrefixes("github.com/serialmap/serialmap/discover"))

	require.NoError(t, e.ProcessTypes(reflect.TypeOf(item{})))
	assert.False(t, e.isProcessed(reflect.TypeOf(item{})))
}

func TestTagEffectsApplied(t *testing.T) {
	e, _ := newTestEngine(t)
	owner := reflect.TypeOf(stamped{})

	require.NoError(t, e.ProcessTypes(owner))

	name, err := e.SerializedMember(owner, "ID")
	require.NoError(t, err)
	assert.Equal(t, "id", name)

	attrs, ok := mapper.FindStage[*mapper.AttributeStage](e)
	require.True(t, ok)
	assert.True(t, attrs.IsAttribute(owner, "ID"))

	implicits, ok := mapper.FindStage[*mapper.ImplicitCollectionStage](e)
	require.True(t, ok)
	m, ok := implicits.ImplicitCollection(owner, "Lines")
	require.True(t, ok)
	assert.Equal(t, "line", m.ItemName)
	assert.Equal(t, reflect.TypeOf(item{}), m.ItemType)

	ignoring, ok := mapper.FindStage[*mapper.ElementIgnoringStage](e)
	require.True(t, ok)
	assert.True(t, ignoring.IsOmitted(owner, "Hidden"))
	assert.False(t, ignoring.IsOmitted(owner, "private"))
}

func TestIdempotence(t *testing.T) {
	decl := metadata.ConverterDecl{Kind: "counting", Strings: []string{"a"}}
	table := tableWith(t, reflect.TypeOf(item{}), decl)

	var built counter
	kinds := NewKindRegistry()
	kinds.RegisterKind("counting", built.constructor())

	e, registry := newTestEngine(t, WithReader(table), WithKinds(kinds))

	require.NoError(t, e.ProcessTypes(reflect.TypeOf(item{})))
	require.NoError(t, e.ProcessTypes(reflect.TypeOf(item{})))

	assert.Equal(t, 1, registry.Len())
	assert.Equal(t, int64(1), built.count())
}

func TestConcurrentDiscoveryRunsEffectsOnce(t *testing.T) {
	decl := metadata.ConverterDecl{Kind: "counting"}
	table := tableWith(t, reflect.TypeOf(item{}), decl)

	var built counter
	kinds := NewKindRegistry()
	kinds.RegisterKind("counting", built.constructor())

	e, registry := newTestEngine(t, WithReader(table), WithKinds(kinds))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = e.ProcessTypes(reflect.TypeOf(item{}))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, registry.Len())
	assert.Equal(t, int64(1), built.count())
}

func TestConcurrentDiscoveryOfDistinctTypes(t *testing.T) {
	e, _ := newTestEngine(t)

	types := []reflect.Type{
		reflect.TypeOf(item{}),
		reflect.TypeOf(holder{}),
		reflect.TypeOf(stamped{}),
		reflect.TypeOf(linked{}),
	}

	var wg sync.WaitGroup
	for _, tt := range types {
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func(tt reflect.Type) {
				defer wg.Done()
				_ = e.ProcessTypes(tt)
			}(tt)
		}
	}
	wg.Wait()

	for _, tt := range types {
		assert.True(t, e.isProcessed(tt), tt.String())
	}
}

func TestManualModeSkipsTrigger(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetAutoDiscovery(false)

	owner := reflect.TypeOf(stamped{})
	name, err := e.SerializedMember(owner, "ID")
	require.NoError(t, err)

	// without discovery no alias is in force
	assert.Equal(t, "ID", name)
	assert.False(t, e.isProcessed(owner))

	// the explicit batch call still works in manual mode
	require.NoError(t, e.ProcessTypes(owner))
	name, err = e.SerializedMember(owner, "ID")
	require.NoError(t, err)
	assert.Equal(t, "id", name)
}

func TestQueryTriggersDiscovery(t *testing.T) {
	e, _ := newTestEngine(t)
	owner := reflect.TypeOf(stamped{})

	name, err := e.SerializedMember(owner, "ID")
	require.NoError(t, err)
	assert.Equal(t, "id", name)
	assert.True(t, e.isProcessed(owner))
}

type hauler interface {
	Haul()
}

type flatbed struct {
	Load []item
}

func (flatbed) Haul() {}

func TestInterfaceAliasEnqueuesImplementation(t *testing.T) {
	ifaceType := reflect.TypeOf((*hauler)(nil)).Elem()
	implType := reflect.TypeOf(flatbed{})

	reg := metadata.NewRegistry()
	reg.RegisterType("hauler", ifaceType)
	reg.Register("flatbed", flatbed{})

	table, err := metadata.NewTableReader(&metadata.TableFile{
		Types: []metadata.TypeDecl{{Type: "hauler", Alias: "hauler", Impl: "flatbed"}},
	}, reg)
	require.NoError(t, err)

	e, _ := newTestEngine(t, WithReader(table))
	require.NoError(t, e.ProcessTypes(ifaceType))

	assert.True(t, e.isProcessed(implType))

	impl, err := e.DefaultImplementation(ifaceType)
	require.NoError(t, err)
	assert.Equal(t, implType, impl)

	name, err := e.SerializedType(ifaceType)
	require.NoError(t, err)
	assert.Equal(t, "hauler", name)
}

func TestIncludeAlsoJoinsDiscovery(t *testing.T) {
	reg := metadata.NewRegistry()
	reg.Register("item", item{})
	reg.Register("flatbed", flatbed{})

	table, err := metadata.NewTableReader(&metadata.TableFile{
		Types: []metadata.TypeDecl{{Type: "item", Include: []string{"flatbed"}}},
	}, reg)
	require.NoError(t, err)

	e, _ := newTestEngine(t, WithReader(table))
	require.NoError(t, e.ProcessTypes(reflect.TypeOf(item{})))

	assert.True(t, e.isProcessed(reflect.TypeOf(flatbed{})))
}

func TestMissingCollaboratorStage(t *testing.T) {
	reg := metadata.NewRegistry()
	reg.Register("item", item{})
	table, err := metadata.NewTableReader(&metadata.TableFile{
		Types: []metadata.TypeDecl{{Type: "item", Alias: "it"}},
	}, reg)
	require.NoError(t, err)

	// chain with no alias stage at all
	e := New(mapper.Default{}, nil, WithReader(table))
	err = e.ProcessTypes(reflect.TypeOf(item{}))

	var cfg *ConfigError
	require.ErrorAs(t, err, &cfg)
	assert.Contains(t, cfg.Error(), "AliasStage")

	// a failed type is marked processed and never retried
	assert.True(t, e.isProcessed(reflect.TypeOf(item{})))
	require.NoError(t, e.ProcessTypes(reflect.TypeOf(item{})))
}

func TestFailedTypeDoesNotBlockOthers(t *testing.T) {
	reg := metadata.NewRegistry()
	reg.Register("item", item{})
	table, err := metadata.NewTableReader(&metadata.TableFile{
		Types: []metadata.TypeDecl{{Type: "item", Alias: "it"}},
	}, reg)
	require.NoError(t, err)

	e := New(mapper.Default{}, nil, WithReader(table))
	require.Error(t, e.ProcessTypes(reflect.TypeOf(item{})))

	// unrelated types keep working
	require.NoError(t, e.ProcessTypes(reflect.TypeOf(holder{})))
	assert.True(t, e.isProcessed(reflect.TypeOf(holder{})))
}

// tableWith builds a single-type table reader declaring decl on t.
func tableWith(t *testing.T, target reflect.Type, decl metadata.ConverterDecl) metadata.Reader {
	t.Helper()
	return staticReader{target: target, decl: decl}
}

// staticReader serves one converter declaration for one type.
type staticReader struct {
	target reflect.Type
	decl   metadata.ConverterDecl
}

func (r staticReader) TypeMeta(t reflect.Type) (metadata.TypeMeta, error) {
	if t == r.target {
		return metadata.TypeMeta{Converters: []metadata.ConverterDecl{r.decl}}, nil
	}
	return metadata.TypeMeta{}, nil
}

func (r staticReader) FieldMeta(reflect.Type, reflect.StructField) (metadata.FieldMeta, error) {
	return metadata.FieldMeta{}, nil
}
