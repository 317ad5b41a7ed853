package schema

import "strings"

// ContainerKind identifies a nesting datatype keyword.
type ContainerKind int

const (
	ContainerList ContainerKind = iota
	ContainerStruct
)

func (k ContainerKind) String() string {
	if k == ContainerList {
		return "list"
	}
	return "struct"
}

// registry maps case-insensitive type names to their canonical kind.
// Exactly one of scalar/container is meaningful per entry.
type entry struct {
	scalar    ScalarKind
	container ContainerKind
	nested    bool
}

var registry = map[string]entry{
	// containers
	"array":  {container: ContainerList, nested: true},
	"list":   {container: ContainerList, nested: true},
	"struct": {container: ContainerStruct, nested: true},
	// canonical primitives
	"int8":    {scalar: Int8},
	"int16":   {scalar: Int16},
	"int32":   {scalar: Int32},
	"int64":   {scalar: Int64},
	"uint8":   {scalar: UInt8},
	"uint16":  {scalar: UInt16},
	"uint32":  {scalar: UInt32},
	"uint64":  {scalar: UInt64},
	"float32": {scalar: Float32},
	"float64": {scalar: Float64},
	"utf8":    {scalar: Utf8},
	// shorthands
	"float":   {scalar: Float64},
	"real":    {scalar: Float64},
	"int":     {scalar: Int64},
	"integer": {scalar: Int64},
	"string":  {scalar: Utf8},
}

// Known reports whether name resolves to any supported datatype.
func Known(name string) bool {
	_, ok := registry[strings.ToLower(name)]
	return ok
}

// LookupScalar resolves a primitive type name or shorthand alias.
func LookupScalar(name string) (ScalarKind, bool) {
	e, ok := registry[strings.ToLower(name)]
	if !ok || e.nested {
		return 0, false
	}
	return e.scalar, true
}

// LookupContainer resolves a container keyword (list/array/struct).
func LookupContainer(name string) (ContainerKind, bool) {
	e, ok := registry[strings.ToLower(name)]
	if !ok || !e.nested {
		return 0, false
	}
	return e.container, true
}
