package typesystem

import (
	"fmt"
	"strings"

	"github.com/funvibe/emojc/internal/config"
)

// Registry is the per-compilation store of type definitions. Classes,
// value types and protocols are registered in declaration order and receive
// dense indices used as type IDs at runtime. The registry also assigns box
// identifiers and owns the queue of functions awaiting code generation.
//
// A registry is passed explicitly so multiple compilations can run in
// separate registries without shared state.
type Registry struct {
	classes    []*Class
	valueTypes []*ValueType
	protocols  []*Protocol

	boxIDs    map[string]int
	nextBoxID int

	// PureFunctions numbers value-type methods and free functions.
	PureFunctions PureFunctionVTIProvider

	// strings is the append-only interning pool for string literals.
	strings      []string
	stringLookup map[string]int

	queue []*Function
}

// InternString adds a literal to the string pool and returns its index.
// Interning the same literal twice yields the same index.
func (r *Registry) InternString(s string) int {
	if i, ok := r.stringLookup[s]; ok {
		return i
	}
	i := len(r.strings)
	r.strings = append(r.strings, s)
	r.stringLookup[s] = i
	return i
}

// Strings returns the string pool in index order.
func (r *Registry) Strings() []string { return r.strings }

func NewRegistry() *Registry {
	return &Registry{
		boxIDs:       make(map[string]int),
		nextBoxID:    config.BoxIDSymbol + 1,
		stringLookup: make(map[string]int),
	}
}

func (r *Registry) RegisterClass(c *Class) {
	c.index = len(r.classes)
	r.classes = append(r.classes, c)
}

func (r *Registry) RegisterValueType(v *ValueType) {
	v.index = len(r.valueTypes)
	r.valueTypes = append(r.valueTypes, v)
}

func (r *Registry) RegisterProtocol(p *Protocol) {
	p.index = len(r.protocols)
	r.protocols = append(r.protocols, p)
}

func (r *Registry) Classes() []*Class        { return r.classes }
func (r *Registry) ValueTypes() []*ValueType { return r.valueTypes }
func (r *Registry) Protocols() []*Protocol   { return r.protocols }

// boxKey builds the canonical name of a type's storage shape. Two types
// with identical behavior produce identical keys.
func (t Type) boxKey() string {
	var sb strings.Builder
	switch t.kind {
	case TypeClass:
		// all class instances share the object shape
		return "object"
	case TypeSomeobject:
		return "object"
	case TypeValueType:
		if t.valueType.Primitive() {
			return fmt.Sprintf("primitive:%d", t.valueType.PrimitiveBoxID())
		}
		sb.WriteString(fmt.Sprintf("vt:%d", t.valueType.Index()))
	case TypeEnum:
		sb.WriteString(fmt.Sprintf("enum:%s.%s", t.enum.PackageName(), t.enum.Name()))
	case TypeCallable:
		sb.WriteString("callable")
	default:
		sb.WriteString(t.kind.String())
	}
	for _, a := range t.genericArguments {
		sb.WriteString("<" + a.boxKey() + ">")
	}
	return sb.String()
}

// BoxIdentifierFor returns the orderable box identifier of the type's
// storage shape, assigning a fresh one on first encounter. The identifier
// is stable for the rest of the compilation. Primitives carry their
// ABI-fixed identifiers.
func (r *Registry) BoxIdentifierFor(t Type) int {
	if t.kind == TypeValueType && t.valueType.Primitive() {
		return t.valueType.PrimitiveBoxID()
	}
	key := t.boxKey()
	if id, ok := r.boxIDs[key]; ok {
		return id
	}
	id := r.nextBoxID
	r.nextBoxID++
	r.boxIDs[key] = id
	return id
}

// EnqueueFunction queues a function for the code generator. Completed
// functions sit here until the generator drains the queue.
func (r *Registry) EnqueueFunction(f *Function) {
	r.queue = append(r.queue, f)
}

// DrainQueue returns and clears the pending functions.
func (r *Registry) DrainQueue() []*Function {
	q := r.queue
	r.queue = nil
	return q
}

// QueueLen returns the number of functions waiting for code generation.
func (r *Registry) QueueLen() int { return len(r.queue) }
