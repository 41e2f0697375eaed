package typesystem

import (
	"fmt"

	"github.com/funvibe/emojc/internal/token"
)

// Protocol is a set of method requirements. Values typed by a protocol are
// always stored boxed.
type Protocol struct {
	TypeDef

	// index is the dense protocol index; it orders multiprotocol
	// constituents and names the protocol's dispatch table at runtime.
	index int

	// usesSelf is set when a method signature mentions 🐕. Such protocols
	// may only be used as generic constraints.
	usesSelf bool
}

func NewProtocol(name, pkg, doc string, exported bool, pos token.SourcePosition) *Protocol {
	return &Protocol{TypeDef: NewTypeDef(name, pkg, doc, exported, pos)}
}

func (p *Protocol) Index() int        { return p.index }
func (p *Protocol) UsesSelf() bool    { return p.usesSelf }
func (p *Protocol) MarkUsesSelf()     { p.usesSelf = true }

// AddMethodRequirement registers a method requirement. The requirement's
// vtable index within the protocol table is its declaration order.
func (p *Protocol) AddMethodRequirement(f *Function) error {
	if _, dup := p.methods[f.Name]; dup {
		return fmt.Errorf("method %s is already declared on protocol %s", f.Name, p.name)
	}
	f.setVTI(len(p.methodList))
	p.methods[f.Name] = f
	p.methodList = append(p.methodList, f)
	return nil
}
