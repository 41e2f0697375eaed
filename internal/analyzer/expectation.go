package analyzer

import (
	"github.com/funvibe/emojc/internal/typesystem"
)

// TypeExpectation is threaded into every sub-expression parse. It carries
// the desired type if any, whether the caller wants a reference, whether a
// temporary value is acceptable, and the inference collector active while
// call arguments are parsed.
type TypeExpectation struct {
	typ            *typesystem.Type
	wantsReference bool
	allowTemporary bool
	inference      *typesystem.Inference
}

// NoExpectation parses the sub-expression without constraining it.
func NoExpectation() TypeExpectation {
	return TypeExpectation{allowTemporary: true}
}

// Expect requires the sub-expression to produce a value compatible to t.
func Expect(t typesystem.Type) TypeExpectation {
	return TypeExpectation{typ: &t, allowTemporary: true}
}

// ExpectInferring requires compatibility to t while recording candidates
// for unbound generic parameters in inf.
func ExpectInferring(t typesystem.Type, inf *typesystem.Inference) TypeExpectation {
	return TypeExpectation{typ: &t, allowTemporary: true, inference: inf}
}

// ExpectReference asks for a mutable reference to the value, used for
// mutating value-type method receivers.
func ExpectReference(t typesystem.Type) TypeExpectation {
	return TypeExpectation{typ: &t, wantsReference: true}
}

// Type returns the expected type, or nil.
func (e TypeExpectation) Type() *typesystem.Type { return e.typ }

func (e TypeExpectation) WantsReference() bool { return e.wantsReference }
