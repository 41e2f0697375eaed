package diagnostics

// Code classifies a diagnostic. The letter encodes the category:
// L lexical, N name resolution, T type mismatch, I initialization and
// control flow, M access and mutation, C capacity, X internal.
type Code string

const (
	// Lexical / syntax-adjacent
	ErrL001 Code = "L001" // unexpected token
	ErrL002 Code = "L002" // unterminated literal
	ErrL003 Code = "L003" // bad escape sequence
	ErrL004 Code = "L004" // unexpected end of file

	// Name resolution
	ErrN001 Code = "N001" // unknown type
	ErrN002 Code = "N002" // unknown variable
	ErrN003 Code = "N003" // duplicate declaration
	ErrN004 Code = "N004" // type already defined
	ErrN005 Code = "N005" // unknown method or initializer
	ErrN006 Code = "N006" // wrong namespace

	// Type mismatch
	ErrT001 Code = "T001" // incompatible assignment or argument
	ErrT002 Code = "T002" // bad cast
	ErrT003 Code = "T003" // protocol method missing or mismatched
	ErrT004 Code = "T004" // generic argument violates constraint
	ErrT005 Code = "T005" // too many or too few generic arguments
	ErrT006 Code = "T006" // type inference failed
	ErrT007 Code = "T007" // self type not allowed here
	ErrT008 Code = "T008" // override contract violated

	// Initialization / control flow
	ErrI001 Code = "I001" // variable possibly uninitialized
	ErrI002 Code = "I002" // instance variable not initialized on all paths
	ErrI003 Code = "I003" // explicit return missing
	ErrI004 Code = "I004" // super initializer missing or misplaced
	ErrI005 Code = "I005" // dead code after return
	ErrI006 Code = "I006" // required initializer not implemented

	// Access / mutation
	ErrM001 Code = "M001" // private or protected violation
	ErrM002 Code = "M002" // mutation of constant
	ErrM003 Code = "M003" // mutation of immutable receiver
	ErrM004 Code = "M004" // mutating method without mutating marker

	// Capacity
	ErrC001 Code = "C001" // too many parameters
	ErrC002 Code = "C002" // too many generic arguments
	ErrC003 Code = "C003" // too many packages
	ErrC004 Code = "C004" // value too large to box

	// Internal invariant violation. Fatal.
	ErrX001 Code = "X001"

	// Warnings
	WarnW001 Code = "W001" // mutable variable never mutated
	WarnW002 Code = "W002" // superfluous cast
	WarnW003 Code = "W003" // deprecated function called
	WarnW004 Code = "W004" // ambiguous common type
)
