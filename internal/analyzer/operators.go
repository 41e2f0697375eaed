package analyzer

import (
	"github.com/funvibe/emojc/internal/packages"
	"github.com/funvibe/emojc/internal/parser"
	"github.com/funvibe/emojc/internal/typesystem"
	"github.com/funvibe/emojc/internal/writer"
)

// primitiveOp describes an operator emoji specialized to a builtin
// instruction for a primitive receiver.
type primitiveOp struct {
	instruction writer.Instruction
	// operand is the required right-hand type.
	operand typesystem.Type
	// result of the operation.
	result typesystem.Type
	// unary operations take no right-hand operand.
	unary bool
}

// primitiveOperator resolves an operator emoji against a primitive
// receiver type. Operator methods on primitives compile to builtin
// arithmetic, logical and comparison instructions instead of dispatches.
func primitiveOperator(name string, recv typesystem.Type, b *packages.Builtins) (primitiveOp, bool) {
	if recv.Optional() || recv.Kind() != typesystem.TypeValueType || !recv.ValueType().Primitive() {
		return primitiveOp{}, false
	}
	if len(name) == 0 {
		return primitiveOp{}, false
	}
	op := []rune(name)[0]

	switch {
	case recv.IdenticalTo(b.Integer, typesystem.TypeContext{}, nil):
		switch op {
		case parser.OpAdd:
			return primitiveOp{writer.InsAddInteger, b.Integer, b.Integer, false}, true
		case parser.OpSubtract:
			return primitiveOp{writer.InsSubtractInteger, b.Integer, b.Integer, false}, true
		case parser.OpMultiply:
			return primitiveOp{writer.InsMultiplyInteger, b.Integer, b.Integer, false}, true
		case parser.OpDivide:
			return primitiveOp{writer.InsDivideInteger, b.Integer, b.Integer, false}, true
		case parser.OpRemainder:
			return primitiveOp{writer.InsRemainderInteger, b.Integer, b.Integer, false}, true
		case parser.OpLess:
			return primitiveOp{writer.InsLessInteger, b.Integer, b.Boolean, false}, true
		case parser.OpGreater:
			return primitiveOp{writer.InsGreaterInteger, b.Integer, b.Boolean, false}, true
		case parser.OpLessEq:
			return primitiveOp{writer.InsLessOrEqualInteger, b.Integer, b.Boolean, false}, true
		case parser.OpGreaterEq:
			return primitiveOp{writer.InsGreaterOrEqualInteger, b.Integer, b.Boolean, false}, true
		case parser.OpEqual:
			return primitiveOp{writer.InsEqualPrimitive, b.Integer, b.Boolean, false}, true
		case parser.OpBinaryAnd:
			return primitiveOp{writer.InsBinaryAndInteger, b.Integer, b.Integer, false}, true
		case parser.OpBinaryOr:
			return primitiveOp{writer.InsBinaryOrInteger, b.Integer, b.Integer, false}, true
		case parser.OpBinaryXor:
			return primitiveOp{writer.InsBinaryXorInteger, b.Integer, b.Integer, false}, true
		case parser.OpShiftLeft:
			return primitiveOp{writer.InsShiftLeftInteger, b.Integer, b.Integer, false}, true
		case parser.OpShiftRight:
			return primitiveOp{writer.InsShiftRightInteger, b.Integer, b.Integer, false}, true
		case parser.OpNot:
			return primitiveOp{writer.InsBinaryNotInteger, typesystem.Type{}, b.Integer, true}, true
		}

	case recv.IdenticalTo(b.Double, typesystem.TypeContext{}, nil):
		switch op {
		case parser.OpAdd:
			return primitiveOp{writer.InsAddDouble, b.Double, b.Double, false}, true
		case parser.OpSubtract:
			return primitiveOp{writer.InsSubtractDouble, b.Double, b.Double, false}, true
		case parser.OpMultiply:
			return primitiveOp{writer.InsMultiplyDouble, b.Double, b.Double, false}, true
		case parser.OpDivide:
			return primitiveOp{writer.InsDivideDouble, b.Double, b.Double, false}, true
		case parser.OpRemainder:
			return primitiveOp{writer.InsRemainderDouble, b.Double, b.Double, false}, true
		case parser.OpLess:
			return primitiveOp{writer.InsLessDouble, b.Double, b.Boolean, false}, true
		case parser.OpGreater:
			return primitiveOp{writer.InsGreaterDouble, b.Double, b.Boolean, false}, true
		case parser.OpLessEq:
			return primitiveOp{writer.InsLessOrEqualDouble, b.Double, b.Boolean, false}, true
		case parser.OpGreaterEq:
			return primitiveOp{writer.InsGreaterOrEqualDouble, b.Double, b.Boolean, false}, true
		case parser.OpEqual:
			return primitiveOp{writer.InsEqualDouble, b.Double, b.Boolean, false}, true
		}

	case recv.IdenticalTo(b.Boolean, typesystem.TypeContext{}, nil):
		switch op {
		case parser.OpAnd:
			return primitiveOp{writer.InsAndBoolean, b.Boolean, b.Boolean, false}, true
		case parser.OpOr:
			return primitiveOp{writer.InsOrBoolean, b.Boolean, b.Boolean, false}, true
		case parser.OpNot:
			return primitiveOp{writer.InsInvertBoolean, typesystem.Type{}, b.Boolean, true}, true
		case parser.OpEqual:
			return primitiveOp{writer.InsEqualPrimitive, b.Boolean, b.Boolean, false}, true
		}

	case recv.IdenticalTo(b.Symbol, typesystem.TypeContext{}, nil):
		if op == parser.OpEqual {
			return primitiveOp{writer.InsEqualPrimitive, b.Symbol, b.Boolean, false}, true
		}
	}
	return primitiveOp{}, false
}

// parsePrimitiveOperator emits the builtin instruction, the buffered
// receiver and, for binary operators, the right-hand operand.
func (a *FunctionAnalyser) parsePrimitiveOperator(op primitiveOp, recv typesystem.Type, buf *writer.FunctionWriter) (typesystem.Type, error) {
	a.writer.WriteInstruction(op.instruction)
	a.appendBuffer(buf)
	if !op.unary {
		if _, err := a.parseExpression(Expect(op.operand)); err != nil {
			return typesystem.Type{}, err
		}
	}
	return op.result, nil
}
