package analyzer

import (
	"github.com/funvibe/emojc/internal/config"
	"github.com/funvibe/emojc/internal/diagnostics"
	"github.com/funvibe/emojc/internal/token"
	"github.com/funvibe/emojc/internal/typesystem"
	"github.com/funvibe/emojc/internal/writer"
)

// bridge adapts the storage form of an already emitted expression to the
// expectation. The producing instructions were written after point; the
// minimal adapter sequence is inserted before them. Returns the type as it
// now presents to the consumer.
func (a *FunctionAnalyser) bridge(produced typesystem.Type, expectation TypeExpectation,
	point *writer.InsertionPoint, pos token.SourcePosition) (typesystem.Type, error) {
	if expectation.typ == nil {
		return produced, nil
	}
	expected := *expectation.typ

	if !produced.CompatibleTo(expected, a.typeCtx, expectation.inference) {
		return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrT001, pos,
			"%s is not compatible to the expected type %s", produced.String(), expected.String())
	}

	from := produced.StorageType()
	to := expected.StorageType()
	if from == to {
		return produced, nil
	}

	switch {
	case from == typesystem.StorageSimple && to == typesystem.StorageBox:
		if produced.Size() > config.MaxBoxedValueWords {
			return typesystem.Type{}, diagnostics.Internal(
				"cannot box type %s: size %d exceeds the box capacity", produced.String(), produced.Size())
		}
		point.Insert(writer.InsBox, writer.Instruction(a.registry.BoxIdentifierFor(produced)))

	case from == typesystem.StorageSimpleOptional && to == typesystem.StorageBox:
		if produced.Size() > config.MaxBoxedValueWords {
			return typesystem.Type{}, diagnostics.Internal(
				"cannot box type %s: size %d exceeds the box capacity", produced.String(), produced.Size())
		}
		point.Insert(writer.InsSimpleOptionalToBox,
			writer.Instruction(a.registry.BoxIdentifierFor(produced.CopyWithoutOptional())))

	case from == typesystem.StorageBox && to == typesystem.StorageSimpleOptional:
		point.Insert(writer.InsBoxToSimpleOptional, writer.Instruction(expected.Size()))

	case from == typesystem.StorageBox && to == typesystem.StorageSimple:
		point.Insert(writer.InsUnbox, writer.Instruction(expected.Size()))

	case from == typesystem.StorageSimple && to == typesystem.StorageSimpleOptional:
		point.Insert(writer.InsSimpleOptionalProduce)

	default:
		return typesystem.Type{}, diagnostics.Internal(
			"no storage bridge from %s to %s", from.String(), to.String())
	}

	adapted := produced
	if expected.Optional() {
		adapted = adapted.Optionalized()
	}
	return adapted, nil
}
