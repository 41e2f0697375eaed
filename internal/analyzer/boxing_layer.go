package analyzer

import (
	"github.com/funvibe/emojc/internal/diagnostics"
	"github.com/funvibe/emojc/internal/typesystem"
	"github.com/funvibe/emojc/internal/writer"
)

// BuildBoxingLayerBody mechanically builds the body of a boxing layer: the
// arguments are taken from their slots and adapted to the destination's
// storage forms, the underlying function is dispatched, and the result is
// adapted back to the form the protocol expects.
func BuildBoxingLayerBody(layer *typesystem.Function, registry *typesystem.Registry) error {
	dest := layer.Destination
	if dest == nil {
		return diagnostics.Internal("boxing layer %s has no destination", layer.String())
	}
	w := writer.NewFunctionWriter()
	layer.Writer = w

	ctx := typesystem.NewTypeContext(layer.OwningType)

	w.WriteInstruction(writer.InsReturn)
	destReturn := dest.ReturnType.ResolveOn(ctx, true)
	if err := writeStorageAdapter(w, destReturn, layer.ReturnType, registry); err != nil {
		return err
	}

	switch dest.Kind {
	case typesystem.FunctionObjectMethod:
		w.WriteInstruction(writer.InsDispatchMethod, writer.Instruction(dest.VTI()))
	case typesystem.FunctionValueTypeMethod:
		w.WriteInstruction(writer.InsCallContextedFunction, writer.Instruction(dest.VTI()))
	default:
		w.WriteInstruction(writer.InsExecuteCallable)
	}
	w.WriteInstruction(writer.InsGetThis)

	for i, layerParam := range layer.Parameters {
		destParam := dest.Parameters[i].Type.ResolveOn(ctx, true)
		if err := writeStorageAdapter(w, layerParam.Type, destParam, registry); err != nil {
			return err
		}
		w.WriteInstruction(writer.InsCopySingleStack, writer.Instruction(i))
	}

	layer.MarkUsed()
	registry.EnqueueFunction(layer)
	return nil
}

// writeStorageAdapter prepends the storage conversion from the form a
// value is produced in to the form the consumer expects.
func writeStorageAdapter(w *writer.FunctionWriter, from, to typesystem.Type, registry *typesystem.Registry) error {
	fromStorage := from.StorageType()
	toStorage := to.StorageType()
	if fromStorage == toStorage {
		return nil
	}
	switch {
	case fromStorage == typesystem.StorageSimple && toStorage == typesystem.StorageBox:
		w.WriteInstruction(writer.InsBox, writer.Instruction(registry.BoxIdentifierFor(from)))
	case fromStorage == typesystem.StorageSimpleOptional && toStorage == typesystem.StorageBox:
		w.WriteInstruction(writer.InsSimpleOptionalToBox,
			writer.Instruction(registry.BoxIdentifierFor(from.CopyWithoutOptional())))
	case fromStorage == typesystem.StorageBox && toStorage == typesystem.StorageSimple:
		w.WriteInstruction(writer.InsUnbox, writer.Instruction(to.Size()))
	case fromStorage == typesystem.StorageBox && toStorage == typesystem.StorageSimpleOptional:
		w.WriteInstruction(writer.InsBoxToSimpleOptional, writer.Instruction(to.Size()))
	case fromStorage == typesystem.StorageSimple && toStorage == typesystem.StorageSimpleOptional:
		w.WriteInstruction(writer.InsSimpleOptionalProduce)
	default:
		return diagnostics.Internal("no storage adapter from %s to %s", fromStorage.String(), toStorage.String())
	}
	return nil
}
