package analyzer_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/emojc/internal/diagnostics"
	"github.com/funvibe/emojc/internal/pipeline"
	"github.com/funvibe/emojc/internal/typesystem"
	"github.com/funvibe/emojc/internal/writer"
	"github.com/funvibe/emojc/pkg/cli"
)

const manifest = "name: mypkg\nversion:\n  major: 1\n  minor: 0\n"

// compileSource writes one package with the given source and compiles it.
func compileSource(t *testing.T, source string) *pipeline.PipelineContext {
	t.Helper()
	dir := t.TempDir()
	pkgDir := filepath.Join(dir, "mypkg")
	require.NoError(t, os.MkdirAll(pkgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pkgDir, "package.yml"), []byte(manifest), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(pkgDir, "main.emojic"), []byte(source), 0o644))
	return cli.Compile(cli.Options{SearchPath: dir, Package: "mypkg"})
}

func errorCodes(ctx *pipeline.PipelineContext) []diagnostics.Code {
	var codes []diagnostics.Code
	for _, e := range ctx.Errors {
		codes = append(codes, e.Code)
	}
	return codes
}

func hasWords(f *typesystem.Function, wanted ...writer.Instruction) bool {
	if f == nil || f.Writer == nil {
		return false
	}
	words := f.Writer.Words()
	found := make(map[writer.Instruction]bool)
	for _, w := range words {
		found[w] = true
	}
	for _, want := range wanted {
		if !found[want] {
			return false
		}
	}
	return true
}

func TestArithmeticReturn(t *testing.T) {
	ctx := compileSource(t, `
🏁 ➡ 🚂 🍇
	🍎 ➕ 2 ✖ 3 4
🍉
`)
	require.Empty(t, ctx.Errors, "codes: %v", errorCodes(ctx))
	start := ctx.Units[0].Start
	require.NotNil(t, start)
	assert.True(t, hasWords(start, writer.InsReturn, writer.InsAddInteger, writer.InsMultiplyInteger),
		"expected add and multiply in %v", start.Writer.Words())
}

func TestMissingReturnIsAnError(t *testing.T) {
	ctx := compileSource(t, `
🏁 ➡ 🚂 🍇
🍉
`)
	require.NotEmpty(t, ctx.Errors)
	assert.Contains(t, errorCodes(ctx), diagnostics.ErrI003)
}

func TestConditionalReturnOnAllBranches(t *testing.T) {
	ctx := compileSource(t, `
🏁 ➡ 🚂 🍇
	🍊 👍 🍇
		🍎 1
	🍉 🍓 🍇
		🍎 2
	🍉
🍉
`)
	assert.Empty(t, ctx.Errors, "codes: %v", errorCodes(ctx))
}

func TestConditionalReturnWithoutElseFails(t *testing.T) {
	ctx := compileSource(t, `
🏁 ➡ 🚂 🍇
	🍊 👍 🍇
		🍎 1
	🍉
🍉
`)
	assert.Contains(t, errorCodes(ctx), diagnostics.ErrI003,
		"a branch that may not run cannot satisfy the definite return rule")
}

func TestOptionalBindingUnwraps(t *testing.T) {
	ctx := compileSource(t, `
🏁 🍇
	🍰 x 🍬🚂
	🍮 x 5
	🍊 🍦 y x 🍇
		🍦 z ➕ y 1
	🍉
🍉
`)
	assert.Empty(t, ctx.Errors, "codes: %v", errorCodes(ctx))
}

func TestBindingNotVisibleOutsideBranch(t *testing.T) {
	ctx := compileSource(t, `
🏁 🍇
	🍰 x 🍬🚂
	🍮 x 5
	🍊 🍦 y x 🍇
	🍉
	🍦 z ➕ y 1
🍉
`)
	assert.Contains(t, errorCodes(ctx), diagnostics.ErrN002, "y is scoped to the then-branch")
}

func TestUninitializedVariableRejected(t *testing.T) {
	ctx := compileSource(t, `
🏁 ➡ 🚂 🍇
	🍰 x 🚂
	🍎 x
🍉
`)
	assert.Contains(t, errorCodes(ctx), diagnostics.ErrI001)
}

func TestDeadCodeAfterReturn(t *testing.T) {
	ctx := compileSource(t, `
🏁 ➡ 🚂 🍇
	🍎 1
	🍦 x 2
🍉
`)
	assert.Contains(t, errorCodes(ctx), diagnostics.ErrI005)
}

func TestListLiteralInference(t *testing.T) {
	ctx := compileSource(t, `
🏁 🍇
	🍦 list 🍨 1 2 3 🍆
	🍰 strs 🍨🐚🔡
	🍮 strs 🍨 🍆
🍉
`)
	assert.Empty(t, ctx.Errors, "codes: %v", errorCodes(ctx))
	for _, w := range ctx.Warnings {
		assert.NotEqual(t, diagnostics.WarnW004, w.Code,
			"homogeneous and expected literals must not be ambiguous")
	}
}

func TestProtocolConformanceWithBoxing(t *testing.T) {
	ctx := compileSource(t, `
🐊 🖨 🍇
	🐖 🔊 p ⚪ ➡ ⚪
🍉
🐇 🐱 🍇
	🐊 🖨
	🐖 🔊 p 🚂 ➡ 🚂 🍇
		🍎 p
	🍉
🍉
🏁 🍇 🍉
`)
	require.Empty(t, ctx.Errors, "codes: %v", errorCodes(ctx))

	unit := ctx.Units[0]
	require.Len(t, unit.Classes, 1)
	require.Len(t, unit.Protocols, 1)
	class := unit.Classes[0]
	table := class.ProtocolTable(unit.Protocols[0].Index())
	require.Len(t, table, 1)
	layer := table[0]
	require.NotNil(t, layer)
	assert.Equal(t, typesystem.FunctionBoxingLayer, layer.Kind)
	assert.True(t, hasWords(layer, writer.InsUnbox, writer.InsBox),
		"the layer adapts both the argument and the return: %v", layer.Writer.Words())
}

func TestOverrideContravarianceViolation(t *testing.T) {
	ctx := compileSource(t, `
🐇 🦁 🍇
	🐖 🔊 p 🚂 ➡ 🚂 🍇
		🍎 p
	🍉
🍉
🐇 🐱 🦁 🍇
	✒ 🐖 🔊 p 🔡 ➡ 🚂 🍇
		🍎 0
	🍉
🍉
🏁 🍇 🍉
`)
	assert.Contains(t, errorCodes(ctx), diagnostics.ErrT008,
		"🔡 is not contravariant with 🚂")
}

func TestMissingInstanceVariableInitialization(t *testing.T) {
	ctx := compileSource(t, `
🐇 🦝 🍇
	🍰 v 🚂
	🐈 🆕 🍇
		🍊 👍 🍇
			🍮 v 5
		🍉
	🍉
🍉
🐇 🐸 🍇
	🍰 w 🚂
	🐈 🆕 🍇
		🍮 w 1
	🍉
🍉
🏁 🍇 🍉
`)
	assert.Contains(t, errorCodes(ctx), diagnostics.ErrI002)

	// The sibling class keeps compiling.
	unit := ctx.Units[0]
	var frogInit *typesystem.Function
	for _, f := range unit.Functions {
		if f.Owner != nil && f.Owner.Name() == "🐸" {
			frogInit = f
		}
	}
	require.NotNil(t, frogInit)
	assert.True(t, hasWords(frogInit, writer.InsReturn, writer.InsGetThis),
		"the well-formed sibling initializer compiles")
}

func TestMethodCallOnClass(t *testing.T) {
	ctx := compileSource(t, `
🐇 🐱 🍇
	🐖 🔊 ➡ 🚂 🍇
		🍎 42
	🍉
	🐈 🆕 🍇 🍉
🍉
🏁 ➡ 🚂 🍇
	🍦 cat 🔷🐱🆕
	🍎 🔊 cat
🍉
`)
	require.Empty(t, ctx.Errors, "codes: %v", errorCodes(ctx))
	start := ctx.Units[0].Start
	assert.True(t, hasWords(start, writer.InsNewObject, writer.InsDispatchMethod),
		"instantiation and dynamic dispatch: %v", start.Writer.Words())
}

func TestWhileAndIncrement(t *testing.T) {
	ctx := compileSource(t, `
🏁 ➡ 🚂 🍇
	🍮 i 0
	🔁 ◀ i 10 🍇
		🍫 i
	🍉
	🍎 i
🍉
`)
	require.Empty(t, ctx.Errors, "codes: %v", errorCodes(ctx))
	start := ctx.Units[0].Start
	assert.True(t, hasWords(start, writer.InsRepeatWhile, writer.InsLessInteger, writer.InsIncrement),
		"words: %v", start.Writer.Words())
}

func TestForInOverList(t *testing.T) {
	ctx := compileSource(t, `
🏁 🍇
	🍦 list 🍨 1 2 3 🍆
	🔂 e list 🍇
		🍦 d ➕ e 1
	🍉
🍉
`)
	require.Empty(t, ctx.Errors, "codes: %v", errorCodes(ctx))
	assert.True(t, hasWords(ctx.Units[0].Start, writer.InsForInList))
}

func TestForInOverRange(t *testing.T) {
	ctx := compileSource(t, `
🏁 🍇
	🔂 i ⏩ 0 10 🍇
	🍉
🍉
`)
	require.Empty(t, ctx.Errors, "codes: %v", errorCodes(ctx))
	assert.True(t, hasWords(ctx.Units[0].Start, writer.InsForInRange))
}

func TestForInRejectsNonIterable(t *testing.T) {
	ctx := compileSource(t, `
🏁 🍇
	🔂 e 5 🍇
	🍉
🍉
`)
	assert.Contains(t, errorCodes(ctx), diagnostics.ErrT001)
}

func TestClosureCapturesVariable(t *testing.T) {
	ctx := compileSource(t, `
🏁 ➡ 🚂 🍇
	🍦 base 10
	🍦 add 🍇 x 🚂 ➡ 🚂
		🍎 ➕ x base
	🍉
	🍎 🍭 add 5
🍉
`)
	require.Empty(t, ctx.Errors, "codes: %v", errorCodes(ctx))
	start := ctx.Units[0].Start
	assert.True(t, hasWords(start, writer.InsClosure, writer.InsExecuteCallable),
		"words: %v", start.Writer.Words())
}

func TestIntegerLiteralWidth(t *testing.T) {
	ctx := compileSource(t, `
🏁 ➡ 🚂 🍇
	🍎 ➕ 5000000000 1
🍉
`)
	require.Empty(t, ctx.Errors, "codes: %v", errorCodes(ctx))
	assert.True(t, hasWords(ctx.Units[0].Start, writer.InsGet64Integer),
		"literals beyond 32 bits use the 64-bit load")
}

func TestMutationOfConstantRejected(t *testing.T) {
	ctx := compileSource(t, `
🏁 🍇
	🍦 x 5
	🍮 x 6
🍉
`)
	assert.Contains(t, errorCodes(ctx), diagnostics.ErrM002)
}

func TestUnusedMutableWarns(t *testing.T) {
	ctx := compileSource(t, `
🏁 🍇
	🍰 x 🍬🚂
🍉
`)
	assert.Empty(t, ctx.Errors)
	found := false
	for _, w := range ctx.Warnings {
		if w.Code == diagnostics.WarnW001 {
			found = true
		}
	}
	assert.True(t, found, "never-mutated mutable variable warns")
}

func TestCastToUnrelatedClassRejected(t *testing.T) {
	ctx := compileSource(t, `
🐇 🐱 🍇
	🐈 🆕 🍇 🍉
🍉
🐇 🐶 🍇
	🐈 🆕 🍇 🍉
🍉
🏁 🍇
	🍦 cat 🔷🐱🆕
	🍦 dog 🔲 cat 🐶
🍉
`)
	assert.Contains(t, errorCodes(ctx), diagnostics.ErrT002)
}
