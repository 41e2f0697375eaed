package cli_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/funvibe/emojc/internal/diagnostics"
	"github.com/funvibe/emojc/pkg/cli"
)

const corpusManifest = "name: corpus\nversion:\n  major: 1\n  minor: 0\n"

// TestCorpus compiles every source in the txtar corpus. File names encode
// the expectation: ok_* compiles cleanly, err_CODE_* yields a diagnostic
// with the given code.
func TestCorpus(t *testing.T) {
	archive, err := txtar.ParseFile(filepath.Join("testdata", "corpus.txtar"))
	if err != nil {
		t.Fatal(err)
	}

	for _, file := range archive.Files {
		name := strings.TrimSpace(file.Name)
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			pkgDir := filepath.Join(dir, "corpus")
			if err := os.MkdirAll(pkgDir, 0o755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(filepath.Join(pkgDir, "package.yml"), []byte(corpusManifest), 0o644); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(filepath.Join(pkgDir, "main.emojic"), file.Data, 0o644); err != nil {
				t.Fatal(err)
			}

			ctx := cli.Compile(cli.Options{SearchPath: dir, Package: "corpus"})

			switch {
			case strings.HasPrefix(name, "ok_"):
				if len(ctx.Errors) > 0 {
					t.Errorf("expected clean compile, got %v", ctx.Errors)
				}
			case strings.HasPrefix(name, "err_"):
				code := diagnostics.Code(strings.Split(name, "_")[1])
				found := false
				for _, e := range ctx.Errors {
					if e.Code == code {
						found = true
					}
				}
				if !found {
					t.Errorf("expected a %s diagnostic, got %v", code, ctx.Errors)
				}
			default:
				t.Fatalf("corpus file %s has no expectation prefix", name)
			}
		})
	}
}
