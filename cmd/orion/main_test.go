package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempSource(t *testing.T, source string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.orion")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("failed to write temp source: %v", err)
	}
	return path
}

// captureStdout runs fn with os.Stdout redirected and returns everything
// written to it; compileOnce's --asm/--emit-ast-json paths print via
// fmt.Print directly rather than through cli.Context's Writer.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("failed to read captured stdout: %v", err)
	}
	return string(out)
}

func TestBuildSubcommandAndBareInvocationAgree(t *testing.T) {
	path := writeTempSource(t, "fn main() {\n\tout(1)\n}\nmain()\n")

	bare := captureStdout(t, func() {
		if err := newApp().Run([]string{"orion", "--asm", path}); err != nil {
			t.Fatalf("bare invocation failed: %v", err)
		}
	})
	build := captureStdout(t, func() {
		if err := newApp().Run([]string{"orion", "build", "--asm", path}); err != nil {
			t.Fatalf("build subcommand failed: %v", err)
		}
	})

	if bare != build {
		t.Errorf("expected `orion --asm <file>` and `orion build --asm <file>` to produce identical output, got:\nbare:\n%s\nbuild:\n%s", bare, build)
	}
	if strings.Contains(bare, "call main") {
		t.Errorf("expected no literal \"call main\" in the emitted assembly, got:\n%s", bare)
	}
	if !strings.Contains(bare, "call orion_user_main") {
		t.Errorf("expected the entry point to call orion_user_main, got:\n%s", bare)
	}
}

func TestEmitASTJSONProducesValidJSONWithKindNames(t *testing.T) {
	path := writeTempSource(t, "x = 1 + 2\n")

	out := captureStdout(t, func() {
		if err := newApp().Run([]string{"orion", "build", "--emit-ast-json", path}); err != nil {
			t.Fatalf("--emit-ast-json failed: %v", err)
		}
	})

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("expected valid JSON, got error %v for:\n%s", err, out)
	}
	if decoded["kind"] != "Program" {
		t.Errorf("expected the root node's kind to be Program, got %v", decoded["kind"])
	}
	stmts, ok := decoded["Statements"].([]interface{})
	if !ok || len(stmts) != 1 {
		t.Fatalf("expected exactly one top-level statement, got %v", decoded["Statements"])
	}
	decl, ok := stmts[0].(map[string]interface{})
	if !ok || decl["kind"] != "VariableDecl" {
		t.Errorf("expected a VariableDecl node, got %v", stmts[0])
	}
}

func TestMissingSourceFileIsAUsageError(t *testing.T) {
	err := newApp().Run([]string{"orion"})
	if err == nil {
		t.Fatal("expected an error when no source file is given")
	}
	if _, ok := err.(usageError); !ok {
		t.Errorf("expected a usageError, got %T: %v", err, err)
	}
}

func TestAstToJSONRendersEnumLikeValuesAsStrings(t *testing.T) {
	path := writeTempSource(t, "x = 1 + 2\n")
	out := captureStdout(t, func() {
		if err := newApp().Run([]string{"orion", "build", "--emit-ast-json", path}); err != nil {
			t.Fatalf("--emit-ast-json failed: %v", err)
		}
	})

	var buf bytes.Buffer
	buf.WriteString(out)
	if !strings.Contains(buf.String(), `"+"`) {
		t.Errorf("expected the binary operator to render as the string \"+\", got:\n%s", buf.String())
	}
}
