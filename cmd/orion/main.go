// Command orion is the compiler driver: it reads a source file, runs it
// through internal/compiler, and either prints the requested artifact
// (--asm/--ast/--emit-ast-json/--check) or shells out to the system
// assembler/linker to produce a native executable, per spec.md §6's CLI
// contract. `orion build <file>` and the bare `orion <file>` form are
// equivalent; build is the default action either way.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/alecthomas/repr"
	"github.com/urfave/cli/v2"
	"github.com/xyproto/env/v2"
	"github.com/ztrue/tracerr"
	"gopkg.in/yaml.v2"

	"github.com/Rohithoctacter/orion/internal/compiler"
	"github.com/Rohithoctacter/orion/internal/diagnostics"
	"github.com/Rohithoctacter/orion/internal/target"
)

// exitCodes per spec.md §6: 0 success, 1 compile error, 2 internal bug,
// 3 invalid invocation.
const (
	exitOK          = 0
	exitCompileErr  = 1
	exitInternalBug = 2
	exitUsage       = 3
)

// projectFile mirrors tawago's "Tawa Module Information" convention: an
// optional orion.yml next to the source, read by `build` for defaults
// that flags still override.
type projectFile struct {
	Target string `yaml:"target"`
	Output string `yaml:"output"`
}

func loadProjectFile(dir string) projectFile {
	var pf projectFile
	data, err := os.ReadFile(filepath.Join(dir, "orion.yml"))
	if err != nil {
		return pf
	}
	if err := yaml.Unmarshal(data, &pf); err != nil {
		fmt.Fprintf(os.Stderr, "warning: ignoring malformed orion.yml: %v\n", err)
		return projectFile{}
	}
	return pf
}

// orionFlags is shared between the App's default action (bare `orion
// <file>`) and the explicit `build` subcommand, so both spellings of
// spec.md §6's CLI contract accept the same flags.
func orionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "asm", Usage: "emit assembly only, to stdout"},
		&cli.BoolFlag{Name: "check", Usage: "lex+parse+type-check only"},
		&cli.BoolFlag{Name: "ast", Usage: "dump the parsed AST as text"},
		&cli.BoolFlag{Name: "emit-ast-json", Usage: "dump the parsed AST as JSON"},
		&cli.StringFlag{Name: "target", Usage: "linux, macos, or windows", Value: env.Str("ORION_TARGET", "linux")},
		&cli.StringFlag{Name: "o", Usage: "output executable path"},
		&cli.BoolFlag{Name: "watch", Usage: "recompile on source change", Value: env.Bool("ORION_WATCH")},
		&cli.BoolFlag{Name: "verbose", Usage: "print the commands orion runs"},
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "orion",
		Usage: "compiler for the Orion language",
		Flags: orionFlags(),
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "compile a source file (the default action)",
				Flags:  orionFlags(),
				Action: run,
			},
		},
		Action: run,
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		switch e := err.(type) {
		case usageError:
			fmt.Fprintln(os.Stderr, e.msg)
			os.Exit(exitUsage)
		case exitError:
			os.Exit(e.code)
		default:
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitCompileErr)
		}
	}
}

// usageError marks an invocation error (bad flags/missing file), distinct
// from a compile error, so main can choose exit code 3 over 1.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

// exitError carries a specific process exit code for a single-shot
// compile that already printed its own diagnostics. watchLoop prints
// the value and keeps watching instead of exiting.
type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func run(c *cli.Context) error {
	if c.NArg() == 0 {
		return usageError{"usage: orion [build] [--asm|--check|--ast|--emit-ast-json] [-o out] [--target os] <source-file>"}
	}
	sourcePath := c.Args().First()

	src, err := os.ReadFile(sourcePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: io: %v\n", err)
		return exitError{exitCompileErr}
	}

	pf := loadProjectFile(filepath.Dir(sourcePath))
	targetName := c.String("target")
	if targetName == "linux" && pf.Target != "" && !c.IsSet("target") {
		targetName = pf.Target
	}
	osName, terr := target.Parse(targetName)
	if terr != nil {
		return usageError{terr.Error()}
	}
	abi := target.For(osName)

	if c.Bool("watch") {
		return watchLoop(c, sourcePath, abi, pf)
	}

	return compileOnce(c, sourcePath, string(src), abi, pf)
}

func compileOnce(c *cli.Context, sourcePath, src string, abi target.ABI, pf projectFile) error {
	if c.Bool("ast") {
		prog, diags := compiler.Parse(src)
		if prog != nil {
			repr.Println(prog)
		}
		return emitDiagnostics(diags)
	}

	if c.Bool("emit-ast-json") {
		prog, diags := compiler.Parse(src)
		if prog != nil {
			out, err := json.MarshalIndent(astToJSON(prog), "", "  ")
			if err != nil {
				return exitError{exitInternalBug}
			}
			fmt.Println(string(out))
		}
		return emitDiagnostics(diags)
	}

	if c.Bool("check") {
		_, diags := compiler.Check(src)
		return emitDiagnostics(diags)
	}

	res := compiler.Compile(src, abi)
	if res.Diags.HasErrors() {
		return emitDiagnostics(res.Diags)
	}

	if c.Bool("asm") {
		fmt.Print(res.Asm)
		return nil
	}

	return assembleAndLink(c, sourcePath, res.Asm, abi, pf)
}

// emitDiagnostics prints every collected diagnostic and reports the
// spec's taxonomy as an exitError: an internal CodegenAssertion gets a
// tracerr-wrapped stack trace (exit 2, it's our bug), everything else
// prints as the plain "Error: <phase> at line N: <text> [<Kind>]" line (exit 1,
// it's the user's program).
func emitDiagnostics(diags *diagnostics.Bag) error {
	if !diags.HasErrors() {
		return nil
	}
	internal := false
	for _, d := range diags.All() {
		fmt.Fprintln(os.Stderr, d.String())
		if d.Kind == diagnostics.CodegenAssertion {
			internal = true
		}
	}
	if internal {
		tracerr.PrintSourceColor(tracerr.New("internal compiler error: see CodegenAssertion diagnostics above"))
		return exitError{exitInternalBug}
	}
	return exitError{exitCompileErr}
}

func assembleAndLink(c *cli.Context, sourcePath, asm string, abi target.ABI, pf projectFile) error {
	asmPath := strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath)) + ".s"
	if err := os.WriteFile(asmPath, []byte(asm), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: io: %v\n", err)
		return exitError{exitCompileErr}
	}

	outPath := c.String("o")
	if outPath == "" {
		outPath = pf.Output
	}
	if outPath == "" {
		outPath = strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath)) + abi.ExeExtension
	}

	runtimePath := filepath.Join(filepath.Dir(thisExecutable()), "runtime", "runtime.c")
	if _, err := os.Stat(runtimePath); err != nil {
		runtimePath = "runtime/runtime.c"
	}

	cc := env.Str("ORION_CC", "gcc")
	args := []string{"-o", outPath, asmPath, runtimePath, "-lm"}
	if c.Bool("verbose") {
		fmt.Fprintf(os.Stderr, "%s %s\n", cc, strings.Join(args, " "))
	}

	cmd := exec.Command(cc, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		tracerr.PrintSourceColor(tracerr.Wrap(err))
		return exitError{exitInternalBug}
	}
	return nil
}

func thisExecutable() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return exe
}
