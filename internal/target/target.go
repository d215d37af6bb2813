// Package target describes the x86-64 ABI the code generator emits
// against (spec.md §4.4). Grounded on xyproto/c67's calling_convention.go
// (a CallingConvention interface with SystemVAMD64/MicrosoftX64
// implementations) and original_source/compiler/target_backend.h (whose
// ABIConfig struct collapses that interface into one data-driven value),
// this package keeps the teacher's field set but picks target_backend.h's
// shape: a single ABI value selected by a factory function, rather than
// one Go type per OS.
package target

import "fmt"

// OS names an operating system Orion can emit assembly for.
type OS int

const (
	Linux OS = iota
	MacOS
	Windows
)

func (o OS) String() string {
	switch o {
	case Linux:
		return "linux"
	case MacOS:
		return "macos"
	case Windows:
		return "windows"
	default:
		return "unknown"
	}
}

// ABI collects every platform-specific fact the code generator needs:
// argument-passing registers, which registers survive a call, stack
// bookkeeping, and the handful of assembler-syntax differences between
// GNU as (Linux), clang's as (macOS) and a Windows assembler. Orion
// always targets x86-64; only the OS varies.
type ABI struct {
	OS OS

	IntArgRegs   []string // in order; beyond this they go on the stack
	FloatArgRegs []string
	IntReturn    string
	FloatReturn  string

	CallerSaved []string
	CalleeSaved []string

	ShadowSpaceBytes int  // Win64 requires the caller reserve 32 bytes before a call
	HasRedZone       bool // SysV's 128-byte red zone below rsp; absent on Win64
	ALForVarargs     bool // Win64 extern varargs ABI quirk (AL holds a float-arg count)
	StackAlignBytes  int

	SymbolPrefix string // "_" on macOS (and traditional Windows), "" on Linux
	ExeExtension string

	TextSection string
	DataSection string
}

// Symbol applies the platform's C symbol-mangling convention to a bare
// name, e.g. "main" -> "_main" on macOS.
func (a ABI) Symbol(name string) string { return a.SymbolPrefix + name }

// IntArg returns the register an integer/pointer argument at position i
// (0-based) is passed in, or ok=false once arguments spill to the stack.
func (a ABI) IntArg(i int) (reg string, ok bool) {
	if i < 0 || i >= len(a.IntArgRegs) {
		return "", false
	}
	return a.IntArgRegs[i], true
}

// FloatArg returns the register a floating-point argument at position i
// is passed in, or ok=false once it spills to the stack.
func (a ABI) FloatArg(i int) (reg string, ok bool) {
	if i < 0 || i >= len(a.FloatArgRegs) {
		return "", false
	}
	return a.FloatArgRegs[i], true
}

// AlignedFrameSize rounds size up to the ABI's stack alignment, the way
// every prologue in spec.md §4.5 must before issuing `sub rsp, N`.
func (a ABI) AlignedFrameSize(size int) int {
	align := a.StackAlignBytes
	if align <= 0 {
		align = 16
	}
	if size%align == 0 {
		return size
	}
	return ((size / align) + 1) * align
}

var sysVCallerSaved = []string{
	"rax", "rcx", "rdx", "rsi", "rdi", "r8", "r9", "r10", "r11",
	"xmm0", "xmm1", "xmm2", "xmm3", "xmm4", "xmm5", "xmm6", "xmm7",
}

var sysVCalleeSaved = []string{"rbx", "rbp", "r12", "r13", "r14", "r15"}

// For returns the ABI description for os, per spec.md §4.4's
// Linux/macOS/Windows split. Linux and macOS both use System V AMD64
// (integer args in rdi,rsi,rdx,rcx,r8,r9; no shadow space; a red zone);
// they differ only in symbol prefix and executable extension. Windows
// uses the Microsoft x64 ABI: fewer argument registers, rdi/rsi moved
// into the callee-saved set, a mandatory 32-byte shadow space, and no
// red zone.
func For(os OS) ABI {
	switch os {
	case MacOS:
		return ABI{
			OS:               MacOS,
			IntArgRegs:       []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"},
			FloatArgRegs:     []string{"xmm0", "xmm1", "xmm2", "xmm3", "xmm4", "xmm5", "xmm6", "xmm7"},
			IntReturn:        "rax",
			FloatReturn:      "xmm0",
			CallerSaved:      sysVCallerSaved,
			CalleeSaved:      sysVCalleeSaved,
			ShadowSpaceBytes: 0,
			HasRedZone:       true,
			StackAlignBytes:  16,
			SymbolPrefix:     "_",
			ExeExtension:     "",
			TextSection:      ".text",
			DataSection:      ".data",
		}
	case Windows:
		return ABI{
			OS:           Windows,
			IntArgRegs:   []string{"rcx", "rdx", "r8", "r9"},
			FloatArgRegs: []string{"xmm0", "xmm1", "xmm2", "xmm3"},
			IntReturn:    "rax",
			FloatReturn:  "xmm0",
			CallerSaved: []string{
				"rax", "rcx", "rdx", "r8", "r9", "r10", "r11",
				"xmm0", "xmm1", "xmm2", "xmm3", "xmm4", "xmm5",
			},
			CalleeSaved: []string{
				"rbx", "rbp", "rdi", "rsi", "r12", "r13", "r14", "r15",
				"xmm6", "xmm7", "xmm8", "xmm9", "xmm10", "xmm11", "xmm12", "xmm13", "xmm14", "xmm15",
			},
			ShadowSpaceBytes: 32,
			HasRedZone:       false,
			ALForVarargs:     true,
			StackAlignBytes:  16,
			SymbolPrefix:     "",
			ExeExtension:     ".exe",
			TextSection:      ".text",
			DataSection:      ".data",
		}
	default: // Linux
		return ABI{
			OS:               Linux,
			IntArgRegs:       []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"},
			FloatArgRegs:     []string{"xmm0", "xmm1", "xmm2", "xmm3", "xmm4", "xmm5", "xmm6", "xmm7"},
			IntReturn:        "rax",
			FloatReturn:      "xmm0",
			CallerSaved:      sysVCallerSaved,
			CalleeSaved:      sysVCalleeSaved,
			ShadowSpaceBytes: 0,
			HasRedZone:       true,
			StackAlignBytes:  16,
			SymbolPrefix:     "",
			ExeExtension:     "",
			TextSection:      ".text",
			DataSection:      ".data",
		}
	}
}

// Parse resolves a --target flag value ("linux", "macos"/"darwin", or
// "windows") to an OS. An empty name means Linux; anything else it
// doesn't recognize returns Linux together with an error.
func Parse(name string) (OS, error) {
	switch name {
	case "", "linux":
		return Linux, nil
	case "macos", "darwin":
		return MacOS, nil
	case "windows", "win64":
		return Windows, nil
	default:
		return Linux, fmt.Errorf("unknown target %q", name)
	}
}
