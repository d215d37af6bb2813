package target

import "testing"

func TestForDistinguishesCallingConventions(t *testing.T) {
	tests := []struct {
		name             string
		os               OS
		wantFirstIntArg  string
		wantShadowSpace  int
		wantHasRedZone   bool
		wantSymbolPrefix string
	}{
		{"linux", Linux, "rdi", 0, true, ""},
		{"macos", MacOS, "rdi", 0, true, "_"},
		{"windows", Windows, "rcx", 32, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			abi := For(tt.os)
			if reg, ok := abi.IntArg(0); !ok || reg != tt.wantFirstIntArg {
				t.Errorf("IntArg(0) = %q, %v; want %q", reg, ok, tt.wantFirstIntArg)
			}
			if abi.ShadowSpaceBytes != tt.wantShadowSpace {
				t.Errorf("ShadowSpaceBytes = %d; want %d", abi.ShadowSpaceBytes, tt.wantShadowSpace)
			}
			if abi.HasRedZone != tt.wantHasRedZone {
				t.Errorf("HasRedZone = %v; want %v", abi.HasRedZone, tt.wantHasRedZone)
			}
			if abi.SymbolPrefix != tt.wantSymbolPrefix {
				t.Errorf("SymbolPrefix = %q; want %q", abi.SymbolPrefix, tt.wantSymbolPrefix)
			}
		})
	}
}

func TestIntArgOverflowsToStack(t *testing.T) {
	abi := For(Windows)
	if _, ok := abi.IntArg(4); ok {
		t.Errorf("IntArg(4) should overflow to the stack on Win64 (only 4 integer registers)")
	}
}

func TestAlignedFrameSizeRoundsUpTo16(t *testing.T) {
	abi := For(Linux)
	tests := []struct{ in, want int }{
		{0, 0},
		{1, 16},
		{16, 16},
		{17, 32},
		{24, 32},
	}
	for _, tt := range tests {
		if got := abi.AlignedFrameSize(tt.in); got != tt.want {
			t.Errorf("AlignedFrameSize(%d) = %d; want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseRecognizesAliases(t *testing.T) {
	tests := []struct {
		in   string
		want OS
	}{
		{"", Linux},
		{"linux", Linux},
		{"macos", MacOS},
		{"darwin", MacOS},
		{"windows", Windows},
		{"win64", Windows},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseRejectsUnknownTarget(t *testing.T) {
	if _, err := Parse("z80"); err == nil {
		t.Error("expected an error for an unknown target")
	}
}
