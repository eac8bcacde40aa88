//go:build !nogpu

package gpu

import (
	"errors"
	"testing"
)

func TestEmbeddedShadersValidate(t *testing.T) {
	sources := map[string]string{
		"quad":            quadShaderSource,
		"blur_horizontal": horizontalShaderSource,
		"blur_vertical":   verticalShaderSource,
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			if src == "" {
				t.Fatal("shader source is empty")
			}
			if err := validateWGSL(src); err != nil {
				t.Errorf("validateWGSL: %v", err)
			}
		})
	}
}

func TestCompileRejectsInvalidWGSL(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	_, err := Compile(device, "broken", "fn fs_main( -> {", StageFragment)
	var compileErr *ShaderCompileError
	if !errors.As(err, &compileErr) {
		t.Fatalf("Compile error = %v, want *ShaderCompileError", err)
	}
	if compileErr.Stage != StageFragment || compileErr.Label != "broken" {
		t.Errorf("error = %+v", compileErr)
	}

	if _, err := Compile(device, "empty", "", StageVertex); !errors.As(err, &compileErr) {
		t.Errorf("empty source: error = %v, want *ShaderCompileError", err)
	}
}

func TestLinkMissingModule(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	vs, err := Compile(device, "quad_vs", quadShaderSource, StageVertex)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	defer device.DestroyShaderModule(vs)

	_, err = Link(device, "half", nil, vs, nil)
	var linkErr *ProgramLinkError
	if !errors.As(err, &linkErr) {
		t.Fatalf("Link error = %v, want *ProgramLinkError", err)
	}
}

func TestNewProgramPair(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	pp, err := NewProgramPair(device)
	if err != nil {
		t.Fatalf("NewProgramPair: %v", err)
	}
	if pp.Horizontal == nil || pp.Vertical == nil {
		t.Fatal("program missing")
	}
	if pp.Horizontal.pipeline == nil || pp.Vertical.pipeline == nil {
		t.Error("pipeline not created")
	}
	if pp.Horizontal.Label != "blur_horizontal" || pp.Vertical.Label != "blur_vertical" {
		t.Errorf("labels = %q, %q", pp.Horizontal.Label, pp.Vertical.Label)
	}

	pp.Destroy(device)
	pp.Destroy(device)
	if pp.Horizontal != nil || pp.bindLayout != nil {
		t.Error("Destroy left objects behind")
	}
}

func TestShaderStageString(t *testing.T) {
	tests := []struct {
		s    ShaderStage
		want string
	}{
		{StageVertex, "vertex"},
		{StageFragment, "fragment"},
		{ShaderStage(5), "ShaderStage(5)"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
