package quad

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/gogpu/naga"
)

//go:embed shaders/quad.wgsl
var quadWGSL string

// ShaderStage identifies which pipeline stage a shader entry point
// belongs to.
type ShaderStage int

const (
	StageVertex ShaderStage = iota
	StageFragment
)

// String returns the stage name for logs and error messages.
func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderStage(%d)", int(s))
	}
}

// ShaderSource is WGSL source text plus the entry point to run.
// Backends compile it on the device; Validate catches malformed source
// before any device resource exists.
type ShaderSource struct {
	Stage      ShaderStage
	Source     string
	EntryPoint string
}

// VertexShader returns the built-in quad vertex shader.
func VertexShader() ShaderSource {
	return ShaderSource{Stage: StageVertex, Source: quadWGSL, EntryPoint: "vs_main"}
}

// FragmentShader returns the built-in quad fragment shader.
func FragmentShader() ShaderSource {
	return ShaderSource{Stage: StageFragment, Source: quadWGSL, EntryPoint: "fs_main"}
}

// Validate compiles the source with naga and checks the entry point is
// declared. The compiler diagnostic is preserved in the returned error
// so the caller sees exactly what the backend would have rejected.
func (s ShaderSource) Validate() error {
	if s.Source == "" {
		return fmt.Errorf("quad: %s shader has empty source", s.Stage)
	}
	if s.EntryPoint == "" {
		return fmt.Errorf("quad: %s shader has empty entry point", s.Stage)
	}
	if _, err := naga.Compile(s.Source); err != nil {
		return fmt.Errorf("quad: %s shader failed to compile: %w", s.Stage, err)
	}
	if !strings.Contains(s.Source, "fn "+s.EntryPoint) {
		return fmt.Errorf("quad: %s shader does not declare entry point %q", s.Stage, s.EntryPoint)
	}
	return nil
}
