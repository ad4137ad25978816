package programs

import (
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// IterationsPlaceholder is replaced in fragment shaders by the iteration limit
// before compilation.
const IterationsPlaceholder = "MAXITERATIONS"

var (
	ErrNoIterationPlaceholder = errors.New("fragment shader has no " + IterationsPlaceholder + " placeholder")
	ErrInvalidIterations      = errors.New("iteration limit must be positive")
	ErrUnknownProgram         = errors.New("unknown program")
)

//go:embed shaders
var shaders embed.FS

var defaultVertexShader = mustShader("default.vert")

func mustShader(name string) string {
	b, err := shaders.ReadFile("shaders/" + name)
	if err != nil {
		panic(err)
	}
	return string(b)
}

func NumPrograms() int {
	return len(programs)
}

func GetProgram(i int) (Program, error) {
	if i < 0 || i >= len(programs) {
		return Program{}, fmt.Errorf("%w: %d", ErrUnknownProgram, i)
	}
	return programs[i], nil
}

// Names lists registered programs in index order.
func Names() []string {
	names := make([]string, len(programs))
	for i, p := range programs {
		names[i] = p.Name
	}
	return names
}

func NewProgram(p Program) error {
	if !strings.Contains(p.FragmentShader, IterationsPlaceholder) {
		return fmt.Errorf("program %q: %w", p.Name, ErrNoIterationPlaceholder)
	}
	programs = append(programs, p)
	return nil
}

var programs []Program

type Program struct {
	Name           string
	VertexShader   string
	FragmentShader string
}

// Source returns both shaders ready to compile, with includes resolved and
// the iteration limit baked into the fragment shader.
func (p Program) Source(maxIterations int) (vertex, fragment string, err error) {
	if maxIterations < 1 {
		return "", "", fmt.Errorf("%w: %d", ErrInvalidIterations, maxIterations)
	}
	if !strings.Contains(p.FragmentShader, IterationsPlaceholder) {
		return "", "", fmt.Errorf("program %q: %w", p.Name, ErrNoIterationPlaceholder)
	}

	vertex, err = resolveIncludes(p.VertexShader, 0)
	if err != nil {
		return "", "", fmt.Errorf("program %q vertex shader: %w", p.Name, err)
	}
	fragment, err = resolveIncludes(p.FragmentShader, 0)
	if err != nil {
		return "", "", fmt.Errorf("program %q fragment shader: %w", p.Name, err)
	}

	fragment = strings.ReplaceAll(fragment, IterationsPlaceholder, strconv.Itoa(maxIterations))
	return vertex, fragment, nil
}

const maxIncludeDepth = 8

// resolveIncludes replaces `#include "name"` lines with the embedded shader
// file of that name.
func resolveIncludes(source string, depth int) (string, error) {
	if depth > maxIncludeDepth {
		return "", errors.New("includes nested too deeply")
	}

	lines := strings.Split(source, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#include") {
			continue
		}

		name, err := strconv.Unquote(strings.TrimSpace(strings.TrimPrefix(trimmed, "#include")))
		if err != nil {
			return "", fmt.Errorf("line %d: malformed include %q", i+1, trimmed)
		}
		b, err := shaders.ReadFile("shaders/" + name)
		if err != nil {
			return "", fmt.Errorf("line %d: %w", i+1, err)
		}
		included, err := resolveIncludes(string(b), depth+1)
		if err != nil {
			return "", fmt.Errorf("%s: %w", name, err)
		}
		lines[i] = included
	}

	return strings.Join(lines, "\n"), nil
}
