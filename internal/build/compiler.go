package build

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pohlang/plhub/internal/errors"
)

// CompileResult is the outcome of compiling one source file.
type CompileResult struct {
	// Success indicates whether the compile succeeded.
	Success bool

	// Diagnostics holds compiler messages, one per line. Populated on
	// failure; may carry warnings on success.
	Diagnostics []string
}

// Compiler is the external collaborator that turns a source file into an
// artifact. It is treated as an opaque, possibly slow, synchronous call;
// bounding its runtime is the collaborator's responsibility.
type Compiler interface {
	Compile(ctx context.Context, sourcePath string) CompileResult
}

// PohCompilerConfig configures the pohc-based compiler.
type PohCompilerConfig struct {
	// ProjectRoot is the project directory; compiles run with this as
	// the working directory.
	ProjectRoot string

	// Binary overrides the path to the pohc binary.
	Binary string
}

// PohCompiler invokes the PohLang compiler binary per file, producing a
// .pbc artifact next to each source.
type PohCompiler struct {
	config PohCompilerConfig
	binary string
}

// NewPohCompiler locates the pohc binary and returns the compiler. The
// search order is: explicit override, the project toolchain directory,
// then PATH.
func NewPohCompiler(config PohCompilerConfig) (*PohCompiler, error) {
	binary, err := findBinary(config)
	if err != nil {
		return nil, err
	}
	return &PohCompiler{config: config, binary: binary}, nil
}

// Binary returns the resolved compiler path.
func (c *PohCompiler) Binary() string {
	return c.binary
}

// Compile runs pohc on a single file.
func (c *PohCompiler) Compile(ctx context.Context, sourcePath string) CompileResult {
	output := artifactPath(sourcePath)

	cmd := exec.CommandContext(ctx, c.binary, "--compile", sourcePath, "-o", output)
	cmd.Dir = c.config.ProjectRoot

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		diags := splitDiagnostics(stderr.String())
		if len(diags) == 0 {
			diags = splitDiagnostics(stdout.String())
		}
		if len(diags) == 0 {
			diags = []string{err.Error()}
		}
		return CompileResult{Success: false, Diagnostics: diags}
	}

	return CompileResult{Success: true, Diagnostics: splitDiagnostics(stderr.String())}
}

// artifactPath maps a source path to its compiled output path.
func artifactPath(sourcePath string) string {
	ext := filepath.Ext(sourcePath)
	return strings.TrimSuffix(sourcePath, ext) + ".pbc"
}

func findBinary(config PohCompilerConfig) (string, error) {
	name := "pohc"
	if runtime.GOOS == "windows" {
		name = "pohc.exe"
	}

	if config.Binary != "" {
		if _, err := os.Stat(config.Binary); err != nil {
			return "", errors.New("E110").Wrap(err)
		}
		return config.Binary, nil
	}

	local := filepath.Join(config.ProjectRoot, ".plhub", "bin", name)
	if _, err := os.Stat(local); err == nil {
		return local, nil
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", errors.New("E110").Wrap(err)
	}
	return path, nil
}

func splitDiagnostics(out string) []string {
	var diags []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			diags = append(diags, line)
		}
	}
	return diags
}
