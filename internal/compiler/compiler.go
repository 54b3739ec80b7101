// Package compiler runs the external solc binary to build contract artifacts.
package compiler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sort"
	"strings"
	"time"

	"quorumkit/internal/artifacts"
)

// DefaultTimeout bounds a single solc invocation
const DefaultTimeout = 60 * time.Second

// ErrNoContracts is returned when solc output contains no contracts
var ErrNoContracts = errors.New("solc produced no contracts")

// Runner executes a command with stdin and returns its stdout
type Runner interface {
	Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// Compiler compiles Solidity source with solc
type Compiler struct {
	path    string
	runner  Runner
	timeout time.Duration
}

// New creates a compiler using the solc binary at path
func New(path string) *Compiler {
	return NewWithRunner(path, execRunner{})
}

// NewWithRunner creates a compiler with a custom command runner
func NewWithRunner(path string, runner Runner) *Compiler {
	if path == "" {
		path = "solc"
	}
	return &Compiler{path: path, runner: runner, timeout: DefaultTimeout}
}

// Compile compiles source and returns one artifact per contract, sorted by name
func (c *Compiler) Compile(ctx context.Context, source string) ([]*artifacts.Artifact, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	slog.Debug("Compiling Solidity source", "solc", c.path, "source_bytes", len(source))

	out, err := c.runner.Run(ctx, []byte(source), c.path, "--combined-json", "abi,bin", "-")
	if err != nil {
		return nil, fmt.Errorf("failed to compile: %w", err)
	}
	return ParseCombinedJSON(out)
}

// CompileContract compiles source and returns the named contract
func (c *Compiler) CompileContract(ctx context.Context, source, name string) (*artifacts.Artifact, error) {
	all, err := c.Compile(ctx, source)
	if err != nil {
		return nil, err
	}
	for _, a := range all {
		if a.Name == name {
			return a, nil
		}
	}
	return nil, fmt.Errorf("contract %s not found in solc output", name)
}

type combinedOutput struct {
	Contracts map[string]struct {
		ABI json.RawMessage `json:"abi"`
		Bin string          `json:"bin"`
	} `json:"contracts"`
}

// ParseCombinedJSON parses the output of solc --combined-json abi,bin.
// Keys look like "<stdin>:HelloWorld"; the abi field is an array in recent
// solc releases and a JSON-encoded string in older ones.
func ParseCombinedJSON(data []byte) ([]*artifacts.Artifact, error) {
	var out combinedOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse solc output: %w", err)
	}
	if len(out.Contracts) == 0 {
		return nil, ErrNoContracts
	}

	result := make([]*artifacts.Artifact, 0, len(out.Contracts))
	for key, entry := range out.Contracts {
		name := key[strings.LastIndex(key, ":")+1:]
		if strings.TrimSpace(entry.Bin) == "" {
			// interfaces and abstract contracts have no creation code
			continue
		}

		rawABI := string(entry.ABI)
		var encoded string
		if err := json.Unmarshal(entry.ABI, &encoded); err == nil {
			rawABI = encoded
		}

		artifact, err := artifacts.New(name, rawABI, entry.Bin)
		if err != nil {
			return nil, fmt.Errorf("contract %s: %w", name, err)
		}
		result = append(result, artifact)
	}

	if len(result) == 0 {
		return nil, ErrNoContracts
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}
