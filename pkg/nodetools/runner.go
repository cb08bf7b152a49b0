package nodetools

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/stoewer/go-strcase"
)

const (
	DefaultNpm        = "npm"
	DefaultNode       = "node"
	DefaultNg         = "ng"
	DefaultNgswConfig = "ngsw-config"
)

// CommandRunner defines methods to shell out to the Node toolchain of an
// Angular workspace.
type CommandRunner interface {
	// InstalledVersion returns the version of a package installed in the
	// workspace, as reported by `npm list`.
	InstalledVersion(name string) (string, bool)
	// NodeVersion returns the version of the node executable.
	NodeVersion() (string, error)
	// RunTarget runs an architect target with the Angular CLI.
	RunTarget(ctx context.Context, target string, options map[string]interface{}) error
	// GenerateServiceWorkerManifest writes ngsw.json into outputPath.
	GenerateServiceWorkerManifest(ctx context.Context, outputPath, configPath, baseHref string) error
}

// NodeCommandRunner runs the Node toolchain found on the PATH, or at the
// locations given in its RunnerConfig.
type NodeCommandRunner struct {
	logger *logrus.Entry
	config *RunnerConfig
}

var _ CommandRunner = &NodeCommandRunner{}

type RunnerConfig struct {
	Npm        string
	Node       string
	Ng         string
	NgswConfig string
	// WorkingDir is the workspace root the tools run in.
	WorkingDir string
}

type RunnerOption func(config *RunnerConfig)

func WithNpm(path string) RunnerOption {
	return func(config *RunnerConfig) {
		if path != "" {
			config.Npm = path
		}
	}
}

func WithNode(path string) RunnerOption {
	return func(config *RunnerConfig) {
		if path != "" {
			config.Node = path
		}
	}
}

func WithNg(path string) RunnerOption {
	return func(config *RunnerConfig) {
		if path != "" {
			config.Ng = path
		}
	}
}

func WithNgswConfig(path string) RunnerOption {
	return func(config *RunnerConfig) {
		if path != "" {
			config.NgswConfig = path
		}
	}
}

func WithWorkingDir(dir string) RunnerOption {
	return func(config *RunnerConfig) {
		config.WorkingDir = dir
	}
}

func (r *RunnerConfig) apply(options []RunnerOption) {
	for _, option := range options {
		option(r)
	}
}

// NewCommandRunner returns a CommandRunner for the workspace toolchain.
// Workspace-local binaries under node_modules/.bin are preferred for the
// Angular CLI tools when no explicit path is configured.
func NewCommandRunner(logger *logrus.Entry, opts ...RunnerOption) *NodeCommandRunner {
	config := RunnerConfig{
		Npm:  DefaultNpm,
		Node: DefaultNode,
	}
	config.apply(opts)
	if config.Ng == "" {
		config.Ng = localBin(config.WorkingDir, DefaultNg)
	}
	if config.NgswConfig == "" {
		config.NgswConfig = localBin(config.WorkingDir, DefaultNgswConfig)
	}
	return &NodeCommandRunner{
		logger: logger,
		config: &config,
	}
}

func localBin(dir, name string) string {
	p, err := filepath.Abs(filepath.Join(dir, "node_modules", ".bin", name))
	if err != nil {
		return name
	}
	if _, err := exec.LookPath(p); err == nil {
		return p
	}
	return name
}

func (r *NodeCommandRunner) command(ctx context.Context, name string, args ...string) *exec.Cmd {
	command := exec.CommandContext(ctx, name, args...)
	command.Dir = r.config.WorkingDir
	return command
}

// InstalledVersion runs `npm list <name>`. npm exits non-zero when the
// package is missing or the tree has problems, so the output is parsed
// regardless of the exit status.
func (r *NodeCommandRunner) InstalledVersion(name string) (string, bool) {
	command := r.command(context.Background(), r.config.Npm, "list", name)
	r.logger.Debugf("running %s", command.String())

	out, err := command.Output()
	if v, ok := ParseListOutput(out, name); ok {
		return v, true
	}
	if err != nil {
		r.logger.Debugf("npm list %s: %v", name, err)
	}
	return "", false
}

func (r *NodeCommandRunner) NodeVersion() (string, error) {
	command := r.command(context.Background(), r.config.Node, "--version")
	r.logger.Debugf("running %s", command.String())

	out, err := command.Output()
	if err != nil {
		return "", fmt.Errorf("error getting node version: %v", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (r *NodeCommandRunner) RunTarget(ctx context.Context, target string, options map[string]interface{}) error {
	args := append([]string{"run", target}, OptionFlags(options)...)
	command := r.command(ctx, r.config.Ng, args...)

	stdout := r.logger.WriterLevel(logrus.InfoLevel)
	defer stdout.Close()
	stderr := r.logger.WriterLevel(logrus.WarnLevel)
	defer stderr.Close()
	command.Stdout = stdout
	command.Stderr = stderr

	r.logger.Infof("running %s", command.String())
	if err := command.Run(); err != nil {
		return fmt.Errorf("error running target %s: %v", target, err)
	}
	return nil
}

func (r *NodeCommandRunner) GenerateServiceWorkerManifest(ctx context.Context, outputPath, configPath, baseHref string) error {
	if baseHref == "" {
		baseHref = "/"
	}
	command := r.command(ctx, r.config.NgswConfig, outputPath, configPath, baseHref)

	r.logger.Infof("running %s", command.String())
	out, err := command.CombinedOutput()
	if err != nil {
		r.logger.Error(string(out))
		return fmt.Errorf("error generating service worker manifest: %s. %v", string(out), err)
	}
	return nil
}

// OptionFlags converts architect option overrides into Angular CLI flags,
// sorted by name.
func OptionFlags(options map[string]interface{}) []string {
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	flags := make([]string, 0, len(keys))
	for _, k := range keys {
		flags = append(flags, fmt.Sprintf("--%s=%v", strcase.KebabCase(k), options[k]))
	}
	return flags
}
