// Package cmd provides CLI command implementations for lore.
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/fatih/color"

	"github.com/lorekeep/lore/internal/analyzer"
	"github.com/lorekeep/lore/internal/config"
	"github.com/lorekeep/lore/internal/pipeline"
	"github.com/lorekeep/lore/internal/reason"
	"github.com/lorekeep/lore/internal/source"
	"github.com/lorekeep/lore/mcp"
)

// Version is set at build time via ldflags.
var Version = "dev"

// GenerateCmd runs the full documentation pipeline against a codebase.
type GenerateCmd struct {
	Path        string   `arg:"" optional:"" default:"." help:"Path to the codebase"`
	Repo        string   `help:"Remote repository URL to clone instead of a local path"`
	Ref         string   `help:"Branch or tag to clone (remote default when empty)"`
	Name        string   `short:"n" help:"Project name (derived from the source when empty)"`
	Output      string   `short:"o" help:"Output directory root"`
	Include     []string `help:"Glob patterns of files to include"`
	Exclude     []string `help:"Glob patterns of files to exclude"`
	MaxFileSize int64    `help:"Skip files larger than this many bytes"`
	Workers     int      `help:"Concurrent chapter writers"`
	Model       string   `help:"Model identifier"`
	NoCache     bool     `help:"Bypass the response cache"`
}

// Run executes the generate command.
func (c *GenerateCmd) Run(cli *CLI) error {
	logger := newLogger(cli)

	cfg := config.Load()
	// Flags override the environment.
	if c.Model != "" {
		cfg.Model = c.Model
	}
	if c.Output != "" {
		cfg.OutputDir = c.Output
	}
	if c.Workers > 0 {
		cfg.Workers = c.Workers
	}
	if c.MaxFileSize > 0 {
		cfg.MaxFileSize = c.MaxFileSize
	}
	if c.NoCache {
		cfg.CacheEnabled = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	filters := source.Filters{
		Include:     c.Include,
		Exclude:     c.Exclude,
		MaxFileSize: cfg.MaxFileSize,
	}

	var provider source.Provider
	location := c.Repo
	if c.Repo != "" {
		if c.Path != "." {
			return fmt.Errorf("--repo and a local path are mutually exclusive")
		}
		provider = source.NewGit(c.Repo, c.Ref, cfg.GitHubToken, filters, logger)
	} else {
		root, err := filepath.Abs(c.Path)
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}
		info, err := os.Stat(root)
		if err != nil {
			return fmt.Errorf("accessing %s: %w", root, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", root)
		}
		provider = source.NewLocal(root, filters, logger)
		location = root
	}

	client := reason.NewClient(reason.ClientOptions{
		APIKey:    cfg.AnthropicAPIKey,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		Timeout:   cfg.RequestTimeout,
	}, logger)
	svc := reason.NewCache(client, cfg.Model, cfg.CacheDir, cfg.CacheEnabled, logger)
	defer func() { _ = svc.Close() }()

	engine := pipeline.NewPipeline(provider, svc, cfg.Workers, logger)
	rc := &pipeline.Context{
		ProjectName: c.Name,
		Source:      location,
		OutputDir:   cfg.OutputDir,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle Ctrl+C
	go func() {
		<-osSignalChannel()
		fmt.Fprintln(os.Stderr, "\nInterrupted, stopping...")
		cancel()
	}()

	color.Cyan("Generating documentation for %s", location)
	start := time.Now()

	if err := engine.Run(ctx, rc); err != nil {
		return err
	}

	color.Green("\n✓ Documentation generated")
	fmt.Printf("  Project:     %s\n", rc.ProjectName)
	fmt.Printf("  Files:       %d\n", len(rc.Files))
	fmt.Printf("  Components:  %d\n", len(rc.Abstractions))
	fmt.Printf("  Documents:   %d\n", len(rc.Manifest.Documents))
	fmt.Printf("  Output:      %s\n", rc.Manifest.Dir)
	fmt.Printf("  Duration:    %.1fs\n", time.Since(start).Seconds())

	return nil
}

// AnalyzeCmd prints structural facts about a codebase without any
// reasoning calls.
type AnalyzeCmd struct {
	Path    string   `arg:"" optional:"" default:"." help:"Path to the codebase"`
	JSON    bool     `help:"Emit the report as JSON"`
	Include []string `help:"Glob patterns of files to include"`
	Exclude []string `help:"Glob patterns of files to exclude"`
}

// Run executes the analyze command.
func (c *AnalyzeCmd) Run(cli *CLI) error {
	logger := newLogger(cli)

	root, err := filepath.Abs(c.Path)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("accessing %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}

	filters := source.Filters{
		Include:     c.Include,
		Exclude:     c.Exclude,
		MaxFileSize: config.Load().MaxFileSize,
	}
	files, err := source.NewLocal(root, filters, logger).Fetch(context.Background())
	if err != nil {
		return err
	}

	report := analyzer.Analyze(files)

	if c.JSON {
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	color.Cyan("Structural analysis of %s", root)
	fmt.Println()
	fmt.Println(report.Summarize())

	return nil
}

// ListCmd lists generated document sets under the output root.
type ListCmd struct {
	Output string `short:"o" help:"Output directory root"`
}

// Run executes the list command.
func (c *ListCmd) Run(cli *CLI) error {
	root := outputRoot(c.Output)

	projects, err := mcp.NewLibrary(root, newLogger(cli)).Projects(context.Background())
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Println("No document sets found")
		return nil
	}

	fmt.Println("Generated document sets:")
	for _, p := range projects {
		fmt.Printf("\n  %s\n", p.Name)
		fmt.Printf("    Documents: %d\n", p.Documents)
		fmt.Printf("    Updated:   %s\n", p.Modified.Format("2006-01-02 15:04"))
		fmt.Printf("    Location:  %s\n", filepath.Join(root, p.Name))
	}

	return nil
}

// ServeCmd starts the MCP server over the generated documentation.
type ServeCmd struct {
	Output string `short:"o" help:"Output directory root"`
	Watch  bool   `short:"w" help:"Refresh served documents on filesystem changes"`
	HTTP   string `help:"Serve JSON-RPC over HTTP on this address instead of stdio"`
}

// Run executes the serve command.
func (c *ServeCmd) Run(cli *CLI) error {
	logger := newLogger(cli)
	root := outputRoot(c.Output)

	library := mcp.NewLibrary(root, logger)
	server := mcp.NewServer(library)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle Ctrl+C
	go func() {
		<-osSignalChannel()
		cancel()
	}()

	if c.Watch {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return fmt.Errorf("creating output root: %w", err)
		}
		go func() {
			if err := mcp.Watch(ctx, root, library, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("watch stopped", "error", err)
			}
		}()
	}

	var err error
	if c.HTTP != "" {
		logger.Info("serving MCP over HTTP", "addr", c.HTTP)
		err = server.RunHTTP(ctx, c.HTTP)
	} else {
		// Stdout carries JSON-RPC only; diagnostics go to the stderr
		// logger.
		err = server.Run(ctx, os.Stdin, os.Stdout)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

// CleanCmd removes the response cache and generated documents.
type CleanCmd struct {
	Cache  bool   `help:"Remove the response cache (the default when no target is given)"`
	Docs   bool   `help:"Remove generated document sets"`
	Output string `short:"o" help:"Output directory root"`
	Force  bool   `short:"f" help:"Skip confirmation"`
}

// Run executes the clean command.
func (c *CleanCmd) Run() error {
	cfg := config.Load()

	cache, docs := c.Cache, c.Docs
	if !cache && !docs {
		cache = true
	}

	var targets []string
	if cache {
		targets = append(targets, cfg.CacheDir)
	}
	if docs {
		targets = append(targets, outputRoot(c.Output))
	}

	for _, target := range targets {
		if _, err := os.Stat(target); os.IsNotExist(err) {
			fmt.Printf("Nothing to clean at %s\n", target)
			continue
		}

		if !c.Force {
			fmt.Printf("Delete %s? [y/N] ", target)
			var response string
			_, _ = fmt.Scanln(&response)
			if response != "y" && response != "Y" {
				fmt.Println("Skipped")
				continue
			}
		}

		if err := os.RemoveAll(target); err != nil {
			return fmt.Errorf("deleting %s: %w", target, err)
		}
		color.Green("Deleted %s", target)
	}

	return nil
}

// CLI is the root Kong command structure.
type CLI struct {
	Version kong.VersionFlag `help:"Show version information"`
	Verbose bool             `short:"v" help:"Enable verbose output"`
	Quiet   bool             `short:"q" help:"Suppress non-essential output"`

	// Commands
	Generate GenerateCmd `cmd:"" help:"Generate documentation for a codebase"`
	Analyze  AnalyzeCmd  `cmd:"" help:"Print structural facts without calling the model"`
	List     ListCmd     `cmd:"" help:"List generated document sets"`
	Serve    ServeCmd    `cmd:"" help:"Start the MCP server over generated documentation"`
	Clean    CleanCmd    `cmd:"" help:"Remove the response cache or generated documents"`
}

// NewCLI creates a new CLI instance.
func NewCLI() *CLI {
	return &CLI{}
}

// Execute parses command-line arguments and executes the selected command.
func (c *CLI) Execute(args []string) error {
	kongCtx := kong.Parse(c,
		kong.Name("lore"),
		kong.Description("Cross-referenced codebase documentation for AI agents"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version": Version,
		},
	)

	return kongCtx.Run(c)
}

// Helper functions

// newLogger builds the run logger honoring the global verbosity flags.
// Logs go to stderr so serve's stdio transport keeps stdout clean.
func newLogger(cli *CLI) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	switch {
	case cli.Quiet:
		logger.SetLevel(log.ErrorLevel)
	case cli.Verbose:
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// outputRoot resolves the output directory from the flag or environment.
func outputRoot(flag string) string {
	if flag != "" {
		return flag
	}
	return config.Load().OutputDir
}

// osSignalChannel returns a channel that receives OS signals for graceful shutdown.
func osSignalChannel() <-chan os.Signal {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	return sigChan
}
