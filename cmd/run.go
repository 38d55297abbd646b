// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	unnest "github.com/hashicorp/go-unnest"
	"github.com/hashicorp/go-unnest/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/schollz/progressbar/v3"
)

// CLI are the cli parameters for go-unnest binary
type CLI struct {
	Concurrency      int              `short:"c" optional:"" default:"1" help:"Number of sibling archives expanded in parallel."`
	Formats          []string         `short:"f" optional:"" default:"lz4" help:"Formats of nested archives, e.g. lz4,zst,gz."`
	MaxDepth         int64            `optional:"" default:"16" help:"Maximum nesting depth of archives. (disable check: -1)"`
	MaxEntries       int64            `optional:"" default:"100000" help:"Maximum entries that are decompressed before stop. (disable check: -1)"`
	MaxExpansionSize int64            `optional:"" default:"1073741824" help:"Maximum decompressed size that is allowed (in bytes). (disable check: -1)"`
	MaxExpansionTime int64            `optional:"" default:"60" help:"Maximum time that an expansion should take (in seconds). (disable check: -1)"`
	MaxInputSize     int64            `optional:"" default:"1073741824" help:"Maximum input size that is allowed (in bytes). (disable check: -1)"`
	Metrics          string           `short:"M" optional:"" help:"Write Prometheus metrics of the run to this file." type:"path"`
	Telemetry        bool             `short:"T" optional:"" default:"false" help:"Print telemetry data to log after expansion."`
	Verbose          bool             `short:"v" optional:"" help:"Verbose logging."`
	Version          kong.VersionFlag `short:"V" optional:"" help:"Print release version information."`

	List    ListCmd    `cmd:"" help:"List the expanded file tree."`
	Preview PreviewCmd `cmd:"" help:"Preview a file of the expanded tree."`
	Export  ExportCmd  `cmd:"" help:"Export all files of the expanded tree as zip archive."`
}

// ListCmd prints the expanded tree
type ListCmd struct {
	Archive string `arg:"" name:"archive" help:"Path to archive. (\"-\" for STDIN)" type:"existingfile"`
}

// PreviewCmd prints the preview of a single file
type PreviewCmd struct {
	Archive  string `arg:"" name:"archive" help:"Path to archive. (\"-\" for STDIN)" type:"existingfile"`
	Path     string `arg:"" name:"path" help:"Flattened path of the file, as printed by list."`
	HexLimit int    `optional:"" default:"1024" help:"Maximum bytes of a hex dump. (disable truncation: -1)"`
}

// ExportCmd writes all files into a zip archive
type ExportCmd struct {
	Archive  string `arg:"" name:"archive" help:"Path to archive. (\"-\" for STDIN)" type:"existingfile"`
	Output   string `short:"o" optional:"" help:"Output file. (default: decompressed_files_<timestamp>.zip)"`
	Progress bool   `short:"P" optional:"" help:"Show a progress bar."`
}

// session bundles everything a command needs
type session struct {
	ctx     context.Context
	cli     *CLI
	logger  *slog.Logger
	metrics *metrics.Collector
}

// Run the entrypoint into go-unnest as a cli tool
func Run(version, commit, date string) {
	ctx := context.Background()
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Description("Expand, inspect and export nested archives"),
		kong.UsageOnError(),
		kong.Vars{
			"version": fmt.Sprintf("%s (%s), commit %s, built at %s", filepath.Base(os.Args[0]), version, commit, date),
		},
	)

	// Check for verbose output
	logLevel := slog.LevelError
	if cli.Verbose {
		logLevel = slog.LevelDebug
	}

	// setup logger
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	if cli.MaxExpansionTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Second*time.Duration(cli.MaxExpansionTime))
		defer cancel()
	}

	s := &session{ctx: ctx, cli: &cli, logger: logger}
	var reg *prometheus.Registry
	if cli.Metrics != "" {
		reg = prometheus.NewRegistry()
		s.metrics = metrics.NewCollector(reg)
	}

	err := kctx.Run(s)

	// metrics are written for failed runs as well
	if reg != nil {
		if werr := prometheus.WriteToTextfile(cli.Metrics, reg); werr != nil {
			logger.Error("cannot write metrics", "file", cli.Metrics, "error", werr)
		}
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(-1)
	}
}

// config returns the configuration for the cli parameters, adjusted by opts.
func (s *session) config(opts ...unnest.ConfigOption) *unnest.Config {
	// setup telemetry hook
	telemetryToLog := func(ctx context.Context, td *unnest.TelemetryData) {
		if s.cli.Telemetry {
			s.logger.Info("expansion finished", "telemetry", td)
		}
		if s.metrics != nil {
			s.metrics.TelemetryHook(ctx, td)
		}
	}

	// surface fallbacks on verbose
	eventToLog := func(ctx context.Context, e unnest.Event) {
		s.logger.Debug(string(e.Type), "name", e.Name, "reason", e.Reason, "error", e.Err)
		if s.metrics != nil {
			s.metrics.EventHook(ctx, e)
		}
	}

	// process cli params
	return unnest.NewConfig(append([]unnest.ConfigOption{
		unnest.WithConcurrency(s.cli.Concurrency),
		unnest.WithEventHook(eventToLog),
		unnest.WithFormats(s.cli.Formats...),
		unnest.WithLogger(s.logger),
		unnest.WithMaxDepth(s.cli.MaxDepth),
		unnest.WithMaxEntries(s.cli.MaxEntries),
		unnest.WithMaxExpansionSize(s.cli.MaxExpansionSize),
		unnest.WithMaxInputSize(s.cli.MaxInputSize),
		unnest.WithTelemetryHook(telemetryToLog),
	}, opts...)...)
}

// expand reads and expands the archive at path.
func (s *session) expand(path string, cfg *unnest.Config) (*unnest.Node, error) {
	src, err := readArchive(path, s.cli.MaxInputSize)
	if err != nil {
		return nil, fmt.Errorf("reading archive failed: %w", err)
	}

	name := filepath.Base(path)
	if path == "-" {
		name = "stdin"
	}
	root, err := unnest.Expand(s.ctx, name, src, cfg)
	if err != nil {
		return nil, fmt.Errorf("error during expansion: %w", err)
	}
	return root, nil
}

// readArchive reads the archive from path or, for "-", from STDIN.
func readArchive(path string, maxSize int64) ([]byte, error) {
	var r io.Reader
	if path == "-" {
		r = bufio.NewReader(os.Stdin)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	// read one byte more than allowed to detect oversized input
	if maxSize >= 0 {
		r = io.LimitReader(r, maxSize+1)
	}
	return io.ReadAll(r)
}

// Run prints one line per node: the flattened path, the human readable size and the
// kind of the file.
func (l *ListCmd) Run(s *session) error {
	root, err := s.expand(l.Archive, s.config())
	if err != nil {
		return err
	}
	return unnest.Walk(root, func(p string, n *unnest.Node) error {
		switch {
		case n.IsFolder():
			fmt.Printf("%s/\n", p)
		case n.IsDegraded():
			fmt.Printf("%s\t%s\t%s (broken archive)\n", p, unnest.FormatSize(n.Size()), n.PreviewKind())
		default:
			fmt.Printf("%s\t%s\t%s\n", p, unnest.FormatSize(n.Size()), n.Kind)
		}
		return nil
	})
}

// Run prints the preview of the file at the flattened path.
func (p *PreviewCmd) Run(s *session) error {
	cfg := s.config(unnest.WithHexDumpLimit(p.HexLimit))
	root, err := s.expand(p.Archive, cfg)
	if err != nil {
		return err
	}

	var node *unnest.Node
	_ = unnest.Walk(root, func(fp string, n *unnest.Node) error {
		if node == nil && fp == p.Path && !n.IsFolder() {
			node = n
		}
		return nil
	})
	if node == nil {
		return fmt.Errorf("no file %q in %s", p.Path, p.Archive)
	}

	previewer := unnest.NewPreviewer(cfg)
	r, err := previewer.Preview(s.ctx, node.Entry(), node.PreviewKind())
	if err != nil {
		return err
	}

	if r.Type == unnest.RenderImage {
		img, err := unnest.DecodeImage(r)
		if err == nil {
			fmt.Printf("%s image, %dx%d pixels, %s\n", r.MIME, img.Width, img.Height, unnest.FormatSize(int64(len(r.Data))))
			return nil
		}
		r = previewer.ImageFallback(s.ctx, node.Entry(), err)
	}

	if r.Header != "" {
		fmt.Printf("# %s\n", r.Header)
	}
	fmt.Print(r.Text)
	if r.Type == unnest.RenderText {
		fmt.Println()
	}
	return nil
}

// Run writes all files of the expanded tree into a zip archive.
func (e *ExportCmd) Run(s *session) error {
	root, err := s.expand(e.Archive, s.config())
	if err != nil {
		return err
	}
	files := unnest.Flatten(root)

	output := e.Output
	if output == "" {
		output = unnest.ExportName(time.Now())
	}
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("cannot create output: %w", err)
	}
	defer f.Close()

	var opts []unnest.ExportOption
	if e.Progress {
		bar := progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription("exporting"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionSetRenderBlankState(true),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
		)
		opts = append(opts, unnest.WithProgress(func(unnest.FlatFile) { _ = bar.Add(1) }))
	}

	if err := unnest.Export(s.ctx, f, files, opts...); err != nil {
		f.Close()
		os.Remove(output)
		return err
	}
	s.logger.Info("exported files", "count", len(files), "output", output)
	return f.Close()
}
