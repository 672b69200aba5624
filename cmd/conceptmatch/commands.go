package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/conceptmatch"
	"github.com/poiesic/conceptmatch/annotate"
	"github.com/poiesic/conceptmatch/concepts"
	"github.com/poiesic/conceptmatch/config"
	"github.com/poiesic/conceptmatch/core"
	"github.com/poiesic/conceptmatch/dictionary"
	"github.com/poiesic/conceptmatch/metrics"
	"github.com/poiesic/conceptmatch/storage"
	"github.com/urfave/cli/v2"
)

// maxLineSize bounds one JSON-lines input document.
const maxLineSize = 64 * 1024 * 1024

func detectCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	applyDetectFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Global flags win over the configuration file.
	level, format := cfg.Logging.Level, cfg.Logging.Format
	if c.IsSet("log-level") {
		level = c.String("log-level")
	}
	if c.IsSet("log-format") {
		format = c.String("log-format")
	}
	if err := configureLogging(c.App.ErrWriter, level, format); err != nil {
		return err
	}
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []conceptmatch.DatabaseOption
	opts = append(opts, conceptmatch.WithLogger(logger))
	if cfg.Metrics.Enabled {
		reg := metrics.NewRegistry()
		server := metrics.NewServer(cfg.Metrics.Addr, reg, logger)
		if err := server.Start(); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			server.Shutdown(shutdownCtx)
		}()
		opts = append(opts, conceptmatch.WithMetricsRegisterer(reg))
	}

	db, err := conceptmatch.Open(ctx, cfg.Dictionary.Path, opts...)
	if err != nil {
		return fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer db.Close()

	matcher, err := db.NewMatcher(concepts.WithLowercaseSingleTokens(cfg.Matcher.LowercaseSingleTokens))
	if err != nil {
		return fmt.Errorf("failed to create matcher: %w", err)
	}
	var pipelineOpts []annotate.Option
	if cfg.Pipeline.PoolSize > 0 {
		pipelineOpts = append(pipelineOpts, annotate.WithPoolSize(cfg.Pipeline.PoolSize))
	}
	pipeline, err := db.NewPipeline(matcher, pipelineOpts...)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	in, err := openInput(c.String("input"), c.App.Reader)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := openOutput(c.String("output"), c.App.Writer)
	if err != nil {
		return err
	}
	defer out.Close()

	logger.Info("detecting concepts",
		"dictionary", cfg.Dictionary.Path,
		"workers", pipeline.PoolSize(),
		"batch_size", cfg.Pipeline.BatchSize)

	progress := newProgressTracker(c.App.ErrWriter, 0, c.Int("report-interval"))
	progress.Start()
	run := &detectRun{
		pipeline: pipeline,
		output:   bufio.NewWriter(out),
		progress: progress,
		failFast: c.Bool("fail-fast"),
		logger:   logger,
	}
	runErr := run.detect(ctx, in, cfg.Pipeline.BatchSize)
	progress.Finish()

	if err := run.output.Flush(); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to write output: %w", err)
	}
	if err := out.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to close output: %w", err)
	}

	done, failed := progress.Counts()
	logger.Info("detection complete",
		"documents", done,
		"failed", failed,
		"elapsed", progress.Elapsed().Round(time.Millisecond))
	return runErr
}

func applyDetectFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("db") {
		cfg.Dictionary.Path = c.String("db")
	}
	if c.IsSet("workers") {
		cfg.Pipeline.PoolSize = c.Int("workers")
	}
	if c.IsSet("lowercase-single-tokens") {
		cfg.Matcher.LowercaseSingleTokens = c.Bool("lowercase-single-tokens")
	}
	if c.IsSet("metrics-addr") {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = c.String("metrics-addr")
	}
}

// pendingDocument is an input line waiting for its batch.
type pendingDocument struct {
	line int
	id   string
	doc  *concepts.Document
	err  error
}

type detectRun struct {
	pipeline *annotate.Pipeline
	output   *bufio.Writer
	progress *progressTracker
	failFast bool
	logger   *slog.Logger
}

// detect reads JSON-lines documents from r and writes one result line per
// document, in input order.
func (d *detectRun) detect(ctx context.Context, r io.Reader, batchSize int) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	batch := make([]pendingDocument, 0, batchSize)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var in inputDocument
		pending := pendingDocument{line: line}
		if err := json.Unmarshal([]byte(raw), &in); err != nil {
			pending.err = fmt.Errorf("invalid document: %w", err)
		} else {
			pending.id = in.ID
			pending.doc = in.Document()
		}
		batch = append(batch, pending)

		if len(batch) == batchSize {
			if err := d.flush(ctx, batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if len(batch) > 0 {
		if err := d.flush(ctx, batch); err != nil {
			return err
		}
	}
	return ctx.Err()
}

// flush runs the decoded documents of batch through the pipeline and
// writes every entry of batch.
func (d *detectRun) flush(ctx context.Context, batch []pendingDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	docs := make([]*concepts.Document, 0, len(batch))
	for _, p := range batch {
		if p.err == nil {
			docs = append(docs, p.doc)
		}
	}
	results := d.pipeline.Process(ctx, docs...)

	encoder := json.NewEncoder(d.output)
	var firstErr error
	failed := 0
	next := 0
	for _, p := range batch {
		var result annotate.Result
		if p.err != nil {
			result.Err = p.err
		} else {
			result = results[next]
			next++
		}

		if result.Err != nil {
			failed++
			d.logger.Warn("document failed", "line", p.line, "id", p.id, "err", result.Err)
			if firstErr == nil {
				firstErr = fmt.Errorf("line %d: %w", p.line, result.Err)
			}
		}
		if err := encoder.Encode(newOutputDocument(p.id, p.line, result)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	d.progress.Add(len(batch), failed)
	if d.failFast && firstErr != nil {
		return firstErr
	}
	return nil
}

func lookupCommand(c *cli.Context) error {
	phrases := c.Args().Slice()
	if len(phrases) == 0 {
		return fmt.Errorf("at least one phrase is required")
	}

	db, err := conceptmatch.Open(c.Context, c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer db.Close()
	dict := db.Dictionary()

	w := bufio.NewWriter(c.App.Writer)
	defer w.Flush()
	for _, phrase := range phrases {
		exact, err := dict.ForPhrase(c.Context, phrase)
		if err != nil {
			return fmt.Errorf("looking up %q: %w", phrase, err)
		}
		lower, err := dict.ForLowercasePhrase(c.Context, dictionary.Lowercase(phrase))
		if err != nil {
			return fmt.Errorf("looking up %q: %w", phrase, err)
		}
		if len(exact) == 0 && len(lower) == 0 {
			fmt.Fprintf(w, "%s\tno match\n", phrase)
			continue
		}
		writeRecords(w, dict, phrase, concepts.TierExact, exact)
		writeRecords(w, dict, phrase, concepts.TierLowercase, lower)
	}
	return nil
}

func writeRecords(w io.Writer, dict *dictionary.Dictionary, phrase string, tier concepts.Tier, records []core.ConceptRecord) {
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			phrase, tier, r.CUI, r.SUI, r.TUI, dict.ResolveSource(r.SourceID))
	}
}

func termsCommand(c *cli.Context) error {
	db, err := conceptmatch.Open(c.Context, c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer db.Close()
	terms := db.Terms()

	w := bufio.NewWriter(c.App.Writer)
	defer w.Flush()

	if c.Bool("count") {
		size, err := terms.Size(c.Context)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, size)
		return nil
	}

	if c.Args().Len() == 0 {
		for entry, err := range terms.All(c.Context) {
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%d\n", entry.Term, entry.ID)
		}
		return nil
	}

	for _, term := range c.Args().Slice() {
		id, err := terms.Lookup(c.Context, term)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			fmt.Fprintf(w, "%s\tnot found\n", term)
		case err != nil:
			return fmt.Errorf("looking up %q: %w", term, err)
		default:
			fmt.Fprintf(w, "%s\t%d\n", term, id)
		}
	}
	return nil
}

func loadCommand(c *cli.Context) error {
	sources, err := parseSources(c.StringSlice("source"))
	if err != nil {
		return err
	}

	opts := []dictionary.BuilderOption{
		dictionary.WithRecordLayout(storage.RecordLayout{
			SUIWidth: c.Int("sui-width"),
			CUIWidth: c.Int("cui-width"),
			TUIWidth: c.Int("tui-width"),
		}),
		dictionary.WithBuilderLogger(slog.Default()),
	}
	if c.Bool("fit-layout") {
		opts = append(opts, dictionary.WithFittedLayout())
	}

	in, err := openInput(c.String("input"), c.App.Reader)
	if err != nil {
		return err
	}
	defer in.Close()

	dbPath := c.String("db")
	rows := 0
	err = conceptmatch.Create(dbPath, func(b *dictionary.Builder) error {
		for id, name := range sources {
			b.AddSource(id, name)
		}
		n, err := b.LoadBSV(in)
		rows = n
		return err
	}, opts...)
	if err != nil {
		return fmt.Errorf("failed to load dictionary: %w", err)
	}

	fmt.Fprintf(c.App.ErrWriter, "Loaded %d rows into %s\n", rows, dbPath)
	return nil
}

// parseSources parses ID=NAME registrations.
func parseSources(values []string) (map[int32]string, error) {
	sources := make(map[int32]string, len(values))
	for _, value := range values {
		idText, name, ok := strings.Cut(value, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid source %q: expected ID=NAME", value)
		}
		id, err := strconv.ParseInt(strings.TrimSpace(idText), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid source %q: %w", value, err)
		}
		sources[int32(id)] = name
	}
	return sources, nil
}

func openInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, nil
}

// nopWriteCloser guards stdout from being closed.
type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func openOutput(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output: %w", err)
	}
	return &onceCloser{File: f}, nil
}

// onceCloser lets the output be closed explicitly and again by a defer.
type onceCloser struct {
	*os.File
	closed bool
}

func (o *onceCloser) Close() error {
	if o.closed {
		return nil
	}
	o.closed = true
	return o.File.Close()
}
