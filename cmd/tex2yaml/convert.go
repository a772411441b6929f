package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tex2yaml "github.com/alnah/go-tex2yaml"
	"github.com/alnah/go-tex2yaml/internal/config"
	"github.com/alnah/go-tex2yaml/internal/fileutil"
)

// File permission constants.
const (
	dirPermissions  = 0o750
	filePermissions = 0o644
)

// Sentinel errors for batch operations.
var (
	ErrNoInput           = errors.New("no input specified")
	ErrUnknownExtension  = errors.New("input must be a .tex, .yaml or .yml file")
	ErrRoundTripMismatch = errors.New("round trip does not reproduce the input")
)

// FileToConvert represents a single file to process.
type FileToConvert struct {
	InputPath  string
	OutputPath string
}

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	Doc        *tex2yaml.Document // set for parsed source files
	Err        error
	Duration   time.Duration
}

// run drives the whole invocation: config merge, file discovery, batch
// conversion, and optional index building.
func run(flags *cliFlags, positional []string, stdout, stderr io.Writer) int {
	cfg, err := resolveConfig(flags)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	input := cfg.Input.DefaultDir
	if len(positional) > 0 {
		input = positional[0]
	}
	if input == "" {
		fmt.Fprintln(stderr, ErrNoInput)
		return 1
	}

	outDir := flags.outDir
	if outDir == "" {
		outDir = cfg.Output.DefaultDir
	}

	files, err := discoverFiles(input, outDir)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if len(files) == 0 {
		fmt.Fprintln(stderr, "no convertible files found")
		return 1
	}

	opts := []tex2yaml.Option{
		tex2yaml.WithNormalize(flags.normalize || cfg.Parse.Normalize),
	}
	if flags.assetPath != "" {
		opts = append(opts, tex2yaml.WithAssetPath(flags.assetPath))
	} else if cfg.Assets.BasePath != "" {
		opts = append(opts, tex2yaml.WithAssetPath(cfg.Assets.BasePath))
	}
	if !flags.quiet {
		opts = append(opts, tex2yaml.WithWarningHandler(func(section string, err error) {
			fmt.Fprintf(stderr, "warning: skipping section %q: %v\n", section, err)
		}))
	}

	poolSize := tex2yaml.ResolvePoolSize(resolveWorkers(flags, cfg))
	if flags.verbose {
		fmt.Fprintf(stderr, "Pool size: %d\n", poolSize)
	}
	pool := tex2yaml.NewServicePool(poolSize, opts...)

	ctx := context.Background()
	results := convertBatch(ctx, pool, files, flags.check)
	failed := printResults(results, flags.quiet, flags.verbose, stdout, stderr)

	indexPath := flags.indexPath
	if indexPath == "" && cfg.Index.Enabled {
		indexPath = cfg.Index.Path
	}
	if indexPath != "" && !flags.check {
		if err := buildIndex(ctx, indexPath, results); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		if !flags.quiet {
			fmt.Fprintf(stdout, "Indexed %s\n", indexPath)
		}
	}

	if failed > 0 {
		return 1
	}
	return 0
}

// resolveConfig loads the named config file, or defaults when none is
// given.
func resolveConfig(flags *cliFlags) (*config.Config, error) {
	if flags.config == "" {
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(flags.config)
}

func resolveWorkers(flags *cliFlags, cfg *config.Config) int {
	if flags.workers > 0 {
		return flags.workers
	}
	return cfg.Workers
}

// discoverFiles finds all convertible files under inputPath.
func discoverFiles(inputPath, outDir string) ([]FileToConvert, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if !fileutil.IsTeXFile(inputPath) && !fileutil.IsYAMLFile(inputPath) {
			return nil, fmt.Errorf("%w: got %q", ErrUnknownExtension, filepath.Ext(inputPath))
		}
		return []FileToConvert{{
			InputPath:  inputPath,
			OutputPath: resolveOutputPath(inputPath, outDir, ""),
		}}, nil
	}

	var files []FileToConvert
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() {
			return nil
		}
		if !fileutil.IsTeXFile(path) && !fileutil.IsYAMLFile(path) {
			return nil
		}
		files = append(files, FileToConvert{
			InputPath:  path,
			OutputPath: resolveOutputPath(path, outDir, inputPath),
		})
		return nil
	})
	return files, err
}

// resolveOutputPath determines the output path for one input file. The
// output extension is the opposite side of the conversion.
func resolveOutputPath(inputPath, outDir, baseInputDir string) string {
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), ext)

	outExt := ".yaml"
	if fileutil.IsYAMLFile(inputPath) {
		outExt = ".tex"
	}

	if outDir == "" {
		return filepath.Join(filepath.Dir(inputPath), base+outExt)
	}
	if baseInputDir != "" {
		if relPath, err := filepath.Rel(baseInputDir, inputPath); err == nil {
			return filepath.Join(outDir, filepath.Dir(relPath), base+outExt)
		}
	}
	return filepath.Join(outDir, base+outExt)
}

// convertBatch processes files concurrently using the service pool.
func convertBatch(ctx context.Context, pool *tex2yaml.ServicePool, files []FileToConvert, check bool) []ConversionResult {
	concurrency := pool.Size()
	if concurrency > len(files) {
		concurrency = len(files)
	}

	results := make([]ConversionResult, len(files))
	jobs := make(chan int, len(files))
	var wg sync.WaitGroup

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			svc, err := pool.Acquire()
			if err != nil {
				for idx := range jobs {
					results[idx] = ConversionResult{InputPath: files[idx].InputPath, Err: err}
				}
				return
			}
			defer pool.Release(svc)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{InputPath: files[idx].InputPath, Err: ctx.Err()}
					continue
				}
				results[idx] = convertFile(ctx, svc, files[idx], check)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile processes a single file and returns the result.
func convertFile(ctx context.Context, svc *tex2yaml.Service, f FileToConvert, check bool) ConversionResult {
	start := time.Now()
	result := ConversionResult{InputPath: f.InputPath, OutputPath: f.OutputPath}
	defer func() { result.Duration = time.Since(start) }()

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		result.Err = fmt.Errorf("reading input: %w", err)
		return result
	}

	if fileutil.IsYAMLFile(f.InputPath) {
		doc, err := svc.FromYAML(content)
		if err != nil {
			result.Err = err
			return result
		}
		generated, err := svc.Generate(ctx, doc)
		if err != nil {
			result.Err = err
			return result
		}
		result.Err = writeOutput(f.OutputPath, []byte(generated))
		return result
	}

	if check {
		ok, _, _, err := svc.Check(ctx, string(content))
		if err != nil {
			result.Err = err
			return result
		}
		if !ok {
			result.Err = ErrRoundTripMismatch
		}
		result.OutputPath = ""
		return result
	}

	doc, err := svc.Parse(ctx, string(content))
	if err != nil {
		result.Err = err
		return result
	}
	result.Doc = doc

	data, err := svc.ToYAML(doc)
	if err != nil {
		result.Err = err
		return result
	}
	result.Err = writeOutput(f.OutputPath, data)
	return result
}

func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	// #nosec G306 -- outputs are meant to be readable
	if err := os.WriteFile(path, data, filePermissions); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// buildIndex indexes every successfully parsed document.
func buildIndex(ctx context.Context, path string, results []ConversionResult) error {
	var docs []tex2yaml.IndexDocument
	for _, r := range results {
		if r.Err != nil || r.Doc == nil {
			continue
		}
		name := strings.TrimSuffix(filepath.Base(r.InputPath), filepath.Ext(r.InputPath))
		docs = append(docs, tex2yaml.IndexDocument{Name: name, Path: r.InputPath, Doc: r.Doc})
	}
	if len(docs) == 0 {
		return nil
	}
	ix, err := tex2yaml.BuildIndex(ctx, path, docs)
	if err != nil {
		return err
	}
	return ix.Close()
}

// printResults outputs per-file outcomes and a summary, returning the
// failure count.
func printResults(results []ConversionResult, quiet, verbose bool, stdout, stderr io.Writer) int {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}
		if quiet {
			continue
		}
		switch {
		case r.OutputPath == "":
			fmt.Fprintf(stdout, "OK %s\n", r.InputPath)
		case verbose:
			fmt.Fprintf(stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		default:
			fmt.Fprintf(stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(stdout, "\n%d succeeded, %d failed\n", len(results)-failed, failed)
	}
	return failed
}
