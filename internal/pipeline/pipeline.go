package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/coursegrid/internal/dedup"
	"github.com/ppiankov/coursegrid/internal/extract"
	"github.com/ppiankov/coursegrid/internal/ingest"
	"github.com/ppiankov/coursegrid/internal/merge"
	"github.com/ppiankov/coursegrid/internal/model"
	"github.com/ppiankov/coursegrid/internal/worker"
)

// Pipeline orchestrates decode, extraction, TA merge and dedup over a
// directory of timetable pages
type Pipeline struct {
	decoder    *ingest.Decoder
	rows       *extract.RowParser
	normalizer *extract.Normalizer
	renderer   *Renderer
	config     *model.Config
	stdout     io.Writer // Diagnostic lines
	logger     *slog.Logger
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, stdout io.Writer, logger *slog.Logger) *Pipeline {
	if stdout == nil {
		stdout = os.Stdout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		decoder:    ingest.NewDecoder(cfg.Decode.Encodings, logger),
		rows:       extract.NewRowParser(cfg.Extract),
		normalizer: extract.NewNormalizer(cfg.Extract),
		renderer:   NewRenderer(),
		config:     cfg,
		stdout:     stdout,
		logger:     logger,
	}
}

// Result contains the records of a complete run and what happened to the input
type Result struct {
	Records []model.CourseRecord
	Files   int      // Files matched in the input directory
	Failed  int      // Files that could not be read or parsed
	Merged  int      // TA rows folded into a previous record
	Dropped int      // Records removed as seq duplicates
	Lossy   []string // Files decoded with replacement characters
}

// ListFiles returns the input files sorted by file name
func (p *Pipeline) ListFiles() ([]string, error) {
	dir := p.config.Input.Dir
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	pattern := p.config.Input.Pattern
	if pattern == "" {
		pattern = "*.htm"
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		ok, err := filepath.Match(pattern, name)
		if err != nil {
			return nil, fmt.Errorf("match %q: %w", pattern, err)
		}
		if ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
	}
	return paths, nil
}

// ParseFile decodes one file and normalizes its data rows
func (p *Pipeline) ParseFile(ctx context.Context, path string) (*worker.ParsedFile, error) {
	name := filepath.Base(path)

	decoded, err := p.decoder.ReadFile(path)
	if err != nil {
		return nil, err
	}

	rows, err := p.rows.Parse(decoded.Text, name)
	if err != nil {
		return nil, err
	}

	records := make([]model.CourseRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, p.normalizer.Normalize(row))
	}

	p.logger.Debug("parsed file", "file", name, "encoding", decoded.Encoding, "rows", len(records))

	return &worker.ParsedFile{
		Name:     name,
		Records:  records,
		Encoding: decoded.Encoding,
		Lossy:    decoded.Lossy,
	}, nil
}

// Run processes every input file in name order and returns the merged,
// deduplicated records
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	paths, err := p.ListFiles()
	if err != nil {
		return nil, err
	}
	p.logger.Info("processing input", "dir", p.config.Input.Dir, "files", len(paths), "workers", p.config.Concurrency.Workers)

	batch := worker.NewBatchParser(p, p.config.Concurrency.Workers)
	parsed := batch.ParseFiles(ctx, paths)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("process input: %w", err)
	}

	result := &Result{Files: len(paths)}
	folder := merge.NewFolder(p.config.Merge.TA)

	// Records stream through the folder in file order so a TA row can merge
	// into the last record of the previous file
	for _, fr := range parsed {
		if fr.Error != nil {
			result.Failed++
			fmt.Fprintf(p.stdout, "Failed to extract %s: %v\n", filepath.Base(fr.Path), fr.Error)
			continue
		}
		if fr.File.Lossy {
			result.Lossy = append(result.Lossy, fr.File.Name)
			p.logger.Warn("decoded with replacement characters", "file", fr.File.Name)
		}
		for _, rec := range fr.File.Records {
			folder.Push(rec)
		}
	}
	result.Merged = folder.Merged()

	result.Records = dedup.BySeq(folder.Records(), func(rec model.CourseRecord) {
		result.Dropped++
		fmt.Fprintf(p.stdout, "Removed duplicate by seq: %s (%s/%s) from %s\n", rec.SeqValue(), rec.Code, rec.Class, rec.Source)
	})

	p.logger.Info("processing complete",
		"records", len(result.Records),
		"merged", result.Merged,
		"dropped", result.Dropped,
		"failed", result.Failed)

	return result, nil
}

// RunAndWrite runs the pipeline and writes the records to the configured output
func (p *Pipeline) RunAndWrite(ctx context.Context) (*Result, error) {
	result, err := p.Run(ctx)
	if err != nil {
		return nil, err
	}

	if err := p.renderer.RenderJSON(result.Records, p.config.Output.Path, p.config.Output.Pretty); err != nil {
		return nil, fmt.Errorf("render JSON: %w", err)
	}
	p.renderer.RenderSummary(p.stdout, len(result.Records), p.config.Output.Path)

	return result, nil
}
