package worker

import (
	"context"
	"sort"

	"github.com/ppiankov/coursegrid/internal/model"
)

// ParsedFile is the normalized content of one timetable file
type ParsedFile struct {
	Name     string
	Records  []model.CourseRecord
	Encoding string
	Lossy    bool
}

// FileParser reads and parses a single file
type FileParser interface {
	ParseFile(ctx context.Context, path string) (*ParsedFile, error)
}

// FileJob parses one file at a fixed position in the batch
type FileJob struct {
	Index  int
	Path   string
	Parser FileParser
}

// Execute executes the parse job
func (j *FileJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &FileResult{Index: j.Index, Path: j.Path, Error: err}
	}
	parsed, err := j.Parser.ParseFile(ctx, j.Path)
	return &FileResult{Index: j.Index, Path: j.Path, File: parsed, Error: err}
}

// FileResult represents the result of a parse job
type FileResult struct {
	Index int
	Path  string
	File  *ParsedFile
	Error error
}

// GetError returns the error from the parse result
func (r *FileResult) GetError() error {
	return r.Error
}

// BatchParser parses many files concurrently and restores input order
type BatchParser struct {
	parser      FileParser
	concurrency int
}

// NewBatchParser creates a new batch parser
func NewBatchParser(parser FileParser, concurrency int) *BatchParser {
	return &BatchParser{
		parser:      parser,
		concurrency: concurrency,
	}
}

// ParseFiles parses paths and returns one result per started job, sorted
// by the position of its path in paths.
func (b *BatchParser) ParseFiles(ctx context.Context, paths []string) []*FileResult {
	jobs := make([]Job, len(paths))
	for i, path := range paths {
		jobs[i] = &FileJob{Index: i, Path: path, Parser: b.parser}
	}

	results := NewPool(ctx, b.concurrency).Run(jobs)

	fileResults := make([]*FileResult, len(results))
	for i, result := range results {
		fileResults[i] = result.(*FileResult)
	}
	sort.Slice(fileResults, func(i, j int) bool {
		return fileResults[i].Index < fileResults[j].Index
	})

	return fileResults
}
