package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Svring/galatea-sub000/internal/discovery"
	"github.com/Svring/galatea-sub000/internal/embedder"
	"github.com/Svring/galatea-sub000/internal/extractor"
	"github.com/Svring/galatea-sub000/internal/postprocessor"
	"github.com/Svring/galatea-sub000/pkg/types"
)

// ErrBuildInProgress is returned when a background build is requested while
// another one is still running.
var ErrBuildInProgress = errors.New("an index build is already in progress")

// EmbeddingGenerator fills in missing entity embeddings. Satisfied by
// *embedder.Generator.
type EmbeddingGenerator interface {
	Generate(ctx context.Context, entities []types.Entity) (*embedder.Statistics, error)
}

// VectorStore receives embedded entities. Satisfied by *vectorstore.Store.
type VectorStore interface {
	EnsureCollection(ctx context.Context, name string) error
	Upsert(ctx context.Context, collection string, entities []types.Entity) (int, error)
}

// Options select what gets indexed and how entities are sized.
type Options struct {
	Root        string   // Directory to walk
	Extensions  []string // File extensions to include, without the dot
	ExcludeDirs []string // Directory names to skip during the walk

	// MaxSnippetSize bounds entity snippets in bytes: oversized entities
	// are split and merges respect the bound. Zero disables the bound.
	MaxSnippetSize int

	Granularity types.Granularity
}

// Statistics summarizes one pipeline run.
type Statistics struct {
	FilesFound        int
	FilesParsed       int
	FilesSkipped      int // Files with no registered language
	FilesFailed       int // Files that failed to parse
	EntitiesExtracted int // Entities before postprocessing
	EntitiesIndexed   int // Entities after split/merge postprocessing
	EmbeddingsCreated int
	EmbeddingsCached  int
	EmbeddingsFailed  int
	PointsUpserted    int
	Duration          time.Duration
	ErrorMessages     []string
}

// Pipeline coordinates the indexing flow: discover -> extract ->
// postprocess -> embed -> store.
type Pipeline struct {
	extractor *extractor.Extractor
	generator EmbeddingGenerator
	store     VectorStore
	logger    *slog.Logger
	workers   int
	buildLock BuildLock
}

// New creates a Pipeline. generator and store may be nil when only the
// extraction entry points are used.
func New(generator EmbeddingGenerator, store VectorStore, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		extractor: extractor.New(),
		generator: generator,
		store:     store,
		logger:    logger,
		workers:   runtime.NumCPU(),
	}
}

// ExtractFile parses a single file into entities. Oversized entities are
// split when maxSnippetSize is positive.
func (p *Pipeline) ExtractFile(path string, maxSnippetSize int) ([]types.Entity, error) {
	return p.extractor.ExtractFile(path, maxSnippetSize)
}

// Supports reports whether a language is registered for the file.
func (p *Pipeline) Supports(path string) bool {
	return p.extractor.Supports(path)
}

// ExtractDirectory walks opts.Root, parses every matching file
// concurrently, and postprocesses the combined entity list. Files that
// fail to parse are logged and skipped; the run keeps going.
func (p *Pipeline) ExtractDirectory(ctx context.Context, opts Options) ([]types.Entity, *Statistics, error) {
	start := time.Now()
	stats := &Statistics{}

	files, err := discovery.FindFiles(opts.Root, opts.Extensions, opts.ExcludeDirs)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to discover files: %w", err)
	}
	stats.FilesFound = len(files)
	if len(files) == 0 {
		p.logger.Info("no matching files found", "root", opts.Root, "extensions", opts.Extensions)
		stats.Duration = time.Since(start)
		return nil, stats, nil
	}

	entities, err := p.extractFiles(ctx, files, opts.MaxSnippetSize, stats)
	if err != nil {
		return nil, stats, err
	}
	p.logger.Info("extracted entities", "files", stats.FilesParsed, "entities", stats.EntitiesExtracted)

	processed := postprocessor.Process(entities, opts.Granularity, sizeBound(opts.MaxSnippetSize))
	stats.EntitiesIndexed = len(processed)
	stats.Duration = time.Since(start)
	p.logger.Info("postprocessed entities",
		"granularity", opts.Granularity.String(),
		"before", stats.EntitiesExtracted,
		"after", stats.EntitiesIndexed)

	return processed, stats, nil
}

// extractFiles parses files concurrently. Results keep the discovery
// order regardless of which worker finished first.
func (p *Pipeline) extractFiles(ctx context.Context, files []string, maxSnippetSize int, stats *Statistics) ([]types.Entity, error) {
	results := make([][]types.Entity, len(files))
	failures := make([]error, len(files))

	var eg errgroup.Group
	eg.SetLimit(p.workers)
	for slot, path := range files {
		eg.Go(func() error {
			entities, err := p.extractor.ExtractFile(path, maxSnippetSize)
			if err != nil {
				failures[slot] = err
				return nil
			}
			results[slot] = entities
			return nil
		})
	}
	_ = eg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entities []types.Entity
	for slot, path := range files {
		if err := failures[slot]; err != nil {
			if errors.Is(err, extractor.ErrUnsupportedLanguage) {
				p.logger.Debug("skipping file with no registered language", "file", path)
				stats.FilesSkipped++
				continue
			}
			p.logger.Warn("failed to parse file", "file", path, "error", err)
			stats.FilesFailed++
			stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		p.logger.Debug("parsed file", "file", path, "entities", len(results[slot]))
		stats.FilesParsed++
		entities = append(entities, results[slot]...)
	}
	stats.EntitiesExtracted = len(entities)

	return entities, nil
}

// IndexDirectory extracts a directory and writes the entity list to
// outputPath as indented JSON. When nothing is extracted, no file is
// written.
func (p *Pipeline) IndexDirectory(ctx context.Context, opts Options, outputPath string) (*Statistics, error) {
	p.logger.Info("indexing directory", "root", opts.Root, "output", outputPath)

	entities, stats, err := p.ExtractDirectory(ctx, opts)
	if err != nil {
		return stats, err
	}
	if len(entities) == 0 {
		p.logger.Info("no entities extracted, output file will not be created", "root", opts.Root)
		return stats, nil
	}

	data, err := json.MarshalIndent(entities, "", "  ")
	if err != nil {
		return stats, fmt.Errorf("failed to encode entities: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return stats, fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	p.logger.Info("wrote entity index", "output", outputPath, "entities", len(entities))
	return stats, nil
}

// BuildIndex runs the full pipeline into a Qdrant collection: discover and
// extract, embed, then upsert. Embedding transport failures abort the
// build; per-entity embedding failures are tolerated.
func (p *Pipeline) BuildIndex(ctx context.Context, opts Options, collection string) (*Statistics, error) {
	if p.generator == nil || p.store == nil {
		return nil, errors.New("pipeline is not configured for index builds")
	}

	start := time.Now()

	p.logger.Info("[1/4] discovering files", "root", opts.Root, "extensions", opts.Extensions)
	entities, stats, err := p.ExtractDirectory(ctx, opts)
	if err != nil {
		return stats, err
	}
	if stats.FilesFound == 0 {
		p.logger.Info("no matching files found, cancelling index build")
		return stats, nil
	}

	p.logger.Info("[2/4] extracted entities", "count", stats.EntitiesIndexed)
	if len(entities) == 0 {
		p.logger.Info("no entities extracted, cancelling index build")
		return stats, nil
	}

	p.logger.Info("[3/4] generating embeddings", "count", len(entities))
	embedStats, err := p.generator.Generate(ctx, entities)
	if embedStats != nil {
		stats.EmbeddingsCreated = embedStats.Embedded
		stats.EmbeddingsCached = embedStats.CacheHits
		stats.EmbeddingsFailed = embedStats.Failed
		stats.ErrorMessages = append(stats.ErrorMessages, embedStats.ErrorMessages...)
	}
	if err != nil {
		return stats, fmt.Errorf("embedding generation failed: %w", err)
	}
	if stats.EmbeddingsCreated == 0 && stats.EmbeddingsCached == 0 {
		p.logger.Warn("no embeddings were generated, nothing will be upserted")
	}

	p.logger.Info("[4/4] writing to vector store", "collection", collection)
	if err := p.store.EnsureCollection(ctx, collection); err != nil {
		return stats, fmt.Errorf("failed to ensure collection: %w", err)
	}
	written, err := p.store.Upsert(ctx, collection, entities)
	if err != nil {
		return stats, fmt.Errorf("failed to upsert entities: %w", err)
	}
	stats.PointsUpserted = written
	stats.Duration = time.Since(start)

	p.logger.Info("index build complete",
		"collection", collection,
		"points", stats.PointsUpserted,
		"duration", stats.Duration)
	return stats, nil
}

// BuildIndexBackground starts BuildIndex on a fresh goroutine and returns
// immediately. Only one background build may run at a time; onDone, if not
// nil, is invoked with the outcome.
func (p *Pipeline) BuildIndexBackground(opts Options, collection string, onDone func(*Statistics, error)) error {
	if !p.buildLock.TryAcquire() {
		return ErrBuildInProgress
	}

	go func() {
		defer p.buildLock.Release()

		stats, err := p.BuildIndex(context.Background(), opts, collection)
		if err != nil {
			p.logger.Error("background index build failed", "error", err)
		}
		if onDone != nil {
			onDone(stats, err)
		}
	}()

	return nil
}

// sizeBound adapts the zero-disables convention to the postprocessor's
// nil-disables one.
func sizeBound(maxSnippetSize int) *int {
	if maxSnippetSize <= 0 {
		return nil
	}
	return &maxSnippetSize
}
