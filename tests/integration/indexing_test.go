package integration

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Svring/galatea-sub000/internal/embedder"
	"github.com/Svring/galatea-sub000/internal/pipeline"
	"github.com/Svring/galatea-sub000/internal/storage"
	"github.com/Svring/galatea-sub000/pkg/types"
)

// fixtureExtensions covers every language in the fixture tree.
var fixtureExtensions = []string{"rs", "go", "py", "ts", "tsx", "js", "java"}

// IndexingTestSuite exercises the full pipeline against the fixture tree.
type IndexingTestSuite struct {
	suite.Suite
	fixturesDir string
	ctx         context.Context

	embedder *MockEmbedder
	store    *CaptureStore
	pipeline *pipeline.Pipeline
}

// SetupSuite runs once before all tests
func (s *IndexingTestSuite) SetupSuite() {
	s.ctx = context.Background()

	wd, err := os.Getwd()
	s.Require().NoError(err)
	s.fixturesDir = filepath.Join(filepath.Dir(wd), "testdata", "fixtures")

	_, err = os.Stat(s.fixturesDir)
	s.Require().NoError(err, "fixtures directory should exist")
}

// SetupTest runs before each test
func (s *IndexingTestSuite) SetupTest() {
	s.embedder = NewMockEmbedder(1536)
	s.store = NewCaptureStore()
	gen := embedder.NewGeneratorWithProvider(s.embedder, nil, nil)
	s.pipeline = pipeline.New(gen, s.store, nil)
}

func (s *IndexingTestSuite) options() pipeline.Options {
	return pipeline.Options{
		Root:       s.fixturesDir,
		Extensions: fixtureExtensions,
	}
}

// TestFullExtraction parses every fixture language and checks that each
// file contributes valid entities.
func (s *IndexingTestSuite) TestFullExtraction() {
	entities, stats, err := s.pipeline.ExtractDirectory(s.ctx, s.options())
	s.Require().NoError(err)

	s.T().Logf("Extraction stats: %+v", stats)
	s.Equal(7, stats.FilesFound)
	s.Equal(7, stats.FilesParsed)
	s.Equal(0, stats.FilesSkipped)
	s.Equal(0, stats.FilesFailed)
	s.Equal(len(entities), stats.EntitiesIndexed)
	s.NotEmpty(entities)

	byFile := make(map[string]int)
	for _, e := range entities {
		s.NoError(e.Validate(), "entity %q should be valid", e.Name)
		s.NotEmpty(e.Context.Snippet, "entity %q should carry a snippet", e.Name)
		byFile[e.Context.FileName]++
	}
	for _, name := range []string{"sample.rs", "sample.go", "sample.py", "sample.ts", "component.tsx", "sample.js", "Sample.java"} {
		s.Greater(byFile[name], 0, "expected entities from %s", name)
	}
}

// TestExtractsKnownEntities pins the kind mapping for one landmark entity
// per language.
func (s *IndexingTestSuite) TestExtractsKnownEntities() {
	entities, _, err := s.pipeline.ExtractDirectory(s.ctx, s.options())
	s.Require().NoError(err)

	kinds := make(map[string]types.EntityKind)
	for _, e := range entities {
		kinds[e.Name] = e.Kind
	}

	s.Equal(types.KindFunction, kinds["load_config"])
	s.Equal(types.KindStruct, kinds["Config"])
	s.Equal(types.KindFunction, kinds["SplitTokens"])
	s.Equal(types.KindClass, kinds["RetrySchedule"])
	s.Equal(types.KindClass, kinds["MessageBus"])
	s.Equal(types.KindFunctionComponent, kinds["UserCard"])
	s.Equal(types.KindClass, kinds["AssetCatalog"])
	s.Equal(types.KindClass, kinds["Sample"])
}

// TestFullIndexing runs discover -> extract -> embed -> upsert end to end.
func (s *IndexingTestSuite) TestFullIndexing() {
	stats, err := s.pipeline.BuildIndex(s.ctx, s.options(), "fixtures_index")
	s.Require().NoError(err)

	s.T().Logf("Indexing stats: %+v", stats)
	s.Equal(7, stats.FilesParsed)
	s.Greater(stats.EntitiesIndexed, 0)
	s.Greater(stats.EmbeddingsCreated, 0)
	s.Equal(0, stats.EmbeddingsCached)
	s.Equal(0, stats.EmbeddingsFailed)
	s.Equal(stats.EmbeddingsCreated, stats.PointsUpserted)
	s.Greater(stats.Duration, time.Duration(0))
	s.Equal([]string{"fixtures_index"}, s.store.Collections())

	for _, e := range s.store.Entities() {
		s.True(e.HasEmbedding(), "upserted entity %q must be embedded", e.Name)
		s.Len(e.Embedding, 1536)
	}
}

// TestReindexServedFromCache verifies that a second build over unchanged
// sources never hits the embedding provider.
func (s *IndexingTestSuite) TestReindexServedFromCache() {
	cache, err := storage.NewSQLiteStore(filepath.Join(s.T().TempDir(), "cache.db"))
	s.Require().NoError(err)
	defer cache.Close()

	gen := embedder.NewGeneratorWithProvider(s.embedder, cache, nil)
	pipe := pipeline.New(gen, s.store, nil)

	first, err := pipe.BuildIndex(s.ctx, s.options(), "fixtures_index")
	s.Require().NoError(err)
	s.Greater(first.EmbeddingsCreated, 0)
	s.Equal(0, first.EmbeddingsCached)
	callsAfterFirst := s.embedder.Calls()

	second, err := pipe.BuildIndex(s.ctx, s.options(), "fixtures_index")
	s.Require().NoError(err)
	s.Equal(0, second.EmbeddingsCreated)
	s.Equal(first.EmbeddingsCreated, second.EmbeddingsCached)
	s.Equal(callsAfterFirst, s.embedder.Calls(), "second run must not hit the provider")

	cached, err := cache.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(first.EmbeddingsCreated, cached)
}

// TestEntityFileRoundTrip drives the file-based entry points: extract to
// an entity file, embed it into a second file, then upsert that file.
func (s *IndexingTestSuite) TestEntityFileRoundTrip() {
	tmpDir := s.T().TempDir()
	rawFile := filepath.Join(tmpDir, "entities.json")
	embeddedFile := filepath.Join(tmpDir, "entities_embedded.json")

	stats, err := s.pipeline.IndexDirectory(s.ctx, s.options(), rawFile)
	s.Require().NoError(err)
	s.Greater(stats.EntitiesIndexed, 0)

	gen := embedder.NewGeneratorWithProvider(s.embedder, nil, nil)
	genStats, err := gen.GenerateFile(s.ctx, rawFile, embeddedFile)
	s.Require().NoError(err)
	s.Equal(stats.EntitiesIndexed, genStats.Requested)
	s.Equal(0, genStats.Failed)

	data, err := os.ReadFile(embeddedFile)
	s.Require().NoError(err)
	var entities []types.Entity
	s.Require().NoError(json.Unmarshal(data, &entities))
	s.Len(entities, stats.EntitiesIndexed)
	for _, e := range entities {
		s.True(e.HasEmbedding(), "entity %q missing embedding", e.Name)
	}

	count, err := s.store.Upsert(s.ctx, "file_index", entities)
	s.Require().NoError(err)
	s.Equal(len(entities), count)
}

// TestGranularityLevels checks that coarse merging shrinks the entity
// list while respecting the size bound.
func (s *IndexingTestSuite) TestGranularityLevels() {
	fine, _, err := s.pipeline.ExtractDirectory(s.ctx, s.options())
	s.Require().NoError(err)

	opts := s.options()
	opts.Granularity = types.GranularityCoarse
	opts.MaxSnippetSize = 1200
	coarse, _, err := s.pipeline.ExtractDirectory(s.ctx, opts)
	s.Require().NoError(err)

	s.NotEmpty(coarse)
	s.Less(len(coarse), len(fine), "coarse merging should reduce the entity count")

	for _, e := range coarse {
		s.LessOrEqual(e.SnippetLen(), 1200, "entity %q exceeds the size bound", e.Name)
	}
}

// TestIndexingSuite runs the suite
func TestIndexingSuite(t *testing.T) {
	suite.Run(t, new(IndexingTestSuite))
}
