package postprocessor

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Svring/galatea-sub000/pkg/types"
)

func makeEntity(name string, kind types.EntityKind, snippet string, lineFrom, lineTo int) types.Entity {
	return types.Entity{
		Name:      name,
		Signature: "sig " + name,
		Kind:      kind,
		Line:      lineFrom,
		LineFrom:  lineFrom,
		LineTo:    lineTo,
		Context: types.Context{
			FilePath: "/tmp/source.rs",
			FileName: "source.rs",
			Snippet:  snippet,
		},
	}
}

func TestSplit_UnderLimitUnchanged(t *testing.T) {
	entity := makeEntity("small", types.KindFunction, "fn small() {}", 1, 1)

	chunks := Split(entity, 100)

	require.Len(t, chunks, 1)
	assert.Equal(t, entity, chunks[0])
}

func TestSplit_GreedyLineChunks(t *testing.T) {
	// One 25-char line followed by nine 24-char lines joins to exactly
	// 250 characters. With maxSize 100 the greedy packer produces chunks
	// of 75, 99, and 74 characters.
	lines := make([]string, 10)
	lines[0] = strings.Repeat("a", 25)
	for i := 1; i < 10; i++ {
		lines[i] = strings.Repeat("b", 24)
	}
	snippet := strings.Join(lines, "\n")
	require.Len(t, snippet, 250)

	entity := makeEntity("big_fn", types.KindFunction, snippet, 10, 19)

	chunks := Split(entity, 100)

	require.Len(t, chunks, 3)
	assert.Equal(t, 75, chunks[0].SnippetLen())
	assert.Equal(t, 99, chunks[1].SnippetLen())
	assert.Equal(t, 74, chunks[2].SnippetLen())

	for i, chunk := range chunks {
		assert.Equal(t, fmt.Sprintf("big_fn [chunk %d/3]", i+1), chunk.Name)
		assert.Equal(t, fmt.Sprintf("Chunk %d/3 of original Function", i+1), chunk.Signature)
		assert.Equal(t, types.KindFunction, chunk.Kind)
		assert.LessOrEqual(t, chunk.SnippetLen(), 100)
	}

	assert.Equal(t, 10, chunks[0].LineFrom)
	assert.Equal(t, 12, chunks[0].LineTo)
	assert.Equal(t, 13, chunks[1].LineFrom)
	assert.Equal(t, 16, chunks[1].LineTo)
	assert.Equal(t, 17, chunks[2].LineFrom)
	assert.Equal(t, 19, chunks[2].LineTo)
}

func TestSplit_RoundTrip(t *testing.T) {
	var lines []string
	for i := 0; i < 40; i++ {
		lines = append(lines, fmt.Sprintf("    let value_%02d = compute(%d);", i, i))
	}
	snippet := strings.Join(lines, "\n")
	entity := makeEntity("round_trip", types.KindFunction, snippet, 1, 40)

	chunks := Split(entity, 120)
	require.Greater(t, len(chunks), 1)

	parts := make([]string, len(chunks))
	for i, chunk := range chunks {
		parts[i] = chunk.Context.Snippet
	}
	assert.Equal(t, snippet, strings.Join(parts, "\n"))
}

func TestSplit_LineSpansClamped(t *testing.T) {
	snippet := strings.Repeat("x", 30) + "\n" + strings.Repeat("y", 30)
	entity := makeEntity("clamped", types.KindFunction, snippet, 5, 5)

	chunks := Split(entity, 35)

	require.Len(t, chunks, 2)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, chunk.LineFrom, entity.LineTo)
		assert.LessOrEqual(t, chunk.LineTo, entity.LineTo)
	}
}

func TestSplit_SingleOversizedLineKeptIntact(t *testing.T) {
	snippet := strings.Repeat("z", 150)
	entity := makeEntity("one_liner", types.KindFunction, snippet, 3, 3)

	chunks := Split(entity, 100)

	require.Len(t, chunks, 1)
	assert.Equal(t, "one_liner [chunk 1/1]", chunks[0].Name)
	assert.Equal(t, snippet, chunks[0].Context.Snippet)
}

func TestSplit_PreservesContextAndDocstring(t *testing.T) {
	entity := makeEntity("documented", types.KindFunction, "line1\nline2\nline3", 1, 3)
	entity.Docstring = types.StringPtr("does things")
	entity.Context.Module = types.StringPtr("crate::deep")

	chunks := Split(entity, 6)

	require.Len(t, chunks, 3)
	for _, chunk := range chunks {
		require.NotNil(t, chunk.Docstring)
		assert.Equal(t, "does things", *chunk.Docstring)
		require.NotNil(t, chunk.Context.Module)
		assert.Equal(t, "crate::deep", *chunk.Context.Module)
		assert.Equal(t, "/tmp/source.rs", chunk.Context.FilePath)
	}

	// Chunks own their pointers; mutating one must not leak into others.
	*chunks[0].Docstring = "mutated"
	assert.Equal(t, "does things", *chunks[1].Docstring)
}

func TestProcess_FineMergesSameKindRuns(t *testing.T) {
	entities := []types.Entity{
		makeEntity("use a", types.KindImport, "use a;", 1, 1),
		makeEntity("use b", types.KindImport, "use b;", 2, 2),
		makeEntity("use c", types.KindImport, "use c;", 3, 3),
	}

	result := Process(entities, types.GranularityFine, nil)

	require.Len(t, result, 1)
	merged := result[0]
	assert.Equal(t, types.KindImport, merged.Kind)
	assert.Equal(t, "Merged Import [lines 1-3]", merged.Name)
	assert.Equal(t, "use a;\nuse b;\nuse c;", merged.Context.Snippet)
	assert.Equal(t, 1, merged.LineFrom)
	assert.Equal(t, 3, merged.LineTo)
}

func TestProcess_FineNeverMixesKinds(t *testing.T) {
	entities := []types.Entity{
		makeEntity("use a", types.KindImport, "use a;", 1, 1),
		makeEntity("MAX", types.KindConstant, "const MAX: u32 = 1;", 2, 2),
		makeEntity("MIN", types.KindConstant, "const MIN: u32 = 0;", 3, 3),
	}

	result := Process(entities, types.GranularityFine, nil)

	require.Len(t, result, 2)
	assert.Equal(t, types.KindImport, result[0].Kind)
	assert.Equal(t, "use a", result[0].Name)
	assert.Equal(t, types.KindConstant, result[1].Kind)
	assert.Equal(t, "Merged Constant [lines 2-3]", result[1].Name)
}

func TestProcess_FineLeavesFunctionsAlone(t *testing.T) {
	entities := []types.Entity{
		makeEntity("use a", types.KindImport, "use a;", 1, 1),
		makeEntity("work", types.KindFunction, "fn work() {}", 2, 2),
		makeEntity("use b", types.KindImport, "use b;", 3, 3),
	}

	result := Process(entities, types.GranularityFine, nil)

	require.Len(t, result, 3)
	assert.Equal(t, "use a", result[0].Name)
	assert.Equal(t, "work", result[1].Name)
	assert.Equal(t, "use b", result[2].Name)
}

func TestProcess_FineRespectsSizeBound(t *testing.T) {
	entities := []types.Entity{
		makeEntity("use a", types.KindImport, strings.Repeat("a", 10), 1, 1),
		makeEntity("use b", types.KindImport, strings.Repeat("b", 10), 2, 2),
		makeEntity("use c", types.KindImport, strings.Repeat("c", 10), 3, 3),
	}
	maxSize := 21

	result := Process(entities, types.GranularityFine, &maxSize)

	require.Len(t, result, 2)
	assert.Equal(t, "Merged Import [lines 1-2]", result[0].Name)
	assert.Equal(t, 21, result[0].SnippetLen())
	assert.Equal(t, "use c", result[1].Name)
}

func TestProcess_CoarseMergesToTarget(t *testing.T) {
	// Three 10-char constants with maxSize 25: the first two fit in one
	// 21-char group, the third starts a new group and stays single.
	entities := []types.Entity{
		makeEntity("C1", types.KindConstant, strings.Repeat("1", 10), 1, 1),
		makeEntity("C2", types.KindConstant, strings.Repeat("2", 10), 2, 2),
		makeEntity("C3", types.KindConstant, strings.Repeat("3", 10), 3, 3),
	}
	maxSize := 25

	result := Process(entities, types.GranularityCoarse, &maxSize)

	require.Len(t, result, 2)
	assert.Equal(t, "Merged Constant [lines 1-2]", result[0].Name)
	assert.Equal(t, 21, result[0].SnippetLen())
	assert.Equal(t, "C3", result[1].Name)
	assert.Equal(t, types.KindConstant, result[1].Kind)
}

func TestProcess_CoarseNilTargetMergesAll(t *testing.T) {
	entities := []types.Entity{
		makeEntity("use a", types.KindImport, "use a;", 1, 1),
		makeEntity("work", types.KindFunction, "fn work() {}", 2, 4),
		makeEntity("Data", types.KindStruct, "struct Data;", 5, 5),
	}

	result := Process(entities, types.GranularityCoarse, nil)

	require.Len(t, result, 1)
	merged := result[0]
	assert.Equal(t, types.KindMergedChunk, merged.Kind)
	assert.Equal(t, "Merged Merged Chunk [lines 1-5]", merged.Name)
	assert.Equal(t, "use a;\nfn work() {}\nstruct Data;", merged.Context.Snippet)
}

func TestProcess_MediumHalvesTarget(t *testing.T) {
	// maxSize 42 gives Medium a 21-char target: same grouping as Coarse
	// with 21 would produce.
	entities := []types.Entity{
		makeEntity("C1", types.KindConstant, strings.Repeat("1", 10), 1, 1),
		makeEntity("C2", types.KindConstant, strings.Repeat("2", 10), 2, 2),
		makeEntity("C3", types.KindConstant, strings.Repeat("3", 10), 3, 3),
	}
	maxSize := 42

	result := Process(entities, types.GranularityMedium, &maxSize)

	require.Len(t, result, 2)
	assert.Equal(t, 21, result[0].SnippetLen())
	assert.Equal(t, "C3", result[1].Name)
}

func TestProcess_SortsByLineFrom(t *testing.T) {
	entities := []types.Entity{
		makeEntity("use b", types.KindImport, "use b;", 5, 5),
		makeEntity("use a", types.KindImport, "use a;", 1, 1),
	}

	result := Process(entities, types.GranularityFine, nil)

	require.Len(t, result, 1)
	assert.Equal(t, "use a;\nuse b;", result[0].Context.Snippet)
	assert.Equal(t, 1, result[0].LineFrom)
	assert.Equal(t, 5, result[0].LineTo)
}

func TestProcess_SingleEntityUnchanged(t *testing.T) {
	entities := []types.Entity{
		makeEntity("only", types.KindFunction, "fn only() {}", 1, 1),
	}

	for _, g := range []types.Granularity{types.GranularityFine, types.GranularityMedium, types.GranularityCoarse} {
		result := Process(entities, g, nil)
		require.Len(t, result, 1)
		assert.Equal(t, "only", result[0].Name)
	}
}

func TestProcess_EmptyInput(t *testing.T) {
	assert.Empty(t, Process(nil, types.GranularityFine, nil))
	assert.Empty(t, Process([]types.Entity{}, types.GranularityCoarse, nil))
}

func TestCreateMergedEntity_DocstringAndSignature(t *testing.T) {
	first := makeEntity("use a", types.KindImport, "use a;", 1, 1)
	second := makeEntity("use b", types.KindImport, "use b;", 2, 2)
	second.Docstring = types.StringPtr("second doc")
	third := makeEntity("use c", types.KindImport, "use c;", 3, 3)
	third.Docstring = types.StringPtr("third doc")

	merged := createMergedEntity([]types.Entity{first, second, third})

	require.NotNil(t, merged.Docstring)
	assert.Equal(t, "second doc", *merged.Docstring)
	assert.Equal(t, "sig use a\nsig use b\nsig use c", merged.Signature)
	assert.Nil(t, merged.Context.StructName)
	assert.Nil(t, merged.Embedding)
	assert.Equal(t, first.Line, merged.Line)
	assert.Equal(t, "source.rs", merged.Context.FileName)
}

func TestCreateMergedEntity_MixedKindsBecomeMergedChunk(t *testing.T) {
	entities := []types.Entity{
		makeEntity("use a", types.KindImport, "use a;", 1, 1),
		makeEntity("MAX", types.KindConstant, "const MAX: u32 = 1;", 2, 2),
	}

	merged := createMergedEntity(entities)

	assert.Equal(t, types.KindMergedChunk, merged.Kind)
	assert.Equal(t, "Merged Merged Chunk [lines 1-2]", merged.Name)
}
