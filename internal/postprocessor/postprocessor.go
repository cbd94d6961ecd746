package postprocessor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Svring/galatea-sub000/pkg/types"
)

// Split divides an oversized entity into ordered chunk entities. Entities at
// or under maxSize pass through unchanged. Chunks accumulate whole lines
// greedily; a single line longer than maxSize stays intact (no sub-line
// splitting). Chunk line spans are offsets from the original LineFrom,
// clamped to the original LineTo.
func Split(entity types.Entity, maxSize int) []types.Entity {
	if entity.SnippetLen() <= maxSize {
		return []types.Entity{entity}
	}

	lines := splitLines(entity.Context.Snippet)

	type piece struct {
		start, end int
		text       string
	}

	var pieces []piece
	var current []string
	currentSize := 0
	startOffset := 0

	for i, line := range lines {
		lineLen := len(line) + 1 // +1 for the joining newline
		if currentSize+lineLen > maxSize && len(current) > 0 {
			pieces = append(pieces, piece{startOffset, i - 1, strings.Join(current, "\n")})
			current = []string{line}
			currentSize = lineLen
			startOffset = i
		} else {
			current = append(current, line)
			currentSize += lineLen
		}
	}
	pieces = append(pieces, piece{startOffset, len(lines) - 1, strings.Join(current, "\n")})

	total := len(pieces)
	chunks := make([]types.Entity, 0, total)
	for i, p := range pieces {
		chunk := entity.Clone()
		chunk.Name = fmt.Sprintf("%s [chunk %d/%d]", entity.Name, i+1, total)
		chunk.Signature = fmt.Sprintf("Chunk %d/%d of original %s", i+1, total, entity.Kind)
		chunk.Context.Snippet = p.text
		chunk.LineFrom = min(entity.LineTo, entity.LineFrom+p.start)
		chunk.LineTo = min(entity.LineTo, entity.LineFrom+p.end)
		chunks = append(chunks, chunk)
	}
	return chunks
}

// Process merges the entity list according to granularity. Fine merges only
// same-kind runs of imports, constants, and variables; Medium merges any
// adjacent entities targeting half of maxSize; Coarse targets the full
// maxSize. A nil maxSize removes the size bound. Entities are stably sorted
// by LineFrom first; merging never reorders beyond that.
func Process(entities []types.Entity, granularity types.Granularity, maxSize *int) []types.Entity {
	switch granularity {
	case types.GranularityMedium:
		return mergeAggressively(entities, halfTarget(maxSize))
	case types.GranularityCoarse:
		return mergeAggressively(entities, maxSize)
	default:
		return mergeFineGrained(entities, maxSize)
	}
}

func halfTarget(maxSize *int) *int {
	if maxSize == nil {
		return nil
	}
	h := *maxSize / 2
	return &h
}

// fineMergeable reports whether Fine granularity may fold this kind into a
// same-kind run.
func fineMergeable(kind types.EntityKind) bool {
	switch kind {
	case types.KindImport, types.KindConstant, types.KindVariable:
		return true
	}
	return false
}

func sortByLineFrom(entities []types.Entity) {
	sort.SliceStable(entities, func(i, j int) bool {
		return entities[i].LineFrom < entities[j].LineFrom
	})
}

// mergeFineGrained folds consecutive runs of entities sharing one mergeable
// kind. A run breaks on a kind change or when appending would exceed
// maxSize. Other kinds pass through untouched.
func mergeFineGrained(entities []types.Entity, maxSize *int) []types.Entity {
	if len(entities) < 2 {
		return entities
	}
	sortByLineFrom(entities)

	result := make([]types.Entity, 0, len(entities))
	var group []types.Entity
	groupLen := 0

	flush := func() {
		if len(group) == 0 {
			return
		}
		result = append(result, createMergedEntity(group))
		group = nil
		groupLen = 0
	}

	for _, entity := range entities {
		if !fineMergeable(entity.Kind) {
			flush()
			result = append(result, entity)
			continue
		}
		if len(group) > 0 {
			combined := groupLen + entity.SnippetLen() + 1
			if entity.Kind == group[0].Kind && (maxSize == nil || combined <= *maxSize) {
				group = append(group, entity)
				groupLen = combined
				continue
			}
			flush()
		}
		group = append(group, entity)
		groupLen = entity.SnippetLen()
	}
	flush()
	return result
}

// mergeAggressively folds any consecutive entities into groups bounded by
// target. A nil target merges everything into a single entity.
func mergeAggressively(entities []types.Entity, target *int) []types.Entity {
	if len(entities) < 2 {
		return entities
	}
	sortByLineFrom(entities)

	var result []types.Entity
	var group []types.Entity
	groupLen := 0

	for _, entity := range entities {
		if len(group) > 0 && target != nil {
			potential := groupLen + entity.SnippetLen() + 1
			if potential > *target {
				result = append(result, createMergedEntity(group))
				group = nil
				groupLen = 0
			}
		}
		if len(group) == 0 {
			groupLen = entity.SnippetLen()
		} else {
			groupLen += entity.SnippetLen() + 1
		}
		group = append(group, entity)
	}
	if len(group) > 0 {
		result = append(result, createMergedEntity(group))
	}
	return result
}

// createMergedEntity folds a contiguous group into one entity. Singleton
// groups come back unchanged. The merged kind is the common kind when all
// constituents share one, else Merged Chunk; snippet and signature are
// newline joins in original order; the docstring is the first one present.
func createMergedEntity(group []types.Entity) types.Entity {
	if len(group) == 1 {
		return group[0]
	}

	kind := group[0].Kind
	for _, e := range group[1:] {
		if e.Kind != kind {
			kind = types.KindMergedChunk
			break
		}
	}

	snippets := make([]string, len(group))
	signatures := make([]string, len(group))
	for i, e := range group {
		snippets[i] = e.Context.Snippet
		signatures[i] = e.Signature
	}

	var docstring *string
	for _, e := range group {
		if e.Docstring != nil {
			d := *e.Docstring
			docstring = &d
			break
		}
	}

	first := group[0]
	last := group[len(group)-1]

	return types.Entity{
		Name:      fmt.Sprintf("Merged %s [lines %d-%d]", kind, first.LineFrom, last.LineTo),
		Signature: strings.Join(signatures, "\n"),
		Kind:      kind,
		Docstring: docstring,
		Line:      first.Line,
		LineFrom:  first.LineFrom,
		LineTo:    last.LineTo,
		Context: types.Context{
			Module:     clonePtr(first.Context.Module),
			FilePath:   first.Context.FilePath,
			FileName:   first.Context.FileName,
			StructName: nil,
			Snippet:    strings.Join(snippets, "\n"),
		},
	}
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// splitLines splits on newlines, dropping the single empty tail a trailing
// newline produces so rejoining with "\n" round-trips typical snippets.
func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" && strings.HasSuffix(s, "\n") {
		lines = lines[:len(lines)-1]
	}
	return lines
}
