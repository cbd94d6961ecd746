// Package pipeline coordinates the end-to-end indexing flow.
//
// The pipeline executes a multi-stage run:
//
//  1. Discovery: walk the root directory, apply extension and exclusion
//     filters
//  2. Extraction: parse files concurrently into entities, splitting
//     oversized snippets
//  3. Postprocessing: merge adjacent entities per the requested
//     granularity
//  4. Embedding: fill in missing vectors through the generator
//  5. Storage: upsert embedded entities into a Qdrant collection
//
// # Entry Points
//
// IndexDirectory stops after stage 3 and writes the entity list to a JSON
// file. BuildIndex runs all five stages into a collection. Both tolerate
// per-file parse failures and per-entity embedding failures; they abort on
// discovery, transport, and storage errors.
//
//	p := pipeline.New(generator, store, logger)
//	stats, err := p.BuildIndex(ctx, pipeline.Options{
//	    Root:        "/path/to/project",
//	    Extensions:  []string{"rs", "go", "ts"},
//	    Granularity: types.GranularityFine,
//	}, "code_index")
//
// # Background Builds
//
// BuildIndexBackground runs BuildIndex on its own goroutine so callers
// (the MCP surface in particular) can return immediately. A build lock
// keeps concurrent background builds from stacking up:
//
//	if err := p.BuildIndexBackground(opts, collection, nil); err != nil {
//	    // pipeline.ErrBuildInProgress while another build is running
//	}
package pipeline
