// Package mcp exposes the indexing pipeline as a Model Context Protocol
// server speaking JSON-RPC over stdio.
//
// # Tools
//
// The server registers seven tools that mirror the pipeline stages:
//
//   - find_files: list source files under a directory by extension
//   - parse_file: extract code entities from a single file
//   - parse_directory: extract entities from every matching file
//   - generate_embeddings: embed an entity file and write the result
//   - upsert_embeddings: push an embedded entity file into Qdrant
//   - query_collection: semantic search over an indexed collection
//   - build_index: run the whole pipeline in the background
//
// parse_directory and generate_embeddings communicate through entity
// files, JSON arrays of code entities, so intermediate results can be
// inspected or post-processed between stages. build_index runs the same
// stages in-process without touching disk.
//
// # Usage
//
//	srv, err := mcp.NewServer("", logger)
//	if err != nil {
//		return err
//	}
//	return srv.Serve(ctx)
//
// Serve blocks until the client closes stdin. Logs go to stderr; stdout
// carries the protocol.
//
// # Configuration
//
// Embedding credentials default to OPENAI_API_KEY and OPENAI_API_BASE,
// the Qdrant endpoint to CODESCOUT_QDRANT_URL, and the embedding cache
// location to CODESCOUT_CACHE_PATH. Individual tool calls can override
// the model, credentials and endpoint per request; overrides never
// mutate the server-wide defaults.
//
// # Errors
//
// Tool failures are reported as *MCPError with JSON-RPC style codes.
// Parameter problems use -32602, missing paths -32001, and a build_index
// call while another build is running -32002. Long-running builds report
// progress to the server log rather than the client.
package mcp
