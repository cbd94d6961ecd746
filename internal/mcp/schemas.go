package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func findFilesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "find_files",
		Description: "Recursively find source files under a directory, filtered by file extension. Common build and VCS directories are skipped by default.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"dir": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path of the directory to search",
				},
				"suffixes": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "File extensions to include, without the leading dot (e.g. [\"rs\", \"go\", \"py\"])",
				},
				"exclude_dirs": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Directory names to skip (defaults to node_modules, target, .git and similar)",
				},
			},
			Required: []string{"dir", "suffixes"},
		},
	}
}

func parseFileTool() mcp.Tool {
	return mcp.Tool{
		Name:        "parse_file",
		Description: "Parse a single source file into code entities (functions, structs, classes, constants) with signatures, docstrings and line ranges. Accepts an absolute path or a path suffix resolved against the working directory.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"file_path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path of the file, or a unique path suffix like 'src/lib.rs'",
				},
				"max_snippet_size": map[string]interface{}{
					"type":        "integer",
					"description": "Split entities whose snippet exceeds this many characters (0 disables splitting)",
					"default":     0,
					"minimum":     0,
				},
			},
			Required: []string{"file_path"},
		},
	}
}

func parseDirectoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "parse_directory",
		Description: "Parse every matching source file under a directory into code entities. Oversized entities are split into chunks and small entities can be merged according to the requested granularity.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"dir": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path of the directory to parse",
				},
				"suffixes": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "File extensions to include, without the leading dot",
				},
				"exclude_dirs": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Directory names to skip (defaults to node_modules, target, .git and similar)",
				},
				"max_snippet_size": map[string]interface{}{
					"type":        "integer",
					"description": "Split entities whose snippet exceeds this many characters (0 disables splitting)",
					"default":     0,
					"minimum":     0,
				},
				"granularity": map[string]interface{}{
					"type":        "string",
					"description": "How aggressively to merge small entities into combined chunks",
					"enum":        []string{"fine", "medium", "coarse"},
					"default":     "fine",
				},
			},
			Required: []string{"dir", "suffixes"},
		},
	}
}

func generateEmbeddingsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "generate_embeddings",
		Description: "Generate embeddings for an entity file produced by parse_directory and write the enriched entities to a new file. Embeddings are cached, so re-running only pays for changed snippets.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"input_file": map[string]interface{}{
					"type":        "string",
					"description": "Path of the JSON entity file to read",
				},
				"output_file": map[string]interface{}{
					"type":        "string",
					"description": "Path to write the entities with embeddings attached",
				},
				"model": map[string]interface{}{
					"type":        "string",
					"description": "Embedding model name (defaults to text-embedding-3-small)",
				},
				"api_key": map[string]interface{}{
					"type":        "string",
					"description": "API key override (defaults to OPENAI_API_KEY)",
				},
				"api_base": map[string]interface{}{
					"type":        "string",
					"description": "API base URL override for OpenAI-compatible providers (defaults to OPENAI_API_BASE)",
				},
			},
			Required: []string{"input_file", "output_file"},
		},
	}
}

func upsertEmbeddingsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "upsert_embeddings",
		Description: "Upsert an embedded entity file into a Qdrant collection, creating the collection if it does not exist. Entities without embeddings are skipped.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"input_file": map[string]interface{}{
					"type":        "string",
					"description": "Path of the JSON entity file with embeddings",
				},
				"collection_name": map[string]interface{}{
					"type":        "string",
					"description": "Qdrant collection to write into",
				},
				"qdrant_url": map[string]interface{}{
					"type":        "string",
					"description": "Qdrant endpoint override (defaults to CODESCOUT_QDRANT_URL or localhost:6334)",
				},
			},
			Required: []string{"input_file", "collection_name"},
		},
	}
}

func queryCollectionTool() mcp.Tool {
	return mcp.Tool{
		Name:        "query_collection",
		Description: "Search an indexed collection with a natural language query and return the most similar code entities.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"collection_name": map[string]interface{}{
					"type":        "string",
					"description": "Qdrant collection to search",
				},
				"query_text": map[string]interface{}{
					"type":        "string",
					"description": "Natural language description of the code to find",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
				"use_cache": map[string]interface{}{
					"type":        "boolean",
					"description": "Serve repeated queries from the in-memory result cache",
					"default":     true,
				},
				"model": map[string]interface{}{
					"type":        "string",
					"description": "Embedding model name, must match the model used to build the index",
				},
				"api_key": map[string]interface{}{
					"type":        "string",
					"description": "API key override (defaults to OPENAI_API_KEY)",
				},
				"api_base": map[string]interface{}{
					"type":        "string",
					"description": "API base URL override for OpenAI-compatible providers",
				},
				"qdrant_url": map[string]interface{}{
					"type":        "string",
					"description": "Qdrant endpoint override (defaults to CODESCOUT_QDRANT_URL or localhost:6334)",
				},
			},
			Required: []string{"collection_name", "query_text"},
		},
	}
}

func buildIndexTool() mcp.Tool {
	return mcp.Tool{
		Name:        "build_index",
		Description: "Run the full indexing pipeline for a directory in the background: discover files, extract entities, generate embeddings and upsert them into a Qdrant collection. Returns immediately; only one build runs at a time.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"dir": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path of the directory to index",
				},
				"suffixes": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "File extensions to include, without the leading dot",
				},
				"collection_name": map[string]interface{}{
					"type":        "string",
					"description": "Qdrant collection to write the index into",
				},
				"exclude_dirs": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Directory names to skip (defaults to node_modules, target, .git and similar)",
				},
				"max_snippet_size": map[string]interface{}{
					"type":        "integer",
					"description": "Split entities whose snippet exceeds this many characters (0 disables splitting)",
					"default":     0,
					"minimum":     0,
				},
				"granularity": map[string]interface{}{
					"type":        "string",
					"description": "How aggressively to merge small entities into combined chunks",
					"enum":        []string{"fine", "medium", "coarse"},
					"default":     "fine",
				},
				"model": map[string]interface{}{
					"type":        "string",
					"description": "Embedding model name (defaults to text-embedding-3-small)",
				},
				"api_key": map[string]interface{}{
					"type":        "string",
					"description": "API key override (defaults to OPENAI_API_KEY)",
				},
				"api_base": map[string]interface{}{
					"type":        "string",
					"description": "API base URL override for OpenAI-compatible providers",
				},
				"qdrant_url": map[string]interface{}{
					"type":        "string",
					"description": "Qdrant endpoint override (defaults to CODESCOUT_QDRANT_URL or localhost:6334)",
				},
			},
			Required: []string{"dir", "suffixes", "collection_name"},
		},
	}
}
