// Package searcher answers natural-language queries against an indexed
// collection: the query text is embedded with the same model that indexed
// the code, then matched by vector similarity.
//
// Responses are cached in a bounded LRU with per-request TTLs. Cached
// responses are deep copies in both directions, so callers may freely
// mutate what they get back.
//
//	s := searcher.NewSearcher(generator, store, logger)
//	resp, err := s.Query(ctx, searcher.QueryRequest{
//	    Query:      "where are retries configured",
//	    Collection: "code_index",
//	    UseCache:   true,
//	})
package searcher
