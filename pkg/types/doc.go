// Package types provides the shared domain types for the codescout index.
//
// The central type is Entity, one structured record per named code unit
// (function, type, module, import, ...) extracted from a source tree:
//
//	entity := types.Entity{
//	    Name:      "greet",
//	    Signature: "fn greet(name: &str)",
//	    Kind:      types.KindFunction,
//	    Line:      3,
//	    LineFrom:  1,
//	    LineTo:    5,
//	    Context: types.Context{
//	        FilePath: "src/main.rs",
//	        FileName: "main.rs",
//	        Snippet:  source,
//	    },
//	}
//
// Entities serialize with the wire field names consumed by the rest of the
// system: the kind travels as "code_type", the nullable fields (docstring,
// context.module, context.struct_name) serialize as JSON null when absent,
// and the embedding vector is omitted entirely until computed.
//
// Granularity selects the postprocessor's merge policy. Fine touches only
// same-kind runs of imports, constants, and variables; Medium and Coarse
// merge anything adjacent under a size target:
//
//	g, err := types.ParseGranularity("coarse")
//
// Validation follows the usual pattern:
//
//	if err := entity.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package types
