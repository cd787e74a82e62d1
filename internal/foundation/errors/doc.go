// Package errors provides the classified error primitives used across mdead.
//
// A ClassifiedError carries a category, a severity and structured context.
// Conversion code distinguishes two fatal categories that callers routinely
// branch on:
//   - CategoryMalformedTree: the document tree violated the serializer's
//     contract (unknown node kind, a cell beyond the declared columns, ...).
//   - CategoryFormat: the pretty-printer could not parse the produced markup.
//
// Example usage:
//
//	err := errors.MalformedTreeError("table cell outside declared columns").
//		WithContext("column", idx).
//		WithContext("columns", len(table.Columns)).
//		Build()
package errors
