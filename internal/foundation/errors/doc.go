// Package errors provides classified errors for the folio build pipeline.
//
// Every error carries a category (what subsystem produced it) and a severity
// (what the pipeline should do about it). The contract across the pipeline is:
//
//   - SeverityWarning errors are collected into the build report and never
//     abort a build (a malformed BibTeX entry, a missing local asset).
//   - SeverityError errors fail the operation that produced them but the
//     orchestrator may still continue with degraded output.
//   - SeverityFatal errors abort the build (unloadable config, unwritable
//     output directory).
//
// Use the fluent builder:
//
//	err := errors.ParseError("entry has no parseable year").
//		WithContext("cite_key", key).
//		Build()
package errors
