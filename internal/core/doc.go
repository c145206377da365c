// Package core provides the business logic for serving the operadoras dataset.
//
// This package contains all domain logic independent of the HTTP layer. It can
// be used by web handlers, the csvinspect CLI, or tests without modification.
//
// # Architecture
//
// The package is organized around a few key concepts:
//
//   - Encodings: named candidate text encodings backed by golang.org/x/text.
//   - Loader: reads a semicolon-delimited file once and tries each candidate
//     encoding in order until one decodes and parses.
//   - Table: the parsed header and raw rows, with whole-column type inference.
//   - Records: the normalized rows, where every missing cell becomes null.
//   - Cache: owns the process-lifetime Dataset and loads it at most once.
//
// # Loading
//
// The flow for a cache miss is:
//
//  1. [Cache.Get] stats the configured path ([ErrSourceNotFound] if absent)
//  2. [Loader.Load] reads the file and tries each [Encoding] in order
//  3. A decode error moves on to the next candidate; a structural error
//     aborts the load unless the loader is lenient
//  4. The winning [Table] is normalized into [Record] values and encoded once
//  5. The [Dataset] is stored atomically and served for every later request
//
// # Error Handling
//
// Failures are reported as wrapped sentinel errors ([ErrSourceNotFound],
// [ErrNoEncoding], [ErrEmptyInput], [ErrMalformedRow], [ErrFileTooLarge]).
// Technical errors are mapped to user-friendly messages using [MapError].
package core
