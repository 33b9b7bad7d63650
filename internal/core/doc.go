// Package core provides the business logic for dataset exploration.
//
// This package is the heart of the service, containing all domain logic
// independent of any UI or transport layer. It can be used by web
// handlers, CLI tools, or tests without modification.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Service: The main entry point for all operations (upload,
//     analysis, feature engineering, export).
//   - Sessions: Each upload creates an in-memory dataset session owned
//     by the uploading user; all later operations address that session.
//   - History: Every upload is recorded in Postgres so users can see
//     what they have analyzed before.
//
// # Upload Flow
//
//  1. Client calls [Service.Upload] with the raw file bytes
//  2. The dataset loader parses the file by suffix and infers column types
//  3. The shrink pass narrows numeric widths and codes low-cardinality
//     strings as categoricals
//  4. A session is created holding the original table and a working copy
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE006: File errors (size, format, encoding, parsing)
//   - SES001: Expired or missing dataset sessions
//   - ARG001-ARG003: Bad operation arguments (unknown columns, domains)
//   - AUTH001: Credential failures
//   - DB001-DB003: Database errors (connections, timeouts)
package core
