// Package stdlib decides which import identifiers belong to the Python
// standard library (or are otherwise not installable) and must be left out of
// a requirement set.
//
// Membership is answered by a [Provider]. Three sources are available:
//
//   - [Query] asks a Python interpreter for its standard-library module names
//   - [Embedded] is a built-in list of common standard-library modules, used
//     when no interpreter is available or as a safety net when the query
//     under-reports
//   - [NewSet] builds a fixed set, used for the tool's own built-in utility
//     names ([BuiltinUtils]), user-configured extras, and test fixtures
//
// A [Filter] composes any number of providers. Identifiers that start with
// an underscore are always excluded.
package stdlib
