// Package integrations provides the shared HTTP client used by package
// index lookups.
//
// [Client] combines three concerns every index client needs:
//
//   - JSON GET requests with default headers
//   - response caching through any [cache.Cache] backend
//   - retry with backoff for transient failures ([httputil.Retry])
//
// Index-specific clients embed it; see the [pypi] subpackage.
//
// Every request and cache lookup is reported to the hooks registered in
// [observability], so a metrics backend can observe index traffic without
// this package importing one.
//
// Errors are classified with the sentinels [ErrNotFound] and [ErrNetwork];
// use errors.Is to test for them.
package integrations
