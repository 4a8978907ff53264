// Package httputil provides retry helpers for the package index client.
//
// [Retry] re-runs an operation with exponential backoff, but only when the
// failure was marked transient with [Retryable] (network errors, 5xx and
// 429 responses). [Classify] maps an HTTP status code onto that scheme.
//
//	err := httputil.Retry(ctx, httputil.DefaultAttempts, httputil.DefaultDelay, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    defer resp.Body.Close()
//	    return httputil.Classify(resp.StatusCode)
//	})
package httputil
