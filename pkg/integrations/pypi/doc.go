// Package pypi looks up packages on the Python Package Index JSON API.
//
// The bundler uses it to check, before invoking the installer, that each
// requirement name actually exists on the index:
//
//	client := pypi.NewClient(backend, 24*time.Hour)
//	v, err := client.Verify(ctx, []string{"requests", "sklearn"})
//	// v.Unknown == []string{"sklearn"}
//
// Lookups are cached under "pypi:<normalized name>", including negative
// results, so repeated runs do not hammer the index. The base URL is
// configurable for private mirrors that implement the same JSON API.
package pypi
