// Package observability provides hooks for metrics and tracing.
//
// Libraries emit events through package-level hook registries; the binary
// decides what receives them. Defaults are no-ops, so the scanner and
// bundler never depend on a metrics backend. `pybundle serve` registers a
// Prometheus implementation at startup:
//
//	observability.SetPipelineHooks(metrics)
//	observability.SetCacheHooks(metrics)
//	observability.SetHTTPHooks(metrics)
//
// Emitters fetch the current hooks at the call site:
//
//	start := time.Now()
//	res, err := scanner.Scan(ctx, root)
//	observability.Pipeline().OnScanComplete(ctx, len(res.Files), len(res.Imports), time.Since(start), err)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// Pipeline stage names passed to hooks.
const (
	StageScan    = "scan"
	StageResolve = "resolve"
	StageVerify  = "verify"
	StageBundle  = "bundle"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the bundling pipeline.
type PipelineHooks interface {
	// OnStageStart fires before a stage (see the Stage constants) runs.
	OnStageStart(ctx context.Context, stage string)

	// OnScanComplete records a finished source scan.
	OnScanComplete(ctx context.Context, files, imports int, duration time.Duration, err error)

	// OnResolveComplete records the size of the requirement set and how
	// many identifiers were excluded.
	OnResolveComplete(ctx context.Context, requirements, excluded int, duration time.Duration)

	// OnVerifyComplete records an index lookup pass.
	OnVerifyComplete(ctx context.Context, known, unknown int, duration time.Duration, err error)

	// OnDownload records a single installer invocation.
	OnDownload(ctx context.Context, pkg string, duration time.Duration, err error)

	// OnBundleComplete records the end of the bundle stage.
	OnBundleComplete(ctx context.Context, packages, failed int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations. keyType is the key
// namespace, e.g. "pypi".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from outgoing HTTP requests.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError records a transport failure (no response).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnStageStart(context.Context, string)                             {}
func (NoopPipelineHooks) OnScanComplete(context.Context, int, int, time.Duration, error)   {}
func (NoopPipelineHooks) OnResolveComplete(context.Context, int, int, time.Duration)       {}
func (NoopPipelineHooks) OnVerifyComplete(context.Context, int, int, time.Duration, error) {}
func (NoopPipelineHooks) OnDownload(context.Context, string, time.Duration, error)         {}
func (NoopPipelineHooks) OnBundleComplete(context.Context, int, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Registry
// =============================================================================

// slot holds the registered implementation of one hook interface. Loads
// are lock-free so emitters on hot paths only pay an atomic read.
type slot[T any] struct {
	p   atomic.Pointer[T]
	def T
}

func (s *slot[T]) load() T {
	if p := s.p.Load(); p != nil {
		return *p
	}
	return s.def
}

// store registers h. A nil interface is ignored.
func (s *slot[T]) store(h T) {
	if any(h) != nil {
		s.p.Store(&h)
	}
}

var (
	pipelineSlot = slot[PipelineHooks]{def: NoopPipelineHooks{}}
	cacheSlot    = slot[CacheHooks]{def: NoopCacheHooks{}}
	httpSlot     = slot[HTTPHooks]{def: NoopHTTPHooks{}}
)

// SetPipelineHooks registers pipeline hooks. Nil is ignored.
func SetPipelineHooks(h PipelineHooks) { pipelineSlot.store(h) }

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) { cacheSlot.store(h) }

// SetHTTPHooks registers HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) { httpSlot.store(h) }

func Pipeline() PipelineHooks { return pipelineSlot.load() }
func Cache() CacheHooks       { return cacheSlot.load() }
func HTTP() HTTPHooks         { return httpSlot.load() }

// Reset restores the no-op defaults.
func Reset() {
	pipelineSlot.p.Store(nil)
	cacheSlot.p.Store(nil)
	httpSlot.p.Store(nil)
}
