package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnStageStart(ctx, StageScan)
	p.OnScanComplete(ctx, 3, 12, time.Second, nil)
	p.OnResolveComplete(ctx, 4, 8, time.Millisecond)
	p.OnVerifyComplete(ctx, 4, 0, time.Second, nil)
	p.OnDownload(ctx, "requests", time.Second, nil)
	p.OnBundleComplete(ctx, 4, 0, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "pypi")
	c.OnCacheMiss(ctx, "pypi")
	c.OnCacheSet(ctx, "pypi", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "pypi.org", "/pypi/requests/json")
	h.OnResponse(ctx, "GET", "pypi.org", "/pypi/requests/json", 200, time.Second)
	h.OnError(ctx, "GET", "pypi.org", "/pypi/requests/json", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}
	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}
	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)
	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should keep existing hooks")
	}
}

func TestCustomHooksReceiveEvents(t *testing.T) {
	Reset()
	defer Reset()

	h := &testPipelineHooks{}
	SetPipelineHooks(h)

	ctx := context.Background()
	Pipeline().OnStageStart(ctx, StageBundle)
	Pipeline().OnDownload(ctx, "numpy", time.Millisecond, nil)
	Pipeline().OnDownload(ctx, "flask", time.Millisecond, nil)

	if len(h.stages) != 1 || h.stages[0] != StageBundle {
		t.Errorf("stages = %v", h.stages)
	}
	if h.downloads != 2 {
		t.Errorf("downloads = %d, want 2", h.downloads)
	}
}

type testPipelineHooks struct {
	NoopPipelineHooks
	stages    []string
	downloads int
}

func (h *testPipelineHooks) OnStageStart(_ context.Context, stage string) {
	h.stages = append(h.stages, stage)
}

func (h *testPipelineHooks) OnDownload(context.Context, string, time.Duration, error) {
	h.downloads++
}

type testCacheHooks struct{ NoopCacheHooks }

type testHTTPHooks struct{ NoopHTTPHooks }

func TestHooksConcurrentSwap(t *testing.T) {
	defer Reset()
	ctx := context.Background()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			SetPipelineHooks(&testPipelineHooks{})
			Reset()
		}
	}()
	for i := 0; i < 100; i++ {
		Pipeline().OnStageStart(ctx, StageVerify)
	}
	<-done
}
