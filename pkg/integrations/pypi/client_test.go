package pypi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/pybundle/pkg/buildinfo"
	"github.com/matzehuels/pybundle/pkg/cache"
	"github.com/matzehuels/pybundle/pkg/integrations"
)

// indexServer serves the JSON API for the given normalized names.
func indexServer(t *testing.T, known map[string]string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		for name, version := range known {
			if r.URL.Path == "/"+name+"/json" {
				json.NewEncoder(w).Encode(apiResponse{Info: apiInfo{Name: name, Version: version, Summary: "test"}})
				return
			}
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := NewClient(backend, time.Hour).WithBaseURL(serverURL)
	c.SetRetry(2, time.Millisecond)
	return c
}

func TestClient_FetchPackage(t *testing.T) {
	server := indexServer(t, map[string]string{"flask": "3.0.0"}, nil)
	c := testClient(t, server.URL)

	info, err := c.FetchPackage(context.Background(), "Flask", true)
	if err != nil {
		t.Fatalf("FetchPackage failed: %v", err)
	}
	if info.Name != "flask" || info.Version != "3.0.0" {
		t.Errorf("got %+v", info)
	}
}

func TestClient_FetchPackage_Normalizes(t *testing.T) {
	server := indexServer(t, map[string]string{"opencv-python": "4.9.0"}, nil)
	c := testClient(t, server.URL)

	if _, err := c.FetchPackage(context.Background(), "OpenCV_Python", false); err != nil {
		t.Fatalf("FetchPackage should normalize the name: %v", err)
	}
}

func TestClient_FetchPackage_NotFound(t *testing.T) {
	server := indexServer(t, nil, nil)
	c := testClient(t, server.URL)

	_, err := c.FetchPackage(context.Background(), "missing-pkg", true)
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_NegativeResultsAreCached(t *testing.T) {
	var hits atomic.Int32
	server := indexServer(t, nil, &hits)
	c := testClient(t, server.URL)
	ctx := context.Background()

	for range 3 {
		ok, err := c.Exists(ctx, "sklearn")
		if err != nil || ok {
			t.Fatalf("Exists = %v, %v", ok, err)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("index hit %d times, want 1", hits.Load())
	}
}

func TestClient_Verify(t *testing.T) {
	server := indexServer(t, map[string]string{"requests": "2.31.0", "numpy": "1.26.4"}, nil)
	c := testClient(t, server.URL)

	v, err := c.Verify(context.Background(), []string{"numpy", "sklearn", "requests", "notapkg"})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if len(v.Known) != 2 || v.Known["numpy"] == nil || v.Known["requests"] == nil {
		t.Errorf("Known = %v", v.Known)
	}
	if want := []string{"sklearn", "notapkg"}; !slices.Equal(v.Unknown, want) {
		t.Errorf("Unknown = %v, want %v", v.Unknown, want)
	}
}

func TestClient_VerifyNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()
	c := testClient(t, server.URL)

	_, err := c.Verify(context.Background(), []string{"requests"})
	if !errors.Is(err, integrations.ErrNetwork) {
		t.Errorf("Verify error = %v, want ErrNetwork", err)
	}
}

func TestClient_VerifyCancelled(t *testing.T) {
	c := testClient(t, "http://127.0.0.1:0")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Verify(ctx, []string{"requests"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Verify error = %v, want context.Canceled", err)
	}
}

func TestWithBaseURL(t *testing.T) {
	c := NewClient(nil, time.Hour)
	if c.BaseURL() != DefaultBaseURL {
		t.Errorf("default base = %q", c.BaseURL())
	}
	c.WithBaseURL("")
	if c.BaseURL() != DefaultBaseURL {
		t.Error("empty url should be ignored")
	}
	c.WithBaseURL("https://mirror.example/pypi/")
	if c.BaseURL() != "https://mirror.example/pypi" {
		t.Errorf("trailing slash kept: %q", c.BaseURL())
	}
}

func TestClient_SendsUserAgent(t *testing.T) {
	var ua atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua.Store(r.Header.Get("User-Agent"))
		json.NewEncoder(w).Encode(apiResponse{Info: apiInfo{Name: "numpy", Version: "2.0.0"}})
	}))
	defer server.Close()

	if _, err := testClient(t, server.URL).FetchPackage(context.Background(), "numpy", false); err != nil {
		t.Fatal(err)
	}
	if got, _ := ua.Load().(string); got != buildinfo.UserAgent() {
		t.Errorf("User-Agent = %q, want %q", got, buildinfo.UserAgent())
	}
}
