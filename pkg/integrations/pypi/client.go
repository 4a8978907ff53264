package pypi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/pybundle/pkg/buildinfo"
	"github.com/matzehuels/pybundle/pkg/cache"
	"github.com/matzehuels/pybundle/pkg/integrations"
)

// DefaultBaseURL is the public PyPI JSON API.
const DefaultBaseURL = "https://pypi.org/pypi"

// PackageInfo holds the index metadata reported for a package.
type PackageInfo struct {
	Name    string `json:"name"`    // display name as published
	Version string `json:"version"` // latest release
	Summary string `json:"summary,omitempty"`
}

// Verification is the result of [Client.Verify].
type Verification struct {
	Known   map[string]*PackageInfo // keyed by the requested name
	Unknown []string                // requested names the index does not have, input order
}

// Client provides access to the PyPI JSON API.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a PyPI client caching lookups in backend for cacheTTL.
// A nil backend disables caching.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	headers := map[string]string{
		"Accept":     "application/json",
		"User-Agent": buildinfo.UserAgent(),
	}
	return &Client{
		Client:  integrations.NewClient(backend, "pypi:", cacheTTL, headers),
		baseURL: DefaultBaseURL,
	}
}

// WithBaseURL points the client at a mirror. An empty url is ignored.
func (c *Client) WithBaseURL(url string) *Client {
	if url != "" {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
	return c
}

// BaseURL returns the index endpoint in use.
func (c *Client) BaseURL() string { return c.baseURL }

// lookup is the cached form of a query; Found=false caches a 404.
type lookup struct {
	Found bool        `json:"found"`
	Info  PackageInfo `json:"info"`
}

// FetchPackage retrieves metadata for pkg. The name is normalized per
// PEP 503 before the request. If refresh is true the cache is bypassed.
//
// Returns [integrations.ErrNotFound] (wrapped) if the index has no such
// package and [integrations.ErrNetwork] for transport failures.
func (c *Client) FetchPackage(ctx context.Context, pkg string, refresh bool) (*PackageInfo, error) {
	name := integrations.NormalizePkgName(pkg)
	if name == "" {
		return nil, fmt.Errorf("%w: empty package name", integrations.ErrNotFound)
	}

	var res lookup
	err := c.Cached(ctx, name, refresh, &res, func() error {
		return c.fetch(ctx, name, &res)
	})
	if err != nil {
		return nil, err
	}
	if !res.Found {
		return nil, fmt.Errorf("%w: pypi package %s", integrations.ErrNotFound, pkg)
	}
	return &res.Info, nil
}

// Exists reports whether the index has pkg.
func (c *Client) Exists(ctx context.Context, pkg string) (bool, error) {
	_, err := c.FetchPackage(ctx, pkg, false)
	if errors.Is(err, integrations.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Verify looks up every name in pkgs. Unknown names are collected rather
// than returned as errors; the first transport failure aborts the pass.
func (c *Client) Verify(ctx context.Context, pkgs []string) (*Verification, error) {
	v := &Verification{Known: make(map[string]*PackageInfo, len(pkgs))}
	for _, pkg := range pkgs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := c.FetchPackage(ctx, pkg, false)
		switch {
		case err == nil:
			v.Known[pkg] = info
		case errors.Is(err, integrations.ErrNotFound):
			v.Unknown = append(v.Unknown, pkg)
		default:
			return nil, fmt.Errorf("verify %s: %w", pkg, err)
		}
	}
	return v, nil
}

func (c *Client) fetch(ctx context.Context, name string, res *lookup) error {
	var data apiResponse
	err := c.Get(ctx, fmt.Sprintf("%s/%s/json", c.baseURL, name), &data)
	if errors.Is(err, integrations.ErrNotFound) {
		*res = lookup{Found: false}
		return nil
	}
	if err != nil {
		return err
	}
	*res = lookup{
		Found: true,
		Info: PackageInfo{
			Name:    data.Info.Name,
			Version: data.Info.Version,
			Summary: data.Info.Summary,
		},
	}
	return nil
}

type apiResponse struct {
	Info apiInfo `json:"info"`
}

type apiInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Summary string `json:"summary"`
}
