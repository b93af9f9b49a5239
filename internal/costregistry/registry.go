package costregistry

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/patrickmn/go-cache"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"irrigation-engine/internal/logging"
	"irrigation-engine/internal/model"
)

var ErrNotFound = errors.New("cost model not found")

const (
	defaultTimeout = 2 * time.Second
	defaultTTL     = 10 * time.Minute
)

type Options struct {
	// URL is the registry base. Empty disables remote lookups.
	URL     string
	Timeout time.Duration
	TTL     time.Duration
	Client  *fasthttp.Client
}

// Registry resolves regional cost tables from a remote registry, caching hits for TTL.
// Lookups that fail fall back to model.DefaultCostModel.
type Registry struct {
	url     string
	timeout time.Duration
	client  *fasthttp.Client
	cache   *cache.Cache
}

func New(opts Options) *Registry {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.Client == nil {
		opts.Client = &fasthttp.Client{
			MaxConnsPerHost:     100,
			MaxIdleConnDuration: 90 * time.Second,
			ReadTimeout:         opts.Timeout,
			WriteTimeout:        opts.Timeout,
		}
	}
	return &Registry{
		url:     strings.TrimRight(opts.URL, "/"),
		timeout: opts.Timeout,
		client:  opts.Client,
		cache:   cache.New(opts.TTL, 2*opts.TTL),
	}
}

func (r *Registry) Enabled() bool { return r != nil && r.url != "" }

// Resolve never fails: an unknown region, a disabled registry or a transport error all
// yield the default table.
func (r *Registry) Resolve(ctx context.Context, region string) model.CostModel {
	if region == "" || !r.Enabled() {
		return model.DefaultCostModel()
	}
	if cm, ok := r.cache.Get(region); ok {
		return cm.(model.CostModel)
	}
	cm, err := r.Fetch(ctx, region)
	if err != nil {
		logging.FromContext(ctx).Warn("cost model lookup failed, using default",
			zap.String("region", region), zap.Error(err))
		return model.DefaultCostModel()
	}
	r.cache.Set(region, cm, cache.DefaultExpiration)
	return cm
}

// Prefetch warms the cache for regions concurrently.
func (r *Registry) Prefetch(ctx context.Context, regions []string) {
	var wg sync.WaitGroup
	for _, region := range regions {
		wg.Add(1)
		go func(region string) {
			defer wg.Done()
			r.Resolve(ctx, region)
		}(region)
	}
	wg.Wait()
}

// Fetch performs GET {url}/cost-models/{region} without consulting the cache.
func (r *Registry) Fetch(ctx context.Context, region string) (model.CostModel, error) {
	if err := ctx.Err(); err != nil {
		return model.CostModel{}, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(r.url + "/cost-models/" + url.PathEscape(region))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline := time.Now().Add(r.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := r.client.DoDeadline(req, resp, deadline); err != nil {
		return model.CostModel{}, fmt.Errorf("fetch cost model %q: %w", region, err)
	}

	switch resp.StatusCode() {
	case fasthttp.StatusOK:
	case fasthttp.StatusNotFound:
		return model.CostModel{}, fmt.Errorf("%w: %q", ErrNotFound, region)
	default:
		return model.CostModel{}, fmt.Errorf("fetch cost model %q: unexpected status %d", region, resp.StatusCode())
	}

	var cm model.CostModel
	if err := json.Unmarshal(resp.Body(), &cm); err != nil {
		return model.CostModel{}, fmt.Errorf("decode cost model %q: %w", region, err)
	}
	if !(cm.UnitCostPerSquareMeter > 0) {
		return model.CostModel{}, fmt.Errorf("cost model %q has no unit cost", region)
	}
	if cm.Region == "" {
		cm.Region = region
	}
	return cm, nil
}
