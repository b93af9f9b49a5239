package costregistry

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"irrigation-engine/internal/model"
)

func startRegistry(t *testing.T, hits *int32) *Registry {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: func(ctx *fasthttp.RequestCtx) {
		atomic.AddInt32(hits, 1)
		switch string(ctx.Path()) {
		case "/cost-models/eu-south":
			cm := model.DefaultCostModel()
			cm.Region = ""
			cm.UnitCostPerSquareMeter = 31
			body, _ := json.Marshal(cm)
			ctx.SetContentType("application/json")
			ctx.SetBody(body)
		case "/cost-models/broken":
			ctx.SetBodyString("{not json")
		case "/cost-models/free":
			ctx.SetBodyString(`{"unit_cost_per_square_meter":0}`)
		case "/cost-models/boom":
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		default:
			ctx.SetStatusCode(fasthttp.StatusNotFound)
		}
	}}
	go srv.Serve(ln) //nolint:errcheck
	t.Cleanup(func() { ln.Close() })

	return New(Options{
		URL: "http://registry.test/",
		Client: &fasthttp.Client{
			Dial: func(string) (net.Conn, error) { return ln.Dial() },
		},
	})
}

func TestFetchKnownRegion(t *testing.T) {
	var hits int32
	r := startRegistry(t, &hits)

	cm, err := r.Fetch(context.Background(), "eu-south")
	require.NoError(t, err)
	assert.Equal(t, 31.0, cm.UnitCostPerSquareMeter)
	assert.Equal(t, "eu-south", cm.Region)
	assert.Equal(t, 0.40, cm.PipelineRatio)
}

func TestFetchUnknownRegion(t *testing.T) {
	var hits int32
	r := startRegistry(t, &hits)

	_, err := r.Fetch(context.Background(), "atlantis")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchRejectsBadPayloads(t *testing.T) {
	var hits int32
	r := startRegistry(t, &hits)

	for _, region := range []string{"broken", "free", "boom"} {
		_, err := r.Fetch(context.Background(), region)
		assert.Error(t, err, region)
		assert.NotErrorIs(t, err, ErrNotFound, region)
	}
}

func TestResolveCachesHits(t *testing.T) {
	var hits int32
	r := startRegistry(t, &hits)

	first := r.Resolve(context.Background(), "eu-south")
	second := r.Resolve(context.Background(), "eu-south")
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestResolveFallsBackToDefault(t *testing.T) {
	var hits int32
	r := startRegistry(t, &hits)

	assert.Equal(t, model.DefaultCostModel(), r.Resolve(context.Background(), "atlantis"))
	assert.Equal(t, model.DefaultCostModel(), r.Resolve(context.Background(), ""))
}

func TestDisabledRegistryNeverCallsOut(t *testing.T) {
	r := New(Options{})
	assert.False(t, r.Enabled())
	assert.Equal(t, model.DefaultCostModel(), r.Resolve(context.Background(), "eu-south"))
}

func TestPrefetchWarmsCache(t *testing.T) {
	var hits int32
	r := startRegistry(t, &hits)

	r.Prefetch(context.Background(), []string{"eu-south", "atlantis"})
	_, ok := r.cache.Get("eu-south")
	assert.True(t, ok)
	_, ok = r.cache.Get("atlantis")
	assert.False(t, ok)
}

func TestFetchHonoursCancelledContext(t *testing.T) {
	var hits int32
	r := startRegistry(t, &hits)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	cancel()
	_, err := r.Fetch(ctx, "eu-south")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}
