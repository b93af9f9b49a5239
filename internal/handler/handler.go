package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"irrigation-engine/internal/engine"
	"irrigation-engine/internal/logging"
	"irrigation-engine/internal/metrics"
	"irrigation-engine/internal/model"
	"irrigation-engine/internal/optimization"
	"irrigation-engine/internal/resultcache"
)

const apiPrefix = "/api/irrigation/"

var endpoints = map[string]bool{
	"hydraulics":          true,
	"quick":               true,
	"validate":            true,
	"validate-parameters": true,
	"economics":           true,
	"optimize":            true,
	"analyze":             true,
}

type Options struct {
	Engine  *engine.Engine
	Cache   resultcache.Cache
	Metrics *metrics.Collector
	Logger  *zap.Logger
}

type Handler struct {
	engine   *engine.Engine
	cache    resultcache.Cache
	metrics  *metrics.Collector
	log      *zap.Logger
	validate *validator.Validate
	scrape   fasthttp.RequestHandler
}

func New(opts Options) *Handler {
	h := &Handler{
		engine:   opts.Engine,
		cache:    opts.Cache,
		metrics:  opts.Metrics,
		log:      opts.Logger,
		validate: validator.New(),
	}
	if h.engine == nil {
		h.engine = engine.New(engine.Options{})
	}
	if h.cache == nil {
		h.cache = resultcache.Nop{}
	}
	if h.metrics == nil {
		h.metrics = metrics.NewCollector()
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	h.scrape = h.metrics.Handler()
	return h
}

// Handle is the fasthttp entry point.
func (h *Handler) Handle(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	switch path {
	case "/healthz":
		writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"})
		return
	case "/metrics":
		h.scrape(ctx)
		return
	}

	start := time.Now()
	name := strings.TrimPrefix(path, apiPrefix)
	defer func() {
		label := name
		if !endpoints[name] {
			label = "unknown"
		}
		h.metrics.ObserveRequest(label, ctx.Response.StatusCode(), time.Since(start))
	}()

	if !strings.HasPrefix(path, apiPrefix) {
		writeError(ctx, fasthttp.StatusNotFound, "Not found")
		return
	}
	if !ctx.IsPost() {
		writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	log := h.log.With(zap.String("request_id", uuid.New().String()), zap.String("endpoint", name))
	rctx := logging.WithLogger(ctx, log)
	body := ctx.PostBody()

	var (
		res    interface{}
		status int
		err    error
	)
	switch name {
	case "hydraulics":
		var req model.HydraulicCalculationRequest
		if status, err = h.decode(body, &req); err == nil {
			res = h.engine.PerformHydraulicCalculations(rctx, req)
		}
	case "quick":
		var req model.QuickCalculationRequest
		if status, err = h.decode(body, &req); err == nil {
			res = h.engine.PerformQuickCalculations(rctx, req)
		}
	case "validate":
		var req model.SystemValidationRequest
		if status, err = h.decode(body, &req); err == nil {
			res = h.engine.PerformSystemValidation(rctx, req)
		}
	case "validate-parameters":
		var req model.IrrigationDesignParameters
		if status, err = h.decode(body, &req); err == nil {
			res = h.engine.ValidateDesignParameters(rctx, req)
		}
	case "economics":
		var req model.EconomicAnalysisRequest
		if status, err = h.decode(body, &req); err == nil {
			res = h.engine.AnalyzeEconomics(rctx, req)
		}
	case "optimize":
		var req model.DesignOptimizationRequest
		if status, err = h.decode(body, &req); err != nil {
			break
		}
		if cached := h.lookup(rctx, name, body); cached != nil {
			writeRaw(ctx, fasthttp.StatusOK, cached)
			return
		}
		var opt model.DesignOptimizationResult
		if opt, err = h.engine.OptimizeDesign(rctx, req); err != nil {
			status = optimizationStatus(err)
			break
		}
		h.store(rctx, name, body, opt)
		res = opt
	case "analyze":
		var req model.AnalysisRequest
		if status, err = h.decode(body, &req); err == nil {
			res = h.engine.Process(rctx, &req)
		}
	default:
		writeError(ctx, fasthttp.StatusNotFound, "Unknown endpoint: "+name)
		return
	}

	if err != nil {
		log.Info("request rejected", zap.Int("status", status), zap.Error(err))
		writeError(ctx, status, err.Error())
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, res)
}

func (h *Handler) decode(body []byte, v interface{}) (int, error) {
	if len(body) == 0 {
		return fasthttp.StatusBadRequest, errors.New("request body is required")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fasthttp.StatusBadRequest, fmt.Errorf("invalid request body: %w", err)
	}
	if err := h.validate.Struct(v); err != nil {
		return fasthttp.StatusUnprocessableEntity, fmt.Errorf("invalid request: %w", err)
	}
	return fasthttp.StatusOK, nil
}

// lookup returns a cached encoded optimisation result. The closed-form operations are
// cheaper to recompute than a cache round trip and are never cached.
func (h *Handler) lookup(ctx context.Context, name string, body []byte) []byte {
	b, ok, err := h.cache.Get(ctx, resultcache.Key(name, body))
	if err != nil {
		logging.FromContext(ctx).Warn("result cache lookup failed", zap.Error(err))
	}
	h.metrics.CacheLookup(ok)
	if !ok {
		return nil
	}
	return b
}

func (h *Handler) store(ctx context.Context, name string, body []byte, res interface{}) {
	b, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := h.cache.Set(ctx, resultcache.Key(name, body), b); err != nil {
		logging.FromContext(ctx).Warn("result cache store failed", zap.Error(err))
	}
}

func optimizationStatus(err error) int {
	switch {
	case errors.Is(err, optimization.ErrUnknownMethod), errors.Is(err, optimization.ErrUnknownParameter):
		return fasthttp.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return fasthttp.StatusGatewayTimeout
	default:
		return fasthttp.StatusUnprocessableEntity
	}
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, "Failed to encode response")
		return
	}
	writeRaw(ctx, status, b)
}

func writeRaw(ctx *fasthttp.RequestCtx, status int, b []byte) {
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(b)
}

func writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	b, _ := json.Marshal(model.ErrorResponse{
		Status:  status,
		Message: message,
	})
	writeRaw(ctx, status, b)
}
