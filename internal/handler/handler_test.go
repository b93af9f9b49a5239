package handler

import (
	"context"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"irrigation-engine/internal/engine"
	"irrigation-engine/internal/metrics"
	"irrigation-engine/internal/model"
	"irrigation-engine/internal/resultcache"
)

const designJSON = `{
	"total_area": 1000,
	"number_of_sectors": 4,
	"plant_density": 2,
	"daily_water_requirement": 4,
	"irrigation_frequency": 2,
	"pipe_network": {"main": {"diameter": 63, "length": 120, "material": "PVC"}}
}`

const hydraulicsJSON = `{
	"operating_pressure": 2,
	"design_velocity": 1.5,
	"friction_loss_coefficient": 0.02,
	"minor_loss_coefficient": 0.01,
	"elevation_change": 2,
	"emitter_flow_rate": 2,
	"emitter_spacing": 0.5,
	"emitter_pressure": 1,
	"target_uniformity": 90,
	"allowed_pressure_variation": 20,
	"design_flow_rate": 12
}`

func do(h *Handler, method, path, body string) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(path)
	req.SetBodyString(body)

	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	h.Handle(ctx)
	return ctx
}

func decode(t *testing.T, ctx *fasthttp.RequestCtx, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), v), string(ctx.Response.Body()))
}

func TestHealthz(t *testing.T) {
	ctx := do(New(Options{}), fasthttp.MethodGet, "/healthz", "")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"status":"ok"}`, string(ctx.Response.Body()))
}

func TestHydraulicsEndpoint(t *testing.T) {
	ctx := do(New(Options{}), fasthttp.MethodPost, "/api/irrigation/hydraulics",
		`{"design_parameters":`+designJSON+`,"hydraulic_parameters":`+hydraulicsJSON+`}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode(), string(ctx.Response.Body()))

	var res model.HydraulicCalculationResult
	decode(t, ctx, &res)
	assert.True(t, res.IsValid)
	assert.InDelta(t, 12.22, res.SystemFlowRate, 0.01)
	assert.InDelta(t, 0.264, res.TotalPressureLoss, 0.001)
	assert.Equal(t, "application/json", string(ctx.Response.Header.ContentType()))
}

func TestQuickEndpoint(t *testing.T) {
	ctx := do(New(Options{}), fasthttp.MethodPost, "/api/irrigation/quick",
		`{"design_parameters":`+designJSON+`,"hydraulic_parameters":`+hydraulicsJSON+`}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var res model.QuickCalculationResult
	decode(t, ctx, &res)
	assert.InDelta(t, 85.5, res.ApplicationEfficiency, 1e-9)
}

func TestValidateParametersEndpoint(t *testing.T) {
	ctx := do(New(Options{}), fasthttp.MethodPost, "/api/irrigation/validate-parameters",
		`{"total_area": 0, "daily_water_requirement": 4, "irrigation_frequency": 2, "pipe_network": {"main": {"diameter": 63}}}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var res model.ParameterValidationResult
	decode(t, ctx, &res)
	assert.False(t, res.IsValid)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, model.SeverityCritical, res.Issues[0].Severity)
	assert.Equal(t, "TotalArea", res.Issues[0].Parameter)
}

func TestValidateEndpoint(t *testing.T) {
	ctx := do(New(Options{}), fasthttp.MethodPost, "/api/irrigation/validate",
		`{"design_parameters":`+designJSON+`,"hydraulic_parameters":`+hydraulicsJSON+
			`,"hydraulic_results":{"is_valid":true,"total_pressure_loss":0.264,"system_flow_rate":12.22,"distribution_uniformity":90,"average_velocity":1.5,"flow_regime":"TURBULENT"},"validation_level":"basic"}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode(), string(ctx.Response.Body()))

	var res model.SystemValidationResult
	decode(t, ctx, &res)
	assert.True(t, res.IsValid)
	assert.Equal(t, model.LevelBasic, res.ValidationLevel)
}

func TestEconomicsEndpoint(t *testing.T) {
	ctx := do(New(Options{}), fasthttp.MethodPost, "/api/irrigation/economics",
		`{"design_parameters":`+designJSON+`,"economic_parameters":{"discount_rate":8,"analysis_horizon":15},"currency":"EUR"}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var res model.EconomicAnalysisResult
	decode(t, ctx, &res)
	assert.Equal(t, "EUR", res.Currency)
	assert.Equal(t, 25000.0, res.Costs.TotalInvestment)
	assert.Empty(t, res.ErrorMessage)
}

func TestRequestEnvelopeValidation(t *testing.T) {
	h := New(Options{})

	ctx := do(h, fasthttp.MethodPost, "/api/irrigation/validate",
		`{"design_parameters":`+designJSON+`,"validation_level":"extreme"}`)
	assert.Equal(t, fasthttp.StatusUnprocessableEntity, ctx.Response.StatusCode())

	ctx = do(h, fasthttp.MethodPost, "/api/irrigation/optimize",
		`{"current_design":`+designJSON+`,"hydraulic_parameters":`+hydraulicsJSON+`,"optimization_goal":"maximize_profit"}`)
	assert.Equal(t, fasthttp.StatusUnprocessableEntity, ctx.Response.StatusCode())

	var er model.ErrorResponse
	decode(t, ctx, &er)
	assert.Equal(t, fasthttp.StatusUnprocessableEntity, er.Status)
	assert.Contains(t, er.Message, "OptimizationGoal")
}

func TestMalformedBody(t *testing.T) {
	h := New(Options{})

	ctx := do(h, fasthttp.MethodPost, "/api/irrigation/hydraulics", `{"design_parameters":`)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	ctx = do(h, fasthttp.MethodPost, "/api/irrigation/hydraulics", "")
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestRoutingErrors(t *testing.T) {
	h := New(Options{})

	assert.Equal(t, fasthttp.StatusMethodNotAllowed, do(h, fasthttp.MethodGet, "/api/irrigation/hydraulics", "").Response.StatusCode())
	assert.Equal(t, fasthttp.StatusNotFound, do(h, fasthttp.MethodPost, "/api/irrigation/teleport", "{}").Response.StatusCode())
	assert.Equal(t, fasthttp.StatusNotFound, do(h, fasthttp.MethodPost, "/elsewhere", "{}").Response.StatusCode())
}

func TestOptimizeEndpointCachesResults(t *testing.T) {
	cache := resultcache.NewMemory(time.Minute)
	h := New(Options{
		Engine: engine.New(engine.Options{MaxIterations: 20}),
		Cache:  cache,
	})
	body := `{"current_design":` + designJSON + `,"hydraulic_parameters":` + hydraulicsJSON + `,"optimization_goal":"minimize_energy"}`

	first := do(h, fasthttp.MethodPost, "/api/irrigation/optimize", body)
	require.Equal(t, fasthttp.StatusOK, first.Response.StatusCode(), string(first.Response.Body()))
	assert.Equal(t, 1, cache.Len())

	second := do(h, fasthttp.MethodPost, "/api/irrigation/optimize", body)
	require.Equal(t, fasthttp.StatusOK, second.Response.StatusCode())
	assert.Equal(t, string(first.Response.Body()), string(second.Response.Body()))

	var res model.DesignOptimizationResult
	decode(t, second, &res)
	assert.LessOrEqual(t, res.Iterations, 20)
	assert.Equal(t, model.GoalMinimizeEnergy, res.Goal)
}

func TestOptimizeUnknownMethodIsBadRequest(t *testing.T) {
	// the envelope validator rejects unknown methods before the engine sees them
	ctx := do(New(Options{}), fasthttp.MethodPost, "/api/irrigation/optimize",
		`{"current_design":`+designJSON+`,"hydraulic_parameters":`+hydraulicsJSON+`,"optimization_parameters":{"method":"genetic_algorithm"}}`)
	assert.Equal(t, fasthttp.StatusUnprocessableEntity, ctx.Response.StatusCode())
}

func TestOptimizationStatus(t *testing.T) {
	assert.Equal(t, fasthttp.StatusGatewayTimeout, optimizationStatus(context.DeadlineExceeded))
	assert.Equal(t, fasthttp.StatusUnprocessableEntity, optimizationStatus(assert.AnError))
}

func TestAnalyzeEndpoint(t *testing.T) {
	ctx := do(New(Options{}), fasthttp.MethodPost, "/api/irrigation/analyze",
		`{"tenant_id":"farm-7","design_parameters":`+designJSON+`,"hydraulic_parameters":`+hydraulicsJSON+
			`,"economic_parameters":{"discount_rate":8,"analysis_horizon":15}}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp model.AnalysisResponse
	decode(t, ctx, &resp)
	assert.Equal(t, "farm-7", resp.CalculationMetadata.TenantID)
	assert.Equal(t, model.OutcomeSuccess, resp.CalculationMetadata.CalculationOutcome)
	require.NotNil(t, resp.CalculationResult.Validation)
	require.NotNil(t, resp.CalculationResult.Economics)
}

func TestMetricsEndpointCountsRequests(t *testing.T) {
	m := metrics.NewCollector()
	h := New(Options{Metrics: m})
	do(h, fasthttp.MethodPost, "/api/irrigation/teleport", "{}")

	ctx := do(h, fasthttp.MethodGet, "/metrics", "")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), `irrigation_http_requests_total{endpoint="unknown",status="404"} 1`)
}

func TestEconomicsHorizonIsBounded(t *testing.T) {
	ctx := do(New(Options{}), fasthttp.MethodPost, "/api/irrigation/economics",
		`{"design_parameters":`+designJSON+`,"economic_parameters":{"discount_rate":8,"analysis_horizon":1000000}}`)
	assert.Equal(t, fasthttp.StatusUnprocessableEntity, ctx.Response.StatusCode())

	var er model.ErrorResponse
	decode(t, ctx, &er)
	assert.Contains(t, er.Message, "AnalysisHorizon")
}
