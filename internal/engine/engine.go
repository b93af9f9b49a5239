package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"irrigation-engine/internal/economic"
	"irrigation-engine/internal/hydraulic"
	"irrigation-engine/internal/logging"
	"irrigation-engine/internal/model"
	"irrigation-engine/internal/optimization"
	"irrigation-engine/internal/validation"
)

// CostSource resolves the cost table for a region. Implementations must not fail;
// unknown regions resolve to the default table.
type CostSource interface {
	Resolve(ctx context.Context, region string) model.CostModel
}

// Observer receives the duration and success of each engine stage.
type Observer interface {
	ObserveStage(stage string, d time.Duration, ok bool)
}

type defaultCosts struct{}

func (defaultCosts) Resolve(context.Context, string) model.CostModel { return model.DefaultCostModel() }

type nopObserver struct{}

func (nopObserver) ObserveStage(string, time.Duration, bool) {}

type Options struct {
	Costs    CostSource
	Observer Observer
	// MaxIterations replaces a zero iteration budget in optimisation requests.
	MaxIterations       int
	Method              string
	OptimizationTimeout time.Duration
}

// Engine exposes the analysis operations. It holds no per-request state and is safe
// for concurrent use.
type Engine struct {
	costs         CostSource
	observer      Observer
	maxIterations int
	method        string
	timeout       time.Duration
}

func New(opts Options) *Engine {
	e := &Engine{
		costs:         opts.Costs,
		observer:      opts.Observer,
		maxIterations: opts.MaxIterations,
		method:        opts.Method,
		timeout:       opts.OptimizationTimeout,
	}
	if e.costs == nil {
		e.costs = defaultCosts{}
	}
	if e.observer == nil {
		e.observer = nopObserver{}
	}
	if e.maxIterations <= 0 {
		e.maxIterations = optimization.DefaultMaxIterations
	}
	return e
}

func (e *Engine) PerformHydraulicCalculations(ctx context.Context, req model.HydraulicCalculationRequest) model.HydraulicCalculationResult {
	start := time.Now()
	var res model.HydraulicCalculationResult
	if req.CalculationType == model.CalculationQuick {
		q := hydraulic.QuickCalculate(req.DesignParameters, req.HydraulicParameters)
		res = model.HydraulicCalculationResult{
			SystemFlowRate:         q.SystemFlowRate,
			TotalPressureLoss:      q.TotalPressureLoss,
			DistributionUniformity: q.DistributionUniformity,
			ApplicationEfficiency:  q.ApplicationEfficiency,
			IsValid:                q.IsValid,
			ErrorMessage:           q.ErrorMessage,
		}
	} else {
		res = hydraulic.Calculate(req.DesignParameters, req.HydraulicParameters)
	}
	e.observer.ObserveStage(model.StageHydraulic, time.Since(start), res.IsValid)
	if !res.IsValid {
		logging.FromContext(ctx).Warn("hydraulic calculation invalid", zap.String("reason", res.ErrorMessage))
	}
	return res
}

func (e *Engine) PerformQuickCalculations(ctx context.Context, req model.QuickCalculationRequest) model.QuickCalculationResult {
	start := time.Now()
	res := hydraulic.QuickCalculate(req.DesignParameters, req.HydraulicParameters)
	e.observer.ObserveStage(model.StageHydraulic, time.Since(start), res.IsValid)
	return res
}

func (e *Engine) PerformSystemValidation(ctx context.Context, req model.SystemValidationRequest) model.SystemValidationResult {
	start := time.Now()
	in := validation.Input{
		Result:     req.HydraulicResults,
		Hydraulics: req.HydraulicParameters,
		Design:     &req.DesignParameters,
		Level:      req.ValidationLevel,
	}
	if req.ValidationCriteria != nil {
		in.Criteria = *req.ValidationCriteria
	}
	res := validation.Validate(in)
	e.observer.ObserveStage(model.StageValidation, time.Since(start), res.IsValid)
	logging.FromContext(ctx).Debug("system validated",
		zap.Bool("valid", res.IsValid),
		zap.Float64("score", res.Score),
		zap.Int("issues", len(res.Issues)),
	)
	return res
}

func (e *Engine) ValidateDesignParameters(ctx context.Context, design model.IrrigationDesignParameters) model.ParameterValidationResult {
	start := time.Now()
	res := validation.ValidateDesignParameters(design)
	e.observer.ObserveStage(model.StageParameters, time.Since(start), res.IsValid)
	return res
}

// AnalyzeEconomics lets the request-level analysis type and currency override the
// ones inside the economic parameters. Without an explicit cost model the region's
// table is resolved through the CostSource.
func (e *Engine) AnalyzeEconomics(ctx context.Context, req model.EconomicAnalysisRequest) model.EconomicAnalysisResult {
	start := time.Now()
	params := req.EconomicParameters
	if req.AnalysisType != "" {
		params.AnalysisType = req.AnalysisType
	}
	if req.Currency != "" {
		params.Currency = req.Currency
	}
	params.CostModel = e.costModel(ctx, params)

	res := economic.Analyze(req.DesignParameters, params)
	e.observer.ObserveStage(model.StageEconomic, time.Since(start), res.ErrorMessage == "")
	if res.ErrorMessage != "" {
		logging.FromContext(ctx).Warn("economic analysis incomplete", zap.String("reason", res.ErrorMessage))
	}
	return res
}

// OptimizeDesign is the only operation that fails with an error. A panic inside the
// search is converted into one.
func (e *Engine) OptimizeDesign(ctx context.Context, req model.DesignOptimizationRequest) (res model.DesignOptimizationResult, err error) {
	start := time.Now()
	log := logging.FromContext(ctx)
	defer func() {
		if rec := recover(); rec != nil {
			res, err = model.DesignOptimizationResult{}, fmt.Errorf("optimization fault: %v", rec)
		}
		e.observer.ObserveStage(model.StageOptimization, time.Since(start), err == nil)
		if err != nil {
			log.Error("optimization failed", zap.Error(err))
		}
	}()

	params := req.OptimizationParameters
	if params.MaxIterations == 0 {
		params.MaxIterations = e.maxIterations
	}
	if params.Method == "" {
		params.Method = e.method
	}

	in := optimization.Input{
		Design:     req.CurrentDesign,
		Hydraulics: req.HydraulicParameters,
		Params:     params,
		Goal:       req.OptimizationGoal,
	}
	if req.CurrentResults.IsValid {
		current := req.CurrentResults
		in.Current = &current
	}
	if req.EconomicParameters != nil {
		in.CostModel = e.costModel(ctx, *req.EconomicParameters)
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	return optimization.Optimize(ctx, in)
}

func (e *Engine) costModel(ctx context.Context, params model.EconomicParameters) *model.CostModel {
	if params.CostModel != nil {
		return params.CostModel
	}
	cm := e.costs.Resolve(ctx, params.Region)
	return &cm
}
