package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"irrigation-engine/internal/logging"
	"irrigation-engine/internal/model"
)

type messages struct {
	list     []model.CalculationMessage
	critical bool
}

func (m *messages) add(level, stage, code, msg string) {
	m.list = append(m.list, model.CalculationMessage{
		ID:      len(m.list),
		Level:   level,
		Stage:   stage,
		Code:    code,
		Message: msg,
	})
	if level == model.LevelCritical {
		m.critical = true
	}
}

// Process runs the whole pipeline: parameter pre-flight, hydraulics, then validation
// and economics side by side, then the optional optimisation. A critical message stops
// the stages that depend on the failed one and marks the outcome FAILURE.
func (e *Engine) Process(ctx context.Context, req *model.AnalysisRequest) *model.AnalysisResponse {
	start := time.Now()
	calculationID := uuid.New().String()
	log := logging.FromContext(ctx).With(
		zap.String("calculation_id", calculationID),
		zap.String("tenant_id", req.TenantID),
	)
	ctx = logging.WithLogger(ctx, log)

	var msgs messages
	result := model.AnalysisResult{}

	result.ParameterValidation = e.ValidateDesignParameters(ctx, req.DesignParameters)
	for _, issue := range result.ParameterValidation.Issues {
		if issue.Severity != model.SeverityCritical {
			continue
		}
		msgs.add(model.LevelCritical, model.StageParameters, "INVALID_DESIGN_PARAMETER",
			fmt.Sprintf("%s: %s", issue.Parameter, issue.Message))
	}
	if msgs.critical {
		return respond(req, calculationID, start, msgs, result)
	}

	result.Hydraulics = e.PerformHydraulicCalculations(ctx, model.HydraulicCalculationRequest{
		DesignParameters:    req.DesignParameters,
		HydraulicParameters: req.HydraulicParameters,
	})
	if !result.Hydraulics.IsValid {
		msgs.add(model.LevelCritical, model.StageHydraulic, "HYDRAULIC_CALCULATION_FAILED", result.Hydraulics.ErrorMessage)
		return respond(req, calculationID, start, msgs, result)
	}

	var (
		sysValidation model.SystemValidationResult
		economics     model.EconomicAnalysisResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sysValidation = e.PerformSystemValidation(gctx, model.SystemValidationRequest{
			DesignParameters:    req.DesignParameters,
			HydraulicParameters: req.HydraulicParameters,
			HydraulicResults:    result.Hydraulics,
			ValidationCriteria:  req.ValidationCriteria,
			ValidationLevel:     req.ValidationLevel,
		})
		return gctx.Err()
	})
	g.Go(func() error {
		economics = e.AnalyzeEconomics(gctx, model.EconomicAnalysisRequest{
			DesignParameters:   req.DesignParameters,
			EconomicParameters: req.EconomicParameters,
		})
		return gctx.Err()
	})
	// Stage faults are carried in the results; the group only fails when ctx is done.
	err := g.Wait()
	result.Validation = &sysValidation
	result.Economics = &economics
	if err != nil {
		msgs.add(model.LevelCritical, model.StagePipeline, "CALCULATION_CANCELLED", err.Error())
		return respond(req, calculationID, start, msgs, result)
	}

	for _, issue := range sysValidation.Issues {
		if issue.Severity == model.SeverityCritical {
			msgs.add(model.LevelCritical, model.StageValidation, "VALIDATION_CRITICAL_ISSUE",
				fmt.Sprintf("%s: %s", issue.Parameter, issue.Message))
		}
	}
	if !sysValidation.IsValid && !msgs.critical {
		msgs.add(model.LevelWarning, model.StageValidation, "SYSTEM_VALIDATION_FAILED",
			fmt.Sprintf("validation score %.0f is below the passing score", sysValidation.Score))
	}
	if economics.ErrorMessage != "" {
		msgs.add(model.LevelWarning, model.StageEconomic, "ECONOMIC_ANALYSIS_INCOMPLETE", economics.ErrorMessage)
	}

	if req.Optimize && !msgs.critical {
		econ := req.EconomicParameters
		opt, err := e.OptimizeDesign(ctx, model.DesignOptimizationRequest{
			CurrentDesign:          req.DesignParameters,
			HydraulicParameters:    req.HydraulicParameters,
			OptimizationParameters: req.OptimizationParameters,
			OptimizationGoal:       req.OptimizationGoal,
			CurrentResults:         result.Hydraulics,
			EconomicParameters:     &econ,
		})
		if err != nil {
			msgs.add(model.LevelCritical, model.StageOptimization, "OPTIMIZATION_FAILED", err.Error())
		} else {
			result.Optimization = &opt
		}
	}

	return respond(req, calculationID, start, msgs, result)
}

func respond(req *model.AnalysisRequest, calculationID string, start time.Time, msgs messages, result model.AnalysisResult) *model.AnalysisResponse {
	outcome := model.OutcomeSuccess
	if msgs.critical {
		outcome = model.OutcomeFailure
	}
	result.Messages = msgs.list
	if result.Messages == nil {
		result.Messages = []model.CalculationMessage{}
	}

	elapsed := time.Since(start)
	now := time.Now().UTC()
	return &model.AnalysisResponse{
		CalculationMetadata: model.CalculationMetadata{
			CalculationID:          calculationID,
			TenantID:               req.TenantID,
			CalculationStartedAt:   now.Add(-elapsed).Format(time.RFC3339),
			CalculationCompletedAt: now.Format(time.RFC3339),
			CalculationDurationMs:  elapsed.Milliseconds(),
			CalculationOutcome:     outcome,
		},
		CalculationResult: result,
	}
}
