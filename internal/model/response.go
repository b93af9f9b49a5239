package model

type AnalysisResponse struct {
	CalculationMetadata CalculationMetadata `json:"calculation_metadata"`
	CalculationResult   AnalysisResult      `json:"calculation_result"`
}

type CalculationMetadata struct {
	CalculationID          string `json:"calculation_id"`
	TenantID               string `json:"tenant_id"`
	CalculationStartedAt   string `json:"calculation_started_at"`
	CalculationCompletedAt string `json:"calculation_completed_at"`
	CalculationDurationMs  int64  `json:"calculation_duration_ms"`
	CalculationOutcome     string `json:"calculation_outcome"`
}

type AnalysisResult struct {
	Messages            []CalculationMessage       `json:"messages"`
	ParameterValidation ParameterValidationResult  `json:"parameter_validation"`
	Hydraulics          HydraulicCalculationResult `json:"hydraulics"`
	Validation          *SystemValidationResult    `json:"validation,omitempty"`
	Economics           *EconomicAnalysisResult    `json:"economics,omitempty"`
	Optimization        *DesignOptimizationResult  `json:"optimization,omitempty"`
}

type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

const (
	OutcomeSuccess = "SUCCESS"
	OutcomeFailure = "FAILURE"
)
