package model

const (
	CalculationFull  = "full"
	CalculationQuick = "quick"
)

type HydraulicCalculationRequest struct {
	DesignParameters    IrrigationDesignParameters `json:"design_parameters"`
	HydraulicParameters HydraulicParameters        `json:"hydraulic_parameters"`
	CalculationType     string                     `json:"calculation_type,omitempty" validate:"omitempty,oneof=full quick"`
}

type QuickCalculationRequest struct {
	DesignParameters    IrrigationDesignParameters `json:"design_parameters"`
	HydraulicParameters HydraulicParameters        `json:"hydraulic_parameters"`
}

type SystemValidationRequest struct {
	DesignParameters    IrrigationDesignParameters `json:"design_parameters"`
	HydraulicParameters HydraulicParameters        `json:"hydraulic_parameters"`
	HydraulicResults    HydraulicCalculationResult `json:"hydraulic_results"`
	ValidationCriteria  *ValidationCriteria        `json:"validation_criteria,omitempty"`
	ValidationLevel     string                     `json:"validation_level,omitempty" validate:"omitempty,oneof=basic standard comprehensive"`
}

type EconomicAnalysisRequest struct {
	DesignParameters   IrrigationDesignParameters `json:"design_parameters"`
	EconomicParameters EconomicParameters         `json:"economic_parameters"`
	AnalysisType       string                     `json:"analysis_type,omitempty" validate:"omitempty,oneof=basic detailed"`
	Currency           string                     `json:"currency,omitempty" validate:"omitempty,len=3"`
}

type DesignOptimizationRequest struct {
	CurrentDesign          IrrigationDesignParameters `json:"current_design"`
	HydraulicParameters    HydraulicParameters        `json:"hydraulic_parameters"`
	OptimizationParameters OptimizationParameters     `json:"optimization_parameters"`
	OptimizationGoal       string                     `json:"optimization_goal,omitempty" validate:"omitempty,oneof=minimize_cost maximize_efficiency minimize_water minimize_energy balanced"`
	CurrentResults         HydraulicCalculationResult `json:"current_results"`
	EconomicParameters     *EconomicParameters        `json:"economic_parameters,omitempty"`
}

// AnalysisRequest drives the full hydraulic, validation, economic and optimisation pipeline.
type AnalysisRequest struct {
	TenantID               string                     `json:"tenant_id"`
	DesignParameters       IrrigationDesignParameters `json:"design_parameters"`
	HydraulicParameters    HydraulicParameters        `json:"hydraulic_parameters"`
	EconomicParameters     EconomicParameters         `json:"economic_parameters"`
	ValidationCriteria     *ValidationCriteria        `json:"validation_criteria,omitempty"`
	ValidationLevel        string                     `json:"validation_level,omitempty" validate:"omitempty,oneof=basic standard comprehensive"`
	Optimize               bool                       `json:"optimize"`
	OptimizationParameters OptimizationParameters     `json:"optimization_parameters"`
	OptimizationGoal       string                     `json:"optimization_goal,omitempty" validate:"omitempty,oneof=minimize_cost maximize_efficiency minimize_water minimize_energy balanced"`
}
