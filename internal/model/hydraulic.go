package model

const (
	RegimeLaminar      = "LAMINAR"
	RegimeTransitional = "TRANSITIONAL"
	RegimeTurbulent    = "TURBULENT"
)

// HydraulicCalculationResult flow rates are in L/min, pressures in bar and heads in m.
// When IsValid is false every derived metric is advisory only.
type HydraulicCalculationResult struct {
	SystemFlowRate         float64            `json:"system_flow_rate"`
	TotalPressureLoss      float64            `json:"total_pressure_loss"`
	FrictionLoss           float64            `json:"friction_loss"`
	MinorLoss              float64            `json:"minor_loss"`
	ElevationLoss          float64            `json:"elevation_loss"`
	DistributionUniformity float64            `json:"distribution_uniformity"`
	ApplicationEfficiency  float64            `json:"application_efficiency"`
	AverageVelocity        float64            `json:"average_velocity"`
	MainLineVelocity       float64            `json:"main_line_velocity"`
	ReynoldsNumber         float64            `json:"reynolds_number"`
	FlowRegime             string             `json:"flow_regime"`
	StaticHead             float64            `json:"static_head"`
	DynamicHead            float64            `json:"dynamic_head"`
	TotalDynamicHead       float64            `json:"total_dynamic_head"`
	RequiredSourcePressure float64            `json:"required_source_pressure"`
	EmitterPerformance     EmitterPerformance `json:"emitter_performance"`
	SystemReliability      SystemReliability  `json:"system_reliability"`
	IsValid                bool               `json:"is_valid"`
	ErrorMessage           string             `json:"error_message,omitempty"`
}

type EmitterPerformance struct {
	EmitterCount           int     `json:"emitter_count"`
	EmitterFlowRate        float64 `json:"emitter_flow_rate"`
	TotalEmitterFlow       float64 `json:"total_emitter_flow"`
	FlowVariation          float64 `json:"flow_variation"`
	CoefficientOfVariation float64 `json:"coefficient_of_variation"`
	OperatingPressure      float64 `json:"operating_pressure"`
}

type SystemReliability struct {
	ReliabilityScore float64  `json:"reliability_score"`
	CloggingRisk     string   `json:"clogging_risk"`
	FiltrationFactor float64  `json:"filtration_factor"`
	AutomationFactor float64  `json:"automation_factor"`
	RedundancyFactor float64  `json:"redundancy_factor"`
	Notes            []string `json:"notes,omitempty"`
}

type QuickCalculationResult struct {
	SystemFlowRate         float64 `json:"system_flow_rate"`
	TotalPressureLoss      float64 `json:"total_pressure_loss"`
	DistributionUniformity float64 `json:"distribution_uniformity"`
	ApplicationEfficiency  float64 `json:"application_efficiency"`
	IsValid                bool    `json:"is_valid"`
	ErrorMessage           string  `json:"error_message,omitempty"`
}
