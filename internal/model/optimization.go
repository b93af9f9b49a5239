package model

const (
	GoalMinimizeCost       = "minimize_cost"
	GoalMaximizeEfficiency = "maximize_efficiency"
	GoalMinimizeWater      = "minimize_water"
	GoalMinimizeEnergy     = "minimize_energy"
	GoalBalanced           = "balanced"
)

const (
	MethodCoordinateDescent = "coordinate_descent"
	MethodNelderMead        = "nelder_mead"
)

type OptimizationParameters struct {
	Method          string   `json:"method,omitempty" validate:"omitempty,oneof=coordinate_descent nelder_mead"`
	MaxIterations   int      `json:"max_iterations" validate:"gte=0"`
	Epsilon         float64  `json:"epsilon,omitempty" validate:"gte=0"`
	StallIterations int      `json:"stall_iterations,omitempty" validate:"gte=0"`
	Parameters      []string `json:"parameters,omitempty" validate:"dive,oneof=design_velocity allowed_pressure_variation operating_pressure irrigation_frequency"`
}

type DesignOptimizationResult struct {
	Method              string                       `json:"method"`
	Goal                string                       `json:"goal"`
	Iterations          int                          `json:"iterations"`
	Converged           bool                         `json:"converged"`
	InitialObjective    float64                      `json:"initial_objective"`
	FinalObjective      float64                      `json:"final_objective"`
	CurrentEfficiency   float64                      `json:"current_efficiency"`
	AchievedEfficiency  float64                      `json:"achieved_efficiency"`
	CostReduction       float64                      `json:"cost_reduction"`
	EfficiencyGain      float64                      `json:"efficiency_gain"`
	WaterSavings        float64                      `json:"water_savings"`
	EnergySavings       float64                      `json:"energy_savings"`
	OverallScore        float64                      `json:"overall_score"`
	OptimizedHydraulics HydraulicParameters          `json:"optimized_hydraulics"`
	OptimizedDesign     IrrigationDesignParameters   `json:"optimized_design"`
	Changes             []DesignChange               `json:"changes"`
	Recommendations     []OptimizationRecommendation `json:"recommendations"`
}

type OptimizationRecommendation struct {
	Rank               int     `json:"rank"`
	Parameter          string  `json:"parameter"`
	CurrentValue       float64 `json:"current_value"`
	RecommendedValue   float64 `json:"recommended_value"`
	ImprovementPercent float64 `json:"improvement_percent"`
	Justification      string  `json:"justification"`
	CostImpact         float64 `json:"cost_impact"`
}

// DesignChange is a single JSON-patch style operation against the submitted design.
type DesignChange struct {
	Op       string      `json:"op"`
	Path     string      `json:"path"`
	Value    interface{} `json:"value,omitempty"`
	Previous interface{} `json:"previous,omitempty"`
}
