package model

const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

const (
	CategoryPressure   = "pressure"
	CategoryFlow       = "flow"
	CategoryUniformity = "uniformity"
	CategoryTechnical  = "technical"
	CategoryMaterial   = "material"
	CategoryWater      = "water_quality"
	CategoryInput      = "input"
	CategorySystem     = "system"
)

const (
	LevelBasic         = "basic"
	LevelStandard      = "standard"
	LevelComprehensive = "comprehensive"
)

const (
	GradeExcellent    = "Excellent"
	GradeGood         = "Good"
	GradeFair         = "Fair"
	GradePoor         = "Poor"
	GradeUnacceptable = "Unacceptable"
)

type ValidationIssue struct {
	Category         string  `json:"category"`
	Severity         string  `json:"severity"`
	Parameter        string  `json:"parameter"`
	Message          string  `json:"message"`
	CurrentValue     float64 `json:"current_value"`
	RecommendedValue float64 `json:"recommended_value"`
}

// ValidationCriteria holds the engineering thresholds. Zero fields fall back to
// DefaultValidationCriteria.
type ValidationCriteria struct {
	MaxPressureLossRatio float64 `json:"max_pressure_loss_ratio"`
	MaxFlowImbalance     float64 `json:"max_flow_imbalance"`
	AdequateFlowRatio    float64 `json:"adequate_flow_ratio"`
	MinVelocity          float64 `json:"min_velocity"`
	MaxVelocity          float64 `json:"max_velocity"`
	PassingScore         float64 `json:"passing_score"`
}

func DefaultValidationCriteria() ValidationCriteria {
	return ValidationCriteria{
		MaxPressureLossRatio: 0.8,
		MaxFlowImbalance:     10,
		AdequateFlowRatio:    0.9,
		MinVelocity:          0.3,
		MaxVelocity:          3.0,
		PassingScore:         70,
	}
}

type SystemValidationResult struct {
	IsValid             bool                 `json:"is_valid"`
	Score               float64              `json:"score"`
	ValidationLevel     string               `json:"validation_level"`
	Issues              []ValidationIssue    `json:"issues"`
	Pressure            PressureValidation   `json:"pressure"`
	Flow                FlowValidation       `json:"flow"`
	Uniformity          UniformityValidation `json:"uniformity"`
	TechnicalCompliance TechnicalCompliance  `json:"technical_compliance"`
}

type PressureValidation struct {
	IsValid         bool    `json:"is_valid"`
	TotalLoss       float64 `json:"total_loss"`
	MaxAllowedLoss  float64 `json:"max_allowed_loss"`
	OperatingMargin float64 `json:"operating_margin"`
}

type FlowValidation struct {
	IsValid        bool    `json:"is_valid"`
	Assessed       bool    `json:"assessed"`
	SystemFlowRate float64 `json:"system_flow_rate"`
	DesignFlowRate float64 `json:"design_flow_rate"`
	FlowBalance    float64 `json:"flow_balance"`
	AdequateFlow   bool    `json:"adequate_flow"`
}

// UniformityValidation and TechnicalCompliance are only assessed from the standard
// level up; unassessed sections report valid.
type UniformityValidation struct {
	IsValid  bool    `json:"is_valid"`
	Assessed bool    `json:"assessed"`
	Achieved float64 `json:"achieved"`
	Target   float64 `json:"target"`
	Grade    string  `json:"grade"`
}

type TechnicalCompliance struct {
	IsCompliant       bool `json:"is_compliant"`
	Assessed          bool `json:"assessed"`
	VelocityCompliant bool `json:"velocity_compliant"`
	PressureCompliant bool `json:"pressure_compliant"`
	MaterialCompliant bool `json:"material_compliant"`
}

type ParameterValidationResult struct {
	IsValid bool              `json:"is_valid"`
	Issues  []ValidationIssue `json:"issues"`
}

// HasCritical reports whether any issue carries critical severity.
func HasCritical(issues []ValidationIssue) bool {
	for _, is := range issues {
		if is.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
