package model

// CalculationMessage reports a pipeline-level event in the full analysis response.
type CalculationMessage struct {
	ID      int    `json:"id"`
	Level   string `json:"level"`
	Stage   string `json:"stage"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	LevelCritical = "CRITICAL"
	LevelWarning  = "WARNING"
)

const (
	StageParameters   = "parameters"
	StageHydraulic    = "hydraulic"
	StageValidation   = "validation"
	StageEconomic     = "economic"
	StageOptimization = "optimization"
	StagePipeline     = "pipeline"
)
