package model

const (
	AnalysisBasic    = "basic"
	AnalysisDetailed = "detailed"
)

// CostModel is the constant table the economic engine apportions costs with.
// Ratios are fractions, the unit cost is per square metre of irrigated area.
type CostModel struct {
	Region                 string  `json:"region,omitempty"`
	UnitCostPerSquareMeter float64 `json:"unit_cost_per_square_meter"`
	PipelineRatio          float64 `json:"pipeline_ratio"`
	EmitterRatio           float64 `json:"emitter_ratio"`
	PumpingRatio           float64 `json:"pumping_ratio"`
	ControlRatio           float64 `json:"control_ratio"`
	InstallationRatio      float64 `json:"installation_ratio"`
	EnergyRatio            float64 `json:"energy_ratio"`
	WaterRatio             float64 `json:"water_ratio"`
	MaintenanceRatio       float64 `json:"maintenance_ratio"`
	LaborRatio             float64 `json:"labor_ratio"`
	ReplacementRatio       float64 `json:"replacement_ratio"`
	BenefitRatio           float64 `json:"benefit_ratio"`
}

// DefaultCostModel returns the baseline apportionment table.
func DefaultCostModel() CostModel {
	return CostModel{
		Region:                 "default",
		UnitCostPerSquareMeter: 25,
		PipelineRatio:          0.40,
		EmitterRatio:           0.25,
		PumpingRatio:           0.15,
		ControlRatio:           0.10,
		InstallationRatio:      0.10,
		EnergyRatio:            0.05,
		WaterRatio:             0.03,
		MaintenanceRatio:       0.04,
		LaborRatio:             0.02,
		ReplacementRatio:       0.01,
		BenefitRatio:           0.18,
	}
}

// EconomicParameters DiscountRate is a percentage (8 means 8 %), the horizon is in years.
type EconomicParameters struct {
	DiscountRate    float64    `json:"discount_rate"`
	AnalysisHorizon int        `json:"analysis_horizon" validate:"gte=0,lte=100"`
	Currency        string     `json:"currency,omitempty"`
	Region          string     `json:"region,omitempty"`
	AnalysisType    string     `json:"analysis_type,omitempty" validate:"omitempty,oneof=basic detailed"`
	CostModel       *CostModel `json:"cost_model,omitempty"`
}

type EconomicAnalysisResult struct {
	Currency        string                 `json:"currency"`
	CostModelRegion string                 `json:"cost_model_region"`
	Costs           CostBreakdown          `json:"costs"`
	OperatingCosts  OperatingCostBreakdown `json:"operating_costs"`
	Metrics         InvestmentMetrics      `json:"metrics"`
	CashFlows       []CashFlow             `json:"cash_flows,omitempty"`
	Sensitivity     []SensitivityPoint     `json:"sensitivity,omitempty"`
	ErrorMessage    string                 `json:"error_message,omitempty"`
}

type CostBreakdown struct {
	PipelineCost     float64 `json:"pipeline_cost"`
	EmitterCost      float64 `json:"emitter_cost"`
	PumpingCost      float64 `json:"pumping_cost"`
	ControlCost      float64 `json:"control_cost"`
	InstallationCost float64 `json:"installation_cost"`
	TotalInvestment  float64 `json:"total_investment"`
	CostPerHectare   float64 `json:"cost_per_hectare"`
}

type OperatingCostBreakdown struct {
	EnergyCost          float64 `json:"energy_cost"`
	WaterCost           float64 `json:"water_cost"`
	MaintenanceCost     float64 `json:"maintenance_cost"`
	LaborCost           float64 `json:"labor_cost"`
	ReplacementCost     float64 `json:"replacement_cost"`
	AnnualOperatingCost float64 `json:"annual_operating_cost"`
}

type InvestmentMetrics struct {
	NetAnnualBenefit  float64 `json:"net_annual_benefit"`
	PaybackPeriod     float64 `json:"payback_period"`
	PaybackAchievable bool    `json:"payback_achievable"`
	ROI               float64 `json:"roi"`
	NPV               float64 `json:"npv"`
	IRR               float64 `json:"irr"`
	IRRFound          bool    `json:"irr_found"`
}

type CashFlow struct {
	Year           int     `json:"year"`
	NetCashFlow    float64 `json:"net_cash_flow"`
	DiscountedFlow float64 `json:"discounted_flow"`
	CumulativeNPV  float64 `json:"cumulative_npv"`
}

type SensitivityPoint struct {
	DiscountRate float64 `json:"discount_rate"`
	NPV          float64 `json:"npv"`
}
