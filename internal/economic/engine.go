package economic

import (
	"fmt"
	"math"

	"irrigation-engine/internal/model"
)

// MaxAnalysisHorizon bounds the discounting loops so an analysis runs in bounded time.
const MaxAnalysisHorizon = 100 // years

const (
	defaultCurrency   = "USD"
	sensitivityStepPP = 2.0
	squareMetersPerHa = 10000.0
)

// Analyze turns the design into capital cost, annual operating cost and investment
// metrics. Faults never escape: they are recorded in ErrorMessage and whatever was
// computed up to that point is returned.
func Analyze(design model.IrrigationDesignParameters, params model.EconomicParameters) (res model.EconomicAnalysisResult) {
	cm := CostModelOrDefault(params.CostModel)
	res.Currency = params.Currency
	if res.Currency == "" {
		res.Currency = defaultCurrency
	}
	res.CostModelRegion = cm.Region

	defer func() {
		if rec := recover(); rec != nil {
			res.ErrorMessage = fmt.Sprintf("economic analysis failed: %v", rec)
		}
	}()

	res.Costs = CapitalCosts(design.TotalArea, cm)
	res.OperatingCosts = OperatingCosts(res.Costs.TotalInvestment, cm)

	investment := res.Costs.TotalInvestment
	benefit := investment*cm.BenefitRatio - res.OperatingCosts.AnnualOperatingCost
	m := &res.Metrics
	m.NetAnnualBenefit = benefit
	if benefit > 0 {
		m.PaybackPeriod = investment / benefit
		m.PaybackAchievable = true
	}
	if investment > 0 {
		m.ROI = benefit / investment * 100
	}

	if params.AnalysisHorizon <= 0 {
		res.ErrorMessage = "analysis horizon must be greater than zero"
		return res
	}
	if params.AnalysisHorizon > MaxAnalysisHorizon {
		res.ErrorMessage = fmt.Sprintf("analysis horizon %d exceeds %d years", params.AnalysisHorizon, MaxAnalysisHorizon)
		return res
	}
	rate := params.DiscountRate / 100
	if !(rate > -1) || math.IsInf(rate, 0) {
		res.ErrorMessage = fmt.Sprintf("discount rate %.2f%% is out of range", params.DiscountRate)
		return res
	}

	m.NPV = NPV(benefit, investment, rate, params.AnalysisHorizon)
	if irr, ok := IRR(benefit, investment, params.AnalysisHorizon); ok {
		m.IRR = irr * 100
		m.IRRFound = true
	}

	if params.AnalysisType == model.AnalysisDetailed {
		res.CashFlows = cashFlows(benefit, investment, rate, params.AnalysisHorizon)
		res.Sensitivity = sensitivity(benefit, investment, params.DiscountRate, params.AnalysisHorizon)
	}

	if !finiteAll(investment, res.OperatingCosts.AnnualOperatingCost, m.NPV, m.ROI, m.PaybackPeriod) {
		res.ErrorMessage = "economic analysis produced a non-finite value"
	}
	return res
}

// CapitalCosts apportions the per-area baseline across the cost components.
func CapitalCosts(area float64, cm model.CostModel) model.CostBreakdown {
	base := area * cm.UnitCostPerSquareMeter
	c := model.CostBreakdown{
		PipelineCost:     base * cm.PipelineRatio,
		EmitterCost:      base * cm.EmitterRatio,
		PumpingCost:      base * cm.PumpingRatio,
		ControlCost:      base * cm.ControlRatio,
		InstallationCost: base * cm.InstallationRatio,
	}
	c.TotalInvestment = c.PipelineCost + c.EmitterCost + c.PumpingCost + c.ControlCost + c.InstallationCost
	if area > 0 {
		c.CostPerHectare = c.TotalInvestment / area * squareMetersPerHa
	}
	return c
}

// OperatingCosts apportions annual recurring costs from the total investment.
func OperatingCosts(investment float64, cm model.CostModel) model.OperatingCostBreakdown {
	o := model.OperatingCostBreakdown{
		EnergyCost:      investment * cm.EnergyRatio,
		WaterCost:       investment * cm.WaterRatio,
		MaintenanceCost: investment * cm.MaintenanceRatio,
		LaborCost:       investment * cm.LaborRatio,
		ReplacementCost: investment * cm.ReplacementRatio,
	}
	o.AnnualOperatingCost = o.EnergyCost + o.WaterCost + o.MaintenanceCost + o.LaborCost + o.ReplacementCost
	return o
}

// NPV discounts a constant annual benefit over the horizon and subtracts the investment.
// rate is a fraction.
func NPV(benefit, investment, rate float64, horizon int) float64 {
	npv := -investment
	for t := 1; t <= horizon; t++ {
		npv += benefit / math.Pow(1+rate, float64(t))
	}
	return npv
}

func cashFlows(benefit, investment, rate float64, horizon int) []model.CashFlow {
	flows := make([]model.CashFlow, 0, horizon+1)
	cumulative := -investment
	flows = append(flows, model.CashFlow{Year: 0, NetCashFlow: -investment, DiscountedFlow: -investment, CumulativeNPV: cumulative})
	for t := 1; t <= horizon; t++ {
		discounted := benefit / math.Pow(1+rate, float64(t))
		cumulative += discounted
		flows = append(flows, model.CashFlow{
			Year:           t,
			NetCashFlow:    benefit,
			DiscountedFlow: discounted,
			CumulativeNPV:  cumulative,
		})
	}
	return flows
}

func sensitivity(benefit, investment, ratePercent float64, horizon int) []model.SensitivityPoint {
	var points []model.SensitivityPoint
	for _, r := range []float64{ratePercent - sensitivityStepPP, ratePercent, ratePercent + sensitivityStepPP} {
		if r <= -100 {
			continue
		}
		points = append(points, model.SensitivityPoint{
			DiscountRate: r,
			NPV:          NPV(benefit, investment, r/100, horizon),
		})
	}
	return points
}

// CostModelOrDefault returns the default table when c is nil and otherwise fills the
// zero fields of c from it.
func CostModelOrDefault(c *model.CostModel) model.CostModel {
	d := model.DefaultCostModel()
	if c == nil {
		return d
	}
	if c.Region != "" {
		d.Region = c.Region
	}
	fields := []struct {
		dst *float64
		src float64
	}{
		{&d.UnitCostPerSquareMeter, c.UnitCostPerSquareMeter},
		{&d.PipelineRatio, c.PipelineRatio},
		{&d.EmitterRatio, c.EmitterRatio},
		{&d.PumpingRatio, c.PumpingRatio},
		{&d.ControlRatio, c.ControlRatio},
		{&d.InstallationRatio, c.InstallationRatio},
		{&d.EnergyRatio, c.EnergyRatio},
		{&d.WaterRatio, c.WaterRatio},
		{&d.MaintenanceRatio, c.MaintenanceRatio},
		{&d.LaborRatio, c.LaborRatio},
		{&d.ReplacementRatio, c.ReplacementRatio},
		{&d.BenefitRatio, c.BenefitRatio},
	}
	for _, f := range fields {
		if f.src > 0 {
			*f.dst = f.src
		}
	}
	return d
}

func finiteAll(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
