package hydraulic

import (
	"fmt"
	"math"

	"irrigation-engine/internal/model"
)

const (
	safetyFactor       = 1.10
	efficiencyFactor   = 0.95
	barPerMeterHead    = 0.0981
	waterViscosity     = 1e-6 // m²/s at 20 °C
	minUniformity      = 75.0
	maxUniformity      = 98.0
	laminarLimit       = 2000.0
	transitionalLimit  = 4000.0
	emitterExponent    = 0.5
	manufacturerFactor = 1.27
)

// Calculate derives flow, losses, uniformity and the emitter/reliability sub-results.
// It never panics: invalid divisors or non-finite values come back as IsValid=false.
func Calculate(design model.IrrigationDesignParameters, hp model.HydraulicParameters) model.HydraulicCalculationResult {
	res := model.HydraulicCalculationResult{IsValid: true}

	if msg := checkDivisors(design, hp); msg != "" {
		return invalid(res, msg)
	}

	res.SystemFlowRate = FlowRate(design)
	res.FrictionLoss = hp.FrictionLossCoefficient * hp.DesignVelocity * hp.DesignVelocity
	res.MinorLoss = hp.MinorLossCoefficient * hp.DesignVelocity * hp.DesignVelocity
	res.ElevationLoss = math.Abs(hp.ElevationChange) * barPerMeterHead
	res.TotalPressureLoss = res.FrictionLoss + res.MinorLoss + res.ElevationLoss

	res.DistributionUniformity = Uniformity(hp.AllowedPressureVariation)
	res.ApplicationEfficiency = clamp(res.DistributionUniformity*efficiencyFactor, 0, 100)

	res.AverageVelocity = hp.DesignVelocity
	res.MainLineVelocity = lineVelocity(res.SystemFlowRate, design.PipeNetwork.Main.Diameter)
	res.ReynoldsNumber = Reynolds(hp.DesignVelocity, design.PipeNetwork.Main.Diameter)
	res.FlowRegime = Regime(res.ReynoldsNumber)

	res.StaticHead = math.Abs(hp.ElevationChange)
	res.DynamicHead = (res.FrictionLoss + res.MinorLoss) / barPerMeterHead
	res.TotalDynamicHead = res.StaticHead + res.DynamicHead
	res.RequiredSourcePressure = hp.OperatingPressure + res.TotalPressureLoss + filtrationDrop(design.Components)

	res.EmitterPerformance = emitterPerformance(design, hp, res.DistributionUniformity)
	res.SystemReliability = reliability(design)

	if name, ok := firstNonFinite(res); !ok {
		return invalid(res, fmt.Sprintf("non-finite %s", name))
	}
	return res
}

// QuickCalculate is the reduced fast path: flow, loss, uniformity and efficiency only.
func QuickCalculate(design model.IrrigationDesignParameters, hp model.HydraulicParameters) model.QuickCalculationResult {
	if msg := checkDivisors(design, hp); msg != "" {
		return model.QuickCalculationResult{IsValid: false, ErrorMessage: msg}
	}
	du := Uniformity(hp.AllowedPressureVariation)
	v2 := hp.DesignVelocity * hp.DesignVelocity
	q := model.QuickCalculationResult{
		SystemFlowRate:         FlowRate(design),
		TotalPressureLoss:      hp.FrictionLossCoefficient*v2 + hp.MinorLossCoefficient*v2 + math.Abs(hp.ElevationChange)*barPerMeterHead,
		DistributionUniformity: du,
		ApplicationEfficiency:  clamp(du*efficiencyFactor, 0, 100),
		IsValid:                true,
	}
	for _, v := range []float64{q.SystemFlowRate, q.TotalPressureLoss} {
		if !finite(v) {
			q.IsValid = false
			q.ErrorMessage = "non-finite result"
		}
	}
	return q
}

// FlowRate returns the system flow in L/min including the safety factor.
// The caller guarantees a positive irrigation frequency.
func FlowRate(design model.IrrigationDesignParameters) float64 {
	daily := design.DailyWaterRequirement * design.PlantDensity * design.TotalArea
	window := 24 / design.IrrigationFrequency
	return daily / window / 60 * safetyFactor
}

// Uniformity maps the allowed pressure variation (%) onto distribution uniformity.
func Uniformity(pressureVariation float64) float64 {
	if !finite(pressureVariation) {
		return minUniformity
	}
	return clamp(100*(1-pressureVariation/200), minUniformity, maxUniformity)
}

// Reynolds takes the velocity in m/s and the pipe diameter in mm.
func Reynolds(velocity, diameterMM float64) float64 {
	return velocity * (diameterMM / 1000) / waterViscosity
}

func Regime(re float64) string {
	switch {
	case re < laminarLimit:
		return model.RegimeLaminar
	case re < transitionalLimit:
		return model.RegimeTransitional
	default:
		return model.RegimeTurbulent
	}
}

func checkDivisors(design model.IrrigationDesignParameters, hp model.HydraulicParameters) string {
	switch {
	case !(design.IrrigationFrequency > 0):
		return "irrigation frequency must be greater than zero"
	case !finite(design.IrrigationFrequency):
		return "irrigation frequency must be finite"
	case !(hp.DesignVelocity > 0):
		return "design velocity must be greater than zero"
	case !(design.PipeNetwork.Main.Diameter > 0) || !finite(design.PipeNetwork.Main.Diameter):
		return "main pipe diameter must be a positive finite value"
	case !(hp.EmitterSpacing > 0) || !finite(hp.EmitterSpacing):
		return "emitter spacing must be a positive finite value"
	}
	return ""
}

func invalid(res model.HydraulicCalculationResult, msg string) model.HydraulicCalculationResult {
	res.IsValid = false
	res.ErrorMessage = msg
	return res
}

// lineVelocity converts a flow in L/min through a diameter in mm into m/s.
func lineVelocity(flowLPM, diameterMM float64) float64 {
	if diameterMM <= 0 {
		return 0
	}
	d := diameterMM / 1000
	area := math.Pi * d * d / 4
	return flowLPM / 1000 / 60 / area
}

func filtrationDrop(c model.SystemComponents) float64 {
	if c.HasFiltration && c.Filtration != nil {
		return c.Filtration.PressureDrop
	}
	return 0
}

func emitterPerformance(design model.IrrigationDesignParameters, hp model.HydraulicParameters, du float64) model.EmitterPerformance {
	ep := model.EmitterPerformance{
		EmitterFlowRate:   hp.EmitterFlowRate,
		OperatingPressure: hp.EmitterPressure,
	}
	if design.TotalArea > 0 {
		ep.EmitterCount = int(math.Ceil(design.TotalArea / (hp.EmitterSpacing * hp.EmitterSpacing)))
		ep.TotalEmitterFlow = float64(ep.EmitterCount) * hp.EmitterFlowRate / 60
	}

	pv := clamp(hp.AllowedPressureVariation, 0, 99.9)
	ep.FlowVariation = (1 - math.Pow(1-pv/100, emitterExponent)) * 100
	ep.CoefficientOfVariation = (1 - du/100) / manufacturerFactor
	return ep
}

func reliability(design model.IrrigationDesignParameters) model.SystemReliability {
	wq := design.WaterSource.WaterQuality
	c := design.Components
	rel := model.SystemReliability{
		FiltrationFactor: 1,
		AutomationFactor: 1,
		RedundancyFactor: 1,
	}

	points := 0
	switch {
	case wq.SuspendedSolids > 100:
		points += 2
		rel.Notes = append(rel.Notes, "suspended solids above 100 mg/L")
	case wq.SuspendedSolids > 50:
		points++
	}
	switch {
	case wq.IronContent > 1.5:
		points += 2
		rel.Notes = append(rel.Notes, "iron above 1.5 mg/L")
	case wq.IronContent > 0.2:
		points++
	}
	if wq.PH > 8 {
		points++
		rel.Notes = append(rel.Notes, "alkaline water favours precipitate clogging")
	}

	cloggingFactor := 1.0
	switch {
	case points >= 3:
		rel.CloggingRisk = "HIGH"
		cloggingFactor = 0.75
	case points > 0:
		rel.CloggingRisk = "MEDIUM"
		cloggingFactor = 0.9
	default:
		rel.CloggingRisk = "LOW"
	}

	if !c.HasFiltration {
		rel.FiltrationFactor = 0.9
		if points > 0 {
			rel.FiltrationFactor = 0.7
			rel.Notes = append(rel.Notes, "no filtration installed")
		}
	}
	if !c.HasAutomation {
		rel.AutomationFactor = 0.9
	}
	if design.NumberOfSectors <= 1 {
		rel.RedundancyFactor = 0.95
	}

	score := 100 * cloggingFactor * rel.FiltrationFactor * rel.AutomationFactor * rel.RedundancyFactor
	rel.ReliabilityScore = clamp(score, 0, 100)
	return rel
}

func firstNonFinite(res model.HydraulicCalculationResult) (string, bool) {
	fields := []struct {
		name string
		v    float64
	}{
		{"system flow rate", res.SystemFlowRate},
		{"pressure loss", res.TotalPressureLoss},
		{"uniformity", res.DistributionUniformity},
		{"velocity", res.MainLineVelocity},
		{"reynolds number", res.ReynoldsNumber},
		{"dynamic head", res.DynamicHead},
		{"required source pressure", res.RequiredSourcePressure},
	}
	for _, f := range fields {
		if !finite(f.v) {
			return f.name, false
		}
	}
	return "", true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
