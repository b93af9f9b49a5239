package validation

import (
	"fmt"
	"math"
	"strings"

	"irrigation-engine/internal/model"
)

const (
	criticalPenalty = 25.0
	warningPenalty  = 10.0
	infoPenalty     = 2.0
)

// Input is everything a validation pass looks at. Design is only consulted at the
// comprehensive level.
type Input struct {
	Result     model.HydraulicCalculationResult
	Hydraulics model.HydraulicParameters
	Design     *model.IrrigationDesignParameters
	Criteria   model.ValidationCriteria
	Level      string
}

type check struct {
	name string
	fn   func(*report)
}

type report struct {
	in     Input
	crit   model.ValidationCriteria
	out    model.SystemValidationResult
	issues []model.ValidationIssue
}

func (r *report) add(category, severity, parameter, msg string, current, recommended float64) {
	r.issues = append(r.issues, model.ValidationIssue{
		Category:         category,
		Severity:         severity,
		Parameter:        parameter,
		Message:          msg,
		CurrentValue:     current,
		RecommendedValue: recommended,
	})
}

// Validate classifies an already computed hydraulic result. Checks are independent and
// every issue found is kept.
func Validate(in Input) model.SystemValidationResult {
	r := &report{in: in, crit: mergeCriteria(in.Criteria)}
	r.out.ValidationLevel = normalizeLevel(in.Level)

	checks := []check{
		{"hydraulic result", checkHydraulicResult},
		{"pressure", checkPressure},
		{"flow", checkFlow},
	}
	if r.out.ValidationLevel != model.LevelBasic {
		checks = append(checks,
			check{"uniformity", checkUniformity},
			check{"technical compliance", checkTechnical},
		)
	} else {
		r.out.Uniformity.IsValid = true
		r.out.TechnicalCompliance.IsCompliant = true
	}
	if r.out.ValidationLevel == model.LevelComprehensive {
		checks = append(checks,
			check{"flow regime", checkRegime},
			check{"pipe material", checkMaterials},
			check{"water quality", checkWaterQuality},
		)
	}

	for _, c := range checks {
		run(r, c)
	}

	if r.issues == nil {
		r.issues = []model.ValidationIssue{}
	}
	r.out.Issues = r.issues
	r.out.Score = Score(r.issues)
	r.out.IsValid = r.out.Score >= r.crit.PassingScore && !model.HasCritical(r.issues)
	if tc := &r.out.TechnicalCompliance; tc.Assessed {
		tc.IsCompliant = tc.VelocityCompliant && tc.PressureCompliant && tc.MaterialCompliant
	}
	return r.out
}

// run isolates a single check so a fault inside it becomes one critical issue.
func run(r *report, c check) {
	defer func() {
		if rec := recover(); rec != nil {
			r.add(model.CategorySystem, model.SeverityCritical, c.name,
				fmt.Sprintf("internal fault during %s check: %v", c.name, rec), 0, 0)
		}
	}()
	c.fn(r)
}

// Score starts at 100 and subtracts a fixed penalty per issue severity, floored at 0.
func Score(issues []model.ValidationIssue) float64 {
	score := 100.0
	for _, is := range issues {
		switch is.Severity {
		case model.SeverityCritical:
			score -= criticalPenalty
		case model.SeverityWarning:
			score -= warningPenalty
		case model.SeverityInfo:
			score -= infoPenalty
		}
	}
	return math.Max(0, score)
}

// Grade buckets an achieved uniformity percentage.
func Grade(uniformity float64) string {
	switch {
	case uniformity >= 95:
		return model.GradeExcellent
	case uniformity >= 90:
		return model.GradeGood
	case uniformity >= 85:
		return model.GradeFair
	case uniformity >= 80:
		return model.GradePoor
	default:
		return model.GradeUnacceptable
	}
}

func checkHydraulicResult(r *report) {
	if r.in.Result.IsValid {
		return
	}
	msg := "hydraulic calculation is invalid"
	if r.in.Result.ErrorMessage != "" {
		msg += ": " + r.in.Result.ErrorMessage
	}
	r.add(model.CategorySystem, model.SeverityCritical, "HydraulicResult", msg, 0, 0)
}

func checkPressure(r *report) {
	loss := r.in.Result.TotalPressureLoss
	op := r.in.Hydraulics.OperatingPressure
	maxLoss := r.crit.MaxPressureLossRatio * op

	r.out.Pressure = model.PressureValidation{
		IsValid:         loss <= maxLoss,
		TotalLoss:       loss,
		MaxAllowedLoss:  maxLoss,
		OperatingMargin: op - loss,
	}
	if !r.out.Pressure.IsValid {
		r.add(model.CategoryPressure, model.SeverityWarning, "TotalPressureLoss",
			fmt.Sprintf("pressure loss %.3f bar exceeds %.0f%% of operating pressure (%.3f bar)",
				loss, r.crit.MaxPressureLossRatio*100, maxLoss),
			loss, maxLoss)
	}
}

func checkFlow(r *report) {
	q := r.in.Result.SystemFlowRate
	design := r.in.Hydraulics.DesignFlowRate
	r.out.Flow = model.FlowValidation{
		IsValid:        true,
		AdequateFlow:   true,
		SystemFlowRate: q,
		DesignFlowRate: design,
	}

	if !(design > 0) {
		r.add(model.CategoryFlow, model.SeverityInfo, "DesignFlowRate",
			"design flow rate not provided, flow balance not assessed", design, q)
		return
	}

	r.out.Flow.Assessed = true
	r.out.Flow.FlowBalance = math.Abs(q-design) / design * 100
	r.out.Flow.IsValid = r.out.Flow.FlowBalance <= r.crit.MaxFlowImbalance
	r.out.Flow.AdequateFlow = q >= r.crit.AdequateFlowRatio*design

	if !r.out.Flow.IsValid {
		r.add(model.CategoryFlow, model.SeverityWarning, "SystemFlowRate",
			fmt.Sprintf("flow imbalance %.1f%% exceeds %.1f%%", r.out.Flow.FlowBalance, r.crit.MaxFlowImbalance),
			q, design)
	}
}

func checkUniformity(r *report) {
	achieved := r.in.Result.DistributionUniformity
	target := r.in.Hydraulics.TargetUniformity
	r.out.Uniformity = model.UniformityValidation{
		IsValid:  achieved >= target,
		Assessed: true,
		Achieved: achieved,
		Target:   target,
		Grade:    Grade(achieved),
	}
	if !r.out.Uniformity.IsValid {
		r.add(model.CategoryUniformity, model.SeverityWarning, "DistributionUniformity",
			fmt.Sprintf("uniformity %.1f%% is below target %.1f%%", achieved, target),
			achieved, target)
	}
}

func checkTechnical(r *report) {
	v := r.in.Result.AverageVelocity
	loss := r.in.Result.TotalPressureLoss
	op := r.in.Hydraulics.OperatingPressure

	tc := &r.out.TechnicalCompliance
	tc.Assessed = true
	tc.VelocityCompliant = v >= r.crit.MinVelocity && v <= r.crit.MaxVelocity
	tc.PressureCompliant = loss <= op
	tc.MaterialCompliant = true

	if !tc.VelocityCompliant {
		recommended := r.crit.MinVelocity
		if v > r.crit.MaxVelocity {
			recommended = r.crit.MaxVelocity
		}
		r.add(model.CategoryTechnical, model.SeverityWarning, "AverageVelocity",
			fmt.Sprintf("velocity %.2f m/s outside [%.1f, %.1f] m/s", v, r.crit.MinVelocity, r.crit.MaxVelocity),
			v, recommended)
	}
	if !tc.PressureCompliant {
		r.add(model.CategoryPressure, model.SeverityCritical, "OperatingPressure",
			fmt.Sprintf("pressure loss %.3f bar exceeds operating pressure %.3f bar", loss, op),
			op, loss/r.crit.MaxPressureLossRatio)
	}
}

func checkRegime(r *report) {
	if r.in.Result.FlowRegime == model.RegimeLaminar {
		r.add(model.CategoryTechnical, model.SeverityInfo, "ReynoldsNumber",
			"laminar flow in the main line, friction coefficient may be underestimated",
			r.in.Result.ReynoldsNumber, 4000)
	}
}

// materialVelocityLimits are the maximum recommended velocities (m/s) per pipe material.
var materialVelocityLimits = map[string]float64{
	"PVC":        1.5,
	"PE":         2.0,
	"HDPE":       2.0,
	"LDPE":       1.5,
	"STEEL":      2.5,
	"GALVANIZED": 2.5,
	"ALUMINUM":   2.0,
}

func checkMaterials(r *report) {
	if r.in.Design == nil {
		return
	}
	main := r.in.Design.PipeNetwork.Main
	material := strings.ToUpper(strings.TrimSpace(main.Material))
	if material == "" {
		r.add(model.CategoryMaterial, model.SeverityInfo, "PipeNetwork.Main.Material",
			"main pipe material not specified", 0, 0)
		return
	}
	limit, ok := materialVelocityLimits[material]
	if !ok {
		r.add(model.CategoryMaterial, model.SeverityInfo, "PipeNetwork.Main.Material",
			fmt.Sprintf("no velocity limit known for material %q", main.Material), 0, 0)
		return
	}
	v := r.in.Result.MainLineVelocity
	if v > limit {
		r.out.TechnicalCompliance.MaterialCompliant = false
		r.add(model.CategoryMaterial, model.SeverityWarning, "MainLineVelocity",
			fmt.Sprintf("main line velocity %.2f m/s exceeds %.1f m/s limit for %s", v, limit, material),
			v, limit)
	}
}

func checkWaterQuality(r *report) {
	if r.in.Design == nil {
		return
	}
	wq := r.in.Design.WaterSource.WaterQuality
	filtered := r.in.Design.Components.HasFiltration
	if wq.PH != 0 && (wq.PH < 5.5 || wq.PH > 8) {
		r.add(model.CategoryWater, model.SeverityInfo, "WaterQuality.PH",
			fmt.Sprintf("pH %.1f outside 5.5-8.0", wq.PH), wq.PH, 7)
	}
	if wq.IronContent > 1.5 && !filtered {
		r.add(model.CategoryWater, model.SeverityWarning, "Components.HasFiltration",
			fmt.Sprintf("iron content %.2f mg/L without filtration", wq.IronContent), wq.IronContent, 0.2)
	}
	if wq.SuspendedSolids > 100 && !filtered {
		r.add(model.CategoryWater, model.SeverityWarning, "Components.HasFiltration",
			fmt.Sprintf("suspended solids %.0f mg/L without filtration", wq.SuspendedSolids), wq.SuspendedSolids, 50)
	}
}

func mergeCriteria(c model.ValidationCriteria) model.ValidationCriteria {
	d := model.DefaultValidationCriteria()
	if c.MaxPressureLossRatio > 0 {
		d.MaxPressureLossRatio = c.MaxPressureLossRatio
	}
	if c.MaxFlowImbalance > 0 {
		d.MaxFlowImbalance = c.MaxFlowImbalance
	}
	if c.AdequateFlowRatio > 0 {
		d.AdequateFlowRatio = c.AdequateFlowRatio
	}
	if c.MinVelocity > 0 {
		d.MinVelocity = c.MinVelocity
	}
	if c.MaxVelocity > 0 {
		d.MaxVelocity = c.MaxVelocity
	}
	if c.PassingScore > 0 {
		d.PassingScore = c.PassingScore
	}
	return d
}

func normalizeLevel(level string) string {
	switch level {
	case model.LevelBasic, model.LevelComprehensive:
		return level
	default:
		return model.LevelStandard
	}
}
