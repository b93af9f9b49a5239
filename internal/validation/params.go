package validation

import (
	"fmt"

	"irrigation-engine/internal/model"
)

const (
	suggestedArea        = 1000.0 // m²
	suggestedRequirement = 4.0    // L/plant/day
	suggestedFrequency   = 1.0    // times/day
	suggestedDiameter    = 50.0   // mm
)

// ValidateDesignParameters is the pre-flight sanity check run before any calculation.
// Violations are returned as data with a suggested replacement value.
func ValidateDesignParameters(design model.IrrigationDesignParameters) model.ParameterValidationResult {
	var issues []model.ValidationIssue
	add := func(severity, parameter, msg string, current, suggested float64) {
		issues = append(issues, model.ValidationIssue{
			Category:         model.CategoryInput,
			Severity:         severity,
			Parameter:        parameter,
			Message:          msg,
			CurrentValue:     current,
			RecommendedValue: suggested,
		})
	}

	if !(design.TotalArea > 0) {
		add(model.SeverityCritical, "TotalArea", "total area must be greater than zero", design.TotalArea, suggestedArea)
	}
	if !(design.DailyWaterRequirement > 0) {
		add(model.SeverityCritical, "DailyWaterRequirement", "daily water requirement must be greater than zero",
			design.DailyWaterRequirement, suggestedRequirement)
	}
	if !(design.IrrigationFrequency > 0) {
		add(model.SeverityCritical, "IrrigationFrequency", "irrigation frequency must be greater than zero",
			design.IrrigationFrequency, suggestedFrequency)
	}
	if design.PlantDensity < 0 {
		add(model.SeverityCritical, "PlantDensity", "plant density cannot be negative", design.PlantDensity, 0)
	}

	segments := []struct {
		name string
		seg  model.PipeSegment
	}{
		{"PipeNetwork.Main", design.PipeNetwork.Main},
		{"PipeNetwork.Secondary", design.PipeNetwork.Secondary},
		{"PipeNetwork.Lateral", design.PipeNetwork.Lateral},
	}
	for i, s := range segments {
		switch {
		case i == 0 && !(s.seg.Diameter > 0):
			add(model.SeverityCritical, s.name+".Diameter", "main pipe diameter must be greater than zero",
				s.seg.Diameter, suggestedDiameter)
		case s.seg.Diameter < 0:
			add(model.SeverityCritical, s.name+".Diameter", "pipe diameter cannot be negative", s.seg.Diameter, 0)
		case s.seg.Diameter > 0 && s.seg.Diameter < 1:
			// Diameters are in mm; values below 1 are almost certainly metres.
			add(model.SeverityWarning, s.name+".Diameter",
				fmt.Sprintf("diameter %.3f looks like metres, expected millimetres", s.seg.Diameter),
				s.seg.Diameter, s.seg.Diameter*1000)
		}
		if s.seg.Length < 0 {
			add(model.SeverityCritical, s.name+".Length", "pipe length cannot be negative", s.seg.Length, 0)
		}
	}

	if design.NumberOfSectors < 0 {
		add(model.SeverityWarning, "NumberOfSectors", "number of sectors cannot be negative", float64(design.NumberOfSectors), 1)
	}
	if design.Components.HasFertigation && design.Components.Fertigation == nil {
		add(model.SeverityInfo, "Components.Fertigation", "fertigation enabled without a specification", 0, 0)
	}
	if design.Components.HasFiltration && design.Components.Filtration == nil {
		add(model.SeverityInfo, "Components.Filtration", "filtration enabled without a specification", 0, 0)
	}

	if issues == nil {
		issues = []model.ValidationIssue{}
	}
	return model.ParameterValidationResult{
		IsValid: !model.HasCritical(issues),
		Issues:  issues,
	}
}
