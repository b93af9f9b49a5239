package model

type IrrigationDesignParameters struct {
	TotalArea             float64          `json:"total_area"`
	NumberOfSectors       int              `json:"number_of_sectors"`
	PlantDensity          float64          `json:"plant_density"`
	DailyWaterRequirement float64          `json:"daily_water_requirement"`
	IrrigationFrequency   float64          `json:"irrigation_frequency"`
	PipeNetwork           PipeNetwork      `json:"pipe_network"`
	WaterSource           WaterSource      `json:"water_source"`
	Components            SystemComponents `json:"components"`
}

type PipeNetwork struct {
	Main      PipeSegment `json:"main"`
	Secondary PipeSegment `json:"secondary"`
	Lateral   PipeSegment `json:"lateral"`
}

// PipeSegment diameters are in mm, lengths in m and roughness in mm.
type PipeSegment struct {
	Diameter  float64 `json:"diameter"`
	Length    float64 `json:"length"`
	Material  string  `json:"material"`
	Roughness float64 `json:"roughness"`
}

type WaterSource struct {
	SourceType    string       `json:"source_type"`
	Pressure      float64      `json:"pressure"`
	AvailableFlow float64      `json:"available_flow"`
	WaterQuality  WaterQuality `json:"water_quality"`
}

type WaterQuality struct {
	PH                   float64 `json:"ph"`
	ElectricalConduct    float64 `json:"electrical_conductivity"`
	TotalDissolvedSolids float64 `json:"total_dissolved_solids"`
	SuspendedSolids      float64 `json:"suspended_solids"`
	IronContent          float64 `json:"iron_content"`
}

type SystemComponents struct {
	HasFiltration  bool             `json:"has_filtration"`
	HasAutomation  bool             `json:"has_automation"`
	HasFertigation bool             `json:"has_fertigation"`
	Filtration     *FiltrationSpec  `json:"filtration,omitempty"`
	Automation     *AutomationSpec  `json:"automation,omitempty"`
	Fertigation    *FertigationSpec `json:"fertigation,omitempty"`
}

type FiltrationSpec struct {
	FilterType   string  `json:"filter_type"`
	MeshSize     float64 `json:"mesh_size"`
	BackwashAuto bool    `json:"backwash_auto"`
	PressureDrop float64 `json:"pressure_drop"`
}

type AutomationSpec struct {
	ControllerType string `json:"controller_type"`
	SensorCount    int    `json:"sensor_count"`
	RemoteAccess   bool   `json:"remote_access"`
}

type FertigationSpec struct {
	InjectorType  string  `json:"injector_type"`
	TankCapacity  float64 `json:"tank_capacity"`
	InjectionRate float64 `json:"injection_rate"`
}

// HydraulicParameters pressures are in bar, velocities in m/s, emitter flow in L/h
// and the design flow rate in L/min.
type HydraulicParameters struct {
	OperatingPressure        float64 `json:"operating_pressure"`
	DesignVelocity           float64 `json:"design_velocity"`
	FrictionLossCoefficient  float64 `json:"friction_loss_coefficient"`
	MinorLossCoefficient     float64 `json:"minor_loss_coefficient"`
	ElevationChange          float64 `json:"elevation_change"`
	EmitterFlowRate          float64 `json:"emitter_flow_rate"`
	EmitterSpacing           float64 `json:"emitter_spacing"`
	EmitterPressure          float64 `json:"emitter_pressure"`
	TargetUniformity         float64 `json:"target_uniformity"`
	AllowedPressureVariation float64 `json:"allowed_pressure_variation"`
	DesignFlowRate           float64 `json:"design_flow_rate"`
}
