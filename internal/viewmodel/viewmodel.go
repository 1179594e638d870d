package viewmodel

// HomePage holds data for the landing page.
type HomePage struct {
	Title string
}

// LensModeOption is one choice of the corrective-lens selector.
type LensModeOption struct {
	Value    string
	Label    string
	Selected bool
}

// SimulatorPage holds data for the simulator page template.
type SimulatorPage struct {
	Title            string
	InherentErrorD   float64
	ObjectDistanceM  float64
	ObjectHeightM    float64
	LensModes        []LensModeOption
	ManualLensPowerD float64
	PrescriptionD    float64
	ShiftD           float64
	Relaxed          bool
	HasObjectImage   bool
	Focus            string
	Blur             string
	EyePowerD        float64
	CorrectivePowerD float64
	Stages           []StageRow
	CanvasWidth      int
	CanvasHeight     int
	// QueryString is appended to diagram URLs so the images match the form.
	QueryString string
}

// StageRow describes the image formed by one lens.
type StageRow struct {
	Lens     string
	PowerD   float64
	Image    string
	Position string
}

// GamePage holds data for the refraction game page.
type GamePage struct {
	Title            string
	RoundID          string
	Statement        string
	DurationSec      int
	RemainingSec     int
	StartedMs        int64
	GameDistanceM    float64
	RetinaDistanceM  float64
	EyePowerD        float64
	PupilDiameterMM  float64
	WinToleranceD    float64
	MinPatientErrorD float64
	MaxPatientErrorD float64
}
