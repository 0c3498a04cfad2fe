package domain

import (
	"fmt"
	"math"
	"time"
)

// PatientInput is the flat intake record supplied by the form. Numeric fields
// default to zero when not measured; zero is treated as absent.
type PatientInput struct {
	Name   string  `json:"name"`
	Age    int     `json:"age"`
	Weight float64 `json:"weight_kg"`
	Height float64 `json:"height_cm"`

	// Menstrual history
	IrregularCycles   bool `json:"irregular_cycles"`
	CyclesPerYear     int  `json:"cycles_per_year"`
	ProlongedBleeding bool `json:"prolonged_bleeding"`

	// Clinical signs of hyperandrogenism
	Acne      bool `json:"acne"`
	Hirsutism bool `json:"hirsutism"`
	Alopecia  bool `json:"alopecia"`

	Ultrasound UltrasoundFinding `json:"ultrasound"`

	// Lab panel. Units are fixed per field and carried into the report.
	TotalTestosterone float64 `json:"total_testosterone"` // ng/dL
	DHEAS             float64 `json:"dheas"`              // µg/dL
	FastingGlucose    float64 `json:"fasting_glucose"`    // mg/dL
	FastingInsulin    float64 `json:"fasting_insulin"`    // µIU/mL
	LH                float64 `json:"lh"`                 // mIU/mL
	FSH               float64 `json:"fsh"`                // mIU/mL
	SHBG              float64 `json:"shbg"`               // nmol/L
	TSH               float64 `json:"tsh"`                // µIU/mL
	SeventeenOHP      float64 `json:"seventeen_ohp"`      // ng/dL
	VitaminD          float64 `json:"vitamin_d"`          // ng/mL
	VitaminB12        float64 `json:"vitamin_b12"`        // pg/mL
	Cholesterol       float64 `json:"cholesterol"`        // mg/dL
	LDL               float64 `json:"ldl"`                // mg/dL
	HDL               float64 `json:"hdl"`                // mg/dL
	Triglycerides     float64 `json:"triglycerides"`      // mg/dL
}

// BMI derives body mass index from weight (kg) and height (cm), rounded to one
// decimal. BMI is never supplied directly; it is 0 when height is missing.
func (p *PatientInput) BMI() float64 {
	if p.Height == 0 {
		return 0
	}
	m := p.Height / 100
	return math.Round(p.Weight/(m*m)*10) / 10
}

// CriterionResult is a single Rotterdam criterion with its evaluation outcome.
type CriterionResult struct {
	Name string `json:"name"`
	Met  bool   `json:"met"`
}

// DiagnosticResult is the output of the Rotterdam evaluator: the three
// criteria in fixed order, the derived verdict and phenotype, the HOMA-IR
// index, and any threshold alerts.
type DiagnosticResult struct {
	Criteria    []CriterionResult `json:"criteria"`
	CriteriaMet int               `json:"criteria_met"`
	Verdict     Verdict           `json:"verdict"`
	Phenotype   Phenotype         `json:"phenotype"`
	HOMAIR      float64           `json:"homa_ir"`
	Alerts      []string          `json:"alerts,omitempty"`
}

// CriterionMet reports whether the named criterion was met. Unknown names
// report false.
func (r *DiagnosticResult) CriterionMet(name string) bool {
	for _, c := range r.Criteria {
		if c.Name == name {
			return c.Met
		}
	}
	return false
}

// LabEntry is one row of the lab results table. Value is nil when the test
// was not performed; Range and Reference are optional columns.
type LabEntry struct {
	Name      string   `json:"name"`
	Value     *float64 `json:"value,omitempty"`
	Unit      string   `json:"unit"`
	Range     string   `json:"range,omitempty"`
	Reference string   `json:"reference,omitempty"`
}

// MealPlanRow is one day of the optional 7-day nutrition plan.
type MealPlanRow struct {
	Day       string `json:"day"`
	Breakfast string `json:"breakfast"`
	Lunch     string `json:"lunch"`
	Snack     string `json:"snack"`
	Dinner    string `json:"dinner"`
}

// PatientIdentity carries the identity fields the report header renders.
// An empty name is valid for report generation but not for progress writes.
type PatientIdentity struct {
	Name string  `json:"name"`
	Age  int     `json:"age"`
	BMI  float64 `json:"bmi"`
}

// ProgressRecord is one progress-tracker row, keyed by (Name, Date).
// A later write for the same key replaces the earlier row.
type ProgressRecord struct {
	Date        time.Time `json:"date"`
	Name        string    `json:"name"`
	Weight      float64   `json:"weight"`
	BMI         float64   `json:"bmi"`
	CycleLength int       `json:"cycle_length"`
	HOMAIR      float64   `json:"homa_ir"`
	TSH         float64   `json:"tsh"`
}

// Validate rejects records that would corrupt the (Name, Date) dedup key.
func (r *ProgressRecord) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("progress record validation: %w", ErrEmptyPatientName)
	}
	if r.Date.IsZero() {
		return fmt.Errorf("progress record validation: entry date is required")
	}
	return nil
}

// ReportRecord is a persisted report-generation request with its evaluated
// result and assembled sections.
type ReportRecord struct {
	ID          string           `json:"id"`
	PatientName string           `json:"patient_name"`
	Verdict     Verdict          `json:"verdict"`
	Phenotype   Phenotype        `json:"phenotype"`
	CriteriaMet int              `json:"criteria_met"`
	Result      DiagnosticResult `json:"result"`
	Sections    []ReportSection  `json:"sections"`
	CreatedAt   time.Time        `json:"created_at"`
}
