package service

import (
	"github.com/drarshadhere/mypcos-ai/internal/domain"
)

// DefaultTreatmentNotes returns the standard treatment recommendations
// attached to every generated report unless the caller supplies its own.
func DefaultTreatmentNotes() []string {
	return []string{
		"Target 5–10% weight loss",
		"Consider Myo-Inositol or Metformin",
		"Optimize sleep, stress, and exercise routine",
		"Recheck labs in 3–6 months",
		"Supplement Vitamin D and B12 if low",
	}
}

// DefaultLabPanel builds the fixed 16-row lab panel from the intake record,
// including the derived HOMA-IR. Panel order is fixed by the report layout.
func DefaultLabPanel(input *domain.PatientInput, homaIR float64) []domain.LabEntry {
	v := func(f float64) *float64 { return &f }
	return []domain.LabEntry{
		{Name: "Total Testosterone", Value: v(input.TotalTestosterone), Unit: "ng/dL"},
		{Name: "DHEAS", Value: v(input.DHEAS), Unit: "µg/dL"},
		{Name: "Fasting Glucose", Value: v(input.FastingGlucose), Unit: "mg/dL"},
		{Name: "Fasting Insulin", Value: v(input.FastingInsulin), Unit: "µIU/mL"},
		{Name: "HOMA-IR", Value: v(homaIR), Unit: ""},
		{Name: "LH", Value: v(input.LH), Unit: "mIU/mL"},
		{Name: "FSH", Value: v(input.FSH), Unit: "mIU/mL"},
		{Name: "SHBG", Value: v(input.SHBG), Unit: "nmol/L"},
		{Name: "TSH", Value: v(input.TSH), Unit: "µIU/mL"},
		{Name: "17-OHP", Value: v(input.SeventeenOHP), Unit: "ng/dL"},
		{Name: "Vitamin D", Value: v(input.VitaminD), Unit: "ng/mL"},
		{Name: "Vitamin B12", Value: v(input.VitaminB12), Unit: "pg/mL"},
		{Name: "Total Cholesterol", Value: v(input.Cholesterol), Unit: "mg/dL"},
		{Name: "LDL", Value: v(input.LDL), Unit: "mg/dL"},
		{Name: "HDL", Value: v(input.HDL), Unit: "mg/dL"},
		{Name: "Triglycerides", Value: v(input.Triglycerides), Unit: "mg/dL"},
	}
}
