package domain

// SectionKind identifies a report section variant.
type SectionKind string

const (
	SectionHeader           SectionKind = "header"
	SectionDiagnosisSummary SectionKind = "diagnosis_summary"
	SectionEvidenceSummary  SectionKind = "evidence_summary"
	SectionLabTable         SectionKind = "lab_table"
	SectionNutritionPlan    SectionKind = "nutrition_plan"
	SectionTreatment        SectionKind = "treatment_recommendations"
	SectionNextSteps        SectionKind = "next_steps"
	SectionReferences       SectionKind = "references"
	SectionClosing          SectionKind = "closing"
)

// ReportSection is a tagged variant over the section kinds. Exactly one
// payload pointer is set, matching Kind. Sections are constructed once per
// report request, consumed once by the renderer, and never mutated.
type ReportSection struct {
	Kind SectionKind `json:"kind"`

	Header    *HeaderSection           `json:"header,omitempty"`
	Diagnosis *DiagnosisSummarySection `json:"diagnosis,omitempty"`
	Evidence  *EvidenceSummarySection  `json:"evidence,omitempty"`
	Labs      *LabTableSection         `json:"labs,omitempty"`
	Nutrition *NutritionPlanSection    `json:"nutrition,omitempty"`
	Treatment *TreatmentSection        `json:"treatment,omitempty"`
	NextSteps *NextStepsSection        `json:"next_steps,omitempty"`
	Refs      *ReferencesSection       `json:"references,omitempty"`
	Closing   *ClosingSection          `json:"closing,omitempty"`
}

// HeaderSection carries the report title, report date, and patient identity.
type HeaderSection struct {
	Title      string `json:"title"`
	ReportDate string `json:"report_date"`
	Name       string `json:"name"`
	Age        string `json:"age"`
	BMI        string `json:"bmi"`
	BMINote    string `json:"bmi_note"`
}

// DiagnosisSummarySection carries the verdict, phenotype, and the fixed
// explanatory sentence rendered only for a Likely verdict.
type DiagnosisSummarySection struct {
	Verdict     Verdict   `json:"verdict"`
	Phenotype   Phenotype `json:"phenotype"`
	Explanation string    `json:"explanation,omitempty"`
}

// EvidenceSummarySection carries the criteria table rows (fixed order) and
// the alert bullet list (evaluator order).
type EvidenceSummarySection struct {
	Criteria []CriterionResult `json:"criteria,omitempty"`
	Alerts   []string          `json:"alerts,omitempty"`
}

// LabTableSection carries the lab results table with its column headers.
// Values are pre-formatted strings; the Normal Range and Evidence/Note
// columns appear only when at least one entry supplies them.
type LabTableSection struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// NutritionPlanSection carries the 7-day meal plan and its caption.
type NutritionPlanSection struct {
	Rows    []MealPlanRow `json:"rows"`
	Caption string        `json:"caption"`
}

// TreatmentSection carries the treatment recommendation bullets in input order.
type TreatmentSection struct {
	Notes []string `json:"notes"`
}

// NextStepsSection carries the three fixed follow-up bullets, the third
// interpolating the computed follow-up date.
type NextStepsSection struct {
	Points []string `json:"points"`
}

// ReferencesSection carries the numbered literature references.
type ReferencesSection struct {
	Items []string `json:"items"`
}

// ClosingSection carries the doctor and clinic identity lines plus the
// optional delivery-channel link. How the link is rendered is up to the
// document renderer.
type ClosingSection struct {
	DoctorLine   string `json:"doctor_line"`
	ClinicName   string `json:"clinic_name"`
	WhatsAppLink string `json:"whatsapp_link,omitempty"`
}
