package service

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/drarshadhere/mypcos-ai/internal/domain"
)

// followUpDays is the interval between report date and suggested follow-up.
const followUpDays = 90

// diagnosisExplanation is the fixed sentence rendered under a Likely verdict.
const diagnosisExplanation = "Diagnosis based on ≥2 Rotterdam criteria: oligo/anovulation, clinical/biochemical hyperandrogenism, and polycystic ovaries."

// nutritionCaption accompanies the 7-day meal plan table.
const nutritionCaption = "Low-GI, high-fiber focus. Portions may be adjusted to meet calorie targets and insulin-resistance goals."

// AssembleOptions carries the optional report inputs and the injected clock.
// Now is the only non-pure input to assembly; it is a parameter so tests can
// fix the report and follow-up dates.
type AssembleOptions struct {
	Now          time.Time
	MealPlan     []domain.MealPlanRow
	References   []string
	ReportTitle  string
	DoctorLine   string
	ClinicName   string
	WhatsAppLink string
}

// ReportAssembler maps a patient identity, diagnostic result, and optional
// report inputs to the ordered section sequence consumed by the document
// renderer. It is total: missing optional data suppresses a section, never
// fails the assembly.
type ReportAssembler struct {
	logger *logrus.Logger
}

// NewReportAssembler creates a new report assembler.
func NewReportAssembler(logger *logrus.Logger) *ReportAssembler {
	return &ReportAssembler{logger: logger}
}

// Assemble builds the ordered report sections. Section order is fixed; each
// optional section is included only when its presence predicate holds.
func (a *ReportAssembler) Assemble(
	identity domain.PatientIdentity,
	result *domain.DiagnosticResult,
	labs []domain.LabEntry,
	treatmentNotes []string,
	opts AssembleOptions,
) []domain.ReportSection {
	sections := make([]domain.ReportSection, 0, 9)

	sections = append(sections, a.headerSection(identity, opts))
	sections = append(sections, a.diagnosisSection(result))

	if s, ok := a.evidenceSection(result); ok {
		sections = append(sections, s)
	}
	if s, ok := a.labTableSection(labs); ok {
		sections = append(sections, s)
	}
	if len(opts.MealPlan) > 0 {
		sections = append(sections, domain.ReportSection{
			Kind: domain.SectionNutritionPlan,
			Nutrition: &domain.NutritionPlanSection{
				Rows:    opts.MealPlan,
				Caption: nutritionCaption,
			},
		})
	}
	if len(treatmentNotes) > 0 {
		sections = append(sections, domain.ReportSection{
			Kind:      domain.SectionTreatment,
			Treatment: &domain.TreatmentSection{Notes: treatmentNotes},
		})
	}

	sections = append(sections, a.nextStepsSection(opts.Now))

	if len(opts.References) > 0 {
		sections = append(sections, domain.ReportSection{
			Kind: domain.SectionReferences,
			Refs: &domain.ReferencesSection{Items: opts.References},
		})
	}

	sections = append(sections, domain.ReportSection{
		Kind: domain.SectionClosing,
		Closing: &domain.ClosingSection{
			DoctorLine:   opts.DoctorLine,
			ClinicName:   opts.ClinicName,
			WhatsAppLink: opts.WhatsAppLink,
		},
	})

	a.logger.WithFields(logrus.Fields{
		"patient":  identity.Name,
		"sections": len(sections),
	}).Debug("Assembled report sections")

	return sections
}

func (a *ReportAssembler) headerSection(identity domain.PatientIdentity, opts AssembleOptions) domain.ReportSection {
	return domain.ReportSection{
		Kind: domain.SectionHeader,
		Header: &domain.HeaderSection{
			Title:      opts.ReportTitle,
			ReportDate: opts.Now.Format("January 02, 2006"),
			Name:       identity.Name,
			Age:        strconv.Itoa(identity.Age),
			BMI:        formatNumber(identity.BMI),
			BMINote:    bmiNote(identity.BMI),
		},
	}
}

func (a *ReportAssembler) diagnosisSection(result *domain.DiagnosticResult) domain.ReportSection {
	s := &domain.DiagnosisSummarySection{
		Verdict:   result.Verdict,
		Phenotype: result.Phenotype,
	}
	if result.Verdict == domain.VerdictLikely {
		s.Explanation = diagnosisExplanation
	}
	return domain.ReportSection{Kind: domain.SectionDiagnosisSummary, Diagnosis: s}
}

func (a *ReportAssembler) evidenceSection(result *domain.DiagnosticResult) (domain.ReportSection, bool) {
	if len(result.Criteria) == 0 && len(result.Alerts) == 0 {
		return domain.ReportSection{}, false
	}
	return domain.ReportSection{
		Kind: domain.SectionEvidenceSummary,
		Evidence: &domain.EvidenceSummarySection{
			Criteria: result.Criteria,
			Alerts:   result.Alerts,
		},
	}, true
}

func (a *ReportAssembler) labTableSection(labs []domain.LabEntry) (domain.ReportSection, bool) {
	if len(labs) == 0 {
		return domain.ReportSection{}, false
	}

	haveRange, haveRef := false, false
	for _, l := range labs {
		if l.Range != "" {
			haveRange = true
		}
		if l.Reference != "" {
			haveRef = true
		}
	}

	columns := []string{"Test", "Value", "Units"}
	if haveRange {
		columns = append(columns, "Normal Range")
	}
	if haveRef {
		columns = append(columns, "Evidence / Note")
	}

	rows := make([][]string, 0, len(labs))
	for _, l := range labs {
		row := []string{l.Name, FormatLabValue(l.Value), l.Unit}
		if haveRange {
			row = append(row, l.Range)
		}
		if haveRef {
			row = append(row, l.Reference)
		}
		rows = append(rows, row)
	}

	return domain.ReportSection{
		Kind: domain.SectionLabTable,
		Labs: &domain.LabTableSection{Columns: columns, Rows: rows},
	}, true
}

func (a *ReportAssembler) nextStepsSection(now time.Time) domain.ReportSection {
	followUp := now.AddDate(0, 0, followUpDays).Format("Jan 02, 2006")
	return domain.ReportSection{
		Kind: domain.SectionNextSteps,
		NextSteps: &domain.NextStepsSection{
			Points: []string{
				"Recheck key labs (glucose/insulin, lipids, vitamin D) and cycles in 3 months.",
				"Prioritize sleep (7–8h), resistance training 2–3x/week, and stress reduction.",
				fmt.Sprintf("Suggested follow-up date: %s.", followUp),
			},
		},
	}
}

// bmiNote classifies BMI against the Asian cut-offs (lower than the WHO
// global defaults; the breakpoints are fixed and must not be altered).
func bmiNote(bmi float64) string {
	var class string
	switch {
	case bmi < 18.5:
		class = "Underweight"
	case bmi < 23:
		class = "Normal (Asian cut-off)"
	case bmi < 25:
		class = "Overweight (Asian)"
	default:
		class = "Obese (Asian)"
	}
	return fmt.Sprintf("BMI classification: %s. Weight management can improve ovulation and insulin sensitivity in PCOS.", class)
}

// FormatLabValue renders a nullable lab value: "-" when absent, an integer
// when the value is whole, otherwise fixed to two decimals.
func FormatLabValue(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatNumber(*v)
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}
