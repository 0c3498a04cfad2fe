package service

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/drarshadhere/mypcos-ai/internal/domain"
)

// Rotterdam thresholds, fixed by the current release of the intake form.
const (
	oligoCycleThreshold     = 9   // cycles per year below this indicate oligo/anovulation
	testosteroneCriterionNg = 50  // ng/dL, hyperandrogenism criterion
	dheasThresholdUg        = 350 // µg/dL, shared by criterion and alert
	homaIRDivisor           = 405 // HOMA-IR = glucose * insulin / 405
	homaIRAlertThreshold    = 2.5 // insulin resistance alert
	tshAlertThreshold       = 4.0 // µIU/mL, elevated TSH alert
	testosteroneAlertNg     = 70  // ng/dL, biochemical hyperandrogenism alert
)

// Alert messages, in the fixed order they are appended.
const (
	AlertInsulinResistance = "Insulin resistance (HOMA-IR > 2.5)"
	AlertElevatedTSH       = "Elevated TSH — consider thyroid evaluation"
	AlertBiochemicalHA     = "Possible biochemical hyperandrogenism — consider repeat/confirmatory testing"
)

// RotterdamEngine evaluates the three Rotterdam criteria against a patient
// intake record. Evaluation is deterministic and side-effect free: the engine
// may be shared across concurrent requests.
type RotterdamEngine struct {
	logger   *logrus.Logger
	criteria []rotterdamCriterion
}

// rotterdamCriterion is an individually evaluated Rotterdam criterion.
type rotterdamCriterion struct {
	Name      string
	Evaluator func(input *domain.PatientInput) bool
}

// NewRotterdamEngine creates a new Rotterdam criteria engine.
func NewRotterdamEngine(logger *logrus.Logger) *RotterdamEngine {
	e := &RotterdamEngine{logger: logger}

	// Ordering matters: the evidence table renders criteria in this order.
	e.criteria = []rotterdamCriterion{
		{Name: domain.CriterionOligoAnovulation, Evaluator: evaluateOligoAnovulation},
		{Name: domain.CriterionHyperandrogenism, Evaluator: evaluateHyperandrogenism},
		{Name: domain.CriterionPolycysticOvaries, Evaluator: evaluatePolycysticOvaries},
	}

	return e
}

// Evaluate applies the Rotterdam criteria to the intake record and derives
// the verdict, phenotype, HOMA-IR index, and threshold alerts. It is total:
// every well-typed input produces a complete result.
func (e *RotterdamEngine) Evaluate(input *domain.PatientInput) *domain.DiagnosticResult {
	result := &domain.DiagnosticResult{
		Criteria: make([]domain.CriterionResult, 0, len(e.criteria)),
		HOMAIR:   HOMAIR(input.FastingGlucose, input.FastingInsulin),
	}

	for _, c := range e.criteria {
		met := c.Evaluator(input)
		result.Criteria = append(result.Criteria, domain.CriterionResult{Name: c.Name, Met: met})
		if met {
			result.CriteriaMet++
		}
	}

	if result.CriteriaMet >= 2 {
		result.Verdict = domain.VerdictLikely
		result.Phenotype = e.classifyPhenotype(result)
	} else {
		result.Verdict = domain.VerdictUnlikely
		result.Phenotype = domain.PhenotypeNotApplicable
	}

	result.Alerts = e.evaluateAlerts(input, result.HOMAIR)

	e.logger.WithFields(logrus.Fields{
		"criteria_met": result.CriteriaMet,
		"verdict":      result.Verdict.String(),
		"phenotype":    result.Phenotype.String(),
		"homa_ir":      result.HOMAIR,
		"alerts":       len(result.Alerts),
	}).Debug("Completed Rotterdam criteria evaluation")

	return result
}

// classifyPhenotype assigns the PCOS phenotype for a Likely verdict. The
// branches are evaluated in fixed priority order; the first match wins.
func (e *RotterdamEngine) classifyPhenotype(result *domain.DiagnosticResult) domain.Phenotype {
	oligo := result.CriterionMet(domain.CriterionOligoAnovulation)
	hyper := result.CriterionMet(domain.CriterionHyperandrogenism)
	pco := result.CriterionMet(domain.CriterionPolycysticOvaries)

	switch {
	case oligo && hyper && pco:
		return domain.PhenotypeA
	case oligo && hyper:
		return domain.PhenotypeB
	case hyper && pco:
		return domain.PhenotypeC
	case oligo && pco:
		return domain.PhenotypeD
	default:
		// Unreachable with three criteria and a two-of-three rule; kept as a
		// defensive branch should criteria ever be extended.
		return domain.PhenotypeUnclassified
	}
}

// evaluateAlerts runs the threshold checks that are independent of the
// Rotterdam criteria themselves. Alerts are appended in fixed order.
func (e *RotterdamEngine) evaluateAlerts(input *domain.PatientInput, homaIR float64) []string {
	var alerts []string

	if homaIR > homaIRAlertThreshold {
		alerts = append(alerts, AlertInsulinResistance)
	}
	if input.TSH > tshAlertThreshold {
		alerts = append(alerts, AlertElevatedTSH)
	}
	if input.TotalTestosterone > testosteroneAlertNg || input.DHEAS > dheasThresholdUg {
		alerts = append(alerts, AlertBiochemicalHA)
	}

	return alerts
}

// HOMAIR computes the Homeostatic Model Assessment of Insulin Resistance,
// rounded to two decimals. It is defined as 0 when fasting insulin is absent,
// so a zero input never yields a misleadingly precise non-zero index.
func HOMAIR(fastingGlucose, fastingInsulin float64) float64 {
	if fastingInsulin == 0 {
		return 0
	}
	return math.Round(fastingGlucose*fastingInsulin/homaIRDivisor*100) / 100
}

func evaluateOligoAnovulation(input *domain.PatientInput) bool {
	return input.IrregularCycles || input.CyclesPerYear < oligoCycleThreshold
}

func evaluateHyperandrogenism(input *domain.PatientInput) bool {
	return input.Acne || input.Hirsutism || input.Alopecia ||
		input.TotalTestosterone > testosteroneCriterionNg ||
		input.DHEAS > dheasThresholdUg
}

func evaluatePolycysticOvaries(input *domain.PatientInput) bool {
	// "Not Done" counts as not seen.
	return input.Ultrasound == domain.UltrasoundYes
}
