package service

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drarshadhere/mypcos-ai/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestRotterdamEngine_Criteria(t *testing.T) {
	engine := NewRotterdamEngine(testLogger())

	tests := []struct {
		name      string
		input     domain.PatientInput
		wantOligo bool
		wantHyper bool
		wantPCO   bool
	}{
		{
			name:      "irregular cycles flag alone meets oligo",
			input:     domain.PatientInput{IrregularCycles: true, CyclesPerYear: 12},
			wantOligo: true,
		},
		{
			name:      "fewer than nine cycles per year meets oligo",
			input:     domain.PatientInput{CyclesPerYear: 8},
			wantOligo: true,
		},
		{
			name:  "nine cycles per year does not meet oligo",
			input: domain.PatientInput{CyclesPerYear: 9},
		},
		{
			name:      "acne alone meets hyperandrogenism",
			input:     domain.PatientInput{CyclesPerYear: 12, Acne: true},
			wantHyper: true,
		},
		{
			name:      "hirsutism alone meets hyperandrogenism",
			input:     domain.PatientInput{CyclesPerYear: 12, Hirsutism: true},
			wantHyper: true,
		},
		{
			name:      "alopecia alone meets hyperandrogenism",
			input:     domain.PatientInput{CyclesPerYear: 12, Alopecia: true},
			wantHyper: true,
		},
		{
			name:      "testosterone above 50 meets hyperandrogenism",
			input:     domain.PatientInput{CyclesPerYear: 12, TotalTestosterone: 50.1},
			wantHyper: true,
		},
		{
			name:  "testosterone exactly 50 does not meet hyperandrogenism",
			input: domain.PatientInput{CyclesPerYear: 12, TotalTestosterone: 50},
		},
		{
			name:      "DHEAS above 350 meets hyperandrogenism",
			input:     domain.PatientInput{CyclesPerYear: 12, DHEAS: 351},
			wantHyper: true,
		},
		{
			name:    "ultrasound yes meets polycystic ovaries",
			input:   domain.PatientInput{CyclesPerYear: 12, Ultrasound: domain.UltrasoundYes},
			wantPCO: true,
		},
		{
			name:  "ultrasound not done counts as not seen",
			input: domain.PatientInput{CyclesPerYear: 12, Ultrasound: domain.UltrasoundNotDone},
		},
		{
			name:  "ultrasound no does not meet polycystic ovaries",
			input: domain.PatientInput{CyclesPerYear: 12, Ultrasound: domain.UltrasoundNo},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Evaluate(&tt.input)
			require.Len(t, result.Criteria, 3)

			assert.Equal(t, tt.wantOligo, result.CriterionMet(domain.CriterionOligoAnovulation))
			assert.Equal(t, tt.wantHyper, result.CriterionMet(domain.CriterionHyperandrogenism))
			assert.Equal(t, tt.wantPCO, result.CriterionMet(domain.CriterionPolycysticOvaries))
		})
	}
}

func TestRotterdamEngine_VerdictAndPhenotype(t *testing.T) {
	engine := NewRotterdamEngine(testLogger())

	tests := []struct {
		name          string
		input         domain.PatientInput
		wantVerdict   domain.Verdict
		wantPhenotype domain.Phenotype
		wantMet       int
	}{
		{
			name: "all three criteria gives phenotype A",
			input: domain.PatientInput{
				IrregularCycles: true,
				Hirsutism:       true,
				Ultrasound:      domain.UltrasoundYes,
				CyclesPerYear:   12,
			},
			wantVerdict:   domain.VerdictLikely,
			wantPhenotype: domain.PhenotypeA,
			wantMet:       3,
		},
		{
			name: "oligo plus hyperandrogenism gives phenotype B",
			input: domain.PatientInput{
				IrregularCycles: true,
				Acne:            true,
				Ultrasound:      domain.UltrasoundNo,
				CyclesPerYear:   12,
			},
			wantVerdict:   domain.VerdictLikely,
			wantPhenotype: domain.PhenotypeB,
			wantMet:       2,
		},
		{
			name: "hyperandrogenism plus polycystic ovaries gives phenotype C",
			input: domain.PatientInput{
				Acne:          true,
				Ultrasound:    domain.UltrasoundYes,
				CyclesPerYear: 12,
			},
			wantVerdict:   domain.VerdictLikely,
			wantPhenotype: domain.PhenotypeC,
			wantMet:       2,
		},
		{
			name: "oligo plus polycystic ovaries gives phenotype D",
			input: domain.PatientInput{
				CyclesPerYear: 6,
				Ultrasound:    domain.UltrasoundYes,
			},
			wantVerdict:   domain.VerdictLikely,
			wantPhenotype: domain.PhenotypeD,
			wantMet:       2,
		},
		{
			name: "single criterion is unlikely and not applicable",
			input: domain.PatientInput{
				IrregularCycles: true,
				CyclesPerYear:   12,
			},
			wantVerdict:   domain.VerdictUnlikely,
			wantPhenotype: domain.PhenotypeNotApplicable,
			wantMet:       1,
		},
		{
			name: "no criteria is unlikely and not applicable",
			input: domain.PatientInput{
				CyclesPerYear: 12,
				Ultrasound:    domain.UltrasoundNotDone,
			},
			wantVerdict:   domain.VerdictUnlikely,
			wantPhenotype: domain.PhenotypeNotApplicable,
			wantMet:       0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Evaluate(&tt.input)

			assert.Equal(t, tt.wantMet, result.CriteriaMet)
			assert.Equal(t, tt.wantVerdict, result.Verdict)
			assert.Equal(t, tt.wantPhenotype, result.Phenotype)
		})
	}
}

func TestRotterdamEngine_CriteriaOrder(t *testing.T) {
	engine := NewRotterdamEngine(testLogger())
	result := engine.Evaluate(&domain.PatientInput{CyclesPerYear: 12})

	require.Len(t, result.Criteria, 3)
	assert.Equal(t, domain.CriterionOligoAnovulation, result.Criteria[0].Name)
	assert.Equal(t, domain.CriterionHyperandrogenism, result.Criteria[1].Name)
	assert.Equal(t, domain.CriterionPolycysticOvaries, result.Criteria[2].Name)
}

func TestHOMAIR(t *testing.T) {
	tests := []struct {
		name    string
		glucose float64
		insulin float64
		want    float64
	}{
		{name: "typical values round to two decimals", glucose: 96, insulin: 16.3, want: 3.86},
		{name: "zero insulin yields zero", glucose: 96, insulin: 0, want: 0},
		{name: "zero glucose with insulin yields zero product", glucose: 0, insulin: 16.3, want: 0},
		{name: "threshold boundary", glucose: 101.25, insulin: 10, want: 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HOMAIR(tt.glucose, tt.insulin))
		})
	}
}

func TestRotterdamEngine_Alerts(t *testing.T) {
	engine := NewRotterdamEngine(testLogger())

	t.Run("no alerts for normal labs", func(t *testing.T) {
		result := engine.Evaluate(&domain.PatientInput{
			CyclesPerYear:  12,
			FastingGlucose: 90,
			FastingInsulin: 8,
			TSH:            2.0,
		})
		assert.Empty(t, result.Alerts)
	})

	t.Run("homa-ir above threshold raises insulin resistance alert", func(t *testing.T) {
		result := engine.Evaluate(&domain.PatientInput{
			CyclesPerYear:  12,
			FastingGlucose: 96,
			FastingInsulin: 16.3,
		})
		assert.Contains(t, result.Alerts, AlertInsulinResistance)
	})

	t.Run("elevated tsh raises thyroid alert", func(t *testing.T) {
		result := engine.Evaluate(&domain.PatientInput{CyclesPerYear: 12, TSH: 4.1})
		assert.Contains(t, result.Alerts, AlertElevatedTSH)
	})

	t.Run("tsh exactly 4.0 raises no alert", func(t *testing.T) {
		result := engine.Evaluate(&domain.PatientInput{CyclesPerYear: 12, TSH: 4.0})
		assert.NotContains(t, result.Alerts, AlertElevatedTSH)
	})

	t.Run("testosterone above 70 raises biochemical alert", func(t *testing.T) {
		result := engine.Evaluate(&domain.PatientInput{CyclesPerYear: 12, TotalTestosterone: 71})
		assert.Contains(t, result.Alerts, AlertBiochemicalHA)
	})

	t.Run("dheas above 350 raises biochemical alert", func(t *testing.T) {
		result := engine.Evaluate(&domain.PatientInput{CyclesPerYear: 12, DHEAS: 360})
		assert.Contains(t, result.Alerts, AlertBiochemicalHA)
	})

	t.Run("alerts appear in fixed order", func(t *testing.T) {
		result := engine.Evaluate(&domain.PatientInput{
			CyclesPerYear:     12,
			FastingGlucose:    110,
			FastingInsulin:    20,
			TSH:               5.2,
			TotalTestosterone: 80,
		})
		assert.Equal(t, []string{AlertInsulinResistance, AlertElevatedTSH, AlertBiochemicalHA}, result.Alerts)
	})
}
