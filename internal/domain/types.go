// Package domain contains core business entities and types for PCOS intake
// screening following the Rotterdam criteria (ESHRE/ASRM 2003 consensus).
//
// Reference: Rotterdam ESHRE/ASRM-Sponsored PCOS Consensus Workshop Group (2004).
// Revised 2003 consensus on diagnostic criteria and long-term health risks
// related to polycystic ovary syndrome. Fertil Steril. 81(1):19-25.
package domain

import (
	"errors"
)

// Verdict represents the outcome of Rotterdam criteria evaluation.
// A patient meets the criteria when at least two of the three criteria hold.
type Verdict string

const (
	VerdictLikely   Verdict = "PCOS Likely"
	VerdictUnlikely Verdict = "PCOS Unlikely"
)

// Phenotype represents the PCOS sub-classification derived from which
// combination of Rotterdam criteria is satisfied.
type Phenotype string

const (
	PhenotypeA Phenotype = "Phenotype A"
	PhenotypeB Phenotype = "Phenotype B"
	PhenotypeC Phenotype = "Phenotype C"
	PhenotypeD Phenotype = "Phenotype D"

	// PhenotypeUnclassified is a defensive branch: with exactly three criteria
	// and a two-of-three rule every qualifying combination maps to A-D, so this
	// value is unreachable unless criteria are added later.
	PhenotypeUnclassified Phenotype = "Unclassified"

	// PhenotypeNotApplicable is assigned whenever the verdict is Unlikely.
	PhenotypeNotApplicable Phenotype = "Not applicable"
)

// UltrasoundFinding is the tri-state answer to "polycystic ovaries seen on
// ultrasound". UltrasoundNotDone is treated identically to UltrasoundNo during
// criteria evaluation.
type UltrasoundFinding string

const (
	UltrasoundYes     UltrasoundFinding = "Yes"
	UltrasoundNo      UltrasoundFinding = "No"
	UltrasoundNotDone UltrasoundFinding = "Not Done"
)

// Criterion labels, fixed by the evidence table ordering in the report.
const (
	CriterionOligoAnovulation  = "Oligo/anovulation"
	CriterionHyperandrogenism  = "Hyperandrogenism"
	CriterionPolycysticOvaries = "Polycystic ovaries"
)

// Validation errors for clinical data integrity
var (
	ErrNotFound         = errors.New("not found")
	ErrEmptyPatientName = errors.New("patient name is required")
	ErrInvalidVerdict   = errors.New("invalid diagnostic verdict")
	ErrInvalidPhenotype = errors.New("invalid PCOS phenotype")
)

// IsValid validates the verdict value. Only valid verdicts may enter a
// persisted report record.
func (v Verdict) IsValid() bool {
	switch v {
	case VerdictLikely, VerdictUnlikely:
		return true
	default:
		return false
	}
}

// String returns the string representation of the verdict.
func (v Verdict) String() string {
	return string(v)
}

// IsValid validates the phenotype value.
func (p Phenotype) IsValid() bool {
	switch p {
	case PhenotypeA, PhenotypeB, PhenotypeC, PhenotypeD,
		PhenotypeUnclassified, PhenotypeNotApplicable:
		return true
	default:
		return false
	}
}

// String returns the string representation of the phenotype.
func (p Phenotype) String() string {
	return string(p)
}

// IsValid validates the ultrasound finding.
func (u UltrasoundFinding) IsValid() bool {
	switch u {
	case UltrasoundYes, UltrasoundNo, UltrasoundNotDone:
		return true
	default:
		return false
	}
}

// String returns the string representation of the ultrasound finding.
func (u UltrasoundFinding) String() string {
	return string(u)
}
