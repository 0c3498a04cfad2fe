package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/drarshadhere/mypcos-ai/internal/domain"
)

// DocumentRenderer turns an ordered section sequence into a rendered document.
type DocumentRenderer interface {
	Render(sections []domain.ReportSection) ([]byte, error)
}

// ProgressStore persists progress-tracker rows keyed by (name, date).
type ProgressStore interface {
	Append(ctx context.Context, record *domain.ProgressRecord) error
}

// ReportRepository persists generated report records.
type ReportRepository interface {
	Create(ctx context.Context, record *domain.ReportRecord) error
}

// ReportCache caches rendered documents by content key.
type ReportCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, document []byte)
}

// ReportMailer delivers a rendered report to a patient mailbox.
type ReportMailer interface {
	SendReport(ctx context.Context, to, patientName string, document []byte, filename string) error
}

// IntakeOptions carries the clinic identity and report defaults wired from
// configuration.
type IntakeOptions struct {
	ReportTitle  string
	DoctorLine   string
	ClinicName   string
	WhatsAppLink string
}

// IntakeService runs the complete intake workflow: criteria evaluation,
// section assembly, document rendering, progress logging, persistence, and
// optional delivery. The progress store, report repository, cache, and mailer
// are optional collaborators; a nil collaborator disables that step.
type IntakeService struct {
	logger    *logrus.Logger
	engine    *RotterdamEngine
	assembler *ReportAssembler
	renderer  DocumentRenderer
	progress  ProgressStore
	reports   ReportRepository
	cache     ReportCache
	mailer    ReportMailer
	opts      IntakeOptions

	now func() time.Time
}

// NewIntakeService creates a new intake service.
func NewIntakeService(
	logger *logrus.Logger,
	renderer DocumentRenderer,
	progress ProgressStore,
	reports ReportRepository,
	cache ReportCache,
	mailer ReportMailer,
	opts IntakeOptions,
) *IntakeService {
	return &IntakeService{
		logger:    logger,
		engine:    NewRotterdamEngine(logger),
		assembler: NewReportAssembler(logger),
		renderer:  renderer,
		progress:  progress,
		reports:   reports,
		cache:     cache,
		mailer:    mailer,
		opts:      opts,
		now:       time.Now,
	}
}

// GenerateReportParams is an intake request.
type GenerateReportParams struct {
	Input domain.PatientInput `json:"input"`

	// Optional report inputs; defaults are derived from the intake record.
	Labs           []domain.LabEntry    `json:"labs,omitempty"`
	TreatmentNotes []string             `json:"treatment_notes,omitempty"`
	MealPlan       []domain.MealPlanRow `json:"meal_plan,omitempty"`
	References     []string             `json:"references,omitempty"`

	// Delivery
	Email            string `json:"email,omitempty"`
	DeliverByEmail   bool   `json:"deliver_by_email,omitempty"`
	PaymentConfirmed bool   `json:"payment_confirmed,omitempty"`
}

// GenerateReportResult is the outcome of an intake request.
type GenerateReportResult struct {
	ReportID       string                   `json:"report_id,omitempty"`
	Result         *domain.DiagnosticResult `json:"result"`
	Sections       []domain.ReportSection   `json:"sections,omitempty"`
	Document       []byte                   `json:"-"`
	FromCache      bool                     `json:"from_cache,omitempty"`
	ProgressSaved  bool                     `json:"progress_saved"`
	Delivered      bool                     `json:"delivered"`
	ProcessingTime time.Duration            `json:"processing_time"`
}

// GenerateReport performs the complete intake workflow.
//
// Evaluation and assembly always run; rendering and delivery are gated on
// payment confirmation. The progress write is best-effort and independent of
// report generation: its failure is logged, never fatal.
func (s *IntakeService) GenerateReport(ctx context.Context, params *GenerateReportParams) (*GenerateReportResult, error) {
	startTime := s.now()

	s.logger.WithFields(logrus.Fields{
		"patient":           params.Input.Name,
		"payment_confirmed": params.PaymentConfirmed,
		"deliver":           params.DeliverByEmail,
	}).Info("Starting intake report generation")

	// Step 1: Rotterdam criteria evaluation.
	result := s.engine.Evaluate(&params.Input)

	// Step 2: assemble the report sections from the result plus defaults.
	identity := domain.PatientIdentity{
		Name: params.Input.Name,
		Age:  params.Input.Age,
		BMI:  params.Input.BMI(),
	}

	labs := params.Labs
	if labs == nil {
		labs = DefaultLabPanel(&params.Input, result.HOMAIR)
	}
	notes := params.TreatmentNotes
	if notes == nil {
		notes = DefaultTreatmentNotes()
	}

	sections := s.assembler.Assemble(identity, result, labs, notes, AssembleOptions{
		Now:          startTime,
		MealPlan:     params.MealPlan,
		References:   params.References,
		ReportTitle:  s.opts.ReportTitle,
		DoctorLine:   s.opts.DoctorLine,
		ClinicName:   s.opts.ClinicName,
		WhatsAppLink: s.opts.WhatsAppLink,
	})

	out := &GenerateReportResult{
		Result:   result,
		Sections: sections,
	}

	// Step 3: progress write, keyed by (name, date). Skipped for anonymous
	// reports: an empty name would corrupt the dedup key.
	out.ProgressSaved = s.appendProgress(ctx, &params.Input, result)

	// Step 4: render (payment-gated), with content-hash cache lookup.
	if params.PaymentConfirmed {
		document, fromCache, err := s.renderDocument(ctx, sections)
		if err != nil {
			return nil, fmt.Errorf("rendering report document: %w", err)
		}
		out.Document = document
		out.FromCache = fromCache

		// Step 5: persist the report record for the audit trail.
		out.ReportID = s.persistReport(ctx, identity.Name, result, sections)

		// Step 6: optional email delivery.
		if params.DeliverByEmail && params.Email != "" && s.mailer != nil {
			filename := reportFilename(identity.Name)
			if err := s.mailer.SendReport(ctx, params.Email, identity.Name, document, filename); err != nil {
				s.logger.WithError(err).Warn("Failed to deliver report by email")
			} else {
				out.Delivered = true
			}
		}
	}

	out.ProcessingTime = s.now().Sub(startTime)

	s.logger.WithFields(logrus.Fields{
		"report_id":       out.ReportID,
		"verdict":         result.Verdict.String(),
		"phenotype":       result.Phenotype.String(),
		"sections":        len(sections),
		"progress_saved":  out.ProgressSaved,
		"delivered":       out.Delivered,
		"processing_time": out.ProcessingTime,
	}).Info("Intake report generation completed")

	return out, nil
}

// appendProgress writes the progress-tracker row. Returns true only when a
// row was persisted.
func (s *IntakeService) appendProgress(ctx context.Context, input *domain.PatientInput, result *domain.DiagnosticResult) bool {
	if s.progress == nil {
		return false
	}
	if input.Name == "" {
		s.logger.Debug("Skipping progress write for anonymous report")
		return false
	}

	record := &domain.ProgressRecord{
		Date:        s.now().Truncate(24 * time.Hour),
		Name:        input.Name,
		Weight:      input.Weight,
		BMI:         input.BMI(),
		CycleLength: input.CyclesPerYear,
		HOMAIR:      result.HOMAIR,
		TSH:         input.TSH,
	}

	if err := s.progress.Append(ctx, record); err != nil {
		s.logger.WithError(err).WithField("patient", input.Name).Warn("Failed to append progress record")
		return false
	}
	return true
}

// renderDocument renders the section sequence, consulting the cache first.
func (s *IntakeService) renderDocument(ctx context.Context, sections []domain.ReportSection) ([]byte, bool, error) {
	key := sectionsKey(sections)

	if s.cache != nil && key != "" {
		if document, ok := s.cache.Get(ctx, key); ok {
			s.logger.WithField("key", key).Debug("Report cache hit")
			return document, true, nil
		}
	}

	document, err := s.renderer.Render(sections)
	if err != nil {
		return nil, false, err
	}

	if s.cache != nil && key != "" {
		s.cache.Set(ctx, key, document)
	}
	return document, false, nil
}

// persistReport stores the report record; failures are logged, not fatal.
func (s *IntakeService) persistReport(ctx context.Context, patientName string, result *domain.DiagnosticResult, sections []domain.ReportSection) string {
	if s.reports == nil {
		return ""
	}

	record := &domain.ReportRecord{
		ID:          uuid.NewString(),
		PatientName: patientName,
		Verdict:     result.Verdict,
		Phenotype:   result.Phenotype,
		CriteriaMet: result.CriteriaMet,
		Result:      *result,
		Sections:    sections,
		CreatedAt:   s.now(),
	}

	if err := s.reports.Create(ctx, record); err != nil {
		s.logger.WithError(err).Warn("Failed to persist report record")
		return ""
	}
	return record.ID
}

// sectionsKey derives the cache key from the assembled content. Two requests
// producing identical sections share one rendered document.
func sectionsKey(sections []domain.ReportSection) string {
	data, err := json.Marshal(sections)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return "report:" + hex.EncodeToString(sum[:])
}

// reportFilename builds the attachment filename for a delivered report.
func reportFilename(patientName string) string {
	name := strings.ReplaceAll(patientName, " ", "_")
	if name == "" {
		name = "patient"
	}
	return name + "_pcos_report.pdf"
}
