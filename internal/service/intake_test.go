package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drarshadhere/mypcos-ai/internal/domain"
)

type fakeRenderer struct {
	calls int
	fail  bool
}

func (f *fakeRenderer) Render(sections []domain.ReportSection) ([]byte, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("render failed")
	}
	return []byte("%PDF-1.4 fake"), nil
}

type fakeProgressStore struct {
	records []*domain.ProgressRecord
	fail    bool
}

func (f *fakeProgressStore) Append(ctx context.Context, record *domain.ProgressRecord) error {
	if f.fail {
		return errors.New("store unavailable")
	}
	f.records = append(f.records, record)
	return nil
}

type fakeReportRepo struct {
	records []*domain.ReportRecord
	fail    bool
}

func (f *fakeReportRepo) Create(ctx context.Context, record *domain.ReportRecord) error {
	if f.fail {
		return errors.New("repo unavailable")
	}
	f.records = append(f.records, record)
	return nil
}

type fakeCache struct {
	store map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{store: map[string][]byte{}} }

func (f *fakeCache) Get(ctx context.Context, key string) ([]byte, bool) {
	doc, ok := f.store[key]
	return doc, ok
}

func (f *fakeCache) Set(ctx context.Context, key string, document []byte) {
	f.store[key] = document
}

type fakeMailer struct {
	sent []string
	fail bool
}

func (f *fakeMailer) SendReport(ctx context.Context, to, patientName string, document []byte, filename string) error {
	if f.fail {
		return errors.New("mail relay down")
	}
	f.sent = append(f.sent, to)
	return nil
}

func paidParams() *GenerateReportParams {
	return &GenerateReportParams{
		Input: domain.PatientInput{
			Name:            "Ayesha Khan",
			Age:             28,
			Weight:          72,
			Height:          162,
			IrregularCycles: true,
			Acne:            true,
			CyclesPerYear:   7,
			FastingGlucose:  96,
			FastingInsulin:  16.3,
		},
		PaymentConfirmed: true,
	}
}

func TestIntakeService_GenerateReport(t *testing.T) {
	renderer := &fakeRenderer{}
	progress := &fakeProgressStore{}
	repo := &fakeReportRepo{}
	mailer := &fakeMailer{}

	svc := NewIntakeService(testLogger(), renderer, progress, repo, newFakeCache(), mailer, IntakeOptions{
		ReportTitle: "PCOS Assessment Report",
		DoctorLine:  "Dr. Arshad Mohammed, MD",
		ClinicName:  "Clinics Northside",
	})

	params := paidParams()
	params.Email = "ayesha@example.com"
	params.DeliverByEmail = true

	out, err := svc.GenerateReport(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, domain.VerdictLikely, out.Result.Verdict)
	assert.Equal(t, domain.PhenotypeB, out.Result.Phenotype)
	assert.NotEmpty(t, out.Sections)
	assert.NotEmpty(t, out.Document)
	assert.NotEmpty(t, out.ReportID)
	assert.True(t, out.ProgressSaved)
	assert.True(t, out.Delivered)
	assert.False(t, out.FromCache)

	require.Len(t, progress.records, 1)
	assert.Equal(t, "Ayesha Khan", progress.records[0].Name)
	assert.Equal(t, 27.4, progress.records[0].BMI)
	assert.Equal(t, 3.86, progress.records[0].HOMAIR)

	require.Len(t, repo.records, 1)
	assert.Equal(t, out.ReportID, repo.records[0].ID)

	assert.Equal(t, []string{"ayesha@example.com"}, mailer.sent)
}

func TestIntakeService_UnpaidSkipsRendering(t *testing.T) {
	renderer := &fakeRenderer{}
	repo := &fakeReportRepo{}

	svc := NewIntakeService(testLogger(), renderer, nil, repo, nil, nil, IntakeOptions{})

	params := paidParams()
	params.PaymentConfirmed = false

	out, err := svc.GenerateReport(context.Background(), params)
	require.NoError(t, err)

	// Evaluation and assembly still run; rendering and persistence do not.
	assert.NotNil(t, out.Result)
	assert.NotEmpty(t, out.Sections)
	assert.Empty(t, out.Document)
	assert.Empty(t, out.ReportID)
	assert.Zero(t, renderer.calls)
	assert.Empty(t, repo.records)
}

func TestIntakeService_CacheHitSkipsRender(t *testing.T) {
	renderer := &fakeRenderer{}
	cache := newFakeCache()

	svc := NewIntakeService(testLogger(), renderer, nil, nil, cache, nil, IntakeOptions{})
	svc.now = func() time.Time { return time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC) }

	first, err := svc.GenerateReport(context.Background(), paidParams())
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, 1, renderer.calls)

	second, err := svc.GenerateReport(context.Background(), paidParams())
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, 1, renderer.calls)
	assert.Equal(t, first.Document, second.Document)
}

func TestIntakeService_AnonymousSkipsProgress(t *testing.T) {
	progress := &fakeProgressStore{}
	svc := NewIntakeService(testLogger(), &fakeRenderer{}, progress, nil, nil, nil, IntakeOptions{})

	params := paidParams()
	params.Input.Name = ""

	out, err := svc.GenerateReport(context.Background(), params)
	require.NoError(t, err)

	assert.False(t, out.ProgressSaved)
	assert.Empty(t, progress.records)
}

func TestIntakeService_ProgressFailureIsNotFatal(t *testing.T) {
	svc := NewIntakeService(testLogger(), &fakeRenderer{}, &fakeProgressStore{fail: true}, nil, nil, nil, IntakeOptions{})

	out, err := svc.GenerateReport(context.Background(), paidParams())
	require.NoError(t, err)
	assert.False(t, out.ProgressSaved)
	assert.NotEmpty(t, out.Document)
}

func TestIntakeService_PersistFailureIsNotFatal(t *testing.T) {
	svc := NewIntakeService(testLogger(), &fakeRenderer{}, nil, &fakeReportRepo{fail: true}, nil, nil, IntakeOptions{})

	out, err := svc.GenerateReport(context.Background(), paidParams())
	require.NoError(t, err)
	assert.Empty(t, out.ReportID)
	assert.NotEmpty(t, out.Document)
}

func TestIntakeService_RenderFailureIsFatal(t *testing.T) {
	svc := NewIntakeService(testLogger(), &fakeRenderer{fail: true}, nil, nil, nil, nil, IntakeOptions{})

	_, err := svc.GenerateReport(context.Background(), paidParams())
	assert.Error(t, err)
}

func TestIntakeService_DeliveryFailureIsNotFatal(t *testing.T) {
	svc := NewIntakeService(testLogger(), &fakeRenderer{}, nil, nil, nil, &fakeMailer{fail: true}, IntakeOptions{})

	params := paidParams()
	params.Email = "ayesha@example.com"
	params.DeliverByEmail = true

	out, err := svc.GenerateReport(context.Background(), params)
	require.NoError(t, err)
	assert.False(t, out.Delivered)
	assert.NotEmpty(t, out.Document)
}

func TestReportFilename(t *testing.T) {
	assert.Equal(t, "Ayesha_Khan_pcos_report.pdf", reportFilename("Ayesha Khan"))
	assert.Equal(t, "patient_pcos_report.pdf", reportFilename(""))
}
