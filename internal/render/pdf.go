// Package render renders the assembled report sections into a paginated PDF.
// It owns layout only: section content and ordering come from the assembler.
package render

import (
	"bytes"
	"fmt"
	"os"

	"github.com/signintech/gopdf"
	"github.com/sirupsen/logrus"

	"github.com/drarshadhere/mypcos-ai/internal/domain"
)

const (
	pageWidth    = 595.28 // A4 portrait, points
	marginLeft   = 40.0
	marginRight  = 40.0
	marginTop    = 36.0
	contentWidth = pageWidth - marginLeft - marginRight
	bodyBottom   = 780.0 // content below this triggers a page break
	footerLineY  = 812.0
	footerTextY  = 820.0

	fontName = "report"

	titleSize   = 18.0
	headingSize = 13.0
	bodySize    = 10.5
	smallSize   = 9.0

	lineHeight  = 14.0
	smallHeight = 12.0
)

// fallbackFontPaths are tried when no font path is configured. DejaVuSans
// ships with most distributions and covers the glyphs the report uses.
var fallbackFontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
}

// PDFRenderer renders report sections to PDF. A renderer is stateless across
// Render calls and safe for concurrent use.
type PDFRenderer struct {
	cfg        domain.RenderConfig
	footerText string
	logger     *logrus.Logger
}

// NewPDFRenderer creates a new PDF renderer.
func NewPDFRenderer(cfg domain.RenderConfig, footerText string, logger *logrus.Logger) *PDFRenderer {
	return &PDFRenderer{cfg: cfg, footerText: footerText, logger: logger}
}

// Render walks the section sequence in order and produces the PDF bytes.
// Unknown section kinds are skipped so renderer and assembler can evolve
// independently.
func (r *PDFRenderer) Render(sections []domain.ReportSection) ([]byte, error) {
	doc := &reportDoc{footerText: r.footerText}
	if err := doc.start(r.fontPath()); err != nil {
		return nil, err
	}

	for _, section := range sections {
		switch section.Kind {
		case domain.SectionHeader:
			doc.renderHeader(section.Header, r.cfg.LogoPath)
		case domain.SectionDiagnosisSummary:
			doc.renderDiagnosis(section.Diagnosis)
		case domain.SectionEvidenceSummary:
			doc.renderEvidence(section.Evidence)
		case domain.SectionLabTable:
			doc.renderLabTable(section.Labs)
		case domain.SectionNutritionPlan:
			doc.renderNutrition(section.Nutrition)
		case domain.SectionTreatment:
			doc.renderTreatment(section.Treatment)
		case domain.SectionNextSteps:
			doc.renderNextSteps(section.NextSteps)
		case domain.SectionReferences:
			doc.renderReferences(section.Refs)
		case domain.SectionClosing:
			doc.renderClosing(section.Closing)
		default:
			r.logger.WithField("kind", string(section.Kind)).Warn("Skipping unknown report section")
		}
	}

	var buf bytes.Buffer
	if _, err := doc.pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"sections": len(sections),
		"pages":    doc.page,
		"bytes":    buf.Len(),
	}).Debug("Rendered report document")

	return buf.Bytes(), nil
}

// fontPath resolves the configured font path, falling back to common
// DejaVuSans locations.
func (r *PDFRenderer) fontPath() string {
	if r.cfg.FontPath != "" {
		return r.cfg.FontPath
	}
	for _, path := range fallbackFontPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// reportDoc tracks pagination state while rendering one document.
type reportDoc struct {
	pdf        gopdf.GoPdf
	page       int
	footerText string
}

func (d *reportDoc) start(fontPath string) error {
	d.pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})

	if fontPath == "" {
		return fmt.Errorf("no usable TTF font found; set render.font_path")
	}
	if err := d.pdf.AddTTFFont(fontName, fontPath); err != nil {
		return fmt.Errorf("loading report font %q: %w", fontPath, err)
	}

	d.addPage()
	return nil
}

// addPage starts a new page and stamps the persistent footer band.
func (d *reportDoc) addPage() {
	d.pdf.AddPage()
	d.page++

	d.pdf.SetLineWidth(0.3)
	d.pdf.SetStrokeColor(200, 200, 200)
	d.pdf.Line(marginLeft, footerLineY, pageWidth-marginRight, footerLineY)

	d.setFont(smallSize)
	d.pdf.SetTextColor(120, 120, 120)
	d.pdf.SetXY(marginLeft, footerTextY)
	d.pdf.Cell(nil, d.footerText)

	pageLabel := fmt.Sprintf("Page %d", d.page)
	w, _ := d.pdf.MeasureTextWidth(pageLabel)
	d.pdf.SetXY(pageWidth-marginRight-w, footerTextY)
	d.pdf.Cell(nil, pageLabel)

	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.SetXY(marginLeft, marginTop)
}

func (d *reportDoc) setFont(size float64) {
	// The font is registered at start; resetting the size cannot fail.
	_ = d.pdf.SetFont(fontName, "", size)
}

// ensureSpace breaks the page when fewer than h points remain.
func (d *reportDoc) ensureSpace(h float64) {
	if d.pdf.GetY()+h > bodyBottom {
		d.addPage()
	}
}

// writeLine writes one wrapped block of text at the given size, advancing
// the cursor.
func (d *reportDoc) writeLine(text string, size, height float64) {
	d.setFont(size)
	lines, err := d.pdf.SplitText(text, contentWidth)
	if err != nil {
		lines = []string{text}
	}
	for _, line := range lines {
		d.ensureSpace(height)
		d.pdf.SetX(marginLeft)
		d.pdf.Cell(nil, line)
		d.pdf.Br(height)
	}
}

func (d *reportDoc) heading(text string) {
	d.ensureSpace(2 * lineHeight)
	d.pdf.Br(6)
	d.writeLine(text, headingSize, lineHeight+2)
	d.pdf.Br(2)
}

func (d *reportDoc) bullets(items []string, size, height float64) {
	for _, item := range items {
		d.writeLine("• "+item, size, height)
	}
}

// table renders a simple grid with a header row. Column widths are
// proportional shares of the content width unless explicit weights are given.
func (d *reportDoc) table(columns []string, rows [][]string, weights []float64) {
	widths := columnWidths(len(columns), weights)

	d.tableRow(columns, widths, true)
	for _, row := range rows {
		d.tableRow(row, widths, false)
	}
	d.pdf.Br(6)
}

func (d *reportDoc) tableRow(cells []string, widths []float64, header bool) {
	size := bodySize
	if header {
		size = bodySize + 0.5
	}
	d.setFont(size)

	// Wrap every cell first so the row height is known before drawing.
	wrapped := make([][]string, len(cells))
	maxLines := 1
	for i, cell := range cells {
		if i >= len(widths) {
			break
		}
		lines, err := d.pdf.SplitText(cell, widths[i]-6)
		if err != nil || len(lines) == 0 {
			lines = []string{cell}
		}
		wrapped[i] = lines
		if len(lines) > maxLines {
			maxLines = len(lines)
		}
	}

	rowHeight := float64(maxLines)*smallHeight + 6
	d.ensureSpace(rowHeight)

	top := d.pdf.GetY()
	x := marginLeft
	for i, lines := range wrapped {
		if i >= len(widths) {
			break
		}
		y := top + 3
		for _, line := range lines {
			d.pdf.SetXY(x+3, y)
			d.pdf.Cell(nil, line)
			y += smallHeight
		}
		x += widths[i]
	}

	// Grid lines
	d.pdf.SetLineWidth(0.4)
	d.pdf.SetStrokeColor(150, 150, 150)
	bottom := top + rowHeight
	x = marginLeft
	for i := 0; i <= len(widths); i++ {
		d.pdf.Line(x, top, x, bottom)
		if i < len(widths) {
			x += widths[i]
		}
	}
	d.pdf.Line(marginLeft, top, marginLeft+sum(widths), top)
	d.pdf.Line(marginLeft, bottom, marginLeft+sum(widths), bottom)

	d.pdf.SetXY(marginLeft, bottom)
}

func (d *reportDoc) renderHeader(s *domain.HeaderSection, logoPath string) {
	if s == nil {
		return
	}
	if logoPath != "" {
		if _, err := os.Stat(logoPath); err == nil {
			// Logo embedding is best-effort; a missing or corrupt image never
			// fails the report.
			if err := d.pdf.Image(logoPath, marginLeft, d.pdf.GetY(), &gopdf.Rect{W: 140, H: 45}); err == nil {
				d.pdf.SetXY(marginLeft, d.pdf.GetY()+53)
			}
		}
	}

	d.setFont(titleSize)
	d.pdf.SetTextColor(214, 51, 132)
	d.pdf.SetX(marginLeft)
	d.pdf.Cell(nil, s.Title)
	d.pdf.Br(titleSize + 8)
	d.pdf.SetTextColor(0, 0, 0)

	d.writeLine("Date: "+s.ReportDate, bodySize, lineHeight)
	d.writeLine("Patient Name: "+s.Name, bodySize, lineHeight)
	d.writeLine("Age: "+s.Age, bodySize, lineHeight)
	d.writeLine("BMI: "+s.BMI, bodySize, lineHeight)
	if s.BMINote != "" {
		d.writeLine(s.BMINote, smallSize, smallHeight)
	}
	d.pdf.Br(4)
}

func (d *reportDoc) renderDiagnosis(s *domain.DiagnosisSummarySection) {
	if s == nil {
		return
	}
	d.heading("Diagnosis Summary")
	d.writeLine("Assessment: "+s.Verdict.String(), bodySize, lineHeight)
	d.writeLine("PCOS Phenotype: "+s.Phenotype.String(), bodySize, lineHeight)
	if s.Explanation != "" {
		d.writeLine(s.Explanation, smallSize, smallHeight)
	}
}

func (d *reportDoc) renderEvidence(s *domain.EvidenceSummarySection) {
	if s == nil {
		return
	}
	d.heading("Evidence Summary")
	if len(s.Criteria) > 0 {
		rows := make([][]string, 0, len(s.Criteria))
		for _, c := range s.Criteria {
			met := "No"
			if c.Met {
				met = "Yes"
			}
			rows = append(rows, []string{c.Name, met})
		}
		d.table([]string{"Criterion", "Met?"}, rows, []float64{0.78, 0.22})
	}
	if len(s.Alerts) > 0 {
		d.writeLine("Clinical / Lab Alerts:", bodySize, lineHeight)
		d.bullets(s.Alerts, bodySize, lineHeight)
	}
}

func (d *reportDoc) renderLabTable(s *domain.LabTableSection) {
	if s == nil {
		return
	}
	d.heading("Lab Results")
	d.table(s.Columns, s.Rows, labColumnWeights(len(s.Columns)))
}

func (d *reportDoc) renderNutrition(s *domain.NutritionPlanSection) {
	if s == nil {
		return
	}
	d.heading("Nutrition Plan (7 days)")
	rows := make([][]string, 0, len(s.Rows))
	for _, r := range s.Rows {
		rows = append(rows, []string{r.Day, r.Breakfast, r.Lunch, r.Snack, r.Dinner})
	}
	d.table([]string{"Day", "Breakfast", "Lunch", "Snack", "Dinner"},
		rows, []float64{0.10, 0.25, 0.25, 0.15, 0.25})
	if s.Caption != "" {
		d.writeLine(s.Caption, smallSize, smallHeight)
	}
}

func (d *reportDoc) renderTreatment(s *domain.TreatmentSection) {
	if s == nil {
		return
	}
	d.heading("Treatment Recommendations")
	d.bullets(s.Notes, bodySize, lineHeight)
}

func (d *reportDoc) renderNextSteps(s *domain.NextStepsSection) {
	if s == nil {
		return
	}
	d.heading("Next Steps")
	d.bullets(s.Points, bodySize, lineHeight)
}

func (d *reportDoc) renderReferences(s *domain.ReferencesSection) {
	if s == nil {
		return
	}
	d.heading("References")
	for i, item := range s.Items {
		d.writeLine(fmt.Sprintf("%d. %s", i+1, item), smallSize, smallHeight)
	}
}

func (d *reportDoc) renderClosing(s *domain.ClosingSection) {
	if s == nil {
		return
	}
	d.pdf.Br(8)
	d.writeLine(s.DoctorLine, bodySize, lineHeight)
	d.writeLine(s.ClinicName, bodySize, lineHeight)
	if s.WhatsAppLink != "" {
		d.ensureSpace(lineHeight + 4)
		d.pdf.Br(4)
		d.setFont(bodySize)
		label := "Join Coaching on WhatsApp"
		w, _ := d.pdf.MeasureTextWidth(label)
		x, y := marginLeft, d.pdf.GetY()
		d.pdf.SetTextColor(13, 110, 253)
		d.pdf.SetX(x)
		d.pdf.Cell(nil, label)
		d.pdf.AddExternalLink(s.WhatsAppLink, x, y, w, lineHeight)
		d.pdf.SetTextColor(0, 0, 0)
		d.pdf.Br(lineHeight)
	}
}

func columnWidths(n int, weights []float64) []float64 {
	widths := make([]float64, n)
	if len(weights) == n {
		for i, w := range weights {
			widths[i] = contentWidth * w
		}
		return widths
	}
	for i := range widths {
		widths[i] = contentWidth / float64(n)
	}
	return widths
}

// labColumnWeights returns layout weights for the 3, 4, or 5 column lab
// table shapes the assembler produces.
func labColumnWeights(n int) []float64 {
	switch n {
	case 3:
		return []float64{0.55, 0.25, 0.20}
	case 4:
		return []float64{0.42, 0.18, 0.14, 0.26}
	case 5:
		return []float64{0.30, 0.13, 0.11, 0.18, 0.28}
	default:
		return nil
	}
}

func sum(xs []float64) float64 {
	var t float64
	for _, x := range xs {
		t += x
	}
	return t
}
