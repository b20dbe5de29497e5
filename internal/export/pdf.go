package export

import (
	"fmt"
	"io"
	"os"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"timesaver/backend/internal/model"
)

const (
	bodyFamily   = "body"
	coreFamily   = "Helvetica"
	marginLeft   = 50.0
	barLeft      = 200.0
	barMaxWidth  = 300.0
	maxLineRunes = 130
)

// PDFRenderer draws the activity report on A4 pages. FontPath points at a
// TTF with the glyphs users write their notes in; without it the core
// Helvetica font is used and unsupported characters are replaced.
type PDFRenderer struct {
	fontPath string
	logger   *zap.Logger
}

func NewPDFRenderer(fontPath string, logger *zap.Logger) *PDFRenderer {
	return &PDFRenderer{fontPath: fontPath, logger: logger.Named("export")}
}

// page tracks the pen position. Coordinates are points from the top-left.
type page struct {
	pdf    *fpdf.Fpdf
	family string
	tr     func(string) string
	height float64
	y      float64
}

func (p *page) text(x float64, size float64, s string) {
	p.pdf.SetFont(p.family, "", size)
	p.pdf.Text(x, p.y, p.tr(s))
}

func (p *page) next(top float64) {
	p.pdf.AddPage()
	p.y = top
}

func (r *PDFRenderer) Write(w io.Writer, report Report) error {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("timesaver", true)
	pdf.SetTitle("TimeSaver activity report", true)
	if !report.GeneratedAt.IsZero() {
		pdf.SetCreationDate(report.GeneratedAt)
	}

	_, height := pdf.GetPageSize()
	p := &page{pdf: pdf, height: height}
	r.selectFont(p)

	loc := report.location()

	p.next(50)
	p.text(marginLeft, 16, "TimeSaver: activity report")
	p.y += 30
	p.text(marginLeft, 12, "User: "+report.UserName)
	p.y += 20
	p.text(marginLeft, 12, "Date: "+report.GeneratedAt.In(loc).Format("2006-01-02"))

	p.y += 40
	p.text(marginLeft, 12, "Totals (min):")
	p.y += 20

	maxTotal := 0
	for _, c := range model.Categories {
		if report.Totals[c] > maxTotal {
			maxTotal = report.Totals[c]
		}
	}
	if maxTotal == 0 {
		maxTotal = 1
	}

	pdf.SetFillColor(51, 153, 219)
	for _, c := range model.Categories {
		minutes := report.Totals[c]
		p.text(marginLeft+10, 12, fmt.Sprintf("%s: %d min", c.Label(), minutes))
		if width := float64(minutes) / float64(maxTotal) * barMaxWidth; width > 0 {
			pdf.Rect(barLeft, p.y-10, width, 10, "F")
		}
		p.y += 20
		if p.y > p.height-120 {
			p.next(50)
		}
	}

	p.next(50)
	p.text(marginLeft, 14, "Entries")
	p.y += 30
	for _, e := range report.Entries {
		line := fmt.Sprintf("%s | %s - %s | %d min | %s",
			e.Category.Label(),
			e.Start.In(loc).Format("2006-01-02 15:04"),
			e.End.In(loc).Format("15:04"),
			e.DurationMinutes(),
			e.Note,
		)
		p.text(marginLeft, 10, truncateRunes(line, maxLineRunes))
		p.y += 14
		if p.y > p.height-40 {
			p.next(40)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// selectFont registers the configured TTF, falling back to the core font on
// any problem so typography never fails an export.
func (r *PDFRenderer) selectFont(p *page) {
	p.family = coreFamily
	p.tr = p.pdf.UnicodeTranslatorFromDescriptor("")

	if r.fontPath == "" {
		return
	}
	data, err := os.ReadFile(r.fontPath)
	if err != nil {
		r.logger.Warn("pdf font unreadable, using core font", zap.String("path", r.fontPath), zap.Error(err))
		return
	}
	p.pdf.AddUTF8FontFromBytes(bodyFamily, "", data)
	if p.pdf.Err() {
		r.logger.Warn("pdf font rejected, using core font", zap.String("path", r.fontPath), zap.Error(p.pdf.Error()))
		p.pdf.ClearError()
		return
	}
	p.family = bodyFamily
	p.tr = func(s string) string { return s }
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
