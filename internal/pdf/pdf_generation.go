package pdf

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jung-kurt/gofpdf"

	"crmtasks/internal/models"
)

// Generator is the interface handlers depend on (easy to fake in tests).
type Generator interface {
	GenerateTaskSheet(w io.Writer, data TaskSheetData) error
}

// TaskSheetGenerator renders the due-today table as an A4 landscape PDF.
type TaskSheetGenerator struct {
	FontPath string // optional TTF with Cyrillic; core Helvetica otherwise
	fontName string
	utf8     bool
}

type TaskSheetData struct {
	Day      time.Time
	Location *time.Location
	Tasks    []models.Task
}

func NewTaskSheetGenerator(fontPath string) *TaskSheetGenerator {
	g := &TaskSheetGenerator{FontPath: fontPath, fontName: "Helvetica"}
	if fontPath != "" {
		if _, err := os.Stat(fontPath); err == nil {
			g.fontName = "DejaVu"
			g.utf8 = true
		}
	}
	return g
}

var sheetColumns = []struct {
	title string
	width float64
}{
	{"Title", 80},
	{"Type", 25},
	{"Application ID", 55},
	{"Due At", 40},
	{"Status", 30},
}

func (g *TaskSheetGenerator) GenerateTaskSheet(w io.Writer, data TaskSheetData) error {
	if err := g.render(data).Output(w); err != nil {
		return fmt.Errorf("render task sheet: %w", err)
	}
	return nil
}

// render lays out the sheet; every page carries a "Page n/total" footer.
func (g *TaskSheetGenerator) render(data TaskSheetData) *gofpdf.Fpdf {
	loc := data.Location
	if loc == nil {
		loc = time.UTC
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Tasks due "+data.Day.In(loc).Format("2006-01-02"), false)
	pdf.SetAuthor("crmtasks", false)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)

	tr := func(s string) string { return s }
	if g.utf8 {
		pdf.AddUTF8Font(g.fontName, "", g.FontPath)
		pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
	} else {
		tr = pdf.UnicodeTranslatorFromDescriptor("")
	}
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(g.fontName, "", 9)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 16)
	pdf.CellFormat(0, 10, "Tasks Due Today", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 7, data.Day.In(loc).Format("Monday, 02.01.2006")+" ("+loc.String()+")", "", 1, "L", false, 0, "")
	g.hr(pdf)

	if len(data.Tasks) == 0 {
		pdf.Ln(4)
		pdf.CellFormat(0, 8, "No tasks due today", "1", 1, "C", false, 0, "")
		return pdf
	}

	pdf.SetFont(g.fontName, "B", 10)
	pdf.SetFillColor(229, 231, 235)
	for _, c := range sheetColumns {
		pdf.CellFormat(c.width, 8, c.title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(g.fontName, "", 10)
	for _, t := range data.Tasks {
		cells := []string{
			truncate(t.Title, 48),
			string(t.Type),
			truncate(t.RelatedID, 32),
			t.DueAt.In(loc).Format("02.01.2006 15:04"),
			string(t.Status),
		}
		for i, c := range sheetColumns {
			pdf.CellFormat(c.width, 7, tr(cells[i]), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	return pdf
}

func (g *TaskSheetGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(15, y, 282, y)
	pdf.SetY(y + 2)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
