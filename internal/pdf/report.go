package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Generator is the interface the handlers depend on (easy to fake in tests).
type Generator interface {
	GenerateAssignmentReport(data AssignmentReportData) (string, error)
}

// ReportGenerator renders shift-checklist reports under RootDir.
type ReportGenerator struct {
	RootDir string // storage root, e.g. "./files"
}

type ReportTaskLine struct {
	Title       string
	Required    bool
	CompletedAt *time.Time
	CompletedBy string
	Notes       string
	PhotoURL    string
}

type AssignmentReportData struct {
	WorkflowName   string
	EmployeeName   string
	OccurrenceDate string
	Status         string
	CompletedAt    *time.Time
	Tasks          []ReportTaskLine
}

func NewReportGenerator(rootDir string) *ReportGenerator {
	return &ReportGenerator{RootDir: filepath.Clean(rootDir)}
}

func (g *ReportGenerator) ensureTarget(filename string) (string, error) {
	dir := filepath.Join(g.RootDir, "reports")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, filename), nil
}

func (g *ReportGenerator) hr(pdf *gofpdf.Fpdf) {
	x, y := pdf.GetXY()
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	pdf.Line(left, y, pageW-right, y)
	pdf.SetXY(x, y+2)
}

func (g *ReportGenerator) kvLine(pdf *gofpdf.Fpdf, key, value string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(45, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, value, "", "L", false)
}

// GenerateAssignmentReport writes the PDF and returns its path relative to
// RootDir, suitable for serving.
func (g *ReportGenerator) GenerateAssignmentReport(data AssignmentReportData) (string, error) {
	filename := fmt.Sprintf("assignment_%s_%s.pdf",
		data.OccurrenceDate, sanitize(data.WorkflowName))
	absPath, err := g.ensureTarget(filename)
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Shift checklist report", false)
	pdf.SetAuthor("shiftops", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "SHIFT CHECKLIST REPORT", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 7, data.OccurrenceDate, "", 1, "C", false, 0, "")
	g.hr(pdf)
	pdf.Ln(3)

	g.kvLine(pdf, "Workflow", data.WorkflowName)
	g.kvLine(pdf, "Employee", data.EmployeeName)
	g.kvLine(pdf, "Status", data.Status)
	if data.CompletedAt != nil {
		g.kvLine(pdf, "Completed at", data.CompletedAt.Format("2006-01-02 15:04"))
	}
	pdf.Ln(2)
	g.hr(pdf)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Tasks", "", 1, "L", false, 0, "")
	for _, t := range data.Tasks {
		mark := "[ ]"
		when := "not completed"
		if t.CompletedAt != nil {
			mark = "[x]"
			when = t.CompletedAt.Format("15:04") + " by " + t.CompletedBy
		}
		req := ""
		if t.Required {
			req = " (required)"
		}
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 6, fmt.Sprintf("%s %s%s", mark, t.Title, req), "", "L", false)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, "    "+when, "", "L", false)
		if t.Notes != "" {
			pdf.MultiCell(0, 5, "    Notes: "+t.Notes, "", "L", false)
		}
		if t.PhotoURL != "" {
			pdf.MultiCell(0, 5, "    Photo: "+t.PhotoURL, "", "L", false)
		}
		pdf.Ln(1)
	}

	if err := pdf.OutputFileAndClose(absPath); err != nil {
		return "", err
	}
	rel := filepath.ToSlash(filepath.Join("/reports", filename))
	return rel, nil
}

func sanitize(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		case r == ' ' || r == '-' || r == '_':
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "workflow"
	}
	return string(out)
}
