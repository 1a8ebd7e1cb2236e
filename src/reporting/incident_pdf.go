package reporting

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/perplext/cipherhoneypot/src/session"
)

// WriteIncidentPDF renders a single completed engagement as a one-page
// incident summary: outcome, turn count, and every extracted entity.
func WriteIncidentPDF(w io.Writer, s *session.Session) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Engagement %s", s.SessionID), true)
	pdf.SetAuthor("cipherd", true)
	pdf.SetCreator("cipherd", true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.Cell(0, 12, "Engagement Incident Report")
	pdf.Ln(16)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Session: %s", s.SessionID))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Generated: %s", time.Now().UTC().Format(time.RFC3339)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Persona: %s", s.PersonaID))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Final state: %s", s.State))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Scam confidence: %.2f", s.ScamScore))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Turns: %d", s.TurnNumber))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, "Extracted Intelligence")
	pdf.Ln(10)

	snapshot := s.IntelBuffer.Snapshot()
	categories := make([]session.IntelCategory, 0, len(snapshot))
	for cat := range snapshot {
		categories = append(categories, cat)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	pdf.SetFont("Arial", "", 10)
	if len(categories) == 0 {
		pdf.Cell(0, 7, "none")
		pdf.Ln(7)
	}
	for _, cat := range categories {
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 7, string(cat))
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 10)
		for _, value := range snapshot[cat] {
			pdf.Cell(0, 6, "  - "+value)
			pdf.Ln(5)
		}
	}

	return pdf.Output(w)
}
