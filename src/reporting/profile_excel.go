package reporting

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/perplext/cipherhoneypot/src/profile"
	"github.com/perplext/cipherhoneypot/src/session"
)

const profileSheet = "Profiles"

// WriteProfilesExcel writes one workbook sheet summarizing profiles, with a
// second sheet listing every extracted entity keyed by sender and category.
func WriteProfilesExcel(w io.Writer, profiles []*profile.SenderProfile) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", profileSheet)
	header := []string{"Sender", "First Seen", "Last Seen", "Total Engagements", "Total Turns", "Risk Score", "Status"}
	for col, h := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(profileSheet, cell, h)
	}

	for i, p := range profiles {
		row := i + 2
		values := []interface{}{
			p.Sender,
			p.FirstSeen.Format(time.RFC3339),
			p.LastSeen.Format(time.RFC3339),
			p.TotalEngagements,
			p.TotalTurns,
			p.RiskScore,
			p.Status,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(profileSheet, cell, v)
		}
	}

	const entitySheet = "Extracted Entities"
	f.NewSheet(entitySheet)
	f.SetCellValue(entitySheet, "A1", "Sender")
	f.SetCellValue(entitySheet, "B1", "Category")
	f.SetCellValue(entitySheet, "C1", "Value")

	row := 2
	for _, p := range profiles {
		snapshot := p.ExtractedEntities.Snapshot()
		categories := make([]session.IntelCategory, 0, len(snapshot))
		for cat := range snapshot {
			categories = append(categories, cat)
		}
		sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })
		for _, cat := range categories {
			for _, value := range snapshot[cat] {
				f.SetCellValue(entitySheet, fmt.Sprintf("A%d", row), p.Sender)
				f.SetCellValue(entitySheet, fmt.Sprintf("B%d", row), string(cat))
				f.SetCellValue(entitySheet, fmt.Sprintf("C%d", row), value)
				row++
			}
		}
	}

	return f.Write(w)
}
