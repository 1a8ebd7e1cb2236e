// Package reporting formats sender profiles and session summaries for
// operator export.
package reporting

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/perplext/cipherhoneypot/src/profile"
)

// WriteProfilesCSV writes one row per profile: sender, first/last seen,
// engagement counts, risk score, and status.
func WriteProfilesCSV(w io.Writer, profiles []*profile.SenderProfile) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"sender", "first_seen", "last_seen", "total_engagements", "total_turns", "risk_score", "status"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, p := range profiles {
		row := []string{
			p.Sender,
			p.FirstSeen.Format(time.RFC3339),
			p.LastSeen.Format(time.RFC3339),
			fmt.Sprintf("%d", p.TotalEngagements),
			fmt.Sprintf("%d", p.TotalTurns),
			fmt.Sprintf("%.2f", p.RiskScore),
			p.Status,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Error()
}
