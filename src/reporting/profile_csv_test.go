package reporting

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/perplext/cipherhoneypot/src/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteProfilesCSV_WritesHeaderAndRows(t *testing.T) {
	profiles := []*profile.SenderProfile{
		{
			Sender:           "scammer@ybl",
			FirstSeen:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			LastSeen:         time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
			TotalEngagements: 3,
			TotalTurns:       12,
			RiskScore:        0.82,
			Status:           "active",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteProfilesCSV(&buf, profiles))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{"sender", "first_seen", "last_seen", "total_engagements", "total_turns", "risk_score", "status"}, records[0])
	assert.Equal(t, "scammer@ybl", records[1][0])
	assert.Equal(t, "3", records[1][3])
	assert.Equal(t, "0.82", records[1][5])
	assert.Equal(t, "active", records[1][6])
}

func TestWriteProfilesCSV_EmptyInputWritesHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteProfilesCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
