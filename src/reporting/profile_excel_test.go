package reporting

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/perplext/cipherhoneypot/src/profile"
	"github.com/perplext/cipherhoneypot/src/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteProfilesExcel_RoundTrips(t *testing.T) {
	entities := session.NewIntelBuffer()
	entities.Add(session.CategoryUPIIds, "scammer@ybl")

	profiles := []*profile.SenderProfile{
		{
			Sender:            "scammer@ybl",
			FirstSeen:         time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			LastSeen:          time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
			TotalEngagements:  2,
			TotalTurns:        8,
			RiskScore:         0.75,
			Status:            "active",
			ExtractedEntities: entities,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteProfilesExcel(&buf, profiles))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	sender, err := f.GetCellValue(profileSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "scammer@ybl", sender)

	entitySender, err := f.GetCellValue("Extracted Entities", "A2")
	require.NoError(t, err)
	assert.Equal(t, "scammer@ybl", entitySender)

	entityValue, err := f.GetCellValue("Extracted Entities", "C2")
	require.NoError(t, err)
	assert.Equal(t, "scammer@ybl", entityValue)
}

func TestWriteProfilesExcel_NoEntitiesLeavesDetailSheetHeaderOnly(t *testing.T) {
	profiles := []*profile.SenderProfile{
		{Sender: "nobody", ExtractedEntities: session.NewIntelBuffer()},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteProfilesExcel(&buf, profiles))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	val, err := f.GetCellValue("Extracted Entities", "A2")
	require.NoError(t, err)
	assert.Empty(t, val)
}
