package reporting

import (
	"bytes"
	"testing"

	"github.com/perplext/cipherhoneypot/src/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteIncidentPDF_ProducesValidPDFOutput(t *testing.T) {
	s := session.New("sess-1", "margaret_72")
	s.ScamScore = 0.88
	s.TurnNumber = 5
	s.IntelBuffer.Add(session.CategoryUPIIds, "scammer@ybl")

	var buf bytes.Buffer
	require.NoError(t, WriteIncidentPDF(&buf, s))

	assert.True(t, buf.Len() > 0)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestWriteIncidentPDF_NoExtractedEntities(t *testing.T) {
	s := session.New("sess-2", "priya_45")

	var buf bytes.Buffer
	require.NoError(t, WriteIncidentPDF(&buf, s))
	assert.True(t, buf.Len() > 0)
}
