package validation

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateClientContentType(t *testing.T) {
	assert.NoError(t, ValidateClientContentType("application/pdf"))
	assert.NoError(t, ValidateClientContentType("application/pdf; charset=binary"))
	assert.NoError(t, ValidateClientContentType("application/octet-stream"))

	assert.Error(t, ValidateClientContentType("text/csv"))
	assert.Error(t, ValidateClientContentType("text/html"))
	assert.Error(t, ValidateClientContentType(""))
}

func TestValidateFileContentByMagicBytes(t *testing.T) {
	pdf := bytes.NewReader([]byte("%PDF-1.7\n%some content"))
	require.NoError(t, ValidateFileContentByMagicBytes(pdf))

	// The read pointer must be back at the start for the parser.
	buf := make([]byte, 5)
	n, err := pdf.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-", string(buf[:n]))
}

func TestValidateFileContentByMagicBytesRejectsNonPDF(t *testing.T) {
	assert.Error(t, ValidateFileContentByMagicBytes(bytes.NewReader([]byte("date;desc;value"))))
	assert.Error(t, ValidateFileContentByMagicBytes(bytes.NewReader(nil)))
	assert.Error(t, ValidateFileContentByMagicBytes(nil))
}
