package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatRecentEmpty(t *testing.T) {
	out := FormatRecent(nil)
	assert.Contains(t, out, "no downloads yet")
}

func TestFormatRecent(t *testing.T) {
	out := FormatRecent([]Entry{
		{Title: "Hello", Artist: "Adele", QualityName: "Lossless"},
		{Title: "Someone Like You", Artist: "Adele"},
	})
	assert.Contains(t, out, "1. Hello - Adele (Lossless)")
	assert.Contains(t, out, "2. Someone Like You - Adele")
}
