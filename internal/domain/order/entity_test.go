// internal/domain/order/entity_test.go
package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidNumber(t *testing.T) {
	valid := []string{
		"MRK-AB12CD",
		"MRK-000000",
		"MRK-ABCDEF123456",
	}
	for _, s := range valid {
		assert.True(t, ValidNumber(s), s)
	}

	invalid := []string{
		"",
		"MRK-AB12C",      // too short
		"MRK-ab12cd",     // lowercase
		"mrk-AB12CD",     // lowercase prefix
		"ORD-AB12CD",     // wrong prefix
		"MRK-AB12CD ",    // trailing space
		" MRK-AB12CD",    // leading space
		"MRK-AB-12CD",    // punctuation
		"user@mail.test", // email
	}
	for _, s := range invalid {
		assert.False(t, ValidNumber(s), s)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, (&Order{Status: StatusPending}).IsTerminal())
	assert.False(t, (&Order{Status: StatusProcessing}).IsTerminal())
	assert.True(t, (&Order{Status: StatusApproved}).IsTerminal())
	assert.True(t, (&Order{Status: StatusRejected}).IsTerminal())
	assert.True(t, (&Order{Status: StatusRefunded}).IsTerminal())
}

func TestCanDownload(t *testing.T) {
	tests := []struct {
		name      string
		status    Status
		available bool
		expected  bool
	}{
		{"approved and available", StatusApproved, true, true},
		{"approved but artifact missing", StatusApproved, false, false},
		{"pending with artifact", StatusPending, true, false},
		{"processing with artifact", StatusProcessing, true, false},
		{"rejected", StatusRejected, true, false},
		{"refunded", StatusRefunded, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{Status: tt.status, DownloadAvailable: tt.available}
			assert.Equal(t, tt.expected, o.CanDownload())
		})
	}
}
