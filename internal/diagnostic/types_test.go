package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiagnosticString(t *testing.T) {
	tests := []struct {
		name string
		diag Diagnostic
		want string
	}{
		{
			name: "full",
			diag: Diagnostic{Code: "unknown-field", Message: "field not found", TypeName: "store.Order", FieldName: "Bogus"},
			want: "[store.Order] Bogus: [unknown-field] field not found",
		},
		{
			name: "type only",
			diag: Diagnostic{Code: "unknown-type", Message: "type not found", TypeName: "store.Missing"},
			want: "[store.Missing]: [unknown-type] type not found",
		},
		{
			name: "bare message",
			diag: Diagnostic{Message: "something happened"},
			want: "something happened",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.diag.String())
		})
	}
}

func TestDiagnosticsError(t *testing.T) {
	var d Diagnostics
	assert.NoError(t, d.Error())
	assert.False(t, d.HasErrors())

	d.AddWarning("w", "minor", "", "")
	assert.NoError(t, d.Error())

	d.AddError("e1", "first", "t", "")
	d.AddError("e2", "second", "t", "f")
	assert.True(t, d.HasErrors())
	assert.EqualError(t, d.Error(), "[t]: [e1] first; [t] f: [e2] second")
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "unknown", Severity(99).String())
}
