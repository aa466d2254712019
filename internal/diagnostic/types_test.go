package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticsCollect(t *testing.T) {
	var d Diagnostics

	assert.False(t, d.HasErrors())
	assert.NoError(t, d.Error())

	d.At("devices", "sub_import").Field("site").Warnf("forward_ref", "binds %q, declared later", "region")
	d.At("", "import").Infof("default_import", "no import statements, using devices")
	assert.False(t, d.HasErrors())

	d.At("devices", "group_by").Field("[0]").Errorf("malformed_expression", "empty segment")
	assert.True(t, d.HasErrors())

	err := d.Error()
	require.Error(t, err)
	assert.Equal(t, "[devices] group_by[0]: [malformed_expression] empty segment", err.Error())

	all := d.All()
	require.Len(t, all, 3)
	assert.Equal(t, DiagnosticError, all[0].Severity)
	assert.Equal(t, DiagnosticWarning, all[1].Severity)
	assert.Equal(t, `binds "region", declared later`, all[1].Message)
	assert.Equal(t, "sub_import.site", all[1].Field)
	assert.Equal(t, DiagnosticInfo, all[2].Severity)
}

func TestScopeField(t *testing.T) {
	var d Diagnostics

	tests := []struct {
		scope    Scope
		expected string
	}{
		{d.At("racks", ""), ""},
		{d.At("racks", "").Field("index"), "index"},
		{d.At("racks", "host_vars").Field("ip"), "host_vars.ip"},
		{d.At("racks", "sub_import").Field("[2]").Field("bind"), "sub_import[2].bind"},
		{d.At("racks", "sub_import").Field(""), "sub_import"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			tt.scope.Errorf("c", "m")

			last := d.Errors[len(d.Errors)-1]
			assert.Equal(t, "racks", last.Import)
			assert.Equal(t, tt.expected, last.Field)
		})
	}
}

func TestScopeSuggest(t *testing.T) {
	var d Diagnostics

	at := d.At("devices", "host_vars.ip")
	at.Suggest("lower").Errorf("unknown_filter", "unknown filter %q", "lowr")
	at.Errorf("malformed_expression", "empty operand")

	require.Len(t, d.Errors, 2)
	assert.Equal(t, []string{"lower"}, d.Errors[0].Suggestions)
	assert.Empty(t, d.Errors[1].Suggestions)
	assert.Equal(t, `[devices] host_vars.ip: [unknown_filter] unknown filter "lowr" (did you mean lower?)`, d.Errors[0].String())
}

func TestDiagnosticsForImport(t *testing.T) {
	var d Diagnostics

	d.At("racks", "").Errorf("x", "first")
	d.At("sites", "").Errorf("y", "second")
	d.At("racks", "index").Warnf("z", "third")
	d.At("", "api.api_url").Errorf("w", "fourth")

	got := d.ForImport("racks")
	require.Len(t, got, 2)
	assert.Equal(t, "x", got[0].Code)
	assert.Equal(t, "z", got[1].Code)
	assert.Len(t, d.ForImport(""), 1)
	assert.Empty(t, d.ForImport("devices"))
	assert.Equal(t, "[racks]: [x] first; [sites]: [y] second; api.api_url: [w] fourth", d.Error().Error())
}

func TestDiagnosticString(t *testing.T) {
	tests := []struct {
		name     string
		diag     Diagnostic
		expected string
	}{
		{
			name:     "message only",
			diag:     Diagnostic{Message: "plain"},
			expected: "plain",
		},
		{
			name:     "field only",
			diag:     Diagnostic{Code: "c", Message: "m", Field: "host_vars.ip"},
			expected: "host_vars.ip: [c] m",
		},
		{
			name:     "suggestions",
			diag:     Diagnostic{Code: "unknown_filter", Message: "lowr", Import: "devices", Suggestions: []string{"lower"}},
			expected: "[devices]: [unknown_filter] lowr (did you mean lower?)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.diag.String())
		})
	}
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "error", DiagnosticError.String())
	assert.Equal(t, "warning", DiagnosticWarning.String())
	assert.Equal(t, "info", DiagnosticInfo.String())
	assert.Equal(t, "unknown", DiagnosticSeverity(9).String())
}
