package rules

import (
	"testing"

	"radiologi/xa-dose/internal/ruleerror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_Validate_Clean(t *testing.T) {
	table := NewTable("t", "1", []Rule{
		NewRule("RGA Abdomen & RGA Bekken", categoryCombined),
		NewRule("RGA Abdomen & ~RGA Bekken", categoryAbdomen),
		NewRule("RGA Caput", categoryHead),
	})
	issues := table.Validate()
	assert.Empty(t, issues)
	assert.False(t, HasErrors(issues))
}

func TestTable_Validate_EmptyTable(t *testing.T) {
	issues := NewTable("t", "1", nil).Validate()
	require.Len(t, issues, 1)
	assert.Equal(t, -1, issues[0].Rule)
	assert.Equal(t, ruleerror.SeverityError, issues[0].Severity)
	assert.True(t, HasErrors(issues))
}

func TestTable_Validate_Errors(t *testing.T) {
	tests := []struct {
		name           string
		rule           Rule
		expectedReason string
	}{
		{"empty key", NewRule("", categoryHead), "empty inclusion term"},
		{"trailing separator", NewRule("RGV Cor & ", categoryHead), "empty inclusion term"},
		{"bare negation", NewRule("RGV Cor & ~", categoryHead), "empty exclusion term"},
		{"only exclusions", NewRule("~RGA Bekken", categoryHead), "no inclusion term"},
		{"separator without spaces", NewRule("RGA Abdomen&RGA Bekken", categoryHead), "inconsistent separator"},
		{"separator missing trailing space", NewRule("RGA Abdomen &~RGA Bekken", categoryHead), "inconsistent separator"},
		{"empty label", NewRule("RGA Caput", "  "), "empty category label"},
		{"unmapped label", NewRule("RGA Caput", Unmapped), "unmapped sentinel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := NewTable("t", "1", []Rule{tt.rule}).Validate()
			require.NotEmpty(t, issues)
			assert.True(t, HasErrors(issues))
			assert.Equal(t, 0, issues[0].Rule)
			assert.Contains(t, issues[0].Reason, tt.expectedReason)
		})
	}
}

func TestTable_Validate_Warnings(t *testing.T) {
	first := NewRule("RGA Abdomen", categoryAbdomen)
	first.Line = 4
	table := NewTable("t", "1", []Rule{
		first,
		NewRule("RGA Abdomen & RGA Bekken", categoryCombined),
		NewRule("RGA  Caput", categoryHead),
		NewRule("RGV Cor", "INT03 - Hjerte"),
		NewRule(" RGV Cor ", "INT03 - Hjerte"),
	})

	issues := table.Validate()
	require.Len(t, issues, 2)
	assert.False(t, HasErrors(issues))

	assert.Equal(t, 1, issues[0].Rule)
	assert.Equal(t, ruleerror.SeverityWarning, issues[0].Severity)
	assert.Contains(t, issues[0].Reason, "shadowed by rule 1")

	assert.Equal(t, 4, issues[1].Rule)
	assert.Contains(t, issues[1].Reason, "duplicate of rule 4")
}

func TestValidateKey(t *testing.T) {
	assert.Nil(t, ValidateKey(ParseKey("RGA Nyre & ~EVAR & ~RGA Bekken")))

	err := ValidateKey(ParseKey("RGA Nyre & ~EVAR & ~"))
	require.NotNil(t, err)
	assert.Equal(t, 2, err.Term)
	assert.Contains(t, err.Error(), "term 3")
}
