package match

import (
	"bytes"
	"strings"
	"testing"

	"radiologi/xa-dose/internal/config"
	"radiologi/xa-dose/internal/container"
	"radiologi/xa-dose/internal/logging"
	"radiologi/xa-dose/internal/rules"
	"radiologi/xa-dose/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContainer(t *testing.T) *container.Container {
	t.Helper()
	source := &store.MockTableStore{
		Strict: true,
		TableList: []*rules.Table{
			rules.NewTable("dsa", "2024", []rules.Rule{
				rules.NewRule("RGA Abdomen & RGA Bekken", "B"),
				rules.NewRule("RGA Abdomen & ~RGA Bekken", "A"),
			}),
		},
	}
	c, err := container.NewContainerWithStore(config.Default(), logging.NewMockLogger(), source)
	require.NoError(t, err)
	return c
}

func TestRun(t *testing.T) {
	c := newTestContainer(t)

	tests := []struct {
		name        string
		description string
		explain     bool
		want        []string
	}{
		{
			name:        "compound description",
			description: "RGA Abdomen, RGA Bekken",
			want:        []string{`B (rule 1 in dsa@2024: "RGA Abdomen & RGA Bekken")`},
		},
		{
			name:        "single code",
			description: "RGA Abdomen",
			want:        []string{`A (rule 2 in dsa@2024: "RGA Abdomen & ~RGA Bekken")`},
		},
		{
			name:        "unmapped",
			description: "CT Thorax",
			want:        []string{"Unmapped (no rule in dsa@2024 matched)"},
		},
		{
			name:        "explain",
			description: "RGA Abdomen",
			explain:     true,
			want: []string{
				`A (rule 2 in dsa@2024: "RGA Abdomen & ~RGA Bekken")`,
				`     1  no match "RGA Abdomen & RGA Bekken": missing "RGA Bekken"`,
				`     2  match    "RGA Abdomen & ~RGA Bekken" -> A`,
			},
		},
		{
			name:        "explain exclusion and unmapped",
			description: "RGA Bekken",
			explain:     true,
			want: []string{
				"Unmapped (no rule in dsa@2024 matched)",
				`     1  no match "RGA Abdomen & RGA Bekken": missing "RGA Abdomen"`,
				`     2  no match "RGA Abdomen & ~RGA Bekken": missing "RGA Abdomen"; excluded by "RGA Bekken"`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, Run(c, "", "", tt.description, tt.explain, &out))
			lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
			assert.Equal(t, tt.want, lines)
		})
	}
}

func TestRun_Errors(t *testing.T) {
	var out bytes.Buffer
	err := Run(nil, "", "", "RGA Caput", false, &out)
	require.Error(t, err)

	err = Run(newTestContainer(t), "missing", "", "RGA Caput", false, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error loading rule table")
}

func TestCommand(t *testing.T) {
	assert.Equal(t, "match <description>", Cmd.Use)
	assert.NotNil(t, Cmd.Flags().Lookup("explain"))
	assert.Error(t, Cmd.Args(Cmd, []string{}))
	assert.NoError(t, Cmd.Args(Cmd, []string{"RGA Caput"}))
}
