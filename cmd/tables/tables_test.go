package tables

import (
	"bytes"
	"errors"
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

func newContainer(t *testing.T, source store.TableSource) *container.Container {
	t.Helper()
	c, err := container.NewContainerWithStore(config.Default(), logging.NewMockLogger(), source)
	require.NoError(t, err)
	return c
}

func TestRun(t *testing.T) {
	source := &store.MockTableStore{
		TableList: []*rules.Table{
			rules.NewTable("dsa", "2024", []rules.Rule{
				rules.NewRule("RGA Caput", "Head"),
				rules.NewRule("RGL Caput", "Head"),
				rules.NewRule("RG Colon", "Abdomen"),
			}).WithSource("builtin:dsa_2024.yaml"),
		},
	}
	var out bytes.Buffer

	require.NoError(t, Run(newContainer(t, source), &out))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"NAME", "VERSION", "RULES", "CATEGORIES", "SOURCE"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"dsa", "2024", "3", "2", "builtin:dsa_2024.yaml"}, strings.Fields(lines[1]))
}

func TestRun_BuiltinStore(t *testing.T) {
	logger := logging.NewMockLogger()
	var out bytes.Buffer

	require.NoError(t, Run(newContainer(t, store.NewTableStore("", true, logger)), &out))
	assert.Contains(t, out.String(), "dsa")
	assert.Contains(t, out.String(), "elfys-ecr")
}

func TestRun_Errors(t *testing.T) {
	require.Error(t, Run(nil, &bytes.Buffer{}))

	source := &store.MockTableStore{TablesError: errors.New("boom")}
	err := Run(newContainer(t, source), &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
