package container

import (
	"errors"
	"testing"

	"radiologi/xa-dose/internal/config"
	"radiologi/xa-dose/internal/logging"
	"radiologi/xa-dose/internal/ruleerror"
	"radiologi/xa-dose/internal/rules"
	"radiologi/xa-dose/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore() *store.MockTableStore {
	return &store.MockTableStore{
		Strict: true,
		TableList: []*rules.Table{
			rules.NewTable("dsa", "2024", []rules.Rule{rules.NewRule("RGA Caput", "Head")}),
			rules.NewTable("elfys-ecr", "2024", []rules.Rule{rules.NewRule("RGA Cor Elfys SVT (int.)", "Electrophysiology")}),
			rules.NewTable("broken", "1", []rules.Rule{rules.NewRule("RGA Caput & ", "Head")}),
		},
	}
}

func TestNewContainer(t *testing.T) {
	tests := []struct {
		name        string
		config      func() *config.Config
		expectError bool
		errorMsg    string
	}{
		{
			name:        "nil config",
			config:      func() *config.Config { return nil },
			expectError: true,
			errorMsg:    "configuration cannot be nil",
		},
		{
			name:   "default config",
			config: config.Default,
		},
		{
			name: "semicolon delimiter",
			config: func() *config.Config {
				cfg := config.Default()
				cfg.CSV.Delimiter = ";"
				return cfg
			},
		},
		{
			name: "invalid delimiter",
			config: func() *config.Config {
				cfg := config.Default()
				cfg.CSV.Delimiter = ";;"
				return cfg
			},
			expectError: true,
			errorMsg:    "single character",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewContainer(tt.config())
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, c)
			assert.NotNil(t, c.GetLogger())
			assert.NotNil(t, c.GetStore())
			assert.NotNil(t, c.GetRecordIO())
			assert.NotNil(t, c.GetReportGenerator())
			assert.NoError(t, c.Close())
		})
	}
}

func TestNewContainer_BuiltinTables(t *testing.T) {
	c, err := NewContainer(config.Default())
	require.NoError(t, err)

	cl, err := c.Classifier("", "")
	require.NoError(t, err)
	assert.Equal(t, "dsa@2024", cl.Table().ID())
	assert.Equal(t, "INT14 - Øvrig ikke Hjerte/Blodkar", cl.Classify("RG Colon").Label)
}

func TestNewContainerWithStore_Errors(t *testing.T) {
	_, err := NewContainerWithStore(config.Default(), nil, testStore())
	assert.Error(t, err)
	_, err = NewContainerWithStore(config.Default(), logging.NewMockLogger(), nil)
	assert.Error(t, err)
}

func TestClassifier(t *testing.T) {
	cfg := config.Default()
	cfg.Rules.Table = "elfys-ecr"
	c, err := NewContainerWithStore(cfg, logging.NewMockLogger(), testStore())
	require.NoError(t, err)

	cl, err := c.Classifier("", "")
	require.NoError(t, err)
	assert.Equal(t, "elfys-ecr@2024", cl.Table().ID())
	cl.Classify("RGA Cor Elfys SVT (int.)")
	assert.Equal(t, 1, cl.CachedDescriptions())

	cl, err = c.Classifier("dsa", "2024")
	require.NoError(t, err)
	assert.Equal(t, "dsa@2024", cl.Table().ID())

	_, err = c.Classifier("ct", "")
	var notFound *ruleerror.TableNotFoundError
	assert.True(t, errors.As(err, &notFound))

	_, err = c.Classifier("broken", "")
	var validationErr *ruleerror.ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestClassifier_CacheDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Classify.CacheEnabled = false
	c, err := NewContainerWithStore(cfg, logging.NewMockLogger(), testStore())
	require.NoError(t, err)

	cl, err := c.Classifier("dsa", "")
	require.NoError(t, err)
	cl.Classify("RGA Caput")
	assert.Equal(t, 0, cl.CachedDescriptions())
}

func TestProcessor(t *testing.T) {
	cfg := config.Default()
	cfg.Classify.Workers = 2
	c, err := NewContainerWithStore(cfg, logging.NewMockLogger(), testStore())
	require.NoError(t, err)

	cl, err := c.Classifier("dsa", "")
	require.NoError(t, err)
	assert.NotNil(t, c.Processor(cl))
}
