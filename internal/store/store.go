// Package store provides access to the versioned rule tables: the built-in tables embedded
// in the binary and YAML assets from an optional rules directory.
package store

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"radiologi/xa-dose/internal/fileutils"
	"radiologi/xa-dose/internal/logging"
	"radiologi/xa-dose/internal/ruleerror"
	"radiologi/xa-dose/internal/rules"
)

//go:embed tables/*.yaml
var builtinFS embed.FS

const builtinDir = "tables"

// BuiltinPrefix marks the source of tables embedded in the binary.
const BuiltinPrefix = "builtin:"

// TableSource provides rule tables by name and version.
type TableSource interface {
	// Lookup returns a validated table. An empty version selects the highest available.
	Lookup(name, version string) (*rules.Table, error)
	// Find returns a table without validating it.
	Find(name, version string) (*rules.Table, error)
	// Tables lists every available table.
	Tables() ([]*rules.Table, error)
	// LoadFile parses a single asset file without validating it.
	LoadFile(filename string) (*rules.Table, error)
	// Check validates a table, failing in strict mode when it has errors.
	Check(table *rules.Table) ([]ruleerror.Issue, error)
}

// TableStore loads rule tables from the embedded assets and an optional directory.
// Directory assets override built-in tables with the same name and version.
type TableStore struct {
	Directory string
	Strict    bool
	logger    logging.Logger
}

// NewTableStore creates a store. directory may be empty to use only the built-in tables.
func NewTableStore(directory string, strict bool, logger logging.Logger) *TableStore {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &TableStore{
		Directory: directory,
		Strict:    strict,
		logger:    logger,
	}
}

// FindRulesFile looks for a rule table asset in standard locations
func (s *TableStore) FindRulesFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if fileutils.FileExists(filename) {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,                         // Current directory
		filepath.Join("rules", filename), // ./rules/ directory
	}
	if s.Directory != "" {
		locations = append(locations, filepath.Join(s.Directory, filename))
	}

	for _, location := range locations {
		if fileutils.FileExists(location) {
			return location, nil
		}
	}

	// If still not found, check in user's home directory under .xa-dose/rules/
	homeDir, err := os.UserHomeDir()
	if err == nil {
		rulesPath := filepath.Join(homeDir, ".xa-dose", "rules", filename)
		if fileutils.FileExists(rulesPath) {
			return rulesPath, nil
		}
	}

	return "", os.ErrNotExist
}

// LoadFile parses a single rule table asset without validating it.
func (s *TableStore) LoadFile(filename string) (*rules.Table, error) {
	filePath, err := s.FindRulesFile(filename)
	if err != nil {
		return nil, fmt.Errorf("rule table file not found: %s: %w", filename, err)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading rule table file: %w", err)
	}

	asset, err := ParseAsset(data, filePath)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Loaded rule table file",
		logging.Field{Key: logging.FieldFile, Value: filePath},
		logging.Field{Key: logging.FieldTable, Value: asset.Name},
		logging.Field{Key: logging.FieldCount, Value: len(asset.Rules)})
	return asset.Table(), nil
}

// Tables returns every available table, sorted by name and version.
func (s *TableStore) Tables() ([]*rules.Table, error) {
	byID := make(map[string]*rules.Table)

	builtins, err := loadBuiltins()
	if err != nil {
		return nil, err
	}
	for _, table := range builtins {
		byID[table.ID()] = table
	}

	if s.Directory != "" {
		tables, err := s.loadDirectory()
		if err != nil {
			return nil, err
		}
		for _, table := range tables {
			if existing, ok := byID[table.ID()]; ok {
				s.logger.Info("Rule table overrides "+existing.Source(),
					logging.Field{Key: logging.FieldTable, Value: table.ID()},
					logging.Field{Key: logging.FieldFile, Value: table.Source()})
			}
			byID[table.ID()] = table
		}
	}

	out := make([]*rules.Table, 0, len(byID))
	for _, table := range byID {
		out = append(out, table)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name() != out[j].Name() {
			return out[i].Name() < out[j].Name()
		}
		return compareVersions(out[i].Version(), out[j].Version()) < 0
	})
	return out, nil
}

// Find returns the table with the given name and version without validating it.
// An empty version selects the highest version available for name.
func (s *TableStore) Find(name, version string) (*rules.Table, error) {
	tables, err := s.Tables()
	if err != nil {
		return nil, err
	}

	var found *rules.Table
	for _, table := range tables {
		if table.Name() != name {
			continue
		}
		if version != "" {
			if table.Version() == version {
				return table, nil
			}
			continue
		}
		if found == nil || compareVersions(table.Version(), found.Version()) > 0 {
			found = table
		}
	}
	if found == nil {
		return nil, &ruleerror.TableNotFoundError{Name: name, Version: version}
	}
	return found, nil
}

// Lookup returns the validated table with the given name and version.
func (s *TableStore) Lookup(name, version string) (*rules.Table, error) {
	table, err := s.Find(name, version)
	if err != nil {
		return nil, err
	}
	if _, err := s.Check(table); err != nil {
		return nil, err
	}
	s.logger.Info("Using rule table",
		logging.Field{Key: logging.FieldTable, Value: table.ID()},
		logging.Field{Key: logging.FieldFile, Value: table.Source()},
		logging.Field{Key: logging.FieldCount, Value: table.Len()})
	return table, nil
}

// Check validates table and logs every issue. In strict mode error-severity issues are
// returned as a *ruleerror.ValidationError; otherwise they are only logged.
func (s *TableStore) Check(table *rules.Table) ([]ruleerror.Issue, error) {
	issues := table.Validate()
	for _, issue := range issues {
		logger := s.logger.WithFields(
			logging.Field{Key: logging.FieldTable, Value: table.ID()},
			logging.Field{Key: logging.FieldRule, Value: issue.Rule + 1},
			logging.Field{Key: logging.FieldRuleKey, Value: issue.Key},
			logging.Field{Key: logging.FieldSeverity, Value: string(issue.Severity)},
		)
		if issue.Severity == ruleerror.SeverityError && s.Strict {
			logger.Error(issue.Reason)
		} else {
			logger.Warn(issue.Reason)
		}
	}
	if s.Strict && rules.HasErrors(issues) {
		return issues, &ruleerror.ValidationError{Table: table.ID(), Issues: issues}
	}
	return issues, nil
}

func (s *TableStore) loadDirectory() ([]*rules.Table, error) {
	files, err := fileutils.ListFilesWithExtension(s.Directory, ".yaml", ".yml")
	if err != nil {
		return nil, fmt.Errorf("error reading rules directory: %w", err)
	}

	tables := make([]*rules.Table, 0, len(files))
	for _, filePath := range files {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("error reading rule table file: %w", err)
		}
		asset, err := ParseAsset(data, filePath)
		if err != nil {
			return nil, err
		}
		tables = append(tables, asset.Table())
	}
	return tables, nil
}

func loadBuiltins() ([]*rules.Table, error) {
	entries, err := fs.ReadDir(builtinFS, builtinDir)
	if err != nil {
		return nil, fmt.Errorf("error reading built-in rule tables: %w", err)
	}

	tables := make([]*rules.Table, 0, len(entries))
	for _, entry := range entries {
		name := path.Join(builtinDir, entry.Name())
		data, err := builtinFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("error reading built-in rule table: %w", err)
		}
		asset, err := ParseAsset(data, BuiltinPrefix+entry.Name())
		if err != nil {
			return nil, err
		}
		tables = append(tables, asset.Table())
	}
	return tables, nil
}

// compareVersions orders versions segment by segment, numerically where both segments are
// numbers, so that "2024.10" sorts after "2024.9".
func compareVersions(a, b string) int {
	split := func(v string) []string {
		return strings.FieldsFunc(v, func(r rune) bool { return r == '.' || r == '-' || r == '_' })
	}
	as, bs := split(a), split(b)
	for i := 0; i < len(as) && i < len(bs); i++ {
		an, aErr := strconv.Atoi(as[i])
		bn, bErr := strconv.Atoi(bs[i])
		if aErr == nil && bErr == nil {
			if an != bn {
				if an < bn {
					return -1
				}
				return 1
			}
			continue
		}
		if c := strings.Compare(as[i], bs[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	}
	return 0
}

// IsNotFound reports whether err is a *ruleerror.TableNotFoundError.
func IsNotFound(err error) bool {
	var notFound *ruleerror.TableNotFoundError
	return errors.As(err, &notFound)
}
