package store

import (
	"radiologi/xa-dose/internal/ruleerror"
	"radiologi/xa-dose/internal/rules"
)

// MockTableStore is a mock implementation of TableSource for testing.
type MockTableStore struct {
	TableList []*rules.Table
	Files     map[string]*rules.Table
	Strict    bool

	// Error flags for testing error conditions
	TablesError   error
	LoadFileError error
}

// Tables returns the mock tables.
func (m *MockTableStore) Tables() ([]*rules.Table, error) {
	if m.TablesError != nil {
		return nil, m.TablesError
	}
	out := make([]*rules.Table, len(m.TableList))
	copy(out, m.TableList)
	return out, nil
}

// Find returns the first mock table with the given name and, if set, version.
func (m *MockTableStore) Find(name, version string) (*rules.Table, error) {
	if m.TablesError != nil {
		return nil, m.TablesError
	}
	for _, table := range m.TableList {
		if table.Name() == name && (version == "" || table.Version() == version) {
			return table, nil
		}
	}
	return nil, &ruleerror.TableNotFoundError{Name: name, Version: version}
}

// Lookup finds the table and checks it.
func (m *MockTableStore) Lookup(name, version string) (*rules.Table, error) {
	table, err := m.Find(name, version)
	if err != nil {
		return nil, err
	}
	if _, err := m.Check(table); err != nil {
		return nil, err
	}
	return table, nil
}

// LoadFile returns the table registered under filename.
func (m *MockTableStore) LoadFile(filename string) (*rules.Table, error) {
	if m.LoadFileError != nil {
		return nil, m.LoadFileError
	}
	if table, ok := m.Files[filename]; ok {
		return table, nil
	}
	return nil, &ruleerror.TableNotFoundError{Name: filename}
}

// Check validates the table without logging.
func (m *MockTableStore) Check(table *rules.Table) ([]ruleerror.Issue, error) {
	issues := table.Validate()
	if m.Strict && rules.HasErrors(issues) {
		return issues, &ruleerror.ValidationError{Table: table.ID(), Issues: issues}
	}
	return issues, nil
}
