// Package report builds coverage reports of classification runs.
package report

import (
	"sort"
	"time"

	"radiologi/xa-dose/internal/batch"
	"radiologi/xa-dose/internal/models"
	"radiologi/xa-dose/internal/rules"

	"github.com/google/uuid"
)

// NoRoom groups records without a modality room.
const NoRoom = "(no room)"

// CategoryCount is the number of records assigned to one category.
type CategoryCount struct {
	Category string `json:"category" yaml:"category"`
	Count    int    `json:"count" yaml:"count"`
}

// RoomCounts breaks down the records of one modality room by category.
type RoomCounts struct {
	Room       string          `json:"room" yaml:"room"`
	Total      int             `json:"total" yaml:"total"`
	Categories []CategoryCount `json:"categories" yaml:"categories"`
}

// UnmappedDescription is a description no rule matched and how often it occurred.
type UnmappedDescription struct {
	Description string `json:"description" yaml:"description"`
	Count       int    `json:"count" yaml:"count"`
}

// Failure is a record that could not be classified.
type Failure struct {
	Record int    `json:"record" yaml:"record"`
	Reason string `json:"reason" yaml:"reason"`
}

// CoverageReport summarises how well a rule table covered a batch of records.
type CoverageReport struct {
	RunID       string                     `json:"run_id" yaml:"run_id"`
	GeneratedAt time.Time                  `json:"generated_at" yaml:"generated_at"`
	Input       string                     `json:"input,omitempty" yaml:"input,omitempty"`
	Table       string                     `json:"table" yaml:"table"`
	TableSource string                     `json:"table_source,omitempty" yaml:"table_source,omitempty"`
	Totals      models.ClassificationStats `json:"totals" yaml:"totals"`
	Coverage    float64                    `json:"coverage_percent" yaml:"coverage_percent"`
	Categories  []CategoryCount            `json:"categories" yaml:"categories"`
	Rooms       []RoomCounts               `json:"rooms" yaml:"rooms"`
	Unmapped    []UnmappedDescription      `json:"unmapped" yaml:"unmapped"`
	Failures    []Failure                  `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// BuildCoverageReport counts the outcomes of result against table.
//
// Categories lists every label of the table in table order, including labels with no
// records, followed by Unmapped. Rooms are sorted by name and list only the categories
// that occur in them. Unmapped descriptions are ordered by count, most frequent first.
func BuildCoverageReport(table *rules.Table, result *batch.Result, input string) *CoverageReport {
	labels := append(table.Labels(), rules.Unmapped)
	order := make(map[string]int, len(labels))
	for i, label := range labels {
		order[label] = i
	}

	categoryCounts := make(map[string]int, len(labels))
	roomCounts := make(map[string]map[string]int)
	roomTotals := make(map[string]int)
	unmapped := make(map[string]int)
	var failures []Failure

	for i, outcome := range result.Outcomes {
		if outcome.Err != nil {
			failures = append(failures, Failure{Record: outcome.Index, Reason: outcome.Err.Error()})
			continue
		}
		record := result.Records[i]
		label := outcome.Result.Label
		categoryCounts[label]++

		room := record.Room
		if room == "" {
			room = NoRoom
		}
		if roomCounts[room] == nil {
			roomCounts[room] = make(map[string]int)
		}
		roomCounts[room][label]++
		roomTotals[room]++

		if !outcome.Result.Mapped {
			unmapped[record.DescriptionOrEmpty()]++
		}
	}

	report := &CoverageReport{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Input:       input,
		Table:       table.ID(),
		TableSource: table.Source(),
		Totals:      result.Stats,
		Coverage:    result.Stats.Coverage(),
		Categories:  make([]CategoryCount, 0, len(labels)),
		Rooms:       make([]RoomCounts, 0, len(roomCounts)),
		Unmapped:    make([]UnmappedDescription, 0, len(unmapped)),
		Failures:    failures,
	}

	for _, label := range labels {
		report.Categories = append(report.Categories, CategoryCount{Category: label, Count: categoryCounts[label]})
	}

	for room, counts := range roomCounts {
		rc := RoomCounts{Room: room, Total: roomTotals[room]}
		for label, count := range counts {
			rc.Categories = append(rc.Categories, CategoryCount{Category: label, Count: count})
		}
		sort.Slice(rc.Categories, func(i, j int) bool {
			return order[rc.Categories[i].Category] < order[rc.Categories[j].Category]
		})
		report.Rooms = append(report.Rooms, rc)
	}
	sort.Slice(report.Rooms, func(i, j int) bool { return report.Rooms[i].Room < report.Rooms[j].Room })

	for description, count := range unmapped {
		report.Unmapped = append(report.Unmapped, UnmappedDescription{Description: description, Count: count})
	}
	sort.Slice(report.Unmapped, func(i, j int) bool {
		if report.Unmapped[i].Count != report.Unmapped[j].Count {
			return report.Unmapped[i].Count > report.Unmapped[j].Count
		}
		return report.Unmapped[i].Description < report.Unmapped[j].Description
	})

	return report
}
