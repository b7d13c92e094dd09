// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date format used in the CSV store.
const DateLayout = "2006-01-02"

// MetricsRecord is one calendar day's snapshot of GitHub metrics.
// It is the core domain entity of this application.
type MetricsRecord struct {
	Date       time.Time `json:"date"`
	Followers  int       `json:"followers"`
	TotalStars int       `json:"total_stars"`
}

// SameDay reports whether both records fall on the same calendar date.
func (r MetricsRecord) SameDay(other MetricsRecord) bool {
	y1, m1, d1 := r.Date.Date()
	y2, m2, d2 := other.Date.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// CSVRow encodes the record as a single CSV data row. The time of day is
// dropped; only the calendar date is persisted.
func (r MetricsRecord) CSVRow() string {
	return fmt.Sprintf("%s,%d,%d", r.Date.Format(DateLayout), r.Followers, r.TotalStars)
}

// ParseCSVRow decodes a single CSV data row into a MetricsRecord.
// A row must have exactly three fields: date, followers, total stars.
func ParseCSVRow(row string) (MetricsRecord, error) {
	parts := strings.Split(strings.TrimSpace(row), ",")
	if len(parts) != 3 {
		return MetricsRecord{}, fmt.Errorf("invalid csv row %q: expected 3 fields, got %d", row, len(parts))
	}

	date, err := time.Parse(DateLayout, parts[0])
	if err != nil {
		return MetricsRecord{}, fmt.Errorf("invalid date in csv row %q: %w", row, err)
	}
	followers, err := strconv.Atoi(parts[1])
	if err != nil {
		return MetricsRecord{}, fmt.Errorf("invalid followers count in csv row %q: %w", row, err)
	}
	totalStars, err := strconv.Atoi(parts[2])
	if err != nil {
		return MetricsRecord{}, fmt.Errorf("invalid star count in csv row %q: %w", row, err)
	}

	return MetricsRecord{Date: date, Followers: followers, TotalStars: totalStars}, nil
}

// GitHubUser holds the subset of a user profile the collector needs.
// It is transient and never persisted.
type GitHubUser struct {
	Username  string `json:"username"`
	Followers int    `json:"followers"`
}

// GitHubRepo holds the subset of a repository the collector needs.
// It is transient and never persisted.
type GitHubRepo struct {
	Name     string `json:"name"`
	Stars    int    `json:"stars"`
	IsPublic bool   `json:"is_public"`
}
