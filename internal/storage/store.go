// Package storage owns the on-disk CSV time series of metrics records.
//
// The backing file is a plain three-column CSV with a fixed header row.
// One data row per calendar day; a same-day write replaces the last row
// via a full-file rewrite. The file is re-read on every query, which is
// fine at one-row-per-day growth. Concurrent writers against the same
// file are not guarded; last writer wins.
package storage

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/georgepearse/github-metrics/internal/domain"
)

// Header is the fixed first line of the backing file.
const Header = "date,followers,total_stars"

// Store manages reading and writing metrics records to a CSV file.
type Store struct {
	path   string
	logger *zap.Logger
}

// NewStore creates a store backed by the CSV file at path. The file is
// created lazily on first use.
func NewStore(path string, logger *zap.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Path returns the location of the backing file.
func (s *Store) Path() string {
	return s.path
}

// ensureFile creates the backing file with its header row, including any
// missing parent directories, if it does not exist yet.
func (s *Store) ensureFile() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat metrics file %s: %w", s.path, err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create data directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(s.path, []byte(Header+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to create metrics file %s: %w", s.path, err)
	}
	return nil
}

// Load reads all records from the backing file in file order. Rows that
// fail to parse are skipped with a warning; they never abort the read.
func (s *Store) Load() ([]domain.MetricsRecord, error) {
	if err := s.ensureFile(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open metrics file %s: %w", s.path, err)
	}
	defer f.Close()

	var records []domain.MetricsRecord
	scanner := bufio.NewScanner(f)
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if first {
			first = false // header row
			continue
		}
		if line == "" {
			continue
		}
		record, err := domain.ParseCSVRow(line)
		if err != nil {
			s.logger.Warn("skipping malformed row", zap.String("row", line), zap.Error(err))
			continue
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read metrics file %s: %w", s.path, err)
	}
	return records, nil
}

// AddRecord appends a record to the file. If the last stored record falls
// on the same calendar day it is replaced instead, keeping at most one
// record per day.
func (s *Store) AddRecord(record domain.MetricsRecord) error {
	records, err := s.Load()
	if err != nil {
		return err
	}
	if len(records) > 0 && records[len(records)-1].SameDay(record) {
		return s.UpdateLatestRecord(record)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open metrics file %s for append: %w", s.path, err)
	}
	if _, err := fmt.Fprintln(f, record.CSVRow()); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to metrics file %s: %w", s.path, err)
	}
	return f.Close()
}

// UpdateLatestRecord replaces the last stored record with the given one
// when both fall on the same calendar day, rewriting the whole file. On
// an empty store it degrades to AddRecord. A last record from a different
// day is left untouched.
func (s *Store) UpdateLatestRecord(record domain.MetricsRecord) error {
	records, err := s.Load()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return s.AddRecord(record)
	}
	if !records[len(records)-1].SameDay(record) {
		return nil
	}
	records[len(records)-1] = record
	return s.writeAll(records)
}

// writeAll rewrites the backing file from scratch: header plus one row
// per record.
func (s *Store) writeAll(records []domain.MetricsRecord) error {
	var b strings.Builder
	b.WriteString(Header + "\n")
	for _, record := range records {
		b.WriteString(record.CSVRow() + "\n")
	}
	if err := os.WriteFile(s.path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to rewrite metrics file %s: %w", s.path, err)
	}
	return nil
}

// LatestRecord returns the most recent record, or nil if the store is
// empty.
func (s *Store) LatestRecord() (*domain.MetricsRecord, error) {
	records, err := s.Load()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	latest := records[len(records)-1]
	return &latest, nil
}

// RecordsSince returns the records dated within the last daysAgo days.
func (s *Store) RecordsSince(daysAgo int) ([]domain.MetricsRecord, error) {
	records, err := s.Load()
	if err != nil {
		return nil, err
	}
	cutoff := time.Now().AddDate(0, 0, -daysAgo)
	var recent []domain.MetricsRecord
	for _, record := range records {
		if !record.Date.Before(cutoff) {
			recent = append(recent, record)
		}
	}
	return recent, nil
}
