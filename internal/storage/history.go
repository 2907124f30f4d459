package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

var historyHeader = []string{"time", "price", "r", "z", "alert"}

// HistoryStore is the append-only run log.
type HistoryStore interface {
	Append(record HistoryRecord) error
	ListRecent(limit int) ([]HistoryRecord, error)
	ListBetween(from, to time.Time) ([]HistoryRecord, error)
}

// FileHistoryStore appends history rows to a CSV file, writing the header
// when it creates the file.
type FileHistoryStore struct {
	path string
}

// NewFileHistoryStore wires a history store over the given path.
func NewFileHistoryStore(path string) *FileHistoryStore {
	return &FileHistoryStore{path: path}
}

// Append adds one row. Rows are never rewritten.
func (h *FileHistoryStore) Append(record HistoryRecord) error {
	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	_, statErr := os.Stat(h.path)
	isNew := errors.Is(statErr, fs.ErrNotExist)

	file, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open history file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if isNew {
		if err := writer.Write(historyHeader); err != nil {
			return fmt.Errorf("write history header: %w", err)
		}
	}
	if err := writer.Write(encodeRecord(record)); err != nil {
		return fmt.Errorf("write history row: %w", err)
	}
	writer.Flush()
	return writer.Error()
}

// ListRecent returns up to limit rows, newest first.
func (h *FileHistoryStore) ListRecent(limit int) ([]HistoryRecord, error) {
	records, err := h.readAll()
	if err != nil {
		return nil, err
	}

	// Rows are appended chronologically; reverse and cut.
	out := make([]HistoryRecord, 0, limit)
	for i := len(records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, records[i])
	}
	return out, nil
}

// ListBetween returns rows with from <= time < to, in file order.
func (h *FileHistoryStore) ListBetween(from, to time.Time) ([]HistoryRecord, error) {
	records, err := h.readAll()
	if err != nil {
		return nil, err
	}

	out := make([]HistoryRecord, 0, len(records))
	for _, rec := range records {
		if rec.Time.Before(from) || !rec.Time.Before(to) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (h *FileHistoryStore) readAll() ([]HistoryRecord, error) {
	file, err := os.Open(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open history file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read history file: %w", err)
	}

	records := make([]HistoryRecord, 0, len(rows))
	for i, row := range rows {
		if i == 0 && len(row) > 0 && row[0] == historyHeader[0] {
			continue
		}
		rec, err := decodeRecord(row)
		if err != nil {
			return nil, fmt.Errorf("history row %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func encodeRecord(record HistoryRecord) []string {
	return []string{
		record.Time.UTC().Format(time.RFC3339),
		record.Price.String(),
		formatOptional(record.Return),
		formatOptional(record.Z),
		record.Alert,
	}
}

func decodeRecord(row []string) (HistoryRecord, error) {
	if len(row) != len(historyHeader) {
		return HistoryRecord{}, fmt.Errorf("expected %d fields, got %d", len(historyHeader), len(row))
	}

	ts, err := time.Parse(time.RFC3339, row[0])
	if err != nil {
		return HistoryRecord{}, fmt.Errorf("parse time: %w", err)
	}
	price, err := decimal.NewFromString(row[1])
	if err != nil {
		return HistoryRecord{}, fmt.Errorf("parse price: %w", err)
	}
	r, err := parseOptional(row[2])
	if err != nil {
		return HistoryRecord{}, fmt.Errorf("parse r: %w", err)
	}
	z, err := parseOptional(row[3])
	if err != nil {
		return HistoryRecord{}, fmt.Errorf("parse z: %w", err)
	}

	return HistoryRecord{Time: ts, Price: price, Return: r, Z: z, Alert: row[4]}, nil
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func parseOptional(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

var _ HistoryStore = (*FileHistoryStore)(nil)
