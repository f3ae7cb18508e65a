package journal

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/token-launchpad/internal/launchpad"
)

// Record is one launch attempt as written to the journal.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	Wallet    string    `json:"wallet"`
	Mint      string    `json:"mint,omitempty"`
	Signature string    `json:"signature,omitempty"`
	Status    string    `json:"status"`
	Name      string    `json:"name,omitempty"`
	Symbol    string    `json:"symbol,omitempty"`
	Supply    string    `json:"supply,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// StatusRejected marks attempts that never reached the network.
const StatusRejected = "not_submitted"

// CSVHeaders returns the journal column names.
func CSVHeaders() []string {
	return []string{"timestamp", "wallet", "mint", "signature", "status", "name", "symbol", "supply", "error"}
}

func (r Record) ToCSV() []string {
	return []string{
		r.Timestamp.UTC().Format(time.RFC3339),
		r.Wallet, r.Mint, r.Signature, r.Status,
		r.Name, r.Symbol, r.Supply, r.Error,
	}
}

func fromCSV(row []string) (Record, error) {
	if len(row) != len(CSVHeaders()) {
		return Record{}, fmt.Errorf("expected %d columns, got %d", len(CSVHeaders()), len(row))
	}
	ts, err := time.Parse(time.RFC3339, row[0])
	if err != nil {
		return Record{}, fmt.Errorf("bad timestamp %q: %w", row[0], err)
	}
	return Record{
		Timestamp: ts,
		Wallet:    row[1], Mint: row[2], Signature: row[3], Status: row[4],
		Name: row[5], Symbol: row[6], Supply: row[7], Error: row[8],
	}, nil
}

// NewRecord describes the outcome of a CreateToken call.
func NewRecord(req launchpad.MintRequest, wallet string, res *launchpad.ConfirmationResult, err error) Record {
	r := Record{
		Timestamp: time.Now(),
		Wallet:    wallet,
		Status:    StatusRejected,
		Name:      req.Name,
		Symbol:    req.Symbol,
		Supply:    req.InitialSupply,
	}
	if res != nil {
		r.Mint = res.Mint.String()
		r.Signature = res.Signature.String()
		r.Status = string(res.Status)
	}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// Journal appends launch records to a CSV file.
type Journal struct {
	mu       sync.Mutex
	writer   *csv.Writer
	file     *os.File
	logger   *zap.Logger
	filePath string

	writtenRecords uint64
}

// Open opens or creates the journal and writes the header into an empty file.
func Open(filePath string, logger *zap.Logger) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	j := &Journal{
		writer:   csv.NewWriter(file),
		file:     file,
		logger:   logger.Named("journal"),
		filePath: filePath,
	}

	if stat.Size() == 0 {
		if err := j.writer.Write(CSVHeaders()); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		j.writer.Flush()
	}
	return j, nil
}

// Append writes r and flushes it to disk.
func (j *Journal) Append(r Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.writer.Write(r.ToCSV()); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	j.writer.Flush()
	if err := j.writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}
	if err := j.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}

	j.writtenRecords++
	j.logger.Debug("Launch recorded", zap.String("mint", r.Mint), zap.String("status", r.Status))
	return nil
}

// Close closes the journal file.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.writer.Flush()
	if err := j.writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error on close: %w", err)
	}
	if err := j.file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	j.logger.Debug("Journal closed",
		zap.String("file", j.filePath),
		zap.Uint64("writtenRecords", j.writtenRecords))
	return nil
}

// ReadAll loads every record from a journal file.
func ReadAll(filePath string) ([]Record, error) {
	file, err := os.Open(filepath.Clean(filePath))
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	var records []Record
	for line := 1; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		if line == 1 && len(row) > 0 && row[0] == CSVHeaders()[0] {
			continue
		}
		r, err := fromCSV(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, r)
	}
	return records, nil
}

// Summary counts records by status.
type Summary struct {
	Total     int            `json:"total"`
	Confirmed int            `json:"confirmed"`
	ByStatus  map[string]int `json:"by_status"`
	FirstAt   time.Time      `json:"first_at"`
	LastAt    time.Time      `json:"last_at"`
}

func Summarize(records []Record) Summary {
	s := Summary{Total: len(records), ByStatus: make(map[string]int)}
	for i, r := range records {
		s.ByStatus[r.Status]++
		if r.Status == string(launchpad.StatusConfirmed) {
			s.Confirmed++
		}
		if i == 0 || r.Timestamp.Before(s.FirstAt) {
			s.FirstAt = r.Timestamp
		}
		if r.Timestamp.After(s.LastAt) {
			s.LastAt = r.Timestamp
		}
	}
	return s
}

// ExportJSON writes records with a summary to outputPath.
func ExportJSON(records []Record, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	exportData := struct {
		ExportTime  time.Time `json:"export_time"`
		LaunchCount int       `json:"launch_count"`
		Launches    []Record  `json:"launches"`
		Summary     Summary   `json:"summary"`
	}{
		ExportTime:  time.Now(),
		LaunchCount: len(records),
		Launches:    records,
		Summary:     Summarize(records),
	}

	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
