package flatfile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/stockpile-ims/stockpile/internal/shared"
)

// Table handles one CSV file as a whole-file load/save unit. There is no
// incremental append: Load reads the entire file into memory and Save
// rewrites it from scratch.
type Table struct {
	path   string
	header string
	logger *slog.Logger
}

// NewTable builds a Table for the given file path and exact header line.
func NewTable(path, header string, logger *slog.Logger) *Table {
	if logger == nil {
		logger = slog.Default()
	}
	return &Table{path: path, header: header, logger: logger}
}

// Path returns the backing file path.
func (t *Table) Path() string { return t.path }

// Load reads every record from the file. A missing file is not an error: the
// collection simply starts empty. The header line is verified
// case-insensitively; a mismatch logs a warning but parsing proceeds
// positionally. Blank lines and lines starting with '#' are skipped. Fields
// come back split but still escaped.
func (t *Table) Load(ctx context.Context) ([][]string, error) {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			t.logger.Info("data file not found, starting empty", slog.String("path", t.path))
			return nil, nil
		}
		return nil, fmt.Errorf("flatfile: read %s: %w: %v", t.path, shared.ErrPersistence, err)
	}

	rows := SplitRows(string(data))
	if len(rows) == 0 || strings.TrimSpace(rows[0]) == "" {
		t.logger.Warn("data file is empty", slog.String("path", t.path))
		return nil, nil
	}
	if !strings.EqualFold(strings.TrimSpace(rows[0]), t.header) {
		t.logger.Warn("header mismatch, attempting positional parse anyway",
			slog.String("path", t.path),
			slog.String("expected", t.header),
			slog.String("got", strings.TrimSpace(rows[0])))
	}

	var records [][]string
	for _, row := range rows[1:] {
		if strings.TrimSpace(row) == "" || strings.HasPrefix(row, "#") {
			continue
		}
		records = append(records, Split(row))
	}
	return records, nil
}

// Save rewrites the whole file: header first, then one encoded line per
// record. The parent directory is created when missing.
func (t *Table) Save(ctx context.Context, records [][]string) error {
	if dir := filepath.Dir(t.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("flatfile: mkdir %s: %w: %v", dir, shared.ErrPersistence, err)
		}
	}

	var b strings.Builder
	b.WriteString(t.header)
	b.WriteByte('\n')
	for _, rec := range records {
		b.WriteString(Encode(rec))
		b.WriteByte('\n')
	}
	if err := os.WriteFile(t.path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("flatfile: write %s: %w: %v", t.path, shared.ErrPersistence, err)
	}
	return nil
}
