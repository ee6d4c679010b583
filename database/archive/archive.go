// Package archive dumps and restores the application tables as a tar.gz
// of JSONL files plus a metadata.json manifest.
package archive

import (
	"archive/tar"
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"github.com/greencampus/facility-reports/config"
	"github.com/greencampus/facility-reports/database"
	"github.com/greencampus/facility-reports/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FormatVersion archive layout version
const FormatVersion = "1.0"

const (
	metadataFile     = "metadata.json"
	defaultBatchSize = 100
	maxLineBytes     = 64 << 20
)

// Metadata archive manifest
type Metadata struct {
	Version     string           `json:"version"`
	AppVersion  string           `json:"app_version"`
	Timestamp   time.Time        `json:"timestamp"`
	Database    string           `json:"database"`
	Tables      []string         `json:"tables"`
	RecordCount map[string]int64 `json:"record_count"`
}

// table dump and restore hooks for one model
type table struct {
	name    string
	dump    func(ctx context.Context, db *gorm.DB, w io.Writer) (int64, error)
	restore func(ctx context.Context, db *gorm.DB, r io.Reader, opts RestoreOptions) (restored, skipped int64, err error)
}

func newTable[T any](name string) table {
	identity := func(v *T) *T { return v }
	return convertedTable[T, T](name, identity, identity)
}

// convertedTable archives M through the record type R
func convertedTable[M any, R any](name string, toRecord func(*M) *R, fromRecord func(*R) *M) table {
	return table{
		name: name,
		dump: func(ctx context.Context, db *gorm.DB, w io.Writer) (int64, error) {
			return dumpRows(ctx, db, w, toRecord)
		},
		restore: func(ctx context.Context, db *gorm.DB, r io.Reader, opts RestoreOptions) (int64, int64, error) {
			return restoreRows(ctx, db, r, opts, fromRecord)
		},
	}
}

// userRecord keeps the password hash, which the API encoding of User omits
type userRecord struct {
	*models.User
	PasswordHash string `json:"passwordHash"`
}

func userToRecord(u *models.User) *userRecord {
	return &userRecord{User: u, PasswordHash: u.Password}
}

func userFromRecord(r *userRecord) *models.User {
	if r.User == nil {
		r.User = &models.User{}
	}
	r.User.Password = r.PasswordHash
	return r.User
}

// registry in dependency order: users before the entries that reference them
var registry = []table{
	convertedTable(models.User{}.TableName(), userToRecord, userFromRecord),
	newTable[models.WasteEntry](models.WasteEntry{}.TableName()),
	newTable[models.ResourceEntry](models.ResourceEntry{}.TableName()),
	newTable[models.SpaceEntry](models.SpaceEntry{}.TableName()),
}

// Tables names every archivable table
func Tables() []string {
	names := make([]string, len(registry))
	for i, t := range registry {
		names[i] = t.name
	}
	return names
}

func selectTables(names []string) ([]table, error) {
	if len(names) == 0 {
		return registry, nil
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[strings.TrimSpace(n)] = true
	}
	var out []table
	for _, t := range registry {
		if wanted[t.name] {
			out = append(out, t)
			delete(wanted, t.name)
		}
	}
	for n := range wanted {
		return nil, fmt.Errorf("unknown table: %s", n)
	}
	return out, nil
}

// Dump writes the selected tables (all when empty) to w
func Dump(ctx context.Context, db *gorm.DB, w io.Writer, dbType string, tables []string) (*Metadata, error) {
	selected, err := selectTables(tables)
	if err != nil {
		return nil, err
	}

	gzWriter := gzip.NewWriter(w)
	tarWriter := tar.NewWriter(gzWriter)

	meta := &Metadata{
		Version:     FormatVersion,
		AppVersion:  config.Version,
		Timestamp:   time.Now().UTC(),
		Database:    dbType,
		RecordCount: make(map[string]int64),
	}

	for _, t := range selected {
		var buf bytes.Buffer
		count, err := t.dump(ctx, db, &buf)
		if err != nil {
			return nil, fmt.Errorf("failed to dump %s: %w", t.name, err)
		}
		if err := writeEntry(tarWriter, t.name+".jsonl", buf.Bytes()); err != nil {
			return nil, err
		}
		meta.Tables = append(meta.Tables, t.name)
		meta.RecordCount[t.name] = count
		log.Printf("[Archive] Dumped %d records from %s", count, t.name)
	}

	manifest, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := writeEntry(tarWriter, metadataFile, manifest); err != nil {
		return nil, err
	}

	if err := tarWriter.Close(); err != nil {
		return nil, err
	}
	if err := gzWriter.Close(); err != nil {
		return nil, err
	}
	return meta, nil
}

func writeEntry(tw *tar.Writer, name string, data []byte) error {
	header := &tar.Header{
		Name:    name,
		Mode:    0644,
		Size:    int64(len(data)),
		ModTime: time.Now(),
	}
	if err := tw.WriteHeader(header); err != nil {
		return err
	}
	_, err := tw.Write(data)
	return err
}

func dumpRows[M any, R any](ctx context.Context, db *gorm.DB, w io.Writer, toRecord func(*M) *R) (int64, error) {
	encoder := json.NewEncoder(w)
	var count int64
	var batch []M
	result := db.WithContext(ctx).Order("id").FindInBatches(&batch, 500, func(tx *gorm.DB, _ int) error {
		for i := range batch {
			if err := encoder.Encode(toRecord(&batch[i])); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	return count, result.Error
}

// RestoreOptions 还原选项
type RestoreOptions struct {
	Tables    []string
	DryRun    bool
	Truncate  bool
	BatchSize int
}

// RestoreStats 还原统计
type RestoreStats struct {
	Metadata *Metadata
	Restored map[string]int64
	Skipped  map[string]int64
}

// Restore loads an archive written by Dump. Rows whose id or unique
// fields already exist are skipped, so restoring twice is harmless.
func Restore(ctx context.Context, db *gorm.DB, r io.Reader, opts RestoreOptions) (*RestoreStats, error) {
	selected, err := selectTables(opts.Tables)
	if err != nil {
		return nil, err
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}

	files, err := readEntries(r)
	if err != nil {
		return nil, err
	}
	raw, ok := files[metadataFile]
	if !ok {
		return nil, errors.New("archive has no metadata.json")
	}
	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	stats := &RestoreStats{
		Metadata: &meta,
		Restored: make(map[string]int64),
		Skipped:  make(map[string]int64),
	}

	if opts.Truncate && !opts.DryRun {
		if err := truncate(ctx, db, selected); err != nil {
			return nil, err
		}
	}

	for _, t := range selected {
		data, ok := files[t.name+".jsonl"]
		if !ok {
			continue
		}
		restored, skipped, err := t.restore(ctx, db, bytes.NewReader(data), opts)
		if err != nil {
			return stats, fmt.Errorf("failed to restore %s: %w", t.name, err)
		}
		stats.Restored[t.name] = restored
		stats.Skipped[t.name] = skipped
		log.Printf("[Archive] Restored %d records to %s (skipped %d)", restored, t.name, skipped)
	}
	return stats, nil
}

// readEntries loads every regular file of the archive, keyed by base name
func readEntries(r io.Reader) (map[string][]byte, error) {
	gzReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("not a gzip archive: %w", err)
	}
	defer func() { _ = gzReader.Close() }()

	files := make(map[string][]byte)
	tarReader := tar.NewReader(gzReader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		data, err := io.ReadAll(tarReader)
		if err != nil {
			return nil, err
		}
		files[path.Base(header.Name)] = data
	}
	return files, nil
}

// truncate empties tables in reverse dependency order
func truncate(ctx context.Context, db *gorm.DB, tables []table) error {
	return database.TransactionWithContext(ctx, db, func(tx *gorm.DB) error {
		for i := len(tables) - 1; i >= 0; i-- {
			log.Printf("[Archive] Truncating table: %s", tables[i].name)
			if err := tx.Exec("DELETE FROM " + tables[i].name).Error; err != nil {
				return fmt.Errorf("failed to truncate %s: %w", tables[i].name, err)
			}
		}
		return nil
	})
}

func restoreRows[M any, R any](ctx context.Context, db *gorm.DB, r io.Reader, opts RestoreOptions, fromRecord func(*R) *M) (int64, int64, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var restored, skipped int64
	batch := make([]M, 0, opts.BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if opts.DryRun {
			restored += int64(len(batch))
			batch = batch[:0]
			return nil
		}
		err := database.TransactionWithContext(ctx, db, func(tx *gorm.DB) error {
			result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&batch)
			if result.Error != nil {
				return result.Error
			}
			restored += result.RowsAffected
			skipped += int64(len(batch)) - result.RowsAffected
			return nil
		})
		batch = batch[:0]
		return err
	}

	line := 0
	for scanner.Scan() {
		line++
		if len(bytes.TrimSpace(scanner.Bytes())) == 0 {
			continue
		}
		record := new(R)
		if err := json.Unmarshal(scanner.Bytes(), record); err != nil {
			return restored, skipped, fmt.Errorf("line %d: %w", line, err)
		}
		batch = append(batch, *fromRecord(record))
		if len(batch) >= opts.BatchSize {
			if err := flush(); err != nil {
				return restored, skipped, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return restored, skipped, fmt.Errorf("error reading JSONL: %w", err)
	}
	return restored, skipped, flush()
}
