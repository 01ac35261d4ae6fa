package backup

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/skladapp/sklad-backend/internal/parts"
	pkgerrors "github.com/skladapp/sklad-backend/pkg/errors"
	"github.com/skladapp/sklad-backend/pkg/metrics"
)

const (
	snapshotVersion = "1.0"
	defaultLabel    = "backup"
	csvExportPrefix = "parts_export_"
)

// csvHeader is the fixed export column set. Import locates columns by
// substring match against these names, so reordered or re-spelled
// spreadsheet headers still round-trip.
var csvHeader = []string{
	"ID", "Артикул", "Назва", "Виробник", "Категорія", "Нова",
	"Кількість", "Ціна", "Опис", "Сумісні автомобілі",
	"Дата створення", "Дата оновлення",
}

var (
	labelSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	backupStamp    = regexp.MustCompile(`_(\d{4}-\d{2}-\d{2}T\d{2}-\d{2}-\d{2})`)
)

// PartsStore is the slice of the parts service the backup engine needs.
type PartsStore interface {
	GetAllParts(ctx context.Context) ([]parts.Part, error)
	AddPart(ctx context.Context, record parts.NewPart) (int64, error)
	ReplaceAll(ctx context.Context, records []parts.Part) (int, error)
	HistoryIDs(ctx context.Context) ([]int64, error)
	FavoriteIDs(ctx context.Context) ([]int64, error)
	RestoreState(ctx context.Context, records []parts.Part, history, favorites []int64) error
}

// Snapshot is the on-disk backup document.
type Snapshot struct {
	Version   string       `json:"version"`
	Timestamp time.Time    `json:"timestamp"`
	Parts     []parts.Part `json:"parts"`
}

// Info describes one stored backup file.
type Info struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

// Dump is the full-store exchange document: the collection plus the id
// lists that hang off it.
type Dump struct {
	Parts      []parts.Part `json:"parts"`
	History    []int64      `json:"history"`
	Favorites  []int64      `json:"favorites"`
	ExportedAt time.Time    `json:"exportedAt"`
}

// ImportSummary reports what a CSV import did.
type ImportSummary struct {
	Imported int  `json:"imported"`
	Skipped  int  `json:"skipped"`
	Replaced bool `json:"replaced"`
}

// Service is the backup and exchange surface.
type Service interface {
	CreateBackup(ctx context.Context, label string) (Info, error)
	ListBackups(ctx context.Context) ([]Info, error)
	RestoreFromBackup(ctx context.Context, name string) (int, error)
	DeleteBackup(ctx context.Context, name string) error

	ExportToCSV(ctx context.Context) (string, error)
	ImportFromCSV(ctx context.Context, r io.Reader, replaceExisting bool) (ImportSummary, error)

	ExportData(ctx context.Context) (Dump, error)
	ImportData(ctx context.Context, dump Dump) (int, error)
}

// ServiceParams groups dependencies for the backup service.
type ServiceParams struct {
	Dir     string
	Store   PartsStore
	Metrics *metrics.StoreMetrics
}

type service struct {
	dir     string
	store   PartsStore
	metrics *metrics.StoreMetrics
	now     func() time.Time
}

// NewService builds the backup service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Dir == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "backup directory is required")
	}
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "parts store is required")
	}
	return &service{
		dir:     params.Dir,
		store:   params.Store,
		metrics: params.Metrics,
		now:     time.Now,
	}, nil
}

func (s *service) CreateBackup(ctx context.Context, label string) (Info, error) {
	info, err := s.createBackup(ctx, label)
	s.metrics.Record("create_backup", err)
	return info, err
}

func (s *service) createBackup(ctx context.Context, label string) (Info, error) {
	records, err := s.store.GetAllParts(ctx)
	if err != nil {
		return Info{}, err
	}

	now := s.now().UTC()
	snapshot := Snapshot{
		Version:   snapshotVersion,
		Timestamp: now,
		Parts:     records,
	}
	payload, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return Info{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to encode backup snapshot")
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Info{}, pkgerrors.Wrap(pkgerrors.CodeStorageIO, err, "failed to create backup directory")
	}

	name := fmt.Sprintf("%s_%s.json", sanitizeLabel(label), stampToken(now))
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return Info{}, pkgerrors.Wrap(pkgerrors.CodeStorageIO, err, "failed to write backup file")
	}

	return Info{
		Name:      name,
		Path:      path,
		Size:      int64(len(payload)),
		CreatedAt: now,
	}, nil
}

func (s *service) ListBackups(ctx context.Context) ([]Info, error) {
	infos, err := s.listBackups()
	s.metrics.Record("list_backups", err)
	return infos, err
}

func (s *service) listBackups() ([]Info, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorageIO, err, "failed to read backup directory")
	}

	infos := make([]Info, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeStorageIO, err, "failed to stat backup file")
		}
		infos = append(infos, Info{
			Name:      entry.Name(),
			Path:      filepath.Join(s.dir, entry.Name()),
			Size:      fi.Size(),
			CreatedAt: backupDate(entry.Name(), fi.ModTime()),
		})
	}

	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	return infos, nil
}

func (s *service) RestoreFromBackup(ctx context.Context, name string) (int, error) {
	count, err := s.restore(ctx, name)
	s.metrics.Record("restore_backup", err)
	return count, err
}

func (s *service) restore(ctx context.Context, name string) (int, error) {
	payload, err := s.readBackup(name)
	if err != nil {
		return 0, err
	}

	var snapshot Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInvalidFormat, err, "backup file is not valid JSON")
	}
	if snapshot.Version == "" || snapshot.Parts == nil {
		return 0, pkgerrors.New(pkgerrors.CodeInvalidFormat, "backup file is missing version or parts")
	}

	return s.store.ReplaceAll(ctx, snapshot.Parts)
}

func (s *service) DeleteBackup(ctx context.Context, name string) error {
	err := s.deleteBackup(name)
	s.metrics.Record("delete_backup", err)
	return err
}

func (s *service) deleteBackup(name string) error {
	path, err := s.backupPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "backup not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeStorageIO, err, "failed to delete backup file")
	}
	return nil
}

func (s *service) ExportToCSV(ctx context.Context) (string, error) {
	path, err := s.exportCSV(ctx)
	s.metrics.Record("export_csv", err)
	return path, err
}

func (s *service) exportCSV(ctx context.Context) (string, error) {
	records, err := s.store.GetAllParts(ctx)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(csvHeader); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to write CSV header")
	}
	for _, p := range records {
		if err := w.Write(csvRow(p)); err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to write CSV row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to flush CSV")
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeStorageIO, err, "failed to create backup directory")
	}
	name := fmt.Sprintf("%s%s.csv", csvExportPrefix, stampToken(s.now().UTC()))
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeStorageIO, err, "failed to write CSV export")
	}
	return path, nil
}

func (s *service) ImportFromCSV(ctx context.Context, r io.Reader, replaceExisting bool) (ImportSummary, error) {
	summary, err := s.importCSV(ctx, r, replaceExisting)
	s.metrics.Record("import_csv", err)
	return summary, err
}

func (s *service) importCSV(ctx context.Context, r io.Reader, replaceExisting bool) (ImportSummary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return ImportSummary{}, pkgerrors.Wrap(pkgerrors.CodeInvalidFormat, err, "failed to parse CSV")
	}
	if len(rows) == 0 {
		return ImportSummary{}, pkgerrors.New(pkgerrors.CodeInvalidFormat, "CSV file is empty")
	}

	cols := locateColumns(rows[0])
	if cols.article < 0 || cols.name < 0 {
		return ImportSummary{}, pkgerrors.New(pkgerrors.CodeInvalidFormat,
			"CSV header must contain article and name columns")
	}

	incoming := make([]parts.NewPart, 0, len(rows)-1)
	skipped := 0
	for _, row := range rows[1:] {
		record, ok := parseRow(row, cols)
		if !ok {
			skipped++
			continue
		}
		if err := record.Validate(); err != nil {
			skipped++
			continue
		}
		incoming = append(incoming, record)
	}

	summary := ImportSummary{Skipped: skipped, Replaced: replaceExisting}
	if replaceExisting {
		replacement := make([]parts.Part, 0, len(incoming))
		for _, record := range incoming {
			replacement = append(replacement, parts.Part{
				ArticleNumber:  record.ArticleNumber,
				Name:           record.Name,
				Manufacturer:   record.Manufacturer,
				Category:       record.Category,
				IsNew:          record.IsNew,
				Quantity:       record.Quantity,
				Price:          record.Price,
				Description:    record.Description,
				PhotoPath:      record.PhotoPath,
				CompatibleCars: record.CompatibleCars,
			})
		}
		count, err := s.store.ReplaceAll(ctx, replacement)
		if err != nil {
			return ImportSummary{}, err
		}
		summary.Imported = count
		return summary, nil
	}

	for _, record := range incoming {
		if _, err := s.store.AddPart(ctx, record); err != nil {
			return ImportSummary{}, err
		}
		summary.Imported++
	}
	return summary, nil
}

func (s *service) ExportData(ctx context.Context) (Dump, error) {
	dump, err := s.exportData(ctx)
	s.metrics.Record("export_data", err)
	return dump, err
}

func (s *service) exportData(ctx context.Context) (Dump, error) {
	records, err := s.store.GetAllParts(ctx)
	if err != nil {
		return Dump{}, err
	}
	history, err := s.store.HistoryIDs(ctx)
	if err != nil {
		return Dump{}, err
	}
	favorites, err := s.store.FavoriteIDs(ctx)
	if err != nil {
		return Dump{}, err
	}
	return Dump{
		Parts:      records,
		History:    history,
		Favorites:  favorites,
		ExportedAt: s.now().UTC(),
	}, nil
}

func (s *service) ImportData(ctx context.Context, dump Dump) (int, error) {
	count, err := s.importData(ctx, dump)
	s.metrics.Record("import_data", err)
	return count, err
}

func (s *service) importData(ctx context.Context, dump Dump) (int, error) {
	if dump.Parts == nil {
		return 0, pkgerrors.New(pkgerrors.CodeInvalidFormat, "data dump is missing parts")
	}
	if err := s.store.RestoreState(ctx, dump.Parts, dump.History, dump.Favorites); err != nil {
		return 0, err
	}
	return len(dump.Parts), nil
}

// readBackup loads a named backup from the backup directory only. The
// name is reduced to its base so callers cannot point it elsewhere.
func (s *service) readBackup(name string) ([]byte, error) {
	path, err := s.backupPath(name)
	if err != nil {
		return nil, err
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "backup not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorageIO, err, "failed to read backup file")
	}
	return payload, nil
}

func (s *service) backupPath(name string) (string, error) {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "backup name is required")
	}
	return filepath.Join(s.dir, base), nil
}

func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return defaultLabel
	}
	return labelSanitizer.ReplaceAllString(label, "_")
}

// stampToken renders a timestamp safe for filenames on every platform.
func stampToken(t time.Time) string {
	return strings.NewReplacer(":", "-", ".", "-").Replace(t.Format(time.RFC3339))
}

// backupDate recovers the creation time embedded in the filename,
// falling back to the file's modification time for foreign files.
func backupDate(name string, fallback time.Time) time.Time {
	match := backupStamp.FindStringSubmatch(name)
	if match == nil {
		return fallback
	}
	parsed, err := time.Parse("2006-01-02T15-04-05", match[1])
	if err != nil {
		return fallback
	}
	return parsed.UTC()
}

func csvRow(p parts.Part) []string {
	condition := "Ні"
	if p.IsNew {
		condition = "Так"
	}
	description := ""
	if p.Description != nil {
		description = *p.Description
	}
	return []string{
		strconv.FormatInt(p.ID, 10),
		p.ArticleNumber,
		p.Name,
		p.Manufacturer,
		p.Category,
		condition,
		strconv.Itoa(p.Quantity),
		strconv.FormatFloat(p.Price, 'f', -1, 64),
		description,
		strings.Join(p.CompatibleCars, ", "),
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
	}
}

// columnIndexes holds the located header positions; -1 means absent.
type columnIndexes struct {
	article, name, manufacturer, category int
	isNew, quantity, price, description   int
	cars                                  int
}

// locateColumns finds each known column by case-insensitive substring
// match so lightly edited spreadsheet headers still import.
func locateColumns(header []string) columnIndexes {
	cols := columnIndexes{
		article: -1, name: -1, manufacturer: -1, category: -1,
		isNew: -1, quantity: -1, price: -1, description: -1, cars: -1,
	}
	for i, cell := range header {
		c := strings.ToLower(strings.TrimSpace(cell))
		switch {
		case strings.Contains(c, strings.ToLower("Артикул")):
			cols.article = i
		case strings.Contains(c, strings.ToLower("Назва")):
			cols.name = i
		case strings.Contains(c, strings.ToLower("Виробник")):
			cols.manufacturer = i
		case strings.Contains(c, strings.ToLower("Категорія")):
			cols.category = i
		case strings.Contains(c, strings.ToLower("Нова")):
			cols.isNew = i
		case strings.Contains(c, strings.ToLower("Кількість")):
			cols.quantity = i
		case strings.Contains(c, strings.ToLower("Ціна")):
			cols.price = i
		case strings.Contains(c, strings.ToLower("Опис")):
			cols.description = i
		case strings.Contains(c, strings.ToLower("автомобілі")):
			cols.cars = i
		}
	}
	return cols
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRow turns one CSV row into a candidate record. Rows without both
// an article number and a name are unusable and reported as skipped.
func parseRow(row []string, cols columnIndexes) (parts.NewPart, bool) {
	article := cell(row, cols.article)
	name := cell(row, cols.name)
	if article == "" || name == "" {
		return parts.NewPart{}, false
	}

	record := parts.NewPart{
		ArticleNumber: article,
		Name:          name,
		Manufacturer:  cell(row, cols.manufacturer),
		Category:      cell(row, cols.category),
		IsNew:         strings.EqualFold(cell(row, cols.isNew), "Так"),
	}
	if record.Manufacturer == "" {
		record.Manufacturer = "Невідомий"
	}
	if record.Category == "" {
		record.Category = "інше"
	}

	if q := cell(row, cols.quantity); q != "" {
		if parsed, err := strconv.Atoi(q); err == nil {
			record.Quantity = parsed
		}
	}
	if p := cell(row, cols.price); p != "" {
		if parsed, err := strconv.ParseFloat(strings.ReplaceAll(p, ",", "."), 64); err == nil {
			record.Price = parsed
		}
	}
	if d := cell(row, cols.description); d != "" {
		record.Description = &d
	}
	if cars := cell(row, cols.cars); cars != "" {
		for _, car := range strings.Split(cars, ",") {
			if car = strings.TrimSpace(car); car != "" {
				record.CompatibleCars = append(record.CompatibleCars, car)
			}
		}
	}
	return record, true
}
