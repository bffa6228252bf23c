package data

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/common"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	"forecast-compare/internal/model"
	"forecast-compare/internal/schema"
)

const parallelism = 4

// Row layouts of the raw snapshots. Timestamps are stored as UTC epoch
// milliseconds.

type enforRow struct {
	ForecastTime int64   `parquet:"name=forecast_time, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	ValueTime    int64   `parquet:"name=value_time, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	AssetKey     string  `parquet:"name=asset_key, type=BYTE_ARRAY, convertedtype=UTF8"`
	ForecastType string  `parquet:"name=forecast_type, type=BYTE_ARRAY, convertedtype=UTF8"`
	CorPower     float64 `parquet:"name=cor_power, type=DOUBLE"`
}

type eqRow struct {
	ForecastTime int64   `parquet:"name=forecast_time, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	ValueTime    int64   `parquet:"name=value_time, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	Tag          string  `parquet:"name=tag, type=BYTE_ARRAY, convertedtype=UTF8"`
	Commodity    string  `parquet:"name=commodity, type=BYTE_ARRAY, convertedtype=UTF8"`
	Location     string  `parquet:"name=location, type=BYTE_ARRAY, convertedtype=UTF8"`
	Value        float64 `parquet:"name=value, type=DOUBLE"`
}

type actualRow struct {
	DeliveryStart int64    `parquet:"name=delivery_start, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	BiddingZone   string   `parquet:"name=bidding_zone, type=BYTE_ARRAY, convertedtype=UTF8"`
	UpdatedAt     int64    `parquet:"name=updated_at, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	Solar         *float64 `parquet:"name=solar, type=DOUBLE, repetitiontype=OPTIONAL"`
	WindOnshore   *float64 `parquet:"name=wind_onshore, type=DOUBLE, repetitiontype=OPTIONAL"`
	WindOffshore  *float64 `parquet:"name=wind_offshore, type=DOUBLE, repetitiontype=OPTIONAL"`
	Load          *float64 `parquet:"name=load, type=DOUBLE, repetitiontype=OPTIONAL"`
}

type longRow struct {
	ForecastTime int64   `parquet:"name=forecast_time, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	ValueTime    int64   `parquet:"name=value_time, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	BiddingZone  string  `parquet:"name=bidding_zone, type=BYTE_ARRAY, convertedtype=UTF8"`
	Production   string  `parquet:"name=production, type=BYTE_ARRAY, convertedtype=UTF8"`
	Value        float64 `parquet:"name=value, type=DOUBLE"`
}

func millis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

// Compression maps a configured codec name onto a parquet codec.
func Compression(name string) (parquet.CompressionCodec, error) {
	switch strings.ToUpper(name) {
	case "SNAPPY", "":
		return parquet.CompressionCodec_SNAPPY, nil
	case "GZIP":
		return parquet.CompressionCodec_GZIP, nil
	case "NONE":
		return parquet.CompressionCodec_UNCOMPRESSED, nil
	default:
		return 0, fmt.Errorf("unsupported compression type: %s", name)
	}
}

// SnapshotStore reads and writes the parquet snapshots under one data
// directory.
type SnapshotStore struct {
	Dir   string
	Codec parquet.CompressionCodec
}

// NewSnapshotStore returns a store rooted at dir.
func NewSnapshotStore(dir string, compression string) (*SnapshotStore, error) {
	codec, err := Compression(compression)
	if err != nil {
		return nil, err
	}
	return &SnapshotStore{Dir: dir, Codec: codec}, nil
}

// Path resolves a snapshot name relative to the store's directory.
func (s *SnapshotStore) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.Dir, name)
}

// Exists reports whether the named snapshot file or directory is present.
func (s *SnapshotStore) Exists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}

func (s *SnapshotStore) WriteEnfor(name string, records []model.EnforRecord) error {
	rows := make([]enforRow, len(records))
	for i, r := range records {
		rows[i] = enforRow{millis(r.ForecastTime), millis(r.ValueTime), r.AssetKey, r.ForecastType, r.CorPower}
	}
	return writeRows(s.Path(name), rows, s.Codec)
}

func (s *SnapshotStore) ReadEnfor(name string) ([]model.EnforRecord, error) {
	rows, err := readRowsAt[enforRow](s.Path(name))
	if err != nil {
		return nil, err
	}
	out := make([]model.EnforRecord, len(rows))
	for i, r := range rows {
		out[i] = model.EnforRecord{
			ForecastTime: fromMillis(r.ForecastTime),
			ValueTime:    fromMillis(r.ValueTime),
			AssetKey:     r.AssetKey,
			ForecastType: r.ForecastType,
			CorPower:     r.CorPower,
		}
	}
	return out, nil
}

func (s *SnapshotStore) WriteEQ(name string, records []model.EQRecord) error {
	rows := make([]eqRow, len(records))
	for i, r := range records {
		rows[i] = eqRow{millis(r.ForecastTime), millis(r.ValueTime), r.Tag, r.Commodity, r.Location, r.Value}
	}
	return writeRows(s.Path(name), rows, s.Codec)
}

// ReadEQ reads a single file or every .parquet file in a directory.
func (s *SnapshotStore) ReadEQ(name string) ([]model.EQRecord, error) {
	rows, err := readRowsAt[eqRow](s.Path(name))
	if err != nil {
		return nil, err
	}
	out := make([]model.EQRecord, len(rows))
	for i, r := range rows {
		out[i] = model.EQRecord{
			ForecastTime: fromMillis(r.ForecastTime),
			ValueTime:    fromMillis(r.ValueTime),
			Tag:          r.Tag,
			Commodity:    r.Commodity,
			Location:     r.Location,
			Value:        r.Value,
		}
	}
	return out, nil
}

func (s *SnapshotStore) WriteActuals(name string, records []model.RawActual) error {
	rows := make([]actualRow, len(records))
	for i, r := range records {
		rows[i] = actualRow{
			DeliveryStart: millis(r.DeliveryStart),
			BiddingZone:   r.BiddingZone,
			UpdatedAt:     millis(r.UpdatedAt),
			Solar:         r.Solar,
			WindOnshore:   r.WindOnshore,
			WindOffshore:  r.WindOffshore,
			Load:          r.Load,
		}
	}
	return writeRows(s.Path(name), rows, s.Codec)
}

func (s *SnapshotStore) ReadActuals(name string) ([]model.RawActual, error) {
	rows, err := readRowsAt[actualRow](s.Path(name))
	if err != nil {
		return nil, err
	}
	out := make([]model.RawActual, len(rows))
	for i, r := range rows {
		out[i] = model.RawActual{
			DeliveryStart: fromMillis(r.DeliveryStart),
			BiddingZone:   r.BiddingZone,
			UpdatedAt:     fromMillis(r.UpdatedAt),
			Solar:         r.Solar,
			WindOnshore:   r.WindOnshore,
			WindOffshore:  r.WindOffshore,
			Load:          r.Load,
		}
	}
	return out, nil
}

// WriteLong stores long-form forecast rows keyed by bidding zone.
func (s *SnapshotStore) WriteLong(name string, records []model.LongRow) error {
	rows := make([]longRow, len(records))
	for i, r := range records {
		rows[i] = longRow{millis(r.ForecastTime), millis(r.ValueTime), r.Key, r.Production, r.Value}
	}
	return writeRows(s.Path(name), rows, s.Codec)
}

func (s *SnapshotStore) ReadLong(name string) ([]model.LongRow, error) {
	rows, err := readRowsAt[longRow](s.Path(name))
	if err != nil {
		return nil, err
	}
	out := make([]model.LongRow, len(rows))
	for i, r := range rows {
		out[i] = model.LongRow{
			ForecastTime: fromMillis(r.ForecastTime),
			ValueTime:    fromMillis(r.ValueTime),
			Key:          r.BiddingZone,
			Production:   r.Production,
			Value:        r.Value,
		}
	}
	return out, nil
}

// columnNamesKey is the file metadata entry holding the production column
// names as a JSON array, in schema order.
const columnNamesKey = "forecast_compare.columns"

// Column names parquet-go's metadata parser accepts unchanged.
var plainColumn = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// schemaNames maps production columns onto names that are safe in a
// parquet-go metadata string. Plain names are kept; anything else gets a
// positional column_N name that does not clash with a kept name.
func schemaNames(cols []string) []string {
	taken := make(map[string]bool, len(cols))
	for _, c := range cols {
		if plainColumn.MatchString(c) {
			taken[strings.ToLower(c)] = true
		}
	}
	out := make([]string, len(cols))
	for i, c := range cols {
		if plainColumn.MatchString(c) {
			out[i] = c
			continue
		}
		name := "column_" + strconv.Itoa(i)
		for taken[name] {
			name += "_"
		}
		taken[name] = true
		out[i] = name
	}
	return out
}

// WriteWide stores a canonical table. Absent cells are written as nulls
// and a zero forecast time (actuals tables) as a null forecast_time. The
// production column names are kept verbatim in the file metadata, so names
// with commas, quotes or spaces survive a round trip.
func (s *SnapshotStore) WriteWide(name string, t *model.WideTable) error {
	path := s.Path(name)
	names := schemaNames(t.Columns)
	md := []string{
		"name=" + schema.ForecastTimeCol + ", type=INT64, convertedtype=TIMESTAMP_MILLIS, repetitiontype=OPTIONAL",
		"name=" + schema.ValueTimeCol + ", type=INT64, convertedtype=TIMESTAMP_MILLIS",
		"name=" + t.KeyColumn + ", type=BYTE_ARRAY, convertedtype=UTF8",
	}
	for _, col := range names {
		md = append(md, "name="+col+", type=DOUBLE, repetitiontype=OPTIONAL")
	}
	original, err := json.Marshal(t.Columns)
	if err != nil {
		return fmt.Errorf("failed to encode column names: %w", err)
	}

	err = writeAtomic(path, func(fw source.ParquetFile) error {
		pw, err := writer.NewCSVWriter(md, fw, parallelism)
		if err != nil {
			return fmt.Errorf("failed to create parquet writer: %w", err)
		}
		pw.CompressionType = s.Codec
		value := string(original)
		pw.Footer.KeyValueMetadata = append(pw.Footer.KeyValueMetadata,
			&parquet.KeyValue{Key: columnNamesKey, Value: &value})

		for _, row := range t.Rows {
			rec := make([]interface{}, 0, len(md))
			if row.ForecastTime.IsZero() {
				rec = append(rec, nil)
			} else {
				rec = append(rec, millis(row.ForecastTime))
			}
			rec = append(rec, millis(row.ValueTime), row.Key)
			for _, col := range t.Columns {
				if v, ok := row.Values[col]; ok {
					rec = append(rec, v)
				} else {
					rec = append(rec, nil)
				}
			}
			if err := pw.Write(rec); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}
		return stopWriter(pw.WriteStop)
	})
	if err != nil {
		return err
	}
	log.Printf("[Snapshot] Wrote %d rows x %d columns to %s", len(t.Rows), len(t.Columns), path)
	return nil
}

// writeAtomic writes into a temporary file next to path and renames it over
// path only once write succeeded, so a failed write leaves the previous
// snapshot in place.
func writeAtomic(path string, write func(source.ParquetFile) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp := path + ".tmp"
	fw, err := local.NewLocalFileWriter(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}
	if err := write(fw); err != nil {
		fw.Close()
		os.Remove(tmp)
		return err
	}
	if err := fw.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// storedColumnNames returns the production column names recorded by
// WriteWide, or nil for files without them.
func storedColumnNames(footer *parquet.FileMetaData) ([]string, error) {
	for _, kv := range footer.KeyValueMetadata {
		if kv == nil || kv.Key != columnNamesKey || kv.Value == nil {
			continue
		}
		var cols []string
		if err := json.Unmarshal([]byte(*kv.Value), &cols); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", columnNamesKey, err)
		}
		return cols, nil
	}
	return nil, nil
}

// ReadWide loads a canonical table written by WriteWide. Timestamps are
// returned in loc.
func (s *SnapshotStore) ReadWide(name string, loc *time.Location) (*model.WideTable, error) {
	path := s.Path(name)
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetColumnReader(fr, parallelism)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet footer of %s: %w", path, err)
	}
	defer pr.ReadStop()

	n := pr.GetNumRows()
	root := pr.SchemaHandler.GetRootExName()
	read := func(col string) ([]interface{}, error) {
		vals, _, _, err := pr.ReadColumnByPath(common.ReformPathStr(root+"."+col), n)
		if err != nil {
			return nil, fmt.Errorf("failed to read column %s of %s: %w", col, path, err)
		}
		return vals, nil
	}

	var names []string
	for _, info := range pr.SchemaHandler.Infos[1:] {
		names = append(names, info.ExName)
	}
	keyColumn := ""
	for _, name := range names {
		if name == schema.BiddingZoneCol || name == schema.TagCol {
			keyColumn = name
		}
	}
	if keyColumn == "" {
		return nil, fmt.Errorf("%s has neither %s nor %s column", path, schema.BiddingZoneCol, schema.TagCol)
	}

	stored, err := storedColumnNames(pr.Footer)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	display := make(map[string]string, len(names))
	i := 0
	for _, name := range names {
		if name == schema.ForecastTimeCol || name == schema.ValueTimeCol || name == keyColumn {
			continue
		}
		display[name] = name
		if i < len(stored) {
			display[name] = stored[i]
		}
		i++
	}

	t := model.NewWideTable(keyColumn)
	t.Rows = make([]model.WideRow, n)
	for i := range t.Rows {
		t.Rows[i].Values = make(map[string]float64)
	}
	if loc == nil {
		loc = time.UTC
	}

	for _, name := range names {
		if n == 0 {
			if col, ok := display[name]; ok {
				t.AddColumn(col)
			}
			continue
		}
		vals, err := read(name)
		if err != nil {
			return nil, err
		}
		switch name {
		case schema.ForecastTimeCol, schema.ValueTimeCol:
			for i, v := range vals {
				ms, ok := v.(int64)
				if !ok {
					continue
				}
				ts := time.UnixMilli(ms).In(loc)
				if name == schema.ForecastTimeCol {
					t.Rows[i].ForecastTime = ts
				} else {
					t.Rows[i].ValueTime = ts
				}
			}
		case keyColumn:
			for i, v := range vals {
				if s, ok := v.(string); ok {
					t.Rows[i].Key = s
				}
			}
		default:
			col := display[name]
			t.AddColumn(col)
			for i, v := range vals {
				if f, ok := v.(float64); ok {
					t.Rows[i].Values[col] = f
				}
			}
		}
	}
	return t, nil
}

func writeRows[T any](path string, rows []T, codec parquet.CompressionCodec) error {
	err := writeAtomic(path, func(fw source.ParquetFile) error {
		pw, err := writer.NewParquetWriter(fw, new(T), parallelism)
		if err != nil {
			return fmt.Errorf("failed to create parquet writer: %w", err)
		}
		pw.CompressionType = codec

		for _, r := range rows {
			if err := pw.Write(r); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}
		return stopWriter(pw.WriteStop)
	})
	if err != nil {
		return err
	}
	log.Printf("[Snapshot] Wrote %d rows to %s", len(rows), path)
	return nil
}

// stopWriter flushes a parquet writer. WriteStop can panic on malformed
// rows, so the panic is turned into an error.
func stopWriter(stop func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parquet writer panicked during WriteStop: %v", r)
		}
	}()
	if err := stop(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// readRowsAt reads path, or every .parquet file below it when it is a
// directory, in lexical file order.
func readRowsAt[T any](path string) ([]T, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return readRows[T](path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", path, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".parquet") {
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	sort.Strings(files)

	var out []T
	for _, f := range files {
		rows, err := readRows[T](f)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

func readRows[T any](path string) ([]T, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer fr.Close()
	return readFrom[T](fr, path)
}

func readFrom[T any](fr source.ParquetFile, path string) ([]T, error) {
	pr, err := reader.NewParquetReader(fr, new(T), parallelism)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet footer of %s: %w", path, err)
	}
	defer pr.ReadStop()

	n := int(pr.GetNumRows())
	rows := make([]T, n)
	if n == 0 {
		return rows, nil
	}
	if err := pr.Read(&rows); err != nil {
		return nil, fmt.Errorf("failed to read rows of %s: %w", path, err)
	}
	return rows, nil
}
