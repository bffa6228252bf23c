package wrangle

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"forecast-compare/internal/model"
	"forecast-compare/internal/schema"

	"github.com/shopspring/decimal"
)

const refinitivTimeLayout = "02.01.2006 15:04:05"

var refinitivHeader = []string{"Id", "ForecastDate", "ValueDate", "Value"}

// ParseRefinitivCSV reads one pipe-separated Refinitiv export. The first line
// is a banner and is skipped; the second is the header. Lines whose fields do
// not parse are dropped and counted in skipped.
func ParseRefinitivCSV(r io.Reader) (records []model.RefinitivRecord, skipped int, err error) {
	br := bufio.NewReader(r)
	if _, err := br.ReadString('\n'); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, nil
		}
		return nil, 0, err
	}

	cr := csv.NewReader(br)
	cr.Comma = '|'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, h := range refinitivHeader {
		if _, ok := col[h]; !ok {
			return nil, 0, fmt.Errorf("missing column %q in header %v", h, header)
		}
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, skipped, err
		}
		parsed, ok := parseRefinitivLine(rec, col)
		if !ok {
			skipped++
			continue
		}
		records = append(records, parsed)
	}
	return records, skipped, nil
}

func parseRefinitivLine(rec []string, col map[string]int) (model.RefinitivRecord, bool) {
	field := func(name string) string {
		i := col[name]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	ft, err := time.ParseInLocation(refinitivTimeLayout, field("ForecastDate"), time.UTC)
	if err != nil {
		return model.RefinitivRecord{}, false
	}
	vt, err := time.ParseInLocation(refinitivTimeLayout, field("ValueDate"), time.UTC)
	if err != nil {
		return model.RefinitivRecord{}, false
	}
	v, err := strconv.ParseFloat(field("Value"), 32)
	if err != nil {
		return model.RefinitivRecord{}, false
	}
	id := field("Id")
	if id == "" {
		return model.RefinitivRecord{}, false
	}
	return model.RefinitivRecord{SeriesID: id, ForecastTime: ft, ValueTime: vt, Value: v}, true
}

// JoinSeries keeps the records whose series id is in the catalog and fills in
// production and bidding zone.
func JoinSeries(records []model.RefinitivRecord, series []model.Series) []model.RefinitivRecord {
	byID := make(map[string]model.Series, len(series))
	for _, s := range series {
		byID[s.ID] = s
	}
	out := make([]model.RefinitivRecord, 0, len(records))
	for _, r := range records {
		s, ok := byID[r.SeriesID]
		if !ok {
			continue
		}
		r.Production = s.Production
		r.BiddingZone = s.BiddingZone
		out = append(out, r)
	}
	return out
}

// ReadRefinitiv parses every .CSV export in dir and joins it against series.
// skipped is the total number of malformed lines across all files.
func ReadRefinitiv(dir string, series []model.Series) (records []model.RefinitivRecord, skipped int, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, err
	}
	var all []model.RefinitivRecord
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		recs, n, err := readRefinitivFile(path)
		if err != nil {
			return nil, 0, fmt.Errorf("parse %s: %w", path, err)
		}
		if n > 0 {
			log.Printf("[Refinitiv] Skipped %d malformed lines in %s", n, path)
		}
		skipped += n
		all = append(all, recs...)
	}
	return JoinSeries(all, series), skipped, nil
}

func readRefinitivFile(path string) ([]model.RefinitivRecord, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	return ParseRefinitivCSV(f)
}

// ComputeRefinitiv builds the canonical Refinitiv table. Times are shown in
// the market zone and values are rounded to two decimals.
func ComputeRefinitiv(raw []model.RefinitivRecord, rule HorizonRule, market *time.Location) (*model.WideTable, error) {
	local := make([]model.RefinitivRecord, len(raw))
	for i, r := range raw {
		r.ForecastTime = r.ForecastTime.In(market)
		r.ValueTime = r.ValueTime.In(market)
		local[i] = r
	}
	dah := DayAhead(local, rule, func(r model.RefinitivRecord) (time.Time, time.Time) {
		return r.ForecastTime, r.ValueTime
	})

	long := make([]model.LongRow, 0, len(dah))
	for _, r := range dah {
		long = append(long, model.LongRow{
			ForecastTime: r.ForecastTime,
			ValueTime:    r.ValueTime,
			Key:          r.BiddingZone,
			Production:   r.Production,
			Value:        r.Value,
		})
	}

	t, err := Pivot(long, schema.BiddingZoneCol)
	if err != nil {
		return nil, fmt.Errorf("refinitiv: %w", err)
	}
	AggregateWind(t)
	RoundValues(t, 2)
	t.Sort()
	return t, nil
}

// RoundValues rounds every cell half away from zero to places decimals.
func RoundValues(t *model.WideTable, places int32) {
	for _, r := range t.Rows {
		for c, v := range r.Values {
			r.Values[c] = decimal.NewFromFloat(v).Round(places).InexactFloat64()
		}
	}
}
