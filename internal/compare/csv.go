package compare

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"forecast-compare/internal/schema"
)

// WriteResultCSV writes the comparison rows to path.
func WriteResultCSV(path string, res *Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return EncodeResultCSV(f, res)
}

func EncodeResultCSV(out io.Writer, res *Result) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	header := []string{
		schema.ValueTimeCol,
		schema.ForecastTimeCol,
		res.KeyColumn,
		schema.BiddingZoneCol,
		schema.PowerHourCol,
		schema.ActualCol(res.Production),
		res.Production,
	}
	if res.KeyColumn == schema.BiddingZoneCol {
		header = append(header[:3], header[4:]...)
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range res.Rows {
		row := []string{
			fmtTime(r.ValueTime),
			fmtTime(r.ForecastTime),
			r.Key,
		}
		if res.KeyColumn != schema.BiddingZoneCol {
			row = append(row, r.Zone)
		}
		row = append(row,
			strconv.Itoa(r.PowerHour),
			fmtFloat(r.Actual),
			fmtFloat(r.Forecast),
		)
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
