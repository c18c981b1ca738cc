package bars

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rickgao/barcheck/internal/model"
)

var csvHeader = []string{"sid", "day", "open", "high", "low", "close", "volume"}

// LoadCSV reads a bar export with the header
// sid,day,open,high,low,close,volume into a Memory source. Prices are
// decimal strings and are converted with model.ParsePrice.
func LoadCSV(r io.Reader) (*Memory, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, col := range csvHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), col) {
			return nil, fmt.Errorf("csv header column %d = %q, want %q", i+1, header[i], col)
		}
	}

	m := NewMemory()
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		sid, bar, err := parseRecord(rec)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		m.Put(sid, bar)
	}

	return m, nil
}

// LoadCSVFile reads a bar export from path.
func LoadCSVFile(path string) (*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bars file: %w", err)
	}
	defer f.Close()

	return LoadCSV(f)
}

func parseRecord(rec []string) (int64, model.Bar, error) {
	sid, err := strconv.ParseInt(rec[0], 10, 64)
	if err != nil {
		return 0, model.Bar{}, fmt.Errorf("parse sid: %w", err)
	}

	day, err := time.Parse(time.DateOnly, rec[1])
	if err != nil {
		return 0, model.Bar{}, fmt.Errorf("parse day: %w", err)
	}

	var prices [4]int64
	for i := range prices {
		if prices[i], err = model.ParsePrice(rec[2+i]); err != nil {
			return 0, model.Bar{}, fmt.Errorf("%s: %w", csvHeader[2+i], err)
		}
	}

	volume, err := strconv.ParseInt(rec[6], 10, 64)
	if err != nil {
		return 0, model.Bar{}, fmt.Errorf("parse volume: %w", err)
	}
	if volume < 0 {
		return 0, model.Bar{}, fmt.Errorf("negative volume %d", volume)
	}

	return sid, model.Bar{
		Day:    day,
		Open:   prices[0],
		High:   prices[1],
		Low:    prices[2],
		Close:  prices[3],
		Volume: volume,
	}, nil
}
