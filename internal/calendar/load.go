package calendar

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// LoadCSV reads one ISO date (YYYY-MM-DD) per line. Blank lines, lines
// starting with '#', and a leading "day" header are skipped. Only the first
// comma-separated column is read.
func LoadCSV(r io.Reader) (*Calendar, error) {
	var days []time.Time

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		field, _, _ := strings.Cut(text, ",")
		field = strings.TrimSpace(field)
		if line == 1 && strings.EqualFold(field, "day") {
			continue
		}

		d, err := time.Parse(time.DateOnly, field)
		if err != nil {
			return nil, fmt.Errorf("calendar line %d: %w", line, err)
		}
		days = append(days, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read calendar: %w", err)
	}

	return New(days)
}

// LoadFile reads a calendar file in the LoadCSV format.
func LoadFile(path string) (*Calendar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open calendar file: %w", err)
	}
	defer f.Close()

	return LoadCSV(f)
}
