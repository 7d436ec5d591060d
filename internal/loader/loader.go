// Package loader discovers and parses per-driver telemetry CSV files for a
// track session. It owns the only runtime column handling in the system:
// required channels are checked here, and a driver whose file lacks one is
// reported and skipped rather than passed partially-typed into the core.
package loader

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/paddock-data/drivestyle/internal/analysis"
	"github.com/paddock-data/drivestyle/internal/telemetry"
)

// requiredColumns are the channels a driver file must carry. Brake is
// optional; an absent brake column defaults to false.
var requiredColumns = []string{"RPM", "Speed", "nGear", "Throttle"}

// ignoredColumns are session-identifying columns stripped before the core
// ever sees the data.
var ignoredColumns = map[string]bool{
	"Date": true, "Time": true, "SessionTime": true, "Source": true,
}

// LoadTrack reads every driver CSV for a track under
// root/Qualifying/<track>, including one level of subdirectories. Files
// that cannot be parsed are logged and skipped. Sessions are returned in
// sorted filename order, which fixes the pipeline's iteration order.
func LoadTrack(root, track string) ([]analysis.DriverSession, error) {
	trackDir := filepath.Join(root, "Qualifying", track)
	files, err := discoverCSVs(trackDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no CSV files found in %s", trackDir)
	}

	var sessions []analysis.DriverSession
	for _, path := range files {
		driver := DriverCode(path)
		samples, err := ParseDriverCSV(path)
		if err != nil {
			log.Printf("skipping %s (%s): %v", driver, path, err)
			continue
		}
		if len(samples) == 0 {
			log.Printf("skipping %s: %s has no data rows", driver, path)
			continue
		}
		sessions = append(sessions, analysis.DriverSession{Driver: driver, Samples: samples})
		log.Printf("loaded %d samples for %s", len(samples), driver)
	}
	return sessions, nil
}

// discoverCSVs lists CSV files directly in dir and one level down, sorted
// by path.
func discoverCSVs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read track directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if e.IsDir() {
			subEntries, err := os.ReadDir(path)
			if err != nil {
				continue
			}
			for _, se := range subEntries {
				if !se.IsDir() && strings.HasSuffix(se.Name(), ".csv") {
					files = append(files, filepath.Join(path, se.Name()))
				}
			}
			continue
		}
		if strings.HasSuffix(e.Name(), ".csv") {
			files = append(files, path)
		}
	}
	sort.Strings(files)
	return files, nil
}

// DriverCode extracts the three-letter driver code from a telemetry
// filename such as "Australia-quali-VER.csv". A bare "VER.csv" is used
// directly; otherwise the first uppercase three-letter dash-separated token
// wins, falling back to the whole stem.
func DriverCode(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), ".csv")
	if len(stem) == 3 && stem == strings.ToUpper(stem) {
		return stem
	}
	for _, part := range strings.Split(stem, "-") {
		if len(part) == 3 && part == strings.ToUpper(part) {
			return part
		}
	}
	return stem
}

// ParseDriverCSV parses one driver's telemetry file into ordered samples.
// A missing required column fails with telemetry.ErrMissingColumns; rows
// with unparsable numeric values are dropped.
func ParseDriverCSV(path string) ([]telemetry.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open telemetry file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if ignoredColumns[name] {
			continue
		}
		colIdx[name] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := colIdx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s lacks columns %v: %w", filepath.Base(path), missing, telemetry.ErrMissingColumns)
	}

	// Brake arrives either as a boolean "Brake" column or a numeric
	// "nBrake" column; with neither, brake defaults to false.
	brakeIdx, hasBrake := colIdx["Brake"]
	if !hasBrake {
		brakeIdx, hasBrake = colIdx["nBrake"]
	}

	var samples []telemetry.Sample
	for {
		record, err := r.Read()
		if err != nil {
			break
		}

		s, ok := parseSample(record, colIdx, brakeIdx, hasBrake)
		if !ok {
			continue
		}
		samples = append(samples, s)
	}

	return samples, nil
}

func parseSample(record []string, colIdx map[string]int, brakeIdx int, hasBrake bool) (telemetry.Sample, bool) {
	field := func(idx int) (string, bool) {
		if idx < 0 || idx >= len(record) {
			return "", false
		}
		return strings.TrimSpace(record[idx]), true
	}

	var s telemetry.Sample
	var ok bool
	var raw string

	if raw, ok = field(colIdx["RPM"]); !ok {
		return s, false
	}
	if s.RPM, ok = parseFloat(raw); !ok {
		return s, false
	}
	if raw, ok = field(colIdx["Speed"]); !ok {
		return s, false
	}
	if s.Speed, ok = parseFloat(raw); !ok {
		return s, false
	}
	if raw, ok = field(colIdx["nGear"]); !ok {
		return s, false
	}
	gear, okGear := parseFloat(raw)
	if !okGear {
		return s, false
	}
	s.Gear = int(gear)
	if raw, ok = field(colIdx["Throttle"]); !ok {
		return s, false
	}
	if s.Throttle, ok = parseFloat(raw); !ok {
		return s, false
	}

	if hasBrake {
		if raw, ok = field(brakeIdx); ok {
			s.Brake = parseBool(raw)
		}
	}

	return s, true
}

func parseFloat(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(raw, 64)
	return v, err == nil
}

func parseBool(raw string) bool {
	switch strings.ToLower(raw) {
	case "true", "t", "1", "1.0":
		return true
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v != 0
	}
	return false
}
