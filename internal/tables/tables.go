// Package tables reads the reference CSV tables into rates types and writes
// the resolved output table.
package tables

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kingrea/slcsp/internal/rates"
)

// ErrInputUnavailable marks any failure to open, read, or parse a reference table.
var ErrInputUnavailable = errors.New("input unavailable")

// Column names used by the reference tables.
const (
	ColZipcode    = "zipcode"
	ColState      = "state"
	ColRateArea   = "rate_area"
	ColMetalLevel = "metal_level"
	ColRate       = "rate"
	ColPlanID     = "plan_id"
)

// Paths locates the three reference tables.
type Paths struct {
	Zips    string
	Plans   string
	Targets string
}

// Dataset holds every reference table in memory.
type Dataset struct {
	Areas   []rates.ZipRateArea
	Plans   []rates.Plan
	Targets []rates.TargetZip
}

// Load reads all three tables. The first failure is returned wrapped in
// ErrInputUnavailable.
func Load(paths Paths) (*Dataset, error) {
	areas, err := LoadZipRateAreas(paths.Zips)
	if err != nil {
		return nil, err
	}
	plans, err := LoadPlans(paths.Plans)
	if err != nil {
		return nil, err
	}
	targets, err := LoadTargetZips(paths.Targets)
	if err != nil {
		return nil, err
	}
	return &Dataset{Areas: areas, Plans: plans, Targets: targets}, nil
}

// LoadZipRateAreas reads the zipcode, state and rate_area columns.
func LoadZipRateAreas(path string) ([]rates.ZipRateArea, error) {
	var out []rates.ZipRateArea
	err := scan(path, []string{ColZipcode, ColState, ColRateArea}, func(r record) error {
		area, err := r.intField(ColRateArea)
		if err != nil {
			return err
		}
		out = append(out, rates.ZipRateArea{
			Zipcode:  r.get(ColZipcode),
			State:    r.get(ColState),
			RateArea: area,
		})
		return nil
	})
	return out, err
}

// LoadPlans reads plan rows. Rows with an empty rate carry no price and are skipped.
func LoadPlans(path string) ([]rates.Plan, error) {
	var out []rates.Plan
	err := scan(path, []string{ColState, ColRateArea, ColMetalLevel, ColRate}, func(r record) error {
		if r.get(ColRate) == "" {
			return nil
		}
		area, err := r.intField(ColRateArea)
		if err != nil {
			return err
		}
		rate, err := r.decimalField(ColRate)
		if err != nil {
			return err
		}
		out = append(out, rates.Plan{
			PlanID:     r.get(ColPlanID),
			State:      r.get(ColState),
			RateArea:   area,
			MetalLevel: r.get(ColMetalLevel),
			Rate:       rate,
		})
		return nil
	})
	return out, err
}

// LoadTargetZips reads the zipcode column, keeping file order.
func LoadTargetZips(path string) ([]rates.TargetZip, error) {
	var out []rates.TargetZip
	err := scan(path, []string{ColZipcode}, func(r record) error {
		out = append(out, rates.TargetZip{Zipcode: r.get(ColZipcode)})
		return nil
	})
	return out, err
}

type record struct {
	path    string
	line    int
	columns map[string]int
	fields  []string
}

func (r record) get(col string) string {
	idx, ok := r.columns[col]
	if !ok || idx >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[idx])
}

func (r record) intField(col string) (int, error) {
	v, err := strconv.Atoi(r.get(col))
	if err != nil {
		return 0, r.fieldErr(col, err)
	}
	return v, nil
}

func (r record) decimalField(col string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(r.get(col))
	if err != nil {
		return decimal.Decimal{}, r.fieldErr(col, err)
	}
	return v, nil
}

func (r record) fieldErr(col string, err error) error {
	return fmt.Errorf("%s line %d: %s %q: %w", r.path, r.line, col, r.get(col), err)
}

func scan(path string, required []string, fn func(record) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: tables: open %s: %w", ErrInputUnavailable, path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: tables: %s: missing header row", ErrInputUnavailable, path)
		}
		return fmt.Errorf("%w: tables: read %s: %w", ErrInputUnavailable, path, err)
	}
	columns := indexHeader(header)
	for _, col := range required {
		if _, ok := columns[col]; !ok {
			return fmt.Errorf("%w: tables: %s: missing column %q", ErrInputUnavailable, path, col)
		}
	}

	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: tables: read %s: %w", ErrInputUnavailable, path, err)
		}
		line, _ := reader.FieldPos(0)
		if err := fn(record{path: path, line: line, columns: columns, fields: fields}); err != nil {
			return fmt.Errorf("%w: tables: %w", ErrInputUnavailable, err)
		}
	}
}

func indexHeader(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}
	return columns
}

// Encode writes rows as a zipcode,rate table. Blank rates become empty fields.
func Encode(w io.Writer, rows []rates.OutputRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColZipcode, ColRate}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write([]string{row.Zipcode, row.FormattedRate()}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteOutput replaces path with the encoded rows. The table is staged in a
// temporary file next to path and renamed into place.
func WriteOutput(path string, rows []rates.OutputRow) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("tables: ensure output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".slcsp-*.csv")
	if err != nil {
		return fmt.Errorf("tables: create temp output: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := Encode(tmp, rows); err != nil {
		tmp.Close()
		return fmt.Errorf("tables: encode %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("tables: close temp output: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("tables: chmod temp output: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("tables: write %s: %w", path, err)
	}
	return nil
}
