package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/Simplici0/plantecon/internal/costest"
	"github.com/Simplici0/plantecon/internal/econ"
)

// ErrNotFound is returned when an update names an unknown industry or equipment type.
var ErrNotFound = errors.New("catalog entry not found")

// Store persists the catalog in the factor tables.
type Store struct {
	db *sql.DB
}

// NewStore returns a Store backed by db.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Load reads the stored factors into a validated Catalog.
func (s *Store) Load(ctx context.Context) (*Catalog, error) {
	var doc Document

	err := s.db.QueryRowContext(ctx, `SELECT default_industry, default_equipment FROM catalog_defaults WHERE id = 1`).
		Scan(&doc.DefaultIndustry, &doc.DefaultEquipment)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("query catalog defaults: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT industry, factor FROM lang_factors ORDER BY position, industry`)
	if err != nil {
		return nil, fmt.Errorf("query lang factors: %w", err)
	}
	for rows.Next() {
		var f IndustryFactor
		if err := rows.Scan(&f.Industry, &f.Factor); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan lang factor: %w", err)
		}
		doc.LangFactors = append(doc.LangFactors, f)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("iterate lang factors: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `SELECT equipment, exponent FROM scaling_exponents ORDER BY position, equipment`)
	if err != nil {
		return nil, fmt.Errorf("query scaling exponents: %w", err)
	}
	for rows.Next() {
		var e EquipmentExponent
		if err := rows.Scan(&e.Equipment, &e.Exponent); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan scaling exponent: %w", err)
		}
		doc.ScalingExponents = append(doc.ScalingExponents, e)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("iterate scaling exponents: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `SELECT industry, category, multiplier FROM cost_factors ORDER BY industry, position`)
	if err != nil {
		return nil, fmt.Errorf("query cost factors: %w", err)
	}
	index := map[string]int{}
	for rows.Next() {
		var industry string
		var f costest.CategoryFactor
		if err := rows.Scan(&industry, &f.Category, &f.Multiplier); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan cost factor: %w", err)
		}
		i, ok := index[industry]
		if !ok {
			i = len(doc.CostFactors)
			index[industry] = i
			doc.CostFactors = append(doc.CostFactors, CostFactorSet{Industry: industry})
		}
		doc.CostFactors[i].Categories = append(doc.CostFactors[i].Categories, f)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("iterate cost factors: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `SELECT component, fraction FROM working_capital_splits ORDER BY position, component`)
	if err != nil {
		return nil, fmt.Errorf("query working capital splits: %w", err)
	}
	for rows.Next() {
		var w costest.WorkingCapitalSplit
		if err := rows.Scan(&w.Component, &w.Fraction); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan working capital split: %w", err)
		}
		doc.WorkingCapitalSplits = append(doc.WorkingCapitalSplits, w)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("iterate working capital splits: %w", err)
	}

	c, err := New(doc)
	if err != nil {
		return nil, fmt.Errorf("load stored catalog: %w", err)
	}
	return c, nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	return rows.Close()
}

// SetLangFactor updates the Lang factor of an existing industry.
func (s *Store) SetLangFactor(ctx context.Context, industry string, factor float64) error {
	if math.IsNaN(factor) || math.IsInf(factor, 0) || factor < 1 {
		return econ.Domain("set lang factor", industry, "must be at least 1")
	}
	res, err := s.db.ExecContext(ctx, `UPDATE lang_factors SET factor = ? WHERE industry = ?`, factor, industry)
	if err != nil {
		return fmt.Errorf("update lang factor: %w", err)
	}
	return requireUpdated(res, industry)
}

// SetScalingExponent updates the exponent of an existing equipment type.
func (s *Store) SetScalingExponent(ctx context.Context, equipment string, exponent float64) error {
	if math.IsNaN(exponent) || math.IsInf(exponent, 0) || exponent <= 0 {
		return econ.Domain("set scaling exponent", equipment, "must be greater than zero")
	}
	res, err := s.db.ExecContext(ctx, `UPDATE scaling_exponents SET exponent = ? WHERE equipment = ?`, exponent, equipment)
	if err != nil {
		return fmt.Errorf("update scaling exponent: %w", err)
	}
	return requireUpdated(res, equipment)
}

func requireUpdated(res sql.Result, key string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%q: %w", key, ErrNotFound)
	}
	return nil
}
