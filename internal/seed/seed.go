package seed

import (
	"database/sql"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Simplici0/plantecon/internal/catalog"
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
	// Catalog supplies the factor rows. Nil means the built-in catalog.
	Catalog *catalog.Catalog
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run executes the startup seed in an idempotent way. Rows that already
// exist are left untouched so factors edited by an administrator survive restarts.
func Run(db *sql.DB, cfg Config) (Stats, error) {
	cat := cfg.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	doc := cat.Document()

	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}
	steps := []func(*sql.Tx, *Stats) error{
		func(tx *sql.Tx, s *Stats) error { return seedAdmin(tx, cfg.AdminEmail, cfg.AdminPassword, s) },
		func(tx *sql.Tx, s *Stats) error { return ensureCatalogDefaults(tx, doc, s) },
		func(tx *sql.Tx, s *Stats) error { return ensureLangFactors(tx, doc, s) },
		func(tx *sql.Tx, s *Stats) error { return ensureScalingExponents(tx, doc, s) },
		func(tx *sql.Tx, s *Stats) error { return ensureCostFactors(tx, doc, s) },
		func(tx *sql.Tx, s *Stats) error { return ensureWorkingCapitalSplits(tx, doc, s) },
	}
	for _, step := range steps {
		if err := step(tx, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func seedAdmin(tx *sql.Tx, email, password string, stats *Stats) error {
	if email == "" || password == "" {
		return nil
	}

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE email = ? LIMIT 1)`, email).Scan(&exists); err != nil {
		return fmt.Errorf("check admin user existence: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if _, err := tx.Exec(`INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, string(hash)); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	stats.Inserts++
	return nil
}

func insertIgnore(tx *sql.Tx, stats *Stats, what, query string, args ...any) error {
	res, err := tx.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("insert %s: %w", what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert %s: %w", what, err)
	}
	stats.Inserts += int(n)
	return nil
}

func ensureCatalogDefaults(tx *sql.Tx, doc catalog.Document, stats *Stats) error {
	return insertIgnore(tx, stats, "catalog defaults", `
		INSERT OR IGNORE INTO catalog_defaults (id, default_industry, default_equipment)
		VALUES (1, ?, ?)
	`, doc.DefaultIndustry, doc.DefaultEquipment)
}

func ensureLangFactors(tx *sql.Tx, doc catalog.Document, stats *Stats) error {
	for i, f := range doc.LangFactors {
		if err := insertIgnore(tx, stats, "lang factor",
			`INSERT OR IGNORE INTO lang_factors (industry, position, factor) VALUES (?, ?, ?)`,
			f.Industry, i, f.Factor); err != nil {
			return err
		}
	}
	return nil
}

func ensureScalingExponents(tx *sql.Tx, doc catalog.Document, stats *Stats) error {
	for i, e := range doc.ScalingExponents {
		if err := insertIgnore(tx, stats, "scaling exponent",
			`INSERT OR IGNORE INTO scaling_exponents (equipment, position, exponent) VALUES (?, ?, ?)`,
			e.Equipment, i, e.Exponent); err != nil {
			return err
		}
	}
	return nil
}

func ensureCostFactors(tx *sql.Tx, doc catalog.Document, stats *Stats) error {
	for _, set := range doc.CostFactors {
		for i, f := range set.Categories {
			if err := insertIgnore(tx, stats, "cost factor",
				`INSERT OR IGNORE INTO cost_factors (industry, category, position, multiplier) VALUES (?, ?, ?, ?)`,
				set.Industry, f.Category, i, f.Multiplier); err != nil {
				return err
			}
		}
	}
	return nil
}

func ensureWorkingCapitalSplits(tx *sql.Tx, doc catalog.Document, stats *Stats) error {
	// Splits must keep summing to one, so a partially seeded table is left alone.
	var count int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM working_capital_splits`).Scan(&count); err != nil {
		return fmt.Errorf("count working capital splits: %w", err)
	}
	if count > 0 {
		return nil
	}
	for i, w := range doc.WorkingCapitalSplits {
		if err := insertIgnore(tx, stats, "working capital split",
			`INSERT INTO working_capital_splits (component, position, fraction) VALUES (?, ?, ?)`,
			w.Component, i, w.Fraction); err != nil {
			return err
		}
	}
	return nil
}
