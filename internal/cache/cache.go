// Package cache keeps valuable systems in a local SQLite database so they
// outlive the session that discovered them.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/papapumpkin/starchart/internal/ledger"
	"github.com/papapumpkin/starchart/internal/value"
)

// ErrNotFound is returned when a system is not in the cache.
var ErrNotFound = errors.New("cache: system not found")

// Flags recorded for a cached system.
const (
	FlagAmmonia       = "AW"
	FlagBio           = "BIO"
	FlagEarthlike     = "ELW"
	FlagTerraformable = "TERRAFORMABLE"
	FlagWater         = "WW"
)

const schema = `
CREATE TABLE IF NOT EXISTS systems (
    address         INTEGER PRIMARY KEY,
    name            TEXT NOT NULL,
    star_class      TEXT NOT NULL DEFAULT '',
    visited_at      TEXT NOT NULL,
    total_value     INTEGER NOT NULL,
    total_formatted TEXT NOT NULL,
    flags           TEXT NOT NULL DEFAULT '',
    stored_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS bodies (
    system_address  INTEGER NOT NULL REFERENCES systems(address) ON DELETE CASCADE,
    name            TEXT NOT NULL,
    type            TEXT NOT NULL,
    value           INTEGER NOT NULL,
    value_formatted TEXT NOT NULL,
    bio_signals     INTEGER NOT NULL DEFAULT 0,
    geo_signals     INTEGER NOT NULL DEFAULT 0,
    landable        BOOLEAN NOT NULL DEFAULT FALSE,
    scanned_dss     BOOLEAN NOT NULL DEFAULT FALSE,
    terraformable   BOOLEAN NOT NULL DEFAULT FALSE,
    PRIMARY KEY (system_address, name)
);
`

// Body is the cached summary of an important body.
type Body struct {
	Name           string `json:"name" toml:"name" yaml:"name"`
	Type           string `json:"type" toml:"type" yaml:"type"`
	Value          int    `json:"value" toml:"value" yaml:"value"`
	ValueFormatted string `json:"value_formatted" toml:"value_formatted" yaml:"value_formatted"`
	BioSignals     int    `json:"bio_signals" toml:"bio_signals" yaml:"bio_signals"`
	GeoSignals     int    `json:"geo_signals" toml:"geo_signals" yaml:"geo_signals"`
	Landable       bool   `json:"landable" toml:"landable" yaml:"landable"`
	ScannedDSS     bool   `json:"scanned_dss" toml:"scanned_dss" yaml:"scanned_dss"`
	Terraformable  bool   `json:"terraformable" toml:"terraformable" yaml:"terraformable"`
}

// Entry is one cached system.
type Entry struct {
	Address        int64     `json:"address" toml:"address" yaml:"address"`
	Name           string    `json:"name" toml:"name" yaml:"name"`
	StarClass      string    `json:"star_class" toml:"star_class" yaml:"star_class"`
	VisitedAt      time.Time `json:"visited_at" toml:"visited_at" yaml:"visited_at"`
	TotalValue     int       `json:"total_value" toml:"total_value" yaml:"total_value"`
	ValueFormatted string    `json:"value_formatted" toml:"value_formatted" yaml:"value_formatted"`
	Flags          []string  `json:"flags" toml:"flags" yaml:"flags"`
	Bodies         []Body    `json:"bodies" toml:"bodies" yaml:"bodies"`
}

// Cache is a SQLite-backed store of valuable systems.
type Cache struct {
	db        *sql.DB
	threshold int
}

// New opens (or creates) the cache at path. Systems whose total value is
// below threshold are never stored; a threshold <= 0 uses
// value.DefaultThreshold.
func New(ctx context.Context, path string, threshold int) (*Cache, error) {
	if threshold <= 0 {
		threshold = value.DefaultThreshold
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("cache: create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open database: %w", err)
	}
	// One connection: SQLite has a single writer and PRAGMAs are per connection.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("cache: %s: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: create schema: %w", err)
	}
	return &Cache{db: db, threshold: threshold}, nil
}

// Threshold returns the minimum total value a system needs to be stored.
func (c *Cache) Threshold() int { return c.threshold }

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// HasSystem reports whether address is cached.
func (c *Cache) HasSystem(ctx context.Context, address int64) (bool, error) {
	var n int
	err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM systems WHERE address = ?", address).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("cache: has system %d: %w", address, err)
	}
	return n > 0, nil
}

// StoreSystem writes sys if its total value reaches the threshold. A stored
// system replaces any earlier entry for the same address. It reports whether
// the system was written.
func (c *Cache) StoreSystem(ctx context.Context, sys ledger.System) (bool, error) {
	if !value.IsValuable(sys.TotalValue, c.threshold) {
		return false, nil
	}
	e := NewEntry(sys)

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("cache: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const upsert = `
		INSERT INTO systems (address, name, star_class, visited_at, total_value, total_formatted, flags, stored_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(address) DO UPDATE SET
			name = excluded.name,
			star_class = excluded.star_class,
			visited_at = excluded.visited_at,
			total_value = excluded.total_value,
			total_formatted = excluded.total_formatted,
			flags = excluded.flags,
			stored_at = CURRENT_TIMESTAMP`
	if _, err := tx.ExecContext(ctx, upsert,
		e.Address, e.Name, e.StarClass, e.VisitedAt.UTC().Format(time.RFC3339Nano),
		e.TotalValue, e.ValueFormatted, strings.Join(e.Flags, ","),
	); err != nil {
		return false, fmt.Errorf("cache: store system %q: %w", e.Name, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM bodies WHERE system_address = ?", e.Address); err != nil {
		return false, fmt.Errorf("cache: clear bodies of %q: %w", e.Name, err)
	}

	const insertBody = `
		INSERT INTO bodies (system_address, name, type, value, value_formatted,
			bio_signals, geo_signals, landable, scanned_dss, terraformable)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, b := range e.Bodies {
		if _, err := tx.ExecContext(ctx, insertBody, e.Address, b.Name, b.Type, b.Value, b.ValueFormatted,
			b.BioSignals, b.GeoSignals, b.Landable, b.ScannedDSS, b.Terraformable); err != nil {
			return false, fmt.Errorf("cache: store body %q: %w", b.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("cache: commit %q: %w", e.Name, err)
	}
	return true, nil
}

// Systems returns every cached system, most valuable first.
func (c *Cache) Systems(ctx context.Context) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT address, name, star_class, visited_at, total_value, total_formatted, flags
		FROM systems ORDER BY total_value DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("cache: list systems: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cache: list systems: %w", err)
	}

	for i := range entries {
		if entries[i].Bodies, err = c.bodies(ctx, entries[i].Address); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// System returns the cached entry for address, or ErrNotFound.
func (c *Cache) System(ctx context.Context, address int64) (Entry, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT address, name, star_class, visited_at, total_value, total_formatted, flags
		FROM systems WHERE address = ?`, address)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %d", ErrNotFound, address)
	}
	if err != nil {
		return Entry{}, err
	}
	if e.Bodies, err = c.bodies(ctx, address); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (c *Cache) bodies(ctx context.Context, address int64) ([]Body, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT name, type, value, value_formatted, bio_signals, geo_signals, landable, scanned_dss, terraformable
		FROM bodies WHERE system_address = ? ORDER BY value DESC, name`, address)
	if err != nil {
		return nil, fmt.Errorf("cache: bodies of %d: %w", address, err)
	}
	defer rows.Close()

	var out []Body
	for rows.Next() {
		var b Body
		if err := rows.Scan(&b.Name, &b.Type, &b.Value, &b.ValueFormatted,
			&b.BioSignals, &b.GeoSignals, &b.Landable, &b.ScannedDSS, &b.Terraformable); err != nil {
			return nil, fmt.Errorf("cache: scan body: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cache: bodies of %d: %w", address, err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var (
		e       Entry
		visited string
		flags   string
	)
	if err := s.Scan(&e.Address, &e.Name, &e.StarClass, &visited, &e.TotalValue, &e.ValueFormatted, &flags); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("cache: scan system: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, visited)
	if err != nil {
		return Entry{}, fmt.Errorf("cache: parse visit time of %q: %w", e.Name, err)
	}
	e.VisitedAt = t
	if flags != "" {
		e.Flags = strings.Split(flags, ",")
	}
	return e, nil
}

// NewEntry summarises sys for storage. Only bodies with value or
// biological signals are kept.
func NewEntry(sys ledger.System) Entry {
	e := Entry{
		Address:        sys.Address,
		Name:           sys.Name,
		StarClass:      sys.StarClass,
		VisitedAt:      sys.VisitedAt,
		TotalValue:     sys.TotalValue,
		ValueFormatted: value.FormatCredits(sys.TotalValue),
	}

	flags := map[string]bool{}
	for _, b := range sys.Bodies {
		lower := strings.ToLower(b.Type)
		switch {
		case strings.Contains(lower, "earthlike"):
			flags[FlagEarthlike] = true
		case strings.Contains(lower, "water world"):
			flags[FlagWater] = true
		case strings.Contains(lower, "ammonia world"):
			flags[FlagAmmonia] = true
		}
		if b.Terraformable() {
			flags[FlagTerraformable] = true
		}
		if b.Signals.Bio > 0 {
			flags[FlagBio] = true
		}

		if b.Value <= 0 && b.Signals.Bio <= 0 {
			continue
		}
		e.Bodies = append(e.Bodies, Body{
			Name:           b.Name,
			Type:           b.Type,
			Value:          b.Value,
			ValueFormatted: value.FormatCredits(b.Value),
			BioSignals:     b.Signals.Bio,
			GeoSignals:     b.Signals.Geo,
			Landable:       b.Landable,
			ScannedDSS:     b.ScannedDSS,
			Terraformable:  b.Terraformable(),
		})
	}
	for f := range flags {
		e.Flags = append(e.Flags, f)
	}
	slices.Sort(e.Flags)
	return e
}
