package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pelletier/go-toml/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gopkg.in/yaml.v3"

	"github.com/papapumpkin/starchart/internal/ledger"
	"github.com/papapumpkin/starchart/internal/metrics"
	"github.com/papapumpkin/starchart/internal/telemetry"
	"github.com/papapumpkin/starchart/internal/value"
)

var visited = time.Date(2026, 1, 10, 20, 0, 0, 0, time.UTC)

// testCache creates a temporary cache and registers cleanup.
func testCache(t *testing.T, threshold int) *Cache {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	c, err := New(context.Background(), path, threshold)
	if err != nil {
		t.Fatalf("New(%q): %v", path, err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func body(name, bodyType string, bio int) ledger.Body {
	b := ledger.Body{Name: name, ID: ledger.NoBodyID, Type: bodyType, ScannedFSS: true}
	b.Signals.Bio = bio
	b.Value = value.BodyValue(bodyType, false)
	return b
}

func system(name string, address int64, bodies ...ledger.Body) ledger.System {
	sys := ledger.System{Name: name, Address: address, StarClass: "G", VisitedAt: visited, Bodies: bodies}
	for _, b := range bodies {
		sys.TotalValue += b.Value
	}
	return sys
}

func TestNew_WALMode(t *testing.T) {
	t.Parallel()
	c := testCache(t, 0)

	var mode string
	if err := c.db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
	if c.Threshold() != value.DefaultThreshold {
		t.Errorf("Threshold = %d, want %d", c.Threshold(), value.DefaultThreshold)
	}
}

func TestStoreSystem_Threshold(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name   string
		sys    ledger.System
		stored bool
	}{
		{
			name:   "valuable",
			sys:    system("Sol", 1, body("Earth", "Earthlike body", 0)),
			stored: true,
		},
		{
			name:   "below threshold",
			sys:    system("Rock", 2, body("Rock 1", "Asteroid Cluster", 0)),
			stored: false,
		},
		{
			name: "exactly threshold",
			sys: ledger.System{
				Name: "Edge", Address: 3, VisitedAt: visited, TotalValue: 1000,
				Bodies: []ledger.Body{{Name: "Edge 1", Type: "Icy body", Value: 1000}},
			},
			stored: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := testCache(t, 1000)
			stored, err := c.StoreSystem(ctx, tt.sys)
			if err != nil {
				t.Fatalf("StoreSystem: %v", err)
			}
			if stored != tt.stored {
				t.Errorf("stored = %v, want %v", stored, tt.stored)
			}
			has, err := c.HasSystem(ctx, tt.sys.Address)
			if err != nil {
				t.Fatalf("HasSystem: %v", err)
			}
			if has != tt.stored {
				t.Errorf("HasSystem = %v, want %v", has, tt.stored)
			}
		})
	}
}

func TestStoreSystem_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := testCache(t, 0)

	water := body("Sol 2", "Water world (Terraformable)", 0)
	water.ScannedDSS = true
	water.Landable = true
	water.Signals.Geo = 2
	sys := system("Sol", 10477373803,
		body("Sol 3", "Earthlike body", 0),
		water,
		body("Sol 4", "Rocky body", 3),
		body("Sol A Belt Cluster 1", "Asteroid Cluster", 0),
	)

	if _, err := c.StoreSystem(ctx, sys); err != nil {
		t.Fatalf("StoreSystem: %v", err)
	}
	got, err := c.System(ctx, sys.Address)
	if err != nil {
		t.Fatalf("System: %v", err)
	}

	if got.Name != "Sol" || got.StarClass != "G" || !got.VisitedAt.Equal(visited) {
		t.Errorf("entry = %+v", got)
	}
	if got.TotalValue != sys.TotalValue {
		t.Errorf("TotalValue = %d, want %d", got.TotalValue, sys.TotalValue)
	}
	if got.ValueFormatted != value.FormatCredits(sys.TotalValue) {
		t.Errorf("ValueFormatted = %q", got.ValueFormatted)
	}
	wantFlags := []string{FlagBio, FlagEarthlike, FlagTerraformable, FlagWater}
	if diff := cmp.Diff(wantFlags, got.Flags); diff != "" {
		t.Errorf("Flags mismatch (-want +got):\n%s", diff)
	}
	if len(got.Bodies) != 3 {
		t.Fatalf("bodies = %+v, want 3 (belt cluster dropped)", got.Bodies)
	}
	if got.Bodies[0].Name != "Sol 2" {
		t.Errorf("first body = %q, want most valuable Sol 2", got.Bodies[0].Name)
	}
	w := got.Bodies[0]
	if !w.ScannedDSS || !w.Landable || !w.Terraformable || w.GeoSignals != 2 {
		t.Errorf("water world = %+v", w)
	}
}

func TestStoreSystem_Replaces(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := testCache(t, 0)

	first := system("Sol", 1, body("Sol 3", "Earthlike body", 0), body("Sol 4", "Rocky body", 0))
	second := system("Sol", 1, body("Sol 3", "Earthlike body", 0))
	for _, s := range []ledger.System{first, second} {
		if _, err := c.StoreSystem(ctx, s); err != nil {
			t.Fatalf("StoreSystem: %v", err)
		}
	}

	all, err := c.Systems(ctx)
	if err != nil {
		t.Fatalf("Systems: %v", err)
	}
	if len(all) != 1 || len(all[0].Bodies) != 1 {
		t.Errorf("Systems = %+v, want one system with one body", all)
	}
}

func TestSystems_OrderedByValue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := testCache(t, 0)

	for _, s := range []ledger.System{
		system("Low", 1, body("Low 1", "Icy body", 0), body("Low 2", "Rocky body", 0)),
		system("High", 2, body("High 1", "Earthlike body", 0)),
	} {
		if _, err := c.StoreSystem(ctx, s); err != nil {
			t.Fatalf("StoreSystem: %v", err)
		}
	}
	all, err := c.Systems(ctx)
	if err != nil {
		t.Fatalf("Systems: %v", err)
	}
	if len(all) != 2 || all[0].Name != "High" || all[1].Name != "Low" {
		t.Errorf("Systems order = %+v", all)
	}
}

func TestSystem_NotFound(t *testing.T) {
	t.Parallel()
	c := testCache(t, 0)
	_, err := c.System(context.Background(), 99)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestPersistsAcrossOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	c, err := New(ctx, path, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.StoreSystem(ctx, system("Sol", 1, body("Sol 3", "Earthlike body", 0))); err != nil {
		t.Fatalf("StoreSystem: %v", err)
	}
	c.Close()

	c, err = New(ctx, path, 0)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer c.Close()
	if has, _ := c.HasSystem(ctx, 1); !has {
		t.Error("system lost after reopen")
	}
}

func TestExport(t *testing.T) {
	t.Parallel()
	entries := []Entry{NewEntry(system("Sol", 1, body("Sol 3", "Earthlike body", 2)))}

	t.Run("json", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if err := Export(&buf, entries, FormatJSON); err != nil {
			t.Fatalf("Export: %v", err)
		}
		var doc document
		if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
			t.Fatalf("invalid json: %v\n%s", err, buf.String())
		}
		if len(doc.Systems) != 1 || doc.Systems[0].Bodies[0].BioSignals != 2 {
			t.Errorf("doc = %+v", doc)
		}
	})

	t.Run("toml", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if err := Export(&buf, entries, FormatTOML); err != nil {
			t.Fatalf("Export: %v", err)
		}
		var doc document
		if err := toml.Unmarshal(buf.Bytes(), &doc); err != nil {
			t.Fatalf("invalid toml: %v\n%s", err, buf.String())
		}
		if len(doc.Systems) != 1 || doc.Systems[0].Name != "Sol" {
			t.Errorf("doc = %+v", doc)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if err := Export(&buf, entries, "YAML"); err != nil {
			t.Fatalf("Export: %v", err)
		}
		var doc document
		if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
			t.Fatalf("invalid yaml: %v\n%s", err, buf.String())
		}
		if len(doc.Systems) != 1 || doc.Systems[0].TotalValue != entries[0].TotalValue {
			t.Errorf("doc = %+v", doc)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		t.Parallel()
		err := Export(&bytes.Buffer{}, entries, "xml")
		if err == nil || !strings.Contains(err.Error(), "unknown export format") {
			t.Errorf("err = %v", err)
		}
	})
}

func TestArchiver(t *testing.T) {
	t.Parallel()
	c := testCache(t, 1000)
	m := metrics.NewCollector(prometheus.NewRegistry())
	em, err := telemetry.NewEmitter(filepath.Join(t.TempDir(), "t.jsonl"))
	if err != nil {
		t.Fatalf("NewEmitter: %v", err)
	}
	t.Cleanup(func() { em.Close() })

	var stored []string
	a := &Archiver{Cache: c, Metrics: m, Telemetry: em, OnStored: func(s ledger.System) { stored = append(stored, s.Name) }}

	a.Archive(system("Sol", 1, body("Sol 3", "Earthlike body", 0)))
	a.Archive(system("Rock", 2, body("Rock 1", "Asteroid Cluster", 0)))

	if diff := cmp.Diff([]string{"Sol"}, stored); diff != "" {
		t.Errorf("OnStored mismatch (-want +got):\n%s", diff)
	}
	if got := testutil.ToFloat64(m.Stored); got != 1 {
		t.Errorf("stored metric = %v, want 1", got)
	}
}

func TestArchiverFeedsLedger(t *testing.T) {
	t.Parallel()
	c := testCache(t, 1000)
	l := ledger.New(ledger.WithArchiver(&Archiver{Cache: c}))

	l.Apply(ledger.Arrival{SystemName: "Sol", SystemAddress: 1})
	l.Apply(ledger.BodyScanned{Body: ledger.Body{Name: "Sol 3", ID: 3, Type: "Earthlike body"}})
	l.Apply(ledger.Arrival{SystemName: "Next", SystemAddress: 2})

	if has, err := c.HasSystem(context.Background(), 1); err != nil || !has {
		t.Errorf("HasSystem(1) = %v, %v; want true", has, err)
	}
}
