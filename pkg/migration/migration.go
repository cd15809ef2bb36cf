// Package migration runs versioned schema migrations and records them in the
// rocketcart_migrations table, grouped in batches so the latest batch can be
// rolled back.
//
// Migrations register themselves from init():
//
//	func init() {
//	    migration.Register("20240101000000_create_carts_table", &CreateCartsTable{})
//	}
package migration

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/shashiranjanraj/rocketcart/pkg/logger"
	"gorm.io/gorm"
)

// Migration is a reversible schema change.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

type record struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (record) TableName() string { return "rocketcart_migrations" }

type entry struct {
	name string
	m    Migration
}

var (
	mu       sync.Mutex
	registry []entry
)

// Register adds a migration. Names are timestamp-prefixed so they sort in
// the order they must run.
func Register(name string, m Migration) {
	mu.Lock()
	defer mu.Unlock()
	registry = append(registry, entry{name: name, m: m})
}

func registered() []entry {
	mu.Lock()
	out := append([]entry(nil), registry...)
	mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Runner applies and reverts registered migrations against one database.
type Runner struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Runner {
	return &Runner{db: db}
}

func (r *Runner) ensureTable() error {
	if err := r.db.AutoMigrate(&record{}); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}
	return nil
}

// Pending lists the names of migrations that have not run yet.
func (r *Runner) Pending() ([]string, error) {
	if err := r.ensureTable(); err != nil {
		return nil, err
	}
	todo, err := r.pending()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(todo))
	for i, e := range todo {
		names[i] = e.name
	}
	return names, nil
}

func (r *Runner) pending() ([]entry, error) {
	var ran []record
	if err := r.db.Find(&ran).Error; err != nil {
		return nil, fmt.Errorf("migration: list ran: %w", err)
	}
	done := make(map[string]bool, len(ran))
	for _, rec := range ran {
		done[rec.Name] = true
	}

	var out []entry
	for _, e := range registered() {
		if !done[e.name] {
			out = append(out, e)
		}
	}
	return out, nil
}

// Run applies every pending migration as one batch and returns how many ran.
func (r *Runner) Run() (int, error) {
	if err := r.ensureTable(); err != nil {
		return 0, err
	}
	todo, err := r.pending()
	if err != nil {
		return 0, err
	}
	if len(todo) == 0 {
		logger.Info("migration: nothing to migrate")
		return 0, nil
	}

	batch := r.lastBatch() + 1
	for _, e := range todo {
		logger.Info("migration: running", "name", e.name, "batch", batch)
		if err := e.m.Up(r.db); err != nil {
			return 0, fmt.Errorf("migration: %s up: %w", e.name, err)
		}
		if err := r.db.Create(&record{Name: e.name, Batch: batch}).Error; err != nil {
			return 0, fmt.Errorf("migration: record %s: %w", e.name, err)
		}
	}
	return len(todo), nil
}

// Rollback reverts the most recent batch, newest first, and returns how many
// migrations were reverted.
func (r *Runner) Rollback() (int, error) {
	if err := r.ensureTable(); err != nil {
		return 0, err
	}
	batch := r.lastBatch()
	if batch == 0 {
		logger.Info("migration: nothing to roll back")
		return 0, nil
	}

	var recs []record
	if err := r.db.Where("batch = ?", batch).Order("id desc").Find(&recs).Error; err != nil {
		return 0, fmt.Errorf("migration: list batch %d: %w", batch, err)
	}

	byName := make(map[string]Migration)
	for _, e := range registered() {
		byName[e.name] = e.m
	}

	for _, rec := range recs {
		m, ok := byName[rec.Name]
		if !ok {
			return 0, fmt.Errorf("migration: cannot roll back %s: not registered", rec.Name)
		}
		logger.Info("migration: rolling back", "name", rec.Name, "batch", batch)
		if err := m.Down(r.db); err != nil {
			return 0, fmt.Errorf("migration: %s down: %w", rec.Name, err)
		}
		if err := r.db.Delete(&rec).Error; err != nil {
			return 0, fmt.Errorf("migration: forget %s: %w", rec.Name, err)
		}
	}
	return len(recs), nil
}

// Status writes one line per registered migration.
func (r *Runner) Status(w io.Writer) error {
	if err := r.ensureTable(); err != nil {
		return err
	}
	var ran []record
	if err := r.db.Find(&ran).Error; err != nil {
		return err
	}
	byName := make(map[string]record, len(ran))
	for _, rec := range ran {
		byName[rec.Name] = rec
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "MIGRATION\tSTATUS\tBATCH")
	for _, e := range registered() {
		if rec, ok := byName[e.name]; ok {
			fmt.Fprintf(tw, "%s\tRan\t%d\n", e.name, rec.Batch)
		} else {
			fmt.Fprintf(tw, "%s\tPending\t-\n", e.name)
		}
	}
	return tw.Flush()
}

func (r *Runner) lastBatch() int {
	var out struct{ Max int }
	r.db.Model(&record{}).Select("COALESCE(MAX(batch), 0) AS max").Scan(&out)
	return out.Max
}
