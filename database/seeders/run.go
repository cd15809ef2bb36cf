// Package seeders is the registry behind the seed command. Seeders register
// themselves from init():
//
//	func init() {
//	    seeders.Register("catalog", SeedCatalog)
//	}
package seeders

import (
	"context"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/rocketcart/pkg/logger"
	"gorm.io/gorm"
)

type SeederFunc func(ctx context.Context, db *gorm.DB) error

type seederEntry struct {
	name string
	fn   SeederFunc
}

var (
	mu      sync.Mutex
	entries []seederEntry
)

func Register(name string, fn SeederFunc) {
	mu.Lock()
	defer mu.Unlock()
	entries = append(entries, seederEntry{name: name, fn: fn})
}

// Names lists the registered seeders in run order.
func Names() []string {
	mu.Lock()
	defer mu.Unlock()

	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.name
	}
	return out
}

// Run executes the named seeders, or all of them when names is empty, in
// registration order. It stops on the first error.
func Run(ctx context.Context, db *gorm.DB, names ...string) error {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	mu.Lock()
	current := append([]seederEntry(nil), entries...)
	mu.Unlock()

	ran := 0
	for _, e := range current {
		if len(want) > 0 && !want[e.name] {
			continue
		}
		logger.Info("seed: running", "seeder", e.name)
		if err := e.fn(ctx, db); err != nil {
			return fmt.Errorf("seeder %q: %w", e.name, err)
		}
		delete(want, e.name)
		ran++
	}

	for n := range want {
		return fmt.Errorf("seeder %q is not registered", n)
	}
	if ran == 0 {
		logger.Info("seed: no seeders registered")
	}
	return nil
}
