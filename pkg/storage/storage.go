// Package storage reads and writes files on named disks: "local" (a
// directory) and "s3" (any S3-compatible bucket).
//
//	storage.Connect(ctx)
//	disk, err := storage.Use("s3")
//	rc, err := disk.Open(ctx, "catalog/products.json")
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/shashiranjanraj/rocketcart/config"
	"github.com/shashiranjanraj/rocketcart/pkg/logger"
)

// ErrNotExist is returned by Open for a missing file on any disk.
var ErrNotExist = errors.New("storage: file does not exist")

// Disk is a flat namespace of files addressed by slash-separated paths.
type Disk interface {
	// Open returns the file content. The caller closes it.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// Put writes r to path, replacing any existing file.
	Put(ctx context.Context, path string, r io.Reader) error
	Exists(ctx context.Context, path string) (bool, error)
}

var (
	mu    sync.RWMutex
	disks = map[string]Disk{}
)

// Connect registers the local disk, plus the s3 disk when S3_BUCKET is set.
// An s3 misconfiguration is logged and leaves that disk out.
func Connect(ctx context.Context) {
	Register("local", NewLocal(config.StorageLocalRoot()))

	if config.StorageS3Bucket() == "" {
		return
	}
	d, err := NewS3(ctx, S3Options{
		Bucket:   config.StorageS3Bucket(),
		Region:   config.StorageS3Region(),
		Key:      config.StorageS3Key(),
		Secret:   config.StorageS3Secret(),
		Endpoint: config.StorageS3Endpoint(),
	})
	if err != nil {
		logger.Warn("storage: s3 disk disabled", "error", err)
		return
	}
	Register("s3", d)
}

// Register adds or replaces a disk.
func Register(name string, d Disk) {
	mu.Lock()
	defer mu.Unlock()
	disks[name] = d
}

// Use returns the named disk. An empty name means STORAGE_DISK.
func Use(name string) (Disk, error) {
	if name == "" {
		name = config.StorageDefault()
	}

	mu.RLock()
	d, ok := disks[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured (have %v)", name, Names())
	}
	return d, nil
}

// Names lists the registered disks.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]string, 0, len(disks))
	for name := range disks {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
