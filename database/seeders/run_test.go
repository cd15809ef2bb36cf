package seeders

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRunSelectsByName(t *testing.T) {
	var ran []string
	Register("test-one", func(context.Context, *gorm.DB) error { ran = append(ran, "one"); return nil })
	Register("test-two", func(context.Context, *gorm.DB) error { ran = append(ran, "two"); return nil })

	require.NoError(t, Run(context.Background(), nil, "test-two"))
	assert.Equal(t, []string{"two"}, ran)

	assert.Contains(t, Names(), "catalog")
	assert.Error(t, Run(context.Background(), nil, "nope"))
}

func TestRunStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	Register("test-fail", func(context.Context, *gorm.DB) error { return boom })

	err := Run(context.Background(), nil, "test-fail")
	assert.ErrorIs(t, err, boom)
}

func TestSeedCatalogWithoutFile(t *testing.T) {
	t.Setenv("CATALOG_SEED_FILE", "")
	assert.NoError(t, SeedCatalog(context.Background(), nil))
}
