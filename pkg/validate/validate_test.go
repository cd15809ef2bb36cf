package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID       string  `json:"id"       validate:"required,max=4"`
	Name     string  `json:"name"     validate:"required,min=2"`
	Quantity int     `json:"quantity" validate:"gte=0,lte=10"`
	Kind     string  `json:"kind"     validate:"nullable,in=fruit|veg"`
	Slug     string  `json:"slug"     validate:"nullable,alpha_dash"`
	Note     *string `json:"note"`
}

func TestStructValid(t *testing.T) {
	errs := Struct(record{ID: "a", Name: "Apple", Quantity: 3, Kind: "fruit"})
	assert.Empty(t, errs)
	assert.NoError(t, Check(&record{ID: "a", Name: "Apple"}))
}

func TestStructFirstFailingRulePerField(t *testing.T) {
	errs := Struct(record{ID: "", Name: "A", Quantity: -1, Kind: "nut", Slug: "a b"})

	require.Len(t, errs, 5)
	assert.Equal(t, "The id field is required.", errs["id"])
	assert.Equal(t, "The name must be at least 2 characters.", errs["name"])
	assert.Equal(t, "The quantity must be greater than or equal to 0.", errs["quantity"])
	assert.Equal(t, "The selected kind is invalid.", errs["kind"])
	assert.Contains(t, errs["slug"], "dashes")
}

func TestMaxCountsCharactersNotBytes(t *testing.T) {
	assert.Empty(t, Struct(record{ID: "ééé", Name: "Ok"}))
	assert.Contains(t, Struct(record{ID: "ééééé", Name: "Ok"}), "id")
}

func TestBlankStringIsEmpty(t *testing.T) {
	errs := Struct(record{ID: "   ", Name: "Ok"})
	assert.Equal(t, "The id field is required.", errs["id"])
}

func TestCheckError(t *testing.T) {
	err := Check(record{Name: "Ok", Quantity: 11})
	require.Error(t, err)

	var errs Errors
	require.ErrorAs(t, err, &errs)
	assert.Len(t, errs, 2)
	assert.True(t, strings.HasPrefix(err.Error(), "The id field is required."), err.Error())
}

func TestNonStruct(t *testing.T) {
	assert.Empty(t, Struct("nope"))
}
