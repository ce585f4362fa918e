package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListScan(t *testing.T) {
	var s StringList
	require.NoError(t, s.Scan(`["/a.jpg","/b.jpg"]`))
	assert.Equal(t, StringList{"/a.jpg", "/b.jpg"}, s)
	assert.Equal(t, "/a.jpg", s.First())

	require.NoError(t, s.Scan([]byte("not json")))
	assert.Empty(t, s)
	assert.Equal(t, "", s.First())

	require.NoError(t, s.Scan(nil))
	assert.NotNil(t, s)

	assert.Error(t, s.Scan(42))
}

func TestStringListValue(t *testing.T) {
	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = StringList{"x"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["x"]`, v)
}

func TestAddressSnapshot(t *testing.T) {
	a := Address{
		FullName:      "John Doe",
		Phone:         "+27827654321",
		StreetAddress: "12 Long St",
		UnitNumber:    "Unit 4",
		Suburb:        "Gardens",
		City:          "Cape Town",
		Province:      "Western Cape",
		PostalCode:    "8001",
	}
	assert.Equal(t, "John Doe\n+27827654321\n12 Long St, Unit 4\nGardens\nCape Town\nWestern Cape\n8001", a.Snapshot())

	a.UnitNumber = ""
	assert.Contains(t, a.Snapshot(), "\n12 Long St\n")
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range OrderStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, OrderStatus("LOST").Valid())
}

func TestProductDiscount(t *testing.T) {
	p := Product{Price: decimal.RequireFromString("100.00")}
	assert.True(t, p.Discount().IsZero())

	p.ComparePrice = decimal.NewNullDecimal(decimal.RequireFromString("120.50"))
	assert.Equal(t, "20.5", p.Discount().String())
}

func TestCartItemLineTotal(t *testing.T) {
	c := CartItem{Quantity: 3}
	assert.True(t, c.LineTotal().IsZero())
	c.Product = &Product{Price: decimal.RequireFromString("19.99")}
	assert.Equal(t, "59.97", c.LineTotal().String())
}
