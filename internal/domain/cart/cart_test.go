package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront/internal/domain/product"
)

func newTestProduct(id int64, name, price string) *product.Product {
	return &product.Product{
		ID:       id,
		Name:     name,
		Category: "test",
		Price:    decimal.RequireFromString(price),
	}
}

func TestAddItem_NewLines(t *testing.T) {
	p1 := newTestProduct(1, "P1", "100")
	p2 := newTestProduct(2, "P2", "50")
	c := New()

	require.NoError(t, c.AddItem(p1, 1))
	require.NoError(t, c.AddItem(p2, 1))

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Same(t, p1, lines[0].Product)
	assert.Same(t, p2, lines[1].Product)
}

func TestAddItem_MergesQuantityForExistingLine(t *testing.T) {
	p1 := newTestProduct(1, "P1", "100")
	p2 := newTestProduct(2, "P2", "50")
	c := New()

	require.NoError(t, c.AddItem(p1, 1))
	require.NoError(t, c.AddItem(p2, 1))
	require.NoError(t, c.AddItem(p1, 10))

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, int64(1), lines[0].Product.ID)
	assert.Equal(t, 11, lines[0].Quantity)
	assert.Equal(t, 1, lines[1].Quantity)
	assert.Equal(t, 12, c.Quantity())
}

func TestAddItem_MergesByIdentityNotPointer(t *testing.T) {
	c := New()

	require.NoError(t, c.AddItem(newTestProduct(7, "Kayak", "275"), 2))
	require.NoError(t, c.AddItem(newTestProduct(7, "Kayak", "275"), 3))

	require.Equal(t, 1, c.Len())
	assert.Equal(t, 5, c.Lines()[0].Quantity)
}

func TestAddItem_QuantitySumProperty(t *testing.T) {
	p := newTestProduct(1, "P1", "1")
	c := New()

	sum := 0
	for _, q := range []int{3, 1, 4, 1, 5, 9, 2, 6} {
		require.NoError(t, c.AddItem(p, q))
		sum += q
	}

	require.Equal(t, 1, c.Len())
	assert.Equal(t, sum, c.Lines()[0].Quantity)
}

func TestAddItem_ContractViolations(t *testing.T) {
	c := New()

	assert.ErrorIs(t, c.AddItem(newTestProduct(1, "P1", "1"), 0), ErrInvalidQuantity)
	assert.ErrorIs(t, c.AddItem(newTestProduct(1, "P1", "1"), -3), ErrInvalidQuantity)
	assert.ErrorIs(t, c.AddItem(nil, 1), ErrNilProduct)
	assert.True(t, c.IsEmpty())
}

func TestRemoveLine(t *testing.T) {
	p1 := newTestProduct(1, "P1", "1")
	p2 := newTestProduct(2, "P2", "1")
	p3 := newTestProduct(3, "P3", "1")
	c := New()

	require.NoError(t, c.AddItem(p1, 1))
	require.NoError(t, c.AddItem(p2, 3))
	require.NoError(t, c.AddItem(p3, 5))
	require.NoError(t, c.AddItem(p2, 1))

	c.RemoveLine(p2.ID)

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, int64(1), lines[0].Product.ID)
	assert.Equal(t, int64(3), lines[1].Product.ID)
}

func TestRemoveLine_Idempotent(t *testing.T) {
	p1 := newTestProduct(1, "P1", "1")
	p2 := newTestProduct(2, "P2", "1")
	c := New()
	require.NoError(t, c.AddItem(p1, 1))
	require.NoError(t, c.AddItem(p2, 2))

	c.RemoveLine(p1.ID)
	after := c.Lines()
	c.RemoveLine(p1.ID)
	c.RemoveLine(99)

	assert.Equal(t, after, c.Lines())
}

func TestComputeTotalValue(t *testing.T) {
	p1 := newTestProduct(1, "P1", "100")
	p2 := newTestProduct(2, "P2", "50")
	c := New()

	require.NoError(t, c.AddItem(p1, 1))
	require.NoError(t, c.AddItem(p2, 1))
	require.NoError(t, c.AddItem(p1, 3))

	assert.True(t, decimal.NewFromInt(450).Equal(c.ComputeTotalValue()))
}

func TestComputeTotalValue_ReadsCurrentPrice(t *testing.T) {
	p1 := newTestProduct(1, "P1", "10.50")
	c := New()
	require.NoError(t, c.AddItem(p1, 2))
	require.True(t, decimal.RequireFromString("21").Equal(c.ComputeTotalValue()))

	p1.Price = decimal.RequireFromString("4.25")

	assert.True(t, decimal.RequireFromString("8.5").Equal(c.ComputeTotalValue()))
}

func TestComputeTotalValue_Empty(t *testing.T) {
	assert.True(t, decimal.Zero.Equal(New().ComputeTotalValue()))
}

func TestClear(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(newTestProduct(1, "P1", "100"), 1))
	require.NoError(t, c.AddItem(newTestProduct(2, "P2", "50"), 1))

	c.Clear()
	assert.Empty(t, c.Lines())
	assert.True(t, c.IsEmpty())

	// Same cart keeps working after Clear.
	require.NoError(t, c.AddItem(newTestProduct(3, "P3", "5"), 2))
	require.Equal(t, 1, c.Len())
	assert.Equal(t, int64(3), c.Lines()[0].Product.ID)
}

func TestLines_ReturnsCopy(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(newTestProduct(1, "P1", "1"), 1))
	require.NoError(t, c.AddItem(newTestProduct(2, "P2", "1"), 1))

	lines := c.Lines()
	lines[0], lines[1] = lines[1], lines[0]
	lines[0].Quantity = 100

	fresh := c.Lines()
	assert.Equal(t, int64(1), fresh[0].Product.ID)
	assert.Equal(t, 1, fresh[0].Quantity)
	assert.Equal(t, 1, fresh[1].Quantity)
}
