package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)

func shirt(id string, price float64, sizes ...string) Product {
	return Product{ID: id, Category: "shirts", Name: "Shirt " + id, Price: price, RegularSizes: sizes}
}

func TestCartAddPreselectsFirstSize(t *testing.T) {
	var cart Cart

	item, err := cart.Add(NewCartItem(shirt("P1", 100, "S", "M"), testNow))
	require.NoError(t, err)

	require.Equal(t, 1, item.Quantity)
	require.Equal(t, []string{"S"}, item.SelectedSizes)
	require.Len(t, cart.Items, 1)
	require.Equal(t, 100.0, cart.Total(0))
}

func TestCartAddExistingIncrementsByOne(t *testing.T) {
	var cart Cart
	product := shirt("P1", 50, "M", "L")

	cart.Add(NewCartItem(product, testNow))
	cart.Add(NewCartItem(product, testNow))
	item, err := cart.Add(NewCartItem(product, testNow))
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	require.Equal(t, 3, item.Quantity)
	require.Equal(t, []string{"M", "M", "M"}, cart.Items[0].SelectedSizes)
}

func TestCartAddWithoutSizesKeepsSelectionsEmpty(t *testing.T) {
	var cart Cart

	cart.Add(NewCartItem(Product{ID: "hat-1", Name: "Cap", Price: 30}, testNow))
	cart.Add(NewCartItem(Product{ID: "hat-1", Name: "Cap", Price: 30}, testNow))

	require.Equal(t, 2, cart.Items[0].Quantity)
	require.Empty(t, cart.Items[0].SelectedSizes)
}

func TestCartSetQuantityResizesSelections(t *testing.T) {
	var cart Cart
	cart.Add(NewCartItem(shirt("P1", 100, "S", "M"), testNow))

	changed, err := cart.SetQuantity("P1", 3)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, []string{"S", "S", "S"}, cart.Items[0].SelectedSizes)

	require.NoError(t, cart.SetSelectedSize("P1", 2, "M"))
	changed, err = cart.SetQuantity("P1", 2)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, []string{"S", "S"}, cart.Items[0].SelectedSizes)

	for n := 1; n <= 6; n++ {
		_, err := cart.SetQuantity("P1", n)
		require.NoError(t, err)
		require.Len(t, cart.Items[0].SelectedSizes, n)
	}
}

func TestCartSetQuantityBelowOneIsNoop(t *testing.T) {
	var cart Cart
	cart.Add(NewCartItem(shirt("P1", 100, "S"), testNow))

	for _, n := range []int{0, -1} {
		changed, err := cart.SetQuantity("P1", n)
		require.NoError(t, err)
		require.False(t, changed)
		require.Equal(t, 1, cart.Items[0].Quantity)
		require.Equal(t, []string{"S"}, cart.Items[0].SelectedSizes)
	}
}

func TestCartQuantityIsCappedPerLine(t *testing.T) {
	var cart Cart
	product := shirt("P1", 100, "S")
	cart.Add(NewCartItem(product, testNow))

	for _, n := range []int{MaxLineQuantity + 1, 20_000_000, 1 << 62} {
		changed, err := cart.SetQuantity("P1", n)
		require.ErrorIs(t, err, ErrQuantityTooLarge)
		require.False(t, changed)
		require.Equal(t, 1, cart.Items[0].Quantity)
		require.Len(t, cart.Items[0].SelectedSizes, 1)
	}

	changed, err := cart.SetQuantity("P1", MaxLineQuantity)
	require.NoError(t, err)
	require.True(t, changed)

	item, err := cart.Add(NewCartItem(product, testNow))
	require.ErrorIs(t, err, ErrQuantityTooLarge)
	require.Equal(t, MaxLineQuantity, item.Quantity)
	require.Len(t, cart.Items[0].SelectedSizes, MaxLineQuantity)
}

func TestCartNormalizeClampsQuantities(t *testing.T) {
	cart := Cart{Items: []CartItem{
		{ID: "P1", Quantity: 1 << 40, Sizes: []string{"S"}},
		{ID: "P2", Quantity: 60},
		{ID: "P2", Quantity: 60},
	}}

	cart.Normalize()

	require.Equal(t, MaxLineQuantity, cart.Items[0].Quantity)
	require.Len(t, cart.Items[0].SelectedSizes, MaxLineQuantity)
	require.Equal(t, MaxLineQuantity, cart.Items[1].Quantity)
	require.Empty(t, cart.Items[1].SelectedSizes)
}

func TestCartSetQuantityUnknownItem(t *testing.T) {
	var cart Cart
	_, err := cart.SetQuantity("missing", 2)
	require.ErrorIs(t, err, ErrCartItemNotFound)
}

func TestCartSetSelectedSizeValidation(t *testing.T) {
	var cart Cart
	cart.Add(NewCartItem(shirt("P1", 100, "S", "M"), testNow))

	require.ErrorIs(t, cart.SetSelectedSize("P1", 1, "M"), ErrSizeSlotOutOfRange)
	require.ErrorIs(t, cart.SetSelectedSize("P1", 0, "XXL"), ErrSizeNotOffered)
	require.ErrorIs(t, cart.SetSelectedSize("nope", 0, "S"), ErrCartItemNotFound)

	require.NoError(t, cart.SetSelectedSize("P1", 0, "M"))
	require.Equal(t, []string{"M"}, cart.Items[0].SelectedSizes)
}

func TestCartRemoveAndClear(t *testing.T) {
	var cart Cart
	cart.Add(NewCartItem(shirt("P1", 100, "S"), testNow))
	cart.Add(NewCartItem(shirt("P2", 20), testNow))

	require.True(t, cart.Remove("P1"))
	require.False(t, cart.Remove("P1"))
	require.Len(t, cart.Items, 1)

	cart.Clear()
	require.True(t, cart.Empty())
	require.Zero(t, cart.Total(0))
}

func TestCartTotalHonoursCheckoutLimit(t *testing.T) {
	var cart Cart
	cart.Add(NewCartItem(shirt("P1", 100), testNow))
	cart.Add(NewCartItem(shirt("P2", 40), testNow))
	cart.Add(NewCartItem(shirt("P3", 9.99), testNow))
	_, err := cart.SetQuantity("P2", 2)
	require.NoError(t, err)

	require.Equal(t, 189.99, cart.Total(0))
	require.Equal(t, 180.0, cart.Total(2))
	require.True(t, cart.HasExcess(2))
	require.False(t, cart.HasExcess(0))
	require.Len(t, cart.CheckoutItems(2), 2)
	require.Equal(t, 4, cart.Units())
}

func TestCartNormalizeRepairsStoredLines(t *testing.T) {
	cart := Cart{Items: []CartItem{
		{ID: " P1 ", Price: 10, Quantity: 0, Sizes: []string{"S", "M"}},
		{ID: "", Price: 5, Quantity: 1},
		{ID: "P2", Price: -3, Quantity: 3, Sizes: []string{"40"}, SelectedSizes: []string{"40", "40", "40", "40"}},
		{ID: "P1", Price: 10, Quantity: 2, Sizes: []string{"S", "M"}, SelectedSizes: []string{"M", "M"}},
	}}

	cart.Normalize()

	require.Len(t, cart.Items, 2)
	require.Equal(t, "P1", cart.Items[0].ID)
	require.Equal(t, 3, cart.Items[0].Quantity)
	require.Equal(t, []string{"S", "M", "M"}, cart.Items[0].SelectedSizes)
	require.Equal(t, 0.0, cart.Items[1].Price)
	require.Equal(t, []string{"40", "40", "40"}, cart.Items[1].SelectedSizes)
}

func TestCloneCartItemsIsDeep(t *testing.T) {
	rp := 120.0
	items := []CartItem{{ID: "P1", Sizes: []string{"S"}, SelectedSizes: []string{"S"}, RegularPrice: &rp}}

	cloned := CloneCartItems(items)
	cloned[0].SelectedSizes[0] = "M"
	*cloned[0].RegularPrice = 1

	require.Equal(t, "S", items[0].SelectedSizes[0])
	require.Equal(t, 120.0, *items[0].RegularPrice)
}

func TestProductSizesFollowKind(t *testing.T) {
	p := Product{RegularSizes: []string{"M"}, ShoeSizes: []string{"42"}, PantsSizes: []string{"32"}}
	require.Equal(t, []string{"M"}, p.Sizes())

	p.IsShoe = true
	require.Equal(t, SizeKindShoe, p.Kind())
	require.Equal(t, []string{"42"}, p.Sizes())

	p.IsShoe, p.IsPants = false, true
	require.Equal(t, []string{"32"}, p.Sizes())
}

func TestNormalizeSizesOrdersByCatalog(t *testing.T) {
	sizes, unknown := NormalizeSizes(SizeKindRegular, []string{"xl", "S", "S", " m ", "XXXXL"})
	require.Equal(t, []string{"S", "M", "XL"}, sizes)
	require.Equal(t, []string{"XXXXL"}, unknown)

	sizes, unknown = NormalizeSizes(SizeKindPants, []string{"38", "29"})
	require.Equal(t, []string{"29", "38"}, sizes)
	require.Empty(t, unknown)
}

func TestLookupCategoryBySlugOrCollection(t *testing.T) {
	c, ok := LookupCategory("Shoes")
	require.True(t, ok)
	require.Equal(t, "נעליים", c.Collection)
	require.Equal(t, SizeKindShoe, c.Kind)

	c, ok = LookupCategory("New Collection")
	require.True(t, ok)
	require.True(t, c.FlexibleKind)

	_, ok = LookupCategory("socks")
	require.False(t, ok)
}
