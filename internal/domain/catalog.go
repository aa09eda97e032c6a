package domain

import "strings"

// Category maps a public slug to the Firestore collection holding its products.
type Category struct {
	Slug       string
	Collection string
	Kind       SizeKind
	// FlexibleKind lets the admin mark items as shoes or pants regardless of the category.
	FlexibleKind bool
}

var categories = []Category{
	{Slug: "shirts", Collection: "חולצות", Kind: SizeKindRegular},
	{Slug: "pants", Collection: "מכנסיים", Kind: SizeKindPants},
	{Slug: "jackets", Collection: "ז'קטים", Kind: SizeKindRegular},
	{Slug: "shoes", Collection: "נעליים", Kind: SizeKindShoe},
	{Slug: "hats", Collection: "כובעים", Kind: SizeKindRegular},
	{Slug: "tracksuits", Collection: "טרנינג", Kind: SizeKindRegular},
	{Slug: "new-collection", Collection: "New Collection", Kind: SizeKindRegular, FlexibleKind: true},
}

// Categories returns every storefront category in display order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// LookupCategory resolves a category by slug or by its collection name.
func LookupCategory(value string) (Category, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Category{}, false
	}
	lower := strings.ToLower(trimmed)
	for _, c := range categories {
		if c.Slug == lower || c.Collection == trimmed {
			return c, true
		}
	}
	return Category{}, false
}

var (
	regularSizes = []string{"XS", "S", "M", "L", "XL", "XXL", "XXXL"}
	shoeSizes    = []string{"39", "40", "41", "42", "43", "44", "45"}
	pantsSizes   = []string{"29", "30", "31", "32", "33", "34", "35", "36", "37", "38"}
)

// SizeCatalog lists the labels permitted for a size kind, in display order.
func SizeCatalog(kind SizeKind) []string {
	switch kind {
	case SizeKindShoe:
		return append([]string(nil), shoeSizes...)
	case SizeKindPants:
		return append([]string(nil), pantsSizes...)
	default:
		return append([]string(nil), regularSizes...)
	}
}

// NormalizeSizes trims, de-duplicates and orders labels by the catalog for kind.
// The second return value lists labels that are not part of the catalog.
func NormalizeSizes(kind SizeKind, labels []string) ([]string, []string) {
	wanted := make(map[string]struct{}, len(labels))
	var unknown []string
	catalog := SizeCatalog(kind)
	for _, label := range labels {
		trimmed := strings.ToUpper(strings.TrimSpace(label))
		if trimmed == "" {
			continue
		}
		if !contains(catalog, trimmed) {
			unknown = append(unknown, label)
			continue
		}
		wanted[trimmed] = struct{}{}
	}
	out := make([]string, 0, len(wanted))
	for _, label := range catalog {
		if _, ok := wanted[label]; ok {
			out = append(out, label)
		}
	}
	return out, unknown
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
