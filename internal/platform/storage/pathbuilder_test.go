package storage

import "testing"

func TestProductImagePath(t *testing.T) {
	path, err := ProductImagePath("Shoes", "01HZX", ".webp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "products/shoes/01HZX.webp" {
		t.Fatalf("unexpected path %s", path)
	}
}

func TestProductImagePathRejectsInvalidSegment(t *testing.T) {
	for _, tc := range []struct{ category, id string }{
		{"../bad", "id"},
		{"shoes", "a/b"},
		{"", "id"},
	} {
		if _, err := ProductImagePath(tc.category, tc.id, "png"); err == nil {
			t.Fatalf("expected error for %+v", tc)
		}
	}
}
