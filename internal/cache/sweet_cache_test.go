package cache

import (
	"testing"

	dom "Sweetshop/internal/domain"
)

func TestListKey(t *testing.T) {
	if got := ListKey(0, 100); got != "0:100" {
		t.Fatalf("ListKey = %q", got)
	}
	if ListKey(0, 100) == ListKey(10, 100) {
		t.Fatalf("different pages must not collide")
	}
}

func TestSearchKey(t *testing.T) {
	min, max := 2.0, 10.0
	a := SearchKey(dom.SweetFilter{Name: "  Chocolate ", MinPrice: &min})
	b := SearchKey(dom.SweetFilter{Name: "chocolate", MinPrice: &min})
	if a != b {
		t.Fatalf("key must normalize case and spacing: %q vs %q", a, b)
	}

	c := SearchKey(dom.SweetFilter{Name: "chocolate", MaxPrice: &max})
	if b == c {
		t.Fatalf("different filters must not collide: %q", b)
	}

	empty := SearchKey(dom.SweetFilter{})
	if empty != "|||" {
		t.Fatalf("empty filter key = %q", empty)
	}
}
