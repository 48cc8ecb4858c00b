package presence

import "testing"

func TestCache(t *testing.T) {
	c := NewCache()

	if c.Has("g1", "s1") {
		t.Fatal("empty cache reported a live pair")
	}

	c.Set("g1", "s1")
	c.Set("g1", "s1") // idempotent
	c.Set("g2", "s1")

	if !c.Has("g1", "s1") || !c.Has("g2", "s1") {
		t.Fatal("set pairs not reported live")
	}
	if c.Has("g1", "s2") {
		t.Fatal("unrelated pair reported live")
	}
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}

	c.Delete("g1", "s1")
	c.Delete("g1", "s1") // absent delete is a no-op

	if c.Has("g1", "s1") {
		t.Fatal("deleted pair still reported live")
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
}
