package idgen

import (
	"regexp"
	"strings"
	"testing"
)

var routeIDPattern = regexp.MustCompile(`^rt-[a-zA-Z0-9]{16}$`)

func TestNewRouteID_Format(t *testing.T) {
	for i := 0; i < 100; i++ {
		id, err := NewRouteID()
		if err != nil {
			t.Fatalf("NewRouteID() error on iteration %d: %v", i, err)
		}
		if !routeIDPattern.MatchString(id) {
			t.Fatalf("NewRouteID() = %q, does not match %s", id, routeIDPattern)
		}
	}
}

func TestNewRouteID_Unique(t *testing.T) {
	const count = 20_000
	seen := make(map[string]struct{}, count)
	for i := 0; i < count; i++ {
		id, err := NewRouteID()
		if err != nil {
			t.Fatalf("NewRouteID() error on iteration %d: %v", i, err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate ID after %d generations: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestWithPrefix(t *testing.T) {
	id, err := WithPrefix("seed-")
	if err != nil {
		t.Fatalf("WithPrefix error: %v", err)
	}
	if !strings.HasPrefix(id, "seed-") {
		t.Errorf("WithPrefix = %q, want prefix %q", id, "seed-")
	}
	if got := len(id) - len("seed-"); got != Length {
		t.Errorf("random part length = %d, want %d", got, Length)
	}
}

func TestNewRouteID_SatisfiesFunc(t *testing.T) {
	var f Func = NewRouteID
	if _, err := f(); err != nil {
		t.Fatal(err)
	}
}
