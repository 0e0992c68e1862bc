package store

import (
	"context"
	"testing"
)

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, ok, err := m.Get(ctx, KeyListings); ok || err != nil {
		t.Fatalf("Get() on empty store = ok=%v err=%v, want absent", ok, err)
	}

	if err := m.Set(ctx, KeyListings, []byte(`[]`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, ok, err := m.Get(ctx, KeyListings)
	if err != nil || !ok {
		t.Fatalf("Get() = ok=%v err=%v, want present", ok, err)
	}
	if string(value) != `[]` {
		t.Errorf("Get() = %q, want %q", value, `[]`)
	}
}

func TestMemoryDel(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if err := m.Set(ctx, KeySession, []byte(`"sneha"`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := m.Del(ctx, KeySession); err != nil {
		t.Fatalf("Del() error = %v", err)
	}
	if _, ok, _ := m.Get(ctx, KeySession); ok {
		t.Error("Get() after Del() still present")
	}
	// deleting a missing key is not an error
	if err := m.Del(ctx, KeySession); err != nil {
		t.Errorf("Del() on missing key = %v, want nil", err)
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	original := []byte(`{"a":1}`)
	if err := m.Set(ctx, KeyPins, original); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	original[0] = 'X'

	value, _, _ := m.Get(ctx, KeyPins)
	if string(value) != `{"a":1}` {
		t.Errorf("stored value aliased caller buffer: %q", value)
	}

	value[0] = 'Y'
	again, _, _ := m.Get(ctx, KeyPins)
	if string(again) != `{"a":1}` {
		t.Errorf("returned value aliased store buffer: %q", again)
	}
}

func TestDraftKey(t *testing.T) {
	if got := DraftKey("sneha"); got != "bazar:draft:v1:sneha" {
		t.Errorf("DraftKey() = %q", got)
	}
}
