package sqlitekv_test

import (
	"context"
	"path/filepath"
	"testing"

	"vn.io.terango/notifier/internal/infrastructure/sqlitekv"
)

func TestSetGetDelete(t *testing.T) {
	ctx := context.Background()
	s, err := sqlitekv.Open(ctx, filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if v, err := s.Get(ctx, "missing"); err != nil || v != nil {
		t.Fatalf("absent key: got (%v, %v), want (nil, nil)", v, err)
	}

	if err := s.Set(ctx, "feed", []byte(`[{"title":"a"}]`)); err != nil {
		t.Fatal(err)
	}
	v, err := s.Get(ctx, "feed")
	if err != nil || string(v) != `[{"title":"a"}]` {
		t.Fatalf("get after set: (%s, %v)", v, err)
	}

	// Overwrite replaces the value.
	if err := s.Set(ctx, "feed", []byte(`[]`)); err != nil {
		t.Fatal(err)
	}
	if v, _ := s.Get(ctx, "feed"); string(v) != `[]` {
		t.Fatalf("overwrite failed, got %s", v)
	}

	if err := s.Delete(ctx, "feed"); err != nil {
		t.Fatal(err)
	}
	if v, _ := s.Get(ctx, "feed"); v != nil {
		t.Fatalf("delete failed, got %s", v)
	}

	// Deleting an absent key succeeds.
	if err := s.Delete(ctx, "feed"); err != nil {
		t.Fatal(err)
	}
}

func TestValueSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	s, err := sqlitekv.Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "feed", []byte(`[1,2,3]`)); err != nil {
		t.Fatal(err)
	}
	s.Close()

	reopened, err := sqlitekv.Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	v, err := reopened.Get(ctx, "feed")
	if err != nil || string(v) != `[1,2,3]` {
		t.Fatalf("value lost across reopen: (%s, %v)", v, err)
	}
}
