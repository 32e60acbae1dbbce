package slug

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMake(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Hello, World!", "hello-world"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Crème Brûlée à la carte", "creme-brulee-a-la-carte"},
		{"Straße über Øresund", "strasse-uber-oresund"},
		{"Tom & Jerry", "tom-and-jerry"},
		{"Go 1.25 --- released!!", "go-1-25-released"},
		{"İstanbul", "istanbul"},
		{"", Fallback},
		{"!!! ??? ---", Fallback},
		{"中文标题", Fallback},
		{"already-a-slug", "already-a-slug"},
	}

	for _, tc := range cases {
		if got := Make(tc.in); got != tc.want {
			t.Errorf("Make(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMake_Idempotent(t *testing.T) {
	titles := []string{
		"Hello, World!",
		"Crème Brûlée",
		"  --x--  ",
		"",
		"A  B\tC\nD",
		"Ünïcödé Çhäràctérs 123",
		"post",
	}
	for _, title := range titles {
		once := Make(title)
		if twice := Make(once); twice != once {
			t.Errorf("Make not idempotent for %q: %q then %q", title, once, twice)
		}
	}
}

// ---------------------------------------------------------------------------
// Allocator
// ---------------------------------------------------------------------------

type stubChecker struct {
	owners map[string]string // slug -> post id
	err    error
	calls  int
}

func newStubChecker() *stubChecker {
	return &stubChecker{owners: make(map[string]string)}
}

func (s *stubChecker) ExistsSlug(_ context.Context, slug, excludeID string) (bool, error) {
	s.calls++
	if s.err != nil {
		return false, s.err
	}
	owner, ok := s.owners[slug]
	if !ok {
		return false, nil
	}
	return owner != excludeID, nil
}

func TestAllocate_SequentialInserts(t *testing.T) {
	checker := newStubChecker()
	alloc := NewAllocator(checker)

	want := []string{"hello-world", "hello-world-1", "hello-world-2"}
	for i, w := range want {
		got, err := alloc.Allocate(context.Background(), "Hello, World!", "")
		if err != nil {
			t.Fatalf("Allocate: %v", err)
		}
		if got != w {
			t.Fatalf("insert %d: expected %q, got %q", i+1, w, got)
		}
		checker.owners[got] = fmt.Sprintf("id-%d", i)
	}
}

func TestAllocate_ReturnsNextSuffixAfterN(t *testing.T) {
	checker := newStubChecker()
	checker.owners["news"] = "a"
	const n = 7
	for i := 1; i <= n; i++ {
		checker.owners[fmt.Sprintf("news-%d", i)] = fmt.Sprintf("id-%d", i)
	}

	got, err := NewAllocator(checker).Allocate(context.Background(), "News", "")
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if got != "news-8" {
		t.Fatalf("expected news-8, got %q", got)
	}
}

func TestAllocate_ExcludesOwnDocument(t *testing.T) {
	checker := newStubChecker()
	checker.owners["my-post"] = "self"

	got, err := NewAllocator(checker).Allocate(context.Background(), "My Post", "self")
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if got != "my-post" {
		t.Fatalf("own slug must not collide, got %q", got)
	}
}

func TestAllocate_EmptyTitleFallsBack(t *testing.T) {
	checker := newStubChecker()
	checker.owners["post"] = "x"

	got, err := NewAllocator(checker).Allocate(context.Background(), "???", "")
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if got != "post-1" {
		t.Fatalf("expected post-1, got %q", got)
	}
}

func TestAllocate_StoreErrorPropagates(t *testing.T) {
	storeErr := errors.New("connection refused")
	checker := newStubChecker()
	checker.err = storeErr

	_, err := NewAllocator(checker).Allocate(context.Background(), "Title", "")
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
	if checker.calls != 1 {
		t.Fatalf("allocator must not retry, got %d calls", checker.calls)
	}
}

func TestAllocate_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAllocator(newStubChecker()).Allocate(ctx, "Title", "")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
