package store

import (
	"errors"
	"reflect"
	"testing"

	"github.com/openlit/litgraph/pkg/common"
)

func TestChunkRange(t *testing.T) {
	var windows [][2]int
	err := ChunkRange(11, 4, func(start, end int) error {
		windows = append(windows, [2]int{start, end})
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][2]int{{0, 4}, {4, 8}, {8, 11}}
	if !reflect.DeepEqual(windows, want) {
		t.Fatalf("expected windows %v, got %v", want, windows)
	}
}

func TestChunkRangeStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := ChunkRange(10, 3, func(start, end int) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestChunkRangeEmpty(t *testing.T) {
	if err := ChunkRange(0, 5, func(start, end int) error {
		t.Fatal("fn must not be called for empty range")
		return nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDedupeStrings(t *testing.T) {
	got := DedupeStrings([]string{"a", "", "b", "a", "c", "b"})
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected result %v", got)
	}
	if DedupeStrings(nil) != nil {
		t.Fatal("expected nil for empty input")
	}
}

func TestEntityEmbeddingText(t *testing.T) {
	entity := common.Entity{
		Name: "transfer learning",
		Evidence: []common.Evidence{
			{Quote: "we apply transfer learning"},
			{Quote: "   "},
			{Quote: "fine-tuned on the target task"},
		},
	}
	got := EntityEmbeddingText(entity)
	want := "transfer learning\nwe apply transfer learning\nfine-tuned on the target task"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
