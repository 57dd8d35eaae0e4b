package queue

import (
	"testing"

	"github.com/shiguri-01/preview-pdf/internal/pagekey"
)

func TestPopOrderByClassThenGenerationThenFIFO(t *testing.T) {
	q := New[int, string](Config{})
	q.Push("background-0", 0, pagekey.Background, 1)
	q.Push("lead-1", 1, pagekey.DirectionalLead, 1)
	q.Push("lead-2", 2, pagekey.DirectionalLead, 2)
	q.Push("critical", 3, pagekey.CriticalCurrent, 1)

	order := []string{}
	for {
		task, ok := q.PopNext()
		if !ok {
			break
		}
		order = append(order, task)
	}

	want := []string{"critical", "lead-2", "lead-1", "background-0"}
	for i, w := range want {
		if order[i] != w {
			t.Fatalf("pop order[%d] = %s, want %s (full order: %v)", i, order[i], w, order)
		}
	}
}

func TestFIFOWithinSameClassAndGeneration(t *testing.T) {
	q := New[int, string](Config{})
	q.Push("first", 1, pagekey.DirectionalLead, 1)
	q.Push("second", 2, pagekey.DirectionalLead, 1)
	q.Push("third", 3, pagekey.DirectionalLead, 1)

	for _, want := range []string{"first", "second", "third"} {
		got, ok := q.PopNext()
		if !ok || got != want {
			t.Fatalf("expected %s, got %s (ok=%v)", want, got, ok)
		}
	}
}

func TestDedupeSkipsDuplicateKey(t *testing.T) {
	q := New[int, string](Config{DedupeByKey: true})
	if !q.Push("first", 1, pagekey.Background, 1) {
		t.Fatalf("first push should be accepted")
	}
	if q.Push("second", 1, pagekey.CriticalCurrent, 2) {
		t.Fatalf("duplicate key push should be rejected")
	}
	if q.Len() != 1 {
		t.Fatalf("len = %d, want 1", q.Len())
	}
	got, _ := q.PopNext()
	if got != "first" {
		t.Fatalf("dedupe should keep the first accepted item, got %s", got)
	}
}

func TestCancelStalePrefetchPreservesCriticalAndGuard(t *testing.T) {
	q := New[int, string](Config{})
	q.Push("critical", 0, pagekey.CriticalCurrent, 1)
	q.Push("guard", 1, pagekey.GuardReverse, 1)
	q.Push("lead", 2, pagekey.DirectionalLead, 1)
	q.Push("background", 3, pagekey.Background, 1)

	removed := q.CancelStalePrefetch(2)
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	if !q.ContainsKey(0) || !q.ContainsKey(1) {
		t.Fatalf("critical/guard should survive staleness cancellation")
	}
	if q.ContainsKey(2) || q.ContainsKey(3) {
		t.Fatalf("lead/background should be canceled")
	}
}

func TestContainsKeyAndRemoveKey(t *testing.T) {
	q := New[int, string](Config{})
	q.Push("a", 5, pagekey.Background, 1)
	if !q.ContainsKey(5) {
		t.Fatalf("expected key 5 to be present")
	}
	if !q.RemoveKey(5) {
		t.Fatalf("expected RemoveKey to report removal")
	}
	if q.ContainsKey(5) {
		t.Fatalf("key 5 should be gone after RemoveKey")
	}
	if q.RemoveKey(5) {
		t.Fatalf("second RemoveKey should report nothing removed")
	}
}
