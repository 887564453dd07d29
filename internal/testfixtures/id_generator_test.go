package testfixtures

import "testing"

func TestIDGeneratorProducesSequentialIDs(t *testing.T) {
	gen := NewIDGenerator("task")

	first := gen.Next()
	second := gen.Next()

	if first != "task-1" || second != "task-2" {
		t.Fatalf("unexpected identifiers: %q, %q", first, second)
	}
}

func TestIDGeneratorReset(t *testing.T) {
	gen := NewIDGenerator("project")
	_ = gen.Next()
	gen.Reset("trade")

	if next := gen.Next(); next != "trade-1" {
		t.Fatalf("expected trade-1 after reset, got %q", next)
	}
}

func TestIDGeneratorResetKeepsPrefix(t *testing.T) {
	gen := NewIDGenerator("session")
	_ = gen.Next()
	_ = gen.Next()
	gen.Reset("")

	if next := gen.Next(); next != "session-1" {
		t.Fatalf("expected session-1 after reset, got %q", next)
	}
}
