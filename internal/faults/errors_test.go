package faults_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"specmix/internal/faults"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := faults.Wrap(faults.ErrParse, "ingest", "read", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, faults.ErrParse) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"ingest", "read", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapAcceptsDerivedMarker(t *testing.T) {
	specific := fmt.Errorf("%w: missing required columns", faults.ErrSchema)
	err := faults.Wrap(specific, "store", "load", "", nil)
	if !errors.Is(err, specific) || !errors.Is(err, faults.ErrSchema) {
		t.Fatalf("expected both markers, got %v", err)
	}
}

func TestKindMapping(t *testing.T) {
	cases := map[error]string{
		nil:                             "",
		faults.ErrFormat:                "format",
		faults.ErrSingularMatrix:        "singular_matrix",
		faults.ErrNoEndMembersRemaining: "no_endmembers_remaining",
		errors.New("other"):             "internal",
	}
	for err, want := range cases {
		if got := faults.Kind(err); got != want {
			t.Fatalf("Kind(%v) = %q, want %q", err, got, want)
		}
	}
	wrapped := faults.Wrap(faults.ErrDatasetAlignment, "align", "", "no overlap", nil)
	if got := faults.Kind(wrapped); got != "dataset_alignment" {
		t.Fatalf("unexpected kind %q", got)
	}
	if faults.Hint(wrapped) == "" {
		t.Fatal("expected hint for alignment error")
	}
}
