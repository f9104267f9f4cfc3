package vetting

import "testing"

func TestIsValidSectionTransition(t *testing.T) {
	if IsValidSectionTransition(SectionStatusCompleted, SectionStatusNotStarted) {
		t.Fatalf("completed -> not_started must be invalid")
	}
	if !IsValidSectionTransition(SectionStatusNeedsRevision, SectionStatusInProgress) {
		t.Fatalf("needs_revision -> in_progress must be valid")
	}

	for _, from := range SectionStatuses {
		if IsValidSectionTransition(from, SectionStatusNotStarted) {
			t.Fatalf("%s -> not_started must be invalid", from)
		}
		if from != SectionStatusInProgress && IsValidSectionTransition(from, SectionStatusCompleted) {
			t.Fatalf("%s -> completed must go through in_progress", from)
		}
	}
}

func TestStatusAfterAssignment(t *testing.T) {
	if got := StatusAfterAssignment(SectionStatusNotStarted); got != SectionStatusAssigned {
		t.Fatalf("StatusAfterAssignment(not_started) = %s", got)
	}
	if got := StatusAfterAssignment(SectionStatusInProgress); got != SectionStatusInProgress {
		t.Fatalf("StatusAfterAssignment(in_progress) = %s", got)
	}
}

func TestEffectiveContent(t *testing.T) {
	if got := EffectiveContent(`{"a":1}`, `{"b":2}`); got != `{"a":1}` {
		t.Fatalf("EffectiveContent() = %s", got)
	}
	if got := EffectiveContent("  ", `{"b":2}`); got != `{"b":2}` {
		t.Fatalf("EffectiveContent() fallback = %s", got)
	}
}

func TestParseSectionType(t *testing.T) {
	if _, err := ParseSectionType("digital_presence"); err != nil {
		t.Fatalf("ParseSectionType() error = %v", err)
	}
	if _, err := ParseSectionType("press_kit"); err == nil {
		t.Fatalf("ParseSectionType() expected error")
	}
}
