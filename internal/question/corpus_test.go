package question

import (
	"strings"
	"testing"
)

func rawWith(id, text string) RawQuestion {
	raw := validRaw()
	raw.ID = id
	if text != "" {
		raw.Question = text
	}
	return raw
}

func TestBuildCorpusCollectsErrors(t *testing.T) {
	bad := validRaw()
	bad.ID = "q2"
	bad.Difficulty = "novice"

	corpus, report := BuildCorpus([]RawQuestion{
		rawWith("q1", ""),
		bad,
		rawWith("q3", "How do React hooks capture state?"),
	})

	if report.OK() {
		t.Fatal("report.OK() = true, want false")
	}
	if report.Accepted != 2 {
		t.Errorf("Accepted = %d, want 2", report.Accepted)
	}
	if len(report.Errors) != 1 {
		t.Fatalf("Errors = %v, want 1 entry", report.Errors)
	}
	if report.Errors[0].Index != 1 || report.Errors[0].ID != "q2" {
		t.Errorf("error = %+v, want index 1 id q2", report.Errors[0])
	}
	if corpus.Len() != 2 {
		t.Errorf("corpus.Len() = %d, want 2", corpus.Len())
	}
	if !corpus.Contains("q3") {
		t.Error("corpus should contain q3")
	}
}

func TestBuildCorpusRejectsDuplicateIDWithinBatch(t *testing.T) {
	corpus, report := BuildCorpus([]RawQuestion{
		rawWith("q1", "First phrasing of the question?"),
		rawWith("q1", "Second phrasing of the question?"),
	})
	if corpus.Len() != 1 {
		t.Errorf("corpus.Len() = %d, want 1", corpus.Len())
	}
	if len(report.Errors) != 1 {
		t.Fatalf("Errors = %v, want 1 duplicate-id rejection", report.Errors)
	}
}

func TestBuildCorpusWarnsOnNearDuplicateText(t *testing.T) {
	text := "How does  Next.js handle   internationalized routing?"
	same := "how does next.js handle internationalized ROUTING?"
	_, report := BuildCorpus([]RawQuestion{
		rawWith("q1", text),
		rawWith("q2", same),
		rawWith("q3", "Entirely different question about memoization?"),
	})
	if !report.OK() {
		t.Fatalf("Errors = %v, want none", report.Errors)
	}
	if len(report.Warnings) != 1 {
		t.Fatalf("Warnings = %v, want exactly 1", report.Warnings)
	}
	if !strings.Contains(report.Warnings[0], "q2") || !strings.Contains(report.Warnings[0], "q1") {
		t.Errorf("warning %q should name both q2 and q1", report.Warnings[0])
	}
}

func TestCorpusTotalMinutes(t *testing.T) {
	a := rawWith("a", "")
	a.TimeEstimate = 3
	b := rawWith("b", "Another question entirely?")
	b.TimeEstimate = 5
	corpus, _ := BuildCorpus([]RawQuestion{a, b})

	total, err := corpus.TotalMinutes([]string{"a", "b"})
	if err != nil {
		t.Fatalf("TotalMinutes() error = %v", err)
	}
	if total != 8 {
		t.Errorf("TotalMinutes = %d, want 8", total)
	}
	if _, err := corpus.TotalMinutes([]string{"missing"}); err == nil {
		t.Error("TotalMinutes with unknown id should error")
	}
}
