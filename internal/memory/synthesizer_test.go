package memory

import (
	"context"
	"strings"
	"testing"
	"time"
)

func recordForLine(question, answer string, at time.Time) Candidate {
	return Candidate{
		Record: &MemoryRecord{
			ID:        question,
			Question:  question,
			Answer:    answer,
			CreatedAt: at,
		},
		Channel: ChannelVector,
	}
}

func TestComposeEmptyInputIsEmpty(t *testing.T) {
	s := &synthesizer{summarizer: &fakeSummarizer{text: "never called"}, log: testLogger(t)}
	if got := s.compose(context.Background(), nil, "anything", 2000); got != "" {
		t.Fatalf("empty candidate list: want empty got=%q", got)
	}
}

func TestComposePrefersSummarizer(t *testing.T) {
	s := &synthesizer{summarizer: &fakeSummarizer{text: "Acme renewed its contract in March."}, log: testLogger(t)}
	ranked := []Candidate{recordForLine("renewal?", "March", time.Now())}
	got := s.compose(context.Background(), ranked, "renewal?", 2000)
	if got != "Acme renewed its contract in March." {
		t.Fatalf("want summarizer output, got=%q", got)
	}
}

func TestComposeTruncatesSummarizerOutput(t *testing.T) {
	s := &synthesizer{summarizer: &fakeSummarizer{text: strings.Repeat("x", 300)}, log: testLogger(t)}
	ranked := []Candidate{recordForLine("q", "a", time.Now())}
	got := s.compose(context.Background(), ranked, "q", 100)
	if len(got) != 100 {
		t.Fatalf("length: want=100 got=%d", len(got))
	}
}

func TestComposeFallsBackWhenSummarizerFails(t *testing.T) {
	s := &synthesizer{summarizer: &fakeSummarizer{fail: true}, log: testLogger(t)}
	ranked := []Candidate{recordForLine("Where is HQ?", "Lisbon", time.Now())}
	got := s.compose(context.Background(), ranked, "Where is HQ?", 2000)
	if got != "- Q: Where is HQ? A: Lisbon" {
		t.Fatalf("fallback line: got=%q", got)
	}
}

func TestFallbackKeepsHighestRankedWithinBudget(t *testing.T) {
	now := time.Now()
	ranked := []Candidate{
		recordForLine("first", "one", now),
		recordForLine("second", "two", now),
		recordForLine("third", "three", now),
	}
	// Budget fits the first line only.
	got := renderFallback(ranked, len("- Q: first A: one")+3)
	if got != "- Q: first A: one" {
		t.Fatalf("want only the top-ranked line, got=%q", got)
	}
	full := renderFallback(ranked, 2000)
	if strings.Count(full, "\n") != 2 {
		t.Fatalf("full render: want 3 lines got=%q", full)
	}
	if len(got) > 2000 {
		t.Fatal("render exceeded budget")
	}
}

func TestRenderLineVariants(t *testing.T) {
	at := time.Now()
	rec := &MemoryRecord{Question: "q", Answer: "a", CreatedAt: at}
	tag := &EntityTag{ID: "e1", Name: "Acme", Type: "ORGANIZATION", Description: "client"}

	if got := renderLine(Candidate{Record: rec, Channel: ChannelVector}); got != "- Q: q A: a" {
		t.Fatalf("record line: got=%q", got)
	}
	withEntity := Candidate{Record: rec, Entity: tag, Channel: ChannelGraph}
	if got := renderLine(withEntity); got != "- [ORGANIZATION] Acme: Q: q A: a" {
		t.Fatalf("graph record line: got=%q", got)
	}
	entityOnly := Candidate{Entity: tag, Channel: ChannelGraph}
	if got := renderLine(entityOnly); got != "- [ORGANIZATION] Acme: client" {
		t.Fatalf("entity line: got=%q", got)
	}
	bare := Candidate{Entity: &EntityTag{ID: "e2", Name: "Acme", Type: "ORGANIZATION"}, Channel: ChannelGraph}
	if got := renderLine(bare); got != "- [ORGANIZATION] Acme: (no description)" {
		t.Fatalf("blank description line: got=%q", got)
	}
	if got := renderLine(Candidate{}); got != "" {
		t.Fatalf("empty candidate should render nothing, got=%q", got)
	}
}

func TestTruncateRunesRespectsMultibyte(t *testing.T) {
	s := strings.Repeat("é", 10)
	got := truncateRunes(s, 4)
	if got != "éééé" {
		t.Fatalf("rune truncation: got=%q", got)
	}
	if truncateRunes("short", 100) != "short" {
		t.Fatal("strings under the budget must pass through unchanged")
	}
}
