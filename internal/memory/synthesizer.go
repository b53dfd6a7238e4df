package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/theshibabasement/neuroflow/internal/platform/logger"
)

// synthesizer turns the ranked candidate list into the final bounded context
// string. The external summarizer is preferred; its failure falls back to a
// deterministic template that keeps the highest-ranked lines.
type synthesizer struct {
	summarizer Summarizer
	log        *logger.Logger
}

func (s *synthesizer) compose(ctx context.Context, ranked []Candidate, query string, maxLength int) string {
	if len(ranked) == 0 {
		return ""
	}

	if s.summarizer != nil {
		text, err := s.summarizer.Synthesize(ctx, ranked, query, maxLength)
		if err == nil {
			text = strings.TrimSpace(text)
			if text != "" {
				return truncateRunes(text, maxLength)
			}
		} else {
			s.log.Warn("summarizer unavailable, using template fallback", "error", err)
		}
	}

	return renderFallback(ranked, maxLength)
}

// renderFallback emits one line per candidate, best ranked first, and stops
// before the next line would push past maxLength.
func renderFallback(ranked []Candidate, maxLength int) string {
	var b strings.Builder
	for _, c := range ranked {
		line := renderLine(c)
		if line == "" {
			continue
		}
		extra := len(line)
		if b.Len() > 0 {
			extra++
		}
		if maxLength > 0 && b.Len()+extra > maxLength {
			break
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	return b.String()
}

func renderLine(c Candidate) string {
	switch {
	case c.Record != nil && c.Channel == ChannelGraph && c.Entity != nil && c.Entity.Name != "":
		return fmt.Sprintf("- [%s] %s: Q: %s A: %s", c.Entity.Type, c.Entity.Name, c.Record.Question, c.Record.Answer)
	case c.Record != nil:
		return fmt.Sprintf("- Q: %s A: %s", c.Record.Question, c.Record.Answer)
	case c.Entity != nil && c.Entity.Name != "":
		desc := c.Entity.Description
		if desc == "" {
			desc = "(no description)"
		}
		return fmt.Sprintf("- [%s] %s: %s", c.Entity.Type, c.Entity.Name, desc)
	default:
		return ""
	}
}

func truncateRunes(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
