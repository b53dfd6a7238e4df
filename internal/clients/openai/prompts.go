package openai

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/theshibabasement/neuroflow/internal/memory"
)

//go:embed prompts.yaml
var promptsYAML []byte

type promptSet struct {
	ExtractionSystem string `yaml:"extraction_system"`
	ExtractionUser   string `yaml:"extraction_user"`
	ExpansionSystem  string `yaml:"expansion_system"`
	ExpansionUser    string `yaml:"expansion_user"`
	SynthesisSystem  string `yaml:"synthesis_system"`
	SynthesisUser    string `yaml:"synthesis_user"`
}

var prompts = loadPrompts()

func loadPrompts() promptSet {
	var p promptSet
	if err := yaml.Unmarshal(promptsYAML, &p); err != nil {
		panic(fmt.Sprintf("openai: invalid embedded prompts: %v", err))
	}
	return p
}

func (p promptSet) extractionUser(question, answer, conversationContext string) string {
	ctxLine := ""
	if strings.TrimSpace(conversationContext) != "" {
		ctxLine = "Conversation context: " + conversationContext
	}
	return fmt.Sprintf(p.ExtractionUser, question, answer, ctxLine)
}

func (p promptSet) expansionUser(query, scopeKind string) string {
	return fmt.Sprintf(p.ExpansionUser, scopeKind, query)
}

func (p promptSet) synthesisUser(candidates []memory.Candidate, query string, maxLength int) string {
	var snippets strings.Builder
	for i, c := range candidates {
		switch {
		case c.Record != nil:
			fmt.Fprintf(&snippets, "%d. Q: %s A: %s\n", i+1, c.Record.Question, c.Record.Answer)
		case c.Entity != nil:
			fmt.Fprintf(&snippets, "%d. [%s] %s: %s\n", i+1, c.Entity.Type, c.Entity.Name, c.Entity.Description)
		}
	}
	return fmt.Sprintf(p.SynthesisUser, query, maxLength, snippets.String())
}
