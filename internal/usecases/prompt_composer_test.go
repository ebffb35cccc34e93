package usecases

import (
	"strings"
	"testing"

	"github.com/IbrahimDoba/CallPlatter-sub001/internal/entities"
)

func TestComposePromptDeterministic(t *testing.T) {
	entries := []entities.KnowledgeEntry{
		{Title: "Hours", Content: "Mon-Fri 9am-5pm"},
		{Title: "Parking", Content: "Free lot behind the building"},
	}
	policy := PromptPolicy{
		CustomInstructions: "Always mention the spring promotion.",
		GoodbyeMessage:     "Thanks for calling Acme, goodbye!",
		AskForName:         true,
		AskForPhone:        true,
	}

	a := ComposePrompt("A dental clinic in Portland.", entries, policy)
	b := ComposePrompt("A dental clinic in Portland.", entries, policy)
	if a != b {
		t.Fatal("identical inputs must produce byte-identical prompts")
	}
}

func TestComposePromptSectionOrder(t *testing.T) {
	prompt := ComposePrompt("A bakery.", nil, PromptPolicy{CustomInstructions: "Extra notes."})

	order := []string{
		"# Personality",
		"# Environment",
		"A bakery.",
		"# Tone",
		"# Goal",
		"# Guardrails",
		"# Tools",
		"# Additional Instructions",
		"Extra notes.",
	}
	last := -1
	for _, marker := range order {
		idx := strings.Index(prompt, marker)
		if idx < 0 {
			t.Fatalf("prompt missing %q", marker)
		}
		if idx <= last {
			t.Fatalf("%q appears out of order", marker)
		}
		last = idx
	}
}

func TestComposePromptKnowledgeEntries(t *testing.T) {
	entries := []entities.KnowledgeEntry{
		{Title: "Hours", Content: "Mon-Fri 9am-5pm"},
	}
	prompt := ComposePrompt("A bakery.", entries, PromptPolicy{})

	if !strings.Contains(prompt, "Additional business information:") {
		t.Error("knowledge header missing when entries present")
	}
	if !strings.Contains(prompt, "- Hours: Mon-Fri 9am-5pm") {
		t.Error("knowledge bullet missing")
	}

	empty := ComposePrompt("A bakery.", nil, PromptPolicy{})
	if strings.Contains(empty, "Additional business information:") {
		t.Error("knowledge header must be omitted entirely when no entries")
	}
}

func TestComposePromptContactDirective(t *testing.T) {
	t.Run("all flags in canonical order, email excluded", func(t *testing.T) {
		prompt := ComposePrompt("A bakery.", nil, PromptPolicy{
			AskForName:    true,
			AskForPhone:   true,
			AskForEmail:   true,
			AskForCompany: true,
			AskForAddress: true,
		})
		if !strings.Contains(prompt, "collect the caller's name, phone number, company, address.") {
			t.Error("directive should list name, phone number, company, address in order")
		}
		if strings.Contains(prompt, "email") {
			t.Error("email must not appear in the collection phrasing")
		}
	})

	t.Run("phone adds caller-ID preference", func(t *testing.T) {
		prompt := ComposePrompt("A bakery.", nil, PromptPolicy{AskForPhone: true})
		if !strings.Contains(prompt, "the number the caller is dialing from") {
			t.Error("caller-ID hint missing when phone collection requested")
		}
	})

	t.Run("no flags, no directive", func(t *testing.T) {
		prompt := ComposePrompt("A bakery.", nil, PromptPolicy{})
		if strings.Contains(prompt, "collect the caller's") {
			t.Error("directive must be absent when no flags set")
		}
	})

	t.Run("name only does not mention caller-ID", func(t *testing.T) {
		prompt := ComposePrompt("A bakery.", nil, PromptPolicy{AskForName: true})
		if !strings.Contains(prompt, "collect the caller's name.") {
			t.Error("single-field directive missing")
		}
		if strings.Contains(prompt, "dialing from") {
			t.Error("caller-ID hint should only appear for phone collection")
		}
	})
}

func TestComposePromptGoodbyeOverride(t *testing.T) {
	custom := ComposePrompt("A bakery.", nil, PromptPolicy{GoodbyeMessage: "Thanks, bye now!"})
	if strings.Contains(custom, goodbyeLine) {
		t.Error("generic goodbye line should be replaced, not kept")
	}
	if !strings.Contains(custom, `"Thanks, bye now!"`) {
		t.Error("custom goodbye phrase missing")
	}
	if strings.Count(custom, "end the call by saying") != 1 {
		t.Error("goodbye instruction should appear exactly once")
	}

	generic := ComposePrompt("A bakery.", nil, PromptPolicy{})
	if !strings.Contains(generic, goodbyeLine) {
		t.Error("generic goodbye line missing without override")
	}
}
