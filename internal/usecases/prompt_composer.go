package usecases

import (
	"fmt"
	"strings"

	"github.com/IbrahimDoba/CallPlatter-sub001/internal/entities"
)

// PromptPolicy carries the per-business adjustments layered on top of the
// base receptionist prompt.
type PromptPolicy struct {
	CustomInstructions string
	GoodbyeMessage     string
	AskForName         bool
	AskForPhone        bool
	AskForEmail        bool
	AskForCompany      bool
	AskForAddress      bool
}

// Base prompt sections, concatenated in this order for every business.
const (
	personalitySection = `# Personality

You are a warm, capable AI receptionist answering phone calls on behalf of a business.
You sound like an experienced front-desk professional: attentive, unhurried, and genuinely helpful.
You never claim to be a human, but you do not volunteer that you are an AI unless asked directly.`

	environmentSection = `# Environment

You are answering a live phone call. The caller hears you and cannot see anything.
Callers may be existing customers, new prospects, or people who dialed by mistake.
Background noise, interruptions, and mid-sentence corrections are normal on phone calls.`

	toneSection = `# Tone

Speak in short, natural sentences suited to being heard, not read.
Use plain spoken language: no lists, no formatting, no URLs read character by character.
Use contractions and brief acknowledgments. Confirm important details back to the caller.
If you did not catch something, ask the caller to repeat it rather than guessing.`

	goalSection = `# Goal

Answer the caller's questions about the business accurately using only the information
you have been given. Help them accomplish what they called for in as few steps as possible.
If you cannot help with a request, say so plainly and offer to take a message.`

	guardrailsSection = `# Guardrails

Never invent prices, availability, policies, or other facts not present in your information.
Never collect payment details over the phone.
Do not discuss topics unrelated to the business; politely steer the call back.
If the caller becomes abusive, remain calm and end the call politely.`

	toolsSection = `# Tools

You can end the call when the conversation is complete.
` + goodbyeLine
)

// goodbyeLine is the generic call-ending instruction. It is swapped for a
// business-specific phrase when one is configured.
const goodbyeLine = `When the caller is done, close with a brief, friendly goodbye.`

const callerIDHint = `For the phone number, prefer the number the caller is dialing from: confirm it briefly ("Is this number you're calling from the best one to reach you?") instead of asking them to read a number out.`

// ComposePrompt assembles the full system prompt for one business. It is pure
// and deterministic: identical inputs produce a byte-identical prompt.
func ComposePrompt(businessDescription string, entries []entities.KnowledgeEntry, policy PromptPolicy) string {
	var sb strings.Builder

	sb.WriteString(personalitySection)
	sb.WriteString("\n\n")

	sb.WriteString(environmentSection)
	sb.WriteString("\n\nAbout the business:\n")
	sb.WriteString(businessDescription)
	if len(entries) > 0 {
		sb.WriteString("\n\nAdditional business information:\n")
		for _, e := range entries {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", e.Title, e.Content))
		}
	}
	sb.WriteString("\n\n")

	sb.WriteString(toneSection)
	sb.WriteString("\n\n")

	sb.WriteString(goalSection)
	if directive := contactDirective(policy); directive != "" {
		sb.WriteString("\n\n")
		sb.WriteString(directive)
	}
	sb.WriteString("\n\n")

	sb.WriteString(guardrailsSection)
	sb.WriteString("\n\n")

	tools := toolsSection
	if policy.GoodbyeMessage != "" {
		tools = strings.Replace(tools, goodbyeLine,
			fmt.Sprintf("When the caller is done, end the call by saying: %q", policy.GoodbyeMessage), 1)
	}
	sb.WriteString(tools)

	if policy.CustomInstructions != "" {
		sb.WriteString("\n\n# Additional Instructions\n\n")
		sb.WriteString(policy.CustomInstructions)
	}

	return sb.String()
}

// contactDirective phrases which contact details to collect during the call.
// The email flag is tracked in settings but deliberately left out of the
// phrasing, matching the live product's behavior.
func contactDirective(policy PromptPolicy) string {
	var fields []string
	if policy.AskForName {
		fields = append(fields, "name")
	}
	if policy.AskForPhone {
		fields = append(fields, "phone number")
	}
	if policy.AskForCompany {
		fields = append(fields, "company")
	}
	if policy.AskForAddress {
		fields = append(fields, "address")
	}
	if len(fields) == 0 {
		return ""
	}

	directive := "Before the call ends, naturally collect the caller's " +
		strings.Join(fields, ", ") + "."
	if policy.AskForPhone {
		directive += "\n" + callerIDHint
	}
	return directive
}
