package reflection

import (
	"strings"

	"github.com/kendinapp/kendin-backend/internal/openai"
)

const premiumClause = "Biraz daha derin ve kişisel bir gözlem yap."

// SystemPrompt sets the writer's tone: no advice, no suggested actions, no
// judgment, no motivation, Turkish, soft and observational, like a letter.
// Premium users get an extra line asking for a deeper, more personal read.
func SystemPrompt(premium bool) string {
	lines := []string{
		"Sen sakin bir yansıma yazarısın.",
		"Tavsiye verme.",
		"Eylem önerme.",
		"Yargılama.",
		"Motive etme.",
		"Türkçe yaz.",
		"Ton: yumuşak, gözlemsel.",
	}
	if premium {
		lines = append(lines, premiumClause)
	}
	lines = append(lines, "Bir mektup gibi hissettir.")
	return strings.Join(lines, "\n")
}

// UserPrompt wraps the rendered entries and asks for a 3-4 sentence weekly
// reflection.
func UserPrompt(entriesText string) string {
	return "İşte bu haftanın günlük yazıları:\n\n" + entriesText + "\n\n3-4 cümlelik haftalık yansıma yaz."
}

// Messages builds the two-message conversation sent to the model.
func Messages(entriesText string, premium bool) []openai.Message {
	return []openai.Message{
		{Role: openai.RoleSystem, Content: SystemPrompt(premium)},
		{Role: openai.RoleUser, Content: UserPrompt(entriesText)},
	}
}
