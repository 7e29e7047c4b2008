package chat

import (
	"fmt"
	"strings"

	"agent-advisor/internal/model"
)

// useCaseDisplayLimit bounds the use-case text echoed in the summary; the
// record itself keeps the full text.
const useCaseDisplayLimit = 120

const (
	greetingText = "Hallo! Ich helfe dir, die passende Architektur für deinen KI-Agenten zu finden. " +
		"Dafür stelle ich dir fünf kurze Fragen."
	agentTypeRetryText = "Das habe ich leider nicht erkannt. Bitte nenne einen Agententyp, " +
		"z. B. „Chatbot“, „Workflow-Agent“ oder „Ich weiß es nicht“."
	prioritiesRetryText = "Ich habe keine Priorität erkannt. Nenne z. B. „rag“, „privacy“ oder „speed“ " +
		"oder schreib „weiter“, um fortzufahren."
	experiencePromptText = "Wie gut schätzt du dich im Erstellen von Agenten ein? " +
		"Antworte mit beginner (Anfänger), intermediate (Fortgeschritten) oder expert (Experte)."
	experienceRetryText = "Bitte antworte mit beginner, intermediate oder expert, z. B. „beginner“."
	learningPromptText  = "Willst du etwas dazu lernen oder eine einfache Lösung? " +
		"Antworte mit learn (Etwas dazu lernen) oder simple (Einfache Lösung)."
	learningRetryText = "Bitte antworte mit learn oder simple, z. B. „simple“."
	useCasePromptText = "Beschreibe jetzt kurz deinen Use Case: Was soll dein Agent konkret tun?"
	useCaseRetryText  = "Der Use Case darf nicht leer sein. Beschreibe kurz, was dein Agent tun soll."
	confirmEditText   = "Was möchtest du ändern? agent, prio, level, learn oder usecase?"
	confirmRetryText  = "Bitte antworte mit ja oder nein oder nenne das Feld, das du ändern möchtest " +
		"(agent, prio, level, learn, usecase)."
	runningText        = "Einen Moment, ich suche passende Empfehlungen …"
	fetchFrameworkText = "Einen Moment, ich hole Framework-Empfehlungen …"
	busyText           = "Ich arbeite noch an deiner letzten Anfrage. Bitte warte einen Moment."
	resultsRetryText   = "Bitte antworte mit ja oder nein."
	farewellText       = "Alles klar! Viel Erfolg mit deinem Agenten. Du kannst jederzeit neu starten."

	useCasesFoundText   = "Ich habe passende Bosch-Use-Cases für dich gefunden:"
	frameworksFoundText = "Hier sind meine Framework-Empfehlungen:"
	noResultsText       = "Leider habe ich keine passenden Empfehlungen gefunden."
	useCasesFollowUp    = "Passt keiner davon? Soll ich dir stattdessen Framework-Empfehlungen zeigen? (ja/nein)"
	frameworksFollowUp  = "Soll ich die Framework-Empfehlungen noch einmal abrufen? (ja/nein)"
	errorFollowUp       = "Soll ich es mit Framework-Empfehlungen erneut versuchen? (ja/nein)"
)

func agentTypePrompt() string {
	labels := make([]string, 0, len(model.AgentTypes))
	for _, t := range model.AgentTypes {
		labels = append(labels, t.Label())
	}
	return "Was soll dein Agent tun? Wähle einen Agententyp: " + strings.Join(labels, ", ") + "."
}

func prioritiesPrompt(agentType model.AgentType) string {
	opts := make([]string, 0, len(model.PriorityOptions))
	for _, o := range model.PriorityOptions {
		opts = append(opts, fmt.Sprintf("%s (%s)", o.Key, o.Label))
	}
	return fmt.Sprintf("Agententyp: %s. Was ist dir wichtig? Mögliche Prioritäten: %s. "+
		"Du kannst mehrere nennen; eine erneut genannte Priorität wird wieder entfernt. "+
		"Schreib „weiter“, wenn du fertig bist.", agentType.Label(), strings.Join(opts, ", "))
}

func prioritiesAck(set model.PrioritySet) string {
	return fmt.Sprintf("Aktuelle Prioritäten: %s. Noch etwas? Sonst schreib „weiter“.", priorityList(set))
}

func priorityList(set model.PrioritySet) string {
	if set.Len() == 0 {
		return "keine"
	}
	names := make([]string, 0, set.Len())
	for _, p := range set.Sorted() {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}

func summary(r model.Requirements) string {
	var b strings.Builder
	b.WriteString("Zusammenfassung deiner Angaben:\n")
	fmt.Fprintf(&b, "- Agententyp: %s\n", r.AgentType.Label())
	fmt.Fprintf(&b, "- Prioritäten: %s\n", priorityList(r.Priorities))
	fmt.Fprintf(&b, "- Erfahrungslevel: %s\n", r.ExperienceLevel.Label())
	fmt.Fprintf(&b, "- Lernpräferenz: %s\n", r.LearningPreference.Label())
	fmt.Fprintf(&b, "- Use Case: %s\n", truncate(r.UseCase, useCaseDisplayLimit))
	b.WriteString("\nPasst das so? (ja/nein)")
	return b.String()
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}

func fieldPrompt(field model.Field, r model.Requirements) string {
	switch field {
	case model.FieldAgentType:
		return agentTypePrompt()
	case model.FieldPriorities:
		return prioritiesPrompt(r.AgentType) + " " + prioritiesAck(r.Priorities)
	case model.FieldExperienceLevel:
		return experiencePromptText
	case model.FieldLearningPreference:
		return learningPromptText
	default:
		return useCasePromptText
	}
}
