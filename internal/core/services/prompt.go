package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/agenda/internal/core/domain"
)

// Placeholders used when a chunk lacks a field.
const (
	unknownTitle = "Titre inconnu"
	unknownDates = "dates inconnues"
	unknownPlace = "lieu inconnu"
)

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// FrenchMonth returns the lower-case French name of the month.
func FrenchMonth(m time.Month) string {
	return frenchMonths[m-1]
}

// FrenchDate renders t as "05 décembre 2025".
func FrenchDate(t time.Time) string {
	return fmt.Sprintf("%02d %s %d", t.Day(), FrenchMonth(t.Month()), t.Year())
}

// AssemblePrompt renders the grounding prompt for query over retrieved,
// dated by now, and returns it with the context texts for auditing.
// The output depends only on its arguments.
func AssemblePrompt(query string, retrieved []domain.Chunk, now time.Time) (string, []string) {
	var b strings.Builder
	b.WriteString("Tu es un assistant sympathique et humain spécialisé dans les événements de Lyon.\n")
	fmt.Fprintf(&b, "La date d'aujourd'hui est le **%s**.\n", FrenchDate(now))
	fmt.Fprintf(&b, "Le mois actuel est **%s %d**.\n", FrenchMonth(now.Month()), now.Year())
	b.WriteString("Ta mission est de répondre à la question de l'utilisateur en français en utilisant UNIQUEMENT les informations ci-dessous.\n")
	b.WriteString("Voici les événements pertinents récupérés par la recherche vectorielle :\n")

	contexts := make([]string, 0, len(retrieved))
	for _, c := range retrieved {
		fmt.Fprintf(&b, "- **%s** (%s, %s). Description : %s\n",
			orDefault(c.Title, unknownTitle),
			orDefault(c.DatesText, unknownDates),
			orDefault(c.GeoText, unknownPlace),
			c.VectoriseText)

		if text := contextText(c); text != "" {
			contexts = append(contexts, text)
		}
	}

	if len(contexts) == 0 {
		for _, c := range retrieved {
			contexts = append(contexts, fmt.Sprintf("%s (%s)",
				orDefault(c.Title, unknownTitle), orDefault(c.DatesText, unknownDates)))
		}
	}

	fmt.Fprintf(&b, "\nQuestion de l'utilisateur : %s\nRéponse :", query)
	return b.String(), contexts
}

// contextText picks the first non-empty field among the full text, the
// vectorised text and the context chunk, then trims it. A whitespace-only
// winner yields "" and the chunk adds no context.
func contextText(c domain.Chunk) string {
	for _, s := range []string{c.FullVectoriseText, c.VectoriseText, c.ContextChunk} {
		if s != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

var dayPattern = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)

// FilterEventsToday keeps the chunks whose dates mention now's day as
// dd/mm/yyyy. When none do, chunks is returned unchanged.
func FilterEventsToday(chunks []domain.Chunk, now time.Time) []domain.Chunk {
	today := now.Format("02/01/2006")
	var kept []domain.Chunk
	for _, c := range chunks {
		for _, m := range dayPattern.FindAllString(c.DatesText, -1) {
			if m == today {
				kept = append(kept, c)
				break
			}
		}
	}
	if len(kept) == 0 {
		return chunks
	}
	return kept
}
