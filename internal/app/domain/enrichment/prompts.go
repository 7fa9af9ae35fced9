package enrichment

import (
	"fmt"
	"strings"

	"github.com/wanderseed/wanderseed/internal/app/models"
)

// Prompt builders. Pure string construction — a builder cannot fail; schema
// mismatches surface when the response is parsed. Each prompt embeds the
// exact JSON shape the writer validates against.

const writerPersona = `You are a seasoned travel writer for a destination guide.
Write vivid, specific, factually grounded content. Never use placeholders,
never invent prices or opening hours, and respond with JSON only — no
markdown, no commentary outside the JSON.`

func destinationBasicPrompt(d models.Destination) string {
	return fmt.Sprintf(`%s

Write a destination description for %s, %s.

Respond with this exact JSON shape:
{
  "description": "An engaging overview of the destination, 150-250 words, covering what makes it distinctive"
}`, writerPersona, d.Name, d.Country)
}

func destinationRichPrompt(d models.Destination) string {
	return fmt.Sprintf(`%s

Write a full narrative profile for %s, %s.

Respond with this exact JSON shape:
{
  "description": "An engaging overview of the destination, at least 500 characters",
  "immersive_description": "A second-person sensory walkthrough of arriving and exploring, 150-200 words",
  "best_time_to_visit": "Which months and why, 2-3 sentences",
  "local_tips": "3-4 practical tips a repeat visitor would give, as one paragraph",
  "geography": "Setting, landscape and layout, 2-3 sentences",
  "culture": "Cultural character, traditions and rhythm of life, 3-4 sentences",
  "cuisine": "Signature dishes and where locals eat, 3-4 sentences"
}`, writerPersona, d.Name, d.Country)
}

func itineraryPrompt(d models.Destination, days int) string {
	return fmt.Sprintf(`%s

Create a %d-day itinerary for %s, %s.

Respond with this exact JSON shape:
{
  "title": "A short evocative itinerary title",
  "description": "A 2-3 sentence summary of the trip's arc",
  "days": [
    {
      "day_number": 1,
      "title": "A short title for the day",
      "activities": ["3 to 5 concrete activities with specific place names"]
    }
  ]
}

The days array must contain exactly %d entries with day_number running 1 to %d.`,
		writerPersona, days, d.Name, d.Country, days, days)
}

func experiencePrompt(d models.Destination, missingThemes []string) string {
	return fmt.Sprintf(`%s

Write one signature experience for each of these themes in %s, %s: %s.

Respond with this exact JSON shape:
{
  "experiences": [
    {
      "theme": "one of: %s",
      "title": "A specific, non-generic experience title",
      "specific_location": "The exact place, venue or neighborhood",
      "description": "What the experience is and why it matters here, 80-120 words",
      "personal_narrative": "A first-person moment from the experience, 40-60 words",
      "season": "The best season, one word or phrase",
      "best_time_to_visit": "Time of day or week, one sentence",
      "local_tip": "One insider tip, one sentence"
    }
  ]
}

Include exactly one entry per requested theme, in the order given.`,
		writerPersona, d.Name, d.Country,
		strings.Join(missingThemes, ", "),
		strings.Join(models.ExperienceThemes, ", "))
}

func snowbirdPrompt(s models.SnowbirdDestination) string {
	return fmt.Sprintf(`%s

Write a winter-relocation ("snowbird") guide for %s, %s (%s) aimed at
retirees spending 3-6 months away from a cold climate.

Respond with this exact JSON shape:
{
  "overview": "Why this place works for a long winter stay, 100-150 words",
  "climate_notes": "Winter climate specifics with typical temperatures, 2-3 sentences",
  "cost_of_living": "Realistic monthly costs for housing, food and transport, 3-4 sentences",
  "healthcare": "Quality and access to healthcare for foreign residents, 2-3 sentences",
  "visa_requirements": "Stay-length rules and visa options for common nationalities, 2-3 sentences",
  "community_life": "Expat and local community, activities, language, 3-4 sentences",
  "monthly_budget_usd": 1800
}

monthly_budget_usd is a realistic single-person monthly budget in US dollars
as a bare integer.`, writerPersona, s.Name, s.Country, s.Region)
}

func collectionNotePrompt(item models.CollectionItem, collectionName string) string {
	return fmt.Sprintf(`%s

%s, %s appears in the themed collection "%s". Write the collection-specific
annotation for it.

Respond with this exact JSON shape:
{
  "highlight": "The single thing that earns this destination its place in the collection, one phrase",
  "note": "Why it belongs in this collection specifically, 2-3 sentences"
}`, writerPersona, item.DestinationName, item.DestinationCountry, collectionName)
}
