// Package themes classifies experience titles into the fixed theme set a
// complete destination must cover. Earlier versions of the catalog carried
// hand-maintained per-city title tables; keyword automata over the titles
// replace those.
package themes

import (
	ahocorasick "github.com/petar-dambovaliev/aho-corasick"

	"github.com/wanderseed/wanderseed/internal/app/models"
)

var themeKeywords = map[string][]string{
	models.ThemeCultural: {
		"museum", "temple", "cathedral", "church", "palace", "heritage",
		"history", "historic", "gallery", "festival", "craft", "artisan",
		"architecture", "old town", "ruins", "monastery", "tradition",
	},
	models.ThemeCulinary: {
		"food", "market", "street food", "cooking", "cuisine", "restaurant",
		"tasting", "wine", "coffee", "cafe", "bakery", "dining", "dish",
		"culinary", "eat", "kitchen", "spice",
	},
	models.ThemeNature: {
		"hike", "hiking", "trail", "beach", "mountain", "forest", "river",
		"lake", "island", "garden", "park", "wildlife", "bird", "sunset",
		"sunrise", "waterfall", "coast", "bay", "cave", "snorkel", "kayak",
	},
}

// Matcher maps free-text experience titles onto themes.
type Matcher struct {
	automata map[string]ahocorasick.AhoCorasick
}

func NewMatcher() *Matcher {
	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  false,
		MatchKind:            ahocorasick.LeftMostLongestMatch,
	})

	automata := make(map[string]ahocorasick.AhoCorasick, len(themeKeywords))
	for theme, keywords := range themeKeywords {
		automata[theme] = builder.Build(keywords)
	}
	return &Matcher{automata: automata}
}

// Classify returns the theme whose keywords score highest for the title, or
// "" when nothing matches.
func (m *Matcher) Classify(title string) string {
	best := ""
	bestScore := 0
	// Iterate the fixed theme list so ties resolve deterministically.
	for _, theme := range models.ExperienceThemes {
		ac := m.automata[theme]
		score := len(ac.FindAll(title))
		if score > bestScore {
			best = theme
			bestScore = score
		}
	}
	return best
}

// CoveredThemes reports which themes an existing set of experiences already
// represents. Rows written by this pipeline carry an explicit theme; legacy
// rows are classified from their titles.
func (m *Matcher) CoveredThemes(experiences []models.EnhancedExperience) map[string]bool {
	covered := make(map[string]bool, len(models.ExperienceThemes))
	for _, e := range experiences {
		theme := e.Theme
		if theme == "" {
			theme = m.Classify(e.Title)
		}
		if theme != "" {
			covered[theme] = true
		}
	}
	return covered
}

// MissingThemes returns the themes a destination still needs, in canonical
// order.
func (m *Matcher) MissingThemes(experiences []models.EnhancedExperience) []string {
	covered := m.CoveredThemes(experiences)
	var missing []string
	for _, theme := range models.ExperienceThemes {
		if !covered[theme] {
			missing = append(missing, theme)
		}
	}
	return missing
}
