package models

import (
	"time"

	"github.com/google/uuid"
)

// Region is immutable reference data, created once at seed time.
type Region struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Destination is the core catalog entity. Identity fields (Name, Country,
// RegionID) are fixed at seed time; the narrative fields start empty and are
// filled in by the enrichment pipeline.
type Destination struct {
	ID                   uuid.UUID `json:"id"`
	RegionID             uuid.UUID `json:"region_id"`
	Name                 string    `json:"name"`
	Country              string    `json:"country"`
	Description          string    `json:"description,omitempty"`
	ImmersiveDescription string    `json:"immersive_description,omitempty"`
	ImageURL             string    `json:"image_url,omitempty"`
	BestTimeToVisit      string    `json:"best_time_to_visit,omitempty"`
	LocalTips            string    `json:"local_tips,omitempty"`
	Geography            string    `json:"geography,omitempty"`
	Culture              string    `json:"culture,omitempty"`
	Cuisine              string    `json:"cuisine,omitempty"`
	Featured             bool      `json:"featured"`
	Rating               float64   `json:"rating"`
	DownloadCount        int       `json:"download_count"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Itinerary is one-per-destination, enforced by a unique constraint on
// destination_id.
type Itinerary struct {
	ID            uuid.UUID `json:"id"`
	DestinationID uuid.UUID `json:"destination_id"`
	Title         string    `json:"title"`
	Duration      int       `json:"duration"`
	Description   string    `json:"description"`
	Content       string    `json:"content,omitempty"`
	Days          []ItineraryDay `json:"days,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type ItineraryDay struct {
	ID          uuid.UUID `json:"id"`
	ItineraryID uuid.UUID `json:"itinerary_id"`
	DayNumber   int       `json:"day_number"`
	Title       string    `json:"title"`
	Activities  []string  `json:"activities"`
}

// Experience themes. Exactly one experience per theme per destination.
const (
	ThemeCultural = "cultural"
	ThemeCulinary = "culinary"
	ThemeNature   = "nature"
)

// ExperienceThemes lists every theme a complete destination must cover.
var ExperienceThemes = []string{ThemeCultural, ThemeCulinary, ThemeNature}

type EnhancedExperience struct {
	ID                uuid.UUID `json:"id"`
	DestinationID     uuid.UUID `json:"destination_id"`
	Theme             string    `json:"theme"`
	Title             string    `json:"title"`
	SpecificLocation  string    `json:"specific_location"`
	Description       string    `json:"description"`
	PersonalNarrative string    `json:"personal_narrative,omitempty"`
	Season            string    `json:"season,omitempty"`
	BestTimeToVisit   string    `json:"best_time_to_visit,omitempty"`
	LocalTip          string    `json:"local_tip,omitempty"`
}

type Collection struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Slug        string           `json:"slug"`
	Description string           `json:"description,omitempty"`
	ImageURL    string           `json:"image_url,omitempty"`
	ThemeColor  string           `json:"theme_color,omitempty"`
	Icon        string           `json:"icon,omitempty"`
	Featured    bool             `json:"featured"`
	Items       []CollectionItem `json:"items,omitempty"`
}

type CollectionItem struct {
	ID            uuid.UUID `json:"id"`
	CollectionID  uuid.UUID `json:"collection_id"`
	DestinationID uuid.UUID `json:"destination_id"`
	Position      int       `json:"position"`
	Highlight     string    `json:"highlight,omitempty"`
	Note          string    `json:"note,omitempty"`
	// Denormalized for list rendering.
	DestinationName    string `json:"destination_name,omitempty"`
	DestinationCountry string `json:"destination_country,omitempty"`
}

// SnowbirdDestination is a self-contained relocation guide, deliberately not
// foreign-keyed to Destination.
type SnowbirdDestination struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Country          string    `json:"country"`
	Region           string    `json:"region"`
	Overview         string    `json:"overview,omitempty"`
	ClimateNotes     string    `json:"climate_notes,omitempty"`
	CostOfLiving     string    `json:"cost_of_living,omitempty"`
	Healthcare       string    `json:"healthcare,omitempty"`
	VisaRequirements string    `json:"visa_requirements,omitempty"`
	CommunityLife    string    `json:"community_life,omitempty"`
	MonthlyBudgetUSD int       `json:"monthly_budget_usd,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
