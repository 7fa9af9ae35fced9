package models

// Generated-content payloads: the JSON shapes the generation provider is asked
// to return. Field names here are the contract embedded in the prompts; the
// writers validate against them before persisting anything.

// DestinationContent covers both the basic tier (Description only needs to
// clear the threshold) and the rich tier (all narrative sections present).
type DestinationContent struct {
	Description          string `json:"description"`
	ImmersiveDescription string `json:"immersive_description,omitempty"`
	BestTimeToVisit      string `json:"best_time_to_visit,omitempty"`
	LocalTips            string `json:"local_tips,omitempty"`
	Geography            string `json:"geography,omitempty"`
	Culture              string `json:"culture,omitempty"`
	Cuisine              string `json:"cuisine,omitempty"`
}

type ItineraryContent struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Days        []ItineraryDayContent `json:"days"`
}

type ItineraryDayContent struct {
	DayNumber  int      `json:"day_number"`
	Title      string   `json:"title"`
	Activities []string `json:"activities"`
}

type ExperienceContent struct {
	Theme             string `json:"theme"`
	Title             string `json:"title"`
	SpecificLocation  string `json:"specific_location"`
	Description       string `json:"description"`
	PersonalNarrative string `json:"personal_narrative"`
	Season            string `json:"season"`
	BestTimeToVisit   string `json:"best_time_to_visit"`
	LocalTip          string `json:"local_tip"`
}

type ExperienceSetContent struct {
	Experiences []ExperienceContent `json:"experiences"`
}

type SnowbirdContent struct {
	Overview         string `json:"overview"`
	ClimateNotes     string `json:"climate_notes"`
	CostOfLiving     string `json:"cost_of_living"`
	Healthcare       string `json:"healthcare"`
	VisaRequirements string `json:"visa_requirements"`
	CommunityLife    string `json:"community_life"`
	MonthlyBudgetUSD int    `json:"monthly_budget_usd"`
}

type CollectionNoteContent struct {
	Highlight string `json:"highlight"`
	Note      string `json:"note"`
}
