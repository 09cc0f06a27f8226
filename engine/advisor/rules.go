package advisor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Intent labels what the user wants done with the results.
type Intent string

const (
	IntentFilter    Intent = "filter"
	IntentRecommend Intent = "recommend"
	IntentCompare   Intent = "compare"
)

// SortKey names the attribute a sort directive orders by.
const (
	SortPerformance = "performanceScore"
	SortRecency     = "createdAt"
	SortPrice       = "price"
)

// Fixed values applied by use-case heuristics.
const (
	familyMileageFloor = 15
	sportPerfFloor     = 80
	budgetPriceCeiling = 800000
	luxuryPriceFloor   = 2000000
)

// Filters is the structured filter built up by the cascade. Pointer fields
// distinguish "unset" from zero. FuelTypes, when set, replaces FuelType with
// an electric-or-hybrid alternation (the eco heuristic).
type Filters struct {
	Type           string   `json:"type,omitempty"`
	Brand          string   `json:"brand,omitempty"`
	FuelType       string   `json:"fuelType,omitempty"`
	FuelTypes      []string `json:"fuelTypeAny,omitempty"`
	Transmission   string   `json:"transmission,omitempty"`
	BodyTypes      []string `json:"bodyType,omitempty"`
	PriceMin       *float64 `json:"priceMin,omitempty"`
	PriceMax       *float64 `json:"priceMax,omitempty"`
	EnginePowerMin *float64 `json:"enginePowerMin,omitempty"`
	MileageMin     *float64 `json:"mileageMin,omitempty"`
	PerformanceMin *float64 `json:"performanceMin,omitempty"`
}

// State carries everything one interpretation accumulates: the filter, a
// sort directive, an intent label, the human-readable reasoning trace, and
// short context tags. Rules receive a copy and return the updated value.
type State struct {
	Filters   Filters
	SortBy    string
	SortDesc  bool
	Intent    Intent
	Reasoning []string
	Tags      []string
}

func (st State) noted(reason, tag string) State {
	st.Reasoning = append(st.Reasoning, reason)
	st.Tags = append(st.Tags, tag)
	return st
}

// Rule is one pass of the cascade: a named pure function from lower-cased
// query text and the state so far to the next state.
type Rule struct {
	Name  string
	Apply func(text string, st State) State
}

// Cascade is the fixed evaluation order. A later rule overwrites fields set
// by an earlier one unconditionally (last-write-wins); in particular the
// use-case heuristics replace explicit price and fuel constraints. When two
// use-case cues conflict ("budget luxury car"), whichever is checked later
// inside applyUseCase wins. The upstream product never resolved that
// ambiguity, so the cascade order is the behaviour.
var Cascade = []Rule{
	{"category", applyCategory},
	{"brand", applyBrand},
	{"fuel", applyFuel},
	{"price", applyPrice},
	{"transmission", applyTransmission},
	{"thresholds", applyThresholds},
	{"usecase", applyUseCase},
	{"intent", applyIntentSort},
}

var (
	carRe  = regexp.MustCompile(`car|sedan|suv|hatchback|jeep`)
	bikeRe = regexp.MustCompile(`bike|motorcycle|scooter|moped`)

	betweenRe = regexp.MustCompile(`between\s?(\d+)\s?(lakh|k)?\s?(?:and|to)\s?(\d+)\s?(lakh|k)?`)
	underRe   = regexp.MustCompile(`under\s?(\d+)\s?(lakh|k)?`)
	aboveRe   = regexp.MustCompile(`above\s?(\d+)\s?(lakh|k)?`)

	engineRe  = regexp.MustCompile(`(\d+)\s?(cc|bhp)`)
	mileageRe = regexp.MustCompile(`mileage\s?(?:above|over|more than)?\s?(\d+)`)
)

// brandEntry maps a canonical brand to the spelling variants that identify
// it, including common misspellings. Order matters: the first entry with a
// matching variant wins.
type brandEntry struct {
	canonical string
	variants  []string
}

var brandTable = []brandEntry{
	{"tata", []string{"tata"}},
	{"mahindra", []string{"mahindra"}},
	{"maruti suzuki", []string{"maruti", "suzuki"}},
	{"hyundai", []string{"hundai", "hyund"}},
	{"toyota", []string{"toyta", "toyotta"}},
	{"kia", []string{"kia"}},
	{"honda", []string{"honda"}},
	{"renault", []string{"renault"}},
	{"nissan", []string{"nissan"}},
	{"skoda", []string{"skoda"}},
	{"volkswagen", []string{"vw", "volks", "volkwagen"}},
	{"audi", []string{"audi"}},
	{"bmw", []string{"bmw"}},
	{"mercedes", []string{"mercedez", "benz"}},
	{"bajaj", []string{"bajaj"}},
	{"hero", []string{"hero"}},
	{"yamaha", []string{"yamaha"}},
	{"royal enfield", []string{"enfield", "bullet"}},
	{"tvs", []string{"tvs"}},
}

// fuelFamily is one keyword family checked by the fuel pass, in priority
// order; the first matching family wins and the rest are skipped.
type fuelFamily struct {
	fuel     string
	keywords []string
}

var fuelFamilies = []fuelFamily{
	{"Electric", []string{"electric", "ev", "battery"}},
	{"Diesel", []string{"diesel"}},
	{"Petrol", []string{"petrol", "gasoline"}},
	{"Hybrid", []string{"hybrid", "plug-in"}},
	{"CNG", []string{"cng", "gas"}},
}

func applyCategory(text string, st State) State {
	switch {
	case carRe.MatchString(text):
		st.Filters.Type = "car"
		return st.noted("Detected vehicle type: Car.", "type:car")
	case bikeRe.MatchString(text):
		st.Filters.Type = "bike"
		return st.noted("Detected vehicle type: Bike.", "type:bike")
	}
	return st
}

func applyBrand(text string, st State) State {
	for _, e := range brandTable {
		for _, variant := range e.variants {
			if strings.Contains(text, variant) {
				st.Filters.Brand = e.canonical
				return st.noted(
					fmt.Sprintf("Brand detected: %s", e.canonical),
					"brand:"+e.canonical,
				)
			}
		}
	}
	return st
}

func applyFuel(text string, st State) State {
	for _, fam := range fuelFamilies {
		for _, kw := range fam.keywords {
			if strings.Contains(text, kw) {
				st.Filters.FuelType = fam.fuel
				return st.noted(
					fmt.Sprintf("Detected %s vehicles.", fam.fuel),
					"fuel:"+strings.ToLower(fam.fuel),
				)
			}
		}
	}
	return st
}

// applyPrice checks the three phrase shapes in priority order: a "between"
// range beats "under", which beats "above". Only the first match applies,
// and it replaces both bounds.
func applyPrice(text string, st State) State {
	if m := betweenRe.FindStringSubmatch(text); m != nil {
		min := parseAmount(m[1], m[2])
		max := parseAmount(m[3], m[4])
		st.Filters.PriceMin = &min
		st.Filters.PriceMax = &max
		return st.noted(
			fmt.Sprintf("Price range detected between %.0f and %.0f.", min, max),
			"price:range",
		)
	}
	if m := underRe.FindStringSubmatch(text); m != nil {
		max := parseAmount(m[1], m[2])
		st.Filters.PriceMin = nil
		st.Filters.PriceMax = &max
		return st.noted(fmt.Sprintf("Price detected: under %.0f.", max), "price:under")
	}
	if m := aboveRe.FindStringSubmatch(text); m != nil {
		min := parseAmount(m[1], m[2])
		st.Filters.PriceMin = &min
		st.Filters.PriceMax = nil
		return st.noted(fmt.Sprintf("Price detected: above %.0f.", min), "price:above")
	}
	return st
}

// parseAmount applies the multiplier suffix: lakh = 100000, k = 1000.
func parseAmount(digits, unit string) float64 {
	n, _ := strconv.ParseFloat(digits, 64)
	switch unit {
	case "lakh":
		n *= 100000
	case "k":
		n *= 1000
	}
	return n
}

func applyTransmission(text string, st State) State {
	switch {
	case strings.Contains(text, "automatic"):
		st.Filters.Transmission = "Automatic"
		return st.noted("Transmission preference: Automatic.", "transmission:automatic")
	case strings.Contains(text, "manual"):
		st.Filters.Transmission = "Manual"
		return st.noted("Transmission preference: Manual.", "transmission:manual")
	}
	return st
}

func applyThresholds(text string, st State) State {
	if m := engineRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.ParseFloat(m[1], 64)
		st.Filters.EnginePowerMin = &n
		st = st.noted(
			fmt.Sprintf("Engine threshold: at least %.0f %s.", n, m[2]),
			"engine:min",
		)
	}
	if m := mileageRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.ParseFloat(m[1], 64)
		st.Filters.MileageMin = &n
		st = st.noted(
			fmt.Sprintf("Mileage requirement: at least %.0f km/l.", n),
			"mileage:min",
		)
	}
	return st
}

// applyUseCase holds the compound heuristics. These intentionally overwrite
// fields set by earlier passes: eco replaces an explicit fuel type, budget
// and luxury replace explicit price bounds.
func applyUseCase(text string, st State) State {
	if strings.Contains(text, "family") {
		st.Filters.BodyTypes = []string{"suv", "sedan"}
		floor := float64(familyMileageFloor)
		st.Filters.MileageMin = &floor
		st = st.noted("User wants a family vehicle, prioritizing SUVs or sedans.", "usecase:family")
	}
	if strings.Contains(text, "sport") || strings.Contains(text, "fast") || strings.Contains(text, "performance") {
		floor := float64(sportPerfFloor)
		st.Filters.PerformanceMin = &floor
		st = st.noted("Sporty preference, prioritizing high performance vehicles.", "usecase:sport")
	}
	if strings.Contains(text, "eco") || strings.Contains(text, "low emission") {
		st.Filters.FuelType = ""
		st.Filters.FuelTypes = []string{"Electric", "Hybrid"}
		st = st.noted("Eco-friendly preference detected.", "usecase:eco")
	}
	if strings.Contains(text, "budget") || strings.Contains(text, "affordable") || strings.Contains(text, "cheap") {
		ceiling := float64(budgetPriceCeiling)
		st.Filters.PriceMin = nil
		st.Filters.PriceMax = &ceiling
		st = st.noted("Budget-focused search detected.", "usecase:budget")
	}
	if strings.Contains(text, "luxury") || strings.Contains(text, "premium") {
		floor := float64(luxuryPriceFloor)
		st.Filters.PriceMin = &floor
		st.Filters.PriceMax = nil
		st = st.noted("Luxury segment detected.", "usecase:luxury")
	}
	return st
}

// applyIntentSort sets the intent label and sort directive. The sort cues
// are independent checks writing the same variable, so with multiple cues
// the last one checked wins.
func applyIntentSort(text string, st State) State {
	if strings.Contains(text, "recommend") || strings.Contains(text, "suggest") {
		st.Intent = IntentRecommend
		st = st.noted("Recommendation intent detected.", "intent:recommend")
	}
	if strings.Contains(text, "compare") {
		st.Intent = IntentCompare
		st = st.noted("Comparison intent detected.", "intent:compare")
	}
	if strings.Contains(text, "best") || strings.Contains(text, "top") {
		st.SortBy, st.SortDesc = SortPerformance, true
		st = st.noted("Sorting by performance score.", "sort:performance")
	}
	if strings.Contains(text, "latest") || strings.Contains(text, "new") {
		st.SortBy, st.SortDesc = SortRecency, true
		st = st.noted("Sorting by recency.", "sort:recency")
	}
	if strings.Contains(text, "cheapest") || strings.Contains(text, "lowest") {
		st.SortBy, st.SortDesc = SortPrice, false
		st = st.noted("Sorting by lowest price.", "sort:price")
	}
	return st
}
