package service

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"core/internal/model"
	"core/internal/utils"
)

// Word-to-number mapping for the enumerated count words only.
var wordNumbers = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
}

var (
	bedroomRe  = regexp.MustCompile(`(\d+|one|two|three|four|five|six)\s*(bed|bedroom)`)
	bathroomRe = regexp.MustCompile(`(\d+|one|two|three|four)\s*(bath|bathroom)`)
	maxPriceRe = regexp.MustCompile(`(under|below|less than|max)\s*(\$|rp)?\s*([\d,]+)\s*(k|m|million|thousand)?`)
	minPriceRe = regexp.MustCompile(`(over|above|more than|min)\s*(\$|rp)?\s*([\d,]+)\s*(k|m|million|thousand)?`)
)

// propertyTypeFamilies is scanned in order; the first family with a
// matching keyword wins, so at most one type is ever set.
var propertyTypeFamilies = []struct {
	keywords []string
	value    model.PropertyType
}{
	{[]string{"apartment", "condo"}, model.PropertyTypeApartment},
	{[]string{"house", "home"}, model.PropertyTypeHouse},
	{[]string{"villa"}, model.PropertyTypeVilla},
	{[]string{"commercial", "office"}, model.PropertyTypeCommercial},
	{[]string{"land"}, model.PropertyTypeLand},
}

// ParseVoiceCommand maps a transcript to a partial filter state. Matching
// is case-insensitive and independent per category, so one transcript may
// set several filters at once. An empty result means the transcript is
// not a filter command and should be treated as plain search text.
func ParseVoiceCommand(transcript string) model.FilterState {
	text := strings.ToLower(strings.TrimSpace(transcript))
	if text == "" {
		return model.FilterState{}
	}

	var filters model.FilterState
	for _, extract := range voiceExtractors {
		extract(text, &filters)
	}
	return filters
}

// voiceExtractors is the ordered list of independent category extractors.
// Adding a category means adding a function here, without touching the
// existing ones.
var voiceExtractors = []func(text string, f *model.FilterState){
	extractPropertyType,
	extractListingType,
	extractBedrooms,
	extractBathrooms,
	extractPriceBounds,
	extractVoiceAmenities,
}

func extractPropertyType(text string, f *model.FilterState) {
	for _, family := range propertyTypeFamilies {
		for _, kw := range family.keywords {
			if strings.Contains(text, kw) {
				f.PropertyType = family.value
				return
			}
		}
	}
}

func extractListingType(text string, f *model.FilterState) {
	// Rent keywords are checked first and win when both families match.
	for _, kw := range []string{"for rent", "rental", "to rent"} {
		if strings.Contains(text, kw) {
			f.ListingType = model.ListingTypeRent
			return
		}
	}
	for _, kw := range []string{"for sale", "buy", "purchase"} {
		if strings.Contains(text, kw) {
			f.ListingType = model.ListingTypeSale
			return
		}
	}
}

func extractBedrooms(text string, f *model.FilterState) {
	m := bedroomRe.FindStringSubmatch(text)
	if m == nil {
		return
	}
	if n, ok := parseCountWord(m[1]); ok {
		f.MinBedrooms = &n
	}
}

func extractBathrooms(text string, f *model.FilterState) {
	m := bathroomRe.FindStringSubmatch(text)
	if m == nil {
		return
	}
	if n, ok := parseCountWord(m[1]); ok {
		f.MinBathrooms = &n
	}
}

func extractPriceBounds(text string, f *model.FilterState) {
	// "under" and "over" patterns are independent: both bounds may be set
	// by one transcript.
	if m := maxPriceRe.FindStringSubmatch(text); m != nil {
		if v, ok := parsePriceLiteral(m[3], m[4]); ok {
			f.MaxPrice = &v
		}
	}
	if m := minPriceRe.FindStringSubmatch(text); m != nil {
		if v, ok := parsePriceLiteral(m[3], m[4]); ok {
			f.MinPrice = &v
		}
	}
}

func extractVoiceAmenities(text string, f *model.FilterState) {
	if amenities := utils.ExtractAmenities(text); len(amenities) > 0 {
		f.Amenities = amenities
	}
}

func parseCountWord(s string) (int, bool) {
	if n, ok := wordNumbers[s]; ok {
		return n, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parsePriceLiteral(digits, suffix string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(digits, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	switch suffix {
	case "k", "thousand":
		v *= 1_000
	case "m", "million":
		v *= 1_000_000
	}
	return v, true
}

// VoiceOutcome is the result of feeding one transcript through the gate.
type VoiceOutcome struct {
	Applied  bool              `json:"applied"`
	Filters  model.FilterState `json:"filters"`
	FreeText string            `json:"free_text,omitempty"`
	Pending  bool              `json:"pending"`
}

// VoiceController runs the confidence-gated acceptance protocol around
// the pure parser: Idle -> Listening -> {applied, pending retry} -> Idle.
// Transcripts below the confidence threshold are never applied
// automatically; the caller surfaces Retry / Accept Anyway / Dismiss.
type VoiceController struct {
	threshold    float64
	historyLimit int
	logger       *slog.Logger
	now          func() time.Time

	mu      sync.Mutex
	state   model.VoiceState
	pending *model.VoiceCommand
	history []model.VoiceHistoryEntry
}

// NewVoiceController creates a controller with the given acceptance
// threshold and bounded history size.
func NewVoiceController(threshold float64, historyLimit int, logger *slog.Logger) *VoiceController {
	if logger == nil {
		logger = slog.Default()
	}
	return &VoiceController{
		threshold:    threshold,
		historyLimit: historyLimit,
		logger:       logger,
		now:          time.Now,
		state:        model.VoiceIdle,
	}
}

// State returns the current gate state.
func (v *VoiceController) State() model.VoiceState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Pending returns the transcript awaiting user confirmation, if any.
func (v *VoiceController) Pending() *model.VoiceCommand {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.pending == nil {
		return nil
	}
	cmd := *v.pending
	return &cmd
}

// StartListening enters the Listening state.
func (v *VoiceController) StartListening() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = model.VoiceListening
	v.pending = nil
}

// OnTranscript processes a final recognition result. High-confidence
// transcripts are applied immediately (parsed filters, or free-text
// fallback when nothing parsed); low-confidence transcripts park in the
// pending-retry state without applying anything.
func (v *VoiceController) OnTranscript(cmd model.VoiceCommand) VoiceOutcome {
	v.mu.Lock()
	defer v.mu.Unlock()

	if cmd.Confidence < v.threshold {
		v.logger.Debug("low confidence transcript held",
			"confidence", cmd.Confidence, "threshold", v.threshold)
		held := cmd
		v.pending = &held
		v.state = model.VoicePendingRetry
		return VoiceOutcome{Pending: true}
	}

	outcome := v.applyLocked(cmd)
	v.state = model.VoiceIdle
	v.pending = nil
	return outcome
}

// Retry re-enters Listening, keeping nothing from the held transcript.
func (v *VoiceController) Retry() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pending = nil
	v.state = model.VoiceListening
}

// AcceptPending applies the held low-confidence transcript using the same
// parse-or-fallback rule as the high-confidence path. Returns false when
// nothing is pending.
func (v *VoiceController) AcceptPending() (VoiceOutcome, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.pending == nil {
		return VoiceOutcome{}, false
	}
	outcome := v.applyLocked(*v.pending)
	v.pending = nil
	v.state = model.VoiceIdle
	return outcome, true
}

// Dismiss discards the held transcript and returns to Idle.
func (v *VoiceController) Dismiss() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pending = nil
	v.state = model.VoiceIdle
}

// History returns the bounded most-recent-first command history.
func (v *VoiceController) History() []model.VoiceHistoryEntry {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]model.VoiceHistoryEntry, len(v.history))
	copy(out, v.history)
	return out
}

func (v *VoiceController) applyLocked(cmd model.VoiceCommand) VoiceOutcome {
	filters := ParseVoiceCommand(cmd.Transcript)
	if filters.IsZero() {
		// Not a filter command: fall back to plain full-text search.
		return VoiceOutcome{Applied: true, FreeText: cmd.Transcript}
	}

	entry := model.VoiceHistoryEntry{
		Transcript: cmd.Transcript,
		Confidence: cmd.Confidence,
		Filters:    filters,
		Timestamp:  v.now(),
	}
	v.history = append([]model.VoiceHistoryEntry{entry}, v.history...)
	if len(v.history) > v.historyLimit {
		v.history = v.history[:v.historyLimit]
	}

	return VoiceOutcome{Applied: true, Filters: filters}
}
