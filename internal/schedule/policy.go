package schedule

import (
	"fmt"
	"time"
)

// Fixed time-slot catalog. The slot strings are part of the contract with
// the upstream voice-dialog configuration and must stay verbatim.
var timeSlots = []string{
	"08:00-12:00",
	"09:00-12:00",
	"13:00-17:00",
	"14:00-17:00",
	"14:00-18:00",
}

// Reason codes returned to the voice platform, verbatim contract.
const (
	ReasonPastDate = "past_date"
	ReasonSunday   = "sunday"
)

// SuggestionHorizonDays bounds the alternative-date search when a proposed
// date is rejected.
const SuggestionHorizonDays = 7

// MaxSuggestions caps the alternative dates offered on a rejected proposal.
const MaxSuggestions = 5

var weekdayNames = [...]string{
	"domenica", "lunedì", "martedì", "mercoledì", "giovedì", "venerdì", "sabato",
}

var monthNames = [...]string{
	"gennaio", "febbraio", "marzo", "aprile", "maggio", "giugno",
	"luglio", "agosto", "settembre", "ottobre", "novembre", "dicembre",
}

// DateOption is one offerable calendar date.
type DateOption struct {
	Date    string `json:"date"`    // ISO, "2006-01-02"
	Display string `json:"display"` // Italian locale, "giovedì 1 agosto 2024"
	Weekday string `json:"weekday"`
}

// ValidationResult is the tagged outcome of a date proposal.
type ValidationResult struct {
	Valid     bool
	Date      string
	TimeSlots []string
	Reason    string
	Suggested []DateOption
}

// Policy decides, without touching the store, whether a proposed date/slot
// is schedulable and enumerates offerable alternatives.
// Now is injectable for tests and defaults to time.Now.
type Policy struct {
	Now func() time.Time
}

func NewPolicy() *Policy {
	return &Policy{Now: time.Now}
}

// TimeSlots returns the fixed slot catalog.
func TimeSlots() []string {
	out := make([]string, len(timeSlots))
	copy(out, timeSlots)
	return out
}

// FormatDisplay renders a date in Italian, e.g. "giovedì 1 agosto 2024".
func FormatDisplay(d time.Time) string {
	return fmt.Sprintf("%s %d %s %d",
		weekdayNames[d.Weekday()], d.Day(), monthNames[d.Month()-1], d.Year())
}

// WeekdayName returns the Italian weekday name.
func WeekdayName(d time.Time) string {
	return weekdayNames[d.Weekday()]
}

// truncateDay drops the time-of-day component.
func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsPastOrToday reports whether d is not strictly after the current date.
// Same-day appointments are disallowed.
func (p *Policy) IsPastOrToday(d time.Time) bool {
	return !truncateDay(d).After(truncateDay(p.Now()))
}

// IsClosedDay reports whether d falls on a closed weekday. Sunday is the
// only excluded day; Saturday is a valid working day.
func (p *Policy) IsClosedDay(d time.Time) bool {
	return d.Weekday() == time.Sunday
}

// AvailableDates enumerates up to horizonDays candidate dates starting the
// day after from, skipping closed days when excludeClosed is set.
func (p *Policy) AvailableDates(from time.Time, horizonDays int, excludeClosed bool) []DateOption {
	out := make([]DateOption, 0, horizonDays)
	d := truncateDay(from)
	for i := 0; i < horizonDays; i++ {
		d = d.AddDate(0, 0, 1)
		if excludeClosed && p.IsClosedDay(d) {
			continue
		}
		out = append(out, DateOption{
			Date:    d.Format("2006-01-02"),
			Display: FormatDisplay(d),
			Weekday: WeekdayName(d),
		})
	}
	return out
}

// suggestions returns up to MaxSuggestions future non-closed dates.
func (p *Policy) suggestions() []DateOption {
	opts := p.AvailableDates(p.Now(), SuggestionHorizonDays, true)
	if len(opts) > MaxSuggestions {
		opts = opts[:MaxSuggestions]
	}
	return opts
}

// ValidateDate checks a proposed appointment date. The time slot is accepted
// by callers alongside the date but is not cross-checked against the catalog.
func (p *Policy) ValidateDate(d time.Time) ValidationResult {
	if p.IsPastOrToday(d) {
		return ValidationResult{
			Valid:     false,
			Reason:    ReasonPastDate,
			Suggested: p.suggestions(),
		}
	}
	if p.IsClosedDay(d) {
		return ValidationResult{
			Valid:     false,
			Reason:    ReasonSunday,
			Suggested: p.suggestions(),
		}
	}
	return ValidationResult{
		Valid:     true,
		Date:      truncateDay(d).Format("2006-01-02"),
		TimeSlots: TimeSlots(),
	}
}
