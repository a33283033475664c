package analyzer

import (
	"time"

	"github.com/blackwell-systems/tooltime/internal/event"
)

// dayNames is the Monday-first weekday order used for the day buckets.
var dayNames = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// TimeOfDayPatterns converts each event's instant into loc and buckets by
// hour of day and weekday. The location name is carried in the result so
// presentation never has to guess the zone.
func TimeOfDayPatterns(events []event.Event, loc *time.Location) TimePatterns {
	if loc == nil {
		loc = time.Local
	}

	type hourData struct {
		events int
		calls  int
		errors int
	}
	type dayData struct {
		events   int
		errors   int
		sessions map[string]bool
	}

	var hours [24]hourData
	days := make([]dayData, 7)
	for i := range days {
		days[i].sessions = map[string]bool{}
	}

	for _, e := range events {
		local := e.Time.In(loc)
		h := local.Hour()
		// time.Weekday is Sunday-first; shift to the Monday-first index.
		d := (int(local.Weekday()) + 6) % 7

		hours[h].events++
		days[d].events++
		days[d].sessions[event.SessionID(e.ID)] = true

		if e.IsCall() {
			hours[h].calls++
		}
		if e.IsError() {
			hours[h].errors++
			days[d].errors++
		}
	}

	result := TimePatterns{
		ByHour:      make([]HourBucket, 24),
		ByDayOfWeek: make([]DayBucket, 7),
		PeakDay:     dayNames[0],
		Timezone:    loc.String(),
	}

	for h := 0; h < 24; h++ {
		rate := 0.0
		if hours[h].calls > 0 {
			rate = round3(float64(hours[h].errors) / float64(hours[h].calls))
		}
		result.ByHour[h] = HourBucket{Hour: h, Events: hours[h].events, ErrorRate: rate}

		if hours[h].events > hours[result.PeakHour].events {
			result.PeakHour = h
		}
	}

	// Most error-prone hour: highest error rate among hours with any calls.
	bestRate := -1.0
	for h := 0; h < 24; h++ {
		if hours[h].calls == 0 {
			continue
		}
		rate := float64(hours[h].errors) / float64(hours[h].calls)
		if rate > bestRate {
			bestRate = rate
			result.MostErrorProneHour = h
		}
	}

	peakDayEvents := 0
	for d := 0; d < 7; d++ {
		rate := 0.0
		if days[d].events > 0 {
			rate = round3(float64(days[d].errors) / float64(days[d].events))
		}
		result.ByDayOfWeek[d] = DayBucket{
			Day:       dayNames[d],
			Events:    days[d].events,
			Sessions:  len(days[d].sessions),
			ErrorRate: rate,
		}
		if days[d].events > peakDayEvents {
			peakDayEvents = days[d].events
			result.PeakDay = dayNames[d]
		}
	}

	return result
}

// ResolveLocation loads the named time zone, falling back to the system
// zone for an empty or unknown name. The second return reports whether the
// name resolved.
func ResolveLocation(name string) (*time.Location, bool) {
	if name == "" {
		return time.Local, true
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local, false
	}
	return loc, true
}
