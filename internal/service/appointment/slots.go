package appointment

import (
	"fmt"
	"regexp"
)

// Business hours run 08:00 to 17:00 inclusive. Bookable slots are the
// half-hour grid inside the window.
const (
	businessStartMinutes = 8 * 60
	businessEndMinutes   = 17 * 60
	slotIntervalMinutes  = 30
)

var timeSlotRE = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

// ValidTimeSlot reports whether slot is a well-formed HH:MM time.
func ValidTimeSlot(slot string) bool {
	return timeSlotRE.MatchString(slot)
}

// WithinBusinessHours reports whether a well-formed slot falls inside
// the business-hours window.
func WithinBusinessHours(slot string) bool {
	minutes, ok := slotMinutes(slot)
	if !ok {
		return false
	}
	return minutes >= businessStartMinutes && minutes <= businessEndMinutes
}

func slotMinutes(slot string) (int, bool) {
	if !ValidTimeSlot(slot) {
		return 0, false
	}
	var hours, mins int
	if _, err := fmt.Sscanf(slot, "%d:%d", &hours, &mins); err != nil {
		return 0, false
	}
	return hours*60 + mins, true
}

// allSlots returns every half-hour slot start inside business hours,
// in ascending order.
func allSlots() []string {
	var slots []string
	for m := businessStartMinutes; m < businessEndMinutes; m += slotIntervalMinutes {
		slots = append(slots, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return slots
}
