package appointment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidTimeSlot(t *testing.T) {
	valid := []string{"08:00", "9:00", "09:30", "16:30", "17:00", "23:59", "0:00"}
	for _, slot := range valid {
		assert.True(t, ValidTimeSlot(slot), slot)
	}

	invalid := []string{"", "9am", "24:00", "12:60", "12", "12:0", "12:000", " 9:00"}
	for _, slot := range invalid {
		assert.False(t, ValidTimeSlot(slot), slot)
	}
}

func TestWithinBusinessHours(t *testing.T) {
	// The window is inclusive at both ends.
	inside := []string{"08:00", "8:00", "12:30", "17:00"}
	for _, slot := range inside {
		assert.True(t, WithinBusinessHours(slot), slot)
	}

	outside := []string{"07:30", "17:30", "00:00", "23:30", "bogus"}
	for _, slot := range outside {
		assert.False(t, WithinBusinessHours(slot), slot)
	}
}

func TestAllSlots(t *testing.T) {
	slots := allSlots()

	// 08:00 through 16:30 on the half hour.
	assert.Len(t, slots, 18)
	assert.Equal(t, "08:00", slots[0])
	assert.Equal(t, "16:30", slots[len(slots)-1])
	for _, slot := range slots {
		assert.True(t, WithinBusinessHours(slot), slot)
	}
}
