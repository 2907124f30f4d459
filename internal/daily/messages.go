package daily

import "fmt"

// Slot partitions the first day into time-of-day windows, each with its
// own opening message.
type Slot int

const (
	SlotMorning Slot = iota
	SlotAfternoon
	SlotEvening
)

// SlotFor maps a local hour to its slot: morning before 12, afternoon
// before 18, evening otherwise.
func SlotFor(hour int) Slot {
	switch {
	case hour < 12:
		return SlotMorning
	case hour < 18:
		return SlotAfternoon
	default:
		return SlotEvening
	}
}

var slotMessages = map[Slot]string{
	SlotMorning:   "Good morning! Today the marathon begins: one message a day, every day. Day 1 starts now.",
	SlotAfternoon: "The marathon begins today! Day 1 is already underway — one message a day from here on.",
	SlotEvening:   "Kicking off the marathon this evening: day 1 of the journey. A new message arrives every day.",
}

var dailyTemplates = []string{
	"Day %d of %d. Keeping the streak alive!",
	"Day %d of %d. Another day, another message.",
	"Day %d of %d. Still going strong.",
	"Day %d of %d. The countdown continues.",
}

// DailyMessage generates the text for day index (1-based) of total.
// The template rotates by day so consecutive days read differently.
func DailyMessage(index, total int) string {
	template := dailyTemplates[index%len(dailyTemplates)]
	return fmt.Sprintf(template, index, total)
}
