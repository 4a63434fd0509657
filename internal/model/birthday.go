package model

import "time"

// BirthdayReminder is the payload posted to /sendemail for one reminder event.
type BirthdayReminder struct {
	ID     string `json:"id"`
	UserID string `json:"userId" validate:"required"`
	Month  int    `json:"month" validate:"omitempty,min=1,max=12"`
	Day    int    `json:"day" validate:"omitempty,min=1,max=31"`
	// NextBirthday is the epoch-millisecond timestamp of the next occurrence,
	// at most MaxTimestampMillis.
	NextBirthday int64  `json:"nextBirthday" validate:"gt=0,lte=8640000000000000"`
	Name         string `json:"name"`
	LastName     string `json:"lastName,omitempty"`

	OnDay          bool `json:"onDay"`
	DayBefore      bool `json:"dayBefore"`
	OneWeekBefore  bool `json:"oneWeekBefore"`
	TwoWeeksBefore bool `json:"twoWeeksBefore"`
}

// MaxTimestampMillis is the latest instant a JavaScript Date can hold.
const MaxTimestampMillis int64 = 8_640_000_000_000_000

// Reminder tag labels, in display order
const (
	TagOnDay          = "On Day"
	TagDayBefore      = "Day Before"
	TagOneWeekBefore  = "1 Week Before"
	TagTwoWeeksBefore = "2 Weeks Before"
)

// NextBirthdayTime converts NextBirthday to a time.Time
func (b *BirthdayReminder) NextBirthdayTime() time.Time {
	return time.UnixMilli(b.NextBirthday)
}

// Tags returns the active reminder flags. The order is fixed regardless of input.
func (b *BirthdayReminder) Tags() []string {
	tags := make([]string, 0, 4)
	if b.OnDay {
		tags = append(tags, TagOnDay)
	}
	if b.DayBefore {
		tags = append(tags, TagDayBefore)
	}
	if b.OneWeekBefore {
		tags = append(tags, TagOneWeekBefore)
	}
	if b.TwoWeeksBefore {
		tags = append(tags, TagTwoWeeksBefore)
	}
	return tags
}
