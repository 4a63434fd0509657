package birthdays

import "time"

// Reminder is a birthday record as accepted by POST /sendemail.
type Reminder struct {
	ID             string `json:"id,omitempty"`
	UserID         string `json:"userId"`
	Month          int    `json:"month,omitempty"`
	Day            int    `json:"day,omitempty"`
	NextBirthday   int64  `json:"nextBirthday"`
	Name           string `json:"name"`
	LastName       string `json:"lastName,omitempty"`
	OnDay          bool   `json:"onDay"`
	DayBefore      bool   `json:"dayBefore"`
	OneWeekBefore  bool   `json:"oneWeekBefore"`
	TwoWeeksBefore bool   `json:"twoWeeksBefore"`
}

// SetNextBirthday stores t as epoch milliseconds.
func (r *Reminder) SetNextBirthday(t time.Time) {
	r.NextBirthday = t.UnixMilli()
	r.Month = int(t.Month())
	r.Day = t.Day()
}

type sendResult struct {
	Message string `json:"message"`
	OK      bool   `json:"ok"`
}
