package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"math"
	"strings"
	"time"

	"github.com/birthdaysrun/reminder/internal/model"
)

//go:embed templates/reminder.html
var templateFS embed.FS

var reminderTemplate = template.Must(template.ParseFS(templateFS, "templates/reminder.html"))

// Branding is the sender identity shown at the top of every reminder.
type Branding struct {
	Name    string
	URL     string
	LogoURL string
}

// Reminder is a composed, ready-to-send reminder.
type Reminder struct {
	Subject string
	HTML    string
}

// Composer renders birthday reminders. It holds no mutable state.
type Composer struct {
	brand Branding
	loc   *time.Location
	now   func() time.Time
}

// NewComposer creates a Composer printing dates in loc (UTC when nil).
func NewComposer(brand Branding, loc *time.Location) *Composer {
	if loc == nil {
		loc = time.UTC
	}
	return &Composer{
		brand: brand,
		loc:   loc,
		now:   time.Now,
	}
}

// WithClock returns a copy of c that reads the current time from now.
func (c *Composer) WithClock(now func() time.Time) *Composer {
	cp := *c
	cp.now = now
	return &cp
}

type reminderData struct {
	Brand     Branding
	Name      string
	LastName  string
	Phrase    string
	Date      string
	Reminders string
}

// Compose builds the subject and HTML body for b.
func (c *Composer) Compose(b *model.BirthdayReminder) (*Reminder, error) {
	next := b.NextBirthdayTime()

	data := reminderData{
		Brand:     c.brand,
		Name:      b.Name,
		LastName:  b.LastName,
		Phrase:    RelativePhrase(next, c.now()),
		Date:      FormatDate(next, c.loc),
		Reminders: strings.Join(b.Tags(), ", "),
	}

	var buf bytes.Buffer
	if err := reminderTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render reminder: %w", err)
	}

	return &Reminder{
		Subject: Subject(b.Name),
		HTML:    buf.String(),
	}, nil
}

// Subject returns the reminder subject line for name.
func Subject(name string) string {
	return name + "'s Birthday"
}

// RelativePhrase describes target relative to now in whole days,
// rounding half a day up.
func RelativePhrase(target, now time.Time) string {
	diff := target.Sub(now)
	future := diff > 0
	if diff < 0 {
		diff = -diff
	}
	days := int(math.Floor(diff.Hours()/24 + 0.5))

	switch {
	case days == 0, !future && days == 1:
		return "today!"
	case future && days == 1:
		return "tomorrow"
	case future && days >= 6 && days <= 8:
		return "in 1 week"
	case future && days >= 13 && days <= 15:
		return "in 2 weeks"
	case future:
		return fmt.Sprintf("in %d days", days)
	default:
		return fmt.Sprintf("%d days ago", days)
	}
}

// FormatDate prints t as "<Month> <day><suffix>", e.g. "April 3rd".
func FormatDate(t time.Time, loc *time.Location) string {
	t = t.In(loc)
	return t.Month().String() + " " + ordinal(t.Day())
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
