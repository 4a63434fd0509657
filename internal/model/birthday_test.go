package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBirthdayReminder_TagsFixedOrder(t *testing.T) {
	tests := []struct {
		name string
		b    BirthdayReminder
		want []string
	}{
		{name: "none", b: BirthdayReminder{}, want: []string{}},
		{
			name: "all",
			b:    BirthdayReminder{TwoWeeksBefore: true, OneWeekBefore: true, DayBefore: true, OnDay: true},
			want: []string{TagOnDay, TagDayBefore, TagOneWeekBefore, TagTwoWeeksBefore},
		},
		{
			name: "sparse",
			b:    BirthdayReminder{TwoWeeksBefore: true, OnDay: true},
			want: []string{TagOnDay, TagTwoWeeksBefore},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.b.Tags())
		})
	}
}

func TestBirthdayReminder_DecodeWithoutLastName(t *testing.T) {
	body := `{"id":"b1","userId":"u1","month":4,"day":3,"nextBirthday":1712102400000,"name":"Ada","onDay":true,"dayBefore":false,"oneWeekBefore":true,"twoWeeksBefore":false}`

	var b BirthdayReminder
	require.NoError(t, json.Unmarshal([]byte(body), &b))

	assert.Equal(t, "", b.LastName)
	assert.Equal(t, "u1", b.UserID)
	assert.Equal(t, time.Date(2024, time.April, 3, 0, 0, 0, 0, time.UTC), b.NextBirthdayTime().UTC())
}
