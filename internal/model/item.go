package model

import (
	"strconv"
	"strings"
	"time"
)

// Layouts for the derived creation fields.
const (
	DayLayout  = "02/01/06" // dd/MM/yy
	TimeLayout = "03:04 PM" // hh:mm a
)

// Item is the domain model for a todo entry.
// ID, Time and Day are fixed at creation; only Title and Message change.
type Item struct {
	ID      string `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	Message string `json:"message" yaml:"message"`
	Time    string `json:"time" yaml:"time"`
	Day     string `json:"day" yaml:"day"`
}

// NewItem builds an item created at ts.
func NewItem(title, message string, ts time.Time) Item {
	return Item{
		ID:      IDFor(ts),
		Title:   title,
		Message: message,
		Time:    FormatTime(ts),
		Day:     FormatDay(ts),
	}
}

// IDFor renders ts as epoch seconds with at least one fractional digit,
// e.g. "1600000000.0" or "1600000000.25".
func IDFor(ts time.Time) string {
	secs := float64(ts.Unix()) + float64(ts.Nanosecond())/1e9
	s := strconv.FormatFloat(secs, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func FormatDay(ts time.Time) string  { return ts.Format(DayLayout) }
func FormatTime(ts time.Time) string { return ts.Format(TimeLayout) }
