package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of ledger dates.
const DateLayout = "2006-01-02"

// CountRecord is one stock snapshot of one item on one day.
type CountRecord struct {
	ID               int64     `bson:"id" json:"id"`
	ItemName         string    `bson:"item_name" json:"item_name"`
	Date             string    `bson:"date" json:"date"`
	YesterdayCount   int       `bson:"yesterday_count" json:"yesterday_count"`
	CurrentCount     int       `bson:"current_count" json:"current_count"`
	RestocksReceived int       `bson:"restocks_received" json:"restocks_received"`
	SoldCalculated   int       `bson:"sold_calculated" json:"sold_calculated"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
}

// CountResult is returned after a count submission.
type CountResult struct {
	Record     CountRecord `json:"record"`
	IsFirstDay bool        `json:"is_first_day"`
	Message    string      `json:"message"`
}

// MaxCount bounds every count so stored values fit a 32-bit INT column and
// starting + restocks - current cannot overflow. The lte tags below repeat it.
const MaxCount = 2147483647

// SubmitCount carries the inputs of a daily count submission. Item names may
// not contain "/" so they stay addressable as a single URL path segment.
type SubmitCount struct {
	ItemName         string `validate:"required,max=255,excludes=/"`
	CurrentCount     int    `validate:"gte=0,lte=2147483647"`
	RestocksReceived int    `validate:"gte=0,lte=2147483647"`
	// Date defaults to today when empty.
	Date string `validate:"omitempty,datetime=2006-01-02"`
}

// Pagination describes a page of history.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// HistoryPage is a page of ledger records with its pagination metadata.
type HistoryPage struct {
	Data       []CountRecord `json:"data"`
	Pagination Pagination    `json:"pagination"`
}

// ParseDate validates a YYYY-MM-DD calendar date.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return t, nil
}

// FormatDate renders the calendar day of t in its own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// PreviousDay returns the calendar day before the given date.
func PreviousDay(date string) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, -1)), nil
}

// Today returns the current calendar day in loc.
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return FormatDate(now.In(loc))
}
