package satin

import (
	"strconv"
	"time"
)

const (
	AttrStartTime = "Start Time"
	AttrEndTime   = "End Time"
)

// TimeRange is the acquisition interval of a swath, in UTC.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Valid reports Start <= End. A false result flags bad data; it is not an
// error.
func (r TimeRange) Valid() bool {
	return !r.End.Before(r.Start)
}

func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// ResolveTimeRange parses the "Start Time" and "End Time" global attributes.
func ResolveTimeRange(attrs map[string]string) (TimeRange, error) {
	var tr TimeRange
	var err error

	tr.Start, err = timeAttr(attrs, AttrStartTime)
	if err != nil {
		return TimeRange{}, err
	}
	tr.End, err = timeAttr(attrs, AttrEndTime)
	if err != nil {
		return TimeRange{}, err
	}
	return tr, nil
}

func timeAttr(attrs map[string]string, name string) (time.Time, error) {
	value, ok := attrs[name]
	if !ok {
		return time.Time{}, &MissingTimeAttributeError{Attribute: name}
	}
	t, err := ParseOrdinalTime(value)
	if err != nil {
		if malformed, ok := err.(*MalformedTimeStringError); ok {
			malformed.Attribute = name
		}
		return time.Time{}, err
	}
	return t, nil
}

// digits parses s as an unsigned decimal made of ASCII digits only.
func digits(s string) (int, bool) {
	if len(s) == 0 {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// ParseOrdinalTime parses YYYYDDDHHMMSSmmm: year, day of year, time of day
// and milliseconds. Characters past the 16th are ignored. Rejected values
// yield a *MalformedTimeStringError without an attribute name.
func ParseOrdinalTime(value string) (time.Time, error) {
	if len(value) < 16 {
		return time.Time{}, &MalformedTimeStringError{Value: value, Reason: "shorter than 16 characters"}
	}

	year, ok := digits(value[0:4])
	if !ok {
		return time.Time{}, &MalformedTimeStringError{Value: value, Reason: "invalid year"}
	}
	yday, ok := digits(value[4:7])
	if !ok {
		return time.Time{}, &MalformedTimeStringError{Value: value, Reason: "invalid day of year"}
	}
	daysInYear := 365
	if isLeap(year) {
		daysInYear = 366
	}
	if yday < 1 || yday > daysInYear {
		return time.Time{}, &MalformedTimeStringError{Value: value, Reason: "day of year out of range"}
	}

	hour, ok := digits(value[7:9])
	if !ok || hour > 23 {
		return time.Time{}, &MalformedTimeStringError{Value: value, Reason: "invalid hour"}
	}
	minute, ok := digits(value[9:11])
	if !ok || minute > 59 {
		return time.Time{}, &MalformedTimeStringError{Value: value, Reason: "invalid minute"}
	}
	second, ok := digits(value[11:13])
	if !ok || second > 59 {
		return time.Time{}, &MalformedTimeStringError{Value: value, Reason: "invalid second"}
	}
	msec, ok := digits(value[13:16])
	if !ok {
		return time.Time{}, &MalformedTimeStringError{Value: value, Reason: "invalid milliseconds"}
	}

	t := time.Date(year, 1, 1, hour, minute, second, 0, time.UTC)
	t = t.AddDate(0, 0, yday-1)
	return t.Add(time.Duration(msec) * time.Millisecond), nil
}
