package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"anime365-client/lib/timezone"
)

// DateTimeLayout is the layout of every *DateTime field of the api, values
// are in Moscow time.
const DateTimeLayout = "2006-01-02 15:04:05"

// emptyDateTime is what the api sends in place of a missing date.
var emptyDateTime = time.Date(2000, time.January, 1, 0, 0, 0, 0, timezone.Location)

// DateTime decodes api dates. null and "" decode to the zero value.
type DateTime struct {
	time.Time
}

func ParseDateTime(value string) (time.Time, error) {
	parsed, err := timezone.Parse(DateTimeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid api date %q: %w", value, err)
	}
	return parsed, nil
}

// IsEmpty reports whether the date is unset or the api's placeholder date.
func (d DateTime) IsEmpty() bool {
	return d.Time.IsZero() || d.Time.Equal(emptyDateTime)
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}
	var value string
	err := json.Unmarshal(data, &value)
	if err != nil {
		return err
	}
	if value == "" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := ParseDateTime(value)
	if err != nil {
		return err
	}
	d.Time = parsed
	return nil
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Time.In(timezone.Location).Format(DateTimeLayout))
}
