// Package timex provides a JSON-friendly wrapper around time.Duration for
// configuration files.
package timex

import (
	"encoding/json"
	"errors"
	"time"
)

// Duration unmarshals either a duration string ("15m", "720h") or a number of
// nanoseconds. It is only used in configuration DTOs; runtime structs keep
// plain time.Duration.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return errors.New("invalid duration")
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}
