package report

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// FlexTime is a time.Time that tolerates the submission timestamp shapes
// produced by older clients: an RFC3339 string, a bare epoch-seconds number,
// or a serialized timestamp object with a "seconds"/"_seconds" field.
// It always marshals back to RFC3339Nano, so anything written by this service
// is canonical. Normalization happens here, once, at the JSON boundary;
// business logic only ever sees time.Time.
type FlexTime struct {
	time.Time
}

// NewFlexTime wraps t
func NewFlexTime(t time.Time) FlexTime {
	return FlexTime{Time: t}
}

var flexLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (t *FlexTime) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case string:
		if v == "" {
			t.Time = time.Time{}
			return nil
		}
		for _, layout := range flexLayouts {
			if parsed, err := time.Parse(layout, v); err == nil {
				t.Time = parsed
				return nil
			}
		}
		return fmt.Errorf("unrecognized timestamp string %q", v)
	case float64:
		t.Time = epochToTime(v)
		return nil
	case map[string]any:
		secs, ok := v["seconds"]
		if !ok {
			secs, ok = v["_seconds"]
		}
		if !ok {
			return fmt.Errorf("timestamp object missing seconds field")
		}
		f, ok := secs.(float64)
		if !ok {
			return fmt.Errorf("timestamp seconds is not a number")
		}
		t.Time = epochToTime(f)
		return nil
	default:
		return fmt.Errorf("unsupported timestamp shape %T", raw)
	}
}

func (t FlexTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// epochToTime converts epoch seconds (possibly fractional) to a time.Time
func epochToTime(secs float64) time.Time {
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(frac*float64(time.Second))).UTC()
}
