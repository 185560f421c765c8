package loan

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Score is either unscored or a scored credit value. The zero value is
// unscored; it maps to a NULL column.
type Score struct {
	value  int
	scored bool
}

var Unscored = Score{}

func Scored(v int) Score { return Score{value: v, scored: true} }

// Get returns the value and whether the application has been scored.
func (s Score) Get() (int, bool) { return s.value, s.scored }

func (s Score) IsScored() bool { return s.scored }

func (s Score) String() string {
	if !s.scored {
		return "unscored"
	}
	return fmt.Sprintf("%d", s.value)
}

func (s Score) Value() (driver.Value, error) {
	if !s.scored {
		return nil, nil
	}
	return int64(s.value), nil
}

func (s *Score) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = Unscored
	case int64:
		*s = Scored(int(v))
	case int32:
		*s = Scored(int(v))
	case int:
		*s = Scored(v)
	case []byte:
		var n int
		if _, err := fmt.Sscanf(string(v), "%d", &n); err != nil {
			return fmt.Errorf("scan credit score %q: %w", v, err)
		}
		*s = Scored(n)
	default:
		return fmt.Errorf("scan credit score: unsupported type %T", src)
	}
	return nil
}

func (s Score) MarshalJSON() ([]byte, error) {
	if !s.scored {
		return []byte("null"), nil
	}
	return json.Marshal(s.value)
}

func (s *Score) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = Unscored
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = Scored(n)
	return nil
}

func (Score) GormDataType() string { return "int" }
