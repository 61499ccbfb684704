package achievements

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Condition is the unlock condition of an achievement. Each Type has
// exactly one concrete Condition.
type Condition interface {
	Type() Type
	Threshold() int
}

// QuantityCondition unlocks when the total count reaches TotalCount.
type QuantityCondition struct {
	TotalCount int `json:"total_count"`
}

// StreakCondition unlocks when the current streak reaches StreakDays.
type StreakCondition struct {
	StreakDays int `json:"streak_days"`
}

// SpeedCondition unlocks when a single submission reaches SingleSubmit.
type SpeedCondition struct {
	SingleSubmit int `json:"single_submit"`
}

// VersatileCondition unlocks when every active subject's total reaches
// AllSubjects.
type VersatileCondition struct {
	AllSubjects int `json:"all_subjects"`
}

func (QuantityCondition) Type() Type  { return TypeQuantity }
func (StreakCondition) Type() Type    { return TypeStreak }
func (SpeedCondition) Type() Type     { return TypeSpeed }
func (VersatileCondition) Type() Type { return TypeVersatile }

func (c QuantityCondition) Threshold() int  { return c.TotalCount }
func (c StreakCondition) Threshold() int    { return c.StreakDays }
func (c SpeedCondition) Threshold() int     { return c.SingleSubmit }
func (c VersatileCondition) Threshold() int { return c.AllSubjects }

// DecodeCondition parses the JSON payload of a condition of the given
// type. Unknown fields and non-positive thresholds are errors.
func DecodeCondition(typ Type, raw []byte) (Condition, error) {
	var c Condition
	switch typ {
	case TypeQuantity:
		c = &QuantityCondition{}
	case TypeStreak:
		c = &StreakCondition{}
	case TypeSpeed:
		c = &SpeedCondition{}
	case TypeVersatile:
		c = &VersatileCondition{}
	default:
		return nil, fmt.Errorf("unknown achievement type %q", typ)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return nil, fmt.Errorf("decode %s condition: %w", typ, err)
	}
	if c.Threshold() <= 0 {
		return nil, fmt.Errorf("%s condition: threshold must be positive, got %d", typ, c.Threshold())
	}

	switch v := c.(type) {
	case *QuantityCondition:
		return *v, nil
	case *StreakCondition:
		return *v, nil
	case *SpeedCondition:
		return *v, nil
	default:
		return *c.(*VersatileCondition), nil
	}
}

// EncodeCondition returns the JSON payload of c.
func EncodeCondition(c Condition) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode %s condition: %w", c.Type(), err)
	}
	return string(b), nil
}
