package domain

import "fmt"

// MasteryLevel is an ordinal summary of how well a card is learned.
type MasteryLevel int

// Mastery levels from lowest to highest.
const (
	MasteryNovice MasteryLevel = iota
	MasteryBeginner
	MasteryIntermediate
	MasteryAdvanced
	MasteryExpert
)

var masteryNames = [...]string{
	MasteryNovice:       "novice",
	MasteryBeginner:     "beginner",
	MasteryIntermediate: "intermediate",
	MasteryAdvanced:     "advanced",
	MasteryExpert:       "expert",
}

// MasteryLevels lists every level in ascending order.
var MasteryLevels = []MasteryLevel{
	MasteryNovice,
	MasteryBeginner,
	MasteryIntermediate,
	MasteryAdvanced,
	MasteryExpert,
}

// IsValid reports whether m is within novice..expert.
func (m MasteryLevel) IsValid() bool {
	return m >= MasteryNovice && m <= MasteryExpert
}

// String returns the lowercase name of the level.
func (m MasteryLevel) String() string {
	if !m.IsValid() {
		return fmt.Sprintf("mastery(%d)", int(m))
	}
	return masteryNames[m]
}

// Promote returns the next level up, staying at expert.
func (m MasteryLevel) Promote() MasteryLevel {
	if m >= MasteryExpert {
		return MasteryExpert
	}
	if m < MasteryNovice {
		return MasteryBeginner
	}
	return m + 1
}

// Demote returns the next level down, staying at novice.
func (m MasteryLevel) Demote() MasteryLevel {
	if m <= MasteryNovice {
		return MasteryNovice
	}
	if m > MasteryExpert {
		return MasteryAdvanced
	}
	return m - 1
}

// MarshalText encodes the level by name.
func (m MasteryLevel) MarshalText() ([]byte, error) {
	if !m.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMasteryLevel, int(m))
	}
	return []byte(masteryNames[m]), nil
}

// UnmarshalText decodes a level name.
func (m *MasteryLevel) UnmarshalText(text []byte) error {
	level, err := ParseMasteryLevel(string(text))
	if err != nil {
		return err
	}
	*m = level
	return nil
}

// ParseMasteryLevel converts a level name into a MasteryLevel.
func ParseMasteryLevel(s string) (MasteryLevel, error) {
	for i, name := range masteryNames {
		if name == s {
			return MasteryLevel(i), nil
		}
	}
	return MasteryNovice, fmt.Errorf("%w: %q", ErrInvalidMasteryLevel, s)
}
