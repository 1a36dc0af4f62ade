package validation

import (
	"regexp"
	"unicode/utf8"
)

// Level buckets a password strength score.
type Level int

const (
	Weak Level = iota
	Fair
	Good
	Strong
)

func (l Level) String() string {
	switch l {
	case Weak:
		return "weak"
	case Fair:
		return "fair"
	case Good:
		return "good"
	case Strong:
		return "strong"
	}
	return "unknown"
}

// MarshalText lets a Level encode as its name in JSON.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Strength is advisory feedback for a password being typed. It does not
// decide validity; see FieldPassword for that.
type Strength struct {
	Level Level  `json:"level"`
	Score int    `json:"score"`
	Label string `json:"text"`
	Color string `json:"color"`
}

var (
	hasUpper  = regexp.MustCompile(`[A-Z]`)
	hasLower  = regexp.MustCompile(`[a-z]`)
	hasDigit  = regexp.MustCompile(`[0-9]`)
	hasSymbol = regexp.MustCompile(`[^A-Za-z0-9]`)
)

var levels = [...]struct{ label, color string }{
	Weak:   {"Weak", "#dc3545"},
	Fair:   {"Fair", "#fd7e14"},
	Good:   {"Good", "#ffc107"},
	Strong: {"Strong", "#28a745"},
}

// PasswordStrength scores pw against six criteria (length >= 8, length >= 12,
// upper case, lower case, digit, symbol) and buckets the score.
func PasswordStrength(pw string) Strength {
	n := utf8.RuneCountInString(pw)
	score := 0
	for _, ok := range []bool{
		n >= 8,
		n >= 12,
		hasUpper.MatchString(pw),
		hasLower.MatchString(pw),
		hasDigit.MatchString(pw),
		hasSymbol.MatchString(pw),
	} {
		if ok {
			score++
		}
	}

	var lvl Level
	switch {
	case score < 2:
		lvl = Weak
	case score < 4:
		lvl = Fair
	case score < 5:
		lvl = Good
	default:
		lvl = Strong
	}
	return Strength{Level: lvl, Score: score, Label: levels[lvl].label, Color: levels[lvl].color}
}
