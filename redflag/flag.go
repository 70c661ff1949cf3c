package redflag

import "fmt"

// Flag identifies one kind of suspicious output.
type Flag uint8

// The kinds of red flags.
const (
	TooLong Flag = iota + 1
	TooShort
	WrongFormat
	LowConfidence
	Repetitive
	OffTopic
)

func (f Flag) String() string {
	switch f {
	case TooLong:
		return "too_long"
	case TooShort:
		return "too_short"
	case WrongFormat:
		return "wrong_format"
	case LowConfidence:
		return "low_confidence"
	case Repetitive:
		return "repetitive"
	case OffTopic:
		return "off_topic"
	default:
		return fmt.Sprintf("Flag(%d)", uint8(f))
	}
}

// unknownSeverity is used for flags missing from the severity table.
const unknownSeverity = 0.5

// severity maps each flag to the confidence left in a response that raised it.
// Zero means the response is certainly unusable.
var severity = map[Flag]float64{
	WrongFormat:   0.0,
	TooLong:       0.3,
	TooShort:      0.3,
	LowConfidence: 0.4,
	Repetitive:    0.2,
	OffTopic:      0.3,
}

// Severity returns the confidence left in a response that raised f.
func (f Flag) Severity() float64 {
	if s, ok := severity[f]; ok {
		return s
	}
	return unknownSeverity
}

// Critical reports whether f alone is enough to discard a response in lenient mode.
func (f Flag) Critical() bool {
	return f == WrongFormat || f == Repetitive
}

// Reason is a raised flag together with a human readable explanation.
type Reason struct {
	Flag    Flag
	Message string
}

func (r Reason) Error() string {
	return fmt.Sprintf("%v: %s", r.Flag, r.Message)
}
