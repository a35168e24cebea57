package dice

import "fmt"

// Outcome is the classified result of a roll against a threshold.
type Outcome uint8

const (
	Failure Outcome = iota
	Success
	Critical
)

// IsSuccess reports whether the outcome counts as a success. Critical does.
func (o Outcome) IsSuccess() bool {
	return o == Success || o == Critical
}

func (o Outcome) String() string {
	switch o {
	case Failure:
		return "failure"
	case Success:
		return "success"
	case Critical:
		return "critical"
	}
	return fmt.Sprintf("Outcome(%d)", uint8(o))
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(b []byte) error {
	switch string(b) {
	case "failure":
		*o = Failure
	case "success":
		*o = Success
	case "critical":
		*o = Critical
	default:
		return fmt.Errorf("unknown outcome %q", b)
	}
	return nil
}

// Rules holds the classification constants.
type Rules struct {
	// SharedThreshold is used when a roll has no "against" attribute.
	SharedThreshold int `yaml:"shared_threshold" env:"SHARED_THRESHOLD"`
	CriticalFloor   int `yaml:"critical_floor" env:"CRITICAL_FLOOR"`
	CriticalMargin  int `yaml:"critical_margin" env:"CRITICAL_MARGIN"`
}

// DefaultRules returns the standard constants: threshold 10, critical at 20
// and at least 5 over the threshold.
func DefaultRules() Rules {
	return Rules{SharedThreshold: 10, CriticalFloor: 20, CriticalMargin: 5}
}

// Classify classifies total against threshold.
func (r Rules) Classify(total, threshold int) Outcome {
	if total < threshold {
		return Failure
	}
	if total >= r.CriticalFloor && total >= threshold+r.CriticalMargin {
		return Critical
	}
	return Success
}
