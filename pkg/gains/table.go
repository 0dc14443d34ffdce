package gains

const (
	ProfileSafe = "safe"
	ProfileLow  = "low"
	ProfileMid  = "mid"
	ProfileHigh = "high"

	DefaultLowThreshold  = 0.35
	DefaultHighThreshold = 0.70
)

// Table is the banded decision table.  Without trusted vision it runs the Safe
// profile: slow, stiff and lightly damped.  With vision, a short lookahead
// means a curve is coming (Low), a long one means a straight (High).
type Table struct {
	LowThreshold  float64 `yaml:"lowThreshold"`
	HighThreshold float64 `yaml:"highThreshold"`

	Safe ControlGains `yaml:"safe"`
	Low  ControlGains `yaml:"low"`
	Mid  ControlGains `yaml:"mid"`
	High ControlGains `yaml:"high"`
}

func DefaultTable() Table {
	return Table{
		LowThreshold:  DefaultLowThreshold,
		HighThreshold: DefaultHighThreshold,

		Safe: ControlGains{BaseSpeed: 0.30, Kp: 0.70, Ki: 0, Kd: 0.05},
		Low:  ControlGains{BaseSpeed: 0.35, Kp: 0.80, Ki: 0, Kd: 0.08},
		Mid:  ControlGains{BaseSpeed: 0.45, Kp: 0.60, Ki: 0, Kd: 0.12},
		High: ControlGains{BaseSpeed: 0.60, Kp: 0.45, Ki: 0, Kd: 0.18},
	}
}

// Schedule uses strict less-than at both thresholds, so a lookahead exactly on
// a threshold belongs to the band above it.
func (t Table) Schedule(in Input) ControlGains {
	switch {
	case !in.UseVision:
		return named(t.Safe, ProfileSafe)
	case in.Lookahead < t.LowThreshold:
		return named(t.Low, ProfileLow)
	case in.Lookahead < t.HighThreshold:
		return named(t.Mid, ProfileMid)
	default:
		return named(t.High, ProfileHigh)
	}
}

func named(g ControlGains, profile string) ControlGains {
	g.Profile = profile
	return g
}
