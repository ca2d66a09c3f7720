package domain

// Mode is the operating state of the monitor.
type Mode string

const (
	// ModeWarmup uses relaxed thresholds right after process start.
	ModeWarmup Mode = "WARMUP"
	// ModeNormal uses the configured production thresholds.
	ModeNormal Mode = "NORMAL"
)

// String returns the string representation of Mode.
func (m Mode) String() string {
	return string(m)
}

// IsTest reports whether alerts are flagged as test alerts.
func (m Mode) IsTest() bool {
	return m == ModeWarmup
}
