package domain

// Source identifies the feed a raw record came from.
type Source string

const (
	SourceDexscreener Source = "dexscreener"
	SourceBirdeye     Source = "birdeye"
)

// String returns the string representation of Source.
func (s Source) String() string {
	return string(s)
}

// IsValid checks if the source is a valid value.
func (s Source) IsValid() bool {
	return s == SourceDexscreener || s == SourceBirdeye
}
