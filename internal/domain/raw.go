package domain

// RawRecord is a provider pair record decoded from JSON.
// Numbers are kept as json.Number; nested objects are map[string]any.
// Fields must only be read through normalize.Lookup and its typed helpers.
type RawRecord map[string]any
