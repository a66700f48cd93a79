package match

// Thresholds holds the minimum similarity required per entity kind. Stage
// names use a lower cutoff because stage vocabularies are short and
// abbreviation-prone ("Tech Interview" vs "Technical Interview").
type Thresholds struct {
	Opening   float64 `mapstructure:"opening"`
	Candidate float64 `mapstructure:"candidate"`
	Stage     float64 `mapstructure:"stage"`
	Test      float64 `mapstructure:"test"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Opening:   0.5,
		Candidate: 0.5,
		Stage:     0.3,
		Test:      0.5,
	}
}
