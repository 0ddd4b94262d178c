package scoring

// Weights holds the point values awarded per scoring category. Fixed at
// engine construction and never mutated during a run.
type Weights struct {
	DecisionMaker int `yaml:"decision_maker" mapstructure:"decision_maker"`
	Influencer    int `yaml:"influencer" mapstructure:"influencer"`
	ExactICP      int `yaml:"exact_icp" mapstructure:"exact_icp"`
	AdjacentICP   int `yaml:"adjacent_icp" mapstructure:"adjacent_icp"`
	Completeness  int `yaml:"completeness" mapstructure:"completeness"`
	AIHigh        int `yaml:"ai_high" mapstructure:"ai_high"`
	AIMedium      int `yaml:"ai_medium" mapstructure:"ai_medium"`
	AILow         int `yaml:"ai_low" mapstructure:"ai_low"`
}

// DefaultWeights returns the contractual point values.
func DefaultWeights() Weights {
	return Weights{
		DecisionMaker: 30,
		Influencer:    15,
		ExactICP:      25,
		AdjacentICP:   10,
		Completeness:  10,
		AIHigh:        50,
		AIMedium:      30,
		AILow:         10,
	}
}
