package concepts

// Tier is one of the lookups tried for a candidate span, in order of
// preference.
type Tier int

const (
	// TierExact matches the surface text exactly.
	TierExact Tier = iota
	// TierLowercase matches the lower-cased surface text.
	TierLowercase
	// TierEdited matches the text with acronyms expanded.
	TierEdited
	// TierEditedLowercase matches the lower-cased text with acronyms expanded.
	TierEditedLowercase
	// TierNorms matches the bag of norm forms.
	TierNorms
)

var tierNames = [...]string{
	TierExact:           "exact",
	TierLowercase:       "lowercase",
	TierEdited:          "edited",
	TierEditedLowercase: "edited_lowercase",
	TierNorms:           "norms",
}

// These values are tuned; changing them shifts precision and recall.
var tierConfidence = [...]float64{
	TierExact:           1.0,
	TierLowercase:       0.6,
	TierEdited:          0.9,
	TierEditedLowercase: 0.5,
	TierNorms:           0.3,
}

func (t Tier) String() string {
	if t < 0 || int(t) >= len(tierNames) {
		return "unknown"
	}
	return tierNames[t]
}

// Confidence is the score given to concepts matched in t.
func (t Tier) Confidence() float64 {
	if t < 0 || int(t) >= len(tierConfidence) {
		return 0
	}
	return tierConfidence[t]
}
