package model

// Profile holds the operator's own positioning, injected into every
// qualification prompt.
type Profile struct {
	Website          string `json:"website"`
	ValueProposition string `json:"value_proposition"`
	ICP              string `json:"icp"`
}

// Complete reports whether all profile fields are filled in. An incomplete
// profile still analyzes, it just produces weaker prompts.
func (p Profile) Complete() bool {
	return p.Website != "" && p.ValueProposition != "" && p.ICP != ""
}
