package sweep

// Policy selects how Run treats a grid configuration that fails validation.
type Policy string

const (
	// PolicyAbort fails the whole sweep at the first invalid configuration.
	PolicyAbort Policy = "abort"

	// PolicySkip drops invalid configurations and sweeps the rest.
	PolicySkip Policy = "skip"
)

// Valid returns true if the policy is a recognized value.
func (p Policy) Valid() bool {
	switch p {
	case PolicyAbort, PolicySkip:
		return true
	}
	return false
}

// String returns the string representation of the policy.
func (p Policy) String() string {
	return string(p)
}
