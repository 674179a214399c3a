package sconfig

// Validator decides whether a field may change from oldValue to newValue.
// It returns the value to store, which may differ from newValue, or an
// error to veto the change. Returning a *VetoError (see Reject) controls the
// message shown to the user; any other error is used as the message.
type Validator interface {
	ValidateChange(newValue, oldValue any) (any, error)
}

// ValidatorFunc adapts a function to a Validator.
type ValidatorFunc func(newValue, oldValue any) (any, error)

// ValidateChange calls f.
func (f ValidatorFunc) ValidateChange(newValue, oldValue any) (any, error) {
	return f(newValue, oldValue)
}
