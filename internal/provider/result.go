package provider

// Result is what every adapter returns: either a (possibly empty) list of
// items or the reason the provider could not produce one. A failure never
// carries items, and an empty success is not a failure.
type Result[T any] struct {
	// Provider is the adapter name, used for logging and ProviderErrors.
	Provider string
	// Items is never nil on success.
	Items []T
	// Reason is non-empty exactly when the call failed.
	Reason string
}

// Success returns a successful Result holding items.
func Success[T any](provider string, items []T) Result[T] {
	if items == nil {
		items = []T{}
	}
	return Result[T]{Provider: provider, Items: items}
}

// Failure returns a failed Result with reason.
func Failure[T any](provider, reason string) Result[T] {
	if reason == "" {
		reason = "unknown error"
	}
	return Result[T]{Provider: provider, Reason: reason}
}

// OK reports whether the call succeeded.
func (r Result[T]) OK() bool {
	return r.Reason == ""
}

// List returns the items, or an empty slice on failure.
func (r Result[T]) List() []T {
	if !r.OK() || r.Items == nil {
		return []T{}
	}
	return r.Items
}
