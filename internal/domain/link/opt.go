package link

// Opt is an optional value with explicit presence.
// A zero Opt is absent.
type Opt[T comparable] struct {
	value T
	set   bool
}

// Some returns a present Opt holding v
func Some[T comparable](v T) Opt[T] {
	return Opt[T]{value: v, set: true}
}

// None returns an absent Opt
func None[T comparable]() Opt[T] {
	return Opt[T]{}
}

// Get returns the value and whether it was set
func (o Opt[T]) Get() (T, bool) {
	return o.value, o.set
}

// Present reports whether the value was set and is not the zero value.
// Serializers use it to drop empty optional fields.
func (o Opt[T]) Present() bool {
	var zero T
	return o.set && o.value != zero
}

// OrElse returns the value when present, otherwise fallback
func (o Opt[T]) OrElse(fallback T) T {
	if o.Present() {
		return o.value
	}
	return fallback
}

// Value returns the held value, or the zero value when absent
func (o Opt[T]) Value() T {
	return o.value
}

// optString wraps s as present only when it is non-empty.
func optString(s string) Opt[string] {
	if s == "" {
		return None[string]()
	}
	return Some(s)
}
