package ptrx

// To returns a pointer to a copy of v.
func To[T any](v T) *T {
	return &v
}

// Deref returns the value p points to, or the zero value when p is nil.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// DerefOr returns the value p points to, or def when p is nil.
func DerefOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// Slice returns a slice of pointers to copies of vs.
func Slice[T any](vs []T) []*T {
	ps := make([]*T, len(vs))
	for i := range vs {
		v := vs[i]
		ps[i] = &v
	}
	return ps
}
