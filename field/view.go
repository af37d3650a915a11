package field

// View is a mutable, non-owning window into a host-resident vector's
// storage. A view must not be retained past the lifetime of its source
// vector; that is a caller obligation, not checked at runtime.
type View[T Value] struct {
	s []T
}

// Len returns the number of elements in the window.
func (v View[T]) Len() int { return len(v.s) }

// At returns the element at position i.
func (v View[T]) At(i int) T { return v.s[i] }

// Set overwrites the element at position i.
func (v View[T]) Set(i int, x T) { v.s[i] = x }

// Sub narrows the window to [lo, hi).
func (v View[T]) Sub(lo, hi int) View[T] { return View[T]{s: v.s[lo:hi]} }

// Read returns the read-only capability over the same window.
func (v View[T]) Read() ReadView[T] { return ReadView[T]{s: v.s} }

// Slice exposes the underlying storage. The slice aliases the vector; it is
// for loop bodies that index it directly.
func (v View[T]) Slice() []T { return v.s }

// ReadView is the read-only counterpart of View: it carries no way to write
// through it.
type ReadView[T Value] struct {
	s []T
}

// Len returns the number of elements in the window.
func (v ReadView[T]) Len() int { return len(v.s) }

// At returns the element at position i.
func (v ReadView[T]) At(i int) T { return v.s[i] }

// Sub narrows the window to [lo, hi).
func (v ReadView[T]) Sub(lo, hi int) ReadView[T] { return ReadView[T]{s: v.s[lo:hi]} }
