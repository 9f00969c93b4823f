package shared

// Specification encapsulates one business rule over a candidate value.
type Specification[T any] interface {
	IsSatisfiedBy(candidate T) bool
}

// SpecFunc adapts a plain predicate to Specification.
type SpecFunc[T any] func(candidate T) bool

func (f SpecFunc[T]) IsSatisfiedBy(candidate T) bool {
	return f(candidate)
}

// ============================================================================
// Composite Specifications
// ============================================================================

type andSpecification[T any] struct {
	specs []Specification[T]
}

func (s andSpecification[T]) IsSatisfiedBy(candidate T) bool {
	for _, spec := range s.specs {
		if !spec.IsSatisfiedBy(candidate) {
			return false
		}
	}
	return true
}

// And is satisfied when every inner specification is.
func And[T any](specs ...Specification[T]) Specification[T] {
	return andSpecification[T]{specs: specs}
}

type notSpecification[T any] struct {
	inner Specification[T]
}

func (s notSpecification[T]) IsSatisfiedBy(candidate T) bool {
	return !s.inner.IsSatisfiedBy(candidate)
}

// Not negates a specification.
func Not[T any](inner Specification[T]) Specification[T] {
	return notSpecification[T]{inner: inner}
}
