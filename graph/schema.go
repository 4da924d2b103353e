package graph

// StateSchema defines the initial state and how a node's output is merged
// into the current state.
type StateSchema[S any] interface {
	// Init returns the initial state.
	Init() S

	// Update merges the new state into the current state.
	Update(current, new S) (S, error)
}

// Reducer merges one part of the state.
type Reducer[S any] func(current, new S) (S, error)

// StructSchema is a StateSchema built from an initializer and a chain of
// reducers. Without reducers the new state overwrites the current one.
type StructSchema[S any] struct {
	InitFunc func() S
	Reducers []Reducer[S]
}

// NewStructSchema creates a StructSchema.
func NewStructSchema[S any](init func() S, reducers ...Reducer[S]) *StructSchema[S] {
	return &StructSchema[S]{InitFunc: init, Reducers: reducers}
}

// Init returns the initial state.
func (s *StructSchema[S]) Init() S {
	if s.InitFunc == nil {
		var zero S
		return zero
	}
	return s.InitFunc()
}

// Update applies each reducer in turn, starting from new.
func (s *StructSchema[S]) Update(current, new S) (S, error) {
	out := new
	for _, r := range s.Reducers {
		var err error
		out, err = r(current, out)
		if err != nil {
			return current, err
		}
	}
	return out, nil
}
