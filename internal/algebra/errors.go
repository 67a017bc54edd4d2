package algebra

import "errors"

var (
	// ErrIndeterminate indicates a sign could not be decided, exactly or
	// within the numeric fallback's tolerance.
	ErrIndeterminate = errors.New("algebra: sign indeterminate")

	// ErrNotReal indicates a real-only operation on a non-real element.
	ErrNotReal = errors.New("algebra: element is not real")

	// ErrNotInvertible indicates division by an element that vanishes.
	ErrNotInvertible = errors.New("algebra: element not invertible")

	// ErrDimension indicates a matrix of unsupported shape.
	ErrDimension = errors.New("algebra: unsupported matrix dimension")

	// ErrRootLocation indicates the numeric root finder failed.
	ErrRootLocation = errors.New("algebra: cannot locate polynomial roots")

	// ErrNoSolution indicates a polynomial system without common roots.
	ErrNoSolution = errors.New("algebra: system has no solution")

	// ErrInfiniteSolutions indicates a positive-dimensional solution set.
	ErrInfiniteSolutions = errors.New("algebra: system has infinitely many solutions")

	// ErrDegenerate indicates elimination could not separate an irrational
	// root where the shape polynomial degenerates.
	ErrDegenerate = errors.New("algebra: degenerate elimination")

	// ErrForeignVariable indicates a polynomial uses a variable other than
	// the two being solved for.
	ErrForeignVariable = errors.New("algebra: unexpected variable in system")
)
