// trade/side.go
package trade

// Side is the direction of an open position. None means flat.
type Side int8

const (
	None Side = iota
	Long
	Short
)

// DirectionOf returns the side a fill pushes a position toward:
// a buy goes long, a sell goes short.
func DirectionOf(isBuyer bool) Side {
	if isBuyer {
		return Long
	}
	return Short
}

// Opposite returns the side that offsets s. None has no opposite.
func (s Side) Opposite() Side {
	switch s {
	case Long:
		return Short
	case Short:
		return Long
	}
	return None
}

func (s Side) String() string {
	switch s {
	case Long:
		return "long"
	case Short:
		return "short"
	}
	return "none"
}
