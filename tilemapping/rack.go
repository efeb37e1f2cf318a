package tilemapping

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidHand is wrapped by every hand precondition failure.
	ErrInvalidHand = errors.New("invalid hand")
	// ErrTileNotInHand is returned when removing a tile the hand doesn't hold.
	ErrTileNotInHand = errors.New("tile not in hand")
)

// InvalidHandError reports the first kind whose count is out of range.
type InvalidHandError struct {
	Kind  TileKind
	Count int
}

func (e *InvalidHandError) Error() string {
	return fmt.Sprintf("invalid hand: %d copies of %v (max %d)", e.Count, e.Kind, CopiesPerKind)
}

func (e *InvalidHandError) Unwrap() error {
	return ErrInvalidHand
}

// Hand is a machine-friendly multiset of tiles: index i holds the number of
// copies of TileKind(i). It is a value type, so assigning or passing a Hand
// copies it.
type Hand [NumKinds]uint8

// HandFromTiles builds a hand out of a list of kinds. It does not enforce
// the per-kind limit; call Validate for that.
func HandFromTiles(ks []TileKind) (Hand, error) {
	var h Hand
	for _, k := range ks {
		if !k.Valid() {
			return h, fmt.Errorf("%w: kind %d", ErrUnknownTile, k)
		}
		h[k]++
	}
	return h, nil
}

// HandFromString parses the notation and validates the result.
func HandFromString(s string) (Hand, error) {
	ks, err := ParseTiles(s)
	if err != nil {
		return Hand{}, err
	}
	h, err := HandFromTiles(ks)
	if err != nil {
		return h, err
	}
	return h, h.Validate()
}

// Validate checks that no kind is held more than CopiesPerKind times.
func (h *Hand) Validate() error {
	for k, ct := range h {
		if ct > CopiesPerKind {
			return &InvalidHandError{Kind: TileKind(k), Count: int(ct)}
		}
	}
	return nil
}

func (h *Hand) Add(k TileKind) {
	h[k]++
}

// Take removes one copy of k.
func (h *Hand) Take(k TileKind) error {
	if !k.Valid() || h[k] == 0 {
		return fmt.Errorf("%w: %v", ErrTileNotInHand, k)
	}
	h[k]--
	return nil
}

func (h *Hand) Has(k TileKind) bool {
	return k.Valid() && h[k] > 0
}

func (h *Hand) Count(k TileKind) int {
	return int(h[k])
}

// NumTiles returns the number of tiles in this hand.
func (h *Hand) NumTiles() int {
	n := 0
	for _, ct := range h {
		n += int(ct)
	}
	return n
}

func (h *Hand) Empty() bool {
	return h.NumTiles() == 0
}

// Tiles returns one entry per tile, sorted.
func (h *Hand) Tiles() []TileKind {
	ks := make([]TileKind, 0, h.NumTiles())
	for k, ct := range h {
		for j := 0; j < int(ct); j++ {
			ks = append(ks, TileKind(k))
		}
	}
	return ks
}

// Kinds returns the distinct kinds held, sorted.
func (h *Hand) Kinds() []TileKind {
	var ks []TileKind
	for k, ct := range h {
		if ct > 0 {
			ks = append(ks, TileKind(k))
		}
	}
	return ks
}

// String returns a user-visible version of this hand.
func (h Hand) String() string {
	return FormatTiles(h.Tiles())
}

// CanDraw returns true when a hand of n tiles is waiting for a draw (3n+1).
func CanDraw(n int) bool {
	return n%3 == 1
}

// CanDiscard returns true when a hand of n tiles must discard (3n+2).
func CanDiscard(n int) bool {
	return n%3 == 2
}

// ConcealedKongs lists the kinds held four times.
func ConcealedKongs(h Hand) []TileKind {
	var ks []TileKind
	for k, ct := range h {
		if ct == CopiesPerKind {
			ks = append(ks, TileKind(k))
		}
	}
	return ks
}
