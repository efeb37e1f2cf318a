package tilemapping

// Supply holds, per kind, how many copies are still unseen from the point of
// view of one player.
type Supply [NumKinds]int

// RemainingSupply returns CopiesPerKind minus every visible copy: the
// player's own hand plus each list of visible tiles (discard pile, exposed
// melds). Counts never go below zero. Kinds outside the alphabet are
// ignored.
func RemainingSupply(h Hand, visible ...[]TileKind) Supply {
	var s Supply
	for k := range s {
		s[k] = CopiesPerKind - int(h[k])
	}
	for _, tiles := range visible {
		for _, k := range tiles {
			if k.Valid() {
				s[k]--
			}
		}
	}
	for k := range s {
		if s[k] < 0 {
			s[k] = 0
		}
	}
	return s
}

// Total returns the number of unseen tiles.
func (s Supply) Total() int {
	n := 0
	for _, ct := range s {
		n += ct
	}
	return n
}

// VisibleCounts tallies a list of visible tiles and rejects lists that show
// more than CopiesPerKind of a kind.
func VisibleCounts(tiles []TileKind) (Hand, error) {
	h, err := HandFromTiles(tiles)
	if err != nil {
		return h, err
	}
	return h, h.Validate()
}
