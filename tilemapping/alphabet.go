package tilemapping

// A tile kind is internally represented by a byte from 0 to 33. Kinds are
// laid out suit by suit:
//   - 0..8   characters 1-9 (suit A)
//   - 9..17  bamboo 1-9 (suit B)
//   - 18..26 dots 1-9 (suit C)
//   - 27..30 east, south, west, north
//   - 31..33 red, green, white dragon
//
// Counting order is also display order, so sorting kinds sorts a hand the
// way players expect to see it.
const (
	// NumKinds is the number of distinct tile faces (flowers excluded).
	NumKinds = 34
	// CopiesPerKind is how many physical copies of each face exist.
	CopiesPerKind = 4
	// SuitSize is the number of ranks in a numeral suit.
	SuitSize = 9

	firstWind   TileKind = 27
	firstDragon TileKind = 31
)

// TileKind identifies one of the 34 tile faces.
type TileKind uint8

// Suit is the family a tile kind belongs to.
type Suit uint8

const (
	SuitCharacters Suit = iota
	SuitBamboo
	SuitDots
	SuitWinds
	SuitDragons
)

func (s Suit) String() string {
	switch s {
	case SuitCharacters:
		return "characters"
	case SuitBamboo:
		return "bamboo"
	case SuitDots:
		return "dots"
	case SuitWinds:
		return "winds"
	case SuitDragons:
		return "dragons"
	}
	return "unknown"
}

// IsNumeral returns true for the three ranked suits.
func (s Suit) IsNumeral() bool {
	return s <= SuitDots
}

// Valid returns true if k names an existing tile face.
func (k TileKind) Valid() bool {
	return k < NumKinds
}

// Suit returns the suit of this kind.
func (k TileKind) Suit() Suit {
	switch {
	case k < firstWind:
		return Suit(k / SuitSize)
	case k < firstDragon:
		return SuitWinds
	}
	return SuitDragons
}

// Rank is 1-based inside the suit: 1..9 for numerals, 1..4 for winds and
// 1..3 for dragons.
func (k TileKind) Rank() int {
	switch {
	case k < firstWind:
		return int(k%SuitSize) + 1
	case k < firstDragon:
		return int(k-firstWind) + 1
	}
	return int(k-firstDragon) + 1
}

// SuitBase returns the first kind of k's suit.
func (k TileKind) SuitBase() TileKind {
	switch k.Suit() {
	case SuitWinds:
		return firstWind
	case SuitDragons:
		return firstDragon
	}
	return k - k%SuitSize
}

func (k TileKind) IsHonor() bool {
	return k >= firstWind
}

func (k TileKind) IsNumeral() bool {
	return k < firstWind
}

// IsTerminal returns true for the 1 and 9 of a numeral suit.
func (k TileKind) IsTerminal() bool {
	return k.IsNumeral() && (k.Rank() == 1 || k.Rank() == SuitSize)
}

// SequenceFrom returns true if k, k+1 and k+2 form a legal run, i.e. k is a
// numeral of rank 1 through 7.
func SequenceFrom(k TileKind) bool {
	return k.IsNumeral() && k%SuitSize <= SuitSize-3
}

// SuitKinds returns all kinds of suit s in rank order.
func SuitKinds(s Suit) []TileKind {
	var base TileKind
	n := SuitSize
	switch s {
	case SuitWinds:
		base, n = firstWind, 4
	case SuitDragons:
		base, n = firstDragon, 3
	default:
		base = TileKind(s) * SuitSize
	}
	ks := make([]TileKind, n)
	for i := range ks {
		ks[i] = base + TileKind(i)
	}
	return ks
}
