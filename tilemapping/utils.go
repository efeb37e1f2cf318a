package tilemapping

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// ErrUnknownTile is returned when a string can't be turned into tile kinds.
var ErrUnknownTile = errors.New("unknown tile")

// Suit letters used by the compact notation. Honors use z: 1-4 are the
// winds in east, south, west, north order and 5-7 the red, green and white
// dragons.
const suitLetters = "mspz"

const (
	glyphNumeralBase = 0x1F007
	glyphHonorBase   = 0x1F000
)

// String returns the compact notation for a single kind, e.g. "3m" or "5z".
func (k TileKind) String() string {
	if !k.Valid() {
		return "?"
	}
	return fmt.Sprintf("%d%c", k.Rank()+k.honorOffset(), suitLetters[k.notationSuit()])
}

// Glyph returns the Unicode mahjong tile for k.
func (k TileKind) Glyph() rune {
	switch {
	case !k.Valid():
		return '?'
	case k.IsNumeral():
		return rune(glyphNumeralBase + int(k))
	}
	return rune(glyphHonorBase + int(k-firstWind))
}

func (k TileKind) notationSuit() int {
	if k.IsHonor() {
		return 3
	}
	return int(k.Suit())
}

// dragons continue the z numbering after the four winds.
func (k TileKind) honorOffset() int {
	if k.Suit() == SuitDragons {
		return 4
	}
	return 0
}

func fromGlyph(r rune) (TileKind, bool) {
	switch {
	case r >= glyphNumeralBase && r < glyphNumeralBase+rune(firstWind):
		return TileKind(r - glyphNumeralBase), true
	case r >= glyphHonorBase && r < glyphNumeralBase:
		return firstWind + TileKind(r-glyphHonorBase), true
	}
	return 0, false
}

func kindFor(digit rune, suit int) (TileKind, error) {
	n := int(digit - '0')
	if suit == 3 {
		if n < 1 || n > 7 {
			return 0, fmt.Errorf("%w: %c%c", ErrUnknownTile, digit, suitLetters[suit])
		}
		return firstWind + TileKind(n-1), nil
	}
	if n < 1 || n > SuitSize {
		return 0, fmt.Errorf("%w: %c%c", ErrUnknownTile, digit, suitLetters[suit])
	}
	return TileKind(suit*SuitSize + n - 1), nil
}

// ParseTiles converts a tile string into kinds, keeping input order. Both
// the compact notation ("123m 55z") and tile glyphs are understood;
// full-width characters are narrowed first.
func ParseTiles(s string) ([]TileKind, error) {
	s = width.Narrow.String(s)
	var (
		kinds   []TileKind
		pending []rune
	)
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			pending = append(pending, r)
		case strings.ContainsRune(suitLetters, unicode.ToLower(r)):
			if len(pending) == 0 {
				return nil, fmt.Errorf("%w: suit %c with no ranks", ErrUnknownTile, r)
			}
			suit := strings.IndexRune(suitLetters, unicode.ToLower(r))
			for _, d := range pending {
				k, err := kindFor(d, suit)
				if err != nil {
					return nil, err
				}
				kinds = append(kinds, k)
			}
			pending = pending[:0]
		case unicode.IsSpace(r) || r == ',':
			// separators
		default:
			k, ok := fromGlyph(r)
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownTile, r)
			}
			kinds = append(kinds, k)
		}
	}
	if len(pending) > 0 {
		return nil, fmt.Errorf("%w: ranks %s have no suit", ErrUnknownTile, string(pending))
	}
	return kinds, nil
}

// ParseTile parses exactly one tile.
func ParseTile(s string) (TileKind, error) {
	kinds, err := ParseTiles(s)
	if err != nil {
		return 0, err
	}
	if len(kinds) != 1 {
		return 0, fmt.Errorf("%w: expected one tile, got %d", ErrUnknownTile, len(kinds))
	}
	return kinds[0], nil
}

// SortKinds sorts in place.
func SortKinds(ks []TileKind) {
	sort.Slice(ks, func(i, j int) bool { return ks[i] < ks[j] })
}

// FormatTiles renders kinds in sorted compact notation, e.g. "123m456s11z".
func FormatTiles(ks []TileKind) string {
	sorted := make([]TileKind, len(ks))
	copy(sorted, ks)
	SortKinds(sorted)

	var sb strings.Builder
	for i, k := range sorted {
		sb.WriteByte(byte('0' + k.Rank() + k.honorOffset()))
		if i == len(sorted)-1 || sorted[i+1].notationSuit() != k.notationSuit() {
			sb.WriteByte(suitLetters[k.notationSuit()])
		}
	}
	return sb.String()
}

// GlyphString renders kinds as tile glyphs in the given order.
func GlyphString(ks []TileKind) string {
	runes := make([]rune, len(ks))
	for i, k := range ks {
		runes[i] = k.Glyph()
	}
	return string(runes)
}
