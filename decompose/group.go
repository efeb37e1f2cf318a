package decompose

import (
	"fmt"
	"strings"

	"github.com/valarxu/mahjong-practice/tilemapping"
)

// GroupType tags the shape of a Group.
type GroupType uint8

const (
	Triplet GroupType = iota
	Sequence
	Pair
	// TwoSided is two adjacent ranks waiting on either outer neighbor.
	TwoSided
	// Closed is two ranks one apart waiting on the middle.
	Closed
	// Edge is 1-2 or 8-9, waiting on the 3 or the 7.
	Edge
	Single
)

func (t GroupType) String() string {
	switch t {
	case Triplet:
		return "triplet"
	case Sequence:
		return "sequence"
	case Pair:
		return "pair"
	case TwoSided:
		return "two-sided"
	case Closed:
		return "closed"
	case Edge:
		return "edge"
	case Single:
		return "single"
	}
	return "unknown"
}

// IsMeld returns true for complete groups.
func (t GroupType) IsMeld() bool {
	return t == Triplet || t == Sequence
}

// IsProtoMeld returns true for two-tile partial sequences.
func (t GroupType) IsProtoMeld() bool {
	return t == TwoSided || t == Closed || t == Edge
}

// A Group owns its tiles; no tile instance belongs to two groups of the same
// Decomposition.
type Group struct {
	Type  GroupType
	Tiles []tilemapping.TileKind
}

func newGroup(t GroupType, tiles ...tilemapping.TileKind) Group {
	return Group{Type: t, Tiles: tiles}
}

// Contains returns true if k is one of the group's tiles.
func (g Group) Contains(k tilemapping.TileKind) bool {
	for _, t := range g.Tiles {
		if t == k {
			return true
		}
	}
	return false
}

func (g Group) String() string {
	return fmt.Sprintf("%v(%s)", g.Type, tilemapping.FormatTiles(g.Tiles))
}

// Decomposition is an ordered partition of a hand into groups. Used counts
// the tiles claimed by Groups and Total the tiles supplied; once the
// decomposition is complete the two are equal.
type Decomposition struct {
	Groups []Group
	Used   int
	Total  int
}

func (d *Decomposition) add(counts *tilemapping.Hand, g Group) {
	for _, k := range g.Tiles {
		counts[k]--
	}
	d.Groups = append(d.Groups, g)
	d.Used += len(g.Tiles)
}

// Count returns the number of groups of any of the given types.
func (d *Decomposition) Count(types ...GroupType) int {
	n := 0
	for _, g := range d.Groups {
		for _, t := range types {
			if g.Type == t {
				n++
				break
			}
		}
	}
	return n
}

// Melds counts triplets and sequences.
func (d *Decomposition) Melds() int {
	return d.Count(Triplet, Sequence)
}

func (d *Decomposition) Pairs() int {
	return d.Count(Pair)
}

// ProtoMelds counts two-sided, closed and edge partial sequences.
func (d *Decomposition) ProtoMelds() int {
	return d.Count(TwoSided, Closed, Edge)
}

func (d *Decomposition) Singles() int {
	return d.Count(Single)
}

// GroupsContaining returns the groups holding k. With no types given every
// group is considered; otherwise only groups of the listed types.
func (d *Decomposition) GroupsContaining(k tilemapping.TileKind, types ...GroupType) []Group {
	var gs []Group
	for _, g := range d.Groups {
		if !g.Contains(k) {
			continue
		}
		if len(types) == 0 {
			gs = append(gs, g)
			continue
		}
		for _, t := range types {
			if g.Type == t {
				gs = append(gs, g)
				break
			}
		}
	}
	return gs
}

// Clone returns a deep copy.
func (d *Decomposition) Clone() Decomposition {
	c := Decomposition{Used: d.Used, Total: d.Total}
	if d.Groups != nil {
		c.Groups = make([]Group, len(d.Groups))
		for i, g := range d.Groups {
			tiles := make([]tilemapping.TileKind, len(g.Tiles))
			copy(tiles, g.Tiles)
			c.Groups[i] = Group{Type: g.Type, Tiles: tiles}
		}
	}
	return c
}

func (d Decomposition) String() string {
	parts := make([]string, len(d.Groups))
	for i, g := range d.Groups {
		parts[i] = g.String()
	}
	return fmt.Sprintf("%s [%d/%d]", strings.Join(parts, " "), d.Used, d.Total)
}
