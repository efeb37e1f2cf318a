// Package drills runs the analyzer over a file of practice positions and
// summarizes how much the chosen discards leave to draw to.
package drills

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash"
	"gopkg.in/yaml.v3"

	"github.com/valarxu/mahjong-practice/analyzer"
	"github.com/valarxu/mahjong-practice/tilemapping"
)

// Position is one drill. Tiles use the compact notation, e.g.
// "123m456s789p11z259m". An empty Discard means "rank every discard".
type Position struct {
	Name    string `yaml:"name"`
	Hand    string `yaml:"hand"`
	River   string `yaml:"river,omitempty"`
	Exposed string `yaml:"exposed,omitempty"`
	Discard string `yaml:"discard,omitempty"`
}

// File is the on-disk drill format:
//
//	positions:
//	  - name: edge wait
//	    hand: 123m456s789p11z259m
//	    river: 33m
//	    discard: 9m
type File struct {
	Positions []Position `yaml:"positions"`
}

func Load(r io.Reader) (*File, error) {
	f := &File{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil {
		if err == io.EOF {
			return f, nil
		}
		return nil, err
	}
	return f, nil
}

func LoadFile(path string) (*File, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()
	return Load(fd)
}

// Request converts the position to an analyzer request.
func (p Position) Request() analyzer.JSONRequest {
	return analyzer.JSONRequest{
		Hand:    p.Hand,
		River:   p.River,
		Exposed: p.Exposed,
		Discard: p.Discard,
	}
}

// canonical rewrites the position so that tile order and notation style
// don't matter. Unparseable fields are kept verbatim.
func (p Position) canonical() string {
	norm := func(s string) string {
		ks, err := tilemapping.ParseTiles(s)
		if err != nil {
			return strings.TrimSpace(s)
		}
		return tilemapping.FormatTiles(ks)
	}
	return strings.Join([]string{norm(p.Hand), norm(p.River), norm(p.Exposed), norm(p.Discard)}, "|")
}

// ID identifies a position by its tiles; the name plays no part.
func (p Position) ID() uint64 {
	return xxhash.Sum64String(p.canonical())
}

func (p Position) String() string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("%016x", p.ID())
}
