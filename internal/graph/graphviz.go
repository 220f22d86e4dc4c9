package graph

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

const maxLabel = 50

// RenderGraphviz writes g in DOT format.
func (g *MusicGraph) RenderGraphviz(w io.Writer) error {
	bw := bufio.NewWriter(w)
	p := func(format string, args ...any) { fmt.Fprintf(bw, format+"\n", args...) }

	p("digraph MusicGraph {")
	p("  rankdir=LR;")
	p("  node [shape=rectangle];")
	p("")

	p("  // Songs")
	p("  node [style=filled,fillcolor=lightblue];")
	for i, s := range g.Songs {
		p(`  song_%d [label="%s\nUID: %s"];`, i, escape(orUnknown(s.Pre.RawName, "Unknown Song")), s.Pre.V401UID)
	}
	p("")

	p("  // Albums")
	p("  node [style=filled,fillcolor=lightgreen];")
	for i, a := range g.Albums {
		p(`  album_%d [label="%s%s"];`, i, escape(orUnknown(a.Pre.RawName, "Unknown Album")), mbidLabel(a.Pre.MusicBrainzID))
	}
	p("")

	p("  // Artists")
	p("  node [style=filled,fillcolor=lightyellow];")
	for i, a := range g.Artists {
		p(`  artist_%d [label="%s%s"];`, i, escape(orUnknown(a.Pre.RawName, "Unknown Artist")), mbidLabel(a.Pre.MusicBrainzID))
	}
	p("")

	p("  // Genres")
	p("  node [style=filled,fillcolor=lightcoral];")
	for i, gv := range g.Genres {
		p(`  genre_%d [label="%s"];`, i, escape(orUnknown(gv.Pre.RawName, "Unknown Genre")))
	}
	p("")

	p("  // Playlists")
	p("  node [style=filled,fillcolor=lavender];")
	for i, pl := range g.Playlists {
		p(`  playlist_%d [label="%s"];`, i, escape(orUnknown(pl.Pre.Name, "Unknown Playlist")))
	}
	p("")

	p("  // Song -> Album edges")
	for i, s := range g.Songs {
		if g.liveAlbum(s.album) {
			p("  song_%d -> album_%d [color=blue];", i, s.album.index)
		}
	}
	p("")

	p("  // Song -> Artist edges")
	for i, s := range g.Songs {
		for _, a := range s.artists {
			if g.liveArtist(a) {
				p("  song_%d -> artist_%d [color=green];", i, a.index)
			}
		}
	}
	p("")

	p("  // Song -> Genre edges")
	for i, s := range g.Songs {
		for _, gv := range s.genres {
			if g.liveGenre(gv) {
				p("  song_%d -> genre_%d [color=red];", i, gv.index)
			}
		}
	}
	p("")

	p("  // Album -> Artist edges")
	for i, al := range g.Albums {
		for _, a := range al.artists {
			if g.liveArtist(a) {
				p("  album_%d -> artist_%d [color=purple];", i, a.index)
			}
		}
	}
	p("")

	p("  // Playlist -> Song edges")
	for i, pl := range g.Playlists {
		for _, s := range pl.songs {
			if s != nil && s.index >= 0 && s.index < len(g.Songs) && g.Songs[s.index] == s {
				p("  playlist_%d -> song_%d [color=orange];", i, s.index)
			}
		}
	}
	p("}")
	return bw.Flush()
}

func orUnknown(s, unknown string) string {
	if s == "" {
		return unknown
	}
	return s
}

func mbidLabel(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return `\nMBID: ` + id.String()
}

var labelEscaper = strings.NewReplacer(`"`, `\"`, "\n", `\n`, "\r", `\r`)

// escape quotes text for a DOT label and truncates it to maxLabel runes.
func escape(text string) string {
	r := []rune(labelEscaper.Replace(text))
	if len(r) > maxLabel {
		r = r[:maxLabel]
	}
	return string(r)
}
