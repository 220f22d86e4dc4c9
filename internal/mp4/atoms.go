// Package mp4 reads iTunes-style metadata from MPEG-4 audio files.
package mp4

import (
	"fmt"

	"github.com/simonhull/musikr/internal/binary"
	"github.com/simonhull/musikr/internal/types"
)

// Atom represents an MP4 atom (box).
type Atom struct {
	Size     uint64 // Total size including header
	Type     string // 4-character type code
	Offset   int64  // Position in file
	Extended bool   // Whether this uses 64-bit extended size
}

func (a *Atom) headerSize() int64 {
	if a.Extended {
		return 16
	}
	return 8
}

// DataSize returns the size of the atom's payload.
func (a *Atom) DataSize() int64 {
	if int64(a.Size) < a.headerSize() {
		return 0
	}
	return int64(a.Size) - a.headerSize()
}

// DataOffset returns the file offset where the payload starts.
func (a *Atom) DataOffset() int64 {
	return a.Offset + a.headerSize()
}

// End returns the offset just past the atom.
func (a *Atom) End() int64 {
	return a.Offset + int64(a.Size)
}

// readAtomHeader reads an atom header at the given offset.
func readAtomHeader(sr *binary.SafeReader, offset int64) (*Atom, error) {
	size32, err := binary.Read[uint32](sr, offset, "atom size")
	if err != nil {
		return nil, err
	}
	typeBytes, err := sr.Bytes(offset+4, 4, "atom type")
	if err != nil {
		return nil, err
	}

	atom := &Atom{
		Type:   string(typeBytes),
		Offset: offset,
		Size:   uint64(size32),
	}

	switch size32 {
	case 1:
		size64, err := binary.Read[uint64](sr, offset+8, "extended atom size")
		if err != nil {
			return nil, err
		}
		atom.Size = size64
		atom.Extended = true
	case 0:
		// Extends to the end of the file.
		atom.Size = uint64(sr.Size() - offset)
	}

	if atom.Size < uint64(atom.headerSize()) {
		return nil, &types.CorruptedFileError{
			Path:   sr.Path(),
			Offset: offset,
			Reason: fmt.Sprintf("invalid atom size %d", atom.Size),
		}
	}
	return atom, nil
}

// children returns the direct child atoms between start and end.
func children(sr *binary.SafeReader, start, end int64) ([]*Atom, error) {
	var out []*Atom
	for offset := start; offset+8 <= end; {
		atom, err := readAtomHeader(sr, offset)
		if err != nil {
			return out, err
		}
		if atom.End() > end {
			return out, &types.CorruptedFileError{
				Path:   sr.Path(),
				Offset: offset,
				Reason: fmt.Sprintf("atom %q overruns its parent", atom.Type),
			}
		}
		out = append(out, atom)
		offset = atom.End()
	}
	return out, nil
}

// findAtom searches for the first child atom of the given type.
func findAtom(sr *binary.SafeReader, start, end int64, atomType string) (*Atom, error) {
	kids, err := children(sr, start, end)
	for _, a := range kids {
		if a.Type == atomType {
			return a, nil
		}
	}
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("atom '%s' not found", atomType)
}

// findPath descends through nested atoms. "meta" payloads start with four
// bytes of version and flags, which are skipped.
func findPath(sr *binary.SafeReader, start, end int64, path ...string) (*Atom, error) {
	var atom *Atom
	for _, name := range path {
		a, err := findAtom(sr, start, end, name)
		if err != nil {
			return nil, err
		}
		atom = a
		start, end = a.DataOffset(), a.End()
		if a.Type == "meta" {
			start += 4
		}
	}
	return atom, nil
}
