package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/simonhull/musikr/internal/fs"
	"github.com/simonhull/musikr/internal/metadata"
	"github.com/simonhull/musikr/internal/tag/interpret"
	"github.com/simonhull/musikr/internal/testutil"
)

func TestDump(t *testing.T) {
	path := testutil.WriteFLAC(t, t.TempDir(), "Abbey Road/01.flac", []string{
		"TITLE=Come Together", "ARTIST=The Beatles; John Lennon", "ALBUM=Abbey Road", "DATE=1969-09-26",
	}, nil)
	md, err := metadata.Extract(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	file, err := fs.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	in := interpret.New(interpret.Interpretation{
		Naming:     interpret.DefaultInterpretation().Naming,
		Separators: interpret.NewSeparators(";"),
	})
	dump(&buf, md, file, in)
	out := buf.String()

	for _, want := range []string{
		"xiph TITLE = Come Together",
		"song: Come Together [org.oxycblt.auxio:a10b-",
		"album: Abbey Road",
		"artist: The Beatles",
		"artist: John Lennon",
		"date: 1969-09-26",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
