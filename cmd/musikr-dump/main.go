// Command musikr-dump prints everything musikr reads from audio files: the
// raw container tags, the parsed tag record and the interpreted song.
// Useful to confirm what a file actually contains when it is grouped in an
// unexpected way.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/simonhull/musikr/internal/fs"
	"github.com/simonhull/musikr/internal/metadata"
	"github.com/simonhull/musikr/internal/tag/interpret"
	"github.com/simonhull/musikr/internal/tag/parse"
	"github.com/simonhull/musikr/internal/types"
)

var separators string

func init() {
	flag.StringVar(&separators, "separators", "", "characters that split multi-value tags")
}

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: musikr-dump [-separators ;/] <files...>")
		os.Exit(2)
	}

	results, err := metadata.ExtractMany(context.Background(), flag.Args()...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	in := interpret.New(interpret.Interpretation{
		Naming:     interpret.DefaultInterpretation().Naming,
		Separators: interpret.NewSeparators(separators),
	})
	for _, md := range results {
		file, err := fs.Stat(md.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		dump(os.Stdout, md, file, in)
	}
}

func dump(w io.Writer, md *types.Metadata, file fs.File, in *interpret.Interpreter) {
	fmt.Fprintf(w, "%s\n", md.Path)
	fmt.Fprintf(w, "  format: %s, %d bytes\n", md.Format, md.Size)
	fmt.Fprintf(w, "  properties: %d ms, %d kbps, %d Hz\n",
		md.Properties.DurationMs, md.Properties.BitrateKbps, md.Properties.SampleRateHz)
	dumpTags(w, "id3v2", md.ID3v2)
	dumpTags(w, "xiph", md.Xiph)
	dumpTags(w, "mp4", md.MP4)
	if md.Cover != nil {
		fmt.Fprintf(w, "  cover: type %d, %s, %d bytes\n", md.Cover.Type, md.Cover.MIMEType, len(md.Cover.Data))
	}
	for _, warn := range md.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warn)
	}

	tags := parse.Parse(md)
	song := in.Interpret(interpret.RawSong{File: file, Properties: md.Properties, Tags: tags})
	fmt.Fprintf(w, "  song: %s [%s]\n", song.Name.Resolve(), song.UID())
	fmt.Fprintf(w, "  album: %s [%s]\n", song.Album.Name.Resolve(), song.Album.UID())
	for _, a := range song.Artists {
		fmt.Fprintf(w, "  artist: %s [%s]\n", a.Name.Resolve(), a.UID())
	}
	for _, g := range song.Genres {
		fmt.Fprintf(w, "  genre: %s\n", g.Name.Resolve())
	}
	if song.Date != nil {
		fmt.Fprintf(w, "  date: %s\n", song.Date)
	}
}

func dumpTags(w io.Writer, family string, tags map[string][]string) {
	for _, key := range slices.Sorted(maps.Keys(tags)) {
		fmt.Fprintf(w, "  %s %s = %s\n", family, key, strings.Join(tags[key], " | "))
	}
}
