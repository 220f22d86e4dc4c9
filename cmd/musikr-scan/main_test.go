package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/simonhull/musikr/internal/logger"
	"github.com/simonhull/musikr/internal/testutil"
)

func testConfig(t *testing.T) config {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteFLAC(t, dir, "Abbey Road/01.flac", []string{"TITLE=Come Together", "ALBUM=Abbey Road", "ARTIST=The Beatles"}, nil)
	testutil.WriteFLAC(t, dir, "Abbey Road/02.flac", []string{"TITLE=Something", "ALBUM=Abbey Road", "ARTIST=The Beatles"}, nil)
	return config{
		Locations:          []string{dir},
		CoversDir:          filepath.Join(t.TempDir(), "covers"),
		IntelligentSorting: true,
	}
}

func TestRun_Summary(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), testConfig(t), logger.Nop(), &out); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	if !strings.HasPrefix(got, "2 songs, 1 albums, 1 artists, 1 genres, 0 playlists\n") {
		t.Errorf("summary = %q", got)
	}
	if !strings.Contains(got, "The Beatles - Abbey Road (2 songs)") {
		t.Errorf("album line missing from %q", got)
	}
}

func TestRun_Dot(t *testing.T) {
	dot = true
	t.Cleanup(func() { dot = false })

	var out bytes.Buffer
	if err := run(context.Background(), testConfig(t), logger.Nop(), &out); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "digraph") {
		t.Errorf("not a DOT graph: %q", out.String())
	}
}

func TestRun_ImportExport(t *testing.T) {
	cfg := testConfig(t)
	list := filepath.Join(cfg.Locations[0], "road_trip.m3u")
	if err := os.WriteFile(list, []byte("Abbey Road/02.flac\nAbbey Road/01.flac\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	importPath, exportName = list, "road trip"
	t.Cleanup(func() { importPath, exportName = "", "" })

	var out bytes.Buffer
	if err := run(context.Background(), cfg, logger.Nop(), &out); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	if !strings.Contains(got, "#PLAYLIST:road trip\n") {
		t.Errorf("export = %q", got)
	}
	if i, j := strings.Index(got, "02.flac"), strings.Index(got, "01.flac"); i < 0 || j < i {
		t.Errorf("export order wrong: %q", got)
	}
}
