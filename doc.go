// Package musikr builds a music library from the audio files in a set of
// directories.
//
// # Quick Start
//
//	cache, err := musikr.OpenCache("musikr.db")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer cache.Close()
//
//	covers, err := musikr.StoredCovers("covers", musikr.NoTranscoding)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	m := musikr.New(musikr.Storage{
//		Cache:     cache,
//		Covers:    covers,
//		Playlists: musikr.MemoryPlaylists(),
//	}, musikr.DefaultInterpretation())
//
//	res, err := m.Run(ctx, []string{"/music"}, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, album := range res.Library.Albums() {
//		fmt.Println(album.Name.Resolve())
//	}
//
// # Pipeline
//
// Run explores the locations, reads every audio file that is not already
// cached, and then evaluates the songs into a graph of albums, artists and
// genres:
//
//	[Explore]  - walk locations, consult the cache
//	[Extract]  - read tags and properties, store covers
//	[Evaluate] - interpret tags, link and merge entities
//
// Unreadable files are logged and skipped. Cancelling the context aborts
// the run without producing a library.
//
// # Identity
//
// Albums, artists and genres with the same name, ignoring case, are merged
// into one. MusicBrainz IDs take precedence over names: entities with
// different IDs stay apart even when their names match. WithMBIDPolicy
// controls what happens when only some of them carry an ID.
//
// # Playlists
//
// A Library is immutable. Playlist edits on it persist to the playlist
// store and return a new Library:
//
//	lib, err := res.Library.CreatePlaylist(ctx, "Favorites", songs)
package musikr
