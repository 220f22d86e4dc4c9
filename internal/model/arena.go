package model

import (
	"fmt"

	"github.com/simonhull/musikr/internal/graph"
)

// arena maps graph vertices onto the entities built from them. Entities
// resolve their relations through it, so no entity holds a pointer to
// another until it is asked for one.
type arena struct {
	songs   []*Song
	albums  []*Album
	artists []*Artist
	genres  []*Genre
}

func dead(v fmt.Stringer) {
	panic(fmt.Sprintf("dead vertex detected: %v", v))
}

func (a *arena) song(v *graph.SongVertex) *Song {
	i := v.Index()
	if i < 0 || i >= len(a.songs) || a.songs[i] == nil || a.songs[i].vertex != v {
		dead(v)
	}
	return a.songs[i]
}

func (a *arena) album(v *graph.AlbumVertex) *Album {
	i := v.Index()
	if i < 0 || i >= len(a.albums) || a.albums[i] == nil || a.albums[i].vertex != v {
		dead(v)
	}
	return a.albums[i]
}

func (a *arena) artist(v *graph.ArtistVertex) *Artist {
	i := v.Index()
	if i < 0 || i >= len(a.artists) || a.artists[i] == nil || a.artists[i].vertex != v {
		dead(v)
	}
	return a.artists[i]
}

func (a *arena) genre(v *graph.GenreVertex) *Genre {
	i := v.Index()
	if i < 0 || i >= len(a.genres) || a.genres[i] == nil || a.genres[i].vertex != v {
		dead(v)
	}
	return a.genres[i]
}

func resolveAll[V any, E any](vs []V, resolve func(V) E) []E {
	out := make([]E, len(vs))
	for i, v := range vs {
		out[i] = resolve(v)
	}
	return out
}
