package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/language"

	"github.com/justestif/go-lyrics-catalog/internal/songs"
)

func titles(list []songs.Song) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.Title
	}
	return out
}

func sampleSongs() []songs.Song {
	return []songs.Song{
		{ID: "1", Title: "Banana", Artist: "Zed", Album: "Fruit", Year: 1999, Genre: "Pop"},
		{ID: "2", Title: "apple", Artist: "Ábel", Album: "Orchard", Year: 2005, Genre: "Rock"},
		{ID: "3", Title: "Éclair", Artist: "Bakery Boys", Album: "Dessert", Year: 1999, Genre: "Jazz"},
		{ID: "4", Title: "cherry", Artist: "Mo", Album: "Fruit Salad", Year: 2010, Genre: "Pop"},
		{ID: "5", Title: "Dune", Artist: "Sandy", Album: "Desert", Year: 1999, Genre: "Rock"},
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name   string
		search string
		genre  string
		want   []string
	}{
		{name: "no filters", want: []string{"Banana", "apple", "Éclair", "cherry", "Dune"}},
		{name: "title match ignores case", search: "APPLE", want: []string{"apple"}},
		{name: "artist match", search: "bakery", want: []string{"Éclair"}},
		{name: "album match", search: "fruit", want: []string{"Banana", "cherry"}},
		{name: "unicode case folding", search: "ÉCLAIR", want: []string{"Éclair"}},
		{name: "genre only", genre: "Rock", want: []string{"apple", "Dune"}},
		{name: "genre is exact", genre: "rock", want: []string{}},
		{name: "search and genre", search: "fruit", genre: "Pop", want: []string{"Banana", "cherry"}},
		{name: "no match", search: "zzz", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := titles(Filter(sampleSongs(), tt.search, tt.genre))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Filter() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilter_PredicatesCommute(t *testing.T) {
	list := sampleSongs()
	searches := []string{"", "fruit", "a", "e", "zzz"}
	genres := []string{"", "Pop", "Rock", "Jazz", "Metal"}

	for _, search := range searches {
		for _, genre := range genres {
			searchFirst := Filter(Filter(list, search, ""), "", genre)
			genreFirst := Filter(Filter(list, "", genre), search, "")
			combined := Filter(list, search, genre)

			if diff := cmp.Diff(searchFirst, genreFirst); diff != "" {
				t.Errorf("search=%q genre=%q: order matters (-search first +genre first):\n%s", search, genre, diff)
			}
			if diff := cmp.Diff(combined, genreFirst); diff != "" {
				t.Errorf("search=%q genre=%q: combined differs (-combined +composed):\n%s", search, genre, diff)
			}
		}
	}
}

func TestSort(t *testing.T) {
	tests := []struct {
		name string
		key  SortKey
		want []string
	}{
		{name: "title collates case-insensitively", key: SortByTitle, want: []string{"apple", "Banana", "cherry", "Dune", "Éclair"}},
		{name: "artist collates accents", key: SortByArtist, want: []string{"apple", "Éclair", "cherry", "Dune", "Banana"}},
		{name: "year newest first and stable", key: SortByYear, want: []string{"cherry", "apple", "Banana", "Éclair", "Dune"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := sampleSongs()
			Sort(list, tt.key, language.English)
			if diff := cmp.Diff(tt.want, titles(list)); diff != "" {
				t.Errorf("Sort(%s) mismatch (-want +got):\n%s", tt.key, diff)
			}
		})
	}
}

func TestSort_TitleStableForEqualKeys(t *testing.T) {
	list := []songs.Song{
		{ID: "a", Title: "Same"},
		{ID: "b", Title: "Other"},
		{ID: "c", Title: "Same"},
		{ID: "d", Title: "same"},
	}
	Sort(list, SortByTitle, language.English)

	var order []string
	for _, s := range list {
		order = append(order, s.ID)
	}
	// "same" differs from "Same" only at the tertiary level and sorts first.
	want := []string{"b", "d", "a", "c"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("Sort() mismatch (-want +got):\n%s", diff)
	}
}

func TestDerive_DoesNotMutateInput(t *testing.T) {
	list := sampleSongs()
	before := sampleSongs()

	got := Derive(list, Query{Search: "a", Sort: SortByYear}, language.English)
	if len(got) == 0 {
		t.Fatal("Derive() returned no songs")
	}
	if diff := cmp.Diff(before, list); diff != "" {
		t.Errorf("Derive() mutated its input (-before +after):\n%s", diff)
	}
}

func TestParseSortKey(t *testing.T) {
	tests := map[string]SortKey{
		"":        SortByTitle,
		"title":   SortByTitle,
		"Artist":  SortByArtist,
		" year ":  SortByYear,
		"unknown": SortByTitle,
	}
	for in, want := range tests {
		if got := ParseSortKey(in); got != want {
			t.Errorf("ParseSortKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGenres(t *testing.T) {
	got := Genres(sampleSongs())
	want := []string{"Pop", "Rock", "Jazz"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Genres() mismatch (-want +got):\n%s", diff)
	}
}
