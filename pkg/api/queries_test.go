package api

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestListSeriesOptions(t *testing.T) {
	cases := []struct {
		options  ListSeriesOptions
		expected map[string]string
	}{
		{options: ListSeriesOptions{}, expected: map[string]string{}},
		{options: ListSeriesOptions{Limit: 0, Offset: 0, Query: ""}, expected: map[string]string{}},
		{
			options: ListSeriesOptions{
				Query: "frieren",
				Limit: 20,
				Chips: map[string]string{"year": "2023", "genre@": "22"},
			},
			expected: map[string]string{
				"query": "frieren",
				"limit": "20",
				"chips": "genre@=22;year=2023",
			},
		},
		{
			options:  ListSeriesOptions{Offset: 40, MyAnimeListId: 52991},
			expected: map[string]string{"offset": "40", "myAnimeListId": "52991"},
		},
	}

	for _, test := range cases {
		if diff := cmp.Diff(test.expected, test.options.Values()); diff != "" {
			t.Fatal(diff)
		}
	}
}

func TestListEpisodesOptions(t *testing.T) {
	got := ListEpisodesOptions{SeriesId: 7, Limit: 5}.Values()
	if diff := cmp.Diff(map[string]string{"seriesId": "7", "limit": "5"}, got); diff != "" {
		t.Fatal(diff)
	}
}

func TestPaths(t *testing.T) {
	cases := map[string]string{
		SeriesPath(1):           "/series/1",
		EpisodePath(2):          "/episodes/2",
		TranslationPath(3):      "/translations/3",
		TranslationEmbedPath(4): "/translations/embed/4",
	}
	for got, expected := range cases {
		if got != expected {
			t.Fatalf("expected %s, got %s", expected, got)
		}
	}
}
