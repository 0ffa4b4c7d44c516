package api

import (
	"fmt"
	"strconv"

	"anime365-client/pkg/httpsession"
)

func SeriesPath(seriesId int) string {
	return fmt.Sprintf("/series/%d", seriesId)
}

func EpisodePath(episodeId int) string {
	return fmt.Sprintf("/episodes/%d", episodeId)
}

func TranslationPath(translationId int) string {
	return fmt.Sprintf("/translations/%d", translationId)
}

func TranslationEmbedPath(translationId int) string {
	return fmt.Sprintf("/translations/embed/%d", translationId)
}

// ListSeriesOptions are the parameters of /series. Zero fields are not sent,
// so an explicit limit=0 or offset=0 cannot be requested.
type ListSeriesOptions struct {
	Query  string
	Limit  int
	Offset int
	// Chips is the catalog filter, e.g. {"genre@": "22", "year": "2024"}.
	Chips         map[string]string
	MyAnimeListId int
}

func (o ListSeriesOptions) Values() map[string]string {
	query := map[string]string{}
	if len(o.Chips) > 0 {
		query["chips"] = httpsession.FlattenFilter(o.Chips)
	}
	if o.Query != "" {
		query["query"] = o.Query
	}
	setInt(query, "limit", o.Limit)
	setInt(query, "offset", o.Offset)
	setInt(query, "myAnimeListId", o.MyAnimeListId)
	return query
}

// ListEpisodesOptions are the parameters of /episodes, zero fields are not sent.
type ListEpisodesOptions struct {
	SeriesId int
	Limit    int
	Offset   int
}

func (o ListEpisodesOptions) Values() map[string]string {
	query := map[string]string{}
	setInt(query, "seriesId", o.SeriesId)
	setInt(query, "limit", o.Limit)
	setInt(query, "offset", o.Offset)
	return query
}

func setInt(query map[string]string, key string, value int) {
	if value != 0 {
		query[key] = strconv.Itoa(value)
	}
}
