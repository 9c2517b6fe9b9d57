// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dblp

import (
	"encoding/json"
	"strings"

	"github.com/pdiddy/dblp-crawler/pkg/types"
)

// searchResponse mirrors the envelope of the DBLP publication search API.
// The interesting paths are result.hits.@total (a string-encoded integer)
// and result.hits.hit, which is an array for multi-hit responses but a
// bare object when there is exactly one hit.
type searchResponse struct {
	Result struct {
		Hits struct {
			Total string  `json:"@total"`
			Hit   hitList `json:"hit"`
		} `json:"hits"`
	} `json:"result"`
}

// hitList accepts both upstream shapes for result.hits.hit: an array of
// hits or a single hit object. Normalizing here keeps every caller on one
// shape.
type hitList []hit

func (l *hitList) UnmarshalJSON(data []byte) error {
	var many []hit
	if err := json.Unmarshal(data, &many); err == nil {
		*l = many
		return nil
	}
	var one hit
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*l = hitList{one}
	return nil
}

type hit struct {
	Info hitInfo `json:"info"`
}

type hitInfo struct {
	Title   string      `json:"title"`
	Authors authorGroup `json:"authors"`
	Venue   string      `json:"venue"`
	Year    string      `json:"year"`
	URL     string      `json:"url"`
}

// authorGroup wraps the authors.author field, which upstream renders as a
// list of {text} objects, a single object, or leaves absent entirely.
type authorGroup struct {
	Author authorList `json:"author"`
}

// joined returns the comma-joined author names in source order; empty when
// the field was absent.
func (g authorGroup) joined() string {
	names := make([]string, len(g.Author))
	for i, a := range g.Author {
		names[i] = a.Text
	}
	return strings.Join(names, ", ")
}

// authorList accepts both the array and single-object shapes.
type authorList []author

func (l *authorList) UnmarshalJSON(data []byte) error {
	var many []author
	if err := json.Unmarshal(data, &many); err == nil {
		*l = many
		return nil
	}
	var one author
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*l = authorList{one}
	return nil
}

type author struct {
	Text string `json:"text"`
}

// publication converts one hit to the canonical form. Pure and total:
// missing fields come through as empty strings, never as errors.
func (h hit) publication() types.Publication {
	return types.Publication{
		Title:   h.Info.Title,
		Authors: h.Info.Authors.joined(),
		Venue:   h.Info.Venue,
		Year:    h.Info.Year,
		URL:     h.Info.URL,
	}
}
