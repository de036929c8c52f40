// Package views derives the family, favorites and flat-favorites projections
// from the ordered record list. Every function is pure: inputs are never
// modified and outputs share no memory with them.
package views

import (
	"sort"

	"github.com/five82/fontshelf/internal/font"
)

// FamilyGroup is one family with its styles. Representative is the first style
// after sorting and is what a family-level list shows.
type FamilyGroup struct {
	Representative font.Record
	Styles         []font.Record
}

// Family returns the group key.
func (g FamilyGroup) Family() string {
	return g.Representative.Family
}

// HasFavorite reports whether any style in the group is a favorite.
func (g FamilyGroup) HasFavorite() bool {
	for _, r := range g.Styles {
		if r.Favorite {
			return true
		}
	}
	return false
}

// GroupByFamily buckets records by Family. Groups appear in the order their
// family first occurs in records; styles inside a group are sorted by Style.
func GroupByFamily(records []font.Record) []FamilyGroup {
	index := make(map[string]int)
	var groups []FamilyGroup
	for _, r := range records {
		i, ok := index[r.Family]
		if !ok {
			i = len(groups)
			index[r.Family] = i
			groups = append(groups, FamilyGroup{})
		}
		groups[i].Styles = append(groups[i].Styles, r.Clone())
	}
	for i := range groups {
		sortStyles(groups[i].Styles)
		groups[i].Representative = groups[i].Styles[0]
	}
	return groups
}

func sortStyles(styles []font.Record) {
	sort.SliceStable(styles, func(i, j int) bool {
		return styles[i].Style < styles[j].Style
	})
}

// FilterFavorites keeps groups holding at least one favorite and narrows their
// styles to the favorites.
func FilterFavorites(groups []FamilyGroup) []FamilyGroup {
	var out []FamilyGroup
	for _, g := range groups {
		var styles []font.Record
		for _, r := range g.Styles {
			if r.Favorite {
				styles = append(styles, r.Clone())
			}
		}
		if len(styles) == 0 {
			continue
		}
		sortStyles(styles)
		out = append(out, FamilyGroup{Representative: styles[0], Styles: styles})
	}
	return out
}

// SortFavoritesFlat returns the favorites in records ordered by rank. Ranked
// favorites come first in ascending rank; unranked ones follow in list order.
func SortFavoritesFlat(records []font.Record) []font.Record {
	var favs []font.Record
	for _, r := range records {
		if r.Favorite {
			favs = append(favs, r.Clone())
		}
	}
	sort.SliceStable(favs, func(i, j int) bool {
		ri, iok := favs[i].Rank()
		rj, jok := favs[j].Rank()
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return false
		}
	})
	return favs
}

// Snapshot bundles the projections the presentation layer renders.
type Snapshot struct {
	Records        []font.Record
	Families       []FamilyGroup
	Favorites      []FamilyGroup
	FavoritesFlat  []font.Record
	TotalRecords   int
	MatchedRecords int
}

// Empty reports whether no records are loaded at all.
func (s Snapshot) Empty() bool {
	return s.TotalRecords == 0
}

// Build computes every projection for records. A nil filter matches all.
func Build(records []font.Record, filter *Filter) Snapshot {
	matched := filter.Apply(records)
	families := GroupByFamily(matched)
	return Snapshot{
		Records:        matched,
		Families:       families,
		Favorites:      FilterFavorites(families),
		FavoritesFlat:  SortFavoritesFlat(matched),
		TotalRecords:   len(records),
		MatchedRecords: len(matched),
	}
}
