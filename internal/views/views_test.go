package views

import (
	"reflect"
	"testing"

	"github.com/five82/fontshelf/internal/font"
)

func ids(records []font.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func families(groups []FamilyGroup) []string {
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.Family())
	}
	return out
}

var fixture = []font.Record{
	{ID: "Foo-Regular", DisplayName: "Foo Regular", Family: "Foo", Style: "Regular"},
	{ID: "Bar-Bold", DisplayName: "Bar Bold", Family: "Bar", Style: "Bold"},
	{ID: "Foo-Bold", DisplayName: "Foo Bold", Family: "Foo", Style: "Bold"},
	{ID: "Bar-Regular", DisplayName: "Bar Regular", Family: "Bar", Style: "Regular", Favorite: true},
	{ID: "Baz-Italic", DisplayName: "Baz Italic", Family: "Baz", Style: "Italic"},
}

func TestGroupByFamily_FirstSeenOrderAndSortedStyles(t *testing.T) {
	groups := GroupByFamily(fixture)

	if want := []string{"Foo", "Bar", "Baz"}; !reflect.DeepEqual(families(groups), want) {
		t.Fatalf("families = %v, want %v", families(groups), want)
	}
	if got, want := ids(groups[0].Styles), []string{"Foo-Bold", "Foo-Regular"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Foo styles = %v, want %v", got, want)
	}
	if groups[0].Representative.ID != "Foo-Bold" {
		t.Fatalf("Foo representative = %s, want Foo-Bold", groups[0].Representative.ID)
	}
}

func TestGroupByFamily_IsDeterministic(t *testing.T) {
	first := GroupByFamily(fixture)
	for i := 0; i < 10; i++ {
		if again := GroupByFamily(fixture); !reflect.DeepEqual(again, first) {
			t.Fatalf("run %d differs: %+v", i, again)
		}
	}
}

func TestGroupByFamily_DoesNotAliasInput(t *testing.T) {
	in := []font.Record{{ID: "A", Family: "Foo", FavoriteOrder: font.Order(1)}}
	groups := GroupByFamily(in)
	*groups[0].Styles[0].FavoriteOrder = 9
	groups[0].Styles[0].Family = "changed"
	if *in[0].FavoriteOrder != 1 || in[0].Family != "Foo" {
		t.Fatalf("input mutated: %+v", in[0])
	}
}

func TestFilterFavorites(t *testing.T) {
	tests := []struct {
		name     string
		records  []font.Record
		families []string
		styles   map[string][]string
	}{
		{
			name:     "none",
			records:  fixture[:3],
			families: []string{},
		},
		{
			name:     "one family narrowed",
			records:  fixture,
			families: []string{"Bar"},
			styles:   map[string][]string{"Bar": {"Bar-Regular"}},
		},
		{
			name: "representative recomputed",
			records: []font.Record{
				{ID: "Q-Black", Family: "Q", Style: "Black"},
				{ID: "Q-Thin", Family: "Q", Style: "Thin", Favorite: true},
				{ID: "Q-Medium", Family: "Q", Style: "Medium", Favorite: true},
			},
			families: []string{"Q"},
			styles:   map[string][]string{"Q": {"Q-Medium", "Q-Thin"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterFavorites(GroupByFamily(tt.records))
			if fams := families(got); !reflect.DeepEqual(fams, tt.families) {
				t.Fatalf("families = %v, want %v", fams, tt.families)
			}
			for _, g := range got {
				if want := tt.styles[g.Family()]; !reflect.DeepEqual(ids(g.Styles), want) {
					t.Fatalf("%s styles = %v, want %v", g.Family(), ids(g.Styles), want)
				}
				if g.Representative.ID != g.Styles[0].ID {
					t.Fatalf("%s representative = %s, want %s", g.Family(), g.Representative.ID, g.Styles[0].ID)
				}
				for _, r := range g.Styles {
					if !r.Favorite {
						t.Fatalf("non-favorite %s retained", r.ID)
					}
				}
			}
		})
	}
}

func TestSortFavoritesFlat(t *testing.T) {
	records := []font.Record{
		{ID: "A", Favorite: true},
		{ID: "B", Favorite: true, FavoriteOrder: font.Order(2)},
		{ID: "C", Favorite: false, FavoriteOrder: font.Order(0)},
		{ID: "D", Favorite: true},
		{ID: "E", Favorite: true, FavoriteOrder: font.Order(1)},
	}

	got := ids(SortFavoritesFlat(records))
	if want := []string{"E", "B", "A", "D"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestSortFavoritesFlat_FollowsPersistedOrder(t *testing.T) {
	ranked := func(order ...string) []font.Record {
		ranks := make(map[string]int)
		for i, id := range order {
			ranks[id] = i
		}
		var out []font.Record
		for _, id := range []string{"A", "B", "C"} {
			out = append(out, font.Record{ID: id, Favorite: true, FavoriteOrder: font.Order(ranks[id])})
		}
		return out
	}

	if got := ids(SortFavoritesFlat(ranked("C", "A", "B"))); !reflect.DeepEqual(got, []string{"C", "A", "B"}) {
		t.Fatalf("after [C A B] = %v", got)
	}
	if got := ids(SortFavoritesFlat(ranked("A", "B", "C"))); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Fatalf("after [A B C] = %v", got)
	}
}

func TestBuild(t *testing.T) {
	snap := Build(fixture, nil)
	if snap.Empty() || snap.TotalRecords != 5 || snap.MatchedRecords != 5 {
		t.Fatalf("snapshot counts = %d/%d", snap.MatchedRecords, snap.TotalRecords)
	}
	if len(snap.Families) != 3 || len(snap.Favorites) != 1 || len(snap.FavoritesFlat) != 1 {
		t.Fatalf("projections = %d families, %d favorites, %d flat", len(snap.Families), len(snap.Favorites), len(snap.FavoritesFlat))
	}

	filtered := Build(fixture, Search("bar"))
	if filtered.MatchedRecords != 2 || filtered.TotalRecords != 5 {
		t.Fatalf("filtered counts = %d/%d, want 2/5", filtered.MatchedRecords, filtered.TotalRecords)
	}

	if !Build(nil, nil).Empty() {
		t.Fatal("snapshot of nothing is not empty")
	}
}
