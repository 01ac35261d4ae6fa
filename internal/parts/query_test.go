package parts

import (
	"testing"
	"time"
)

func queryFixtures() []Part {
	desc := "оригінальна деталь для Passat B6"
	return []Part{
		{ID: 1, ArticleNumber: "BP-1001", Name: "Гальмівні колодки", Manufacturer: "Bosch", Category: "гальма", IsNew: true, Quantity: 4, Price: 1200, CompatibleCars: []string{"VW Passat B6"}, UpdatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 2, ArticleNumber: "OF-2002", Name: "Фільтр масляний", Manufacturer: "Mann", Category: "двигун", IsNew: false, Quantity: 0, Price: 350, Description: &desc, CompatibleCars: []string{"VW Passat B6", "Skoda Superb"}, UpdatedAt: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{ID: 3, ArticleNumber: "SP-3003", Name: "Свічка запалювання", Manufacturer: "NGK", Category: "двигун", IsNew: true, Quantity: 12, Price: 180, UpdatedAt: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)},
	}
}

func ids(records []Part) []int64 {
	out := make([]int64, 0, len(records))
	for _, p := range records {
		out = append(out, p.ID)
	}
	return out
}

func assertIDs(t *testing.T, got []Part, want ...int64) {
	t.Helper()
	gotIDs := ids(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("expected ids %v, got %v", want, gotIDs)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("expected ids %v, got %v", want, gotIDs)
		}
	}
}

func TestFilterEmptyParamsReturnsEverything(t *testing.T) {
	records := queryFixtures()
	assertIDs(t, Filter(records, SearchParams{}), 1, 2, 3)
}

func TestFilterQueryIsCaseInsensitiveSubstring(t *testing.T) {
	records := queryFixtures()
	assertIDs(t, Filter(records, SearchParams{Query: "фільтр"}), 2)
	assertIDs(t, Filter(records, SearchParams{Query: "bosch"}), 1)
	assertIDs(t, Filter(records, SearchParams{Query: "of-20"}), 2)
}

func TestFilterQueryReachesDescription(t *testing.T) {
	records := queryFixtures()
	assertIDs(t, Filter(records, SearchParams{Query: "passat b6"}), 2)
}

func TestFilterCategoryAndManufacturerAreExactCaseInsensitive(t *testing.T) {
	records := queryFixtures()
	assertIDs(t, Filter(records, SearchParams{Category: "ДВИГУН"}), 2, 3)
	assertIDs(t, Filter(records, SearchParams{Manufacturer: "mann"}), 2)
	// Substrings are not category matches.
	assertIDs(t, Filter(records, SearchParams{Category: "двиг"}))
}

func TestFilterPriceRangeIsInclusive(t *testing.T) {
	records := queryFixtures()
	assertIDs(t, Filter(records, SearchParams{PriceRange: &PriceRange{Min: 180, Max: 350}}), 2, 3)
	assertIDs(t, Filter(records, SearchParams{PriceRange: &PriceRange{Min: 1200, Max: 1200}}), 1)
}

func TestFilterIsNewAndInStock(t *testing.T) {
	records := queryFixtures()
	used := false
	assertIDs(t, Filter(records, SearchParams{IsNew: &used}), 2)
	assertIDs(t, Filter(records, SearchParams{InStock: true}), 1, 3)
}

func TestFilterCarModelSubstring(t *testing.T) {
	records := queryFixtures()
	assertIDs(t, Filter(records, SearchParams{CarModel: "skoda"}), 2)
	assertIDs(t, Filter(records, SearchParams{CarModel: "lanos"}))
}

func TestFilterConditionsANDTogether(t *testing.T) {
	records := queryFixtures()
	// Each filter alone matches more than the combination does.
	params := SearchParams{Category: "двигун", InStock: true}
	assertIDs(t, Filter(records, params), 3)

	combined := Filter(records, params)
	byCategory := Filter(records, SearchParams{Category: params.Category})
	for _, p := range combined {
		found := false
		for _, q := range byCategory {
			if q.ID == p.ID {
				found = true
			}
		}
		if !found {
			t.Fatalf("part %d passed the combined filter but not a single condition", p.ID)
		}
	}
}

func TestFilterNeverMutatesInput(t *testing.T) {
	records := queryFixtures()
	Filter(records, SearchParams{Category: "гальма"})
	assertIDs(t, records, 1, 2, 3)
}

func TestSortParts(t *testing.T) {
	cases := []struct {
		name  string
		key   SortKey
		order SortOrder
		want  []int64
	}{
		{"price ascending", SortByPrice, SortAsc, []int64{3, 2, 1}},
		{"price descending", SortByPrice, SortDesc, []int64{1, 2, 3}},
		{"name ascending", SortByName, SortAsc, []int64{1, 3, 2}},
		{"quantity descending", SortByQuantity, SortDesc, []int64{3, 1, 2}},
		{"updatedAt ascending", SortByUpdatedAt, SortAsc, []int64{2, 3, 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			records := queryFixtures()
			SortParts(records, tc.key, tc.order)
			assertIDs(t, records, tc.want...)
		})
	}
}

func TestSortPartsUnknownKeyKeepsOrder(t *testing.T) {
	records := queryFixtures()
	SortParts(records, SortKey("bogus"), SortAsc)
	assertIDs(t, records, 1, 2, 3)
}
