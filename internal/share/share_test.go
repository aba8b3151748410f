package share

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/skuquery/internal/attr"
	"github.com/roach88/skuquery/internal/engine"
	"github.com/roach88/skuquery/internal/query"
	"github.com/roach88/skuquery/internal/testutil"
)

func TestDecode_SearchAndFilters(t *testing.T) {
	q, err := DecodeString("search=head&filter_brand=TechAudio&filter_color=")
	require.NoError(t, err)

	want := query.FilterGroup{
		"attributes.name":  {query.OpTextContains: attr.Text("head")},
		"attributes.brand": {query.OpTextContains: attr.Text("TechAudio")},
	}
	assert.True(t, q.Filter.Equal(want), "got %v", q.Filter)
	assert.Nil(t, q.Sort)
	assert.Equal(t, query.DefaultWindow(), q.Window)
	assert.Empty(t, q.HiddenColumns)
}

func TestDecode_QuotesMetacharacters(t *testing.T) {
	q, err := Decode(url.Values{"search": {"C++ (v2)"}})
	require.NoError(t, err)
	assert.Equal(t, attr.Text(`C\+\+ \(v2\)`), q.Filter["attributes.name"][query.OpTextContains])
}

func TestDecode_SortWindowHidden(t *testing.T) {
	q, err := DecodeString("?sort=price&order=DESC&offset=50&limit=10&hidden=weight,description&hidden=brand")
	require.NoError(t, err)

	assert.Nil(t, q.Filter)
	require.NotNil(t, q.Sort)
	assert.Equal(t, query.SortSpec{Field: "price", Direction: query.Descending}, *q.Sort)
	assert.Equal(t, query.Window{Offset: 50, Limit: 10}, q.Window)
	assert.Equal(t, []string{"weight", "description", "brand"}, q.HiddenColumns)
}

func TestDecode_OrderWithoutSortIgnored(t *testing.T) {
	q, err := DecodeString("order=desc")
	require.NoError(t, err)
	assert.Nil(t, q.Sort)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"non-numeric offset", "offset=abc"},
		{"non-numeric limit", "limit=ten"},
		{"bad direction", "sort=price&order=sideways"},
		{"empty filter key", "filter_=x"},
		{"search collides with filter_name", "search=a&filter_name=b"},
		{"bad escape", "search=%zz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeString(tt.input)
			require.Error(t, err)
			assert.True(t, query.IsMalformedQuery(err), "got %v", err)
		})
	}
}

func TestDecode_WindowValidatedByEngine(t *testing.T) {
	q, err := DecodeString("offset=-1")
	require.NoError(t, err)
	assert.Equal(t, -1, q.Window.Offset)

	_, err = engine.New().Evaluate(q, testutil.ProductSnapshot())
	assert.True(t, query.IsInvalidWindow(err))
}

func TestEncode(t *testing.T) {
	q := query.Query{
		Filter: query.FilterGroup{
			"attributes.name": {query.OpTextContains: attr.Text(`C\+\+`)},
			"brand":           {query.OpTextContains: attr.Text("Tech")},
		},
		Sort:          &query.SortSpec{Field: "price", Direction: query.Descending},
		Window:        query.Window{Offset: 0, Limit: 10},
		HiddenColumns: []string{"weight", "description"},
	}

	got, err := EncodeString(q)
	require.NoError(t, err)
	assert.Equal(t,
		"filter_brand=Tech&hidden=weight%2Cdescription&limit=10&offset=0&order=desc&search=C%2B%2B&sort=price",
		got)
}

func TestEncode_DefaultWindowOmitted(t *testing.T) {
	got, err := EncodeString(query.Query{Window: query.DefaultWindow()})
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestEncode_NotShareable(t *testing.T) {
	tests := []struct {
		name   string
		filter query.FilterGroup
	}{
		{"reserved field", query.FilterGroup{"skuId": {query.OpTextContains: attr.Text("SKU")}}},
		{"non-text operator", query.FilterGroup{"price": {query.OpGreaterThan: attr.Number(10)}}},
		{"two operators", query.FilterGroup{"brand": {
			query.OpTextContains: attr.Text("a"),
			query.OpExists:       attr.Bool(true),
		}}},
		{"regex pattern", query.FilterGroup{"brand": {query.OpTextContains: attr.Text("^Tech")}}},
		{"same attribute twice", query.FilterGroup{
			"brand":            {query.OpTextContains: attr.Text("a")},
			"attributes.brand": {query.OpTextContains: attr.Text("b")},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(query.Query{Filter: tt.filter, Window: query.DefaultWindow()})
			assert.ErrorIs(t, err, ErrNotShareable)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"search=Wireless",
		"filter_category=Electronics&sort=updatedAt",
		"filter_brand=Game%2BTech&hidden=dpi&limit=5&offset=5&order=desc&sort=price",
		"search=a.b%2A&filter_color=%5BBlack%5D",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			q, err := DecodeString(in)
			require.NoError(t, err)

			out, err := EncodeString(q)
			require.NoError(t, err)

			again, err := DecodeString(out)
			require.NoError(t, err)
			assert.True(t, q.Filter.Equal(again.Filter))
			assert.True(t, q.Sort.Equal(again.Sort))
			assert.Equal(t, q.Window, again.Window)
			assert.Equal(t, q.HiddenColumns, again.HiddenColumns)
		})
	}
}

func TestSharedSearchMatchesLiterally(t *testing.T) {
	q, err := DecodeString("search=mouse")
	require.NoError(t, err)

	res, err := engine.New().Evaluate(q, testutil.ProductSnapshot())
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, res.IDs())

	q, err = DecodeString("search=.")
	require.NoError(t, err)
	res, err = engine.New().Evaluate(q, testutil.ProductSnapshot())
	require.NoError(t, err)
	assert.Empty(t, res.Data, "a quoted dot must not match every name")
}
