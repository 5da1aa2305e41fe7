package pagination

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   Params
		want Params
	}{
		{Params{}, Params{Page: 1, PageSize: DefaultLimit}},
		{Params{Page: -3, PageSize: 10}, Params{Page: 1, PageSize: 10}},
		{Params{Page: 2, PageSize: 1000}, Params{Page: 2, PageSize: MaxLimit}},
	}
	for _, tc := range cases {
		if got := tc.in.Normalize(); got != tc.want {
			t.Fatalf("Normalize(%+v) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestOffset(t *testing.T) {
	if got := (Params{Page: 3, PageSize: 10}).Offset(); got != 20 {
		t.Fatalf("expected offset 20, got %d", got)
	}
}

func TestNewPageHasNext(t *testing.T) {
	page := NewPage([]int{1, 2}, 5, Params{Page: 1, PageSize: 2})
	if !page.HasNext {
		t.Fatalf("expected has_next on first of three pages")
	}
	last := NewPage([]int{5}, 5, Params{Page: 3, PageSize: 2})
	if last.HasNext {
		t.Fatalf("last page must not report has_next")
	}
	empty := NewPage[int](nil, 0, Params{})
	if empty.Items == nil {
		t.Fatalf("items should render as an empty list")
	}
}

func TestMapKeepsMetadata(t *testing.T) {
	in := NewPage([]int{1, 2}, 4, Params{Page: 1, PageSize: 2})
	out := Map(in, func(v int) string { return string(rune('a' + v)) })
	if out.Total != 4 || !out.HasNext || len(out.Items) != 2 || out.Items[0] != "b" {
		t.Fatalf("unexpected mapped page %+v", out)
	}
}
