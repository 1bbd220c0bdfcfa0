package repository

import "testing"

func TestNormalizePageRequest(t *testing.T) {
	cases := []struct {
		name string
		in   PageRequest
		want PageRequest
	}{
		{"zero values", PageRequest{}, PageRequest{Page: 1, PageSize: 20}},
		{"negative page", PageRequest{Page: -3, PageSize: 10}, PageRequest{Page: 1, PageSize: 10}},
		{"oversized page size", PageRequest{Page: 2, PageSize: 500}, PageRequest{Page: 2, PageSize: 100}},
		{"valid passthrough", PageRequest{Page: 3, PageSize: 25}, PageRequest{Page: 3, PageSize: 25}},
	}
	for _, tc := range cases {
		if got := normalizePageRequest(tc.in); got != tc.want {
			t.Errorf("%s: got %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

func TestCalcTotalPages(t *testing.T) {
	cases := []struct {
		total    int64
		pageSize int
		want     int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{100, 25, 4},
		{-5, 20, 0},
		{10, 0, 0},
	}
	for _, tc := range cases {
		if got := calcTotalPages(tc.total, tc.pageSize); got != tc.want {
			t.Errorf("calcTotalPages(%d, %d) = %d, want %d", tc.total, tc.pageSize, got, tc.want)
		}
	}
}
