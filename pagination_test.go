package sitepress

import (
	"errors"
	"reflect"
	"testing"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		name       string
		count      int
		raw        string
		allowEmpty bool
		wantNumber int
		wantPages  int
		wantErr    error
	}{
		{"blank is first", 20, "", true, 1, 3, nil},
		{"explicit", 20, "2", true, 2, 3, nil},
		{"last", 20, "last", true, 3, 3, nil},
		{"exact multiple", 18, "last", true, 2, 2, nil},
		{"spaces trimmed", 20, " 2 ", true, 2, 3, nil},
		{"past end", 20, "4", true, 0, 0, ErrNotFound},
		{"zero", 20, "0", true, 0, 0, ErrNotFound},
		{"negative", 20, "-1", true, 0, 0, ErrNotFound},
		{"not a number", 20, "two", true, 0, 0, ErrNotFound},
		{"empty allowed", 0, "", true, 1, 1, nil},
		{"empty allowed last", 0, "last", true, 1, 1, nil},
		{"empty allowed page 2", 0, "2", true, 0, 0, ErrNotFound},
		{"empty not allowed", 0, "", false, 0, 0, ErrNotFound},
		{"one item", 1, "", false, 1, 1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := paginate(tt.count, PerPage, tt.raw, tt.allowEmpty)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if p.Number != tt.wantNumber || p.NumPages != tt.wantPages {
				t.Errorf("got page %d of %d, want %d of %d", p.Number, p.NumPages, tt.wantNumber, tt.wantPages)
			}
		})
	}
}

func TestPaginationNavigation(t *testing.T) {
	p := Pagination{Number: 2, NumPages: 3, Count: 20, PerPage: PerPage}
	if !p.HasPrevious() || !p.HasNext() || !p.HasOtherPages() {
		t.Errorf("middle page navigation = %v %v %v", p.HasPrevious(), p.HasNext(), p.HasOtherPages())
	}
	if p.Previous() != 1 || p.Next() != 3 {
		t.Errorf("Previous/Next = %d/%d", p.Previous(), p.Next())
	}
	if p.Offset() != 9 {
		t.Errorf("Offset = %d, want 9", p.Offset())
	}

	single := Pagination{Number: 1, NumPages: 1, PerPage: PerPage}
	if single.HasPrevious() || single.HasNext() || single.HasOtherPages() {
		t.Error("single page should have no navigation")
	}
}

func TestPaginationPagesWindow(t *testing.T) {
	tests := []struct {
		number, numPages int
		want             []int
	}{
		{1, 1, []int{1}},
		{1, 3, []int{1, 2, 3}},
		{1, 10, []int{1, 2, 3, 4, 5}},
		{5, 10, []int{3, 4, 5, 6, 7}},
		{10, 10, []int{6, 7, 8, 9, 10}},
		{9, 10, []int{6, 7, 8, 9, 10}},
	}
	for _, tt := range tests {
		p := Pagination{Number: tt.number, NumPages: tt.numPages, PerPage: PerPage}
		if got := p.Pages(); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Pages(%d of %d) = %v, want %v", tt.number, tt.numPages, got, tt.want)
		}
	}
}
