package paginator

import "testing"

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		perPage  int
		raw      string
		number   int
		numPages int
		offset   int
	}{
		{"first page default", 25, 10, "", 1, 3, 0},
		{"explicit page", 25, 10, "2", 2, 3, 10},
		{"last page", 25, 10, "3", 3, 3, 20},
		{"not an integer", 25, 10, "abc", 1, 3, 0},
		{"beyond last", 25, 10, "99", 3, 3, 20},
		{"zero", 25, 10, "0", 3, 3, 20},
		{"negative", 25, 10, "-1", 3, 3, 20},
		{"empty listing", 0, 10, "", 1, 1, 0},
		{"empty listing far page", 0, 10, "5", 1, 1, 0},
		{"exact multiple", 20, 10, "2", 2, 2, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.count, tt.perPage, tt.raw)
			if p.Number != tt.number {
				t.Errorf("Number = %d, want %d", p.Number, tt.number)
			}
			if p.NumPages != tt.numPages {
				t.Errorf("NumPages = %d, want %d", p.NumPages, tt.numPages)
			}
			if p.Offset() != tt.offset {
				t.Errorf("Offset = %d, want %d", p.Offset(), tt.offset)
			}
		})
	}
}

func TestNavigation(t *testing.T) {
	p := New(25, 10, "2")
	if !p.HasPrevious() || !p.HasNext() || !p.HasOtherPages() {
		t.Fatalf("middle page should link both ways: %+v", p)
	}
	if p.PreviousPageNumber() != 1 || p.NextPageNumber() != 3 {
		t.Fatalf("unexpected neighbours %d/%d", p.PreviousPageNumber(), p.NextPageNumber())
	}
	if p.StartIndex() != 11 || p.EndIndex() != 20 {
		t.Fatalf("unexpected indices %d-%d", p.StartIndex(), p.EndIndex())
	}

	last := New(25, 10, "3")
	if last.HasNext() || last.EndIndex() != 25 {
		t.Fatalf("last page: %+v end=%d", last, last.EndIndex())
	}

	single := New(3, 10, "")
	if single.HasOtherPages() {
		t.Fatalf("single page should have no navigation")
	}
	if got := single.PageRange(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("PageRange = %v", got)
	}

	empty := New(0, 10, "")
	if empty.StartIndex() != 0 || empty.EndIndex() != 0 {
		t.Fatalf("empty listing indices %d-%d", empty.StartIndex(), empty.EndIndex())
	}
}

func TestClamp(t *testing.T) {
	if Clamp(30, 12) != 12 {
		t.Fatal("expected cap at 12")
	}
	if Clamp(5, 12) != 5 {
		t.Fatal("expected count below cap unchanged")
	}
	if Clamp(30, 0) != 30 {
		t.Fatal("zero max means no cap")
	}
}
