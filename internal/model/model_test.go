package model

import "testing"

func TestContainerKey(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
	}{
		{"", BacklogID},
		{"null", BacklogID},
		{"sp-1", "sp-1"},
	} {
		if got := ContainerKey(tc.in); got != tc.want {
			t.Errorf("ContainerKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSortColumns_TiesFallBackToID(t *testing.T) {
	cols := []StatusColumn{
		{ID: 7, Name: "Done", OrderIndex: 3},
		{ID: 4, Name: "Review", OrderIndex: 2},
		{ID: 2, Name: "Doing", OrderIndex: 2},
		{ID: 1, Name: "Todo", OrderIndex: 0},
	}
	got := SortColumns(cols)
	want := []int{1, 2, 4, 7}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("SortColumns()[%d].ID = %d, want %d (got %+v)", i, got[i].ID, id, got)
		}
	}
	if cols[0].ID != 7 {
		t.Error("SortColumns modified its input")
	}
}

func TestColumnName(t *testing.T) {
	cols := []StatusColumn{{ID: 1, Name: "Todo"}, {ID: 2}}
	for _, tc := range []struct {
		id   int
		want string
	}{
		{1, "Todo"},
		{2, "2"},
		{9, "9"},
	} {
		if got := ColumnName(cols, tc.id); got != tc.want {
			t.Errorf("ColumnName(%d) = %q, want %q", tc.id, got, tc.want)
		}
	}
}

func TestContainers_CloneIsDeep(t *testing.T) {
	orig := Containers{"sp-1": {{ID: "a", Status: 1}}}
	cp := orig.Clone()
	cp["sp-1"][0].Status = 9
	cp["sp-2"] = nil
	if orig["sp-1"][0].Status != 1 {
		t.Error("mutating the clone changed the original issue")
	}
	if _, ok := orig["sp-2"]; ok {
		t.Error("mutating the clone changed the original map")
	}
}

func TestContainers_FindAndKeys(t *testing.T) {
	c := Containers{
		BacklogID: {{ID: "c"}},
		"sp-2":    {{ID: "b"}},
		"sp-1":    {{ID: "a"}},
	}
	is, key, ok := c.Find("b")
	if !ok || is.ID != "b" || key != "sp-2" {
		t.Errorf("Find(b) = %+v, %q, %v", is, key, ok)
	}
	if _, _, ok := c.Find("zzz"); ok {
		t.Error("Find(zzz) reported found")
	}
	keys := c.Keys()
	want := []string{"sp-1", "sp-2", BacklogID}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("Keys() = %v, want %v", keys, want)
		}
	}
}
