package console

import (
	"testing"
)

func TestPlacementFor(t *testing.T) {
	tests := []struct {
		index, rows int
		want        Placement
	}{
		{0, 10, Below},
		{6, 10, Below},
		{7, 10, Above},
		{9, 10, Above},
		{7, 7, Above},
		{6, 7, Below},
		{5, 6, Below},
		{7, 6, Below}, // fewer than 7 rows never opens upwards
	}

	for _, tt := range tests {
		if got := PlacementFor(tt.index, tt.rows); got != tt.want {
			t.Errorf("PlacementFor(%d, %d) = %v, want %v", tt.index, tt.rows, got, tt.want)
		}
	}
}

func TestMenuSingleOpen(t *testing.T) {
	var m Menu

	m.Open("a")
	m.Open("b")

	if m.IsOpen("a") {
		t.Error("opening b must close a")
	}
	if row, ok := m.OpenRow(); !ok || row != "b" {
		t.Errorf("OpenRow() = %q, %v", row, ok)
	}

	m.Toggle("b")
	if _, ok := m.OpenRow(); ok {
		t.Error("toggling the open row must close it")
	}
}

func TestMenuClickOutside(t *testing.T) {
	var m Menu
	m.Open("a")

	m.ClickOutside("a")
	if !m.IsOpen("a") {
		t.Error("click on the owning row must keep the menu open")
	}

	m.ClickOutside("b")
	if m.IsOpen("a") {
		t.Error("click on another row must close the menu")
	}

	m.Open("a")
	m.ClickOutside("")
	if m.IsOpen("a") {
		t.Error("click outside any row must close the menu")
	}
}

func TestMenuRetain(t *testing.T) {
	var m Menu
	m.Open("a")

	m.Retain([]string{"a", "b"})
	if !m.IsOpen("a") {
		t.Error("menu closed although its row is visible")
	}

	m.Retain([]string{"b"})
	if m.IsOpen("a") {
		t.Error("menu stayed open after its row left the view")
	}
}
