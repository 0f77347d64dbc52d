package color

import "testing"

func TestNew(t *testing.T) {
	c, err := New(" Plum ", "#8E4585", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Name() != "Plum" || c.Hex() != "#8E4585" {
		t.Errorf("unexpected color: %v", c.Tuple())
	}

	if _, err := New("Swatch", "", "/files/swatch.png"); err != nil {
		t.Errorf("image-only color: %v", err)
	}

	for _, tc := range []struct{ name, hex, image string }{
		{"", "#fff", ""},
		{"Plum", "", ""},
		{"Plum", "purple", ""},
		{"Plum", "#12345", ""},
	} {
		if _, err := New(tc.name, tc.hex, tc.image); err == nil {
			t.Errorf("New(%q, %q, %q): expected error", tc.name, tc.hex, tc.image)
		}
	}
}
