package render

import (
	"strings"
	"testing"
)

func TestRenderHeading(t *testing.T) {
	r, err := New(StyleNoTTY, 80)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := r.Render("# Hi\n\nsome text\n")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "Hi") || !strings.Contains(out, "some text") {
		t.Errorf("output missing content:\n%s", out)
	}
}

func TestRenderTable(t *testing.T) {
	r, err := New(StyleASCII, 80)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	md := "| Name | Kind |\n|------|------|\n| api | package |\n"
	out, err := r.Render(md)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{"Name", "Kind", "api", "package"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestUnknownStyle(t *testing.T) {
	if _, err := New("neon", 80); err == nil {
		t.Error("expected error for unknown style")
	}
}

func TestWithWidth(t *testing.T) {
	r, err := New(StyleNoTTY, 80)
	if err != nil {
		t.Fatal(err)
	}
	same, _ := r.WithWidth(80)
	if same != r {
		t.Error("same width should reuse renderer")
	}
	wider, err := r.WithWidth(120)
	if err != nil || wider.Width() != 120 {
		t.Errorf("WithWidth(120) = %v, %v", wider, err)
	}
}

func TestPlain(t *testing.T) {
	out, _ := Plain{}.Render("# Hi")
	if out != "# Hi" {
		t.Errorf("Plain = %q", out)
	}
}
