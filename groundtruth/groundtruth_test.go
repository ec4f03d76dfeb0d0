package groundtruth

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestCategory(t *testing.T) {
	gt := Default()

	tests := []struct {
		tag  string
		want Category
	}{
		{"div", Container},
		{"DIV", Container},
		{"section", Container},
		{"a", Interactive},
		{"button", Interactive},
		{"p", Content},
		{"ul", Content},
		{"span", Content},
		{"my-widget", Unknown},
		{"script", Unknown},
		{"", Unknown},
	}
	for _, tt := range tests {
		if got := gt.Category(tt.tag); got != tt.want {
			t.Errorf("Category(%q) = %q, want %q", tt.tag, got, tt.want)
		}
	}
}

func TestContainerPriority(t *testing.T) {
	gt := Default()

	if got := gt.ContainerPriority("article"); got != 0.95 {
		t.Errorf("article: got %v, want 0.95", got)
	}
	if got := gt.ContainerPriority("html"); got != 0.1 {
		t.Errorf("html: got %v, want 0.1", got)
	}
	for _, tag := range []string{"p", "a", "custom", ""} {
		if got := gt.ContainerPriority(tag); !math.IsInf(got, -1) {
			t.Errorf("%q: got %v, want NotApplicable", tag, got)
		}
	}
}

func TestAttributeScore(t *testing.T) {
	gt := Default()

	tests := []struct {
		name string
		want float64
	}{
		{"href", 0.9},
		{"HREF", 0.9},
		{"aria-label", 0.6},
		{"aria-hidden", 0.6},
		{"data-uid", 1.0},
		{"style", 0.1},
	}
	for _, tt := range tests {
		if got := gt.AttributeScore(tt.name); got != tt.want {
			t.Errorf("AttributeScore(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}

	// Unknown names never pass a threshold, not even 0.
	for _, name := range []string{"onclick", "data-foo", "aria", ""} {
		if got := gt.AttributeScore(name); got >= 0 {
			t.Errorf("AttributeScore(%q) = %v, want below 0", name, got)
		}
	}
}

func TestMerge_DoesNotMutateBase(t *testing.T) {
	base := Default()
	merged := base.Merge(&Tables{
		Container:  map[string]float64{"div": 0.6, "dialog": 0.5},
		Attributes: map[string]float64{"data-*": 0.2, "data-testid": 0.9},
	})

	if got := merged.ContainerPriority("div"); got != 0.6 {
		t.Errorf("merged div: got %v, want 0.6", got)
	}
	if got := merged.Category("dialog"); got != Container {
		t.Errorf("merged dialog: got %q, want container", got)
	}
	if got := merged.AttributeScore("data-testid"); got != 0.9 {
		t.Errorf("exact entry should beat pattern: got %v", got)
	}
	if got := merged.AttributeScore("data-foo"); got != 0.2 {
		t.Errorf("pattern: got %v, want 0.2", got)
	}
	// Exact entries from the base survive the merge.
	if got := merged.AttributeScore("data-uid"); got != 1.0 {
		t.Errorf("data-uid: got %v, want 1.0", got)
	}

	if got := base.ContainerPriority("div"); got != 0.3 {
		t.Errorf("base div changed: got %v", got)
	}
	if got := base.Category("dialog"); got != Unknown {
		t.Errorf("base dialog changed: got %q", got)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gt.yaml")
	os.WriteFile(path, []byte(`
container:
  div: 0.5
content: [p, pre]
attributes:
  data-testid: 0.9
`), 0644)

	gt, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := gt.ContainerPriority("div"); got != 0.5 {
		t.Errorf("div: got %v", got)
	}
	if got := gt.Category("span"); got != Unknown {
		t.Errorf("span should drop out of content list, got %q", got)
	}
	if got := gt.Category("a"); got != Interactive {
		t.Errorf("interactive list should be kept, got %q", got)
	}
	if got := gt.AttributeScore("data-testid"); got != 0.9 {
		t.Errorf("data-testid: got %v", got)
	}
}

func TestParse_RejectsOutOfRange(t *testing.T) {
	if _, err := Parse([]byte("attributes:\n  href: 1.5\n")); err == nil {
		t.Fatal("expected error for score above 1")
	}
	if _, err := Parse([]byte("container:\n  div: -0.1\n")); err == nil {
		t.Fatal("expected error for negative score")
	}
}
