package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var fixedTime = time.Date(2026, 8, 30, 13, 4, 5, 0, time.UTC)

func TestFileName(t *testing.T) {
	got := FileName("lab_one", "beagleplay_1", fixedTime)
	want := "boot-data-lab_one-beagleplay_1-260830-130405.txt"
	if got != want {
		t.Errorf("FileName() = %q, want %q", got, want)
	}
}

func TestCreate_WritesBanner(t *testing.T) {
	dir := t.TempDir()

	rep, err := Create(dir, "lab_one", "m1", "1.2.3", []string{"-l", "lab-one", "-m", "m1"}, fixedTime)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if rep.Path != filepath.Join(dir, "boot-data-lab_one-m1-260830-130405.txt") {
		t.Errorf("unexpected path %q", rep.Path)
	}
	if rep.RunID == "" {
		t.Error("expected a run id")
	}

	content, err := os.ReadFile(rep.Path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}

	banner := strings.SplitN(string(content), "\n", 2)[0]
	for _, want := range []string{"bootdata", "1.2.3", rep.RunID, "-l lab-one -m m1"} {
		if !strings.Contains(banner, want) {
			t.Errorf("banner %q missing %q", banner, want)
		}
	}
}

func TestAddSection(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "newline terminated body",
			body: "line1\nline2\n",
			want: "== uptime ==\nline1\nline2\n\n",
		},
		{
			name: "missing trailing newline is added",
			body: "no newline",
			want: "== uptime ==\nno newline\n\n",
		},
		{
			name: "empty body still delimited",
			body: "",
			want: "== uptime ==\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep, err := Create(t.TempDir(), "l", "m", "dev", nil, fixedTime)
			if err != nil {
				t.Fatalf("Create() error: %v", err)
			}

			before, _ := os.ReadFile(rep.Path)
			if err := rep.AddSection("uptime", []byte(tt.body)); err != nil {
				t.Fatalf("AddSection() error: %v", err)
			}

			after, _ := os.ReadFile(rep.Path)
			got := strings.TrimPrefix(string(after), string(before))
			if got != tt.want {
				t.Errorf("section = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAddSection_Appends(t *testing.T) {
	rep, err := Create(t.TempDir(), "l", "m", "dev", nil, fixedTime)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if err := rep.AddSection("first", []byte("a\n")); err != nil {
		t.Fatal(err)
	}
	if err := rep.AddSection("second", []byte("b\n")); err != nil {
		t.Fatal(err)
	}

	content, _ := os.ReadFile(rep.Path)
	first := strings.Index(string(content), "== first ==")
	second := strings.Index(string(content), "== second ==")
	if first < 0 || second < 0 || second < first {
		t.Errorf("sections out of order in:\n%s", content)
	}
}

func TestCreate_BadDirectory(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "missing-subdir"), "l", "m", "dev", nil, fixedTime)
	if err == nil {
		t.Error("expected error for unwritable output directory")
	}
}
