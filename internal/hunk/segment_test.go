package hunk

import (
	"errors"
	"strings"
	"testing"
)

const modifiedDiff = `diff --git a/server.go b/server.go
index 1234567..89abcde 100644
--- a/server.go
+++ b/server.go
@@ -10,7 +10,8 @@ func handler() {
 	mux := http.NewServeMux()
-	timeout := 5 * time.Second
+	timeout := 30 * time.Second
+	mux.HandleFunc("/health", healthHandler)
 	srv := &http.Server{}
@@ -40,3 +41,4 @@ func shutdown() {
 	cancel()
+	log.Println("shutting down")
 }
`

func TestSegment_Modified(t *testing.T) {
	hunks, err := Segment(modifiedDiff)
	if err != nil {
		t.Fatalf("Segment returned error: %v", err)
	}
	if len(hunks) != 2 {
		t.Fatalf("expected 2 hunks, got %d", len(hunks))
	}

	first := hunks[0]
	if first.FilePath != "server.go" {
		t.Errorf("FilePath = %q, want server.go", first.FilePath)
	}
	if first.Kind != KindModified {
		t.Errorf("Kind = %q, want modified", first.Kind)
	}
	if first.OldRange.Start != 10 || first.OldRange.Count != 7 {
		t.Errorf("OldRange = %+v, want {10 7}", first.OldRange)
	}
	if first.NewRange.Start != 10 || first.NewRange.Count != 8 {
		t.Errorf("NewRange = %+v, want {10 8}", first.NewRange)
	}
	if len(first.Added) != 2 {
		t.Fatalf("expected 2 added lines, got %d", len(first.Added))
	}
	if len(first.Removed) != 1 {
		t.Fatalf("expected 1 removed line, got %d", len(first.Removed))
	}
}

func TestSegment_LineNumbers(t *testing.T) {
	hunks, err := Segment(modifiedDiff)
	if err != nil {
		t.Fatalf("Segment returned error: %v", err)
	}

	first := hunks[0]
	// New-file numbering: context at 10, removed at old 11,
	// added replacements at new 11 and 12.
	if got := first.Removed[0].Number; got != 11 {
		t.Errorf("removed line number = %d, want 11", got)
	}
	if got := first.Added[0].Number; got != 11 {
		t.Errorf("first added line number = %d, want 11", got)
	}
	if got := first.Added[1].Number; got != 12 {
		t.Errorf("second added line number = %d, want 12", got)
	}
	if !strings.Contains(first.Added[1].Text, "healthHandler") {
		t.Errorf("added text = %q, want the healthHandler line", first.Added[1].Text)
	}

	second := hunks[1]
	if got := second.Added[0].Number; got != 42 {
		t.Errorf("second hunk added line number = %d, want 42", got)
	}
}

func TestSegment_FileKinds(t *testing.T) {
	tests := []struct {
		name     string
		diff     string
		wantKind ChangeKind
		wantPath string
		wantOld  string
	}{
		{
			name: "new file",
			diff: `diff --git a/notes.txt b/notes.txt
new file mode 100644
index 0000000..e69de29
--- /dev/null
+++ b/notes.txt
@@ -0,0 +1,2 @@
+first
+second
`,
			wantKind: KindAdded,
			wantPath: "notes.txt",
		},
		{
			name: "deleted file",
			diff: `diff --git a/old.txt b/old.txt
deleted file mode 100644
index e69de29..0000000
--- a/old.txt
+++ /dev/null
@@ -1,2 +0,0 @@
-first
-second
`,
			wantKind: KindDeleted,
			wantPath: "old.txt",
		},
		{
			name: "rename with edits",
			diff: `diff --git a/pkg/util.go b/internal/util.go
similarity index 90%
rename from pkg/util.go
rename to internal/util.go
index 1234567..89abcde 100644
--- a/pkg/util.go
+++ b/internal/util.go
@@ -1,3 +1,3 @@
-package pkg
+package internal

 import "fmt"
`,
			wantKind: KindRenamed,
			wantPath: "internal/util.go",
			wantOld:  "pkg/util.go",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hunks, err := Segment(tt.diff)
			if err != nil {
				t.Fatalf("Segment returned error: %v", err)
			}
			if len(hunks) != 1 {
				t.Fatalf("expected 1 hunk, got %d", len(hunks))
			}
			h := hunks[0]
			if h.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", h.Kind, tt.wantKind)
			}
			if h.FilePath != tt.wantPath {
				t.Errorf("FilePath = %q, want %q", h.FilePath, tt.wantPath)
			}
			if h.OldPath != tt.wantOld {
				t.Errorf("OldPath = %q, want %q", h.OldPath, tt.wantOld)
			}
		})
	}
}

func TestSegment_BinaryFile(t *testing.T) {
	diff := `diff --git a/logo.png b/logo.png
index 1234567..89abcde 100644
Binary files a/logo.png and b/logo.png differ
`
	hunks, err := Segment(diff)
	if err != nil {
		t.Fatalf("Segment returned error: %v", err)
	}
	if len(hunks) != 1 {
		t.Fatalf("expected 1 hunk, got %d", len(hunks))
	}
	h := hunks[0]
	if h.Kind != KindBinary {
		t.Errorf("Kind = %q, want binary", h.Kind)
	}
	if len(h.Added) != 0 || len(h.Removed) != 0 {
		t.Errorf("binary hunk should carry no content, got %d added / %d removed",
			len(h.Added), len(h.Removed))
	}
	if h.ID == "" {
		t.Error("binary hunk should still have an ID")
	}
}

func TestSegment_PureRename(t *testing.T) {
	diff := `diff --git a/old/name.go b/new/name.go
similarity index 100%
rename from old/name.go
rename to new/name.go
`
	hunks, err := Segment(diff)
	if err != nil {
		t.Fatalf("Segment returned error: %v", err)
	}
	if len(hunks) != 1 {
		t.Fatalf("expected 1 hunk, got %d", len(hunks))
	}
	h := hunks[0]
	if h.Kind != KindRenamed {
		t.Errorf("Kind = %q, want renamed", h.Kind)
	}
	if h.FilePath != "new/name.go" || h.OldPath != "old/name.go" {
		t.Errorf("paths = %q <- %q, want new/name.go <- old/name.go", h.FilePath, h.OldPath)
	}
	if len(h.Added) != 0 || len(h.Removed) != 0 {
		t.Error("pure rename should yield an empty hunk")
	}
}

func TestSegment_ModeOnlyChange(t *testing.T) {
	diff := `diff --git a/run.sh b/run.sh
old mode 100644
new mode 100755
`
	hunks, err := Segment(diff)
	if err != nil {
		t.Fatalf("Segment returned error: %v", err)
	}
	if len(hunks) != 1 {
		t.Fatalf("expected 1 hunk, got %d", len(hunks))
	}
	if hunks[0].FilePath != "run.sh" {
		t.Errorf("FilePath = %q, want run.sh", hunks[0].FilePath)
	}
	if len(hunks[0].Added) != 0 || len(hunks[0].Removed) != 0 {
		t.Error("mode-only change should yield an empty hunk")
	}
}

func TestSegment_HeaderOnlySections(t *testing.T) {
	// Binary and mode-only sections carry no ---/+++ lines; their paths
	// come from the "diff --git" header alone.
	diff := `diff --git a/assets/logo.png b/assets/logo.png
index 1234567..89abcde 100644
Binary files a/assets/logo.png and b/assets/logo.png differ
diff --git a/scripts/run.sh b/scripts/run.sh
old mode 100644
new mode 100755
`
	hunks, err := Segment(diff)
	if err != nil {
		t.Fatalf("Segment returned error: %v", err)
	}
	if len(hunks) != 2 {
		t.Fatalf("expected 2 hunks, got %d", len(hunks))
	}
	if hunks[0].FilePath != "assets/logo.png" || hunks[0].Kind != KindBinary {
		t.Errorf("hunk 0 = %s/%s, want assets/logo.png binary", hunks[0].FilePath, hunks[0].Kind)
	}
	if hunks[1].FilePath != "scripts/run.sh" || hunks[1].Kind != KindModified {
		t.Errorf("hunk 1 = %s/%s, want scripts/run.sh modified", hunks[1].FilePath, hunks[1].Kind)
	}
	for i, h := range hunks {
		if len(h.Added) != 0 || len(h.Removed) != 0 {
			t.Errorf("hunk %d should carry no content", i)
		}
	}
}

func TestParseGitHeader(t *testing.T) {
	tests := []struct {
		line    string
		wantOld string
		wantNew string
	}{
		{"diff --git a/main.go b/main.go", "main.go", "main.go"},
		{"diff --git a/old/name.go b/new/name.go", "old/name.go", "new/name.go"},
		{"diff --git a/dir/with space.txt b/dir/with space.txt", "dir/with space.txt", "dir/with space.txt"},
		{"diff --git garbage", "", ""},
	}
	for _, tt := range tests {
		gotOld, gotNew := parseGitHeader(tt.line)
		if gotOld != tt.wantOld || gotNew != tt.wantNew {
			t.Errorf("parseGitHeader(%q) = %q, %q, want %q, %q",
				tt.line, gotOld, gotNew, tt.wantOld, tt.wantNew)
		}
	}
}

func TestSegment_EmptyInput(t *testing.T) {
	for _, input := range []string{"", "   \n\n"} {
		hunks, err := Segment(input)
		if err != nil {
			t.Errorf("Segment(%q) returned error: %v", input, err)
		}
		if hunks != nil {
			t.Errorf("Segment(%q) = %d hunks, want none", input, len(hunks))
		}
	}
}

func TestSegment_Malformed(t *testing.T) {
	tests := []struct {
		name string
		diff string
	}{
		{"not a diff", "this is just some text\nwith multiple lines\n"},
		{
			"invalid hunk header",
			"diff --git a/f.go b/f.go\n--- a/f.go\n+++ b/f.go\n@@ bogus @@\n+x\n",
		},
		{
			"content before any file header",
			"+orphan line\ndiff --git a/f.go b/f.go\n--- a/f.go\n+++ b/f.go\n@@ -1 +1 @@\n-x\n+y\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Segment(tt.diff)
			if !errors.Is(err, ErrMalformedDiff) {
				t.Errorf("expected ErrMalformedDiff, got %v", err)
			}
		})
	}
}

func TestSegment_StableUniqueIDs(t *testing.T) {
	first, err := Segment(modifiedDiff)
	if err != nil {
		t.Fatalf("Segment returned error: %v", err)
	}
	second, err := Segment(modifiedDiff)
	if err != nil {
		t.Fatalf("Segment returned error: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("hunk counts differ across runs: %d vs %d", len(first), len(second))
	}
	seen := make(map[string]bool)
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("hunk %d ID not stable: %q vs %q", i, first[i].ID, second[i].ID)
		}
		if seen[first[i].ID] {
			t.Errorf("duplicate hunk ID %q", first[i].ID)
		}
		seen[first[i].ID] = true
	}
}

func TestSegment_NoNewlineMarker(t *testing.T) {
	diff := `diff --git a/end.txt b/end.txt
index 1234567..89abcde 100644
--- a/end.txt
+++ b/end.txt
@@ -1 +1 @@
-old ending
\ No newline at end of file
+new ending
\ No newline at end of file
`
	hunks, err := Segment(diff)
	if err != nil {
		t.Fatalf("Segment returned error: %v", err)
	}
	if len(hunks) != 1 {
		t.Fatalf("expected 1 hunk, got %d", len(hunks))
	}
	h := hunks[0]
	if len(h.Added) != 1 || len(h.Removed) != 1 {
		t.Fatalf("expected 1 added and 1 removed, got %d / %d", len(h.Added), len(h.Removed))
	}
	if h.Added[0].Text != "new ending" {
		t.Errorf("added text = %q, want %q", h.Added[0].Text, "new ending")
	}
}
