package index

import (
	"path/filepath"
	"testing"
	"time"
)

func TestOpenMemory(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	png, err := db.Get("missing")
	if err != nil {
		t.Fatal(err)
	}
	if png != nil {
		t.Fatalf("expected nil for missing key, got %d bytes", len(png))
	}

	if err := db.Put("k1", "pango", "alef", "run", []byte("image-bytes")); err != nil {
		t.Fatal(err)
	}
	png, err = db.Get("k1")
	if err != nil {
		t.Fatal(err)
	}
	if string(png) != "image-bytes" {
		t.Errorf("png: got %q, want %q", png, "image-bytes")
	}

	// Replacing keeps a single entry.
	if err := db.Put("k1", "pango", "alef", "run2", []byte("newer")); err != nil {
		t.Fatal(err)
	}
	stats, err := db.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Entries != 1 || stats.Bytes != int64(len("newer")) {
		t.Errorf("stats: got %+v", stats)
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rendercards", "cache.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Put("k", "xelatex", "x", "", []byte("png")); err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	// Reopening runs schema and migrations against existing tables.
	db, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	png, err := db.Get("k")
	if err != nil {
		t.Fatal(err)
	}
	if string(png) != "png" {
		t.Errorf("png after reopen: got %q", png)
	}
}

func TestPrune(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	db.Put("a", "pango", "a", "", []byte("1"))
	db.Put("b", "pango", "b", "", []byte("22"))

	n, err := db.Prune(time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("pruned %d fresh entries, want 0", n)
	}

	n, err = db.Prune(time.Now().Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("pruned %d entries, want 2", n)
	}
}

func TestRuns(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	id, err := db.StartRun("letters.json", "pango")
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("expected a run id")
	}
	if err := db.FinishRun(id, 10, 1, 4); err != nil {
		t.Fatal(err)
	}

	runs, err := db.RecentRuns(5)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	r := runs[0]
	if r.Deck != "letters.json" || r.Total != 10 || r.Failed != 1 || r.Cached != 4 {
		t.Errorf("run: got %+v", r)
	}
	if r.FinishedAt.IsZero() {
		t.Error("finished run should have a finish time")
	}

	stats, _ := db.Stats()
	if stats.Runs != 1 {
		t.Errorf("stats.Runs = %d, want 1", stats.Runs)
	}
}
