package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestWatcherRequiresDocuments(t *testing.T) {
	_, err := New(nil, time.Millisecond, zerolog.Nop(), func() {})
	if err == nil {
		t.Fatal("expected error for empty document list")
	}
}

func TestWatcherDebouncesChanges(t *testing.T) {
	tmpDir := t.TempDir()
	doc := filepath.Join(tmpDir, "schema.yaml")
	if err := os.WriteFile(doc, []byte("modules: []\n"), 0644); err != nil {
		t.Fatal(err)
	}

	fired := make(chan struct{}, 8)
	w, err := New([]string{doc}, 50*time.Millisecond, zerolog.Nop(), func() {
		fired <- struct{}{}
	})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	w.Start()
	defer w.Stop()

	// A burst of writes should collapse into one notification.
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(doc, []byte("modules: []\n"), 0644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("change notification never arrived")
	}

	select {
	case <-fired:
		t.Error("burst produced more than one notification")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	tmpDir := t.TempDir()
	doc := filepath.Join(tmpDir, "schema.yaml")
	other := filepath.Join(tmpDir, "notes.txt")
	if err := os.WriteFile(doc, []byte("modules: []\n"), 0644); err != nil {
		t.Fatal(err)
	}

	fired := make(chan struct{}, 1)
	w, err := New([]string{doc}, 20*time.Millisecond, zerolog.Nop(), func() {
		fired <- struct{}{}
	})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	w.Start()
	defer w.Stop()

	if err := os.WriteFile(other, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-fired:
		t.Error("unrelated file triggered a notification")
	case <-time.After(200 * time.Millisecond):
	}
}
