package identity

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFirstLoadMintsAndPersists(t *testing.T) {
	store := NewStore(t.TempDir())

	id, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if id.PlayerID == "" {
		t.Fatal("expected a freshly minted player id")
	}
	if id.Version != identityVersion {
		t.Fatalf("version = %d, want %d", id.Version, identityVersion)
	}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("reading persisted identity: %v", err)
	}
	if !strings.Contains(string(data), id.PlayerID) {
		t.Fatalf("persisted file does not contain player id %q:\n%s", id.PlayerID, data)
	}
}

func TestLoadIsStableAcrossRuns(t *testing.T) {
	store := NewStore(t.TempDir())

	first, err := store.Load()
	if err != nil {
		t.Fatalf("first Load: %v", err)
	}
	second, err := store.Load()
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if first.PlayerID != second.PlayerID {
		t.Fatalf("player id changed across loads: %q then %q", first.PlayerID, second.PlayerID)
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	if err := os.WriteFile(store.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("writing corrupt file: %v", err)
	}

	if _, err := store.Load(); err == nil {
		t.Fatal("expected an error for a corrupt identity file")
	}
}

func TestLoadRemintsEmptyPlayerID(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	if err := os.WriteFile(store.Path(), []byte(`{"version":1,"playerId":""}`), 0o600); err != nil {
		t.Fatalf("seeding empty identity: %v", err)
	}

	id, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if id.PlayerID == "" {
		t.Fatal("expected a reminted player id")
	}

	again, err := store.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.PlayerID != id.PlayerID {
		t.Fatalf("reminted id not persisted: %q then %q", id.PlayerID, again.PlayerID)
	}
}

func TestSaveCleansUpTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	if err := store.Save(&Identity{PlayerID: "abc"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("leftover temp file %s", filepath.Join(dir, e.Name()))
		}
	}
}
