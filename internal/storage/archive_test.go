// internal/storage/archive_test.go
package storage

import (
	"testing"

	"github.com/weblife-game/weblife/internal/models"
)

func testSession(id string) *models.Session {
	return &models.Session{
		ID:        id,
		State:     models.StateGameOver,
		Character: models.NewCharacter("Alex", "Silva", "male", "USA", "Texas", "Austin"),
		Logs: []models.LogEntry{
			{Year: 18, Event: models.GlobalEventNormal, Message: "born", Severity: models.LogInfo},
		},
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	archive, err := NewArchiveStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewArchiveStore failed: %v", err)
	}

	session := testSession("abc-123")
	session.Character.Age = 42

	if err := archive.Save(session); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := archive.Load("abc-123")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.ID != "abc-123" || loaded.Character.Age != 42 {
		t.Errorf("loaded = %s age %d, want abc-123 age 42", loaded.ID, loaded.Character.Age)
	}
	if len(loaded.Logs) != 1 || loaded.Logs[0].Message != "born" {
		t.Errorf("journal did not survive the round trip: %+v", loaded.Logs)
	}
}

func TestArchiveSaveOverwrites(t *testing.T) {
	archive, err := NewArchiveStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewArchiveStore failed: %v", err)
	}

	session := testSession("abc-123")
	if err := archive.Save(session); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	session.Character.Age = 99
	if err := archive.Save(session); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	loaded, err := archive.Load("abc-123")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Character.Age != 99 {
		t.Errorf("Age = %d, want the latest snapshot", loaded.Character.Age)
	}
}

func TestArchiveListAndDelete(t *testing.T) {
	archive, err := NewArchiveStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewArchiveStore failed: %v", err)
	}

	for _, id := range []string{"b", "a", "c"} {
		if err := archive.Save(testSession(id)); err != nil {
			t.Fatalf("Save(%s) failed: %v", id, err)
		}
	}

	ids, err := archive.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(ids) != 3 || ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
		t.Errorf("List = %v, want [a b c]", ids)
	}

	if err := archive.Delete("b"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := archive.Load("b"); err == nil {
		t.Error("deleted session still loadable")
	}

	ids, err = archive.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("List after delete = %v, want 2 entries", ids)
	}
}

func TestArchiveRejectsEmptySession(t *testing.T) {
	archive, err := NewArchiveStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewArchiveStore failed: %v", err)
	}
	if err := archive.Save(nil); err == nil {
		t.Error("Save(nil) should fail")
	}
	if err := archive.Save(&models.Session{}); err == nil {
		t.Error("Save of a session without ID should fail")
	}
}
