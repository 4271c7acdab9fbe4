package project

import (
	"errors"
	"regexp"
	"testing"

	"github.com/pagecraft/backend/internal/models"
	"github.com/pagecraft/backend/internal/storage"
	"github.com/pagecraft/backend/internal/testutil"
)

func testSnapshot(ids ...string) *models.Snapshot {
	store := models.NewComponentStore()
	for i, id := range ids {
		store.Set(&models.Component{
			ID:         id,
			Type:       models.TypeText,
			Dimensions: models.Dimensions{Width: 200, Height: 40},
			ZIndex:     i + 1,
			Props:      map[string]any{"content": id},
			Metadata:   models.Metadata{Version: 1},
		})
	}
	return &models.Snapshot{
		ID:         "snap-1",
		Components: store,
		Dimensions: models.CanvasSize{Width: 1200, Height: 800},
		Zoom:       1,
	}
}

// testManager returns a manager with a deterministic clock and the storage
// manager backing it.
func testManager() (*Manager, *storage.Manager, *testutil.MockBackend) {
	backend := testutil.NewMockBackend()
	store := storage.NewManager(backend, 0)
	m := NewManager(store)
	clock := int64(1700000000000)
	m.now = func() int64 { clock += 1000; return clock }
	return m, store, backend
}

var projectIDRe = regexp.MustCompile(`^\d+-[0-9a-f]{8}$`)

func TestNewProject(t *testing.T) {
	m, _, _ := testManager()
	p := m.NewProject("Landing Page", "homepage draft", testSnapshot("a", "b"))

	if !projectIDRe.MatchString(p.ID) {
		t.Errorf("id %q does not match <ms>-<hex8>", p.ID)
	}
	if p.Version != ProjectVersion {
		t.Errorf("version = %q", p.Version)
	}
	if p.Metadata.ComponentCount != 2 {
		t.Errorf("component count = %d", p.Metadata.ComponentCount)
	}
	if p.Metadata.SizeEstimate <= 0 {
		t.Error("size estimate not computed")
	}
	if p.Metadata.Tags == nil {
		t.Error("tags set not initialized")
	}
}

func TestNewProjectClonesSnapshot(t *testing.T) {
	m, _, _ := testManager()
	snap := testSnapshot("a")
	p := m.NewProject("Isolated", "", snap)

	c, _ := snap.Components.Get("a")
	c.Props["content"] = "mutated"

	kept, _ := p.Canvas.Components.Get("a")
	if kept.Props["content"] != "a" {
		t.Error("project canvas aliased the input snapshot")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m, _, _ := testManager()
	p := m.NewProject("Landing Page", "", testSnapshot("a", "b"))

	if err := m.Save(p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	back, err := m.Load(p.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.Name != "Landing Page" || back.ID != p.ID {
		t.Errorf("identity lost: %+v", back)
	}
	ids := back.Canvas.Components.IDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("component order lost: %v", ids)
	}
}

func TestSaveRejectedByQuota(t *testing.T) {
	backend := testutil.NewMockBackend()
	store := storage.NewManager(backend, 64)
	m := NewManager(store)

	p := m.NewProject("Too Big", "", testSnapshot("a", "b", "c"))
	err := m.Save(p)
	if !errors.Is(err, ErrSaveFailed) {
		t.Errorf("err = %v, want ErrSaveFailed", err)
	}
}

func TestSaveNilProject(t *testing.T) {
	m, _, _ := testManager()
	if err := m.Save(nil); !errors.Is(err, ErrSaveFailed) {
		t.Errorf("err = %v", err)
	}
	if err := m.Save(&models.Project{}); !errors.Is(err, ErrSaveFailed) {
		t.Errorf("missing id err = %v", err)
	}
}

func TestLoadMissing(t *testing.T) {
	m, _, _ := testManager()
	_, err := m.Load("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestLoadRecoversUnwrappedPayload(t *testing.T) {
	m, store, _ := testManager()
	// A bare project object: no envelope, no integrity wrapper. The decode
	// path fails and data recovery salvages it.
	store.SetItem(storage.PrefixProjects+"p1", `{"id":"p1","name":"salvaged"}`)

	p, err := m.Load("p1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.ID != "p1" || p.Name != "salvaged" {
		t.Errorf("recovered = %+v", p)
	}
}

func TestLoadFallsBackToBackup(t *testing.T) {
	m, store, _ := testManager()
	p := m.NewProject("Precious", "", testSnapshot("a"))
	if err := m.Save(p); err != nil {
		t.Fatal(err)
	}
	if !m.Backup(p.ID) {
		t.Fatal("backup failed")
	}

	store.SetItem(storage.PrefixProjects+p.ID, "### hopeless garbage ###")

	back, err := m.Load(p.ID)
	if err != nil {
		t.Fatalf("Load via backup: %v", err)
	}
	if back.Name != "Precious" {
		t.Errorf("backup content wrong: %+v", back)
	}
}

func TestLoadUnrecoverable(t *testing.T) {
	m, store, _ := testManager()
	store.SetItem(storage.PrefixProjects+"p1", "### hopeless garbage ###")

	_, err := m.Load("p1")
	if !errors.Is(err, ErrUnrecoverable) {
		t.Errorf("err = %v, want ErrUnrecoverable", err)
	}
}

func TestDeleteRemovesEverything(t *testing.T) {
	m, store, backend := testManager()
	p := m.NewProject("Doomed", "", testSnapshot("a"))
	if err := m.Save(p); err != nil {
		t.Fatal(err)
	}
	m.Backup(p.ID)
	m.SaveAutosave(p.ID, p.Canvas)
	store.SetItem(storage.PrefixThumbnails+p.ID, "png-bytes")

	if !m.Delete(p.ID) {
		t.Fatal("delete failed")
	}
	if backend.Len() != 0 {
		t.Errorf("%d items survived deletion: %v", backend.Len(), store.GetAllKeys())
	}
}

func TestListNewestFirst(t *testing.T) {
	m, store, _ := testManager()
	for _, name := range []string{"first", "second", "third"} {
		p := m.NewProject(name, "", testSnapshot())
		if err := m.Save(p); err != nil {
			t.Fatal(err)
		}
	}
	// Unparsable metadata entries are skipped, not fatal.
	store.SetItem(storage.PrefixMetadata+"broken", "not json")

	infos := m.List()
	if len(infos) != 3 {
		t.Fatalf("listed %d projects", len(infos))
	}
	if infos[0].Name != "third" || infos[2].Name != "first" {
		t.Errorf("order wrong: %v, %v, %v", infos[0].Name, infos[1].Name, infos[2].Name)
	}
}

func TestBackupWithoutProject(t *testing.T) {
	m, _, _ := testManager()
	if m.Backup("nope") {
		t.Error("backup of a missing project reported success")
	}
	if _, err := m.RestoreBackup("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestAutosaveRoundTrip(t *testing.T) {
	m, _, _ := testManager()

	if !m.SaveAutosave("p1", testSnapshot("a", "b")) {
		t.Fatal("autosave failed")
	}
	snap := m.LoadAutosave("p1")
	if snap == nil {
		t.Fatal("autosave not found")
	}
	if snap.Components.Len() != 2 {
		t.Errorf("autosave lost components: %d", snap.Components.Len())
	}

	if m.LoadAutosave("missing") != nil {
		t.Error("missing autosave should return nil")
	}
}

func TestSaveUpdatesMetadataListing(t *testing.T) {
	m, _, _ := testManager()
	p := m.NewProject("Evolving", "", testSnapshot("a"))
	if err := m.Save(p); err != nil {
		t.Fatal(err)
	}

	p.Canvas.Components.Set(&models.Component{ID: "b", Type: models.TypeText, Props: map[string]any{}})
	if err := m.Save(p); err != nil {
		t.Fatal(err)
	}

	infos := m.List()
	if len(infos) != 1 {
		t.Fatalf("listed %d projects", len(infos))
	}
	if infos[0].ComponentCount != 2 {
		t.Errorf("metadata not refreshed: count = %d", infos[0].ComponentCount)
	}
}
