package identity_test

import (
	"errors"
	"path/filepath"
	"testing"

	"mimic/internal/identity"
	"mimic/internal/services"
	"mimic/internal/testsupport"
)

func TestCatalogScansIdentities(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.SeedIdentity(t, cfg, "ada_lovelace", "face1.jpg", "face2.png")
	testsupport.SeedIdentity(t, cfg, "bob", "portrait.webp")

	catalog, err := identity.NewCatalog(cfg.Paths.IdentitiesDir)
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}

	identities := catalog.List()
	if len(identities) != 2 {
		t.Fatalf("expected 2 identities, got %d", len(identities))
	}
	if identities[0].ID != "ada_lovelace" || identities[1].ID != "bob" {
		t.Fatalf("expected sorted identities, got %#v", identities)
	}
	if identities[0].Name != "Ada Lovelace" {
		t.Fatalf("expected title-cased display name, got %q", identities[0].Name)
	}
	if len(identities[0].Images) != 2 {
		t.Fatalf("expected 2 images, got %v", identities[0].Images)
	}
	if identities[0].Audio != "voice.wav" {
		t.Fatalf("expected voice sample, got %q", identities[0].Audio)
	}
}

func TestCatalogSkipsIncompleteIdentities(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	// Images but no audio.
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.IdentitiesDir, "mute", "face.jpg"), 8)
	// Audio but no images.
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.IdentitiesDir, "faceless", "voice.wav"), 8)
	// Stray file at the top level.
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.IdentitiesDir, "readme.txt"), 8)

	catalog, err := identity.NewCatalog(cfg.Paths.IdentitiesDir)
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}
	if got := catalog.List(); len(got) != 0 {
		t.Fatalf("expected no usable identities, got %#v", got)
	}
}

func TestCatalogMissingDirectoryIsEmpty(t *testing.T) {
	catalog, err := identity.NewCatalog(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}
	if got := catalog.List(); len(got) != 0 {
		t.Fatalf("expected empty catalog, got %#v", got)
	}
}

func TestCatalogRefreshPicksUpNewIdentity(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	catalog, err := identity.NewCatalog(cfg.Paths.IdentitiesDir)
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}
	if len(catalog.List()) != 0 {
		t.Fatal("expected empty catalog before refresh")
	}

	testsupport.SeedIdentity(t, cfg, "carol", "face.jpg")
	if err := catalog.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if _, err := catalog.Get("carol"); err != nil {
		t.Fatalf("expected carol after refresh, got %v", err)
	}
}

func TestCatalogResolution(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.SeedIdentity(t, cfg, "alice", "face.jpg")

	catalog, err := identity.NewCatalog(cfg.Paths.IdentitiesDir)
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}

	imagePath, err := catalog.ResolveImagePath("alice", "face.jpg")
	if err != nil {
		t.Fatalf("ResolveImagePath failed: %v", err)
	}
	want := filepath.Join(cfg.Paths.IdentitiesDir, "alice", "face.jpg")
	if imagePath != want {
		t.Fatalf("expected %s, got %s", want, imagePath)
	}

	audioPath, err := catalog.ResolveAudioPath("alice")
	if err != nil {
		t.Fatalf("ResolveAudioPath failed: %v", err)
	}
	if audioPath != filepath.Join(cfg.Paths.IdentitiesDir, "alice", "voice.wav") {
		t.Fatalf("unexpected audio path %s", audioPath)
	}

	if _, err := catalog.ResolveImagePath("alice", "other.jpg"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown image, got %v", err)
	}
	if _, err := catalog.ResolveImagePath("nobody", "face.jpg"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown identity, got %v", err)
	}
	if _, err := catalog.ResolveAudioPath("nobody"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
