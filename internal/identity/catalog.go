package identity

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"mimic/internal/services"
)

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
}

var audioExtensions = map[string]struct{}{
	".wav":  {},
	".mp3":  {},
	".flac": {},
	".m4a":  {},
}

// Identity describes one reference persona: a set of face images and a voice
// sample, all residing in a single directory.
type Identity struct {
	ID     string
	Name   string
	Images []string
	Audio  string
}

// HasImage reports whether name is one of the identity's known images.
func (i Identity) HasImage(name string) bool {
	for _, image := range i.Images {
		if image == name {
			return true
		}
	}
	return false
}

// Catalog resolves identity assets on disk.
type Catalog struct {
	dir string

	mu         sync.RWMutex
	identities map[string]Identity
}

var titleCaser = cases.Title(language.English)

// NewCatalog scans dir and returns a catalog. A missing directory yields an
// empty catalog rather than an error; identities can appear later via
// Refresh.
func NewCatalog(dir string) (*Catalog, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("identities directory required")
	}
	c := &Catalog{dir: dir}
	if err := c.Refresh(); err != nil {
		return nil, err
	}
	return c, nil
}

// Refresh re-scans the identities directory. Callers invoke this after
// adding or removing identity assets.
func (c *Catalog) Refresh() error {
	discovered, err := scan(c.dir)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.identities = discovered
	c.mu.Unlock()
	return nil
}

// List returns all identities sorted by ID.
func (c *Catalog) List() []Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Identity, 0, len(c.identities))
	for _, id := range c.identities {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Get returns a single identity by ID.
func (c *Catalog) Get(id string) (Identity, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	identity, ok := c.identities[id]
	if !ok {
		return Identity{}, services.Wrap(services.ErrNotFound, "", "identity lookup", fmt.Sprintf("unknown identity %q", id), nil)
	}
	return identity, nil
}

// ResolveImagePath returns the full path to one of an identity's images.
func (c *Catalog) ResolveImagePath(id, imageName string) (string, error) {
	identity, err := c.Get(id)
	if err != nil {
		return "", err
	}
	if !identity.HasImage(imageName) {
		return "", services.Wrap(services.ErrNotFound, "", "identity lookup",
			fmt.Sprintf("image %q does not belong to identity %q", imageName, id), nil)
	}
	return filepath.Join(c.dir, id, imageName), nil
}

// ResolveAudioPath returns the full path to an identity's voice sample.
func (c *Catalog) ResolveAudioPath(id string) (string, error) {
	identity, err := c.Get(id)
	if err != nil {
		return "", err
	}
	return filepath.Join(c.dir, id, identity.Audio), nil
}

func scan(dir string) (map[string]Identity, error) {
	identities := make(map[string]Identity)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return identities, nil
		}
		return nil, fmt.Errorf("read identities directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		identity, ok, err := scanIdentity(dir, entry.Name())
		if err != nil {
			return nil, err
		}
		if ok {
			identities[entry.Name()] = identity
		}
	}
	return identities, nil
}

func scanIdentity(dir, name string) (Identity, bool, error) {
	files, err := os.ReadDir(filepath.Join(dir, name))
	if err != nil {
		return Identity{}, false, fmt.Errorf("read identity %s: %w", name, err)
	}

	var (
		images []string
		audio  string
	)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(file.Name()))
		if _, ok := imageExtensions[ext]; ok {
			images = append(images, file.Name())
			continue
		}
		// First audio file wins; extra samples are ignored.
		if _, ok := audioExtensions[ext]; ok && audio == "" {
			audio = file.Name()
		}
	}

	// An identity is usable only with at least one face image and a voice.
	if len(images) == 0 || audio == "" {
		return Identity{}, false, nil
	}
	sort.Strings(images)

	return Identity{
		ID:     name,
		Name:   displayName(name),
		Images: images,
		Audio:  audio,
	}, true, nil
}

func displayName(folder string) string {
	cleaned := strings.NewReplacer("_", " ", "-", " ").Replace(folder)
	return titleCaser.String(cleaned)
}
