// internal/cards/pack.go
package cards

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Pack is a named, immutable bundle of question and answer cards in one
// language. Packs are loaded once at process start and shared by reference
// across every room's selection.
type Pack struct {
	Name        string
	Description string
	Language    string
	Questions   []Card
	Answers     []Card
}

// Meta is the client-facing pack descriptor. Card contents are never part
// of pack metadata payloads.
type Meta struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Language    string `json:"language"`
}

// Meta returns the pack's client-facing descriptor.
func (p *Pack) Meta() Meta {
	return Meta{Name: p.Name, Description: p.Description, Language: p.Language}
}

// packFile is the on-disk format: one JSON file per pack.
type packFile struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Language    string   `json:"language"`
	Questions   []string `json:"questions"`
	Answers     []string `json:"answers"`
}

// Library holds every loaded pack, keyed by name.
type Library struct {
	packs []*Pack
}

// LoadLibrary reads all *.json pack files from dir. Files that fail to
// parse are skipped with a warning so one bad pack cannot stop startup.
func LoadLibrary(dir string, logger *logrus.Logger) (*Library, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read card pack directory %s: %w", dir, err)
	}

	lib := &Library{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		pack, err := loadPack(path)
		if err != nil {
			logger.Warnf("skipping card pack %s: %v", path, err)
			continue
		}
		lib.packs = append(lib.packs, pack)
		logger.Infof("loaded card pack %q (%s): %d questions, %d answers",
			pack.Name, pack.Language, len(pack.Questions), len(pack.Answers))
	}
	return lib, nil
}

func loadPack(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file packFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid pack file: %w", err)
	}

	pack := &Pack{
		Name:        file.Name,
		Description: file.Description,
		Language:    file.Language,
		Questions:   make([]Card, 0, len(file.Questions)),
		Answers:     make([]Card, 0, len(file.Answers)),
	}
	for _, q := range file.Questions {
		pack.Questions = append(pack.Questions, NewCard(q))
	}
	for _, a := range file.Answers {
		pack.Answers = append(pack.Answers, NewCard(a))
	}
	return pack, nil
}

// NewLibrary builds a library from already-constructed packs. Used by tests.
func NewLibrary(packs ...*Pack) *Library {
	return &Library{packs: packs}
}

// All returns every loaded pack.
func (l *Library) All() []*Pack {
	return l.packs
}

// Meta returns descriptors for every loaded pack.
func (l *Library) Meta() []Meta {
	metas := make([]Meta, len(l.packs))
	for i, p := range l.packs {
		metas[i] = p.Meta()
	}
	return metas
}

// ByLanguage returns the packs whose language matches, case-insensitively.
func (l *Library) ByLanguage(language string) []*Pack {
	var matched []*Pack
	for _, p := range l.packs {
		if strings.EqualFold(p.Language, language) {
			matched = append(matched, p)
		}
	}
	return matched
}

// Find returns the loaded packs whose names appear in the given list,
// preserving library order. Unknown names are ignored.
func (l *Library) Find(names []string) []*Pack {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	var matched []*Pack
	for _, p := range l.packs {
		if wanted[p.Name] {
			matched = append(matched, p)
		}
	}
	return matched
}
