package manifest

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/nguyentantai21042004/audiobook-flow/internal/domain"
)

// Manifest describes one audiobook batch: the book plus its ordered chapters.
// Manifests are the ingestion boundary; whatever produced them (spreadsheet
// export, script, hand editing) is outside the pipeline.
type Manifest struct {
	Book     BookInfo  `yaml:"book"`
	Chapters []Chapter `yaml:"chapters"`
}

type BookInfo struct {
	Title  string `yaml:"title"`
	Author string `yaml:"author"`
}

type Chapter struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	Part  int    `yaml:"part"`
	Text  string `yaml:"text"`
}

// Load reads and validates a YAML chapter manifest
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("validate manifest: %w", err)
	}

	return &m, nil
}

func (m *Manifest) Validate() error {
	if len(m.Chapters) == 0 {
		return fmt.Errorf("manifest has no chapters")
	}

	seenIDs := make(map[string]bool, len(m.Chapters))
	seenNames := make(map[string]string, len(m.Chapters))

	for i, ch := range m.Chapters {
		if ch.ID == "" {
			return fmt.Errorf("chapter %d: id is required", i+1)
		}
		if ch.Title == "" {
			return fmt.Errorf("chapter %s: title is required", ch.ID)
		}
		if strings.TrimSpace(ch.Text) == "" {
			return fmt.Errorf("chapter %s: text is required", ch.ID)
		}
		if ch.Part == 0 {
			m.Chapters[i].Part = 1
		}

		if seenIDs[ch.ID] {
			return fmt.Errorf("duplicate chapter id %q", ch.ID)
		}
		seenIDs[ch.ID] = true

		name := m.Chapters[i].Task().BaseName()
		if other, ok := seenNames[name]; ok {
			return fmt.Errorf("chapters %s and %s resolve to the same filename %q", other, ch.ID, name)
		}
		seenNames[name] = ch.ID
	}

	return nil
}

// Task converts a manifest chapter into its batch task
func (c Chapter) Task() domain.ChapterTask {
	return domain.ChapterTask{
		ID:    c.ID,
		Title: c.Title,
		Part:  c.Part,
		Text:  c.Text,
	}
}

// Tasks returns the ordered chapter tasks of the manifest
func (m *Manifest) Tasks() []domain.ChapterTask {
	tasks := make([]domain.ChapterTask, 0, len(m.Chapters))
	for _, ch := range m.Chapters {
		tasks = append(tasks, ch.Task())
	}
	return tasks
}

// BaseName returns the sanitized directory name for the book's outputs
func (m *Manifest) BaseName() string {
	var b strings.Builder
	for _, r := range m.Book.Title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}

	name := strings.TrimSpace(b.String())
	if name == "" {
		name = "audiobook"
	}
	return name
}
