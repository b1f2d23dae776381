package curriculum

import (
	"bytes"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalogYAML []byte

// Loader reads catalog documents from a file or a directory tree and
// builds them into a single Catalog.
type Loader struct {
	rootDir string
	builder *Builder
	files   []string
}

// NewLoader loads every catalog document under rootDir (or the single file
// rootDir names) and builds the catalog.
func NewLoader(rootDir string) (*Loader, *Catalog, error) {
	l := &Loader{
		rootDir: rootDir,
		builder: NewBuilder(),
	}

	if err := l.loadAll(); err != nil {
		return nil, nil, fmt.Errorf("loading catalog: %w", err)
	}
	if len(l.files) == 0 {
		return nil, nil, fmt.Errorf("loading catalog: no catalog documents under %s", rootDir)
	}

	cat, err := l.builder.Build()
	if err != nil {
		return nil, nil, err
	}

	slog.Info("catalog loaded", "path", rootDir, "files", len(l.files), "courses", cat.Len())
	return l, cat, nil
}

// LoadCatalog is NewLoader for callers that only need the catalog. The
// contributing documents are logged at debug level.
func LoadCatalog(path string) (*Catalog, error) {
	l, cat, err := NewLoader(path)
	if err != nil {
		return nil, err
	}
	slog.Debug("catalog documents", "path", path, "files", l.Files())
	return cat, nil
}

// Default builds the bundled default high-school catalog.
func Default() (*Catalog, error) {
	b := NewBuilder()
	if _, err := loadDocument(b, defaultCatalogYAML); err != nil {
		return nil, fmt.Errorf("default catalog: %w", err)
	}
	return b.Build()
}

// Files returns the documents that contributed to the catalog.
func (l *Loader) Files() []string {
	return append([]string{}, l.files...)
}

func (l *Loader) loadAll() error {
	return filepath.Walk(l.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}
		return l.loadFile(path)
	})
}

func (l *Loader) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	ok, err := loadDocument(l.builder, data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if !ok {
		slog.Debug("skipping non-catalog YAML", "path", path)
		return nil
	}
	l.files = append(l.files, path)
	return nil
}

// loadDocument applies one YAML document to b. It reports false for YAML
// that is not a catalog document (no id).
func loadDocument(b *Builder, data []byte) (bool, error) {
	var partial struct {
		ID string `yaml:"id"`
	}
	if err := yaml.Unmarshal(data, &partial); err != nil {
		return false, fmt.Errorf("parsing YAML: %w", err)
	}
	if partial.ID == "" {
		return false, nil
	}

	if err := ValidateDocument(data); err != nil {
		return false, err
	}

	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return false, fmt.Errorf("decoding catalog %q: %w", partial.ID, err)
	}

	Apply(b, doc)
	return true, nil
}

// Apply declares everything in doc on b.
func Apply(b *Builder, doc Document) {
	b.RecordCredits(doc.Credits...)

	for _, t := range doc.Tracks {
		names := make([]string, len(t.Courses))
		for i, c := range t.Courses {
			names[i] = c.Name
		}
		built := b.TrackMaker(t.Name, t.Credit, TrackOptions{AllHonors: t.AllHonors, NoCredit: t.NoCredit}, names...)
		for i, c := range t.Courses {
			if c.Honors || c.HonorsTitle != "" {
				built[i].Honors(c.HonorsTitle)
			}
			if c.MinGrade != 0 {
				built[i].MinGrade(c.MinGrade)
			}
		}
	}

	for _, c := range doc.Courses {
		var cb *CourseBuilder
		switch c.Kind {
		case "elective":
			cb = b.NewElective(c.Name)
		case "special":
			cb = b.NewSpecial(c.Name)
		default:
			cb = b.NewCourse(c.Name)
		}
		if c.MinGrade != 0 {
			cb.MinGrade(c.MinGrade)
		}
		if c.Honors || c.HonorsTitle != "" {
			cb.Honors(c.HonorsTitle)
		}
		if c.Worth != nil || len(c.Credits) > 0 {
			worth := 1.0
			if c.Worth != nil {
				worth = *c.Worth
			}
			cb.Credit(worth, c.Credits...)
		}
		if len(c.Requires) > 0 {
			cb.Req(c.Requires...)
		}
		if c.Track != nil {
			cb.Track(c.Track.Name, c.Track.Level)
		}
	}

	if doc.Graduation != nil {
		b.RecordGraduationRequirements(doc.Graduation.Requirements)
		if doc.Graduation.Total > 0 {
			b.RecordTotalRequirement(doc.Graduation.Total)
		}
	}
}
