// Package templates owns the system template registry and resolves the section skeleton
// of a document from system or owner-scoped user templates.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
	"github.com/yungbote/vorhaben-backend/internal/platform/logger"
)

//go:embed system/*.yaml
var builtin embed.FS

// Registry maps system template names to section skeletons. Built-in templates are embedded;
// an optional directory can add or override templates and is re-read on Reload.
type Registry struct {
	log *logger.Logger
	dir string

	mu        sync.RWMutex
	templates map[string]documents.TemplateSpec
}

func NewRegistry(log *logger.Logger, dir string) (*Registry, error) {
	r := &Registry{
		log: log.With("service", "TemplateRegistry"),
		dir: strings.TrimSpace(dir),
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload rebuilds the registry. A broken override file fails the reload and keeps the previous set.
func (r *Registry) Reload() error {
	next := map[string]documents.TemplateSpec{}
	if err := loadFS(builtin, "system", next); err != nil {
		return fmt.Errorf("load builtin templates: %w", err)
	}
	if r.dir != "" {
		if _, err := os.Stat(r.dir); err == nil {
			if err := loadFS(os.DirFS(r.dir), ".", next); err != nil {
				return fmt.Errorf("load templates from %s: %w", r.dir, err)
			}
		} else {
			r.log.Warn("template directory not readable, using builtin templates only", "dir", r.dir, "error", err)
		}
	}
	if _, ok := next[documents.DefaultTemplateName]; !ok {
		return fmt.Errorf("default template %q missing from registry", documents.DefaultTemplateName)
	}

	r.mu.Lock()
	r.templates = next
	r.mu.Unlock()
	r.log.Info("template registry loaded", "count", len(next), "names", strings.Join(r.Names(), ","))
	return nil
}

func loadFS(fsys fs.FS, root string, into map[string]documents.TemplateSpec) error {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return err
	}
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		b, err := fs.ReadFile(fsys, filepath.ToSlash(filepath.Join(root, e.Name())))
		if err != nil {
			return err
		}
		var spec documents.TemplateSpec
		if err := yaml.Unmarshal(b, &spec); err != nil {
			return fmt.Errorf("%s: %w", e.Name(), err)
		}
		if strings.TrimSpace(spec.Name) == "" {
			spec.Name = strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		}
		spec.Source = documents.TemplateSourceSystem
		if err := ValidateSpec(spec.Name, spec); err != nil {
			return err
		}
		into[spec.Name] = spec
	}
	return nil
}

// Get returns a copy of the named system template.
func (r *Registry) Get(name string) (documents.TemplateSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.templates[strings.TrimSpace(name)]
	if !ok {
		return documents.TemplateSpec{}, false
	}
	spec.Sections = append([]documents.TemplateSection(nil), spec.Sections...)
	return spec, true
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.templates))
	for name := range r.templates {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
