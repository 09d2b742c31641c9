package template

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"

	"singmerge/internal/domain/document"
	"singmerge/internal/shared/logger"
)

// TemplateLoader loads the default sing-box template from disk.
// The file is read once; Get hands out a fresh copy per call so merges never share a buffer.
type TemplateLoader struct {
	mu      sync.RWMutex
	content []byte
	path    string
	logger  logger.Interface
}

// NewTemplateLoader creates a new template loader
func NewTemplateLoader(path string, logger logger.Interface) *TemplateLoader {
	return &TemplateLoader{
		path:   path,
		logger: logger,
	}
}

// Load reads and checks the template file.
// A missing file is not an error; callers must then supply a template per request.
func (l *TemplateLoader) Load() error {
	if l.path == "" {
		l.logger.Warnw("no template path configured, templates must be supplied per request")
		return nil
	}

	content, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.logger.Warnw("template file not found, templates must be supplied per request", "path", l.path)
			return nil
		}
		return fmt.Errorf("failed to read template file: %w", err)
	}

	doc, err := document.Load(content)
	if err != nil {
		return fmt.Errorf("template %s is unusable: %w", l.path, err)
	}

	l.mu.Lock()
	l.content = content
	l.mu.Unlock()

	l.logger.Infow("loaded config template",
		"file", l.path,
		"size", len(content),
		"outbounds", len(doc.Entries()),
	)
	return nil
}

// Get returns a copy of the template content
// Returns (content, true) if a template was loaded, (nil, false) otherwise
func (l *TemplateLoader) Get() ([]byte, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.content == nil {
		return nil, false
	}
	return bytes.Clone(l.content), true
}

// HasTemplate checks if a template was loaded
func (l *TemplateLoader) HasTemplate() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.content != nil
}

// Path returns the configured template path
func (l *TemplateLoader) Path() string {
	return l.path
}
