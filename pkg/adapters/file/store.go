package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/njchilds90/termwise"
	"github.com/njchilds90/termwise/pkg/ports"
	"gopkg.in/yaml.v3"
)

const ext = ".yaml"

// Store implements ports.SessionStore on the local filesystem, one YAML
// document per session.
type Store struct {
	BasePath string
}

var _ ports.SessionStore = (*Store)(nil)

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".termwise/sessions".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".termwise", "sessions")
	}
	return &Store{BasePath: basePath}
}

// document is the on-disk shape of a session. Equations use the tagged map
// form of Equation.ToMap so the YAML stays readable.
type document struct {
	ID        string            `yaml:"id"`
	Variables []string          `yaml:"variables"`
	NextID    int               `yaml:"next_id"`
	Solution  map[string]string `yaml:"solution,omitempty"`
	Equations []map[string]any  `yaml:"equations"`
	CreatedAt time.Time         `yaml:"created_at"`
	UpdatedAt time.Time         `yaml:"updated_at"`
}

func toDocument(s *termwise.Session) document {
	doc := document{
		ID:        s.ID,
		Variables: s.Variables,
		NextID:    s.NextID,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	if len(s.Solution) > 0 {
		doc.Solution = make(map[string]string, len(s.Solution))
		for name, v := range s.Solution {
			doc.Solution[name] = v.String()
		}
	}
	for _, eq := range s.Equations {
		doc.Equations = append(doc.Equations, eq.ToMap())
	}
	return doc
}

func (d document) session() (*termwise.Session, error) {
	s := &termwise.Session{
		ID:        d.ID,
		Variables: d.Variables,
		NextID:    d.NextID,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if len(d.Solution) > 0 {
		s.Solution = make(map[string]termwise.Rational, len(d.Solution))
		for name, text := range d.Solution {
			v, err := termwise.ParseRational(text)
			if err != nil {
				return nil, fmt.Errorf("solution %s: %w", name, err)
			}
			s.Solution[name] = v
		}
	}
	for _, m := range d.Equations {
		eq, err := termwise.EquationFromMap(m)
		if err != nil {
			return nil, err
		}
		s.Equations = append(s.Equations, eq)
	}
	return s, nil
}

// path maps an ID to its document. IDs that could name a file outside
// BasePath are rejected.
func (s *Store) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") || filepath.Base(id) != id {
		return "", fmt.Errorf("%w: %q", ports.ErrInvalidSessionID, id)
	}
	return filepath.Join(s.BasePath, id+ext), nil
}

// Save writes the session atomically: a temp file in the same directory is
// synced and then renamed over the destination.
func (s *Store) Save(ctx context.Context, sess *termwise.Session) error {
	dest, err := s.path(sess.ID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure session directory: %w", err)
	}

	data, err := yaml.Marshal(toDocument(sess))
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	tmp, err := os.CreateTemp(s.BasePath, "tmp-"+sess.ID+"-*"+ext)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, id string) (*termwise.Session, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ports.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session %s: %w", id, err)
	}
	sess, err := doc.session()
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}
	return sess, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ext || strings.HasPrefix(name, "tmp-") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ext))
	}
	slices.Sort(ids)
	return ids, nil
}
