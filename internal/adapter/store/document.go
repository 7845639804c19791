package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"exchange-rate-monitor/internal/domain/model"
	"exchange-rate-monitor/internal/domain/ports"
	"exchange-rate-monitor/pkg/logger"
)

// GitStore persists the conditions document as one YAML file, committed to
// the enclosing git repository when there is one. Save refuses to overwrite
// a file that changed since Load: the document is also hand-edited, and a
// lost human edit is worse than a retried run.
type GitStore struct {
	dir  string
	file string
	log  *logger.Logger

	// Revision of the file content observed at Load; empty when the file
	// did not exist yet.
	loadedRev string
}

func NewGitStore(dir, file string, log *logger.Logger) *GitStore {
	return &GitStore{
		dir:  dir,
		file: file,
		log:  log,
	}
}

func (s *GitStore) path() string {
	return filepath.Join(s.dir, s.file)
}

func (s *GitStore) Load(ctx context.Context) (*model.Document, error) {
	raw, err := os.ReadFile(s.path())
	if os.IsNotExist(err) {
		s.log.Info("Conditions document not found, starting empty", "path", s.path())
		s.loadedRev = ""
		return &model.Document{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading conditions document")
	}

	var doc model.Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "decoding conditions document")
	}

	s.loadedRev = revision(raw)
	s.log.Debug("Loaded conditions document", "path", s.path(),
		"currencies", len(doc.Currencies), "revision", short(s.loadedRev))
	return &doc, nil
}

func (s *GitStore) Save(ctx context.Context, doc *model.Document) error {
	current := ""
	if raw, err := os.ReadFile(s.path()); err == nil {
		current = revision(raw)
	} else if !os.IsNotExist(err) {
		return errors.Wrap(err, "checking conditions document")
	}
	if current != s.loadedRev {
		return errors.Wrapf(ports.ErrConflict, "have %s, loaded %s", short(current), short(s.loadedRev))
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "encoding conditions document")
	}

	// Temp-file rename keeps the previous revision intact on a crash
	// mid-write.
	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, out, 0o644); err != nil {
		return errors.Wrap(err, "writing conditions document")
	}
	if err := os.Rename(tmp, s.path()); err != nil {
		return errors.Wrap(err, "replacing conditions document")
	}
	s.loadedRev = revision(out)

	if err := s.commit(); err != nil {
		return errors.Wrap(err, "committing conditions document")
	}
	s.log.Info("Saved conditions document", "path", s.path(), "revision", short(s.loadedRev))
	return nil
}

// commit records the new revision in the enclosing git repository; a plain
// directory without one still works, just without history.
func (s *GitStore) commit() error {
	repo, err := git.PlainOpen(s.dir)
	if err == git.ErrRepositoryNotExists {
		s.log.Debug("Store directory is not a git repository, skipping commit", "dir", s.dir)
		return nil
	}
	if err != nil {
		return err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return err
	}
	if _, err := wt.Add(s.file); err != nil {
		return err
	}
	now := time.Now()
	_, err = wt.Commit(fmt.Sprintf("Update conditions (%s)", now.Format(time.RFC3339)), &git.CommitOptions{
		Author: &object.Signature{
			Name:  "exchange-rate-monitor",
			Email: "monitor@localhost",
			When:  now,
		},
	})
	return err
}

func revision(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func short(rev string) string {
	if rev == "" {
		return "<none>"
	}
	return rev[:8]
}
