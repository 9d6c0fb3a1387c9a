// Package gitstore provides a Git plumbing-based implementation of domain.RemoteStore.
package gitstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"gopkg.in/yaml.v3"

	"github.com/qcteam/teamcal/internal/domain"
	"github.com/qcteam/teamcal/internal/infra/crypto"
	"github.com/qcteam/teamcal/internal/infra/watch"
)

// Store implements domain.RemoteStore using Git plumbing (refs and blobs).
// Sharing happens through an origin remote; Fetch and Push move the refs.
//
// Data structure:
//
//	refs/<namespace>/
//	  meta      → blob (nextTaskID)
//	  tasks/
//	    <id>    → blob (task YAML)
type Store struct {
	repo      *git.Repository
	clock     domain.Clock
	log       domain.Logger
	poller    *watch.Poller
	sealer    *crypto.Sealer // nil when blobs are stored in plaintext
	repoPath  string // path to the repository, empty for in-memory repos
	namespace string // e.g., "teamcal"
	mu        sync.RWMutex
	push      bool
}

const logSync = "sync"

// Options configures a Store.
type Options struct {
	Clock         domain.Clock
	Logger        domain.Logger
	EncryptionKey string // hex AES-256 key or passphrase; empty stores plaintext YAML
	SealCacheDir  string // where the sealer keeps its nonce cache
	PollInterval  time.Duration
	Fetch         bool // fetch refs from origin before each poll
	Push          bool // push refs to origin after each write
}

// meta contains store metadata.
type meta struct {
	NextTaskID int `yaml:"nextTaskID"`
}

// New opens the repository at repoPath.
func New(repoPath, namespace string, opts Options) (*Store, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, fmt.Errorf("open git repository: %w", err)
	}
	s, err := NewWithRepo(repo, namespace, opts)
	if err != nil {
		return nil, err
	}
	s.repoPath = repoPath
	if opts.Fetch {
		s.poller.WithBefore(func(context.Context) error { return s.Fetch() })
	}
	s.push = opts.Push
	return s, nil
}

// NewWithRepo creates a new Store with an existing repository instance.
// Fetch and Push are unavailable without a repository path.
func NewWithRepo(repo *git.Repository, namespace string, opts Options) (*Store, error) {
	clock := opts.Clock
	if clock == nil {
		clock = domain.RealClock{}
	}
	if namespace == "" {
		namespace = domain.DefaultNamespace
	}
	log := opts.Logger
	if log == nil {
		log = domain.NopLogger{}
	}
	s := &Store{
		repo:      repo,
		namespace: namespace,
		clock:     clock,
		log:       log,
	}
	if opts.EncryptionKey != "" {
		key, err := crypto.KeyFromSecret(opts.EncryptionKey, namespace)
		if err != nil {
			return nil, err
		}
		sealer, err := crypto.NewSealer(key, opts.SealCacheDir)
		if err != nil {
			return nil, fmt.Errorf("create sealer: %w", err)
		}
		s.sealer = sealer
	}
	s.poller = watch.New(s.List, opts.PollInterval)
	return s, nil
}

// refPrefix returns the ref prefix for this namespace.
func (s *Store) refPrefix() string {
	return "refs/" + s.namespace + "/"
}

// taskRef returns the ref name for a task.
func (s *Store) taskRef(id string) plumbing.ReferenceName {
	return plumbing.ReferenceName(s.refPrefix() + "tasks/" + id)
}

// metaRef returns the ref name for metadata.
func (s *Store) metaRef() plumbing.ReferenceName {
	return plumbing.ReferenceName(s.refPrefix() + "meta")
}

// Get retrieves a task by ID.
func (s *Store) Get(id string) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getLocked(id)
}

func (s *Store) getLocked(id string) (*domain.Task, error) {
	ref, err := s.repo.Reference(s.taskRef(id), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task ref: %w", err)
	}
	return s.decodeTask(id, ref.Hash())
}

func (s *Store) decodeTask(id string, hash plumbing.Hash) (*domain.Task, error) {
	data, err := s.readBlob(hash)
	if err != nil {
		return nil, fmt.Errorf("read task: %w", err)
	}

	var task domain.Task
	if err := yaml.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("decode task: %w", err)
	}
	task.ID = id
	if task.Subtasks == nil {
		task.Subtasks = []domain.Subtask{}
	}
	return &task, nil
}

// List returns every task in collection order (date, createdAt).
func (s *Store) List(_ context.Context) ([]*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := []*domain.Task{}
	prefix := s.refPrefix() + "tasks/"

	refs, err := s.repo.References()
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}

	err = refs.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().String()
		if !strings.HasPrefix(name, prefix) || len(name) == len(prefix) {
			return nil
		}
		task, decodeErr := s.decodeTask(strings.TrimPrefix(name, prefix), ref.Hash())
		if decodeErr != nil {
			return decodeErr
		}
		tasks = append(tasks, task)
		return nil
	})
	if err != nil {
		return nil, err
	}

	domain.SortTasks(tasks)
	return tasks, nil
}

// Create stores a new task under the next numeric ID.
func (s *Store) Create(_ context.Context, task *domain.Task) (string, error) {
	s.mu.Lock()
	m, err := s.loadMeta()
	if err != nil {
		s.mu.Unlock()
		return "", err
	}
	id := strconv.Itoa(m.NextTaskID)
	m.NextTaskID++
	if err := s.saveMeta(m); err != nil {
		s.mu.Unlock()
		return "", err
	}

	doc := task.Clone()
	now := s.clock.Now()
	doc.ID = id
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.Subtasks == nil {
		doc.Subtasks = []domain.Subtask{}
	}
	doc.Normalize(now)
	err = s.saveLocked(doc)
	s.mu.Unlock()
	if err != nil {
		return "", err
	}

	s.afterWrite()
	return id, nil
}

// Update applies a partial update and refreshes UpdatedAt.
func (s *Store) Update(_ context.Context, id string, patch domain.TaskPatch) error {
	s.mu.Lock()
	task, err := s.getLocked(id)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	now := s.clock.Now()
	patch.ApplyTo(task, now)
	task.UpdatedAt = now
	err = s.saveLocked(task)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.afterWrite()
	return nil
}

// Delete removes a task. Deleting a missing task is not an error.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	err := s.repo.Storer.RemoveReference(s.taskRef(id))
	s.mu.Unlock()
	if err != nil && !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return fmt.Errorf("remove task ref: %w", err)
	}

	s.afterWrite()
	return nil
}

// Subscribe opens a polling feed over the task refs.
func (s *Store) Subscribe(ctx context.Context, handler domain.SnapshotHandler) (domain.Subscription, error) {
	return s.poller.Subscribe(ctx, handler)
}

// ServerNow is unsupported: a Git repository has no authoritative clock.
func (s *Store) ServerNow(_ context.Context) (time.Time, error) {
	return time.Time{}, domain.ErrServerClockUnavailable
}

// afterWrite pushes if configured and wakes the feed.
// A failed push is not fatal: the refs are committed locally and the next
// successful push carries them.
func (s *Store) afterWrite() {
	if s.push && s.repoPath != "" {
		if err := s.Push(); err != nil {
			s.log.Warn("", logSync, err.Error())
		}
	}
	s.poller.Trigger()
}

// saveLocked writes the task blob and moves its ref (caller must hold lock).
func (s *Store) saveLocked(task *domain.Task) error {
	data, err := yaml.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}

	hash, err := s.writeBlob(data)
	if err != nil {
		return err
	}

	ref := plumbing.NewHashReference(s.taskRef(task.ID), hash)
	if err := s.repo.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("set task ref: %w", err)
	}
	return nil
}

// loadMeta loads metadata from the meta ref.
// If the meta ref doesn't exist, it calculates NextTaskID from existing tasks.
func (s *Store) loadMeta() (*meta, error) {
	ref, err := s.repo.Reference(s.metaRef(), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return &meta{NextTaskID: s.calculateNextTaskID()}, nil
		}
		return nil, fmt.Errorf("get meta ref: %w", err)
	}

	data, err := s.readBlob(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("read meta: %w", err)
	}

	var m meta
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode meta: %w", err)
	}

	// Refs fetched from other clones may be ahead of our counter.
	if minNext := s.calculateNextTaskID(); m.NextTaskID < minNext {
		m.NextTaskID = minNext
	}
	return &m, nil
}

// calculateNextTaskID finds the maximum task ID from existing tasks and returns max+1.
// Returns 1 if no tasks exist.
func (s *Store) calculateNextTaskID() int {
	maxID := 0

	iter, err := s.repo.References()
	if err != nil {
		return 1
	}

	prefix := s.refPrefix() + "tasks/"
	_ = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().String()
		if strings.HasPrefix(name, prefix) {
			if id, parseErr := strconv.Atoi(strings.TrimPrefix(name, prefix)); parseErr == nil && id > maxID {
				maxID = id
			}
		}
		return nil
	})

	return maxID + 1
}

// saveMeta saves metadata to the meta ref.
func (s *Store) saveMeta(m *meta) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}

	hash, err := s.writeBlob(data)
	if err != nil {
		return err
	}

	ref := plumbing.NewHashReference(s.metaRef(), hash)
	if err := s.repo.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("set meta ref: %w", err)
	}
	return nil
}

// writeBlob writes data to a blob and returns the hash.
func (s *Store) writeBlob(data []byte) (plumbing.Hash, error) {
	if s.sealer != nil {
		sealed, err := s.sealer.Seal(data)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		data = sealed
	}

	obj := s.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(data)))

	writer, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("create blob writer: %w", err)
	}

	if _, writeErr := writer.Write(data); writeErr != nil {
		_ = writer.Close()
		return plumbing.ZeroHash, fmt.Errorf("write blob: %w", writeErr)
	}
	_ = writer.Close()

	hash, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("store blob: %w", err)
	}
	return hash, nil
}

// readBlob reads data from a blob.
func (s *Store) readBlob(hash plumbing.Hash) ([]byte, error) {
	blob, err := s.repo.BlobObject(hash)
	if err != nil {
		return nil, fmt.Errorf("get blob: %w", err)
	}

	reader, err := blob.Reader()
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	defer func() { _ = reader.Close() }()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read blob data: %w", err)
	}
	if s.sealer != nil {
		return s.sealer.Open(data)
	}
	if crypto.IsSealed(data) {
		return nil, fmt.Errorf("blob %s is encrypted: set [remote] encryption_key", hash)
	}
	return data, nil
}

// === Remote sync operations ===

// Push pushes task refs to origin.
func (s *Store) Push() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Use git command for push (go-git push requires auth config)
	refspec := fmt.Sprintf("+refs/%s/*:refs/%s/*", s.namespace, s.namespace)
	cmd := exec.Command("git", "-C", s.repoPath, "push", "origin", refspec) //nolint:gosec // refspec is constructed from trusted namespace
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("push failed: %s: %w", string(output), err)
	}
	return nil
}

// Fetch fetches task refs from origin, pruning refs deleted upstream.
func (s *Store) Fetch() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	refspec := fmt.Sprintf("+refs/%s/*:refs/%s/*", s.namespace, s.namespace)
	cmd := exec.Command("git", "-C", s.repoPath, "fetch", "--prune", "origin", refspec) //nolint:gosec // refspec is constructed from trusted namespace
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("fetch failed: %s: %w", string(output), err)
	}
	return nil
}

// Ensure Store implements RemoteStore.
var _ domain.RemoteStore = (*Store)(nil)
