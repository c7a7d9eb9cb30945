// Package store keeps the state of the fake OpenML service in memory and enforces the
// referential rules of the real service.
package store

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/openml/openml-go/api/queue"
	"github.com/openml/openml-go/api/xsd"
	"github.com/openml/openml-go/config"
	"github.com/openml/openml-go/model"
	"github.com/openml/openml-go/schema"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Error is a failure reported to clients as an OpenML error document.
type Error struct {
	Status     int
	Code       int
	Message    string
	Additional string
}

func (e *Error) Error() string {
	if e.Additional != "" {
		return fmt.Sprintf("openml error %d: %s (%s)", e.Code, e.Message, e.Additional)
	}
	return fmt.Sprintf("openml error %d: %s", e.Code, e.Message)
}

func fail(code int, message string, additional ...string) *Error {
	return &Error{
		Status:     http.StatusPreconditionFailed,
		Code:       code,
		Message:    message,
		Additional: strings.Join(additional, " "),
	}
}

// User is an account identified by its api key.
type User struct {
	ID    int
	Name  string
	Admin bool
}

// File is a stored upload.
type File struct {
	ID   int
	Name string
	Data []byte
}

type dataset struct {
	desc      model.DatasetDescription
	owner     int
	features  []model.Feature
	qualities []model.Quality
	processed map[int]bool
}

type run struct {
	run         model.Run
	uploadTime  time.Time
	attachments map[int]int
}

// Store holds datasets, tasks, runs and their files.
type Store struct {
	logger  *zap.SugaredLogger
	queue   queue.EvaluationQueue
	fetch   Fetcher
	schemas map[string]*schema.Schema
	now     func() time.Time

	mutex    *sync.RWMutex
	adminKey string
	users    map[string]*User
	datasets map[int]*dataset
	tasks    map[int]*task
	runs     map[int]*run
	files    map[int]*File
	setups   map[string]int
	lastID   map[string]int
}

// New creates an empty store. Uploaded runs are queued on evaluations; datasets
// uploaded by url are read through fetch.
func New(cfg *config.Config, evaluations queue.EvaluationQueue, fetch Fetcher) (*Store, error) {
	schemas := map[string]*schema.Schema{}
	for _, name := range xsd.Names() {
		doc, _ := xsd.Get(name)
		s, err := schema.Compile(doc)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to compile schema %s", name)
		}
		schemas[name] = s
	}

	adminKey := ""
	if cfg.Environment != nil {
		adminKey = cfg.Environment.AdminKey
	}

	s := &Store{
		logger:   cfg.Log(),
		queue:    evaluations,
		fetch:    fetch,
		schemas:  schemas,
		now:      time.Now,
		mutex:    &sync.RWMutex{},
		adminKey: adminKey,
		users:    map[string]*User{},
		datasets: map[int]*dataset{},
		tasks:    map[int]*task{},
		runs:     map[int]*run{},
		files:    map[int]*File{},
		setups:   map[string]int{},
		lastID:   map[string]int{},
	}
	if adminKey != "" {
		s.users[adminKey] = &User{ID: s.next("user"), Name: "admin", Admin: true}
	}
	return s, nil
}

// Authenticate returns the user owning key. Unknown keys are registered as new
// regular users; an empty key yields nil.
func (s *Store) Authenticate(key string) *User {
	if key == "" {
		return nil
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if u, ok := s.users[key]; ok {
		return u
	}
	id := s.next("user")
	u := &User{ID: id, Name: fmt.Sprintf("user%d", id)}
	s.users[key] = u
	return u
}

// File returns the stored file with the given id.
func (s *Store) File(id int) (*File, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	f, ok := s.files[id]
	if !ok {
		return nil, &Error{Status: http.StatusNotFound, Code: 1, Message: "Unknown file"}
	}
	return f, nil
}

// QueueSize returns the number of runs waiting for evaluation.
func (s *Store) QueueSize() int {
	return s.queue.Size()
}

// PendingRuns lists the runs waiting for evaluation, oldest first.
func (s *Store) PendingRuns() ([]queue.PendingRun, error) {
	return s.queue.GetAll()
}

// Stats counts the stored entities.
type Stats struct {
	Datasets int `json:"datasets"`
	Tasks    int `json:"tasks"`
	Runs     int `json:"runs"`
	Files    int `json:"files"`
	Users    int `json:"users"`
	Waiting  int `json:"waiting"`
}

// Stats returns the number of stored entities.
func (s *Store) Stats() Stats {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return Stats{
		Datasets: len(s.datasets),
		Tasks:    len(s.tasks),
		Runs:     len(s.runs),
		Files:    len(s.files),
		Users:    len(s.users),
		Waiting:  s.queue.Size(),
	}
}

// ClearQueue drops all runs waiting for evaluation.
func (s *Store) ClearQueue() error {
	return s.queue.Clear()
}

// next hands out the next id of a kind. Callers hold the lock.
func (s *Store) next(kind string) int {
	s.lastID[kind]++
	return s.lastID[kind]
}

func (s *Store) addFile(name string, data []byte) *File {
	f := &File{ID: s.next("file"), Name: name, Data: data}
	s.files[f.ID] = f
	return f
}

func (s *Store) validate(schemaName string, doc []byte, code int) error {
	sch, ok := s.schemas[schemaName]
	if !ok {
		return errors.Errorf("schema %s is not available", schemaName)
	}
	if err := sch.Validate(doc); err != nil {
		var vErr *schema.ValidationError
		if errors.As(err, &vErr) {
			return fail(code, "Problem validating uploaded description file", strings.Join(vErr.Problems, "; "))
		}
		return err
	}
	return nil
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format("2006-01-02T15:04:05")
}

func canModify(u *User, owner int) bool {
	return u != nil && (u.Admin || u.ID == owner)
}

func addTag(tags []string, tag string) ([]string, bool) {
	for _, t := range tags {
		if t == tag {
			return tags, false
		}
	}
	return append(tags, tag), true
}

func removeTag(tags []string, tag string) ([]string, bool) {
	for i, t := range tags {
		if t == tag {
			out := append(append([]string(nil), tags[:i]...), tags[i+1:]...)
			if len(out) == 0 {
				out = nil
			}
			return out, true
		}
	}
	return tags, false
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func intPtr(i int) *int {
	return &i
}
