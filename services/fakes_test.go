package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/mini-tournament/brackets"
	"github.com/Dosada05/mini-tournament/engine"
	"github.com/Dosada05/mini-tournament/models"
	"github.com/Dosada05/mini-tournament/repositories"
	"github.com/Dosada05/mini-tournament/storage"
)

type memoryStateRepo struct {
	mu      sync.Mutex
	rows    map[int]*repositories.StoredState
	saveErr error
	saves   int
}

func newMemoryStateRepo() *memoryStateRepo {
	return &memoryStateRepo{rows: make(map[int]*repositories.StoredState)}
}

func (r *memoryStateRepo) Get(_ context.Context, organizerID int) (*repositories.StoredState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[organizerID]
	if !ok {
		return nil, repositories.ErrStateNotFound
	}
	cp := *row
	cp.State = row.State.Clone()
	return &cp, nil
}

func (r *memoryStateRepo) Save(_ context.Context, _ repositories.SQLExecutor, organizerID, expectedVersion int, state *models.TournamentState) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return 0, r.saveErr
	}
	current := 0
	if row, ok := r.rows[organizerID]; ok {
		current = row.Version
	}
	if current != expectedVersion {
		return 0, repositories.ErrStateConflict
	}
	r.saves++
	r.rows[organizerID] = &repositories.StoredState{
		OrganizerID: organizerID,
		Version:     current + 1,
		UpdatedAt:   time.Now(),
		State:       state.Clone(),
	}
	return current + 1, nil
}

func (r *memoryStateRepo) ListFinished(_ context.Context, finishedBefore time.Time) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []int
	for id, row := range r.rows {
		if row.State.Status == models.StatusFinished && row.UpdatedAt.Before(finishedBefore) {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

func (r *memoryStateRepo) put(organizerID int, state *models.TournamentState, updatedAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[organizerID] = &repositories.StoredState{OrganizerID: organizerID, Version: 1, UpdatedAt: updatedAt, State: state}
}

func (r *memoryStateRepo) state(organizerID int) *models.TournamentState {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, ok := r.rows[organizerID]; ok {
		return row.State.Clone()
	}
	return nil
}

type memoryArchiveRepo struct {
	mu        sync.Mutex
	archives  []models.Archive
	createErr error
}

func (r *memoryArchiveRepo) Create(_ context.Context, _ repositories.SQLExecutor, a *models.Archive) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	a.CreatedAt = time.Now()
	r.archives = append(r.archives, *a)
	return nil
}

func (r *memoryArchiveRepo) GetByID(_ context.Context, organizerID int, id string) (*models.Archive, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.archives {
		if a.ID == id && a.OrganizerID == organizerID {
			cp := a
			return &cp, nil
		}
	}
	return nil, repositories.ErrArchiveNotFound
}

func (r *memoryArchiveRepo) ListByOrganizer(_ context.Context, organizerID, limit, offset int) ([]models.Archive, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Archive{}
	for _, a := range r.archives {
		if a.OrganizerID == organizerID {
			out = append(out, a)
		}
	}
	if offset > len(out) {
		return []models.Archive{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryArchiveRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.archives)
}

type memoryUploader struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	uploadErr error
}

func newMemoryUploader() *memoryUploader {
	return &memoryUploader{objects: make(map[string][]byte)}
}

func (u *memoryUploader) Upload(_ context.Context, key string, _ string, reader io.Reader) (*storage.UploadResult, error) {
	if u.uploadErr != nil {
		return nil, u.uploadErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.objects[key] = buf.Bytes()
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *memoryUploader) Delete(_ context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.objects, key)
	u.deleted = append(u.deleted, key)
	return nil
}

func (u *memoryUploader) GetPublicURL(key string) string {
	return "https://cdn.example.test/" + key
}

type event struct {
	organizerID int
	eventType   string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []event
}

func (n *recordingNotifier) Notify(organizerID int, eventType string, _ interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event{organizerID, eventType})
}

func (n *recordingNotifier) has(eventType string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.events {
		if e.eventType == eventType {
			return true
		}
	}
	return false
}

type fixture struct {
	service  TournamentService
	states   *memoryStateRepo
	archives *memoryArchiveRepo
	uploader *memoryUploader
	notifier *recordingNotifier
}

func newFixture(withUploader bool) *fixture {
	f := &fixture{
		states:   newMemoryStateRepo(),
		archives: &memoryArchiveRepo{},
		notifier: &recordingNotifier{},
	}
	cfg := TournamentServiceConfig{
		States:        f.states,
		Archives:      f.archives,
		Notifier:      f.notifier,
		DefaultFormat: models.Format8Mini,
		DefaultCourts: 4,
	}
	if withUploader {
		f.uploader = newMemoryUploader()
		cfg.Uploader = f.uploader
	}
	f.service = NewTournamentService(cfg)
	return f
}

// finishedState plays a full 8_mini tournament where side A always wins.
func finishedState(t *testing.T) *models.TournamentState {
	t.Helper()
	e := engine.New(models.NewTournamentState(models.Format8Mini, 4))
	for i := 1; i <= 8; i++ {
		a, err := e.AddPlayer(engine.PlayerInput{Name: fmt.Sprintf("P%dA", i), Categories: []models.Category{models.CategoryInitiation}, Slider: 5})
		if err != nil {
			t.Fatalf("add player: %v", err)
		}
		b, err := e.AddPlayer(engine.PlayerInput{Name: fmt.Sprintf("P%dB", i), Categories: []models.Category{models.CategoryInitiation}, Slider: 5})
		if err != nil {
			t.Fatalf("add player: %v", err)
		}
		if _, err := e.RegisterPair(engine.RegisterPairInput{PlayerIDs: []int{a.ID, b.ID}}); err != nil {
			t.Fatalf("register pair: %v", err)
		}
	}
	if err := e.Start(brackets.StrategyArrival, nil); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 100; i++ {
		st := e.State()
		if st.Status == models.StatusFinished {
			return st
		}
		for _, m := range e.PlayableMatches(st.CurrentRound) {
			if !m.IsFinished {
				if _, err := e.RecordScore(m.ID, 6, 1); err != nil {
					t.Fatalf("record: %v", err)
				}
			}
		}
		if _, err := e.AdvanceRound(); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}
	t.Fatal("tournament never finished")
	return nil
}

var errBoom = errors.New("boom")
