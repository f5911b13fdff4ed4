package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/model"
)

// MemBoards is an in-memory board store for usecase tests.
type MemBoards struct {
	mu     sync.Mutex
	boards map[string]model.Board
}

func NewMemBoards() *MemBoards {
	return &MemBoards{boards: map[string]model.Board{}}
}

func copyBoard(b model.Board) model.Board {
	b.MemberIDs = append([]string(nil), b.MemberIDs...)
	return b
}

func (s *MemBoards) Create(_ context.Context, b *model.Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards[b.ID] = copyBoard(*b)
	return nil
}

func (s *MemBoards) FindByID(_ context.Context, id string) (*model.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.boards[id]
	if !ok {
		return nil, nil
	}
	out := copyBoard(b)
	return &out, nil
}

func (s *MemBoards) FindByMember(_ context.Context, userID string) ([]model.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Board{}
	for _, b := range s.boards {
		if b.IsMember(userID) {
			out = append(out, copyBoard(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemBoards) Update(_ context.Context, b *model.Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.boards[b.ID]
	cur.Name, cur.Description, cur.UpdatedAt = b.Name, b.Description, b.UpdatedAt
	s.boards[b.ID] = cur
	return nil
}

func (s *MemBoards) AddMember(_ context.Context, boardID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.boards[boardID]
	for _, id := range b.MemberIDs {
		if id == userID {
			return nil
		}
	}
	b.MemberIDs = append(b.MemberIDs, userID)
	s.boards[boardID] = b
	return nil
}

func (s *MemBoards) RemoveMember(_ context.Context, boardID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.boards[boardID]
	rest := []string{}
	for _, id := range b.MemberIDs {
		if id != userID {
			rest = append(rest, id)
		}
	}
	b.MemberIDs = rest
	s.boards[boardID] = b
	return nil
}

func (s *MemBoards) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.boards, id)
	return nil
}

// MemMembers is an in-memory member profile store.
type MemMembers struct {
	mu      sync.Mutex
	members map[string]model.Member
}

func NewMemMembers(members ...model.Member) *MemMembers {
	s := &MemMembers{members: map[string]model.Member{}}
	for _, m := range members {
		m.Email = strings.ToLower(m.Email)
		s.members[m.ID] = m
	}
	return s
}

func (s *MemMembers) Upsert(_ context.Context, m *model.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	cp.Email = strings.ToLower(cp.Email)
	s.members[m.ID] = cp
	return nil
}

func (s *MemMembers) FindByID(_ context.Context, id string) (*model.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (s *MemMembers) FindByEmail(_ context.Context, email string) (*model.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, m := range s.members {
		if m.Email == email {
			m := m
			return &m, nil
		}
	}
	return nil, nil
}

func (s *MemMembers) FindByIDs(_ context.Context, ids []string) ([]model.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Member{}
	for _, id := range ids {
		if m, ok := s.members[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// MemTasks is an in-memory task store. It enforces unique titles per board like the Mongo index.
type MemTasks struct {
	mu    sync.Mutex
	tasks map[string]model.Task
	// UnassignErr, when set, fails UnassignUser without writing anything.
	UnassignErr error
}

func NewMemTasks() *MemTasks {
	return &MemTasks{tasks: map[string]model.Task{}}
}

func copyTask(t model.Task) model.Task {
	t.AssignedTo = append([]string{}, t.AssignedTo...)
	return t
}

func (s *MemTasks) clash(t *model.Task) bool {
	for _, other := range s.tasks {
		if other.ID != t.ID && other.BoardID == t.BoardID && other.Title == t.Title {
			return true
		}
	}
	return false
}

func (s *MemTasks) Create(_ context.Context, t *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clash(t) {
		return apperr.ErrDuplicateTitle
	}
	s.tasks[t.ID] = copyTask(*t)
	return nil
}

func (s *MemTasks) FindByID(_ context.Context, id string) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, nil
	}
	out := copyTask(t)
	return &out, nil
}

func (s *MemTasks) FindByBoard(_ context.Context, boardID string) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Task{}
	for _, t := range s.tasks {
		if t.BoardID == boardID {
			out = append(out, copyTask(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemTasks) TitleExists(_ context.Context, boardID, title, excludeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clash(&model.Task{ID: excludeID, BoardID: boardID, Title: title}), nil
}

func (s *MemTasks) Update(_ context.Context, t *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clash(t) {
		return apperr.ErrDuplicateTitle
	}
	s.tasks[t.ID] = copyTask(*t)
	return nil
}

func (s *MemTasks) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, id)
	return nil
}

func (s *MemTasks) CountByBoard(_ context.Context, boardID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, t := range s.tasks {
		if t.BoardID == boardID {
			n++
		}
	}
	return n, nil
}

func (s *MemTasks) UnassignUser(_ context.Context, boardID, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UnassignErr != nil {
		return 0, s.UnassignErr
	}
	n := 0
	for id, t := range s.tasks {
		if t.BoardID != boardID {
			continue
		}
		t = copyTask(t)
		if t.Unassign(userID) {
			t.UpdatedAt = time.Now().UTC()
			s.tasks[id] = t
			n++
		}
	}
	return n, nil
}

// NoTx runs fn directly.
type NoTx struct{}

func (NoTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
