// Package tasks manages the to-do list of the logged in user.
package tasks

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/idilsaglam/taskdeck/internal/model"
)

// ErrNoSession is returned by mutations when nobody is logged in.
var ErrNoSession = errors.New("not logged in")

// Owner is the slice of auth.Service the manager writes through.
type Owner interface {
	User() (model.User, bool)
	UpdateTasks(ctx context.Context, tasks []model.Task) error
}

// Manager holds the task list and keeps it equal to the owner's copy after every
// mutation.
type Manager struct {
	owner Owner
	tasks []model.Task
	newID func() string
}

func NewManager(owner Owner) *Manager {
	m := &Manager{owner: owner, newID: uuid.NewString}
	if u, ok := owner.User(); ok {
		m.tasks = model.CloneTasks(u.Tasks)
	} else {
		m.tasks = []model.Task{}
	}
	return m
}

// Tasks returns a copy of the list.
func (m *Manager) Tasks() []model.Task { return model.CloneTasks(m.tasks) }

func (m *Manager) Len() int { return len(m.tasks) }

// Stats counts done and pending tasks.
func (m *Manager) Stats() (done, pending int) {
	for _, t := range m.tasks {
		if t.IsDone {
			done++
		} else {
			pending++
		}
	}
	return
}

// Add appends a task. A blank title is ignored.
func (m *Manager) Add(ctx context.Context, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	next := append(m.Tasks(), model.Task{ID: m.newID(), Title: title})
	return m.commit(ctx, next)
}

// Delete removes the tasks at the given positions of the current list. Order and
// repeats in indices don't matter; positions outside the list are skipped.
func (m *Manager) Delete(ctx context.Context, indices ...int) error {
	drop := make(map[int]bool, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(m.tasks) {
			drop[i] = true
		}
	}
	if len(drop) == 0 {
		return nil
	}
	next := make([]model.Task, 0, len(m.tasks)-len(drop))
	for i, t := range m.tasks {
		if !drop[i] {
			next = append(next, t)
		}
	}
	return m.commit(ctx, next)
}

// Toggle flips IsDone on the task with the given id. Unknown ids are ignored.
func (m *Manager) Toggle(ctx context.Context, id string) error {
	i := m.indexOf(id)
	if i < 0 {
		return nil
	}
	next := m.Tasks()
	next[i].IsDone = !next[i].IsDone
	return m.commit(ctx, next)
}

// Rename changes a task's title with the same blank-title rule as Add.
func (m *Manager) Rename(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	i := m.indexOf(id)
	if title == "" || i < 0 {
		return nil
	}
	next := m.Tasks()
	next[i].Title = title
	return m.commit(ctx, next)
}

func (m *Manager) indexOf(id string) int {
	for i, t := range m.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// commit hands next to the owner. The owner adopts the list in memory even when
// persisting it fails, so m.tasks follows unconditionally and the error is passed up.
func (m *Manager) commit(ctx context.Context, next []model.Task) error {
	if _, ok := m.owner.User(); !ok {
		return ErrNoSession
	}
	err := m.owner.UpdateTasks(ctx, next)
	m.tasks = next
	return err
}
