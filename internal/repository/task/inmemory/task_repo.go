package inmemory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"aibosBackend/internal/models"
	repo "aibosBackend/internal/repository"
)

// TaskStorage — хранилище в памяти с тем же контрактом, что и postgres.
// Используется в тестах и в dev-режиме без базы.
type TaskStorage struct {
	mtx *sync.RWMutex

	tasks      map[int64]*models.Task
	tagNames   map[int64]string
	tagsByName map[string]int64
	links      map[int64]map[int64]struct{} // task id -> множество tag id

	nextTaskID int64
	nextTagID  int64
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		mtx:        &sync.RWMutex{},
		tasks:      make(map[int64]*models.Task),
		tagNames:   make(map[int64]string),
		tagsByName: make(map[string]int64),
		links:      make(map[int64]map[int64]struct{}),
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	return nil
}

func (s *TaskStorage) CreateTask(ctx context.Context, taskToCreate *models.Task, tagNames []string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.nextTaskID++
	now := time.Now()

	taskToCreate.ID = s.nextTaskID
	taskToCreate.CreatedAt = now
	taskToCreate.UpdatedAt = now

	stored := *taskToCreate
	stored.Tags = nil
	s.tasks[stored.ID] = &stored
	s.links[stored.ID] = s.resolveTags(tagNames)

	taskToCreate.Tags = s.tagsOf(stored.ID)
	return nil
}

func (s *TaskStorage) GetTaskByID(ctx context.Context, id int64) (*models.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	stored, ok := s.tasks[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return s.copyOf(stored), nil
}

// ListTasks отдаёт задачи в порядке обратном созданию
func (s *TaskStorage) ListTasks(ctx context.Context) ([]*models.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*models.Task{}
	for _, stored := range s.tasks {
		res = append(res, s.copyOf(stored))
	}

	sort.Slice(res, func(i, j int) bool {
		if res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].ID > res[j].ID
		}
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res, nil
}

func (s *TaskStorage) UpdateTask(ctx context.Context, id int64, patch *models.TaskPatch) (*models.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, ok := s.tasks[id]
	if !ok {
		return nil, repo.ErrNotFound
	}

	if patch.Title != nil {
		stored.Title = *patch.Title
	}
	if patch.Description != nil {
		stored.Description = *patch.Description
	}
	if patch.Status != nil {
		stored.Status = *patch.Status
	}
	if patch.EnergyLevel != nil {
		stored.EnergyLevel = *patch.EnergyLevel
	}
	if patch.Tags != nil {
		s.links[id] = s.resolveTags(*patch.Tags)
	}

	// updated_at двигается всегда, даже если патч ничего не поменял
	stored.UpdatedAt = time.Now()

	return s.copyOf(stored), nil
}

func (s *TaskStorage) DeleteTask(ctx context.Context, id int64) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return repo.ErrNotFound
	}

	// удаляются только задача и связи, сами теги остаются
	delete(s.tasks, id)
	delete(s.links, id)
	return nil
}

func (s *TaskStorage) ListTags(ctx context.Context) ([]models.Tag, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	tags := []models.Tag{}
	for id, name := range s.tagNames {
		tags = append(tags, models.Tag{ID: id, Name: name})
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

func (s *TaskStorage) CreateTag(ctx context.Context, name string) (*models.Tag, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.tagsByName[name]; ok {
		return nil, repo.ErrTagExists
	}

	s.nextTagID++
	s.tagNames[s.nextTagID] = name
	s.tagsByName[name] = s.nextTagID
	return &models.Tag{ID: s.nextTagID, Name: name}, nil
}

// resolveTags — вариант lookup-or-create без базы, вызывается под mtx
func (s *TaskStorage) resolveTags(names []string) map[int64]struct{} {
	linked := make(map[int64]struct{})

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		id, ok := s.tagsByName[name]
		if !ok {
			s.nextTagID++
			id = s.nextTagID
			s.tagNames[id] = name
			s.tagsByName[name] = id
		}
		linked[id] = struct{}{}
	}
	return linked
}

func (s *TaskStorage) tagsOf(taskID int64) []models.Tag {
	tags := []models.Tag{}
	for tagID := range s.links[taskID] {
		tags = append(tags, models.Tag{ID: tagID, Name: s.tagNames[tagID]})
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags
}

func (s *TaskStorage) copyOf(stored *models.Task) *models.Task {
	t := *stored
	t.Tags = s.tagsOf(stored.ID)
	return &t
}
