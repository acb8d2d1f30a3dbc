package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"aibosBackend/internal/logger"
	"aibosBackend/internal/models"
	rep "aibosBackend/internal/repository"

	"go.uber.org/zap"
)

// здесь происходит проверка бизнес-правил и подстановка значений по умолчанию

type TaskService struct {
	repo TaskRepository
}

func NewTaskService(repo TaskRepository) TaskService {
	return TaskService{
		repo: repo,
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}

func (s *TaskService) ListTasks(ctx context.Context) ([]*models.Task, error) {
	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) CreateTask(ctx context.Context, title, description string, status models.Status, energyLevel models.EnergyLevel, tagNames []string) (*models.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, NewValidationError("title", "не может быть пустым")
	}

	// пустые status/energyLevel получают значения по умолчанию,
	// неизвестные значения отклоняются
	if status == "" {
		status = models.StatusBacklog
	}
	if !status.Valid() {
		return nil, NewValidationError("status", "неизвестный статус: "+string(status))
	}

	if energyLevel == "" {
		energyLevel = models.EnergyMedium
	}
	if !energyLevel.Valid() {
		return nil, NewValidationError("energyLevel", "неизвестный уровень: "+string(energyLevel))
	}

	task := &models.Task{
		Title:       title,
		Description: description,
		Status:      status,
		EnergyLevel: energyLevel,
		Tags:        []models.Tag{},
	}

	if err := s.repo.CreateTask(ctx, task, tagNames); err != nil {
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	logger.Info("Service: Задача создана", zap.Int64("task_id", task.ID))
	return task, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, id int64) (*models.Task, error) {
	task, err := s.repo.GetTaskByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.Int64("target_id", id))
			return nil, NewNotFound("задача", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return task, nil
}

func (s *TaskService) UpdateTaskByID(ctx context.Context, id int64, options ...TaskOption) (*models.Task, error) {
	patch := &models.TaskPatch{}
	for _, opt := range options {
		opt(patch)
	}

	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, NewValidationError("title", "не может быть пустым")
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, NewValidationError("status", "неизвестный статус: "+string(*patch.Status))
	}
	if patch.EnergyLevel != nil && !patch.EnergyLevel.Valid() {
		return nil, NewValidationError("energyLevel", "неизвестный уровень: "+string(*patch.EnergyLevel))
	}

	task, err := s.repo.UpdateTask(ctx, id, patch)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.Int64("target_id", id))
			return nil, NewNotFound("задача", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}
	return task, nil
}

func (s *TaskService) DeleteTaskByID(ctx context.Context, id int64) error {
	err := s.repo.DeleteTask(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.Int64("target_id", id))
			return NewNotFound("задача", strconv.FormatInt(id, 10))
		}
		return fmt.Errorf("удаление задачи: %w", err)
	}
	return nil
}

func (s *TaskService) ListTags(ctx context.Context) ([]models.Tag, error) {
	tags, err := s.repo.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение тегов: %w", err)
	}
	return tags, nil
}

// CreateTag — внешний путь создания тега, отдельный от резолвера:
// прямая вставка, без переиспользования существующей строки
func (s *TaskService) CreateTag(ctx context.Context, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("name", "не может быть пустым")
	}

	tag, err := s.repo.CreateTag(ctx, name)
	if err != nil {
		if errors.Is(err, rep.ErrTagExists) {
			return nil, NewAlreadyExists("тег", name)
		}
		return nil, fmt.Errorf("создание тега: %w", err)
	}

	logger.Info("Service: Тег создан", zap.Int64("tag_id", tag.ID), zap.String("name", tag.Name))
	return tag, nil
}
