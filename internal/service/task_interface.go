package service

import (
	"context"

	"aibosBackend/internal/models"
)

type TaskRepository interface {
	HealthCheck(ctx context.Context) error

	CreateTask(ctx context.Context, task *models.Task, tagNames []string) error
	GetTaskByID(ctx context.Context, id int64) (*models.Task, error)
	ListTasks(ctx context.Context) ([]*models.Task, error)
	UpdateTask(ctx context.Context, id int64, patch *models.TaskPatch) (*models.Task, error)
	DeleteTask(ctx context.Context, id int64) error

	ListTags(ctx context.Context) ([]models.Tag, error)
	CreateTag(ctx context.Context, name string) (*models.Tag, error)
}
