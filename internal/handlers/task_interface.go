package handlers

import (
	"context"

	"aibosBackend/internal/models"
	"aibosBackend/internal/service"
)

type TaskService interface {
	HealthCheck(ctx context.Context) error

	ListTasks(ctx context.Context) ([]*models.Task, error)
	CreateTask(ctx context.Context, title, description string, status models.Status, energyLevel models.EnergyLevel, tagNames []string) (*models.Task, error)
	GetTaskByID(ctx context.Context, id int64) (*models.Task, error)
	UpdateTaskByID(ctx context.Context, id int64, options ...service.TaskOption) (*models.Task, error)
	DeleteTaskByID(ctx context.Context, id int64) error

	ListTags(ctx context.Context) ([]models.Tag, error)
	CreateTag(ctx context.Context, name string) (*models.Tag, error)
}
