package service

import (
	"aibosBackend/internal/models"
)

// TaskOption заполняет одно поле патча; отсутствие опции — поле не трогаем
type TaskOption func(*models.TaskPatch)

func WithTitle(title string) TaskOption {
	return func(patch *models.TaskPatch) {
		patch.Title = &title
	}
}

func WithDescription(description string) TaskOption {
	return func(patch *models.TaskPatch) {
		patch.Description = &description
	}
}

func WithStatus(status models.Status) TaskOption {
	return func(patch *models.TaskPatch) {
		patch.Status = &status
	}
}

func WithEnergyLevel(energyLevel models.EnergyLevel) TaskOption {
	return func(patch *models.TaskPatch) {
		patch.EnergyLevel = &energyLevel
	}
}

// WithTags задаёт полный новый набор тегов;
// пустой срез очищает все связи задачи
func WithTags(tagNames []string) TaskOption {
	return func(patch *models.TaskPatch) {
		patch.Tags = &tagNames
	}
}
