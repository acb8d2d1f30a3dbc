package dto

import (
	"strconv"
	"time"

	"aibosBackend/internal/models"
)

type CreateTaskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	EnergyLevel string   `json:"energyLevel"`
	Tags        []string `json:"tags"`
}

// UpdateTaskRequest — PATCH: отсутствующее в теле поле остаётся nil
// и не попадает в патч. Tags = [] очищает связи, отсутствие Tags — нет.
type UpdateTaskRequest struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Status      *string   `json:"status,omitempty"`
	EnergyLevel *string   `json:"energyLevel,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

type CreateTagRequest struct {
	Name string `json:"name"`
}

// TaskResponse — внешнее представление задачи: id всегда строка,
// теги — список имён, а не вложенные объекты
type TaskResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	EnergyLevel string    `json:"energyLevel"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Tags        []string  `json:"tags"`
}

type TagResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func FromTask(t *models.Task) TaskResponse {
	id := ""
	if t.ID != 0 {
		id = strconv.FormatInt(t.ID, 10)
	}

	tags := make([]string, 0, len(t.Tags))
	for _, tag := range t.Tags {
		tags = append(tags, tag.Name)
	}

	return TaskResponse{
		ID:          id,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		EnergyLevel: string(t.EnergyLevel),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		Tags:        tags,
	}
}

func FromTaskList(tasks []*models.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}

func FromTag(t *models.Tag) TagResponse {
	return TagResponse{
		ID:   t.ID,
		Name: t.Name,
	}
}

func FromTagList(tags []models.Tag) []TagResponse {
	result := make([]TagResponse, len(tags))
	for i := range tags {
		result[i] = FromTag(&tags[i])
	}
	return result
}
