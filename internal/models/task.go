package models

import (
	"time"
)

type Status string
type EnergyLevel string

const StatusBacklog Status = "backlog"
const StatusToday Status = "today"
const StatusInProgress Status = "in-progress"
const StatusReview Status = "review"
const StatusDone Status = "done"

const EnergyLow EnergyLevel = "low"
const EnergyMedium EnergyLevel = "medium"
const EnergyHigh EnergyLevel = "high"

// закрытые множества значений — неизвестные строки отклоняем, а не приводим
func (s Status) Valid() bool {
	switch s {
	case StatusBacklog, StatusToday, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

func (e EnergyLevel) Valid() bool {
	switch e {
	case EnergyLow, EnergyMedium, EnergyHigh:
		return true
	}
	return false
}

type Task struct {
	ID          int64       `json:"id" db:"id"`
	Title       string      `json:"title" db:"title"`
	Description string      `json:"description" db:"description"`
	Status      Status      `json:"status" db:"status"`
	EnergyLevel EnergyLevel `json:"energyLevel" db:"energy_level"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`
	Tags        []Tag       `json:"tags"`
}

type Tag struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// TaskPatch — частичное обновление: nil-поле не трогается.
// Tags == nil — связи остаются как есть, пустой срез — очищаем все связи.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *Status
	EnergyLevel *EnergyLevel
	Tags        *[]string
}
