package service_test

import (
	"context"
	"errors"
	"testing"

	"aibosBackend/internal/logger"
	"aibosBackend/internal/models"
	"aibosBackend/internal/repository"
	"aibosBackend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init(true)
	defer logger.Sync()
	m.Run()
}

// MockTaskRepository — мок репозитория
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTaskRepository) CreateTask(ctx context.Context, t *models.Task, tagNames []string) error {
	args := m.Called(ctx, t, tagNames)
	return args.Error(0)
}

func (m *MockTaskRepository) GetTaskByID(ctx context.Context, id int64) (*models.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskRepository) ListTasks(ctx context.Context) ([]*models.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Task), args.Error(1)
}

func (m *MockTaskRepository) UpdateTask(ctx context.Context, id int64, patch *models.TaskPatch) (*models.Task, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskRepository) DeleteTask(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskRepository) ListTags(ctx context.Context) ([]models.Tag, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Tag), args.Error(1)
}

func (m *MockTaskRepository) CreateTag(ctx context.Context, name string) (*models.Tag, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tag), args.Error(1)
}

var _ service.TaskRepository = (*MockTaskRepository)(nil)

func asBusinessError(t *testing.T, err error) *service.BusinessError {
	t.Helper()
	var businessErr *service.BusinessError
	require.ErrorAs(t, err, &businessErr)
	return businessErr
}

// TestTaskService_CreateTask тестирует валидацию и значения по умолчанию
func TestTaskService_CreateTask(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		status      models.Status
		energyLevel models.EnergyLevel
		setupMock   func(*MockTaskRepository)
		expectCode  string
	}{
		{
			name:  "success - defaults applied",
			title: "Task",
			setupMock: func(m *MockTaskRepository) {
				m.On("CreateTask", mock.Anything, mock.MatchedBy(func(task *models.Task) bool {
					return task.Status == models.StatusBacklog && task.EnergyLevel == models.EnergyMedium
				}), mock.Anything).Return(nil)
			},
		},
		{
			name:  "success - explicit values kept",
			title: "Task",
			status:      models.StatusToday,
			energyLevel: models.EnergyHigh,
			setupMock: func(m *MockTaskRepository) {
				m.On("CreateTask", mock.Anything, mock.MatchedBy(func(task *models.Task) bool {
					return task.Status == models.StatusToday && task.EnergyLevel == models.EnergyHigh
				}), mock.Anything).Return(nil)
			},
		},
		{
			name:       "error - empty title",
			title:      "   ",
			setupMock:  func(m *MockTaskRepository) {},
			expectCode: "VALIDATION_ERROR",
		},
		{
			name:       "error - unknown status",
			title:      "Task",
			status:     "later",
			setupMock:  func(m *MockTaskRepository) {},
			expectCode: "VALIDATION_ERROR",
		},
		{
			name:        "error - unknown energy level",
			title:       "Task",
			energyLevel: "extreme",
			setupMock:   func(m *MockTaskRepository) {},
			expectCode:  "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			tt.setupMock(mockRepo)

			svc := service.NewTaskService(mockRepo)
			_, err := svc.CreateTask(context.Background(), tt.title, "", tt.status, tt.energyLevel, nil)

			if tt.expectCode != "" {
				assert.Equal(t, tt.expectCode, asBusinessError(t, err).Code)
				mockRepo.AssertNotCalled(t, "CreateTask")
			} else {
				assert.NoError(t, err)
				mockRepo.AssertExpectations(t)
			}
		})
	}
}

// TestTaskService_GetTaskByID тестирует трансляцию ErrNotFound
func TestTaskService_GetTaskByID(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	mockRepo.On("GetTaskByID", mock.Anything, int64(42)).Return(nil, repository.ErrNotFound)

	svc := service.NewTaskService(mockRepo)
	_, err := svc.GetTaskByID(context.Background(), 42)

	assert.Equal(t, "NOT_FOUND", asBusinessError(t, err).Code)
}

// TestTaskService_UpdateTaskByID тестирует сборку патча из опций
func TestTaskService_UpdateTaskByID(t *testing.T) {
	t.Run("options fill only chosen fields", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("UpdateTask", mock.Anything, int64(1), mock.MatchedBy(func(patch *models.TaskPatch) bool {
			return patch.Status != nil && *patch.Status == models.StatusToday &&
				patch.Title == nil && patch.Description == nil &&
				patch.EnergyLevel == nil && patch.Tags == nil
		})).Return(&models.Task{ID: 1, Status: models.StatusToday}, nil)

		svc := service.NewTaskService(mockRepo)
		task, err := svc.UpdateTaskByID(context.Background(), 1, service.WithStatus(models.StatusToday))

		require.NoError(t, err)
		assert.Equal(t, models.StatusToday, task.Status)
		mockRepo.AssertExpectations(t)
	})

	t.Run("empty tag list goes through as clear", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("UpdateTask", mock.Anything, int64(1), mock.MatchedBy(func(patch *models.TaskPatch) bool {
			return patch.Tags != nil && len(*patch.Tags) == 0
		})).Return(&models.Task{ID: 1, Tags: []models.Tag{}}, nil)

		svc := service.NewTaskService(mockRepo)
		_, err := svc.UpdateTaskByID(context.Background(), 1, service.WithTags([]string{}))

		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("empty title rejected", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)

		svc := service.NewTaskService(mockRepo)
		_, err := svc.UpdateTaskByID(context.Background(), 1, service.WithTitle("  "))

		assert.Equal(t, "VALIDATION_ERROR", asBusinessError(t, err).Code)
		mockRepo.AssertNotCalled(t, "UpdateTask")
	})

	t.Run("missing task becomes NOT_FOUND", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("UpdateTask", mock.Anything, int64(9), mock.Anything).Return(nil, repository.ErrNotFound)

		svc := service.NewTaskService(mockRepo)
		_, err := svc.UpdateTaskByID(context.Background(), 9)

		assert.Equal(t, "NOT_FOUND", asBusinessError(t, err).Code)
	})
}

// TestTaskService_DeleteTaskByID тестирует удаление
func TestTaskService_DeleteTaskByID(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("DeleteTask", mock.Anything, int64(1)).Return(nil)

		svc := service.NewTaskService(mockRepo)
		assert.NoError(t, svc.DeleteTaskByID(context.Background(), 1))
	})

	t.Run("missing task becomes NOT_FOUND", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("DeleteTask", mock.Anything, int64(1)).Return(repository.ErrNotFound)

		svc := service.NewTaskService(mockRepo)
		err := svc.DeleteTaskByID(context.Background(), 1)

		assert.Equal(t, "NOT_FOUND", asBusinessError(t, err).Code)
	})
}

// TestTaskService_CreateTag тестирует внешний путь создания тега
func TestTaskService_CreateTag(t *testing.T) {
	t.Run("name is trimmed", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("CreateTag", mock.Anything, "demo").Return(&models.Tag{ID: 1, Name: "demo"}, nil)

		svc := service.NewTaskService(mockRepo)
		tag, err := svc.CreateTag(context.Background(), "  demo  ")

		require.NoError(t, err)
		assert.Equal(t, "demo", tag.Name)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)

		svc := service.NewTaskService(mockRepo)
		_, err := svc.CreateTag(context.Background(), "   ")

		assert.Equal(t, "VALIDATION_ERROR", asBusinessError(t, err).Code)
		mockRepo.AssertNotCalled(t, "CreateTag")
	})

	t.Run("duplicate becomes ALREADY_EXISTS", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("CreateTag", mock.Anything, "demo").Return(nil, repository.ErrTagExists)

		svc := service.NewTaskService(mockRepo)
		_, err := svc.CreateTag(context.Background(), "demo")

		assert.Equal(t, "ALREADY_EXISTS", asBusinessError(t, err).Code)
	})
}

// TestTaskService_HealthCheck тестирует проброс в репозиторий
func TestTaskService_HealthCheck(t *testing.T) {
	tests := []struct {
		name        string
		setupMock   func(*MockTaskRepository)
		expectError bool
	}{
		{
			name: "success - health check passes",
			setupMock: func(m *MockTaskRepository) {
				m.On("HealthCheck", mock.Anything).Return(nil)
			},
		},
		{
			name: "error - health check fails",
			setupMock: func(m *MockTaskRepository) {
				m.On("HealthCheck", mock.Anything).Return(errors.New("db connection failed"))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			tt.setupMock(mockRepo)

			svc := service.NewTaskService(mockRepo)
			err := svc.HealthCheck(context.Background())

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
