package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aibosBackend/internal/config"
	"aibosBackend/internal/logger"
	"aibosBackend/internal/migrations"
	"aibosBackend/internal/models"
	repo "aibosBackend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Storage struct {
	pool *pgxpool.Pool
}

// querier — общее подмножество pgxpool.Pool и pgx.Tx,
// чтобы одни и те же запросы работали внутри и вне транзакции
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func New(ctx context.Context, cfg config.DatabaseConfig) (*Storage, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnIdleTime = time.Minute * 5
	if cfg.MaxConnections > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConnections)
	}
	if cfg.MinConnections > 0 {
		poolConfig.MinConns = int32(cfg.MinConnections)
	}
	if cfg.IdleTimeout > 0 {
		poolConfig.MaxConnIdleTime = cfg.IdleTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

// CreateTask создаёт задачу вместе со связями на теги одной транзакцией.
// Поля ID, CreatedAt, UpdatedAt и Tags заполняются по результату вставки.
func (s *Storage) CreateTask(ctx context.Context, taskToCreate *models.Task, tagNames []string) error {
	start := time.Now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		logger.Error("Repository: Не удалось открыть транзакцию", err)
		return fmt.Errorf("открытие транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO tasks
				(title, description, status, energy_level)
				VALUES ($1, $2, $3, $4)
				RETURNING id, created_at, updated_at`

	err = tx.QueryRow(ctx, query,
		taskToCreate.Title,
		taskToCreate.Description,
		taskToCreate.Status,
		taskToCreate.EnergyLevel,
	).Scan(&taskToCreate.ID, &taskToCreate.CreatedAt, &taskToCreate.UpdatedAt)

	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}

	tags, err := s.resolveTags(ctx, tx, tagNames)
	if err != nil {
		return err
	}

	if err := s.linkTags(ctx, tx, taskToCreate.ID, tags); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Error("Repository: Не удалось зафиксировать транзакцию", err)
		return fmt.Errorf("фиксация транзакции: %w", err)
	}

	taskToCreate.Tags = tags

	if time.Since(start) > time.Millisecond*50 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) GetTaskByID(ctx context.Context, id int64) (*models.Task, error) {
	start := time.Now()

	query := `SELECT
				id,
				title,
				description,
				status,
				energy_level,
				created_at,
				updated_at
				FROM tasks
				WHERE id = $1`

	taskToGet, err := scanTask(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	tagsByTask, err := s.loadTags(ctx, s.pool, []int64{taskToGet.ID})
	if err != nil {
		return nil, err
	}
	taskToGet.Tags = tagsByTask[taskToGet.ID]

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return taskToGet, nil
}

// ListTasks возвращает все задачи с тегами, новые сверху
func (s *Storage) ListTasks(ctx context.Context) ([]*models.Task, error) {
	start := time.Now()

	query := `SELECT
				id,
				title,
				description,
				status,
				energy_level,
				created_at,
				updated_at
				FROM tasks
				ORDER BY created_at DESC, id DESC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := []*models.Task{}
	ids := []int64{}

	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Error("Repository: Ошибка сканирования задачи", err)
			return nil, fmt.Errorf("сканирование задачи: %w", err)
		}
		tasks = append(tasks, t)
		ids = append(ids, t.ID)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	tagsByTask, err := s.loadTags(ctx, s.pool, ids)
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		t.Tags = tagsByTask[t.ID]
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return tasks, nil
}

// UpdateTask применяет частичное обновление: nil-поля патча не трогаются,
// updated_at обновляется всегда. Tags == nil оставляет связи как есть,
// пустой срез очищает их полностью.
func (s *Storage) UpdateTask(ctx context.Context, id int64, patch *models.TaskPatch) (*models.Task, error) {
	start := time.Now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		logger.Error("Repository: Не удалось открыть транзакцию", err)
		return nil, fmt.Errorf("открытие транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `SELECT
				id,
				title,
				description,
				status,
				energy_level,
				created_at,
				updated_at
				FROM tasks
				WHERE id = $1
				FOR UPDATE`

	taskToUpdate, err := scanTask(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err)
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	if patch.Title != nil {
		taskToUpdate.Title = *patch.Title
	}
	if patch.Description != nil {
		taskToUpdate.Description = *patch.Description
	}
	if patch.Status != nil {
		taskToUpdate.Status = *patch.Status
	}
	if patch.EnergyLevel != nil {
		taskToUpdate.EnergyLevel = *patch.EnergyLevel
	}

	updateQuery := `UPDATE tasks
			SET title = $1,
				description = $2,
				status = $3,
				energy_level = $4,
				updated_at = NOW()
			WHERE id = $5
			RETURNING updated_at`

	err = tx.QueryRow(ctx, updateQuery,
		taskToUpdate.Title,
		taskToUpdate.Description,
		taskToUpdate.Status,
		taskToUpdate.EnergyLevel,
		taskToUpdate.ID,
	).Scan(&taskToUpdate.UpdatedAt)

	if err != nil {
		logger.Error("Repository: Не удалось обновить задачу", err)
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}

	if patch.Tags != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM task_tags WHERE task_id = $1`, taskToUpdate.ID); err != nil {
			logger.Error("Repository: Не удалось очистить связи задачи", err)
			return nil, fmt.Errorf("очистка связей: %w", err)
		}

		tags, err := s.resolveTags(ctx, tx, *patch.Tags)
		if err != nil {
			return nil, err
		}
		if err := s.linkTags(ctx, tx, taskToUpdate.ID, tags); err != nil {
			return nil, err
		}
		taskToUpdate.Tags = tags
	} else {
		tagsByTask, err := s.loadTags(ctx, tx, []int64{taskToUpdate.ID})
		if err != nil {
			return nil, err
		}
		taskToUpdate.Tags = tagsByTask[taskToUpdate.ID]
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Error("Repository: Не удалось зафиксировать транзакцию", err)
		return nil, fmt.Errorf("фиксация транзакции: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return taskToUpdate, nil
}

// DeleteTask удаляет задачу и её связи (ON DELETE CASCADE),
// сами теги остаются — они могут использоваться другими задачами
func (s *Storage) DeleteTask(ctx context.Context, id int64) error {
	start := time.Now()

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: Не удалось удалить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("удаление задачи: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func scanTask(row pgx.Row) (*models.Task, error) {
	t := &models.Task{Tags: []models.Tag{}}
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.EnergyLevel,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// loadTags подгружает теги для набора задач одним запросом,
// порядок тегов внутри задачи — по имени
func (s *Storage) loadTags(ctx context.Context, q querier, taskIDs []int64) (map[int64][]models.Tag, error) {
	result := make(map[int64][]models.Tag, len(taskIDs))
	if len(taskIDs) == 0 {
		return result, nil
	}

	query := `SELECT tt.task_id, t.id, t.name
				FROM task_tags tt
				JOIN tags t ON t.id = tt.tag_id
				WHERE tt.task_id = ANY($1)
				ORDER BY t.name ASC`

	rows, err := q.Query(ctx, query, taskIDs)
	if err != nil {
		logger.Error("Repository: Не удалось получить теги задач", err)
		return nil, fmt.Errorf("получение тегов: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var taskID int64
		var tag models.Tag
		if err := rows.Scan(&taskID, &tag.ID, &tag.Name); err != nil {
			logger.Error("Repository: Ошибка сканирования тега", err)
			return nil, fmt.Errorf("сканирование тега: %w", err)
		}
		result[taskID] = append(result[taskID], tag)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}
	return result, nil
}

func (s *Storage) linkTags(ctx context.Context, tx pgx.Tx, taskID int64, tags []models.Tag) error {
	for _, tag := range tags {
		_, err := tx.Exec(ctx,
			`INSERT INTO task_tags (task_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			taskID, tag.ID)
		if err != nil {
			logger.Error("Repository: Не удалось привязать тег", err, zap.Int64("tag_id", tag.ID))
			return fmt.Errorf("привязка тега: %w", err)
		}
	}
	return nil
}

// Migrate накатывает схему из встроенных sql-файлов
func (s *Storage) Migrate(ctx context.Context) error {
	logger.Info("Repository: Применение миграций")

	for _, name := range migrations.Up {
		sql, err := migrations.FS.ReadFile(name)
		if err != nil {
			logger.Error("Repository: Не удалось прочитать миграцию", err, zap.String("file", name))
			return fmt.Errorf("чтение миграции %s: %w", name, err)
		}
		if _, err := s.pool.Exec(ctx, string(sql)); err != nil {
			logger.Error("Repository: Не удалось применить миграцию", err, zap.String("file", name))
			return fmt.Errorf("применение миграции %s: %w", name, err)
		}
	}

	logger.Info("Repository: Миграции применены")
	return nil
}

func (s *Storage) Down(ctx context.Context) error {
	logger.Info("Repository: Откат миграций")

	for _, name := range migrations.Down {
		sql, err := migrations.FS.ReadFile(name)
		if err != nil {
			logger.Error("Repository: Не удалось прочитать миграцию", err, zap.String("file", name))
			return fmt.Errorf("чтение миграции %s: %w", name, err)
		}
		if _, err := s.pool.Exec(ctx, string(sql)); err != nil {
			logger.Error("Repository: Не удалось откатить миграцию", err, zap.String("file", name))
			return fmt.Errorf("откат миграции %s: %w", name, err)
		}
	}

	logger.Info("Repository: Миграции откатились")
	return nil
}
