package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"aibosBackend/internal/logger"
	"aibosBackend/internal/models"
	repo "aibosBackend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

// resolveTags возвращает теги по именам, создавая отсутствующие.
// Вставка идёт через ON CONFLICT DO NOTHING: если параллельный писатель
// успел создать тег первым, перечитываем строку вместо ошибки.
// Коммит остаётся за вызывающей транзакцией.
func (s *Storage) resolveTags(ctx context.Context, tx pgx.Tx, names []string) ([]models.Tag, error) {
	tags := []models.Tag{}

	for _, name := range normalizeTagNames(names) {
		tag, err := s.lookupOrCreateTag(ctx, tx, name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

func (s *Storage) lookupOrCreateTag(ctx context.Context, tx pgx.Tx, name string) (models.Tag, error) {
	tag := models.Tag{Name: name}

	err := tx.QueryRow(ctx, `SELECT id FROM tags WHERE name = $1`, name).Scan(&tag.ID)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		logger.Error("Repository: Не удалось найти тег", err, zap.String("name", name))
		return tag, fmt.Errorf("поиск тега: %w", err)
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO tags (name) VALUES ($1) ON CONFLICT (name) DO NOTHING RETURNING id`,
		name).Scan(&tag.ID)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		logger.Error("Repository: Не удалось создать тег", err, zap.String("name", name))
		return tag, fmt.Errorf("создание тега: %w", err)
	}

	// конфликт уникальности — тег только что создан кем-то другим
	logger.Info("Repository: Тег создан параллельно, перечитываем", zap.String("name", name))
	err = tx.QueryRow(ctx, `SELECT id FROM tags WHERE name = $1`, name).Scan(&tag.ID)
	if err != nil {
		logger.Error("Repository: Не удалось перечитать тег", err, zap.String("name", name))
		return tag, fmt.Errorf("перечитывание тега: %w", err)
	}
	return tag, nil
}

// normalizeTagNames обрезает пробелы, выкидывает пустые строки
// и убирает дубликаты с сохранением порядка
func normalizeTagNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	normalized := []string{}

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		normalized = append(normalized, name)
	}
	return normalized
}

func (s *Storage) ListTags(ctx context.Context) ([]models.Tag, error) {
	start := time.Now()

	rows, err := s.pool.Query(ctx, `SELECT id, name FROM tags ORDER BY name ASC`)
	if err != nil {
		logger.Error("Repository: Не удалось получить теги", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение тегов: %w", err)
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			logger.Error("Repository: Ошибка сканирования тега", err)
			return nil, fmt.Errorf("сканирование тега: %w", err)
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	if time.Since(start) > time.Millisecond*50 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return tags, nil
}

// CreateTag — прямая вставка без сверки с резолвером.
// Дубликат имени упирается в ограничение уникальности и отдаётся наверх.
func (s *Storage) CreateTag(ctx context.Context, name string) (*models.Tag, error) {
	start := time.Now()

	tag := &models.Tag{Name: name}
	err := s.pool.QueryRow(ctx, `INSERT INTO tags (name) VALUES ($1) RETURNING id`, name).Scan(&tag.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			logger.Warn("Repository: Тег уже существует", zap.String("name", name))
			return nil, repo.ErrTagExists
		}
		logger.Error("Repository: Не удалось создать тег", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("создание тега: %w", err)
	}

	if time.Since(start) > time.Millisecond*50 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return tag, nil
}
