package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// MariaPositionRepo реализует PositionRepo для базы данных MariaDB/MySQL.
// Использует таблицу script_positions для долговременного хранения позиций.
type MariaPositionRepo struct {
	db *sql.DB
}

// NewMariaPositionRepo создает новый репозиторий позиций для MariaDB.
// Автоматически создает таблицу, если она не существует.
//
// Параметры:
//
//	dsn - строка подключения к базе данных (user:pass@tcp(host:port)/dbname)
//
// Возвращает:
//
//	*MariaPositionRepo - экземпляр репозитория
//	error - ошибка при подключении или создании таблицы
func NewMariaPositionRepo(dsn string) (*MariaPositionRepo, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к MariaDB: %w", err)
	}

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось проверить соединение с MariaDB: %w", err)
	}

	repo := &MariaPositionRepo{db: db}

	// Создаем таблицу, если она не существует
	if err := repo.createTable(); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось создать таблицу: %w", err)
	}

	return repo, nil
}

// createTable создает таблицу script_positions, если она не существует.
func (r *MariaPositionRepo) createTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS script_positions (
			player_id  VARCHAR(36) PRIMARY KEY,
			region     VARCHAR(64) NOT NULL,
			x          INT         NOT NULL,
			y          INT         NOT NULL,
			z          INT         NOT NULL,
			updated_at TIMESTAMP   DEFAULT CURRENT_TIMESTAMP
			           ON UPDATE   CURRENT_TIMESTAMP,
			INDEX idx_region (region),
			INDEX idx_updated_at (updated_at)
		) ENGINE=InnoDB
	`

	_, err := r.db.Exec(query)
	if err != nil {
		return fmt.Errorf("ошибка создания таблицы script_positions: %w", err)
	}

	return nil
}

// Save сохраняет позицию участника в базе данных.
// Использует INSERT ... ON DUPLICATE KEY UPDATE для обновления существующих записей.
func (r *MariaPositionRepo) Save(ctx context.Context, playerID string, pos PlayerPosition) error {
	// Валидация входных данных
	if playerID == "" {
		return fmt.Errorf("пустой идентификатор участника")
	}
	if pos.Region == "" {
		return fmt.Errorf("позиция участника %s без региона", playerID)
	}

	query := `
		INSERT INTO script_positions (player_id, region, x, y, z)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			region = VALUES(region),
			x = VALUES(x),
			y = VALUES(y),
			z = VALUES(z),
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.ExecContext(ctx, query, playerID, pos.Region,
		pos.Position.X, pos.Position.Y, pos.Position.Z)
	if err != nil {
		return fmt.Errorf("ошибка сохранения позиции для участника %s: %w", playerID, err)
	}

	return nil
}

// Load загружает позицию участника из базы данных.
func (r *MariaPositionRepo) Load(ctx context.Context, playerID string) (PlayerPosition, bool, error) {
	// Валидация входных данных
	if playerID == "" {
		return PlayerPosition{}, false, fmt.Errorf("пустой идентификатор участника")
	}

	query := `SELECT region, x, y, z, updated_at FROM script_positions WHERE player_id = ?`

	var pos PlayerPosition
	err := r.db.QueryRowContext(ctx, query, playerID).Scan(
		&pos.Region, &pos.Position.X, &pos.Position.Y, &pos.Position.Z, &pos.UpdatedAt)

	if err == sql.ErrNoRows {
		// Позиция не найдена - первый вход участника
		return PlayerPosition{}, false, nil
	}

	if err != nil {
		return PlayerPosition{}, false, fmt.Errorf("ошибка загрузки позиции для участника %s: %w", playerID, err)
	}

	return pos, true, nil
}

// Delete удаляет сохраненную позицию участника.
func (r *MariaPositionRepo) Delete(ctx context.Context, playerID string) error {
	// Валидация входных данных
	if playerID == "" {
		return fmt.Errorf("пустой идентификатор участника")
	}

	query := `DELETE FROM script_positions WHERE player_id = ?`

	result, err := r.db.ExecContext(ctx, query, playerID)
	if err != nil {
		return fmt.Errorf("ошибка удаления позиции для участника %s: %w", playerID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения количества затронутых строк: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("позиция участника %s не найдена", playerID)
	}

	return nil
}

// BatchSave сохраняет позиции нескольких участников в одной транзакции.
// Это оптимизация для автосохранения всех подключённых участников.
func (r *MariaPositionRepo) BatchSave(ctx context.Context, positions map[string]PlayerPosition) error {
	if len(positions) == 0 {
		return nil // Нечего сохранять
	}

	// Начинаем транзакцию
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback() // Откат в случае ошибки

	// Подготавливаем запрос
	query := `
		INSERT INTO script_positions (player_id, region, x, y, z)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			region = VALUES(region),
			x = VALUES(x),
			y = VALUES(y),
			z = VALUES(z),
			updated_at = CURRENT_TIMESTAMP
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("ошибка подготовки запроса: %w", err)
	}
	defer stmt.Close()

	// Выполняем запросы для каждой позиции
	for playerID, pos := range positions {
		// Валидация каждой записи
		if playerID == "" {
			return fmt.Errorf("пустой идентификатор участника в batch")
		}
		if pos.Region == "" {
			return fmt.Errorf("позиция участника %s без региона", playerID)
		}

		_, err = stmt.ExecContext(ctx, playerID, pos.Region,
			pos.Position.X, pos.Position.Y, pos.Position.Z)
		if err != nil {
			return fmt.Errorf("ошибка сохранения позиции для участника %s в batch: %w", playerID, err)
		}
	}

	// Фиксируем транзакцию
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}

	return nil
}

// Close закрывает соединение с базой данных.
func (r *MariaPositionRepo) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
