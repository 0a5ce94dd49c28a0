package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/rushteam/baikerank/core"
)

// entitiesSchema 是百科实体库的表结构，entity_name 唯一。
const entitiesSchema = `
CREATE TABLE IF NOT EXISTS entities(
  entity_name NUM,
  title NUM,
  link NUM,
  summary TEXT,
  content TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS entity_name ON entities(entity_name);
`

// SQLiteEntityDB 是基于 SQLite 百科库的 EntityStore。
// database/sql 连接池本身并发安全，构造一次后在各折之间共享。
type SQLiteEntityDB struct {
	db *sql.DB
}

// OpenSQLiteEntityDB 打开（必要时创建）百科实体库
func OpenSQLiteEntityDB(path string) (*SQLiteEntityDB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(10000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open entity db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect entity db: %w", err)
	}
	if _, err := db.Exec(entitiesSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init entity schema: %w", err)
	}
	return &SQLiteEntityDB{db: db}, nil
}

func (s *SQLiteEntityDB) Name() string { return "sqlite" }

func (s *SQLiteEntityDB) LookupSummary(ctx context.Context, entity string) (string, error) {
	return s.lookup(ctx, entity, FieldSummary)
}

func (s *SQLiteEntityDB) LookupContent(ctx context.Context, entity string) (string, error) {
	return s.lookup(ctx, entity, FieldContent)
}

func (s *SQLiteEntityDB) lookup(ctx context.Context, entity, column string) (string, error) {
	// column 只来自本包常量
	query := "SELECT " + column + " FROM entities WHERE entity_name = ?"
	var text sql.NullString
	err := s.db.QueryRowContext(ctx, query, entity).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", core.ErrEntityNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup %s of %q: %w", column, entity, err)
	}
	if !text.Valid {
		return "", core.ErrEntityNotFound
	}
	return text.String, nil
}

// Put 写入或覆盖一个实体
func (s *SQLiteEntityDB) Put(ctx context.Context, entity, summary, content string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entities(entity_name, title, summary, content) VALUES(?, ?, ?, ?)
		 ON CONFLICT(entity_name) DO UPDATE SET summary = excluded.summary, content = excluded.content`,
		entity, entity, nullIfEmpty(summary), nullIfEmpty(content),
	)
	if err != nil {
		return fmt.Errorf("put entity %q: %w", entity, err)
	}
	return nil
}

func (s *SQLiteEntityDB) Close() error {
	return s.db.Close()
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ core.EntityStore = (*SQLiteEntityDB)(nil)
