package experiment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rushteam/baikerank/core"
	"github.com/rushteam/baikerank/feature"
)

// DefaultDBPath 是默认的实验记录库
const DefaultDBPath = "experiments.db"

// timestampLayout 定长格式，保证按字符串比较即按时间比较
const timestampLayout = "2006-01-02 15:04:05.000000"

const experimentsSchema = `
CREATE TABLE IF NOT EXISTS experiments(
  exp_id INTEGER PRIMARY KEY AUTOINCREMENT,
  timestamp DATETIME,
  features TEXT,
  avg_map REAL,
  celebrity REAL,
  movie REAL,
  restaurant REAL,
  tvShow REAL,
  cv_result TEXT,
  hd_result TEXT
)`

// DB 是基于 SQLite 的实验记录库。
type DB struct {
	db *sql.DB
}

// OpenDB 打开（必要时创建）实验记录库
func OpenDB(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(10000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open experiment db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect experiment db: %w", err)
	}
	if _, err := db.Exec(experimentsSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init experiment schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close 关闭数据库
func (d *DB) Close() error {
	return d.db.Close()
}

// Create 登记一次新实验并返回带有 ID 的记录
func (d *DB) Create(ctx context.Context, extractors []string) (*Experiment, error) {
	now := time.Now()
	res, err := d.db.ExecContext(ctx, "INSERT INTO experiments(timestamp) VALUES(?)", formatTimestamp(now))
	if err != nil {
		return nil, fmt.Errorf("create experiment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create experiment: %w", err)
	}
	names := make([]string, len(extractors))
	copy(names, extractors)
	return &Experiment{ID: id, Timestamp: now, Extractors: names}, nil
}

// Save 写入实验结果
func (d *DB) Save(ctx context.Context, e *Experiment) error {
	cv, err := json.Marshal(e.CV)
	if err != nil {
		return fmt.Errorf("encode cv result: %w", err)
	}
	hd, err := json.Marshal(e.HeldOut)
	if err != nil {
		return fmt.Errorf("encode held-out result: %w", err)
	}

	scores := make([]sql.NullFloat64, len(core.Subtasks))
	for i, t := range core.Subtasks {
		if s, ok := e.HeldOutScore(t); ok {
			scores[i] = sql.NullFloat64{Float64: s, Valid: true}
		}
	}

	res, err := d.db.ExecContext(ctx,
		`UPDATE experiments SET features = ?, avg_map = ?,
		   celebrity = ?, movie = ?, restaurant = ?, tvShow = ?,
		   cv_result = ?, hd_result = ?
		 WHERE exp_id = ?`,
		e.Features(), e.AvgMAP(),
		scores[0], scores[1], scores[2], scores[3],
		string(cv), string(hd), e.ID,
	)
	if err != nil {
		return fmt.Errorf("save experiment %d: %w", e.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.NewDomainError(core.ModuleExperiment, core.ErrorCodeNotFound,
			fmt.Sprintf("experiment: no experiment with id %d", e.ID))
	}
	return nil
}

// Get 读取一次实验的完整记录
func (d *DB) Get(ctx context.Context, id int64) (*Experiment, error) {
	var (
		ts       string
		features sql.NullString
		cv, hd   sql.NullString
	)
	err := d.db.QueryRowContext(ctx,
		"SELECT timestamp, features, cv_result, hd_result FROM experiments WHERE exp_id = ?", id,
	).Scan(&ts, &features, &cv, &hd)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.NewDomainError(core.ModuleExperiment, core.ErrorCodeNotFound,
			fmt.Sprintf("experiment: no experiment with id %d", id))
	}
	if err != nil {
		return nil, fmt.Errorf("get experiment %d: %w", id, err)
	}

	e := &Experiment{ID: id, Timestamp: parseTimestamp(ts), Extractors: feature.ParseNames(features.String)}
	if cv.Valid && cv.String != "" {
		if err := json.Unmarshal([]byte(cv.String), &e.CV); err != nil {
			return nil, fmt.Errorf("decode cv result of %d: %w", id, err)
		}
	}
	if hd.Valid && hd.String != "" {
		if err := json.Unmarshal([]byte(hd.String), &e.HeldOut); err != nil {
			return nil, fmt.Errorf("decode held-out result of %d: %w", id, err)
		}
	}
	return e, nil
}

// Summary 是实验列表中的一行
type Summary struct {
	ID        int64                    `json:"id" yaml:"id"`
	Timestamp time.Time                `json:"timestamp" yaml:"timestamp"`
	Features  string                   `json:"features" yaml:"features"`
	AvgMAP    float64                  `json:"avg_map" yaml:"avg_map"`
	Scores    map[core.Subtask]float64 `json:"scores" yaml:"scores"`
}

// Summaries 返回每个特征组合最近一次完成的实验，按 ID 升序
func (d *DB) Summaries(ctx context.Context) ([]Summary, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT MAX(exp_id), timestamp, features, avg_map, celebrity, movie, restaurant, tvShow
		FROM experiments
		WHERE features IS NOT NULL
		GROUP BY features
		ORDER BY exp_id`)
	if err != nil {
		return nil, fmt.Errorf("list experiments: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			s      Summary
			ts     string
			avg    sql.NullFloat64
			scores = make([]sql.NullFloat64, len(core.Subtasks))
		)
		if err := rows.Scan(&s.ID, &ts, &s.Features, &avg, &scores[0], &scores[1], &scores[2], &scores[3]); err != nil {
			return nil, fmt.Errorf("scan experiment: %w", err)
		}
		s.Timestamp = parseTimestamp(ts)
		s.AvgMAP = avg.Float64
		s.Scores = make(map[core.Subtask]float64, len(core.Subtasks))
		for i, t := range core.Subtasks {
			if scores[i].Valid {
				s.Scores[t] = scores[i].Float64
			}
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// parseTimestamp 也接受驱动把 DATETIME 列转成 time.Time 后再转回的字符串
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{timestampLayout, time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
