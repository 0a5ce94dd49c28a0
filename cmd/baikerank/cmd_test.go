package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/baikerank/core"
	"github.com/rushteam/baikerank/experiment"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

var subtaskQueries = map[core.Subtask][]string{
	core.SubtaskCelebrity:  {"刘德华", "张学友", "周杰伦", "王菲"},
	core.SubtaskMovie:      {"北京故事", "英雄本色", "无间道", "大话西游"},
	core.SubtaskRestaurant: {"全聚德", "东来顺", "海底捞", "外婆家"},
	core.SubtaskTVShow:     {"快乐大本营", "天天向上", "非诚勿扰", "爸爸去哪儿"},
}

// writeWorkspace 生成 utf-8 数据文件与配置，返回配置文件路径
func writeWorkspace(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))

	for st, queries := range subtaskQueries {
		var train, test strings.Builder
		for i, q := range queries {
			other := queries[(i+1)%len(queries)]
			fmt.Fprintf(&train, "%s\t%s:0\t%s（%s）:1\t%s:0\n", q, other, q, st, "无关条目")
			fmt.Fprintf(&test, "%s\t%s\t%s\t%s（%s）\n", q, "无关条目", other, q, st)
		}
		for _, suffix := range []string{"cv", "holdout"} {
			path := filepath.Join(dataDir, fmt.Sprintf("%s.%s.txt", st, suffix))
			require.NoError(t, os.WriteFile(path, []byte(train.String()), 0o644))
		}
		path := filepath.Join(dataDir, fmt.Sprintf("%s.dev.txt", st))
		require.NoError(t, os.WriteFile(path, []byte(test.String()), 0o644))
	}

	seed := "刘德华（celebrity）:\n  summary: 香港演员、歌手\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "entities.yaml"), []byte(seed), 0o644))

	cfg := fmt.Sprintf(`
extractors: nchar,char
cv_folds: 2
parallelism: 2
reports_dir: %[1]s/reports
models_dir: %[1]s/models
output_dir: %[1]s/output
experiment_db: %[1]s/experiments.db
result_limits: restaurant:1
metrics_textfile: %[1]s/baikerank.prom
data:
  cv_template: %[1]s/data/{}.cv.txt
  holdout_template: %[1]s/data/{}.holdout.txt
  test_template: %[1]s/data/{}.dev.txt
  encoding: utf-8
entity_store:
  backend: memory
  seed_file: %[1]s/entities.yaml
  cache_size: 16
`, dir)
	cfgPath := filepath.Join(dir, "baikerank.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	return dir, cfgPath
}

func TestExtractorsCommand(t *testing.T) {
	out, err := executeCommand(t, "extractors")
	require.NoError(t, err)
	names := strings.Fields(out)
	assert.Contains(t, names, "nchar")
	assert.Contains(t, names, "cont_match")
	assert.Contains(t, names, "2gsurf")
	assert.Len(t, names, 10)
}

func TestRunExportSummary(t *testing.T) {
	dir, cfgPath := writeWorkspace(t)

	out, err := executeCommand(t, "run", "-c", cfgPath, "--filter", "q.ap < 1.0")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Experiment ID: 1.")
	assert.Contains(t, out, "Cross validation:")
	assert.Contains(t, out, "Held-out set:")
	assert.FileExists(t, filepath.Join(dir, "models", "001.model"))
	assert.FileExists(t, filepath.Join(dir, "reports", "001.html"))

	prom, err := os.ReadFile(filepath.Join(dir, "baikerank.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(prom), `baikerank_runs_total{command="run",status="success"} 1`)
	assert.Contains(t, string(prom), "baikerank_cv_fold_duration_seconds_count 2")

	// 同一特征组合再跑一次，汇总只保留最新一次
	_, err = executeCommand(t, "run", "-c", cfgPath)
	require.NoError(t, err)
	_, err = executeCommand(t, "run", "-c", cfgPath, "-e", "nchar")
	require.NoError(t, err)

	out, err = executeCommand(t, "summary", "-c", cfgPath, "-f", "json")
	require.NoError(t, err)
	var rows []experiment.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, int64(2), rows[0].ID)
	assert.Equal(t, "nchar,char", rows[0].Features)
	assert.Equal(t, int64(3), rows[1].ID)
	assert.Len(t, rows[0].Scores, 4)

	out, err = executeCommand(t, "summary", "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Features")
	assert.Contains(t, out, "nchar,char")

	out, err = executeCommand(t, "export", "-c", cfgPath, "--model-id", "1")
	require.NoError(t, err, out)
	for st, queries := range subtaskQueries {
		data, err := os.ReadFile(filepath.Join(dir, "output", string(st)+".txt"))
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
		require.Len(t, lines, len(queries))
		fields := strings.Split(lines[0], "\t")
		assert.Equal(t, queries[0], fields[0])
		if st == core.SubtaskRestaurant {
			assert.Len(t, fields, 2, "restaurant results are limited to 1")
		} else {
			assert.Len(t, fields, 4)
		}
		// 与查询重合最多的条目排在第一
		assert.Equal(t, fmt.Sprintf("%s（%s）", queries[0], st), fields[1])
	}
}

func TestSummaryCommand_Errors(t *testing.T) {
	_, cfgPath := writeWorkspace(t)

	_, err := executeCommand(t, "summary", "-c", cfgPath, "-f", "xml")
	assert.ErrorContains(t, err, "unsupported format")

	out, err := executeCommand(t, "summary", "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No experiments recorded.")
}

func TestExportCommand_MissingModel(t *testing.T) {
	_, cfgPath := writeWorkspace(t)
	_, err := executeCommand(t, "export", "-c", cfgPath, "--model-id", "42")
	assert.ErrorContains(t, err, "cannot find model")

	_, err = executeCommand(t, "export", "-c", cfgPath)
	assert.Error(t, err, "model-id is required")
}

func TestRunCommand_UnknownExtractor(t *testing.T) {
	_, cfgPath := writeWorkspace(t)
	_, err := executeCommand(t, "run", "-c", cfgPath, "-e", "nchar,bogus")
	require.Error(t, err)
	assert.True(t, core.IsUnknownExtractor(err), "error = %v", err)
}
