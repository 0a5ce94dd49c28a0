// Package config 加载实验配置（YAML），未出现在文件里的字段保留默认值。
package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/baikerank/core"
	"github.com/rushteam/baikerank/dataio"
	"github.com/rushteam/baikerank/experiment"
	"github.com/rushteam/baikerank/feature"
	"github.com/rushteam/baikerank/rerank"
	"github.com/rushteam/baikerank/store"
)

// DefaultExtractors 是默认的特征组合
const DefaultExtractors = "nchar,char,nsumchar,sumchar,cont_bigram,cont_match"

// Config 是一次实验 / 导出的全部参数。
type Config struct {
	Extractors   string `yaml:"extractors"`
	CVFolds      int    `yaml:"cv_folds"`
	Seed         int64  `yaml:"seed"`
	Parallelism  int    `yaml:"parallelism"`
	ReportsDir   string `yaml:"reports_dir"`
	ModelsDir    string `yaml:"models_dir"`
	OutputDir    string `yaml:"output_dir"`
	ExperimentDB string `yaml:"experiment_db"`
	ResultLimits string `yaml:"result_limits"`
	ReportFilter string `yaml:"report_filter"` // CEL 表达式，只影响报告中的查询诊断

	MetricsTextfile string `yaml:"metrics_textfile"` // 为空则不写

	Data        DataConfig    `yaml:"data"`
	Train       TrainConfig   `yaml:"train"`
	EntityStore store.Options `yaml:"entity_store"`
}

// DataConfig 是数据文件位置，模板中的 {} 替换为子任务名。
type DataConfig struct {
	CVTemplate      string `yaml:"cv_template"`
	HeldOutTemplate string `yaml:"holdout_template"`
	TestTemplate    string `yaml:"test_template"`
	Encoding        string `yaml:"encoding"`
}

// TrainConfig 是逻辑回归的超参数
type TrainConfig struct {
	C             float64 `yaml:"c"`
	MaxIterations int     `yaml:"max_iterations"`
	FreeIntercept bool    `yaml:"free_intercept"` // 默认偏置参与正则
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Extractors:   DefaultExtractors,
		CVFolds:      experiment.DefaultFolds,
		Seed:         0,
		Parallelism:  runtime.NumCPU(),
		ReportsDir:   "reports",
		ModelsDir:    "models",
		OutputDir:    "output",
		ExperimentDB: experiment.DefaultDBPath,
		ResultLimits: "restaurant:70",
		Data: DataConfig{
			CVTemplate:      "data/TRAIN SET/{}.cv.txt",
			HeldOutTemplate: "data/TRAIN SET/{}.holdout.txt",
			TestTemplate:    "data/DEV SET/{}.DEVSET.txt",
			Encoding:        dataio.DefaultEncoding,
		},
		Train: TrainConfig{C: 1.0, MaxIterations: 1000},
		EntityStore: store.Options{
			Backend: store.BackendSQLite,
			DSN:     "entities_db/baike.db",
		},
	}
}

// Load 读取 YAML 配置；path 为空时返回默认配置
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return cfg, nil
}

// ExtractorNames 返回解析后的抽取器名
func (c *Config) ExtractorNames() []string {
	return feature.ParseNames(c.Extractors)
}

// Limits 返回各子任务的结果条数限制
func (c *Config) Limits() (map[core.Subtask]int, error) {
	return rerank.ParseLimits(c.ResultLimits)
}

// Validate 校验配置；reg 不为 nil 时检查所有抽取器均已注册（错误中列出已支持的名称）。
func (c *Config) Validate(reg *feature.Registry) error {
	if c.CVFolds < 2 {
		return invalid("cv_folds must be at least 2, got %d", c.CVFolds)
	}
	if c.Parallelism < 0 {
		return invalid("parallelism must not be negative, got %d", c.Parallelism)
	}
	if c.Train.C <= 0 {
		return invalid("train.c must be positive, got %v", c.Train.C)
	}
	if _, err := dataio.LookupEncoding(c.Data.Encoding); err != nil {
		return err
	}
	if !supportedBackend(c.EntityStore.Backend) {
		return invalid("unsupported entity store backend %q (supported: %v)", c.EntityStore.Backend, store.SupportedBackends())
	}
	if _, err := c.Limits(); err != nil {
		return err
	}
	names := c.ExtractorNames()
	if len(names) == 0 {
		return invalid("no extractors configured")
	}
	if reg != nil {
		if err := reg.Validate(names); err != nil {
			return err
		}
	}
	return nil
}

func supportedBackend(b string) bool {
	if b == "" {
		return true
	}
	for _, s := range store.SupportedBackends() {
		if s == b {
			return true
		}
	}
	return false
}

func invalid(format string, args ...interface{}) error {
	return core.NewDomainError(core.ModuleExperiment, core.ErrorCodeInvalidInput, "config: "+fmt.Sprintf(format, args...))
}
