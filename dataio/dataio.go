// Package dataio 读写评测数据：制表符分隔的查询行，默认 GBK 编码。
//
// 训练 / 留出数据每行为
//
//	查询\t实体1:标签\t实体2:标签...
//
// 实体本身可以包含冒号，标签取最后一个冒号之后的部分。
// 测试数据（WithTestData）的每一项都是完整实体名，没有标签。
package dataio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/rushteam/baikerank/core"
)

// DefaultEncoding 是数据文件的默认编码
const DefaultEncoding = "gbk"

// maxLineSize 单行上限，候选很多的查询行可能很长
const maxLineSize = 16 << 20

// LookupEncoding 按名称返回编码：gbk、gb18030、utf-8
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "gbk", "cp936":
		return simplifiedchinese.GBK, nil
	case "gb18030":
		return simplifiedchinese.GB18030, nil
	case "utf-8", "utf8":
		return unicode.UTF8, nil
	default:
		return nil, core.NewDomainError(core.ModuleData, core.ErrorCodeInvalidInput,
			fmt.Sprintf("data: unsupported encoding %q", name))
	}
}

type options struct {
	testData bool
	encoding string
}

// Option 读取选项
type Option func(*options)

// WithTestData 按测试数据读取：不解析标签，标签为 core.LabelUnknown
func WithTestData() Option {
	return func(o *options) { o.testData = true }
}

// WithEncoding 设置文件编码，默认 gbk
func WithEncoding(name string) Option {
	return func(o *options) { o.encoding = name }
}

func buildOptions(opts []Option) options {
	o := options{encoding: DefaultEncoding}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Load 读取一个数据文件
func Load(path string, opts ...Option) ([]core.QueryGroup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	groups, err := parse(f, path, buildOptions(opts))
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// Parse 从 r 读取数据行，name 只用于错误信息
func Parse(r io.Reader, name string, opts ...Option) ([]core.QueryGroup, error) {
	return parse(r, name, buildOptions(opts))
}

func parse(r io.Reader, name string, o options) ([]core.QueryGroup, error) {
	enc, err := LookupEncoding(o.encoding)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(transform.NewReader(r, enc.NewDecoder()))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		groups []core.QueryGroup
		lineNo int
	)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		terms := strings.Split(line, "\t")
		if len(terms) < 2 {
			continue
		}

		group := core.QueryGroup{Text: terms[0], Candidates: make([]core.Candidate, 0, len(terms)-1)}
		for _, term := range terms[1:] {
			c, err := parseCandidate(term, o.testData)
			if err != nil {
				return nil, core.NewDomainError(core.ModuleData, core.ErrorCodeInvalidInput,
					fmt.Sprintf("%s:%d: %v", name, lineNo, err))
			}
			group.Candidates = append(group.Candidates, c)
		}
		groups = append(groups, group)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return groups, nil
}

func parseCandidate(term string, testData bool) (core.Candidate, error) {
	if testData {
		return core.Candidate{Entity: term, Label: core.LabelUnknown}, nil
	}
	i := strings.LastIndex(term, ":")
	if i < 0 {
		return core.Candidate{}, fmt.Errorf("item %q has no label", term)
	}
	label, err := strconv.Atoi(strings.TrimSpace(term[i+1:]))
	if err != nil || (label != 0 && label != 1) {
		return core.Candidate{}, fmt.Errorf("item %q has invalid label %q", term, term[i+1:])
	}
	return core.Candidate{Entity: term[:i], Label: label}, nil
}

// LoadDataset 按模板为每个子任务读取数据，模板中的 {} 替换为子任务名，
// 如 "data/TRAIN SET/{}.cv.txt"。
func LoadDataset(template string, subtasks []core.Subtask, opts ...Option) (core.Dataset, error) {
	data := make(core.Dataset, len(subtasks))
	for _, t := range subtasks {
		groups, err := Load(DataPath(template, t), opts...)
		if err != nil {
			return nil, err
		}
		data[t] = groups
	}
	return data, nil
}

// DataPath 展开路径模板
func DataPath(template string, t core.Subtask) string {
	return strings.ReplaceAll(template, "{}", string(t))
}
