package feature

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rushteam/baikerank/core"
)

// Entry 是注册表中的一项：名称 → 抽取函数。
type Entry struct {
	Name      string
	Extractor Extractor
}

// Registry 是具名抽取器目录。
//
// 由启动时的固定表（Builtins）显式构建后注入使用，没有包级全局状态。
// 同名重复注册时后者覆盖前者。
type Registry struct {
	mu         sync.RWMutex
	extractors map[string]Extractor
}

// NewRegistry 用给定的表构建注册表
func NewRegistry(entries ...Entry) *Registry {
	r := &Registry{extractors: make(map[string]Extractor, len(entries))}
	for _, e := range entries {
		r.Register(e.Name, e.Extractor)
	}
	return r
}

// Register 注册一个抽取器；name 为空或 fn 为 nil 时忽略。
func (r *Registry) Register(name string, fn Extractor) {
	if name == "" || fn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors[name] = fn
}

// Lookup 按名称查找抽取器
func (r *Registry) Lookup(name string) (Extractor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.extractors[name]
	return fn, ok
}

// Names 返回已注册的抽取器名（排序），用于错误提示与校验。
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.extractors))
	for name := range r.extractors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate 校验所有名称均已注册；否则返回包含已支持列表的 ErrUnknownExtractor。
func (r *Registry) Validate(names []string) error {
	for _, name := range names {
		if _, ok := r.Lookup(name); !ok {
			return unknownExtractor(name, r.Names())
		}
	}
	return nil
}

// BuildExtractor 将一组名称解析为组合抽取器，输出按名称顺序拼接。
// 任一名称未注册即失败（配置错误，不做部分构建）。
func (r *Registry) BuildExtractor(names []string) (Extractor, error) {
	if len(names) == 0 {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeInvalidInput, "feature: no extractor names given")
	}
	extractors := make([]Extractor, 0, len(names))
	for _, name := range names {
		fn, ok := r.Lookup(name)
		if !ok {
			return nil, unknownExtractor(name, r.Names())
		}
		extractors = append(extractors, fn)
	}
	return Combine(extractors...), nil
}

// BuildExtractorString 同 BuildExtractor，名称以逗号分隔，如 "nchar,char,cont_match"。
func (r *Registry) BuildExtractorString(names string) (Extractor, error) {
	return r.BuildExtractor(ParseNames(names))
}

// ParseNames 解析逗号分隔的抽取器名，去掉空白与空项。
func ParseNames(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// JoinNames 是 ParseNames 的逆操作，用于记录实验的特征组合。
func JoinNames(names []string) string {
	return strings.Join(names, ",")
}

func unknownExtractor(name string, supported []string) error {
	return core.NewDomainError(core.ModuleFeature, core.ErrorCodeUnknownExtractor,
		fmt.Sprintf("feature: unknown extractor name %q (supported: %v)", name, supported))
}
