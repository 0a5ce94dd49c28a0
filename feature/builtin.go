package feature

import (
	"context"
	"log/slog"
	"strings"

	"github.com/rushteam/baikerank/core"
)

// 内置抽取器名称
const (
	NameNChar       = "nchar"
	NameChar        = "char"
	NameNSumChar    = "nsumchar"
	NameSumChar     = "sumchar"
	NameContMatch   = "cont_match"
	NameContBigram  = "cont_bigram"
	NameContTrigram = "cont_trigram"
	NameBigramCont  = "2gcont"
	NameBigramSum   = "2gsum"
	NameBigramSurf  = "2gsurf"
)

// 兜底特征名（不含子任务前缀）
const (
	FallbackNoSummary = "NO_SUMMARY"
	FallbackNoContent = "NO_CONTENT"
)

// textSource 描述抽取器比较的实体文本来源。
type textSource struct {
	label    string // 特征名中的来源标识：Cont / Sum / Surf
	fallback string // 文本缺失时的兜底特征名；为空表示永不缺失
	fetch    func(ctx context.Context, entity string) (string, error)
}

// contentSource / summarySource 在抽取时才访问 es；es 为 nil 时一律走兜底特征，
// 这样只需要名称的调用方可以传 nil。
func contentSource(es core.EntityStore) textSource {
	return textSource{label: "Cont", fallback: FallbackNoContent, fetch: func(ctx context.Context, entity string) (string, error) {
		if es == nil {
			return "", core.ErrEntityNotFound
		}
		return es.LookupContent(ctx, entity)
	}}
}

func summarySource(es core.EntityStore) textSource {
	return textSource{label: "Sum", fallback: FallbackNoSummary, fetch: func(ctx context.Context, entity string) (string, error) {
		if es == nil {
			return "", core.ErrEntityNotFound
		}
		return es.LookupSummary(ctx, entity)
	}}
}

// surfaceSource 以实体名本身为文本，永远存在。
func surfaceSource() textSource {
	return textSource{label: "Surf", fetch: func(_ context.Context, entity string) (string, error) {
		return entity, nil
	}}
}

// text 取实体文本；失败时返回兜底特征。查询失败在此处被吸收，不向调用方传播。
func (s textSource) text(ctx context.Context, q core.Query, entity string) (string, []Feature) {
	text, err := s.fetch(ctx, entity)
	if err == nil {
		return text, nil
	}
	if !core.IsNotFound(err) {
		slog.Debug("entity lookup failed, using fallback feature",
			"entity", entity, "source", s.label, "error", err)
	}
	return "", []Feature{{Name: string(q.Subtask) + s.fallback, Value: 1}}
}

// Builtins 返回内置抽取器表，在启动时传给 NewRegistry。
func Builtins(es core.EntityStore) []Entry {
	return []Entry{
		{Name: NameNChar, Extractor: countCharOverlap("NCharOverlap", surfaceSource())},
		{Name: NameChar, Extractor: eachCharOverlap("CharOverlap", surfaceSource())},
		{Name: NameNSumChar, Extractor: countCharOverlap("NSumCharOverlap", summarySource(es))},
		{Name: NameSumChar, Extractor: eachCharOverlap("SumCharOverlap", summarySource(es))},
		{Name: NameContMatch, Extractor: contentMatch(contentSource(es))},
		{Name: NameContBigram, Extractor: ngramCount("ContBigramOverlaps", 2, contentSource(es))},
		{Name: NameContTrigram, Extractor: ngramCount("ContTrigramOverlaps", 3, contentSource(es))},
		{Name: NameBigramCont, Extractor: bigramOverlap(contentSource(es))},
		{Name: NameBigramSum, Extractor: bigramOverlap(summarySource(es))},
		{Name: NameBigramSurf, Extractor: bigramOverlap(surfaceSource())},
	}
}

// countCharOverlap：查询与来源文本共有字符数，特征 <subtask><name>=count。
func countCharOverlap(name string, src textSource) Extractor {
	return func(ctx context.Context, q core.Query, entity string) []Feature {
		text, fallback := src.text(ctx, q, entity)
		if fallback != nil {
			return fallback
		}
		return []Feature{{Name: string(q.Subtask) + name, Value: float64(len(sharedChars(q.Text, text)))}}
	}
}

// eachCharOverlap：每个共有字符一个特征 <subtask><name>=<char>，值为 1。
func eachCharOverlap(name string, src textSource) Extractor {
	return func(ctx context.Context, q core.Query, entity string) []Feature {
		text, fallback := src.text(ctx, q, entity)
		if fallback != nil {
			return fallback
		}
		return charFeatures(string(q.Subtask)+name, q.Text, text)
	}
}

func charFeatures(prefix, a, b string) []Feature {
	shared := sharedChars(a, b)
	out := make([]Feature, 0, len(shared))
	for _, r := range shared {
		out = append(out, Feature{Name: prefix + "=" + string(r), Value: 1})
	}
	return out
}

// contentMatch：查询串整体出现在正文中时输出 SHOWED_UP_IN_CONTENT，
// 另外每个与正文共有的字符输出一个 ContCharOverlap 特征。
func contentMatch(src textSource) Extractor {
	return func(ctx context.Context, q core.Query, entity string) []Feature {
		content, fallback := src.text(ctx, q, entity)
		if fallback != nil {
			return fallback
		}
		var out []Feature
		if strings.Contains(content, q.Text) {
			out = append(out, Feature{Name: string(q.Subtask) + "SHOWED_UP_IN_CONTENT", Value: 1})
		}
		return append(out, charFeatures(string(q.Subtask)+"ContCharOverlap", q.Text, content)...)
	}
}

// ngramCount：查询与来源文本的 n-gram 集合交集大小。
func ngramCount(name string, n int, src textSource) Extractor {
	return func(ctx context.Context, q core.Query, entity string) []Feature {
		text, fallback := src.text(ctx, q, entity)
		if fallback != nil {
			return fallback
		}
		return []Feature{{Name: string(q.Subtask) + name, Value: float64(ngramOverlap(q.Text, text, n))}}
	}
}

// bigramOverlap 是按来源参数化的 bigram 重叠计数，特征名 <subtask>2g<来源>Overlaps。
func bigramOverlap(src textSource) Extractor {
	return ngramCount("2g"+src.label+"Overlaps", 2, src)
}
