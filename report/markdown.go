package report

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/rushteam/baikerank/core"
	"github.com/rushteam/baikerank/eval"
)

// Markdown 渲染实验报告：结果表 + 逐查询诊断（先留出集，后交叉验证）。
// filter 为 nil 时列出所有查询。
func Markdown(s *Summary, filter *Filter) (string, error) {
	var b strings.Builder
	if s.ID > 0 {
		fmt.Fprintf(&b, "# Experiment %03d\n\n", s.ID)
	} else {
		b.WriteString("# Experiment\n\n")
	}
	if len(s.Extractors) > 0 {
		fmt.Fprintf(&b, "Extractors: `%s`\n\n", strings.Join(s.Extractors, ","))
	}
	if filter != nil && filter.String() != "" {
		fmt.Fprintf(&b, "Filter: `%s`\n\n", filter.String())
	}

	b.WriteString("## Cross validation\n\n")
	writeMarkdownTable(&b, s.CVTable())
	b.WriteString("\n## Held-out set\n\n")
	writeMarkdownTable(&b, s.HeldOutTable())

	if s.HeldOut != nil {
		b.WriteString("\n## Held-out queries\n")
		for _, t := range s.HeldOut.Present() {
			if err := writeQuerySection(&b, filter, PhaseHeldOut, t, s.HeldOut.Subtasks[t].QueryResults); err != nil {
				return "", err
			}
		}
	}
	if len(s.CV) > 0 {
		b.WriteString("\n## Cross validation queries\n")
		for _, t := range s.CV.Present() {
			if err := writeQuerySection(&b, filter, PhaseCV, t, s.CV[t].QueryResults); err != nil {
				return "", err
			}
		}
	}
	return b.String(), nil
}

func writeQuerySection(b *strings.Builder, filter *Filter, phase string, t core.Subtask, results []eval.QueryResult) error {
	matched, err := filter.Apply(phase, t, results)
	if err != nil {
		return err
	}
	fmt.Fprintf(b, "\n### %s (%d/%d)\n\n", t, len(matched), len(results))
	if len(matched) == 0 {
		return nil
	}
	table := &Table{Headers: []string{"#", "Query", "AP", "Ranking"}}
	for _, qr := range matched {
		table.Rows = append(table.Rows, []string{
			fmt.Sprintf("%d", qr.ID),
			qr.Term,
			formatScore(qr.AP),
			formatRanking(qr.Ranked),
		})
	}
	writeMarkdownTable(b, table)
	return nil
}

// formatRanking 标注相关的实体加粗
func formatRanking(ranked []eval.RankedEntity) string {
	parts := make([]string, len(ranked))
	for i, r := range ranked {
		if r.IsGS {
			parts[i] = "**" + escapeCell(r.Entity) + "**"
		} else {
			parts[i] = escapeCell(r.Entity)
		}
	}
	return strings.Join(parts, ", ")
}

func writeMarkdownTable(b *strings.Builder, t *Table) {
	b.WriteString("| " + strings.Join(escapeCells(t.Headers), " | ") + " |\n")
	seps := make([]string, len(t.Headers))
	for i := range seps {
		seps[i] = "---"
	}
	b.WriteString("| " + strings.Join(seps, " | ") + " |\n")
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, c := range row {
			// Ranking 列已转义
			if i == len(t.Headers)-1 && t.Headers[i] == "Ranking" {
				cells[i] = c
				continue
			}
			cells[i] = escapeCell(c)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = escapeCell(c)
	}
	return out
}

var cellEscaper = strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`, "`", "\\`", "\n", " ")

func escapeCell(s string) string {
	return cellEscaper.Replace(s)
}

// markdownRenderer 支持 GFM 表格
var markdownRenderer = goldmark.New(goldmark.WithExtensions(extension.Table))

// WriteHTML 将 Markdown 报告转为独立的 HTML 页面
func WriteHTML(w io.Writer, s *Summary, filter *Filter) error {
	md, err := Markdown(s, filter)
	if err != nil {
		return err
	}
	var body bytes.Buffer
	if err := markdownRenderer.Convert([]byte(md), &body); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}

	title := "Experiment"
	if s.ID > 0 {
		title = fmt.Sprintf("Experiment %03d", s.ID)
	}
	_, err = fmt.Fprintf(w, htmlPage, html.EscapeString(title), body.String())
	return err
}

const htmlPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 1em; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
strong { color: #1a7f37; }
</style>
</head>
<body>
%s</body>
</html>
`
