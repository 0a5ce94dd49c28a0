// Package report 渲染实验结果：终端表格、Markdown / HTML 报告、JSON / YAML 导出，
// 以及基于 CEL 的查询诊断过滤。
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Table 是按显示宽度对齐的纯文本表格，中日韩字符按双宽计算。
type Table struct {
	Headers []string
	Rows    [][]string
}

// Render 写出表格：表头、分隔线、数据行，列间两个空格
func (t *Table) Render(w io.Writer) error {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if sw := runewidth.StringWidth(cell); sw > widths[i] {
				widths[i] = sw
			}
		}
	}

	var b strings.Builder
	writeRow(&b, t.Headers, widths)
	seps := make([]string, len(widths))
	for i, wd := range widths {
		seps[i] = strings.Repeat("-", wd)
	}
	writeRow(&b, seps, widths)
	for _, row := range t.Rows {
		writeRow(&b, row, widths)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeRow(b *strings.Builder, cells []string, widths []int) {
	for i, wd := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if i > 0 {
			b.WriteString("  ")
		}
		if i == len(widths)-1 {
			b.WriteString(cell)
		} else {
			b.WriteString(padRight(cell, wd))
		}
	}
	b.WriteString("\n")
}

// padRight 用空格把 s 补齐到显示宽度 width
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

func formatScore(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func formatMeanStd(mean, std float64) string {
	return fmt.Sprintf("%.2f+-%.2f", mean, std)
}
