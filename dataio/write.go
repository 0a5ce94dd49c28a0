package dataio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/transform"
)

// Ranking 是一条提交结果：查询及排好序的实体。
type Ranking struct {
	Query    string
	Entities []string
}

// WriteRankings 每个查询写一行 "查询\t实体1\t实体2..."，按 enc 编码。
// GBK 无法表示的字符会导致错误。
func WriteRankings(w io.Writer, rows []Ranking, enc string) error {
	e, err := LookupEncoding(enc)
	if err != nil {
		return err
	}
	tw := transform.NewWriter(w, e.NewEncoder())
	bw := bufio.NewWriter(tw)
	for _, row := range rows {
		fields := append([]string{row.Query}, row.Entities...)
		if _, err := bw.WriteString(strings.Join(fields, "\t") + "\n"); err != nil {
			return fmt.Errorf("write ranking of %q: %w", row.Query, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write rankings: %w", err)
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("write rankings: %w", err)
	}
	return nil
}

// WriteRankingsFile 写入文件
func WriteRankingsFile(path string, rows []Ranking, enc string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := WriteRankings(f, rows, enc); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
