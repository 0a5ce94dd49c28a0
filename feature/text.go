package feature

import "sort"

// charSet 返回字符串中出现的字符集合（按 rune 计）。
func charSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	for _, r := range s {
		set[r] = struct{}{}
	}
	return set
}

// sharedChars 返回 a、b 共有的字符，按码点升序。
func sharedChars(a, b string) []rune {
	sa, sb := charSet(a), charSet(b)
	out := make([]rune, 0, len(sa))
	for r := range sa {
		if _, ok := sb[r]; ok {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NGrams 返回 s 中所有长度为 n 的连续子串（按 rune 切分，含重复）。
// s 短于 n 时返回空。
func NGrams(s string, n int) []string {
	runes := []rune(s)
	if n <= 0 || len(runes) < n {
		return nil
	}
	out := make([]string, 0, len(runes)-n+1)
	for i := 0; i+n <= len(runes); i++ {
		out = append(out, string(runes[i:i+n]))
	}
	return out
}

// ngramOverlap 返回 a、b 的 n-gram 集合交集大小。
func ngramOverlap(a, b string, n int) int {
	grams := make(map[string]struct{})
	for _, g := range NGrams(a, n) {
		grams[g] = struct{}{}
	}
	if len(grams) == 0 {
		return 0
	}
	shared := make(map[string]struct{})
	for _, g := range NGrams(b, n) {
		if _, ok := grams[g]; ok {
			shared[g] = struct{}{}
		}
	}
	return len(shared)
}
