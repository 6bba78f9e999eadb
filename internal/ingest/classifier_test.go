package ingest

import "testing"

func TestClassify(t *testing.T) {
	testCases := []struct {
		name     string
		block    string
		expected string
	}{
		{
			name:     "article heading",
			block:    "제31조(수업료) 학교의 설립자ㆍ경영자는 수업료를 받을 수 있다.",
			expected: "제31조",
		},
		{
			name:     "article with sub-number",
			block:    "제250조의2 (특수범죄) 내용",
			expected: "제250조의2",
		},
		{
			name:     "article with qualifier word",
			block:    "형법 제1조(범죄의 성립과 처벌)",
			expected: "제1조",
		},
		{
			name:     "article with internal whitespace",
			block:    "제 12 조 의 3 본문",
			expected: "제12조의3",
		},
		{
			name:     "circled number item",
			block:    "① 누구든지 신고할 수 있다.",
			expected: "item-①",
		},
		{
			name:     "circled number beyond ten",
			block:    "⑮ 기타 사항",
			expected: "item-⑮",
		},
		{
			name:     "fallback first line trimmed to 15 runes",
			block:    "이것은 매우 긴 첫 번째 줄의 예시 텍스트입니다\n둘째 줄",
			expected: "이것은매우긴첫번째줄의예시텍스",
		},
		{
			name:     "fallback strips unsafe characters",
			block:    `a/b\c:d*e?"f"<g>|h`,
			expected: "abcdefgh",
		},
		{
			name:     "fallback strips braces",
			block:    "short {answer} here",
			expected: "shortanswerhere",
		},
		{
			name:     "unlabelable block",
			block:    `?*"|`,
			expected: "block",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.block); got != tc.expected {
				t.Errorf("expected label %q, got %q", tc.expected, got)
			}
		})
	}
}
