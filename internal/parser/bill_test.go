package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindBillList(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  string
		found bool
	}{
		{
			name:  "single list after marker",
			text:  "账单:[{'类别': '支出', '金额': '0.99'}]已为您记录成功",
			want:  "[{'类别': '支出', '金额': '0.99'}]",
			found: true,
		},
		{
			name:  "last candidate wins",
			text:  "账单:[{'a':1}] 账单:[{'b':2}]",
			want:  "[{'b':2}]",
			found: true,
		},
		{
			name:  "escaped quotes before the list",
			text:  `"reply": "he said \"hi [1]\" then [{'x':2}]"`,
			want:  "[{'x':2}]",
			found: true,
		},
		{
			name:  "unterminated bracket",
			text:  "账单:[{'a':1}",
			found: false,
		},
		{
			name:  "no bracket at all",
			text:  "已为您记录成功",
			found: false,
		},
		{
			name:  "empty text",
			text:  "",
			found: false,
		},
		{
			name:  "bracket inside single-quoted value",
			text:  "账单:[{'备注': '往返 ] 机场'}]",
			want:  "[{'备注': '往返 ] 机场'}]",
			found: true,
		},
		{
			name:  "bracket inside double-quoted value",
			text:  `结果:[{"note": "a ] b, c"}]`,
			want:  `[{"note": "a ] b, c"}]`,
			found: true,
		},
		{
			name:  "bracket inside full-width quotes",
			text:  "账单:[{'备注': “打车[回家]的钱”}]好的",
			want:  "[{'备注': “打车[回家]的钱”}]",
			found: true,
		},
		{
			name:  "nested lists kept whole",
			text:  "x [[1,2],[3]] y",
			want:  "[[1,2],[3]]",
			found: true,
		},
		{
			name:  "complete list before unterminated one",
			text:  "账单:[{'a':1}] 账单:[{'b':2}",
			want:  "[{'a':1}]",
			found: true,
		},
		{
			name:  "escaped quote inside entry value",
			text:  `账单:[{'备注': '他说\'好\'的'}]`,
			want:  `[{'备注': '他说\'好\'的'}]`,
			found: true,
		},
		{
			name:  "object without list is not a candidate",
			text:  "结果:{'a': 1} 完成",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := FindBillList(tt.text)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindBillListReturnsExactSpan(t *testing.T) {
	text := "前缀 账单: [{'金额': '12.50', '时间': '2025-12-16 00:06:18'}] 后缀"
	got, found := FindBillList(text)
	assert.True(t, found)
	assert.Equal(t, "[{'金额': '12.50', '时间': '2025-12-16 00:06:18'}]", got)
}
