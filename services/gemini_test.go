package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "json fence đầy đủ",
			raw:  "```json\n[{\"question\":\"Q1\"}]\n```",
			want: `[{"question":"Q1"}]`,
		},
		{
			name: "fence không ghi ngôn ngữ",
			raw:  "```\n{\"a\":1}\n```",
			want: `{"a":1}`,
		},
		{
			name: "prefix json rời",
			raw:  "json\n[1,2,3]",
			want: `[1,2,3]`,
		},
		{
			name: "không có fence",
			raw:  `  {"a":1}  `,
			want: `{"a":1}`,
		},
		{
			name: "chuỗi rỗng",
			raw:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanModelJSON(tt.raw))
		})
	}
}
