package controllers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTextIntoChunks(t *testing.T) {
	text := strings.Repeat("a", 7000)
	chunks := SplitTextIntoChunks(text, 3000)

	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 3000)
	assert.Len(t, chunks[1], 3000)
	assert.Len(t, chunks[2], 1000)
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplitTextIntoChunksUnicode(t *testing.T) {
	// Tiếng Việt nhiều byte: phải cắt theo rune, không được cắt giữa ký tự
	text := strings.Repeat("đạ", 10)
	chunks := SplitTextIntoChunks(text, 7)

	assert.Equal(t, text, strings.Join(chunks, ""))
	for _, ch := range chunks {
		assert.LessOrEqual(t, len([]rune(ch)), 7)
	}
}

func TestSplitTextIntoChunksEmpty(t *testing.T) {
	assert.Empty(t, SplitTextIntoChunks("", 3000))
}

func TestSplitTextIntoChunksSmart(t *testing.T) {
	text := "Câu thứ nhất nói về lịch sử. Câu thứ hai nói về địa lý! Câu thứ ba hỏi một điều gì đó? Câu thứ tư xuống dòng\nCâu thứ năm kết thúc."
	chunks := SplitTextIntoChunksSmart(text, 60)

	require.NotEmpty(t, chunks)
	for _, ch := range chunks {
		// Không chunk nào vượt quá giới hạn quá xa (một câu có thể dài hơn maxLen)
		assert.NotEmpty(t, ch)
		assert.False(t, strings.HasPrefix(ch, " "))
	}

	// Không câu nào bị mất
	joined := strings.Join(chunks, " ")
	assert.Contains(t, joined, "Câu thứ nhất nói về lịch sử")
	assert.Contains(t, joined, "Câu thứ năm kết thúc")
}

func TestSplitTextIntoChunksSmartSingleSentence(t *testing.T) {
	chunks := SplitTextIntoChunksSmart("Chỉ có một câu duy nhất.", 2000)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Chỉ có một câu duy nhất.", chunks[0])
}

func TestSplitTextIntoChunksSmartSkipsBlankSentences(t *testing.T) {
	chunks := SplitTextIntoChunksSmart("...\n\n!!!", 100)
	assert.Empty(t, chunks)
}
