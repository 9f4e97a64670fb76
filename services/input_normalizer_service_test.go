package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetInputTypeFromExt(t *testing.T) {
	tests := []struct {
		ext  string
		want InputType
	}{
		{".pdf", InputPDF},
		{".docx", InputDOCX},
		{".txt", InputTXT},
	}
	for _, tt := range tests {
		got, err := GetInputTypeFromExt(tt.ext)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestGetInputTypeFromExtRejectsUnknown(t *testing.T) {
	_, err := GetInputTypeFromExt(".mp3")
	assert.Error(t, err)

	_, err = GetInputTypeFromExt("")
	assert.Error(t, err)
}
