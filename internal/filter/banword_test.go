package filter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBanWordFilter_FindBannedWord(t *testing.T) {
	f := NewBanWordFilter()

	t.Run("чистый текст", func(t *testing.T) {
		assert.Equal(t, "", f.FindBannedWord("отличный врач, очень внимательный"))
	})

	t.Run("запрещённое слово найдено", func(t *testing.T) {
		assert.Equal(t, "мошенник", f.FindBannedWord("это просто мошенник какой-то"))
	})

	t.Run("регистр не влияет", func(t *testing.T) {
		assert.Equal(t, "scam", f.FindBannedWord("total SCAM do not go"))
	})

	t.Run("пустой текст", func(t *testing.T) {
		assert.Equal(t, "", f.FindBannedWord(""))
	})
}

func TestBanWordFilter_Add(t *testing.T) {
	f := NewBanWordFilter()
	assert.False(t, f.Contains("ужасный сервис"))

	f.Add("ужасный")
	assert.True(t, f.Contains("ужасный сервис"))
}

func TestNewBanWordFilterFromFile(t *testing.T) {
	t.Run("пустой путь даёт встроенный словарь", func(t *testing.T) {
		f, err := NewBanWordFilterFromFile("")
		require.NoError(t, err)
		assert.True(t, f.Contains("мошенник"))
	})

	t.Run("словарь из файла", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "banwords.txt")
		content := "# комментарий\nхалтура\n\nобман\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		f, err := NewBanWordFilterFromFile(path)
		require.NoError(t, err)

		assert.True(t, f.Contains("сплошная халтура"))
		assert.True(t, f.Contains("Обман и только"))
		assert.False(t, f.Contains("комментарий"))
		assert.False(t, f.Contains("мошенник"))
	})

	t.Run("файл не существует", func(t *testing.T) {
		_, err := NewBanWordFilterFromFile("/nonexistent/banwords.txt")
		assert.Error(t, err)
	})
}
