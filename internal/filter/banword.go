package filter

import (
	"bufio"
	"os"
	"strings"
	"sync"
)

// BanWordFilter проверяет тексты отзывов на наличие запрещённых слов.
// Словарь загружается один раз при создании и далее только читается,
// поэтому фильтр безопасен для конкурентного использования.
type BanWordFilter struct {
	mu    sync.RWMutex
	words map[string]struct{}
}

// defaultBanWords используется, если файл словаря не задан или недоступен.
var defaultBanWords = []string{
	"дурак",
	"идиот",
	"мошенник",
	"scam",
	"fraud",
}

// NewBanWordFilter создаёт фильтр со встроенным словарём.
func NewBanWordFilter() *BanWordFilter {
	f := &BanWordFilter{words: make(map[string]struct{})}
	for _, w := range defaultBanWords {
		f.Add(w)
	}
	return f
}

// NewBanWordFilterFromFile загружает словарь из файла: одно слово на строку,
// строки с '#' считаются комментариями. При пустом пути возвращается фильтр
// со встроенным словарём.
func NewBanWordFilterFromFile(path string) (*BanWordFilter, error) {
	if path == "" {
		return NewBanWordFilter(), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	f := &BanWordFilter{words: make(map[string]struct{})}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		f.Add(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return f, nil
}

// FindBannedWord возвращает первое найденное запрещённое слово или пустую
// строку, если текст чист. Сравнение регистронезависимое, по подстроке.
func (f *BanWordFilter) FindBannedWord(text string) string {
	if text == "" {
		return ""
	}

	lowered := strings.ToLower(text)

	f.mu.RLock()
	defer f.mu.RUnlock()

	for word := range f.words {
		if strings.Contains(lowered, word) {
			return word
		}
	}
	return ""
}

// Contains сообщает, содержит ли текст хотя бы одно запрещённое слово.
func (f *BanWordFilter) Contains(text string) bool {
	return f.FindBannedWord(text) != ""
}

// Add добавляет слово в словарь во время работы.
func (f *BanWordFilter) Add(word string) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.words[word] = struct{}{}
}
