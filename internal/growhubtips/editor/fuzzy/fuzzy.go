// Пакет fuzzy реализует нечеткий поиск для палитры команд редактора.
// Запрос сопоставляется с кандидатом как подпоследовательность символов,
// последовательные совпадения и совпадения с началом строки весят больше.
package fuzzy

import (
	"sort"
	"strings"
)

// Candidate - элемент, который можно ранжировать по текстовому представлению.
type Candidate interface {
	SearchText() string
}

// Score вычисляет релевантность кандидата для запроса.
//
// Правила:
//   - пустой запрос дает 0 для любого кандидата;
//   - сравнение без учета регистра;
//   - символы запроса ищутся в кандидате слева направо (жадно);
//   - каждое совпадение добавляет 10 + бонус за серию, бонус растет на 5
//     за каждое подряд идущее совпадение и сбрасывается при промахе;
//   - если запрос не является полной подпоследовательностью кандидата - 0;
//   - кандидат, начинающийся с запроса, получает удвоенный итог;
//   - иначе, если с запроса начинается любое слово кандидата, итог
//     умножается на 1.5 (с отбрасыванием дробной части).
func Score(query, candidate string) int {
	if query == "" {
		return 0
	}

	q := []rune(strings.ToLower(query))
	c := strings.ToLower(candidate)

	score := 0
	bonus := 0
	qi := 0
	prevMatched := false

	for _, r := range c {
		if qi < len(q) && r == q[qi] {
			if prevMatched {
				bonus += 5
			} else {
				bonus = 0
			}
			score += 10 + bonus
			prevMatched = true
			qi++
		} else {
			prevMatched = false
			bonus = 0
		}
	}

	// Запрос найден не целиком
	if qi < len(q) {
		return 0
	}

	ql := string(q)
	if strings.HasPrefix(c, ql) {
		return score * 2
	}
	for _, word := range strings.Fields(c) {
		if strings.HasPrefix(word, ql) {
			return score * 3 / 2
		}
	}

	return score
}

// Rank возвращает элементы, отсортированные по убыванию релевантности.
// Элементы с нулевой релевантностью отбрасываются, порядок равных
// сохраняется. Пустой запрос возвращает все элементы в исходном порядке.
func Rank[T Candidate](query string, items []T) []T {
	if query == "" {
		out := make([]T, len(items))
		copy(out, items)
		return out
	}

	type scored struct {
		item  T
		score int
	}

	matched := make([]scored, 0, len(items))
	for _, item := range items {
		if s := Score(query, item.SearchText()); s > 0 {
			matched = append(matched, scored{item, s})
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].score > matched[j].score
	})

	out := make([]T, len(matched))
	for i, m := range matched {
		out[i] = m.item
	}
	return out
}
