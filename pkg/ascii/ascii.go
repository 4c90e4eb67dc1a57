// Package ascii transliterates Cyrillic text to ASCII for contexts that
// cannot safely carry non-ASCII bytes: G-code comments (controller
// charset support is inconsistent across dialects) and generated
// filenames. Grounded on the general transliteration-table idiom common
// across the corpus' string-processing code (a flat rune->string map plus
// a single pass substitution).
package ascii

import "strings"

var table = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "sch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
	'А': "A", 'Б': "B", 'В': "V", 'Г': "G", 'Д': "D", 'Е': "E", 'Ё': "E",
	'Ж': "Zh", 'З': "Z", 'И': "I", 'Й': "Y", 'К': "K", 'Л': "L", 'М': "M",
	'Н': "N", 'О': "O", 'П': "P", 'Р': "R", 'С': "S", 'Т': "T", 'У': "U",
	'Ф': "F", 'Х': "H", 'Ц': "Ts", 'Ч': "Ch", 'Ш': "Sh", 'Щ': "Sch",
	'Ъ': "", 'Ы': "Y", 'Ь': "", 'Э': "E", 'Ю': "Yu", 'Я': "Ya",
}

// Transliterate converts Cyrillic runes to their ASCII equivalents,
// passes other ASCII runes through unchanged, and drops any remaining
// non-ASCII rune a controller's charset could not represent.
func Transliterate(s string) string {
	var b strings.Builder
	for _, r := range s {
		if repl, ok := table[r]; ok {
			b.WriteString(repl)
			continue
		}
		if r > 127 {
			// unknown non-ASCII rune: drop rather than emit raw bytes a
			// controller's charset cannot represent.
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Filename transliterates s and replaces characters unsafe in a
// filesystem path with underscores.
func Filename(s string) string {
	t := Transliterate(s)
	var b strings.Builder
	for _, r := range t {
		switch {
		case r == ' ':
			b.WriteByte('_')
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' || r == '"' || r == '<' || r == '>' || r == '|':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
