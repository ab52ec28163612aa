package main

import (
	"bytes"
	"slices"
)

// RemoveCommentsFromCode removes // and /* */ comments from C++ or C# code while preserving
// string and character literals. Newlines are kept, so line numbers stay the same.
func RemoveCommentsFromCode(code []byte) []byte {
	result := make([]byte, 0, len(code))
	i := 0
	n := len(code)

	inSingleQuoteString := false
	inDoubleQuoteString := false
	inLineComment := false
	inBlockComment := false

	for i < n {
		// Handle comment endings first
		if inLineComment && code[i] == '\n' {
			inLineComment = false
			result = append(result, '\n')
			i++
			continue
		}

		if inBlockComment && i+1 < n && code[i] == '*' && code[i+1] == '/' {
			inBlockComment = false
			i += 2
			continue
		}

		if inLineComment || inBlockComment {
			if code[i] == '\n' {
				result = append(result, '\n')
			}
			i++
			continue
		}

		if code[i] == '\\' && (inSingleQuoteString || inDoubleQuoteString) && i+1 < n {
			result = append(result, code[i], code[i+1])
			i += 2
			continue
		}

		if code[i] == '\'' && !inDoubleQuoteString {
			inSingleQuoteString = !inSingleQuoteString
		} else if code[i] == '"' && !inSingleQuoteString {
			inDoubleQuoteString = !inDoubleQuoteString
		} else if code[i] == '\n' {
			// unterminated literals never span lines
			inSingleQuoteString = false
			inDoubleQuoteString = false
		}

		if !inSingleQuoteString && !inDoubleQuoteString && i+1 < n && code[i] == '/' {
			if code[i+1] == '/' {
				inLineComment = true
				i += 2
				continue
			}
			if code[i+1] == '*' {
				inBlockComment = true
				i += 2
				continue
			}
		}

		result = append(result, code[i])
		i++
	}

	return result
}

// RemoveIniComments blanks lines starting with ';' or '#'. Line count is unchanged.
func RemoveIniComments(content []byte) []byte {
	lines := bytes.Split(content, []byte{'\n'})
	for i, line := range lines {
		trimmed := bytes.TrimLeft(line, " \t")
		if len(trimmed) > 0 && (trimmed[0] == ';' || trimmed[0] == '#') {
			lines[i] = nil
		}
	}
	return bytes.Join(lines, []byte{'\n'})
}

type KV[K any, V any] struct {
	k K
	v V
}

func GetSortedMap[K ~string | ~int, V any](m map[K]V) []KV[K, V] {
	result := make([]KV[K, V], 0, len(m))

	for k, v := range m {
		result = append(result, KV[K, V]{k, v})
	}

	slices.SortFunc(result, func(a KV[K, V], b KV[K, V]) int {
		if a.k > b.k {
			return 1
		}
		if a.k < b.k {
			return -1
		}
		return 0
	})

	return result
}

func PadRight(text string, char byte, length int) string {
	if len(text) >= length {
		return text
	}
	padding := make([]byte, 0, length-len(text))
	for range length - len(text) {
		padding = append(padding, char)
	}
	return text + string(padding)
}
