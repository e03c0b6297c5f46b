package content

import (
	"fmt"
	"strings"
)

// Language 表示内容语言代码。
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageChinese Language = "zh"

	DefaultLanguage = LanguageEnglish
)

// Languages 按固定顺序列出支持的语言。
var Languages = []Language{LanguageEnglish, LanguageChinese}

// ParseLanguage 解析语言代码，忽略大小写与地区后缀（zh-CN、en_US）。
func ParseLanguage(raw string) (Language, error) {
	code := strings.ToLower(strings.TrimSpace(raw))
	if idx := strings.IndexAny(code, "-_"); idx >= 0 {
		code = code[:idx]
	}
	switch Language(code) {
	case LanguageEnglish:
		return LanguageEnglish, nil
	case LanguageChinese:
		return LanguageChinese, nil
	default:
		return "", fmt.Errorf("unsupported language %q", raw)
	}
}

// NormalizeLanguage 与 ParseLanguage 相同，但对空值或未知值回落到默认语言。
func NormalizeLanguage(raw string) Language {
	lang, err := ParseLanguage(raw)
	if err != nil {
		return DefaultLanguage
	}
	return lang
}

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	return l == LanguageEnglish || l == LanguageChinese
}

// Other 返回另一种语言，用于中英配对。
func (l Language) Other() Language {
	if l == LanguageChinese {
		return LanguageEnglish
	}
	return LanguageChinese
}

func (l Language) String() string { return string(l) }
