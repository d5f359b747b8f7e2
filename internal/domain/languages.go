package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Language pairs the integer id persisted with artifacts and the BCP-47 tag
// used on the wire and in prompts.
type Language struct {
	ID   int
	Tag  language.Tag
	Name string
}

// Code returns the two-letter base code ("en", "cs", ...).
func (l Language) Code() string {
	base, _ := l.Tag.Base()
	return base.String()
}

// Known languages. IDs are persisted; never renumber.
var (
	English    = Language{ID: 1, Tag: language.English, Name: "English"}
	Czech      = Language{ID: 2, Tag: language.Czech, Name: "Czech"}
	German     = Language{ID: 3, Tag: language.German, Name: "German"}
	French     = Language{ID: 4, Tag: language.French, Name: "French"}
	Spanish    = Language{ID: 5, Tag: language.Spanish, Name: "Spanish"}
	Polish     = Language{ID: 6, Tag: language.Polish, Name: "Polish"}
	Slovak     = Language{ID: 7, Tag: language.Slovak, Name: "Slovak"}
	Japanese   = Language{ID: 8, Tag: language.Japanese, Name: "Japanese"}
	Chinese    = Language{ID: 9, Tag: language.Chinese, Name: "Chinese"}
	Ukrainian  = Language{ID: 10, Tag: language.Ukrainian, Name: "Ukrainian"}
	Portuguese = Language{ID: 11, Tag: language.Portuguese, Name: "Portuguese"}
)

var languages = []Language{
	English, Czech, German, French, Spanish, Polish,
	Slovak, Japanese, Chinese, Ukrainian, Portuguese,
}

// LanguageByID looks up a known language by its persisted id.
func LanguageByID(id int) (Language, bool) {
	for _, l := range languages {
		if l.ID == id {
			return l, true
		}
	}
	return Language{}, false
}

// ParseLanguage resolves a tag such as "en", "en-US" or "CS" to a known
// language by comparing base languages.
func ParseLanguage(s string) (Language, error) {
	tag, err := language.Parse(strings.TrimSpace(s))
	if err != nil {
		return Language{}, fmt.Errorf("parse language %q: %w", s, err)
	}
	base, _ := tag.Base()
	for _, l := range languages {
		if lb, _ := l.Tag.Base(); lb == base {
			return l, nil
		}
	}
	return Language{}, fmt.Errorf("unsupported language %q", s)
}

// LanguageMode selects which language results a generation run delivers.
type LanguageMode int

const (
	// ModeSourceOnly delivers only the source-language result.
	ModeSourceOnly LanguageMode = iota + 1
	// ModeTargetOnly delivers only the translated result. The source result
	// is still generated internally as translation input.
	ModeTargetOnly
	// ModeBoth delivers the source result followed by the translation.
	ModeBoth
)

// String returns the wire name of the mode.
func (m LanguageMode) String() string {
	switch m {
	case ModeSourceOnly:
		return "source-only"
	case ModeTargetOnly:
		return "target-only"
	case ModeBoth:
		return "both"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// WantsSource reports whether the source-language result is delivered.
func (m LanguageMode) WantsSource() bool { return m == ModeSourceOnly || m == ModeBoth }

// WantsTarget reports whether a translated result is requested.
func (m LanguageMode) WantsTarget() bool { return m == ModeTargetOnly || m == ModeBoth }

// ParseLanguageMode accepts the wire names and, for convenience, a language
// code equal to the configured source or target language.
func ParseLanguageMode(s string, source, target Language) (LanguageMode, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "", "both":
		return ModeBoth, nil
	case "source-only", "source":
		return ModeSourceOnly, nil
	case "target-only", "target":
		return ModeTargetOnly, nil
	}
	if l, err := ParseLanguage(v); err == nil {
		switch l.ID {
		case source.ID:
			return ModeSourceOnly, nil
		case target.ID:
			return ModeTargetOnly, nil
		}
	}
	return 0, fmt.Errorf("unknown language mode %q", s)
}
