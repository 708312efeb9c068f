package modules

import (
	"sort"

	"github.com/formulaeditor/formulaeditor/internal/domain/entity"
	"github.com/formulaeditor/formulaeditor/internal/shared/functional"
)

// KeywordTable maps input text and cd__name keys to keywords. It is filled
// during loading and read-only afterwards.
type KeywordTable struct {
	byText map[string]*entity.Keyword
	byKey  map[string]*entity.Keyword
}

func newKeywordTable() *KeywordTable {
	return &KeywordTable{
		byText: make(map[string]*entity.Keyword),
		byKey:  make(map[string]*entity.Keyword),
	}
}

func (t *KeywordTable) add(k *entity.Keyword, texts []string) {
	t.byKey[k.Key()] = k
	for _, text := range texts {
		if text == "" {
			continue
		}
		if prev, ok := t.byText[text]; ok && prev.Key() != k.Key() {
			T().Infof("modules: text %q now denotes %s instead of %s", text, k, prev)
		}
		t.byText[text] = k
	}
}

// ByText finds the keyword typed as text.
func (t *KeywordTable) ByText(text string) functional.Option[*entity.Keyword] {
	return functional.FromLookup(t.byText, text)
}

// ByKey finds a keyword by cd__name.
func (t *KeywordTable) ByKey(key string) functional.Option[*entity.Keyword] {
	return functional.FromLookup(t.byKey, key)
}

// Keywords returns all keywords sorted by key.
func (t *KeywordTable) Keywords() []*entity.Keyword {
	out := make([]*entity.Keyword, 0, len(t.byKey))
	for _, k := range t.byKey {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// Texts returns the input texts of a keyword, sorted.
func (t *KeywordTable) Texts(key string) []string {
	var out []string
	for text, k := range t.byText {
		if k.Key() == key {
			out = append(out, text)
		}
	}
	sort.Strings(out)
	return out
}
