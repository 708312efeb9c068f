package modules

import (
	"github.com/formulaeditor/formulaeditor/internal/domain/entity"
	"github.com/formulaeditor/formulaeditor/internal/domain/value"
)

type keywordEntry struct {
	cd, name string
	onscreen string
	category entity.KeywordCategory
	// input is an alternative way to type the keyword.
	input string
}

var keywordCatalog = []keywordEntry{
	{"arith1", "gcd", "gcd", entity.CategoryFunction, ""},
	{"arith1", "lcm", "lcm", entity.CategoryFunction, ""},
	{"arith1", "root", "rt", entity.CategoryFunction, ""},
	{"editor1", "input_box", "□", entity.CategoryConstant, ""},
	{"editor1", "palette_whitespace", " ", entity.CategoryConstant, ""},
	{"linalg1", "determinant", "det", entity.CategoryFunction, ""},
	{"logic1", "false", "false", entity.CategoryConstant, ""},
	{"logic1", "true", "true", entity.CategoryConstant, ""},
	{"nums1", "e", "e", entity.CategoryConstant, ""},
	{"nums1", "i", "i", entity.CategoryConstant, ""},
	{"nums1", "infinity", "∞", entity.CategoryConstant, "infinity"},
	{"nums1", "pi", "π", entity.CategoryConstant, "pi"},
	{"permutation1", "sign", "sgn", entity.CategoryFunction, ""},
	{"setname1", "C", "ℂ", entity.CategoryConstant, "CC"},
	{"setname1", "N", "ℕ", entity.CategoryConstant, "NN"},
	{"setname1", "P", "ℙ", entity.CategoryConstant, "PP"},
	{"setname1", "Q", "ℚ", entity.CategoryConstant, "QQ"},
	{"setname1", "R", "ℝ", entity.CategoryConstant, "RR"},
	{"setname1", "Z", "ℤ", entity.CategoryConstant, "ZZ"},
	{"set1", "emptyset", "∅", entity.CategoryConstant, "emptyset"},
}

var transc1Functions = []string{
	"arccos", "arccosh", "arccot", "arccoth", "arccsc", "arccsch",
	"arcsec", "arcsech", "arcsin", "arcsinh", "arctan", "arctanh",
	"cos", "cosh", "cot", "coth", "csc", "csch", "exp", "ln", "log",
	"sec", "sech", "sin", "sinh", "tan", "tanh",
}

// Keywords registers the named constants and functions.
func Keywords() Module {
	return New("keywords", func(r *Registrar) error {
		entries := append([]keywordEntry(nil), keywordCatalog...)
		for _, fn := range transc1Functions {
			entries = append(entries, keywordEntry{"transc1", fn, fn, entity.CategoryFunction, ""})
		}

		for _, e := range entries {
			mathml := "<mi>" + htmlEscape(e.onscreen) + "</mi>"
			if e.onscreen == " " {
				mathml = ""
			}
			var inputs []string
			if e.input != "" {
				inputs = append(inputs, e.input)
			}
			sym := value.MustSymbol([]string{e.onscreen}, "", []string{mathml})
			if _, err := r.Keyword(e.cd, e.name, sym, e.category, inputs...); err != nil {
				return err
			}
		}
		return nil
	})
}
