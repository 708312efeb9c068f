package helpers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFile represents a test file with its content
type TestFile struct {
	Path    string
	Content string
	Mode    os.FileMode
}

// TestProject represents a complete test project structure
type TestProject struct {
	Name        string
	BaseDir     string
	Files       []TestFile
	ConfigFiles map[string]string // config filename -> content
}

// CreateTestProject creates a temporary test project with the specified structure
func CreateTestProject(t testing.TB, project TestProject) string {
	t.Helper()

	baseDir := t.TempDir()
	if project.BaseDir != "" {
		baseDir = filepath.Join(baseDir, project.BaseDir)
		require.NoError(t, os.MkdirAll(baseDir, 0755))
	}

	for _, file := range project.Files {
		fullPath := filepath.Join(baseDir, file.Path)
		if dir := filepath.Dir(fullPath); dir != baseDir {
			require.NoError(t, os.MkdirAll(dir, 0755))
		}

		mode := file.Mode
		if mode == 0 {
			mode = 0644
		}
		require.NoError(t, os.WriteFile(fullPath, []byte(file.Content), mode))
	}

	for filename, content := range project.ConfigFiles {
		configPath := filepath.Join(baseDir, filename)
		require.NoError(t, os.MkdirAll(filepath.Dir(configPath), 0755))
		require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))
	}

	return baseDir
}

// FormulaFiles provides common formula file templates, one formula per line
var FormulaFiles = struct {
	Valid        string
	WithFailures string
	Relations    string
	ASCII        string
	Empty        string
}{
	Valid: `# arithmetic
1+2
x^2
-x^2+1

# functions
sin(π)
a_1^2
`,
	WithFailures: `1+2
1+
(x
x^y^z
`,
	Relations: `a<b
1+2
`,
	ASCII: `2*3<=7
x^2*pi
`,
	Empty: "# nothing here\n",
}

// ConfigFiles provides configuration templates
var ConfigFiles = struct {
	Full       string
	Arithmetic string
	Standard   string
	ASCII      string
}{
	Full:       "profile: full\n",
	Arithmetic: "profile: arithmetic\n",
	Standard:   "profile: standard\n",
	ASCII: `theme:
  theme: ascii
`,
}

// TestScenario represents a complete test scenario with setup and expectations
type TestScenario struct {
	Name             string
	Description      string
	Files            []TestFile
	Config           string
	ExpectError      bool
	ExpectedFormulae int
	ExpectedFailures int
	ExpectedTrees    []string
}

// CreateTestScenarios returns a comprehensive set of test scenarios
func CreateTestScenarios() []TestScenario {
	return []TestScenario{
		{
			Name:             "Valid Formulae",
			Description:      "Every formula parses with all modules loaded",
			Files:            []TestFile{{Path: "formulas.txt", Content: FormulaFiles.Valid}},
			Config:           ConfigFiles.Full,
			ExpectedFormulae: 5,
			ExpectedTrees:    []string{"plus(1, 2)", "power(x, 2)", "apply(transc1.sin, nums1.pi)"},
		},
		{
			Name:             "Formulae With Failures",
			Description:      "Incomplete formulae are reported one by one",
			Files:            []TestFile{{Path: "formulas.txt", Content: FormulaFiles.WithFailures}},
			Config:           ConfigFiles.Full,
			ExpectedFormulae: 4,
			ExpectedFailures: 2,
			ExpectedTrees:    []string{"power(x, power(y, z))"},
		},
		{
			Name:             "Arithmetic Profile",
			Description:      "Relations are unknown without relation1",
			Files:            []TestFile{{Path: "formulas.txt", Content: FormulaFiles.Relations}},
			Config:           ConfigFiles.Arithmetic,
			ExpectedFormulae: 2,
			ExpectedFailures: 1,
		},
		{
			Name:             "Standard Profile",
			Description:      "Relations parse with the standard profile",
			Files:            []TestFile{{Path: "formulas.txt", Content: FormulaFiles.Relations}},
			Config:           ConfigFiles.Standard,
			ExpectedFormulae: 2,
			ExpectedTrees:    []string{"lt(a, b)"},
		},
		{
			Name:             "ASCII Theme",
			Description:      "The ascii theme spells operators with plain characters",
			Files:            []TestFile{{Path: "formulas.txt", Content: FormulaFiles.ASCII}},
			Config:           ConfigFiles.ASCII,
			ExpectedFormulae: 2,
			ExpectedTrees:    []string{"leq(times(2, 3), 7)", "times(power(x, 2), nums1.pi)"},
		},
		{
			Name:        "Unknown Profile",
			Description: "An unknown profile fails before any formula is read",
			Files:       []TestFile{{Path: "formulas.txt", Content: FormulaFiles.Valid}},
			Config:      "profile: nosuch\n",
			ExpectError: true,
		},
	}
}

// ReadFormulae reads a formula file, skipping blank lines and "#" comments.
func ReadFormulae(t testing.TB, path string) []string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var formulae []string
	for _, line := range strings.Split(NormalizeLineEndings(string(data)), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		formulae = append(formulae, line)
	}
	return formulae
}

// WithTempDir executes a test function within a temporary directory
func WithTempDir(t testing.TB, fn func(tempDir string)) {
	t.Helper()

	tempDir := t.TempDir()
	originalDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tempDir))
	defer func() {
		os.Chdir(originalDir)
	}()

	fn(tempDir)
}

// ContentOptions defines options for generating formula files
type ContentOptions struct {
	Formulae int
	// InvalidEvery makes every n-th formula incomplete; 0 means never.
	InvalidEvery int
	// Depth is the number of nested terms in each formula.
	Depth int
}

// DefaultContentOptions returns default content generation options
func DefaultContentOptions() ContentOptions {
	return ContentOptions{
		Formulae: 20,
		Depth:    3,
	}
}

// GenerateFormulaContent generates a formula file, one formula per line.
func GenerateFormulaContent(options ContentOptions) string {
	var content strings.Builder
	for i := 0; i < options.Formulae; i++ {
		formula := fmt.Sprintf("x_%d", i)
		for d := 0; d < options.Depth; d++ {
			formula = fmt.Sprintf("(%s+%d)^2", formula, d+1)
		}
		if options.InvalidEvery > 0 && (i+1)%options.InvalidEvery == 0 {
			formula += "+"
		}
		content.WriteString(formula + "\n")
	}
	return content.String()
}

// CreateTempConfig creates a temporary configuration file with the given content
func CreateTempConfig(t testing.TB, content, filename string) string {
	t.Helper()

	if filename == "" {
		filename = "config.yaml"
	}
	path := filepath.Join(t.TempDir(), filename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// FileExists checks if a file exists at the given path
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// NormalizeLineEndings normalizes line endings for cross-platform compatibility
func NormalizeLineEndings(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.ReplaceAll(content, "\r", "\n")
}

// CountLines counts the number of lines in a string
func CountLines(content string) int {
	if content == "" {
		return 0
	}
	return strings.Count(content, "\n") + 1
}
