package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/testconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type commandScenario struct {
	name           string
	args           []string
	stdin          string
	setupFiles     map[string]string // relative to the working directory
	expectError    bool
	expectedOutput []string // substrings of stdout
	expectedStdErr []string // substrings of stderr
}

func runScenario(t *testing.T, scenario commandScenario) {
	t.Helper()
	isolateEnvironment(t)
	for name, content := range scenario.setupFiles {
		require.NoError(t, os.MkdirAll(filepath.Dir(name), 0o755))
		require.NoError(t, os.WriteFile(name, []byte(content), 0o644))
	}

	stdout, stderr, err := executeCommand(t, scenario.stdin, scenario.args...)
	if scenario.expectError {
		assert.Error(t, err)
	} else {
		require.NoError(t, err, "stderr: %s", stderr)
	}
	for _, want := range scenario.expectedOutput {
		assert.Contains(t, stdout, want)
	}
	for _, want := range scenario.expectedStdErr {
		assert.Contains(t, stderr, want)
	}
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand("1.0", "c", "d")
	assert.Equal(t, appName, cmd.Use)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, strings.Fields(sub.Use)[0])
	}
	for _, expected := range []string{"parse", "convert", "edit", "modules", "theme", "profile", "config", "plugin", "version"} {
		assert.Contains(t, names, expected)
	}
	for _, flag := range []string{"config", "no-config", "theme", "profile", "module", "to", "color", "verbose"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestParseCommand(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	scenarios := []commandScenario{
		{
			name:           "presentation",
			args:           []string{"parse", "1+2", "--to", "presentation", "--no-config"},
			expectedOutput: []string{"1+2\n"},
		},
		{
			name:           "arguments are joined",
			args:           []string{"parse", "a", "+", "b", "--to", "presentation", "--no-config"},
			expectedOutput: []string{"a+b\n"},
		},
		{
			name:           "stdin",
			args:           []string{"parse", "--to", "openmath", "--no-config"},
			stdin:          "x^2\n",
			expectedOutput: []string{"<OMOBJ", "name='power'"},
		},
		{
			name:           "tree",
			args:           []string{"parse", "1+2", "--tree", "--to", "presentation", "--no-config"},
			expectedOutput: []string{"plus(1, 2)\n1+2\n"},
		},
		{
			name:           "all formats have headings",
			args:           []string{"parse", "x", "--no-config"},
			expectedOutput: []string{"presentation\n", "openmath\n", "mathml\n", "<math"},
		},
		{
			name:           "profile limits the notation",
			args:           []string{"parse", "a<b", "--profile", "arithmetic", "--no-config"},
			expectError:    true,
			expectedStdErr: []string{"column 2", "a<b", "^"},
		},
		{
			name:           "explicit modules",
			args:           []string{"parse", "a<b", "--module", "core,relation1", "--to", "presentation", "--no-config"},
			expectedOutput: []string{"a<b\n"},
		},
		{
			name:        "unknown format",
			args:        []string{"parse", "x", "--to", "latex", "--no-config"},
			expectError: true,
		},
		{
			name:        "unknown module",
			args:        []string{"parse", "x", "--module", "nosuch", "--no-config"},
			expectError: true,
		},
		{
			name:           "ascii theme",
			args:           []string{"parse", "2*3", "--theme", "ascii", "--to", "presentation", "--no-config"},
			expectedOutput: []string{"2*3\n"},
		},
	}

	for _, scenario := range scenarios {
		t.Run(scenario.name, func(t *testing.T) {
			runScenario(t, scenario)
		})
	}
}

func TestParseCommand_FailureIsReported(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	isolateEnvironment(t)

	_, stderr, err := executeCommand(t, "", "parse", "a<b", "--profile", "arithmetic", "--no-config")
	require.ErrorIs(t, err, ErrFailed)
	lines := strings.Split(stderr, "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, "  a<b", lines[1])
	assert.Equal(t, "   ^", lines[2])
}

func TestParseCommand_ProjectConfiguration(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	runScenario(t, commandScenario{
		name: "project config selects theme and profile",
		args: []string{"parse", "2*3<=7", "--to", "presentation"},
		setupFiles: map[string]string{
			"config.yaml": `
profile: school
theme:
  theme: ascii
profiles:
  school:
    extends: arithmetic
    modules: [relation1]
`,
		},
		expectedOutput: []string{"2*3<=7\n"},
	})
}

func TestConvertCommand(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	scenarios := []commandScenario{
		{
			name:           "text file",
			args:           []string{"convert", "formulas.txt", "--to", "presentation", "--no-config"},
			setupFiles:     map[string]string{"formulas.txt": "1+2\n# comment\n\nx·y\n"},
			expectedOutput: []string{"formulas.txt:1\n1+2\n", "formulas.txt:4\nx·y\n"},
			expectedStdErr: []string{"2 formulae converted"},
		},
		{
			name:           "openmath file",
			args:           []string{"convert", "sum.om", "--to", "presentation", "--no-config", "--jobs", "2"},
			setupFiles:     map[string]string{"sum.om": "<OMOBJ><OMA><OMS cd='arith1' name='plus'/><OMI>1</OMI><OMI>2</OMI></OMA></OMOBJ>"},
			expectedOutput: []string{"sum.om\n1+2\n"},
		},
		{
			name:           "stdin defaults to openmath output",
			args:           []string{"convert", "--no-config"},
			stdin:          "a+b\n",
			expectedOutput: []string{"stdin:1", "<OMOBJ"},
		},
		{
			name:           "failures are counted",
			args:           []string{"convert", "bad.txt", "--to", "presentation", "--no-config"},
			setupFiles:     map[string]string{"bad.txt": "1+2\n1+\n"},
			expectError:    true,
			expectedOutput: []string{"1+2"},
			expectedStdErr: []string{"bad.txt:2", "1 of 2 formulae failed"},
		},
		{
			name:        "missing file",
			args:        []string{"convert", "missing.txt", "--no-config"},
			expectError: true,
		},
	}

	for _, scenario := range scenarios {
		t.Run(scenario.name, func(t *testing.T) {
			runScenario(t, scenario)
		})
	}
}

func TestSplitInputs(t *testing.T) {
	inputs := splitInputs("f.txt", "a\r\n\n  # skip\nb")
	require.Len(t, inputs, 2)
	assert.Equal(t, "f.txt:1", inputs[0].Name)
	assert.Equal(t, "a", inputs[0].Data)
	assert.Equal(t, "f.txt:4", inputs[1].Name)

	om := splitInputs("stdin", "  <OMOBJ/>")
	require.Len(t, om, 1)
	assert.Equal(t, "stdin", om[0].Name)
}

func TestModulesCommand(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	scenarios := []commandScenario{
		{
			name:           "list marks loaded modules",
			args:           []string{"modules", "list", "--profile", "arithmetic", "--no-config"},
			expectedOutput: []string{"Modules (3 loaded)", "core", "relation1"},
		},
		{
			name:           "info",
			args:           []string{"modules", "info", "arith1", "--no-config"},
			expectedOutput: []string{"Module arith1", "Handlers", "arith1__plus"},
		},
		{
			name:        "info of a module that is not loaded",
			args:        []string{"modules", "info", "relation1", "--profile", "arithmetic", "--no-config"},
			expectError: true,
		},
		{
			name:           "rules show the override chain",
			args:           []string{"modules", "rules", "--no-config"},
			expectedOutput: []string{"expression", "core"},
		},
		{
			name:        "unknown rule",
			args:        []string{"modules", "rules", "nosuch", "--no-config"},
			expectError: true,
		},
		{
			name:           "keywords",
			args:           []string{"modules", "keywords", "--no-config"},
			expectedOutput: []string{"nums1.pi", "constant", "transc1.sin", "function"},
		},
	}
	for _, scenario := range scenarios {
		t.Run(scenario.name, func(t *testing.T) {
			runScenario(t, scenario)
		})
	}
}

func TestProfileCommand(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	scenarios := []commandScenario{
		{
			name:           "list",
			args:           []string{"profile", "list", "--no-config"},
			expectedOutput: []string{"arithmetic", "standard", "* full"},
		},
		{
			name:           "show resolves extends",
			args:           []string{"profile", "show", "standard", "--no-config"},
			expectedOutput: []string{"Extends: arithmetic", "Modules: core, arith1, integer1, relation1, fns, keywords"},
		},
		{
			name:        "show unknown",
			args:        []string{"profile", "show", "nosuch", "--no-config"},
			expectError: true,
		},
		{
			name: "configured profile",
			args: []string{"profile", "show", "school"},
			setupFiles: map[string]string{
				"config.yaml": "profiles:\n  school:\n    extends: arithmetic\n    modules: [relation1]\n",
			},
			expectedOutput: []string{"Modules: core, arith1, integer1, relation1"},
		},
	}
	for _, scenario := range scenarios {
		t.Run(scenario.name, func(t *testing.T) {
			runScenario(t, scenario)
		})
	}
}

func TestProfileCommand_Export(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	isolateEnvironment(t)

	_, stderr, err := executeCommand(t, "", "profile", "export", "standard", "-o", "standard.yaml", "--no-config")
	require.NoError(t, err)
	assert.Contains(t, stderr, "standard.yaml")

	data, err := os.ReadFile("standard.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: standard")
	assert.Contains(t, string(data), "- relation1")
	assert.NotContains(t, string(data), "extends")
}

func TestThemeCommand(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	configHome := isolateEnvironment(t)

	stdout, _, err := executeCommand(t, "", "theme", "list")
	require.NoError(t, err)
	for _, name := range []string{"ascii", "default", "nl"} {
		assert.Contains(t, stdout, name)
	}

	_, stderr, err := executeCommand(t, "", "theme", "create", "classroom", "--base", "ascii", "--description", "For the board")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Created theme 'classroom'")
	assert.FileExists(t, filepath.Join(configHome, "themes", "classroom.yaml"))

	_, _, err = executeCommand(t, "", "theme", "create", "classroom")
	assert.Error(t, err, "duplicate theme")
	_, _, err = executeCommand(t, "", "theme", "create", "ascii")
	assert.Error(t, err, "built-in name")

	stdout, _, err = executeCommand(t, "", "theme", "show", "classroom")
	require.NoError(t, err)
	assert.Contains(t, stdout, "For the board")
	assert.Contains(t, stdout, "Base: ascii")
	assert.Contains(t, stdout, "[OK]")

	stdout, _, err = executeCommand(t, "", "parse", "2*3", "--theme", "classroom", "--to", "presentation")
	require.NoError(t, err)
	assert.Equal(t, "2*3\n", stdout)

	_, stderr, err = executeCommand(t, "n\n", "theme", "delete", "classroom")
	require.NoError(t, err)
	assert.Contains(t, stderr, "cancelled")
	assert.FileExists(t, filepath.Join(configHome, "themes", "classroom.yaml"))

	_, _, err = executeCommand(t, "y\n", "theme", "delete", "classroom")
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(configHome, "themes", "classroom.yaml"))

	_, _, err = executeCommand(t, "", "theme", "delete", "default", "--force")
	assert.Error(t, err)
}

func TestThemeCommand_Install(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	configHome := isolateEnvironment(t)

	require.NoError(t, os.WriteFile("dutch.json", []byte(`{"name": "dutch", "base": "nl", "colors": {"number": "99"}}`), 0o644))
	_, stderr, err := executeCommand(t, "", "theme", "install", "dutch.json")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Installed theme 'dutch'")
	assert.FileExists(t, filepath.Join(configHome, "themes", "dutch.yaml"))

	stdout, _, err := executeCommand(t, "", "theme", "show", "dutch")
	require.NoError(t, err)
	assert.Contains(t, stdout, "number=99")

	_, _, err = executeCommand(t, "", "theme", "install", "missing.yaml")
	assert.Error(t, err)
}

func TestConfigCommand(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	configHome := isolateEnvironment(t)

	stdout, _, err := executeCommand(t, "", "config", "init")
	require.NoError(t, err)
	path := filepath.Join(configHome, "config.yaml")
	assert.Contains(t, stdout, path)
	assert.FileExists(t, path)

	_, _, err = executeCommand(t, "", "config", "init")
	assert.Error(t, err, "init refuses to overwrite")

	_, stderr, err := executeCommand(t, "", "config", "which", "--paths")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "built-in defaults")
	stdout, _, err = executeCommand(t, "", "config", "which", "--paths")
	require.NoError(t, err)
	assert.Contains(t, stdout, "(user)")
	assert.Contains(t, stdout, "Search order")

	_, stderr, err = executeCommand(t, "", "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Configuration is valid")

	stdout, _, err = executeCommand(t, "", "config", "show", "--profile", "arithmetic")
	require.NoError(t, err)
	assert.Contains(t, stdout, "profile: arithmetic")
}

func TestConfigCommand_Validate(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	scenarios := []commandScenario{
		{
			name:           "valid file",
			args:           []string{"config", "validate", "good.yaml"},
			setupFiles:     map[string]string{"good.yaml": "profile: standard\n"},
			expectedStdErr: []string{"Configuration is valid"},
		},
		{
			name:        "unknown key",
			args:        []string{"config", "validate", "bad.yaml"},
			setupFiles:  map[string]string{"bad.yaml": "profil: standard\n"},
			expectError: true,
		},
		{
			name:        "unknown module",
			args:        []string{"config", "validate", "mods.yaml"},
			setupFiles:  map[string]string{"mods.yaml": "modules: [core, nosuch]\n"},
			expectError: true,
		},
		{
			name: "extends chain",
			args: []string{"config", "validate", "child.yaml"},
			setupFiles: map[string]string{
				"base.yaml":  "theme:\n  theme: ascii\n",
				"child.yaml": "extends: base.yaml\nprofile: arithmetic\n",
			},
			expectedStdErr: []string{"3 modules, theme ascii"},
		},
	}
	for _, scenario := range scenarios {
		t.Run(scenario.name, func(t *testing.T) {
			runScenario(t, scenario)
		})
	}
}

func TestPluginCommand_Empty(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	runScenario(t, commandScenario{
		name:           "list",
		args:           []string{"plugin", "list"},
		expectedStdErr: []string{"No plugins installed"},
	})
	runScenario(t, commandScenario{
		name:           "health",
		args:           []string{"plugin", "health"},
		expectedStdErr: []string{"No plugins installed"},
	})
	runScenario(t, commandScenario{
		name:        "install needs a .so file",
		args:        []string{"plugin", "install", "module.txt"},
		expectError: true,
	})
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := executeCommand(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "formulaeditor version test")
	assert.Contains(t, stdout, "commit: abc123")
}

func TestFlagOverrides(t *testing.T) {
	cmd := NewRootCommand("", "", "")
	parse, _, err := cmd.Find([]string{"parse"})
	require.NoError(t, err)
	require.NoError(t, parse.ParseFlags([]string{"--profile", "standard", "--to", "mathml", "--color=false", "-v"}))

	overrides := flagOverrides(parse)
	assert.Equal(t, "standard", overrides["profile"])
	assert.Equal(t, []interface{}{}, overrides["modules"])
	assert.Equal(t, map[string]interface{}{"format": "mathml", "color": false}, overrides["output"])
	assert.Equal(t, "debug", overrides["trace_level"])
	assert.NotContains(t, overrides, "theme")
}
