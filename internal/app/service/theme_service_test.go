package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/npillmayer/schuko/testconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formulaeditor/formulaeditor/internal/domain/value"
)

func TestThemeService_ResolveAuto(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	service := NewThemeService("")
	tests := []struct {
		locale string
		err    error
		want   string
	}{
		{"nl-NL", nil, "nl"},
		{"nl-BE", nil, "nl"},
		{"en-US", nil, "default"},
		{"", errors.New("no locale"), "default"},
	}
	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			service.detect = func() (string, error) { return tt.locale, tt.err }
			assert.Equal(t, tt.want, service.ResolveName(AutoTheme))
		})
	}
	assert.Equal(t, "ascii", service.ResolveName("ascii"))
}

func TestThemeService_CreateAndInstall(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	dir := t.TempDir()
	service := NewThemeService(filepath.Join(dir, "themes"))
	service.detect = func() (string, error) { return "nl-NL", nil }

	config := value.NewThemeConfig()
	config.ThemeName = AutoTheme
	result := service.CreateTheme(context.Background(), config)
	require.True(t, result.IsOk(), "%v", result.Error())
	assert.Equal(t, "nl", result.Unwrap().Name())
	assert.NoError(t, service.ValidateConfig(config))

	source := filepath.Join(dir, "board.yaml")
	writeFile(t, source, "name: board\nbase: ascii\noverrides:\n  arith1__divide:\n    onscreen: [':']\n")
	installed := service.InstallTheme(source)
	require.True(t, installed.IsOk(), "%v", installed.Error())
	assert.Contains(t, service.ListAvailableThemes(), "board")

	config.ThemeName = "board"
	board := service.CreateTheme(context.Background(), config)
	require.True(t, board.IsOk(), "%v", board.Error())
	assert.Equal(t, "[OK]", board.Unwrap().Marks().Success)

	assert.True(t, NewThemeService("").InstallTheme(source).IsErr())
	assert.Nil(t, NewThemeService("").Store())
}
