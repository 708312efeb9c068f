package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/npillmayer/schuko/testconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formulaeditor/formulaeditor/internal/domain/entity"
	"github.com/formulaeditor/formulaeditor/internal/domain/value"
	pluginpkg "github.com/formulaeditor/formulaeditor/pkg/formulaeditor/plugin"
)

type mockPlugin struct {
	name        string
	modules     []pluginpkg.Module
	initErr     error
	initialized bool
	healthOK    bool
}

func (m *mockPlugin) Name() string                { return m.name }
func (m *mockPlugin) Version() string             { return "1.0.0" }
func (m *mockPlugin) Description() string         { return "test plugin" }
func (m *mockPlugin) Author() string              { return "tests" }
func (m *mockPlugin) Modules() []pluginpkg.Module { return m.modules }

func (m *mockPlugin) Initialize(ctx context.Context, config pluginpkg.PluginConfig) error {
	if m.initErr != nil {
		return m.initErr
	}
	m.initialized = true
	return nil
}

func (m *mockPlugin) Shutdown(ctx context.Context) error {
	m.initialized = false
	return nil
}

func (m *mockPlugin) HealthCheck(ctx context.Context) error {
	if !m.healthOK {
		return fmt.Errorf("health check failed")
	}
	return nil
}

// gammaModule registers Euler's constant as a keyword.
func gammaModule() pluginpkg.Module {
	return pluginpkg.NewModule("gamma", func(r *pluginpkg.Registrar) error {
		_, err := r.Keyword("nums1", "gamma",
			value.MustSymbol([]string{"γ"}, "", []string{"<mi>γ</mi>"}), entity.CategoryConstant)
		return err
	})
}

func TestPluginManager_AddAndQuery(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	pm := NewPluginManager(pluginpkg.PluginConfig{})
	p := &mockPlugin{name: "euler", modules: []pluginpkg.Module{gammaModule()}, healthOK: true}
	require.NoError(t, pm.AddPlugin(context.Background(), p))
	assert.True(t, p.initialized)

	m, ok := pm.Module("gamma")
	require.True(t, ok)
	assert.Equal(t, "gamma", m.Name())
	_, ok = pm.Module("nope")
	assert.False(t, ok)
	assert.Equal(t, []string{"gamma"}, pm.ModuleNames())

	infos := pm.ListPlugins()
	require.Len(t, infos, 1)
	assert.Equal(t, []string{"gamma"}, infos[0].Modules)

	status := pm.GetPluginStatus("euler")
	assert.True(t, status.Initialized)
	assert.Equal(t, 1, status.ModuleCount)
	assert.Empty(t, pm.HealthCheckAll(context.Background()))

	assert.Error(t, pm.AddPlugin(context.Background(), &mockPlugin{name: "euler"}), "duplicate names are rejected")

	require.NoError(t, pm.UnloadPlugin(context.Background(), "euler"))
	assert.False(t, p.initialized)
	assert.Error(t, pm.UnloadPlugin(context.Background(), "euler"))
	_, err := pm.GetPlugin("euler")
	assert.Error(t, err)
}

func TestPluginManager_Failures(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	pm := NewPluginManager(pluginpkg.PluginConfig{})
	err := pm.AddPlugin(context.Background(), &mockPlugin{name: "broken", initErr: errors.New("boom")})
	assert.ErrorContains(t, err, "boom")
	assert.False(t, pm.GetPluginStatus("broken").Initialized)
	assert.Error(t, pm.GetPluginStatus("broken").Error)

	require.NoError(t, pm.AddPlugin(context.Background(), &mockPlugin{name: "sick"}))
	assert.Contains(t, pm.HealthCheckAll(context.Background()), "sick")

	pm.open = func(path string) (pluginpkg.Plugin, error) {
		return nil, fmt.Errorf("failed to open plugin %s", path)
	}
	assert.Error(t, pm.LoadPlugin(context.Background(), "/plugins/x.so"))
	assert.Error(t, pm.GetPluginStatus("x.so").Error)

	require.NoError(t, pm.Shutdown(context.Background()))
	assert.Empty(t, pm.ListPlugins())
}

func TestPluginManager_LoadConfigured(t *testing.T) {
	pm := NewPluginManager(pluginpkg.PluginConfig{})
	var opened []string
	pm.open = func(path string) (pluginpkg.Plugin, error) {
		opened = append(opened, path)
		return &mockPlugin{name: path, healthOK: true}, nil
	}

	config := value.NewConfig()
	config.Plugins["b"] = value.PluginConfiguration{Enabled: true, Path: "/p/b.so"}
	config.Plugins["a"] = value.PluginConfiguration{Enabled: true, Path: "/p/a.so"}
	config.Plugins["off"] = value.PluginConfiguration{Enabled: false, Path: "/p/off.so"}

	require.NoError(t, pm.LoadConfigured(context.Background(), config))
	assert.Equal(t, []string{"/p/a.so", "/p/b.so"}, opened)
}
