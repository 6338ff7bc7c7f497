package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/imamik/kconsole/api/v1alpha1"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
kubeconfig: /tmp/kube
context: staging
namespace: team-a
fieldManager: ops
submitTimeout: 10s
waitTimeout: 1m
channelResources:
  - kafkachannels.v1beta1.messaging.knative.dev
debug: true
metricsTextfile: /tmp/kconsole.prom
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/kube", cfg.Kubeconfig)
	assert.Equal(t, "staging", cfg.Context)
	assert.Equal(t, "team-a", cfg.Namespace)
	assert.Equal(t, "ops", cfg.FieldManager)
	assert.Equal(t, 10*time.Second, cfg.SubmitTimeout)
	assert.Equal(t, time.Minute, cfg.WaitTimeout)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "/tmp/kconsole.prom", cfg.MetricsTextfile)

	channels := cfg.Channels()
	require.Len(t, channels, 1)
	assert.Equal(t, "kafkachannels", channels[0].Resource)
	assert.Equal(t, "v1beta1", channels[0].Version)
	assert.Equal(t, "messaging.knative.dev", channels[0].Group)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "namespace: demo\n"))
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Namespace)
	assert.Equal(t, "kconsole", cfg.FieldManager)
	assert.Equal(t, 30*time.Second, cfg.SubmitTimeout)
	assert.Equal(t, []schema.GroupVersionResource{v1alpha1.ChannelGVR, v1alpha1.InMemoryChannelGVR}, cfg.Channels())
}

func TestLoad_MissingDefaultFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_DefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.WriteFile(filepath.Join(home, FileName), []byte("debug: true\n"), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"malformed yaml", "namespace: [", "unmarshal yaml"},
		{"invalid namespace", "namespace: Team_A\n", "namespace"},
		{"empty field manager", "fieldManager: \"\"\n", "fieldManager"},
		{"zero submit timeout", "submitTimeout: 0s\n", "submitTimeout"},
		{"bad duration", "waitTimeout: soon\n", "unmarshal yaml"},
		{"bad channel resource", "channelResources: [channels]\n", "channelResources[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvSubmitTimeout, "5s")
	t.Setenv(EnvWaitTimeout, "not-a-duration")
	t.Setenv(EnvNamespace, "from-env")
	t.Setenv(EnvDebug, "true")

	cfg, err := Load(writeConfig(t, "namespace: from-file\nwaitTimeout: 2m\n"))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.SubmitTimeout)
	assert.Equal(t, 2*time.Minute, cfg.WaitTimeout, "invalid env values keep the file value")
	assert.Equal(t, "from-env", cfg.Namespace)
	assert.True(t, cfg.Debug)
}

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
