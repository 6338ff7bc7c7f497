package config

import (
	"time"

	"github.com/imamik/kconsole/api/v1alpha1"
)

// FileName is the configuration file looked up in the home directory.
const FileName = ".kconsole.yaml"

// Config is the kconsole configuration.
type Config struct {
	// Kubeconfig is the kubeconfig path; empty uses the standard loading rules.
	Kubeconfig string `yaml:"kubeconfig,omitempty"`
	// Context selects a kubeconfig context; empty uses the current one.
	Context string `yaml:"context,omitempty"`
	// Namespace overrides the kubeconfig namespace.
	Namespace string `yaml:"namespace,omitempty" validate:"omitempty,k8s_dns1123_label"`
	// FieldManager is sent with every write.
	FieldManager string `yaml:"fieldManager" validate:"required,max=128"`

	SubmitTimeout time.Duration `yaml:"submitTimeout" validate:"gt=0"`
	WaitTimeout   time.Duration `yaml:"waitTimeout" validate:"gte=0"`

	// ChannelResources are the channel kinds offered as sinks, as
	// resource.version.group strings.
	ChannelResources []string `yaml:"channelResources" validate:"dive,k8s_resource"`

	Debug bool `yaml:"debug,omitempty"`
	// MetricsTextfile, when set, receives the wizard metrics on exit.
	MetricsTextfile string `yaml:"metricsTextfile,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		FieldManager:  "kconsole",
		SubmitTimeout: 30 * time.Second,
		WaitTimeout:   30 * time.Second,
		ChannelResources: []string{
			resourceString(v1alpha1.ChannelGVR.Resource, v1alpha1.ChannelGVR.Version, v1alpha1.ChannelGVR.Group),
			resourceString(v1alpha1.InMemoryChannelGVR.Resource, v1alpha1.InMemoryChannelGVR.Version, v1alpha1.InMemoryChannelGVR.Group),
		},
	}
}

func resourceString(resource, version, group string) string {
	return resource + "." + version + "." + group
}
