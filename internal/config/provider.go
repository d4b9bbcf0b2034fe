package config

import (
	"github.com/Aman-CERP/storytree/pkg/storyhash"
)

// Provider serves sidebar settings from a loaded Config. Label renderers
// cannot be expressed in YAML, so they are attached in code.
type Provider struct {
	cfg         *Config
	renderLabel storyhash.LabelRenderer
}

// NewProvider wraps cfg. A nil cfg serves defaults.
func NewProvider(cfg *Config) *Provider {
	if cfg == nil {
		cfg = NewConfig()
	}
	return &Provider{cfg: cfg}
}

// WithLabelRenderer attaches a custom label renderer to every built node.
func (p *Provider) WithLabelRenderer(fn storyhash.LabelRenderer) *Provider {
	p.renderLabel = fn
	return p
}

// GetConfig implements storyhash.ConfigProvider.
func (p *Provider) GetConfig() storyhash.Settings {
	return storyhash.Settings{
		Sidebar: storyhash.SidebarSettings{
			ShowRoots:      p.cfg.Sidebar.ShowRoots,
			CollapsedRoots: p.cfg.Sidebar.CollapsedRoots,
			RenderLabel:    p.renderLabel,
		},
		DeprecatedShowRoots: p.cfg.ShowRoots,
	}
}

// Features returns the feature flags for storyhash.Options.
func (p *Provider) Features() storyhash.Features {
	return storyhash.Features{
		WarnOnLegacyHierarchySeparator: p.cfg.Features.WarnOnLegacyHierarchySeparator != nil &&
			*p.cfg.Features.WarnOnLegacyHierarchySeparator,
	}
}
