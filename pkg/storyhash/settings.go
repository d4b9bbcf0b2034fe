package storyhash

import "slices"

// Notifier call sites. A Notifier reports each site at most once.
const (
	SiteDeprecatedShowRoots = "storyhash.show_roots"
	SiteLegacySeparator     = "storyhash.legacy_separator"
)

// SidebarSettings are the sidebar display options that affect tree shape.
type SidebarSettings struct {
	// ShowRoots promotes the first path segment to a Root when set or nil.
	// Set it to false to keep every segment a Group.
	ShowRoots      *bool
	CollapsedRoots []string
	RenderLabel    LabelRenderer
}

// Settings is the read-only configuration consulted while building.
type Settings struct {
	Sidebar SidebarSettings
	// DeprecatedShowRoots is the legacy top-level alias of Sidebar.ShowRoots.
	DeprecatedShowRoots *bool
}

// ConfigProvider supplies settings. GetConfig is called once per record and
// must be cheap.
type ConfigProvider interface {
	GetConfig() Settings
}

// Features are process-wide feature flags.
type Features struct {
	WarnOnLegacyHierarchySeparator bool
}

// Notifier receives advisory deprecation notices. Implementations decide
// how to deduplicate by site.
type Notifier interface {
	Notify(site, message string)
}

// StaticProvider serves fixed settings.
type StaticProvider Settings

// GetConfig implements ConfigProvider.
func (p StaticProvider) GetConfig() Settings { return Settings(p) }

// effectiveShowRoots resolves the new flag, falling back to the legacy alias.
func (s Settings) effectiveShowRoots() *bool {
	if s.Sidebar.ShowRoots != nil {
		return s.Sidebar.ShowRoots
	}
	return s.DeprecatedShowRoots
}

func (s Settings) collapsed(id string) bool {
	return slices.Contains(s.Sidebar.CollapsedRoots, id)
}
