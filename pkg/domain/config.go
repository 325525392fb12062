package domain

// RouteConfig is the declarative descriptor of a route, as found in route
// files or built in code. Hooks and artifacts given by name are resolved
// when the tree is normalized; the Go-only fields take precedence.
type RouteConfig struct {
	ID        string            `yaml:"id,omitempty" json:"id,omitempty" mapstructure:"id"`
	Path      string            `yaml:"path" json:"path" mapstructure:"path"`
	Artifact  string            `yaml:"artifact,omitempty" json:"artifact,omitempty" mapstructure:"artifact"`
	Artifacts map[string]string `yaml:"artifacts,omitempty" json:"artifacts,omitempty" mapstructure:"artifacts"`
	OnEnter   string            `yaml:"on_enter,omitempty" json:"on_enter,omitempty" mapstructure:"on_enter"`
	OnChange  string            `yaml:"on_change,omitempty" json:"on_change,omitempty" mapstructure:"on_change"`
	OnLeave   string            `yaml:"on_leave,omitempty" json:"on_leave,omitempty" mapstructure:"on_leave"`
	Terminal  bool              `yaml:"terminal,omitempty" json:"terminal,omitempty" mapstructure:"terminal"`
	Meta      map[string]any    `yaml:"meta,omitempty" json:"meta,omitempty" mapstructure:"meta"`
	Children  []RouteConfig     `yaml:"children,omitempty" json:"children,omitempty" mapstructure:"children"`

	EnterHook    HookFunc                `yaml:"-" json:"-" mapstructure:"-"`
	ChangeHook   HookFunc                `yaml:"-" json:"-" mapstructure:"-"`
	LeaveHook    HookFunc                `yaml:"-" json:"-" mapstructure:"-"`
	ArtifactRef  *ArtifactRef            `yaml:"-" json:"-" mapstructure:"-"`
	ArtifactRefs map[string]*ArtifactRef `yaml:"-" json:"-" mapstructure:"-"`
}
