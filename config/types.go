package config

// DependencyServices are the services the topology builder consumes;
// they are the default scan set when the config lists none.
var DependencyServices = []string{"Gateway", "ELB", "TargetGroup", "EC2", "RDS"}

// RunConfig represents a collection run configuration file.
type RunConfig struct {
	Regions  []string     `yaml:"regions"`
	Services []string     `yaml:"services"`
	Filters  FilterConfig `yaml:"filters"`
}

// FilterConfig narrows what the collectors pick up.
type FilterConfig struct {
	Tags map[string]string `yaml:"tags"`
}
