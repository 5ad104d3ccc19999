package config

type PoolConfig struct {
	Name    string `yaml:"name,omitempty" json:"name,omitempty"`
	Workers int    `yaml:"workers,omitempty" json:"workers,omitempty"`
	Echo    bool   `yaml:"echo,omitempty" json:"echo,omitempty"`
}

type Defaults struct {
	Workers int  `yaml:"workers,omitempty" json:"workers,omitempty"`
	Echo    bool `yaml:"echo,omitempty" json:"echo,omitempty"`
}
