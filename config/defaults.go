package config

const (
	defaultAddress     = ":56400"
	defaultMaxBodySize = 4 * 1024 * 1024
	defaultWorkers     = 4
)
