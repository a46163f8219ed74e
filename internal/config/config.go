package config

import "strconv"

// Config holds server configuration values.
type Config struct {
	Port       int    `mapstructure:"port" yaml:"port"`
	Password   string `mapstructure:"password" yaml:"password"`
	MOTD       string `mapstructure:"motd" yaml:"motd"`
	OperName   string `mapstructure:"oper_name" yaml:"oper_name"`
	OperPass   string `mapstructure:"oper_pass" yaml:"oper_pass"`
	MaxClients int    `mapstructure:"max_clients" yaml:"max_clients"`
	LogLevel   string `mapstructure:"log_level" yaml:"log_level"`
}

// Default returns configuration with reasonable starter defaults. The server
// password has no default; it is a mandatory argument.
func Default() Config {
	return Config{
		Port:       6667,
		OperName:   "oper",
		OperPass:   "oper",
		MaxClients: 200,
		LogLevel:   "info",
	}
}

// Addr is the TCP listen address for the configured port, bound to all
// interfaces.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}
