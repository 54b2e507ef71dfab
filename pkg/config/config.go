package config

import (
	"strings"

	"github.com/spf13/viper"
)

// NewConfig reads the YAML file at path into a viper instance, with
// environment variables taking precedence over file values.
func NewConfig(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		panic(err)
	}
	return v
}
