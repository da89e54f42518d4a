package objfind

import (
	"io/ioutil"

	"gopkg.in/yaml.v3"

	"github.com/objfind/objfind/match"
)

// ReadConfig loads a search configuration from a YAML file. Missing
// keys keep their default values.
func ReadConfig(path string) (match.Config, error) {
	config := match.DefaultConfig()

	data, err := ioutil.ReadFile(path)
	if err != nil {
		return config, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, err
	}

	return config, nil
}

// WriteConfig saves a search configuration to a YAML file.
func WriteConfig(config match.Config, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	return ioutil.WriteFile(path, data, 0644)
}
