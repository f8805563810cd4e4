package config

import (
	"encoding/json"
	"os"

	"github.com/orgvault/orgvault/internal/flagx"
)

// JsonConfig is the DTO for reading a JSON configuration file. After
// unmarshalling, non-zero fields are copied into the runtime Config.
type JsonConfig struct {
	DatabaseDriver string `json:"database_driver"`
	DatabaseDSN    string `json:"database_dsn"`
	PageSize       int    `json:"page_size"`
}

// parseJson loads configuration values from the JSON file named by the
// -c or -config flags, when present. A missing flag means no JSON overlay;
// an unreadable or invalid file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.DatabaseDriver != "" {
		config.DatabaseDriver = c.DatabaseDriver
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.PageSize != 0 {
		config.PageSize = c.PageSize
	}
}
