package engine

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/prisma/engine/core"
)

type ApplicationConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX uint32 `toml:"start_pos_x"`
	// Window starting position y axis, if applicable.
	StartPosY uint32 `toml:"start_pos_y"`
	// Window starting width, if applicable.
	StartWidth uint32 `toml:"start_width"`
	// Window starting height, if applicable.
	StartHeight uint32 `toml:"start_height"`
	// The application name used in windowing, if applicable.
	Name string `toml:"name"`
	// Logging level name (debug, info, warn, error).
	LogLevel string `toml:"log_level"`
}

// LoadApplicationConfig reads a toml config file. Missing fields fall back
// to the defaults below.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	config := &ApplicationConfig{
		StartPosX:   100,
		StartPosY:   100,
		StartWidth:  1280,
		StartHeight: 720,
		Name:        "Prisma Engine",
		LogLevel:    "debug",
	}

	data, err := os.ReadFile(path)
	if err != nil {
		err := fmt.Errorf("unable to read application config '%s': %w", path, err)
		core.LogError(err.Error())
		return nil, err
	}
	if err := toml.Unmarshal(data, config); err != nil {
		err := fmt.Errorf("unable to parse application config '%s': %w", path, err)
		core.LogError(err.Error())
		return nil, err
	}
	return config, nil
}
