package cli

import (
	"errors"
	"fmt"

	"github.com/runnerr0/viewtally/internal/config"
)

// Execute implements the go-flags Commander interface for KeyCommand.
func (c *KeyCommand) Execute(args []string) error {
	if c.Set == "" && !c.Show {
		return errors.New("key requires --set KEY or --show")
	}

	if c.Set != "" {
		path, err := config.ResolvePath(c.globals.Config)
		if err != nil {
			return err
		}
		// only the file is rewritten, so environment overrides stay out of it
		cfg, err := config.LoadOrCreateAt(path)
		if err != nil {
			return err
		}
		if err := cfg.SetKey(c.Set); err != nil {
			return err
		}
		if err := config.Save(path, cfg); err != nil {
			return err
		}
		if c.globals.JSON {
			return printJSON(map[string]interface{}{"saved": true, "config": path})
		}
		fmt.Printf("API key saved to %s\n", path)
		return nil
	}

	cfg, path, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	if c.globals.JSON {
		return printJSON(map[string]interface{}{
			"key":    maskKey(cfg.API.Key),
			"set":    cfg.API.Key != "",
			"config": path,
		})
	}
	fmt.Printf("API key:       %s\n", maskKey(cfg.API.Key))
	fmt.Printf("Config:        %s\n", path)
	return nil
}
