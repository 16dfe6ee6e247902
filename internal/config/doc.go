// Package config provides the configuration for cellwin.
//
// Configuration is resolved in layers, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Command Line Flags      │  ← Highest priority (applied by cmd)
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← CELLWIN_*
//	├─────────────────────────────┤
//	│  2. Config File             │  ← .toml, .yaml or .yml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// # Usage
//
//	cfg, err := config.NewLoader().Load("cellwin.toml")
//	if err != nil {
//	    return err
//	}
//	cfg.Log.Level = "debug" // flag override
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//
// A config file that does not exist is not an error; the defaults are used.
package config
