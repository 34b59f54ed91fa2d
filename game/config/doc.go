// Package config manages board configurations stored as JSON files.
//
// Each file in the config directory describes one board variant:
//
//	{
//	  "name": "Classic",
//	  "description": "9x9 board, ten walls each",
//	  "board_size": 9,
//	  "walls_per_player": 10
//	}
//
// The file name without .json is the config id used when creating a session.
// Loaded configurations are validated with engine.ValidateGameConfig and
// cached. The default is classic.json, or the first valid file, or the
// built-in classic board when the directory is empty.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	quick, err := manager.LoadConfig("quick")
//	configs, err := manager.ListConfigs()
package config
