// Package config manages the Rush Hour level files.
//
// Levels are JSON files in a single directory. The file name without the
// .json extension is the level id used by sessions and the API:
//
//	{
//	  "name": "Level 1",
//	  "label": "4721",
//	  "vehicles": [
//	    {"pos": [1, 2], "size": 2, "dir": "horizontal", "player": true},
//	    {"pos": [4, 0], "size": 3, "dir": "vertical"}
//	  ]
//	}
//
// Usage:
//
//	manager, err := config.NewManager("levels")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	level, err := manager.LoadLevel("level2")
//	levels, err := manager.ListLevels()
//	def := manager.GetDefault()
//
// Loaded levels are cached until RefreshCache, which the server runs on
// SIGHUP. Files that do
// not pass engine.ValidateLevelConfig are skipped by ListLevels and rejected
// by LoadLevel with ErrInvalidLevel.
package config
