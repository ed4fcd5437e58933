package config

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	return &Config{
		Workspace: WorkspaceConfig{
			Documents: []string{
				"*.yaml",
				"*.yml",
			},
		},
		Tree: TreeConfig{
			Depth:            0,
			LineLength:       0,
			PrefixModule:     false,
			PrefixMainModule: false,
		},
		Watch: WatchConfig{
			DebounceMillis: 250,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Merge merges loaded config with defaults.
// Values from loaded config take precedence over defaults.
// Returns a new Config with merged values.
func Merge(loaded, defaults *Config) *Config {
	result := &Config{}

	// Merge Workspace config
	result.Workspace = mergeWorkspaceConfig(loaded.Workspace, defaults.Workspace)

	// Merge Tree config
	result.Tree = mergeTreeConfig(loaded.Tree, defaults.Tree)

	// Merge Watch config
	result.Watch = mergeWatchConfig(loaded.Watch, defaults.Watch)

	// Merge Log config
	result.Log = mergeLogConfig(loaded.Log, defaults.Log)

	return result
}

func mergeWorkspaceConfig(loaded, defaults WorkspaceConfig) WorkspaceConfig {
	result := WorkspaceConfig{}

	// Use loaded document patterns if provided, otherwise defaults
	if len(loaded.Documents) > 0 {
		result.Documents = loaded.Documents
	} else {
		result.Documents = defaults.Documents
	}

	return result
}

func mergeTreeConfig(loaded, defaults TreeConfig) TreeConfig {
	result := TreeConfig{}

	// Depth: use loaded if non-zero (zero means unlimited, the default)
	if loaded.Depth != 0 {
		result.Depth = loaded.Depth
	} else {
		result.Depth = defaults.Depth
	}

	// LineLength: use loaded if non-zero
	if loaded.LineLength != 0 {
		result.LineLength = loaded.LineLength
	} else {
		result.LineLength = defaults.LineLength
	}

	// Prefix switches are plain bools; loaded false and unset are the
	// same thing, which matches the flag defaults.
	result.PrefixModule = loaded.PrefixModule
	result.PrefixMainModule = loaded.PrefixMainModule

	return result
}

func mergeWatchConfig(loaded, defaults WatchConfig) WatchConfig {
	result := WatchConfig{}

	// DebounceMillis: use loaded if non-zero
	if loaded.DebounceMillis != 0 {
		result.DebounceMillis = loaded.DebounceMillis
	} else {
		result.DebounceMillis = defaults.DebounceMillis
	}

	return result
}

func mergeLogConfig(loaded, defaults LogConfig) LogConfig {
	result := LogConfig{}

	// Level: use loaded if non-empty
	if loaded.Level != "" {
		result.Level = loaded.Level
	} else {
		result.Level = defaults.Level
	}

	return result
}

// ValidLogLevels lists the valid values for the log level
var ValidLogLevels = []string{"trace", "debug", "info", "warn", "error"}

// IsValidLogLevel checks if the given log level is valid
func IsValidLogLevel(level string) bool {
	for _, valid := range ValidLogLevels {
		if level == valid {
			return true
		}
	}
	return false
}
