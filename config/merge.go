package config

// mergeConfigs layers override on top of base. Scalars set in override win,
// lists replace rather than append, and extension sections are replaced
// whole.
func mergeConfigs(base, override *Config) *Config {
	result := *base

	if len(override.Watches) > 0 {
		result.Watches = override.Watches
	}
	if override.Recursive {
		result.Recursive = true
	}
	if override.StartMethod != "" {
		result.StartMethod = override.StartMethod
	}
	if override.LogDir != "" {
		result.LogDir = override.LogDir
	}
	if override.LogFile != "" {
		result.LogFile = override.LogFile
	}
	if override.AnalysisFile != "" {
		result.AnalysisFile = override.AnalysisFile
	}
	if override.DeletedLevel != "" {
		result.DeletedLevel = override.DeletedLevel
	}
	if len(override.Ignore) > 0 {
		result.Ignore = override.Ignore
	}
	if override.JoinInterval != "" {
		result.JoinInterval = override.JoinInterval
	}

	if override.Rotation.MaxSizeMB != 0 {
		result.Rotation.MaxSizeMB = override.Rotation.MaxSizeMB
	}
	if override.Rotation.MaxBackups != 0 {
		result.Rotation.MaxBackups = override.Rotation.MaxBackups
	}
	if override.Rotation.MaxAgeDays != 0 {
		result.Rotation.MaxAgeDays = override.Rotation.MaxAgeDays
	}
	if override.Rotation.Compress {
		result.Rotation.Compress = true
	}

	if len(base.Extensions) > 0 || len(override.Extensions) > 0 {
		result.Extensions = make(map[string]interface{}, len(base.Extensions)+len(override.Extensions))
		for k, v := range base.Extensions {
			result.Extensions[k] = v
		}
		for k, v := range override.Extensions {
			result.Extensions[k] = v
		}
	}

	result.sources = append(append([]string(nil), base.sources...), override.sources...)
	return &result
}
