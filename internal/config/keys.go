package config

import "os"

// APIKeySource represents where an API key comes from.
type APIKeySource string

const (
	KeySourceEnv    APIKeySource = "env"
	KeySourceConfig APIKeySource = "config"
	KeySourceNone   APIKeySource = "none"
)

// KeyStatus represents the status of an API key.
type KeyStatus struct {
	Name     string       `json:"name"`
	Source   APIKeySource `json:"source"`
	IsSet    bool         `json:"is_set"`
	Required bool         `json:"required"`
	Masked   string       `json:"masked,omitempty"` // e.g., "abc...xyz"
}

// CheckAPIKeys returns the status of every external-service key. A key is
// required only when its service is the selected production source.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	pvwatts := checkKey("NREL PVWatts API Key", cfg.Production.PVWatts.APIKey,
		EnvPrefix+"_PRODUCTION_PVWATTS_API_KEY", "NREL_API_KEY")
	pvwatts.Required = cfg.Production.Source == "pvwatts"
	return []KeyStatus{pvwatts}
}

// MissingKeys returns the names of required keys that are not set.
func MissingKeys(cfg *Config) []string {
	var missing []string
	for _, s := range CheckAPIKeys(cfg) {
		if s.Required && !s.IsSet {
			missing = append(missing, s.Name)
		}
	}
	return missing
}

// checkKey checks if a key is set and where it came from.
func checkKey(name, value string, envVars ...string) KeyStatus {
	status := KeyStatus{
		Name:   name,
		IsSet:  value != "",
		Source: KeySourceNone,
	}
	if value == "" {
		return status
	}

	status.Source = KeySourceConfig
	for _, env := range envVars {
		if os.Getenv(env) == value {
			status.Source = KeySourceEnv
			break
		}
	}
	status.Masked = maskKey(value)
	return status
}

// maskKey masks an API key for display, showing only first 3 and last 3 chars.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
