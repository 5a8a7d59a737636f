package domain

import "time"

// Setting keys understood by the server.
const (
	SettingVisibilityRadius = "CACHE_VISIBILITY_RADIUS_METERS"
	SettingFoundRadius      = "CACHE_FOUND_RADIUS_METERS"
	SettingInstanceName     = "INSTANCE_NAME"
	SettingDefaultLocale    = "DEFAULT_LOCALE"
	SettingEnabledLocales   = "ENABLED_LOCALES"
	SettingImpressumURL     = "IMPRESSUM_URL"
	SettingPrivacyURL       = "PRIVACY_URL"
	SettingSupportEmail     = "SUPPORT_EMAIL"
	SettingInfoTextHome     = "INFO_TEXT_HOME"
	SettingSetupCompleted   = "SETUP_COMPLETED"
)

// Compiled defaults for the two radii.
const (
	DefaultVisibilityRadiusMeters = 2000.0
	DefaultFoundRadiusMeters      = 1.0
)

// SettingDefaults maps every known key to the value used when no row is stored.
var SettingDefaults = map[string]string{
	SettingVisibilityRadius: "2000",
	SettingFoundRadius:      "1",
	SettingInstanceName:     "Egg Hunt",
	SettingDefaultLocale:    "de",
	SettingEnabledLocales:   "de,en",
	SettingImpressumURL:     "",
	SettingPrivacyURL:       "",
	SettingSupportEmail:     "",
	SettingInfoTextHome:     "",
	SettingSetupCompleted:   "false",
}

// SettingKeys lists the known keys in display order.
var SettingKeys = []string{
	SettingInstanceName,
	SettingDefaultLocale,
	SettingEnabledLocales,
	SettingVisibilityRadius,
	SettingFoundRadius,
	SettingImpressumURL,
	SettingPrivacyURL,
	SettingSupportEmail,
	SettingInfoTextHome,
	SettingSetupCompleted,
}

// IsKnownSetting reports whether key has a compiled default.
func IsKnownSetting(key string) bool {
	_, ok := SettingDefaults[key]
	return ok
}

// Setting is a stored key-value override.
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveSetting is a key with the value currently in force.
type EffectiveSetting struct {
	Key        string `json:"key"`
	Value      string `json:"value"`
	Default    string `json:"default"`
	Overridden bool   `json:"overridden"`
}

// HuntSettings is the typed view of the settings the proximity rules need,
// resolved once per operation.
type HuntSettings struct {
	VisibilityRadiusMeters float64 `json:"visibility_radius_meters"`
	FoundRadiusMeters      float64 `json:"found_radius_meters"`
}

// DefaultHuntSettings returns the compiled defaults.
func DefaultHuntSettings() HuntSettings {
	return HuntSettings{
		VisibilityRadiusMeters: DefaultVisibilityRadiusMeters,
		FoundRadiusMeters:      DefaultFoundRadiusMeters,
	}
}
