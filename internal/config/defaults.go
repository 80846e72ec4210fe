package config

import (
	"os"
	"path/filepath"
	"strings"

	"yousum/internal/domain"
)

// SettingsKey is the fixed storage key for the persisted settings record.
const SettingsKey = "yousum_settings"

// DefaultSettings returns baseline summary preferences for first launch.
func DefaultSettings() domain.Settings {
	return domain.Settings{
		Length:     domain.LengthMedium,
		FocusAreas: []string{domain.DefaultFocusArea},
		Language:   "en",
	}
}

// NormalizeSettings trims user input, drops blank or repeated focus areas and
// falls back to defaults for an unknown length or an empty language.
func NormalizeSettings(settings domain.Settings) domain.Settings {
	settings.Length = domain.SummaryLength(strings.ToLower(strings.TrimSpace(string(settings.Length))))
	if !settings.Length.Valid() {
		settings.Length = domain.LengthMedium
	}

	settings.Language = strings.ToLower(strings.TrimSpace(settings.Language))
	if settings.Language == "" {
		settings.Language = "en"
	}

	seen := make(map[string]bool, len(settings.FocusAreas))
	areas := make([]string, 0, len(settings.FocusAreas))
	for _, area := range settings.FocusAreas {
		area = strings.TrimSpace(area)
		if area == "" || seen[area] {
			continue
		}
		seen[area] = true
		areas = append(areas, area)
	}
	if len(areas) == 0 {
		areas = []string{domain.DefaultFocusArea}
	}
	settings.FocusAreas = areas

	return settings
}

// homeDir resolves the user home directory, falling back to the working directory.
func homeDir() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return dir
}

// DataDir is where settings, the sqlite database and the config file live.
func DataDir() string {
	return filepath.Join(homeDir(), ".yousum")
}
