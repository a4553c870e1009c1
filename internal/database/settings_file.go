// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"inkwell/internal/models"
)

// LoadSettingsFile reads a YAML document of site settings. Keys use the
// same camelCase names as the JSON API; omitted keys stay untouched when the
// patch is applied.
func LoadSettingsFile(path string) (models.SiteSettingsPatch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.SiteSettingsPatch{}, fmt.Errorf("read settings file: %w", err)
	}
	return ParseSettings(data)
}

// ParseSettings decodes a YAML settings document. Unknown keys are rejected
// so typos do not silently drop a value.
func ParseSettings(data []byte) (models.SiteSettingsPatch, error) {
	var patch models.SiteSettingsPatch
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&patch); err != nil {
		return models.SiteSettingsPatch{}, fmt.Errorf("parse settings yaml: %w", err)
	}
	return patch, nil
}
