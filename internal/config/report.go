// Package config loads the per-study report.json and the tool-level
// doc-builder.yaml configuration.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	dberrors "git.home.luguber.info/inful/doc-builder/internal/errors"
)

// ReportFileName is the per-study configuration filename.
const ReportFileName = "report.json"

// Load reads and validates <studyDir>/report.json. The template path is
// resolved against templateDir, every other relative path against studyDir,
// so a study directory can be moved wholesale without editing its config.
func Load(studyDir, templateDir string) (*ReportConfig, error) {
	configPath := filepath.Join(studyDir, ReportFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, dberrors.ConfigNotFound(configPath)
		}
		return nil, dberrors.ConfigMalformed("unreadable file", err).WithContext("path", configPath)
	}

	if err := validateReport(data); err != nil {
		return nil, err
	}

	var cfg ReportConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, dberrors.ConfigMalformed("invalid JSON", err).WithContext("path", configPath)
	}

	absStudy, err := filepath.Abs(studyDir)
	if err != nil {
		return nil, dberrors.InternalError("resolving study directory", err)
	}
	cfg.StudyDir = absStudy
	cfg.StudyName = filepath.Base(absStudy)
	if cfg.Author == "" {
		cfg.Author = "N/A"
	}

	if templateDir == "" {
		templateDir = absStudy
	}
	cfg.TemplatePath = resolveAgainst(templateDir, cfg.Template)
	if _, err := os.Stat(cfg.TemplatePath); err != nil {
		return nil, dberrors.ConfigPathMissing("template", cfg.TemplatePath)
	}

	cfg.DataSource = resolveAgainst(absStudy, cfg.DataSource)
	if _, err := os.Stat(cfg.DataSource); err != nil {
		return nil, dberrors.ConfigPathMissing("data_source", cfg.DataSource)
	}

	// Section files are resolved here but checked for existence by the
	// content resolver, which reports a ContentError with the section name.
	for key, rel := range cfg.Sections {
		cfg.Sections[key] = resolveAgainst(absStudy, rel)
	}
	for key, spec := range cfg.Images {
		if spec.DataSource != "" {
			spec.DataSource = resolveAgainst(absStudy, spec.DataSource)
			cfg.Images[key] = spec
		}
	}

	return &cfg, nil
}

// validateReport checks the raw JSON against the embedded schema and maps
// the first violation onto a ConfigError naming the offending field.
func validateReport(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(reportSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return dberrors.ConfigMalformed("invalid JSON", err)
	}
	if result.Valid() {
		return nil
	}
	first := result.Errors()[0]
	if first.Type() == "required" {
		if missing, ok := first.Details()["property"].(string); ok {
			return dberrors.ConfigRequired(missing)
		}
	}
	field := first.Field()
	if field == "(root)" {
		field = ""
	}
	return dberrors.ConfigMalformed(first.Description(), nil).WithContext("field", field)
}

// resolveAgainst joins rel onto base unless rel is already absolute, then
// cleans the result. Base is assumed absolute.
func resolveAgainst(base, rel string) string {
	rel = strings.TrimSpace(rel)
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Join(base, rel)
}
