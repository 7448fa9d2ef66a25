package config

// ReportConfig is the parsed contents of a study's report.json. Relative
// paths have already been resolved against the study directory by Load.
type ReportConfig struct {
	// Template is the .docx template filename, resolved against the
	// template directory (studies stay portable; templates are shared).
	Template string `json:"template"`
	Author   string `json:"author"`
	// DataSource is the absolute path of the study's CSV file.
	DataSource string `json:"data_source"`
	// Sections maps section keys to absolute markdown file paths.
	Sections map[string]string `json:"sections"`
	// Images maps image placeholder keys to their specs.
	Images map[string]ImageSpec `json:"images"`
	// Analyses holds optional derived computations and statistical tests.
	Analyses AnalysesConfig `json:"analyses"`

	// StudyDir is the directory report.json was read from.
	StudyDir string `json:"-"`
	// StudyName is the base name of the study directory.
	StudyName string `json:"-"`
	// TemplatePath is the resolved absolute template path.
	TemplatePath string `json:"-"`
}

// ImageSpec describes one generated image.
type ImageSpec struct {
	Type string `json:"type"`
	// DataSource optionally overrides the report-level data source.
	// Resolved to an absolute path; empty means use the report's table.
	DataSource string         `json:"data_source"`
	Options    map[string]any `json:"options"`
}

// AnalysesConfig mirrors the report.json "analyses" object.
type AnalysesConfig struct {
	Computations []ComputationSpec `json:"computations"`
	Stats        []StatTestSpec    `json:"stats"`
}

// ComputationSpec requests a named derived computation over table columns,
// bound into the template context under computed.<key>.
type ComputationSpec struct {
	Key     string   `json:"key"`
	Type    string   `json:"type"`
	Columns []string `json:"columns"`
}

// StatTestSpec requests a named statistical test, bound into the template
// context under stats.<key>.
type StatTestSpec struct {
	Key     string `json:"key"`
	Type    string `json:"type"`
	Series1 string `json:"series1"`
	Series2 string `json:"series2"`
	X       string `json:"x"`
	Y       string `json:"y"`
}
