package errors

// Convenience constructors for the pipeline error taxonomy. Every failure a
// single report can produce maps onto one of these.

// Config errors

func ConfigNotFound(path string) *DocBuilderError {
	return New(CategoryConfig, SeverityFatal, "report configuration not found").
		WithContext("path", path)
}

func ConfigRequired(field string) *DocBuilderError {
	return New(CategoryConfig, SeverityFatal, "required configuration key missing").
		WithContext("field", field)
}

func ConfigMalformed(reason string, cause error) *DocBuilderError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "malformed report configuration").
		WithContext("reason", reason)
}

func ConfigPathMissing(field, path string) *DocBuilderError {
	return New(CategoryConfig, SeverityFatal, "referenced file does not exist").
		WithContext("field", field).
		WithContext("path", path)
}

// Content errors

func SectionNotFound(section, path string) *DocBuilderError {
	return New(CategoryContent, SeverityFatal, "section file missing").
		WithContext("section", section).
		WithContext("path", path)
}

func SectionUnreadable(section, path string, cause error) *DocBuilderError {
	return Wrap(cause, CategoryContent, SeverityFatal, "section file unreadable").
		WithContext("section", section).
		WithContext("path", path)
}

// Data errors

func DataMalformed(path string, row int, cause error) *DocBuilderError {
	return Wrap(cause, CategoryData, SeverityFatal, "malformed tabular data").
		WithContext("path", path).
		WithContext("row", row)
}

func DataColumnNotNumeric(column string, row int) *DocBuilderError {
	return New(CategoryData, SeverityFatal, "column is not numeric where numeric values are required").
		WithContext("column", column).
		WithContext("row", row)
}

func DataColumnUnknown(column string) *DocBuilderError {
	return New(CategoryData, SeverityFatal, "column not present in data source").
		WithContext("column", column)
}

func DataNameAmbiguous(name, reason string) *DocBuilderError {
	return New(CategoryData, SeverityFatal, "derived value name is ambiguous").
		WithContext("field", name).
		WithContext("reason", reason)
}

func AnalysisUnknown(typ string) *DocBuilderError {
	return New(CategoryData, SeverityFatal, "unknown analysis type").
		WithContext("type", typ)
}

// Image errors

func ImageTypeUnknown(typ string) *DocBuilderError {
	return New(CategoryImage, SeverityFatal, "unknown image type").
		WithContext("type", typ)
}

func ImageGenerationFailed(key string, cause error) *DocBuilderError {
	return Wrap(cause, CategoryImage, SeverityFatal, "image generation failed").
		WithContext("key", key)
}

// Render errors

func PlaceholderUnresolved(placeholder string) *DocBuilderError {
	return New(CategoryRender, SeverityFatal, "placeholder did not resolve").
		WithContext("placeholder", placeholder)
}

func PlaceholderEvalFailed(placeholder string, cause error) *DocBuilderError {
	return Wrap(cause, CategoryRender, SeverityFatal, "placeholder expression failed").
		WithContext("placeholder", placeholder)
}

func ImageKeyUnbound(key string) *DocBuilderError {
	return New(CategoryRender, SeverityFatal, "image placeholder has no matching images entry").
		WithContext("key", key)
}

func TemplateInvalid(path string, cause error) *DocBuilderError {
	return Wrap(cause, CategoryRender, SeverityFatal, "template could not be parsed").
		WithContext("path", path)
}

// Infrastructure errors

func OutputWriteFailed(path string, cause error) *DocBuilderError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "writing output failed").
		WithContext("path", path)
}

func InternalError(message string, cause error) *DocBuilderError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
