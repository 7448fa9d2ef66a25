package errors

import "errors"

// ExitCodeFor maps an error onto a process exit code. The CLI uses distinct
// codes per category so scripted callers can tell configuration mistakes from
// bad study content.
func ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	var dbe *DocBuilderError
	if !errors.As(err, &dbe) {
		return 1
	}
	switch dbe.Category {
	case CategoryConfig:
		return 7
	case CategoryContent, CategoryData:
		return 3
	case CategoryImage, CategoryRender:
		return 4
	case CategoryFileSystem:
		return 11
	case CategoryInternal:
		return 10
	default:
		return 1
	}
}
