// Package files loads the caller-supplied tables the pipelines consume:
// the raw property CSV, the demographic XLSX, the INS-to-postal JSON
// mapping, the first-name observations CSV, and the enriched CSV that
// connects the two pipeline binaries.
//
// CSV columns are resolved by header name, not position, so the sources can
// reorder or extend their columns without breaking the loaders. Rows that
// fail basic validation are skipped with a warning instead of aborting the
// load; structural problems (missing required columns, unreadable files)
// are PARSING/STORAGE errors.
package files
