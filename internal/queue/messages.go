package queue

// ImportJobMsg asks the worker to import one reference-manager export
// into a project graph. ExportKey addresses the export JSON through the
// configured document loader; attached documents are resolved relative
// to the same loader.
type ImportJobMsg struct {
	Message   string `json:"message"`
	ProjectID string `json:"project_id"`
	ImportID  string `json:"import_id"`
	ExportKey string `json:"export_key"`

	// PerSectionCooccurrence scopes co-occurrence edges to individual
	// sections instead of whole papers.
	PerSectionCooccurrence bool `json:"per_section_cooccurrence,omitempty"`
}

// AnalyzeJobMsg asks the worker to re-run gap and centrality analysis
// for a project without importing anything.
type AnalyzeJobMsg struct {
	Message   string `json:"message"`
	ProjectID string `json:"project_id"`
}
