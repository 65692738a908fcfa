package export

// Grid defines tabular export content for one grade-section timetable.
type Grid struct {
	Title   string
	Headers []string
	Rows    []map[string]string
}
