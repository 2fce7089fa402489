package dto

// GenerateVariantsRequest requests up to NumVariants distinct timetable
// solutions from the constraint solver, covering every batch in the
// catalog at once.
type GenerateVariantsRequest struct {
	NumVariants int `json:"numVariants" validate:"required,min=1,max=5"`
}

// PeriodView is one scheduled cell in a generated or stored timetable.
type PeriodView struct {
	Day       int    `json:"day"`
	PeriodNo  int    `json:"periodNo"`
	RoomID    string `json:"roomId"`
	BatchID   string `json:"batchId"`
	SubjectID string `json:"subjectId"`
	FacultyID string `json:"facultyId"`
}

// SolutionView is one candidate timetable variant.
type SolutionView struct {
	Periods []PeriodView `json:"periods"`
}

// SuggestionView is a necessary-condition finding surfaced when solving fails.
type SuggestionView struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Solution string `json:"solution"`
}

// DiagnosticView explains why no solution was produced.
type DiagnosticView struct {
	Error       string           `json:"error"`
	Suggestions []SuggestionView `json:"suggestions"`
}

// GenerateVariantsResponse returns either a non-empty solution list or a
// diagnostic; exactly one is populated.
type GenerateVariantsResponse struct {
	Solutions  []SolutionView  `json:"solutions,omitempty"`
	Diagnostic *DiagnosticView `json:"diagnostic,omitempty"`
}

// SaveTimetableRequest persists one batch's slice of the most recently
// generated solution set as a new Timetable version for that term/class.
type SaveTimetableRequest struct {
	VariantIndex int `json:"variantIndex" validate:"min=0"`
}

// TimetableQuery filters stored timetable versions by term and class/batch.
type TimetableQuery struct {
	TermID  string `form:"termId" json:"termId"`
	ClassID string `form:"classId" json:"classId"`
}
