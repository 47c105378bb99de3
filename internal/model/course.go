package model

// CourseRecord is one course offering read from a timetable row
type CourseRecord struct {
	Source        string      `json:"source"`     // Originating filename(s), ";"-joined after a cross-file merge
	DeptBlock     *string     `json:"dept_block"` // Department context active when the row was read
	Grade         string      `json:"grade"`
	Seq           *string     `json:"seq"` // Corpus-wide sequence id (dedup key)
	Code          string      `json:"code"`
	Major         *string     `json:"major"`
	TermOrder     string      `json:"term_order"`
	Class         string      `json:"class"`
	GroupDiv      *string     `json:"group_div"`
	Required      string      `json:"required"`
	Credits       IntOrString `json:"credits"`
	Group         string      `json:"group"`
	Title         string      `json:"title"`
	Cap           IntOrString `json:"cap"`
	Teacher       string      `json:"teacher"` // Comma-joined names after a TA merge
	Times         []string    `json:"times"`   // Time-slot tokens in arrival order
	EnglishTaught bool        `json:"english_taught"`
	Note          string      `json:"note,omitempty"` // Campus label, only when the title carried a campus marker
}

// SeqValue returns the sequence id or "" when absent
func (r *CourseRecord) SeqValue() string {
	if r.Seq == nil {
		return ""
	}
	return *r.Seq
}

// StringPtr returns a pointer to s, or nil when s is empty
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// EqualStringPtr compares two optional strings; nil only equals nil
func EqualStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
