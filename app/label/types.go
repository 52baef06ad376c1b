package label

// Record is a single crowd-sourced annotation of one post. PostID is kept as
// an opaque string: Twitter status IDs overflow float64 and must never pass
// through a numeric type.
type Record struct {
	PostID     string
	EventID    string
	DatasetID  string
	EventType  string
	Priority   string
	Score      float64
	Categories []string
	Indicators map[string]int
}

// HasCategory reports whether the record carries the given category tag.
func (r *Record) HasCategory(tag string) bool {
	for _, c := range r.Categories {
		if c == tag {
			return true
		}
	}
	return false
}
