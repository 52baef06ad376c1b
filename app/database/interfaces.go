package database

// DocumentRepositoryInterface is the corpus store's document surface, used
// by the pipeline (persist) and the API (queries).
type DocumentRepositoryInterface interface {
	Upsert(doc Document) error
	GetCount() (int, error)
	GetCountByEventType() (map[string]int, error)
	GetByCategory(category string, limit int) ([]Document, error)
}

// LabelRepositoryInterface is the corpus store's label surface.
type LabelRepositoryInterface interface {
	Upsert(label Label) error
	GetCount() (int, error)
	GetCategories() ([]string, error)
	GetPriorityHistogram() (map[float64]int, error)
}
