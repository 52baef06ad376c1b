package api

import (
	"github.com/LukasRub/crisiscorpus/app/corpus"
	"github.com/LukasRub/crisiscorpus/app/database"
)

type Handler struct {
	docRepo   database.DocumentRepositoryInterface
	labelRepo database.LabelRepositoryInterface
	reader    *corpus.Reader
}
