package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LukasRub/crisiscorpus/app/corpus"
	"github.com/LukasRub/crisiscorpus/app/database"
)

const defaultDocumentLimit = 20

func NewHandler(docRepo database.DocumentRepositoryInterface,
	labelRepo database.LabelRepositoryInterface, reader *corpus.Reader) *Handler {
	return &Handler{
		docRepo:   docRepo,
		labelRepo: labelRepo,
		reader:    reader,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if documentCount, err := h.docRepo.GetCount(); err == nil {
		health["documents"] = documentCount
	}
	if labelCount, err := h.labelRepo.GetCount(); err == nil {
		health["labels"] = labelCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	byEventType, err := h.docRepo.GetCountByEventType()
	if err != nil {
		slog.Error("Database error", "operation", "count_by_event_type", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	categories, err := h.labelRepo.GetCategories()
	if err != nil {
		slog.Error("Database error", "operation", "get_categories", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	documentCount, _ := h.docRepo.GetCount()
	labelCount, _ := h.labelRepo.GetCount()

	c.JSON(http.StatusOK, gin.H{
		"documents":               documentCount,
		"labels":                  labelCount,
		"categories":              len(categories),
		"documents_by_event_type": byEventType,
	})
}

func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.labelRepo.GetCategories()
	if err != nil {
		slog.Error("Database error", "operation", "get_categories", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"total":      len(categories),
	})
}

func (h *Handler) GetDocumentsByCategory(c *gin.Context) {
	category := c.Param("category")
	if category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing category parameter"})
		return
	}

	limit := defaultDocumentLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}

	documents, err := h.docRepo.GetByCategory(category, limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_by_category", "category", category, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	payloads := make([]json.RawMessage, 0, len(documents))
	for _, doc := range documents {
		payloads = append(payloads, json.RawMessage(doc.Payload))
	}

	c.JSON(http.StatusOK, gin.H{
		"category":  category,
		"documents": payloads,
		"total":     len(payloads),
	})
}

func (h *Handler) APIGetPriorityHistogram(c *gin.Context) {
	histogram, err := h.labelRepo.GetPriorityHistogram()
	if err != nil {
		slog.Error("Database error", "operation", "priority_histogram", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	// JSON object keys must be strings
	buckets := make(map[string]int, len(histogram))
	for priority, count := range histogram {
		buckets[strconv.FormatFloat(priority, 'g', -1, 64)] = count
	}

	c.JSON(http.StatusOK, gin.H{"priorities": buckets})
}

// APIGetCorpusSizes reports per-file on-disk sizes for corpus health
// auditing, optionally restricted to one category.
func (h *Handler) APIGetCorpusSizes(c *gin.Context) {
	var sel corpus.Selection
	if category := c.Query("category"); category != "" {
		sel.Categories = []string{category}
	}

	fileIDs, err := h.reader.Resolve(sel)
	if err != nil {
		slog.Error("Corpus error", "operation", "resolve", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	sizes, err := h.reader.Sizes(sel)
	if err != nil {
		slog.Error("Corpus error", "operation", "sizes", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	files := make([]gin.H, 0, len(fileIDs))
	for i, fileID := range fileIDs {
		files = append(files, gin.H{"file_id": fileID, "bytes": sizes[i]})
	}

	c.JSON(http.StatusOK, gin.H{
		"files": files,
		"total": len(files),
	})
}
