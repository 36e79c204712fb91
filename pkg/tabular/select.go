package tabular

import (
	"strings"

	"ai-knowledge-router-be/pkg/lexical"
	"ai-knowledge-router-be/pkg/store"
)

// aggregateTerms mark questions a table answers better than prose
var aggregateTerms = []string{
	"jumlah", "total", "rata", "rata-rata", "berapa", "banyak", "persentase", "tertinggi",
	"terendah", "terbanyak", "maksimum", "minimum", "sum", "average", "count", "how many",
	"how much", "highest", "lowest", "percentage", "median",
}

// IsTabularQuestion reports whether the question asks for figures
func IsTabularQuestion(question string) bool {
	if lexical.HasDigit(question) {
		return true
	}
	lower := strings.ToLower(question)
	for _, term := range aggregateTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// SelectSpreadsheet returns the sheet whose title and description share the most
// keywords with the question. Ties keep the earlier sheet; no overlap returns nil.
func SelectSpreadsheet(sheets []store.Spreadsheet, question string) *store.Spreadsheet {
	questionVocab := lexical.NewVocabulary(question)
	best, bestOverlap := -1, 0
	for i, s := range sheets {
		overlap := questionVocab.Intersect(lexical.NewVocabulary(s.Title + " " + s.Description))
		if overlap > bestOverlap {
			best, bestOverlap = i, overlap
		}
	}
	if best < 0 {
		return nil
	}
	sheet := sheets[best]
	return &sheet
}
