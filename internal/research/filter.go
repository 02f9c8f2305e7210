package research

import "seoscout/internal/models"

// Filter returns the candidates whose identity is in neither tracked nor
// shown, preserving pool order. It is a pure function: history bookkeeping
// belongs to the caller.
func Filter(pool *models.CandidatePool, tracked, shown map[string]struct{}) []models.KeywordCandidate {
	if pool == nil {
		return nil
	}
	out := make([]models.KeywordCandidate, 0, len(pool.Candidates))
	for _, c := range pool.Candidates {
		id := c.Identity()
		if _, ok := tracked[id]; ok {
			continue
		}
		if _, ok := shown[id]; ok {
			continue
		}
		out = append(out, c)
	}
	return out
}

// TrackedSet normalizes a keyword list into an identity set for Filter.
func TrackedSet(keywords []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		if id := models.NormalizeKeyword(k); id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}

// NextPage returns up to pageSize entries from filtered that are not in
// alreadyReturned, in order. An exhausted pool yields an empty page, never
// an error.
func NextPage(filtered []models.KeywordCandidate, pageSize int, alreadyReturned map[string]struct{}) []models.KeywordCandidate {
	if pageSize <= 0 {
		return nil
	}
	page := make([]models.KeywordCandidate, 0, pageSize)
	for _, c := range filtered {
		if _, ok := alreadyReturned[c.Identity()]; ok {
			continue
		}
		page = append(page, c)
		if len(page) == pageSize {
			break
		}
	}
	return page
}
