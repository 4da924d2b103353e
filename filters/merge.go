package filters

// Policy selects how an extracted update combines with the current filters.
type Policy int

const (
	// Keep leaves the current filters untouched.
	Keep Policy = iota
	// ReplaceAll discards current and takes the update.
	ReplaceAll
	// Union adds update values to the current string sets.
	Union
	// FieldReplace overwrites only the fields present in the update.
	FieldReplace
	// Inherit starts from the archived search's locations and industries and
	// field-replaces the update on top.
	Inherit
)

func (p Policy) String() string {
	switch p {
	case ReplaceAll:
		return "replace_all"
	case Union:
		return "union"
	case FieldReplace:
		return "field_replace"
	case Inherit:
		return "inherit"
	default:
		return "keep"
	}
}

// inheritable are the fields that carry over between person and company
// searches.
var inheritable = []Field{Locations, Industries}

// Merge combines update into current according to policy. previous is the
// archived search consulted by Inherit and may be nil. An empty update
// always yields current unchanged. Inputs are never modified.
func Merge(policy Policy, current, update SearchFilters, previous *Snapshot) SearchFilters {
	if update.Empty() {
		return current.Clone()
	}

	switch policy {
	case ReplaceAll:
		return update.Clone()
	case Union:
		return union(current.Clone(), update)
	case FieldReplace:
		return replace(current.Clone(), update)
	case Inherit:
		var base SearchFilters
		if previous != nil {
			for _, field := range inheritable {
				base.Set(field, *previous.Filters.list(field))
			}
		}
		return replace(base, update)
	default:
		return current.Clone()
	}
}

func union(result, update SearchFilters) SearchFilters {
	for _, field := range listFields {
		upd := *update.list(field)
		if upd == nil || len(upd.Value) == 0 {
			continue
		}
		dst := result.list(field)
		*dst = unionList(*dst, upd)
	}
	if update.Has(YearsOfExperience) {
		result.YearsOfExperience = cloneRange(update.YearsOfExperience)
	}
	return result
}

func unionList(cur, upd *ListField) *ListField {
	if cur == nil {
		return cloneList(upd)
	}
	source := upd.Source
	if source == "" {
		source = cur.Source
	}
	return &ListField{
		Value:      dedupe(cur.Value, upd.Value),
		Confidence: upd.Confidence,
		Source:     source,
	}
}

func replace(result, update SearchFilters) SearchFilters {
	for _, field := range listFields {
		if update.Has(field) {
			result.Set(field, *update.list(field))
		}
	}
	if update.Has(YearsOfExperience) {
		result.YearsOfExperience = cloneRange(update.YearsOfExperience)
	}
	return result
}
