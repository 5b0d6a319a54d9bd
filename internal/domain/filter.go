package domain

import "sort"

// FilterByCategoryAndType is the first filter stage: it keeps records that
// carry a data value and match both the category and the statistical type.
// Dropping nil-valued rows here means every later stage can treat Value()
// as meaningful. Input order is preserved.
func FilterByCategoryAndType(records []Record, categoryID, typeID string) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if !r.HasValue() {
			continue
		}
		if r.CategoryID != categoryID || r.DataValueTypeID != typeID {
			continue
		}
		out = append(out, r)
	}
	return out
}

// FilterByMeasure is the second filter stage: exact, case-sensitive match on
// the full measure name. Measure strings come from the dataset itself via
// DistinctMeasures, so near-matches are a caller bug, not something to paper
// over with fuzzy comparison.
func FilterByMeasure(records []Record, measure string) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Measure == measure {
			out = append(out, r)
		}
	}
	return out
}

// FilterByValueRange is the third filter stage: it keeps records with
// lo < value < hi. Both bounds are exclusive, so a record whose value sits
// exactly on either bound is dropped. This mirrors the slider behavior the
// dataset's explorer has always had; see the range handling in the session
// controller for how full-range defaults are chosen.
func FilterByValueRange(records []Record, lo, hi float64) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		v := r.Value()
		if v > lo && v < hi {
			out = append(out, r)
		}
	}
	return out
}

// DistinctMeasures returns the sorted set of measure names present in the
// records. Fed dropdown options from stage-one output so the user can only
// ever pick a measure that exists under the current category and type.
func DistinctMeasures(records []Record) []string {
	return distinctStrings(records, func(r Record) string { return r.Measure })
}

// DistinctCategories returns the sorted set of category ids.
func DistinctCategories(records []Record) []string {
	return distinctStrings(records, func(r Record) string { return r.CategoryID })
}

// DistinctValueTypes returns the sorted set of statistical type ids.
func DistinctValueTypes(records []Record) []string {
	return distinctStrings(records, func(r Record) string { return r.DataValueTypeID })
}

// DistinctLevels returns the sorted set of geographic levels.
func DistinctLevels(records []Record) []string {
	return distinctStrings(records, func(r Record) string { return r.GeographicLevel })
}

// DistinctYears returns the sorted set of observation years.
func DistinctYears(records []Record) []int {
	seen := make(map[int]bool)
	var out []int
	for _, r := range records {
		if r.Year == 0 || seen[r.Year] {
			continue
		}
		seen[r.Year] = true
		out = append(out, r.Year)
	}
	sort.Ints(out)
	return out
}

func distinctStrings(records []Record, key func(Record) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		k := key(r)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
