package services

// AreaIndex answers whether an area exists in the dataset.
type AreaIndex interface {
	HasLocation(area string) bool
}

// ValidateAreas returns an AreaNotFound error listing, in order, every area
// the index does not know. Only the Compare path calls it; Analyze detects
// unknown areas from an empty filter result instead.
func ValidateAreas(idx AreaIndex, areas ...string) error {
	var missing []string
	for _, a := range areas {
		if !idx.HasLocation(a) {
			missing = append(missing, a)
		}
	}
	if len(missing) > 0 {
		return errAreasNotFound(missing)
	}
	return nil
}
