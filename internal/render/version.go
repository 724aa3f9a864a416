package render

import "fmt"

// inferVersion determines the document version at parse time.
//
// An explicit version key wins, provided it names a known version and does
// not contradict the document content. Without the key, start/end windows or
// default planes mark a V2 document and min/max windows a V1 document; a
// document using both window styles is undeterminable and rejected. A
// document using neither is treated as the current version.
func inferVersion(doc *document, spec *Spec) (Version, error) {
	var sawStartEnd, sawMinMax bool
	for _, ch := range spec.Channels {
		startEnd := ch.Start != nil || ch.End != nil
		minMax := ch.Min != nil || ch.Max != nil
		if startEnd && minMax {
			return VersionUnset, fmt.Errorf(
				"%w: channel %d mixes start/end with min/max", ErrVersionMismatch, ch.Index+1)
		}
		sawStartEnd = sawStartEnd || startEnd
		sawMinMax = sawMinMax || minMax
	}
	if sawStartEnd && sawMinMax {
		return VersionUnset, fmt.Errorf(
			"%w: document mixes start/end and min/max channels", ErrVersionMismatch)
	}

	hasPlanes := spec.DefaultZ != nil || spec.DefaultT != nil

	if doc.Version != nil {
		v := Version(*doc.Version)
		if v < V1 || v > SpecVersion {
			return VersionUnset, Malformed(fmt.Sprintf("unknown version %d", *doc.Version), nil)
		}
		return v, checkVersionContent(v, sawStartEnd, sawMinMax, hasPlanes)
	}

	switch {
	case sawStartEnd || hasPlanes:
		return V2, checkVersionContent(V2, sawStartEnd, sawMinMax, hasPlanes)
	case sawMinMax:
		return V1, nil
	default:
		return SpecVersion, nil
	}
}

// ResolveVersion reconciles an explicitly requested version with the one
// inferred from the document. The result is fixed for the whole apply
// operation: a collection apply never re-resolves per image.
func ResolveVersion(spec *Spec, explicit Version) (Version, error) {
	if explicit == VersionUnset {
		return spec.Version, nil
	}
	if explicit < V1 || explicit > SpecVersion {
		return VersionUnset, fmt.Errorf("%w: unknown version %d", ErrVersionMismatch, explicit)
	}

	var sawStartEnd, sawMinMax bool
	for _, ch := range spec.Channels {
		sawStartEnd = sawStartEnd || ch.Start != nil || ch.End != nil
		sawMinMax = sawMinMax || ch.Min != nil || ch.Max != nil
	}
	hasPlanes := spec.DefaultZ != nil || spec.DefaultT != nil
	if err := checkVersionContent(explicit, sawStartEnd, sawMinMax, hasPlanes); err != nil {
		return VersionUnset, err
	}
	return explicit, nil
}

func checkVersionContent(v Version, sawStartEnd, sawMinMax, hasPlanes bool) error {
	switch v {
	case V1:
		if sawStartEnd {
			return fmt.Errorf("%w: version 1 documents use min/max, not start/end", ErrVersionMismatch)
		}
		if hasPlanes {
			return fmt.Errorf("%w: default planes require version 2", ErrVersionMismatch)
		}
	case V2:
		if sawMinMax {
			return fmt.Errorf("%w: version 2 documents use start/end, not min/max", ErrVersionMismatch)
		}
	}
	return nil
}
