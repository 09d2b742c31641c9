package usecases

import (
	"fmt"

	"singmerge/internal/domain/document"
	"singmerge/internal/domain/outbound"
	"singmerge/internal/shared/logger"
	"singmerge/internal/shared/utils/setutil"
)

// placeEntries inserts added immediately before the first administrative entry,
// or at the end when there is none. Each required administrative tag then
// appears exactly once: later duplicates are dropped and missing ones are
// appended with their default shape.
func placeEntries(existing, added []document.RawEntry, required []string, log logger.Interface) ([]document.RawEntry, error) {
	at := len(existing)
	for i, e := range existing {
		if outbound.KindOf(e.Type()) == outbound.KindAdministrative {
			at = i
			break
		}
	}

	placed := make([]document.RawEntry, 0, len(existing)+len(added))
	placed = append(placed, existing[:at]...)
	placed = append(placed, added...)
	placed = append(placed, existing[at:]...)

	requiredSet := setutil.NewStringSet(required...)
	seen := setutil.NewStringSet()
	out := make([]document.RawEntry, 0, len(placed)+len(required))
	for _, e := range placed {
		tag := e.Tag()
		fixed := requiredSet.Has(tag) || outbound.KindOf(e.Type()) == outbound.KindAdministrative
		if fixed && tag != "" && !seen.Add(tag) {
			log.Warnw("dropping duplicate administrative entry", "tag", tag, "type", e.Type())
			continue
		}
		out = append(out, e)
	}

	for _, tag := range required {
		if seen.Has(tag) {
			continue
		}
		entry, err := document.NewRawEntry(outbound.AdministrativeDefault(tag))
		if err != nil {
			return nil, fmt.Errorf("failed to build administrative entry %q: %w", tag, err)
		}
		log.Infow("adding missing administrative entry", "tag", tag)
		out = append(out, entry)
		seen.Add(tag)
	}

	return out, nil
}

// reconcileGroups rebuilds the reference list of every grouping entry not in excluded:
// added tags first, then original references that still resolve, without duplicates.
func reconcileGroups(entries []document.RawEntry, added []string, excluded *setutil.StringSet, log logger.Interface) ([]document.RawEntry, error) {
	present := setutil.NewStringSet()
	for _, e := range entries {
		if tag := e.Tag(); tag != "" {
			present.Add(tag)
		}
	}

	out := make([]document.RawEntry, len(entries))
	copy(out, entries)

	for i, e := range out {
		if outbound.KindOf(e.Type()) != outbound.KindGrouping {
			continue
		}
		tag := e.Tag()
		original := e.References()

		if excluded.Has(tag) {
			if dangling := danglingRefs(original, present); len(dangling) > 0 {
				log.Warnw("immutable group has unresolved references", "group", tag, "references", dangling)
			}
			continue
		}

		refs := setutil.NewStringSet(added...)
		var dropped []string
		for _, ref := range original {
			if !present.Has(ref) {
				dropped = append(dropped, ref)
				continue
			}
			refs.Add(ref)
		}
		if len(dropped) > 0 {
			log.Warnw("dropping unresolved group references", "group", tag, "references", dropped)
		}

		updated, err := e.WithReferences(refs.ToSlice())
		if err != nil {
			return nil, err
		}
		out[i] = updated
	}

	return out, nil
}

func danglingRefs(refs []string, present *setutil.StringSet) []string {
	var dangling []string
	for _, ref := range refs {
		if !present.Has(ref) {
			dangling = append(dangling, ref)
		}
	}
	return dangling
}
