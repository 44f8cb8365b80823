// Package dedupe merges candidate places that describe the same real-world
// entity and produces the ranked, radius-filtered, limited result list.
package dedupe

import (
	"math"
	"sort"
	"strings"

	"github.com/dhconnelly/rtreego"

	"github.com/FACorreiaa/go-event-scout/internal/types"
)

const (
	// Two located records closer than this are merge candidates.
	mergeDistanceMeters = 50

	metersPerDegreeLat = 111_320

	rtreeMinChildren = 2
	rtreeMaxChildren = 25
)

// survivorEntry indexes a merged place by position so tree hits can reach
// back into the working slice.
type survivorEntry struct {
	idx  int
	rect *rtreego.Rect
}

func (s *survivorEntry) Bounds() *rtreego.Rect { return s.rect }

// MergeAndRank deduplicates the candidate list, drops located places
// outside the search area, orders the survivors and applies the limit.
// The output is a pure function of the input set: identical inputs yield an
// identical sequence regardless of provider arrival order, and running the
// function on its own output changes nothing.
func MergeAndRank(places []types.Place, area types.SearchArea, limit int, locationOnly bool) []types.Place {
	// Canonical processing order makes the merge winner deterministic.
	candidates := make([]types.Place, len(places))
	copy(candidates, places)
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Source != candidates[j].Source {
			return candidates[i].Source < candidates[j].Source
		}
		return candidates[i].SourceID < candidates[j].SourceID
	})

	survivors := make([]types.Place, 0, len(candidates))
	tree := rtreego.NewTree(2, rtreeMinChildren, rtreeMaxChildren)
	byExternalRef := make(map[string]int)

	for _, cand := range candidates {
		if cand.Name == "" {
			continue
		}
		target := findMatch(cand, survivors, tree, byExternalRef)
		if target < 0 {
			merged := cand
			merged.Amenities = normalizeSet(merged.Amenities)
			merged.MergedFrom = unionRefs(merged.MergedFrom, []types.SourceRef{cand.Ref()})
			survivors = append(survivors, merged)
			idx := len(survivors) - 1
			if merged.Location != nil {
				tree.Insert(&survivorEntry{idx: idx, rect: pointRect(*merged.Location)})
			}
			for _, ref := range merged.MergedFrom {
				if key := externalKey(ref.SourceID); key != "" {
					byExternalRef[key] = idx
				}
			}
			continue
		}

		hadLocation := survivors[target].Location != nil
		survivors[target] = merge(survivors[target], cand)
		if !hadLocation && survivors[target].Location != nil {
			tree.Insert(&survivorEntry{idx: target, rect: pointRect(*survivors[target].Location)})
		}
		if key := externalKey(cand.SourceID); key != "" {
			byExternalRef[key] = target
		}
	}

	// Radius filter: located places must fall inside the area; unlocated
	// ones keep their presence value unless the caller wants map-ready
	// results only.
	filtered := survivors[:0]
	for _, s := range survivors {
		if s.Location == nil {
			if locationOnly {
				continue
			}
			filtered = append(filtered, s)
			continue
		}
		if area.Contains(*s.Location) {
			filtered = append(filtered, s)
		}
	}

	rank(filtered, area)

	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered
}

// findMatch returns the survivor index cand should merge into, or -1.
func findMatch(cand types.Place, survivors []types.Place, tree *rtreego.Rtree, byExternalRef map[string]int) int {
	// Shared external identifier (e.g. the same OSM object seen through
	// Nominatim, Photon and Overpass) is the strongest signal.
	if key := externalKey(cand.SourceID); key != "" {
		if idx, ok := byExternalRef[key]; ok {
			return idx
		}
	}
	if cand.Location == nil {
		return -1
	}

	hits := tree.SearchIntersect(searchRect(*cand.Location, mergeDistanceMeters))
	best := -1
	for _, hit := range hits {
		idx := hit.(*survivorEntry).idx
		s := survivors[idx]
		if s.Location == nil || s.Location.DistanceMeters(*cand.Location) > mergeDistanceMeters {
			continue
		}
		if !namesMatch(s.Name, cand.Name) {
			continue
		}
		// The bounding-box query returns hits in tree order; take the
		// lowest index so the outcome is stable.
		if best < 0 || idx < best {
			best = idx
		}
	}
	return best
}

// merge combines two records for the same real-world place: the richer one
// wins as the base, the other fills its gaps.
func merge(a, b types.Place) types.Place {
	base, other := a, b
	if richness(b) > richness(a) {
		base, other = b, a
	}

	if base.Location == nil {
		base.Location = other.Location
	}
	if base.Address == nil {
		base.Address = other.Address
	}
	if base.Rating == nil {
		base.Rating = other.Rating
	}
	if base.PriceSignal == nil {
		base.PriceSignal = other.PriceSignal
	}
	if base.Capacity == nil {
		base.Capacity = other.Capacity
	}
	if base.Cuisine == nil {
		base.Cuisine = other.Cuisine
	}
	if base.Phone == nil {
		base.Phone = other.Phone
	}
	if base.Website == nil {
		base.Website = other.Website
	}
	if other.ReviewCount > base.ReviewCount {
		base.ReviewCount = other.ReviewCount
	}
	base.Amenities = normalizeSet(append(append([]string{}, a.Amenities...), b.Amenities...))
	base.MergedFrom = unionRefs(a.MergedFrom, b.MergedFrom)
	base.MergedFrom = unionRefs(base.MergedFrom, []types.SourceRef{a.Ref(), b.Ref()})
	return base
}

// richness counts populated fields; the fuller record survives a merge.
func richness(p types.Place) int {
	score := len(p.Amenities)
	for _, present := range []bool{
		p.Location != nil, p.Address != nil, p.Rating != nil,
		p.PriceSignal != nil, p.Capacity != nil, p.Cuisine != nil,
		p.Phone != nil, p.Website != nil, p.ReviewCount > 0,
	} {
		if present {
			score++
		}
	}
	return score
}

// rank orders by distance from the area center ascending with unlocated
// places last, then rating descending (missing treated as zero), then name
// and source to make the order total.
func rank(places []types.Place, area types.SearchArea) {
	distance := func(p types.Place) float64 {
		if p.Location == nil {
			return math.MaxFloat64
		}
		return area.Center.DistanceMeters(*p.Location)
	}
	rating := func(p types.Place) float64 {
		if p.Rating == nil {
			return 0
		}
		return *p.Rating
	}
	sort.SliceStable(places, func(i, j int) bool {
		di, dj := distance(places[i]), distance(places[j])
		if di != dj {
			return di < dj
		}
		ri, rj := rating(places[i]), rating(places[j])
		if ri != rj {
			return ri > rj
		}
		if places[i].Name != places[j].Name {
			return places[i].Name < places[j].Name
		}
		return places[i].Source < places[j].Source
	})
}

// namesMatch compares case-insensitive, punctuation-stripped names: exact
// match or containment (for "Luigi's" vs "Luigi's Ristorante").
func namesMatch(a, b string) bool {
	na, nb := normalizeName(a), normalizeName(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	shorter := na
	if len(nb) < len(na) {
		shorter = nb
	}
	// Very short names make containment meaningless.
	if len(shorter) < 4 {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

func normalizeName(name string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		case r == ' ' && !lastSpace:
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// externalKey extracts a cross-provider identifier from a source id. The
// OSM-backed providers all stamp "osm_<type>_<id>", so a node and a way
// sharing a numeric id never collide.
func externalKey(sourceID string) string {
	if strings.HasPrefix(sourceID, "osm_") {
		return sourceID
	}
	return ""
}

func unionRefs(a, b []types.SourceRef) []types.SourceRef {
	seen := make(map[types.SourceRef]struct{}, len(a)+len(b))
	out := make([]types.SourceRef, 0, len(a)+len(b))
	for _, ref := range append(append([]types.SourceRef{}, a...), b...) {
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].SourceID < out[j].SourceID
	})
	return out
}

func normalizeSet(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func pointRect(p types.GeoPoint) *rtreego.Rect {
	pt := rtreego.Point{p.Latitude, p.Longitude}
	return pt.ToRect(1e-6)
}

func searchRect(p types.GeoPoint, meters float64) *rtreego.Rect {
	dLat := meters / metersPerDegreeLat
	dLon := dLat / math.Max(math.Cos(p.Latitude*math.Pi/180), 0.01)
	rect, err := rtreego.NewRect(
		rtreego.Point{p.Latitude - dLat, p.Longitude - dLon},
		[]float64{2 * dLat, 2 * dLon},
	)
	if err != nil {
		// Degenerate only for non-positive extents, which cannot happen
		// with a fixed positive merge distance.
		return pointRect(p)
	}
	return rect
}
