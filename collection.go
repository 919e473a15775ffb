package paramtree

import (
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/golang/glog"
	"github.com/google/go-cmp/cmp"
	"github.com/r3labs/diff/v3"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Record is one element of a polled resource list.
type Record = map[string]any

// RecordUpdate pairs the two versions of a record that changed.
type RecordUpdate struct {
	Original  Record
	Updated   Record
	FieldDiff diff.Changelog
}

// CollectionDiff sorts the records of two snapshots into four buckets.
type CollectionDiff struct {
	Unchanged []Record
	Added     []Record
	Removed   []Record
	Updated   []RecordUpdate
}

type absentID struct{}

// DiffCollections compares two snapshots of records identified by idField.
// Unchanged, Added and Updated follow the order of updated; Removed follows
// the order of base. Records without idField all share one key, so only the
// last such base record can be matched.
func DiffCollections(base, updated []Record, idField string) *CollectionDiff {
	res := &CollectionDiff{
		Unchanged: []Record{},
		Added:     []Record{},
		Removed:   []Record{},
		Updated:   []RecordUpdate{},
	}

	baseByID := make(map[any]Record, len(base))
	for _, rec := range base {
		baseByID[recordKey(rec, idField)] = rec
	}

	seen := make(map[any]bool, len(updated))
	for _, rec := range updated {
		key := recordKey(rec, idField)
		seen[key] = true

		orig, ok := baseByID[key]
		switch {
		case !ok:
			res.Added = append(res.Added, rec)
		case cmp.Equal(orig, rec):
			res.Unchanged = append(res.Unchanged, rec)
		default:
			res.Updated = append(res.Updated, RecordUpdate{
				Original:  orig,
				Updated:   rec,
				FieldDiff: fieldDiff(orig, rec),
			})
		}
	}

	for _, rec := range base {
		if !seen[recordKey(rec, idField)] {
			res.Removed = append(res.Removed, rec)
		}
	}
	return res
}

func fieldDiff(from, to Record) diff.Changelog {
	cl, err := diff.Diff(from, to, diff.AllowTypeMismatch(true), diff.SliceOrdering(true))
	if err != nil {
		glog.Warningf("[diff] cannot compute field diff: %v\n", err)
		return nil
	}
	return cl
}

// recordKey returns a map key for the id of rec. Missing ids map to one shared
// key; ids that cannot be map keys fall back to their printed form.
func recordKey(rec Record, idField string) any {
	id, ok := rec[idField]
	if !ok {
		return absentID{}
	}
	if id != nil && !reflect.TypeOf(id).Comparable() {
		return fmt.Sprintf("%T:%v", id, id)
	}
	return id
}

// OrderChanges returns the ids of records present in both snapshots whose
// position relative to the other shared records changed, in the order of
// updated. It returns nil when there are more shared ids than code points.
func OrderChanges(base, updated []Record, idField string) []any {
	inBase := map[any]bool{}
	for _, rec := range base {
		inBase[recordKey(rec, idField)] = true
	}
	inUpdated := map[any]bool{}
	for _, rec := range updated {
		inUpdated[recordKey(rec, idField)] = true
	}

	runes := map[any]rune{}
	ids := map[rune]any{}
	next := rune(0)
	toRunes := func(recs []Record, keep map[any]bool) ([]rune, bool) {
		var rs []rune
		for _, rec := range recs {
			key := recordKey(rec, idField)
			if !keep[key] {
				continue
			}
			r, ok := runes[key]
			if !ok {
				if next > utf8.MaxRune {
					return nil, false
				}
				r = next
				runes[key] = r
				ids[r] = key
				next = nextRune(next)
			}
			rs = append(rs, r)
		}
		return rs, true
	}
	fromRunes, ok := toRunes(base, inUpdated)
	if !ok {
		glog.Warningf("[diff] too many records to compare order\n")
		return nil
	}
	toRunesSeq, ok := toRunes(updated, inBase)
	if !ok {
		glog.Warningf("[diff] too many records to compare order\n")
		return nil
	}

	dmp := diffmatchpatch.New()
	var moved []any
	for _, d := range dmp.DiffMainRunes(fromRunes, toRunesSeq, false) {
		if d.Type != diffmatchpatch.DiffInsert {
			continue
		}
		for _, r := range d.Text {
			moved = append(moved, ids[r])
		}
	}
	return moved
}

// nextRune returns the code point after r, skipping UTF-16 surrogates, which
// do not survive a round trip through string.
func nextRune(r rune) rune {
	r++
	if r >= surrogateMin && r <= surrogateMax {
		r = surrogateMax + 1
	}
	return r
}

const (
	surrogateMin = 0xD800
	surrogateMax = 0xDFFF
)

// GroupByPath groups records by the value found at a dotted path such as
// "attributes.module_type". Records missing the path are grouped under nil.
func GroupByPath(records []Record, path string) map[any][]Record {
	out := map[any][]Record{}
	keys := strings.Split(path, ".")
	for _, rec := range records {
		var cur any = rec
		for _, k := range keys {
			v, ok := member(cur, k)
			if !ok {
				cur = nil
				break
			}
			cur = v
		}
		if cur != nil && !reflect.TypeOf(cur).Comparable() {
			cur = fmt.Sprintf("%T:%v", cur, cur)
		}
		out[cur] = append(out[cur], rec)
	}
	return out
}
