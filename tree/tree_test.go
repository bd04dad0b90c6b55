package tree

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yangyining/jots"
	"github.com/yangyining/jots/classify"
	"github.com/yangyining/jots/lookup"
	"github.com/yangyining/jots/smi"
)

type record struct {
	Count int
	Name  string
	Rate  float64
}

func (r *record) SetCount(v int)   { r.Count = v }
func (r *record) SetName(v string) { r.Name = v }

// newField materializes a descriptor for one member of rec at oid.
func newField(t *testing.T, rec *record, member string, oid smi.Oid) lookup.Field {
	t.Helper()
	c := classify.NewClassifier(nil, 16)
	info := c.Info(reflect.TypeOf(*rec))
	owner := reflect.ValueOf(rec)
	for _, m := range info.Members {
		if m.Name == member {
			return lookup.New(oid, m, owner, owner.Elem().Field(m.Index))
		}
	}
	t.Fatalf("no member %q", member)
	return nil
}

func newTestTree(t *testing.T, rec *record) *Tree {
	t.Helper()
	prefix := smi.Oid{1, 3, 6, 1, 4, 1, 100}
	// deliberately out of order; New must sort
	fields := []lookup.Field{
		newField(t, rec, "Rate", prefix.Append(1, 3)),
		newField(t, rec, "Count", prefix.Append(1, 1)),
		newField(t, rec, "Name", prefix.Append(1, 2)),
	}
	return New(prefix, fields, 8)
}

func treeOids(tr *Tree) []string {
	var oids []string
	tr.Walk(func(f lookup.Field) bool {
		oids = append(oids, f.Oid().String())
		return true
	})
	return oids
}

func TestTree_SortedStrictlyIncreasing(t *testing.T) {
	tr := newTestTree(t, &record{})

	var prev smi.Oid
	tr.Walk(func(f lookup.Field) bool {
		if prev != nil && prev.Compare(f.Oid()) >= 0 {
			t.Errorf("ordering violated: %v then %v", prev, f.Oid())
		}
		prev = f.Oid()
		return true
	})
	if tr.Len() != 3 {
		t.Errorf("Len() = %d, want 3", tr.Len())
	}
}

func TestTree_Get(t *testing.T) {
	rec := &record{Count: 5, Name: "n", Rate: 1.5}
	tr := newTestTree(t, rec)

	vb, err := tr.Get(smi.Oid{1, 3, 6, 1, 4, 1, 100, 1, 1})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if vb.Value != smi.Integer32(5) {
		t.Errorf("value = %#v, want Integer32(5)", vb.Value)
	}

	_, err = tr.Get(smi.Oid{9, 9})
	if !errors.Is(err, jots.ErrOidNotFound) {
		t.Errorf("Get(absent) error = %v, want ErrOidNotFound", err)
	}
}

func TestTree_GetReadsLiveValue(t *testing.T) {
	rec := &record{Count: 5}
	tr := newTestTree(t, rec)

	rec.Count = 42
	vb, err := tr.Get(smi.Oid{1, 3, 6, 1, 4, 1, 100, 1, 1})
	if err != nil {
		t.Fatal(err)
	}
	if vb.Value != smi.Integer32(42) {
		t.Errorf("value = %#v, want the live value 42", vb.Value)
	}
}

func TestTree_GetNextWalk(t *testing.T) {
	rec := &record{Count: 1, Name: "a", Rate: 0.5}
	tr := newTestTree(t, rec)

	// Full walk from the prefix visits every entry in order.
	var visited []string
	oid := smi.Oid{1, 3, 6, 1, 4, 1, 100}
	for {
		vb, err := tr.GetNext(oid)
		if errors.Is(err, jots.ErrPastEndOfTree) {
			break
		}
		if err != nil {
			t.Fatalf("GetNext(%v) failed: %v", oid, err)
		}
		visited = append(visited, vb.Oid.String())
		oid = vb.Oid
	}

	if diff := cmp.Diff(treeOids(tr), visited); diff != "" {
		t.Errorf("walk order mismatch (-tree +walk):\n%s", diff)
	}
}

func TestTree_GetNextBetweenEntries(t *testing.T) {
	rec := &record{}
	tr := newTestTree(t, rec)

	// Any identifier greater than .1.1's predecessor and less than .1.2
	// must yield the .1.2 entry.
	vb, err := tr.GetNext(smi.Oid{1, 3, 6, 1, 4, 1, 100, 1, 1, 0})
	if err != nil {
		t.Fatal(err)
	}
	want := smi.Oid{1, 3, 6, 1, 4, 1, 100, 1, 2}
	if !vb.Oid.Equal(want) {
		t.Errorf("GetNext landed on %v, want %v", vb.Oid, want)
	}

	// Equivalently: GetNext of anything in (pred, id] resolves to the
	// same descriptor as Get(id).
	got, err := tr.Get(want)
	if err != nil {
		t.Fatal(err)
	}
	if !vb.Oid.Equal(got.Oid) {
		t.Errorf("GetNext and Get disagree: %v vs %v", vb.Oid, got.Oid)
	}
}

func TestTree_FieldIndexBounds(t *testing.T) {
	tr := newTestTree(t, &record{})

	if _, err := tr.Field(2); err != nil {
		t.Errorf("Field(2) failed: %v", err)
	}
	if _, err := tr.Field(3); !errors.Is(err, jots.ErrNoMoreEntries) {
		t.Errorf("Field(3) error = %v, want ErrNoMoreEntries", err)
	}
	if _, err := tr.Field(-1); err == nil {
		t.Error("Field(-1) should fail")
	}
}

func TestTree_Set(t *testing.T) {
	rec := &record{}
	tr := newTestTree(t, rec)

	countOid := smi.Oid{1, 3, 6, 1, 4, 1, 100, 1, 1}
	rateOid := smi.Oid{1, 3, 6, 1, 4, 1, 100, 1, 3}

	if err := tr.Set(countOid, "12", true); err != nil {
		t.Fatalf("Set writable member failed: %v", err)
	}
	if rec.Count != 12 {
		t.Errorf("Count = %d, want 12", rec.Count)
	}

	// Rate has no setter: enforcement on fails, enforcement off writes.
	if err := tr.Set(rateOid, "2.5", true); !errors.Is(err, jots.ErrNotWritable) {
		t.Errorf("enforced Set error = %v, want ErrNotWritable", err)
	}
	if err := tr.Set(rateOid, "2.5", false); err != nil {
		t.Fatalf("unenforced Set failed: %v", err)
	}
	if rec.Rate != 2.5 {
		t.Errorf("Rate = %v, want 2.5", rec.Rate)
	}

	if err := tr.Set(smi.Oid{9}, "1", true); !errors.Is(err, jots.ErrOidNotFound) {
		t.Errorf("Set(absent) error = %v, want ErrOidNotFound", err)
	}

	var bad *jots.BadValueError
	err := tr.Set(countOid, "notanumber", true)
	if !errors.As(err, &bad) {
		t.Fatalf("Set(notanumber) error = %v, want BadValueError", err)
	}
	if bad.Text != "notanumber" {
		t.Errorf("BadValueError.Text = %q, want %q", bad.Text, "notanumber")
	}
}

func TestTree_Merge(t *testing.T) {
	recA := &record{Count: 1}
	recB := &record{Count: 2}

	prefixA := smi.Oid{1, 3, 6, 1, 4, 1, 100}
	prefixB := smi.Oid{1, 3, 6, 1, 4, 2}

	a := New(prefixA, []lookup.Field{
		newField(t, recA, "Count", smi.Oid{1, 3, 6, 1, 4, 1, 100, 1, 1}),
		newField(t, recA, "Name", smi.Oid{1, 3, 6, 1, 4, 1, 100, 1, 2}),
	}, 0)
	b := New(prefixB, []lookup.Field{
		newField(t, recB, "Count", smi.Oid{1, 3, 6, 1, 4, 1, 100, 1, 1}), // shadows a
		newField(t, recB, "Rate", smi.Oid{1, 3, 6, 1, 4, 2, 1, 1}),
	}, 0)

	m := a.Merge(b)

	want := []string{
		".1.3.6.1.4.1.100.1.1",
		".1.3.6.1.4.1.100.1.2",
		".1.3.6.1.4.2.1.1",
	}
	if diff := cmp.Diff(want, treeOids(m)); diff != "" {
		t.Errorf("merged oids mismatch (-want +got):\n%s", diff)
	}

	// On the shared identifier, the incoming tree wins.
	vb, err := m.Get(smi.Oid{1, 3, 6, 1, 4, 1, 100, 1, 1})
	if err != nil {
		t.Fatal(err)
	}
	if vb.Value != smi.Integer32(2) {
		t.Errorf("shadowed value = %#v, want recB's Integer32(2)", vb.Value)
	}

	wantPrefix := smi.Oid{1, 3, 6, 1, 4}
	if !m.Prefix().Equal(wantPrefix) {
		t.Errorf("merged prefix = %v, want %v", m.Prefix(), wantPrefix)
	}

	// Inputs are untouched.
	if a.Len() != 2 || b.Len() != 2 {
		t.Error("Merge must not mutate its inputs")
	}
}

func TestTree_CachedLookupsStayCorrect(t *testing.T) {
	rec := &record{Count: 3}
	tr := newTestTree(t, rec)

	oid := smi.Oid{1, 3, 6, 1, 4, 1, 100, 1, 1}
	for i := 0; i < 3; i++ {
		vb, err := tr.Get(oid)
		if err != nil {
			t.Fatal(err)
		}
		if vb.Value != smi.Integer32(3) {
			t.Fatalf("repeated Get returned %#v", vb.Value)
		}
	}
}
