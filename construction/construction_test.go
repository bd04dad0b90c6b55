package construction

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yangyining/jots"
	"github.com/yangyining/jots/lookup"
	"github.com/yangyining/jots/mib"
	"github.com/yangyining/jots/smi"
	"github.com/yangyining/jots/tree"
)

var testPrefix = smi.Oid{1, 3, 6, 1, 4, 1, 100}

func allOids(tr *tree.Tree) []string {
	var oids []string
	tr.Walk(func(f lookup.Field) bool {
		oids = append(oids, f.Oid().String())
		return true
	})
	return oids
}

func mustGet(t *testing.T, tr *tree.Tree, oid smi.Oid) smi.Variable {
	t.Helper()
	vb, err := tr.Get(oid)
	if err != nil {
		t.Fatalf("Get(%v) failed: %v", oid, err)
	}
	return vb.Value
}

type counterHolder struct {
	Count int
}

func TestBuild_SingleLeafNumbering(t *testing.T) {
	tr, err := Build(&counterHolder{Count: 5}, testPrefix)
	if err != nil {
		t.Fatal(err)
	}

	// One leaf member yields exactly one descriptor: region .1 for the
	// object root, .1 for its first member.
	if tr.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", tr.Len())
	}
	want := smi.Oid{1, 3, 6, 1, 4, 1, 100, 1, 1}
	f, err := tr.Field(0)
	if err != nil {
		t.Fatal(err)
	}
	if !f.Oid().Equal(want) {
		t.Errorf("oid = %v, want %v", f.Oid(), want)
	}
	if got := mustGet(t, tr, want); got != smi.Integer32(5) {
		t.Errorf("Count = %#v, want Integer32(5)", got)
	}
}

type status struct {
	Uptime  int
	Version string
}

func TestBuild_ScalarLeaves(t *testing.T) {
	tr, err := Build(&status{Uptime: 5, Version: "v1"}, testPrefix)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		".1.3.6.1.4.1.100.1.1",
		".1.3.6.1.4.1.100.1.2",
	}
	if diff := cmp.Diff(want, allOids(tr)); diff != "" {
		t.Fatalf("oids mismatch (-want +got):\n%s", diff)
	}
	if got := mustGet(t, tr, testPrefix.Append(1, 1)); got != smi.Integer32(5) {
		t.Errorf("Uptime = %#v, want Integer32(5)", got)
	}
	if got := mustGet(t, tr, testPrefix.Append(1, 2)); got != smi.OctetString("v1") {
		t.Errorf("Version = %#v, want OctetString(v1)", got)
	}
}

type backend struct {
	Name string
	Load int
}

func (b *backend) SetLoad(v int) { b.Load = v }

type server struct {
	Uptime   int
	Backends []backend
}

func TestBuild_SliceTable(t *testing.T) {
	s := &server{
		Uptime: 9,
		Backends: []backend{
			{Name: "a", Load: 10},
			{Name: "b", Load: 20},
		},
	}
	tr, err := Build(s, testPrefix)
	if err != nil {
		t.Fatal(err)
	}

	// The container claims the sibling slot after the last counter value
	// and its columns repeat per row under the entry region.
	want := []string{
		".1.3.6.1.4.1.100.1.1",     // Uptime
		".1.3.6.1.4.1.100.2.1.1.1", // Name, row 1
		".1.3.6.1.4.1.100.2.1.1.2", // Name, row 2
		".1.3.6.1.4.1.100.2.1.2.1", // Load, row 1
		".1.3.6.1.4.1.100.2.1.2.2", // Load, row 2
	}
	if diff := cmp.Diff(want, allOids(tr)); diff != "" {
		t.Fatalf("oids mismatch (-want +got):\n%s", diff)
	}

	if got := mustGet(t, tr, testPrefix.Append(2, 1, 1, 2)); got != smi.OctetString("b") {
		t.Errorf("row 2 Name = %#v, want OctetString(b)", got)
	}

	// Writes reach the live slice element through its setter.
	if err := tr.Set(testPrefix.Append(2, 1, 2, 1), "42", true); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if s.Backends[0].Load != 42 {
		t.Errorf("Backends[0].Load = %d, want 42", s.Backends[0].Load)
	}
}

type network struct {
	Addr  string
	Ports []int
}

type host struct {
	Nets []network
}

func TestBuild_NestedTablesBecomeSiblings(t *testing.T) {
	h := &host{Nets: []network{
		{Addr: "10.0.0.1", Ports: []int{8080, 9090}},
		{Addr: "10.0.0.2", Ports: []int{443}},
	}}
	tr, err := Build(h, testPrefix)
	if err != nil {
		t.Fatal(err)
	}

	// The inner container is re-parented beside the outer entry region:
	// outer rows live under .1.1, inner rows under .1.2 with both row
	// indexes appended.
	want := []string{
		".1.3.6.1.4.1.100.1.1.1.1",     // Addr, net 1
		".1.3.6.1.4.1.100.1.1.1.2",     // Addr, net 2
		".1.3.6.1.4.1.100.1.2.1.1.1.1", // Port 8080
		".1.3.6.1.4.1.100.1.2.1.1.1.2", // Port 9090
		".1.3.6.1.4.1.100.1.2.1.1.2.1", // Port 443
	}
	if diff := cmp.Diff(want, allOids(tr)); diff != "" {
		t.Fatalf("oids mismatch (-want +got):\n%s", diff)
	}

	if got := mustGet(t, tr, smi.Oid{1, 3, 6, 1, 4, 1, 100, 1, 2, 1, 1, 1, 2}); got != smi.Integer32(9090) {
		t.Errorf("net 1 port 2 = %#v, want Integer32(9090)", got)
	}
}

type disk struct {
	Size int
}

type storage struct {
	Disks map[string]disk
}

func TestBuild_MapTable(t *testing.T) {
	s := &storage{Disks: map[string]disk{
		"sdb": {Size: 20},
		"sda": {Size: 10},
	}}
	tr, err := Build(s, testPrefix)
	if err != nil {
		t.Fatal(err)
	}

	// String keys encode length-prefixed; rows appear in sorted key
	// order regardless of map iteration order.
	want := []string{
		".1.3.6.1.4.1.100.1.1.1.3.115.100.97", // "sda"
		".1.3.6.1.4.1.100.1.1.1.3.115.100.98", // "sdb"
	}
	if diff := cmp.Diff(want, allOids(tr)); diff != "" {
		t.Fatalf("oids mismatch (-want +got):\n%s", diff)
	}

	sda := smi.Oid{1, 3, 6, 1, 4, 1, 100, 1, 1, 1, 3, 115, 100, 97}
	if got := mustGet(t, tr, sda); got != smi.Integer32(10) {
		t.Errorf("sda Size = %#v, want Integer32(10)", got)
	}

	// Map-held rows are snapshots: writing through the tree must not
	// corrupt the map, which keeps its original value.
	if err := tr.Set(sda, "99", false); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if s.Disks["sda"].Size != 10 {
		t.Errorf("map value changed to %d; rows are copies", s.Disks["sda"].Size)
	}
}

type portBox struct {
	Ports []int
}

func TestBuild_ScalarElements(t *testing.T) {
	tr, err := Build(&portBox{Ports: []int{80, 443}}, testPrefix)
	if err != nil {
		t.Fatal(err)
	}

	// Leaf-typed elements form a single value column.
	want := []string{
		".1.3.6.1.4.1.100.1.1.1.1",
		".1.3.6.1.4.1.100.1.1.1.2",
	}
	if diff := cmp.Diff(want, allOids(tr)); diff != "" {
		t.Fatalf("oids mismatch (-want +got):\n%s", diff)
	}
	if got := mustGet(t, tr, smi.Oid{1, 3, 6, 1, 4, 1, 100, 1, 1, 1, 2}); got != smi.Integer32(443) {
		t.Errorf("second port = %#v, want Integer32(443)", got)
	}
}

type item struct {
	ID   int
	Name string
}

func (i item) SnmpIndex() any { return i.ID }

type inventory struct {
	Items []item
}

func TestBuild_DeclaredIndex(t *testing.T) {
	tr, err := Build(&inventory{Items: []item{
		{ID: 10, Name: "x"},
		{ID: 20, Name: "y"},
	}}, testPrefix)
	if err != nil {
		t.Fatal(err)
	}

	// Rows are indexed by the declared index, not by position.
	want := []string{
		".1.3.6.1.4.1.100.1.1.1.10",
		".1.3.6.1.4.1.100.1.1.1.20",
		".1.3.6.1.4.1.100.1.1.2.10",
		".1.3.6.1.4.1.100.1.1.2.20",
	}
	if diff := cmp.Diff(want, allOids(tr)); diff != "" {
		t.Fatalf("oids mismatch (-want +got):\n%s", diff)
	}
}

type node struct {
	Label string
	Next  *node
}

func TestBuild_CircularReference(t *testing.T) {
	n := &node{Label: "loop"}
	n.Next = n

	_, err := Build(n, testPrefix)
	var cyc *jots.CircularReferenceError
	if !errors.As(err, &cyc) {
		t.Fatalf("error = %v, want CircularReferenceError", err)
	}
	if cyc.Member != "Next" {
		t.Errorf("Member = %q, want %q", cyc.Member, "Next")
	}
	if len(cyc.Chain) < 2 {
		t.Fatalf("Chain = %v, want the visited object and the offender", cyc.Chain)
	}
	if !strings.Contains(cyc.Chain[0], "node@") {
		t.Errorf("Chain[0] = %q, want a node description", cyc.Chain[0])
	}
}

type engineBlock struct {
	Cylinders int
	Volume    int
}

type vehicle struct {
	Engine engineBlock // leading member shares the outer struct's address
	Wheels int
}

func TestBuild_FirstMemberStruct(t *testing.T) {
	tr, err := Build(&vehicle{
		Engine: engineBlock{Cylinders: 4, Volume: 1998},
		Wheels: 4,
	}, testPrefix)
	if err != nil {
		t.Fatalf("acyclic graph with a leading struct member must build: %v", err)
	}

	want := []string{
		".1.3.6.1.4.1.100.1.1.1", // Engine.Cylinders
		".1.3.6.1.4.1.100.1.1.2", // Engine.Volume
		".1.3.6.1.4.1.100.1.2",   // Wheels
	}
	if diff := cmp.Diff(want, allOids(tr)); diff != "" {
		t.Errorf("oids mismatch (-want +got):\n%s", diff)
	}
	if got := mustGet(t, tr, smi.Oid{1, 3, 6, 1, 4, 1, 100, 1, 1, 2}); got != smi.Integer32(1998) {
		t.Errorf("Engine.Volume = %#v, want Integer32(1998)", got)
	}
}

type labeled struct {
	Name string
	Meta struct {
		Label string
		Back  any
	}
}

func TestBuild_AnonymousSelfReferenceSkipped(t *testing.T) {
	l := &labeled{Name: "n"}
	l.Meta.Label = "m"
	l.Meta.Back = &l.Meta

	tr, err := Build(l, testPrefix)
	if err != nil {
		t.Fatalf("anonymous self-reference must not fail construction: %v", err)
	}

	want := []string{
		".1.3.6.1.4.1.100.1.1",   // Name
		".1.3.6.1.4.1.100.1.2.1", // Meta.Label
	}
	if diff := cmp.Diff(want, allOids(tr)); diff != "" {
		t.Errorf("oids mismatch (-want +got):\n%s", diff)
	}
}

type gappy struct {
	A int
	B *status
	C int
}

func TestBuild_AbsentMemberKeepsItsNumber(t *testing.T) {
	tr, err := Build(&gappy{A: 1, C: 3}, testPrefix)
	if err != nil {
		t.Fatal(err)
	}

	// B is nil: nothing is materialized but its counter value stays
	// consumed, so C's identifier is stable across builds.
	want := []string{
		".1.3.6.1.4.1.100.1.1",
		".1.3.6.1.4.1.100.1.3",
	}
	if diff := cmp.Diff(want, allOids(tr)); diff != "" {
		t.Errorf("oids mismatch (-want +got):\n%s", diff)
	}
}

type secret struct {
	Token string
}

type redacted interface {
	Redacted()
}

type creds struct {
	Password string
}

func (creds) Redacted() {}

type config struct {
	Public int
	Hidden secret
	Login  creds
}

func TestBuild_WithVariant(t *testing.T) {
	tr, err := Build(&config{Public: 1}, testPrefix,
		WithVariant(secret{}, VariantAbsent),
		WithVariant((*redacted)(nil), VariantAbsent),
	)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{".1.3.6.1.4.1.100.1.1"}
	if diff := cmp.Diff(want, allOids(tr)); diff != "" {
		t.Errorf("oids mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_WithMib(t *testing.T) {
	doc := &mib.Document{Module: "SERVER-MIB", Root: "server"}
	s := &server{Backends: []backend{{Name: "a"}, {Name: "b"}}}
	if _, err := Build(s, testPrefix, WithMib(doc)); err != nil {
		t.Fatal(err)
	}

	if !doc.Prefix.Equal(testPrefix) {
		t.Errorf("doc prefix = %v, want %v", doc.Prefix, testPrefix)
	}

	// One entry per distinct static node, no duplicates across rows.
	type node struct {
		name string
		role mib.Role
		oid  string
	}
	var got []node
	for _, e := range doc.Entries {
		got = append(got, node{e.Name, e.Role, e.Oid.String()})
	}
	want := []node{
		{"Uptime", mib.RoleLeaf, ".1.3.6.1.4.1.100.1.1"},
		{"Backends", mib.RoleTable, ".1.3.6.1.4.1.100.2"},
		{"BackendsName", mib.RoleLeaf, ".1.3.6.1.4.1.100.2.1.1"},
		{"BackendsLoad", mib.RoleLeaf, ".1.3.6.1.4.1.100.2.1.2"},
	}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(node{})); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}

	for _, e := range doc.Entries {
		if e.Name == "BackendsLoad" && !e.Writable {
			t.Error("BackendsLoad has a setter and must record as writable")
		}
		if e.Name == "BackendsName" && !e.InTable {
			t.Error("BackendsName lives in a table")
		}
	}
}

func TestBuild_ValueRootIsCopied(t *testing.T) {
	orig := status{Uptime: 7}
	tr, err := Build(orig, testPrefix)
	if err != nil {
		t.Fatal(err)
	}
	if got := mustGet(t, tr, testPrefix.Append(1, 1)); got != smi.Integer32(7) {
		t.Fatalf("Uptime = %#v, want Integer32(7)", got)
	}

	// The tree is bound to an addressable copy; the caller's value does
	// not see writes.
	if err := tr.Set(testPrefix.Append(1, 1), "8", false); err != nil {
		t.Fatal(err)
	}
	if orig.Uptime != 7 {
		t.Errorf("caller's value changed to %d", orig.Uptime)
	}
}

func TestBuild_NilRoot(t *testing.T) {
	if _, err := Build(nil, testPrefix); err == nil {
		t.Error("Build(nil) should fail")
	}
}
