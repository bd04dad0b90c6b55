// Package mib renders the static shape of a constructed tree as an
// SMIv2-flavored module definition. The construction engine records one
// Entry per distinct static identifier; Document.Write turns the
// recording into text suitable for loading into a MIB browser.
package mib

import (
	"fmt"
	"io"
	"strings"

	"github.com/yangyining/jots"
	"github.com/yangyining/jots/smi"
)

// Role distinguishes the three node shapes a recorded entry can have.
type Role int

const (
	// RoleLeaf is a directly representable value node.
	RoleLeaf Role = iota
	// RoleEntry is an interior object node.
	RoleEntry
	// RoleTable is a flattened container node.
	RoleTable
)

// Entry is one recorded node. Names are the concatenated exposed-name
// path from the root, each segment capitalized, so the descriptor is
// unique even when member names repeat at different depths.
type Entry struct {
	// Parent is the path descriptor of the enclosing node; empty for
	// nodes hanging directly off the module root.
	Parent string
	// Name is the full path descriptor of this node.
	Name string
	// SubID is the node's identifier relative to its parent.
	SubID uint32
	// Oid is the node's full static identifier.
	Oid smi.Oid
	// Role is the node shape.
	Role Role
	// Kind is the declared value kind; meaningful only for leaves.
	Kind jots.Kind
	// EnumNames holds the value names for enumerated leaves.
	EnumNames []string
	// Writable marks a settable leaf.
	Writable bool
	// InTable marks a node that lives under a flattened container.
	InTable bool
}

// Document is a complete recording ready for rendering.
type Document struct {
	// Module is the module name, conventionally upper-case with dashes.
	Module string
	// Root is the descriptor of the module's root node.
	Root string
	// Prefix is the numeric prefix the tree was built under.
	Prefix smi.Oid
	// Entries holds the recorded nodes in first-visit order.
	Entries []Entry
}

// Write renders the document. Output is deterministic for a given
// recording.
func (d *Document) Write(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s DEFINITIONS ::= BEGIN\n\n", d.Module)
	b.WriteString("IMPORTS\n")
	b.WriteString("    MODULE-IDENTITY, OBJECT-TYPE, Integer32, Unsigned32\n")
	b.WriteString("        FROM SNMPv2-SMI\n")
	b.WriteString("    TruthValue\n")
	b.WriteString("        FROM SNMPv2-TC;\n\n")

	fmt.Fprintf(&b, "-- root: %s\n", d.Prefix)
	fmt.Fprintf(&b, "%s OBJECT IDENTIFIER ::= { %s }\n\n", d.Root, oidBody(d.Prefix))

	for _, e := range d.Entries {
		parent := e.Parent
		if parent == "" {
			parent = d.Root
		}
		switch e.Role {
		case RoleLeaf:
			fmt.Fprintf(&b, "%s OBJECT-TYPE\n", descriptor(e.Name))
			fmt.Fprintf(&b, "    SYNTAX      %s\n", syntax(e))
			fmt.Fprintf(&b, "    MAX-ACCESS  %s\n", access(e))
			b.WriteString("    STATUS      current\n")
			b.WriteString("    DESCRIPTION \"\"\n")
			fmt.Fprintf(&b, "    ::= { %s %d }\n\n", descriptor(parent), e.SubID)
		default:
			fmt.Fprintf(&b, "%s OBJECT IDENTIFIER ::= { %s %d }\n\n",
				descriptor(e.Name), descriptor(parent), e.SubID)
		}
	}

	b.WriteString("END\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// descriptor lowers the first letter of a path name; SMI descriptors
// start lowercase.
func descriptor(name string) string {
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}

// oidBody renders a prefix as the brace body of an OBJECT IDENTIFIER
// assignment.
func oidBody(oid smi.Oid) string {
	parts := make([]string, len(oid))
	for i, id := range oid {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, " ")
}

func syntax(e Entry) string {
	switch e.Kind {
	case jots.KindBoolean:
		return "TruthValue"
	case jots.KindInteger:
		return "Integer32"
	case jots.KindUnsigned:
		return "Unsigned32"
	case jots.KindEnum:
		if len(e.EnumNames) == 0 {
			return "Integer32"
		}
		parts := make([]string, len(e.EnumNames))
		for i, name := range e.EnumNames {
			parts[i] = fmt.Sprintf("%s(%d)", descriptor(name), i)
		}
		return "INTEGER { " + strings.Join(parts, ", ") + " }"
	default:
		// floats and strings both travel as text
		return "OCTET STRING"
	}
}

func access(e Entry) string {
	if e.Writable {
		return "read-write"
	}
	return "read-only"
}
