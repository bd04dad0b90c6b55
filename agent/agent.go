// Package agent serves a constructed tree over UDP to v2c managers:
// get, get-next, get-bulk and set, plus trap emission. The served tree
// is swappable at runtime; requests always see a complete build.
package agent

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/yangyining/jots"
	"github.com/yangyining/jots/smi"
	"github.com/yangyining/jots/tree"
)

// version2c is the wire version value for community-string v2 messages.
const version2c = 1

// maxPacket bounds inbound datagrams.
const maxPacket = 64 * 1024

// Agent answers v2c requests against the current tree.
type Agent struct {
	community string
	current   atomic.Pointer[tree.Tree]
	log       *zap.Logger
}

// New creates an agent serving t. A nil logger discards everything.
func New(community string, t *tree.Tree, log *zap.Logger) *Agent {
	if log == nil {
		log = zap.NewNop()
	}
	a := &Agent{community: community, log: log}
	a.current.Store(t)
	return a
}

// UpdateTree atomically replaces the served tree. In-flight requests
// finish against the tree they started with.
func (a *Agent) UpdateTree(t *tree.Tree) {
	a.current.Store(t)
	a.log.Info("tree updated", zap.Int("fields", t.Len()))
}

// Tree returns the currently served tree.
func (a *Agent) Tree() *tree.Tree {
	return a.current.Load()
}

// ListenAndServe answers requests on the given UDP address until ctx is
// canceled.
func (a *Agent) ListenAndServe(ctx context.Context, addr string) error {
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return fmt.Errorf("agent: resolve %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return fmt.Errorf("agent: listen %s: %w", addr, err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	a.log.Info("agent listening", zap.String("addr", conn.LocalAddr().String()))

	buf := make([]byte, maxPacket)
	for {
		n, raddr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("agent: read: %w", err)
		}
		resp := a.handleMessage(buf[:n])
		if resp == nil {
			continue
		}
		if _, err := conn.WriteToUDP(resp, raddr); err != nil {
			a.log.Warn("response write failed",
				zap.String("peer", raddr.String()),
				zap.Error(err))
		}
	}
}

// handleMessage processes one raw request and returns the raw response,
// or nil when the request must be silently dropped (malformed packet or
// community mismatch).
func (a *Agent) handleMessage(raw []byte) []byte {
	req, err := decodeMessage(raw)
	if err != nil {
		a.log.Debug("dropping malformed packet", zap.Error(err))
		return nil
	}
	if req.community != a.community {
		a.log.Debug("dropping packet with wrong community")
		return nil
	}

	t := a.current.Load()
	resp := &message{
		version:   version2c,
		community: req.community,
		pduType:   tagResponse,
		requestID: req.requestID,
	}

	switch req.pduType {
	case tagGetRequest:
		resp.bindings = a.get(t, req.bindings)
	case tagGetNext:
		resp.bindings = a.getNext(t, req.bindings)
	case tagGetBulk:
		resp.bindings = a.getBulk(t, req)
	case tagSetRequest:
		resp.bindings = req.bindings
		resp.errorStatus, resp.errorIndex = a.set(t, req.bindings)
	}
	return encodeMessage(resp)
}

func (a *Agent) get(t *tree.Tree, reqs []binding) []binding {
	out := make([]binding, 0, len(reqs))
	for _, b := range reqs {
		vb, err := t.Get(b.oid)
		if err != nil {
			out = append(out, binding{oid: b.oid, tag: tagNoSuchObject})
			continue
		}
		out = append(out, toBinding(vb))
	}
	return out
}

func (a *Agent) getNext(t *tree.Tree, reqs []binding) []binding {
	out := make([]binding, 0, len(reqs))
	for _, b := range reqs {
		vb, err := t.GetNext(b.oid)
		if err != nil {
			out = append(out, binding{oid: b.oid, tag: tagEndOfMibView})
			continue
		}
		out = append(out, toBinding(vb))
	}
	return out
}

// getBulk treats the first non-repeaters bindings as plain get-next and
// walks the rest forward up to max-repetitions entries each.
func (a *Agent) getBulk(t *tree.Tree, req *message) []binding {
	nonRepeaters := int(req.errorStatus)
	maxRepetitions := int(req.errorIndex)
	if nonRepeaters < 0 {
		nonRepeaters = 0
	}
	if nonRepeaters > len(req.bindings) {
		nonRepeaters = len(req.bindings)
	}
	if maxRepetitions < 0 {
		maxRepetitions = 0
	}

	out := a.getNext(t, req.bindings[:nonRepeaters])
	for _, b := range req.bindings[nonRepeaters:] {
		oid := b.oid
		for i := 0; i < maxRepetitions; i++ {
			vb, err := t.GetNext(oid)
			if err != nil {
				out = append(out, binding{oid: oid, tag: tagEndOfMibView})
				break
			}
			out = append(out, toBinding(vb))
			oid = vb.Oid
		}
	}
	return out
}

// set applies every binding in order and reports the v2c error status
// and the 1-based index of the first failure.
func (a *Agent) set(t *tree.Tree, reqs []binding) (status, index int64) {
	for i, b := range reqs {
		text, ok := bindingText(b)
		if !ok {
			return statusWrongValue, int64(i + 1)
		}
		err := t.Set(b.oid, text, true)
		switch {
		case err == nil:
		case errors.Is(err, jots.ErrOidNotFound):
			return statusNoCreation, int64(i + 1)
		case errors.Is(err, jots.ErrNotWritable):
			return statusNotWritable, int64(i + 1)
		default:
			// parse failures and everything else
			return statusWrongValue, int64(i + 1)
		}
	}
	return statusNoError, 0
}

// bindingText renders an inbound set value as assignment text.
func bindingText(b binding) (string, bool) {
	switch v := b.value.(type) {
	case int64:
		return strconv.FormatInt(v, 10), true
	case []byte:
		return string(v), true
	default:
		return "", false
	}
}

func toBinding(vb smi.VarBind) binding {
	switch v := vb.Value.(type) {
	case smi.Integer32:
		return binding{oid: vb.Oid, tag: tagInteger, value: int64(v)}
	default:
		return binding{oid: vb.Oid, tag: tagOctetString, value: []byte(vb.Value.String())}
	}
}
