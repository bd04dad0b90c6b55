package agent

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/yangyining/jots/smi"
)

// snmpTrapOID is the varbind naming the trap being sent.
const snmpTrapOID = ".1.3.6.1.6.3.1.1.4.1.0"

// SendTrap delivers a v2c notification to target ("host:port"). trapOid
// names the notification; binds carry its payload.
func SendTrap(target, community string, trapOid smi.Oid, binds []smi.VarBind) error {
	host, portText, err := net.SplitHostPort(target)
	if err != nil {
		return fmt.Errorf("agent: trap target %q: %w", target, err)
	}
	port, err := strconv.ParseUint(portText, 10, 16)
	if err != nil {
		return fmt.Errorf("agent: trap target %q: %w", target, err)
	}

	sender := &gosnmp.GoSNMP{
		Target:    host,
		Port:      uint16(port),
		Community: community,
		Version:   gosnmp.Version2c,
		Timeout:   2 * time.Second,
		Retries:   1,
	}
	if err := sender.Connect(); err != nil {
		return fmt.Errorf("agent: trap connect: %w", err)
	}
	defer sender.Conn.Close()

	variables := make([]gosnmp.SnmpPDU, 0, len(binds)+1)
	variables = append(variables, gosnmp.SnmpPDU{
		Name:  snmpTrapOID,
		Type:  gosnmp.ObjectIdentifier,
		Value: trapOid.String(),
	})
	for _, vb := range binds {
		variables = append(variables, trapPDU(vb))
	}

	if _, err := sender.SendTrap(gosnmp.SnmpTrap{Variables: variables}); err != nil {
		return fmt.Errorf("agent: send trap: %w", err)
	}
	return nil
}

func trapPDU(vb smi.VarBind) gosnmp.SnmpPDU {
	switch v := vb.Value.(type) {
	case smi.Integer32:
		return gosnmp.SnmpPDU{Name: vb.Oid.String(), Type: gosnmp.Integer, Value: int(v)}
	default:
		return gosnmp.SnmpPDU{Name: vb.Oid.String(), Type: gosnmp.OctetString, Value: vb.Value.String()}
	}
}
