// attsvr builds a demo attribute database, serves it over an in-memory
// L2CAP loopback, and walks the client side of the conversation a central
// performs after connecting: MTU exchange, service and characteristic
// discovery, and a write. PDUs are traced in hex on both directions.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/lunarlabs/bt"
	"github.com/lunarlabs/bt/att"
	"github.com/lunarlabs/bt/l2cap"
)

func main() {
	app := cli.NewApp()
	app.Name = "attsvr"
	app.Usage = "serve a demo GATT database over a loopback ATT bearer"
	app.Flags = []cli.Flag{
		cli.UintFlag{
			Name:  "mtu",
			Value: bt.DefaultMTU,
			Usage: "server receive MTU offered during MTU exchange",
		},
		cli.StringFlag{
			Name:  "security",
			Value: "low",
			Usage: "link security level (none, low, medium, high)",
		},
	}
	app.Action = run
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseSecurity(s string) (l2cap.SecurityLevel, error) {
	switch s {
	case "none":
		return l2cap.SecurityNone, nil
	case "low":
		return l2cap.SecurityLow, nil
	case "medium":
		return l2cap.SecurityMedium, nil
	case "high":
		return l2cap.SecurityHigh, nil
	}
	return 0, fmt.Errorf("unknown security level %q", s)
}

func run(c *cli.Context) error {
	sec, err := parseSecurity(c.String("security"))
	if err != nil {
		return err
	}

	db := att.NewDB()
	db.Append(gapService("attsvr demo"))
	db.Append(batteryService(96))

	serverSide, clientSide := l2cap.Pipe()
	serverSide.SetSecurityLevel(sec)

	srv := att.NewServer(db, serverSide, uint16(c.Uint("mtu")))
	go srv.Serve()
	defer clientSide.Close()

	battery := bt.UUID16(0x180F)

	for _, step := range []struct {
		name string
		pdu  []byte
	}{
		{"exchange MTU", mtuRequest(185)},
		{"discover primary services", groupRequest(0x0001, 0xFFFF)},
		{"locate battery service", findRequest(0x0001, 0xFFFF, battery)},
		{"discover characteristics", typeRequest(0x0001, 0xFFFF, bt.CharacteristicUUID)},
		{"enumerate attributes", infoRequest(0x0001, 0xFFFF)},
		{"write battery level", writeRequest(0x0008, []byte{59})},
	} {
		fmt.Printf("%-28s -> [% X]\n", step.name, step.pdu)
		if _, err := clientSide.Write(step.pdu); err != nil {
			return err
		}
		rsp := make([]byte, bt.MaxMTU)
		n, err := clientSide.Read(rsp)
		if err != nil {
			return err
		}
		fmt.Printf("%-28s <- [% X]\n", "", rsp[:n])
	}
	return nil
}

func gapService(name string) *bt.Service {
	s := bt.NewService(bt.GAPUUID)
	s.AddCharacteristic(bt.DeviceNameUUID).SetValue([]byte(name))
	s.AddCharacteristic(bt.AppearanceUUID).SetValue([]byte{0x00, 0x00})
	return s
}

func batteryService(level byte) *bt.Service {
	s := bt.NewService(bt.UUID16(0x180F))
	c := s.AddCharacteristic(bt.UUID16(0x2A19))
	c.SetValue([]byte{level})
	c.SetPermissions(bt.PermRead | bt.PermWrite)
	c.Property |= bt.CharWrite
	return s
}

func mtuRequest(mtu uint16) []byte {
	r := att.ExchangeMTURequest(make([]byte, 3))
	r.SetAttributeOpcode()
	r.SetClientRxMTU(mtu)
	return r
}

func groupRequest(start, end uint16) []byte {
	r := att.ReadByGroupTypeRequest(make([]byte, 7))
	r.SetAttributeOpcode()
	r.SetStartingHandle(start)
	r.SetEndingHandle(end)
	r.SetAttributeGroupType(bt.PrimaryServiceUUID)
	return r
}

func typeRequest(start, end uint16, typ bt.UUID) []byte {
	r := att.ReadByTypeRequest(make([]byte, 5+len(typ)))
	r.SetAttributeOpcode()
	r.SetStartingHandle(start)
	r.SetEndingHandle(end)
	r.SetAttributeType(typ)
	return r
}

func infoRequest(start, end uint16) []byte {
	r := att.FindInformationRequest(make([]byte, 5))
	r.SetAttributeOpcode()
	r.SetStartingHandle(start)
	r.SetEndingHandle(end)
	return r
}

func findRequest(start, end uint16, svc bt.UUID) []byte {
	r := att.FindByTypeValueRequest(make([]byte, 7+len(svc)))
	r.SetAttributeOpcode()
	r.SetStartingHandle(start)
	r.SetEndingHandle(end)
	r.SetAttributeType(0x2800)
	r.SetAttributeValue(svc)
	return r
}

func writeRequest(h uint16, value []byte) []byte {
	r := att.WriteRequest(make([]byte, 3+len(value)))
	r.SetAttributeOpcode()
	r.SetAttributeHandle(h)
	r.SetAttributeValue(value)
	return r
}
