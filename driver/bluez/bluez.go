// Package bluez is a scan driver backed by the BlueZ D-Bus API. It turns
// org.bluez.Device1 discovery signals into advertisement reports.
//
// BlueZ does not expose the raw advertisement bytes over D-Bus, so the
// payload handed to the session is re-encoded from the Device1 properties
// (name, service UUIDs, manufacturer data). Filtering and change tracking
// behave the same; the rendered hex is a reconstruction.
package bluez

import (
	"strings"

	"github.com/godbus/dbus/v5"
	log "github.com/mgutz/logxi/v1"
	"github.com/pkg/errors"

	blerecon "github.com/nitekry/BLE-Recon"
	"github.com/nitekry/BLE-Recon/adv"
)

var logger = log.New("bluez")

const (
	bluezBusName = "org.bluez"

	adapterIface = "org.bluez.Adapter1"
	deviceIface  = "org.bluez.Device1"

	signalInterfacesAdded   = "org.freedesktop.DBus.ObjectManager.InterfacesAdded"
	signalPropertiesChanged = "org.freedesktop.DBus.Properties.PropertiesChanged"

	// Positional signal body indices.
	propertiesChangedIface = 0
	propertiesChangedDict  = 1
	interfacesAddedDict    = 1
)

var (
	matchPropertiesChanged = []dbus.MatchOption{
		dbus.WithMatchInterface("org.freedesktop.DBus.Properties"),
		dbus.WithMatchMember("PropertiesChanged"),
		dbus.WithMatchArg(propertiesChangedIface, deviceIface),
	}
	matchInterfacesAdded = []dbus.MatchOption{
		dbus.WithMatchInterface("org.freedesktop.DBus.ObjectManager"),
		dbus.WithMatchMember("InterfacesAdded"),
	}
)

// Driver is a BlueZ-backed scan driver for one local adapter.
type Driver struct {
	id      string
	bus     *dbus.Conn
	adapter dbus.BusObject

	h      blerecon.AdvHandler
	sigCh  chan *dbus.Signal
	done   chan struct{}
	exited chan struct{}
}

// New returns a driver for the given adapter id, e.g. "hci0".
func New(id string) *Driver {
	if id == "" {
		id = "hci0"
	}
	return &Driver{id: id}
}

// Enable connects to the system bus and checks that the adapter exists.
func (d *Driver) Enable() error {
	bus, err := dbus.SystemBus()
	if err != nil {
		return errors.Wrap(err, "can't connect system bus")
	}
	d.bus = bus
	d.adapter = bus.Object(bluezBusName, dbus.ObjectPath("/org/bluez/"+d.id))
	if _, err := d.adapter.GetProperty(adapterIface + ".Address"); err != nil {
		if e, ok := err.(dbus.Error); ok && e.Name == "org.freedesktop.DBus.Error.UnknownObject" {
			return errors.Errorf("adapter %s does not exist", d.id)
		}
		return errors.Wrap(err, "can't query adapter")
	}
	return nil
}

// SetAdvHandler ...
func (d *Driver) SetAdvHandler(h blerecon.AdvHandler) error {
	d.h = h
	return nil
}

// Scan subscribes to device signals and starts discovery.
func (d *Driver) Scan() error {
	if d.bus == nil {
		if err := d.Enable(); err != nil {
			return err
		}
	}
	if err := d.bus.AddMatchSignal(matchPropertiesChanged...); err != nil {
		return errors.Wrap(err, "can't match PropertiesChanged")
	}
	if err := d.bus.AddMatchSignal(matchInterfacesAdded...); err != nil {
		return errors.Wrap(err, "can't match InterfacesAdded")
	}
	d.sigCh = make(chan *dbus.Signal, 16)
	d.done = make(chan struct{})
	d.exited = make(chan struct{})
	d.bus.Signal(d.sigCh)
	go d.loop(d.sigCh, d.done, d.exited)

	if call := d.adapter.Call(adapterIface+".StartDiscovery", 0); call.Err != nil {
		return errors.Wrap(call.Err, "can't start discovery")
	}
	logger.Info("discovery started", "adapter", d.id)
	return nil
}

// StopScanning stops discovery and tears down the signal subscription. It
// waits for the signal loop to exit, so no handler call survives its
// return.
func (d *Driver) StopScanning() error {
	if d.bus == nil {
		return nil
	}
	call := d.adapter.Call(adapterIface+".StopDiscovery", 0)
	if d.done != nil {
		close(d.done)
		d.done = nil
	}
	if d.exited != nil {
		<-d.exited
		d.exited = nil
	}
	if d.sigCh != nil {
		d.bus.RemoveSignal(d.sigCh)
		d.sigCh = nil
	}
	if err := d.bus.RemoveMatchSignal(matchPropertiesChanged...); err != nil {
		return errors.Wrap(err, "can't unmatch PropertiesChanged")
	}
	if err := d.bus.RemoveMatchSignal(matchInterfacesAdded...); err != nil {
		return errors.Wrap(err, "can't unmatch InterfacesAdded")
	}
	if call.Err != nil {
		return errors.Wrap(call.Err, "can't stop discovery")
	}
	return nil
}

func (d *Driver) loop(sigCh chan *dbus.Signal, done, exited chan struct{}) {
	defer close(exited)
	for {
		select {
		case <-done:
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}
			switch sig.Name {
			case signalInterfacesAdded:
				ifaces, ok := sig.Body[interfacesAddedDict].(map[string]map[string]dbus.Variant)
				if !ok {
					continue
				}
				props, ok := ifaces[deviceIface]
				if !ok {
					continue
				}
				d.emit(props)
			case signalPropertiesChanged:
				if iface, ok := sig.Body[propertiesChangedIface].(string); !ok || iface != deviceIface {
					continue
				}
				// Only the changed properties ride along; fetch the rest.
				var props map[string]dbus.Variant
				obj := d.bus.Object(bluezBusName, sig.Path)
				if err := obj.Call("org.freedesktop.DBus.Properties.GetAll", 0, deviceIface).Store(&props); err != nil {
					continue
				}
				d.emit(props)
			}
		}
	}
}

// emit converts Device1 properties into a report and hands it off.
func (d *Driver) emit(props map[string]dbus.Variant) {
	if d.h == nil {
		return
	}
	r, err := reportFromProperties(props)
	if err != nil {
		logger.Warn("dropping device signal", "err", err.Error())
		return
	}
	d.h(r)
}

func reportFromProperties(props map[string]dbus.Variant) (blerecon.Report, error) {
	addrStr, ok := props["Address"].Value().(string)
	if !ok {
		return blerecon.Report{}, errors.New("device without address")
	}
	a, err := blerecon.ParseAddr(addrStr)
	if err != nil {
		return blerecon.Report{}, errors.Wrapf(err, "address %q", addrStr)
	}

	r := blerecon.Report{
		Addr:     a,
		AddrType: addrType(props, a),
		RSSI:     -127,
	}
	if rssi, ok := props["RSSI"].Value().(int16); ok {
		r.RSSI = int(rssi)
	}

	p := adv.Packet{}.AppendFlags(adv.FlagGeneralDiscoverable | adv.FlagLEOnly)
	if name, ok := props["Name"].Value().(string); ok && name != "" {
		p = p.AppendCompleteName(name)
	}
	if uuids, ok := props["UUIDs"].Value().([]string); ok {
		for _, u := range uuids {
			if v, ok := uuid16(u); ok {
				p = p.AppendUUID16(v)
				break
			}
		}
	}
	if md, ok := props["ManufacturerData"].Value().(map[uint16]dbus.Variant); ok {
		for id, v := range md {
			if b, ok := v.Value().([]byte); ok {
				p = p.AppendManufacturerData(id, b)
			}
			break
		}
	}
	r.Data = p
	return r, nil
}

// addrType maps the Device1 AddressType property; random addresses are
// refined by the two most significant address bits.
func addrType(props map[string]dbus.Variant, a blerecon.Addr) blerecon.AddrType {
	t, ok := props["AddressType"].Value().(string)
	if !ok {
		return blerecon.AddrTypeUnknown
	}
	switch t {
	case "public":
		return blerecon.AddrTypePublic
	case "random":
		switch a[5] >> 6 {
		case 0:
			return blerecon.AddrTypeRandomPrivateNonResolvable
		case 1:
			return blerecon.AddrTypeRandomPrivateResolvable
		case 3:
			return blerecon.AddrTypeRandomStatic
		}
	}
	return blerecon.AddrTypeUnknown
}

// uuid16 extracts the 16-bit service id from a BlueZ UUID string when it
// sits in the Bluetooth base UUID range.
func uuid16(s string) (uint16, bool) {
	s = strings.ToUpper(s)
	if len(s) != 36 || !strings.HasPrefix(s, "0000") || !strings.HasSuffix(s, "-0000-1000-8000-00805F9B34FB") {
		return 0, false
	}
	var v uint16
	for i := 4; i < 8; i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			v = v<<4 | uint16(c-'0')
		case c >= 'A' && c <= 'F':
			v = v<<4 | uint16(c-'A'+0xA)
		default:
			return 0, false
		}
	}
	return v, true
}
