package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nitekry/BLE-Recon/adv"
	"github.com/nitekry/BLE-Recon/filter"
	"github.com/nitekry/BLE-Recon/scan"
)

var (
	styleFlags   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	styleName    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleUUID    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	styleUUID128 = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	styleSvcData = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	styleMfg     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleTxPower = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleOther   = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	styleHeader  = lipgloss.NewStyle().Bold(true)
)

func styleFor(typ byte) lipgloss.Style {
	switch typ {
	case adv.Flags:
		return styleFlags
	case adv.CompleteName, adv.ShortName:
		return styleName
	case adv.AllUUID16, adv.SomeUUID16:
		return styleUUID
	case adv.AllUUID128, adv.SomeUUID128:
		return styleUUID128
	case adv.ServiceData16:
		return styleSvcData
	case adv.ManufacturerData:
		return styleMfg
	case adv.TxPower:
		return styleTxPower
	}
	return styleOther
}

var banner = strings.Repeat("=", 80)

func renderResult(w io.Writer, res scan.Result) {
	fmt.Fprintf(w, "\n%s\n", banner)
	fmt.Fprintln(w, styleHeader.Render(fmt.Sprintf("[BLE-DEVICE] %s Device Detected", strings.ToUpper(res.Label.String()))))
	fmt.Fprintf(w, "%s\n", banner)

	fmt.Fprintf(w, "\n[BASIC-INFO]\n")
	fmt.Fprintf(w, "  MAC Address:  %s\n", res.Report.Addr)
	fmt.Fprintf(w, "  RSSI:         %d dBm\n", res.Report.RSSI)
	fmt.Fprintf(w, "  Address Type: %s\n", res.Report.AddrType)
	if res.Attrs.Name != "" {
		fmt.Fprintf(w, "  Device Name:  %s\n", printable(res.Attrs.Name))
	}

	fmt.Fprintf(w, "\n[RAW-PAYLOAD]\n")
	fmt.Fprintf(w, "  Total Length: %d bytes\n", len(res.Report.Data))
	renderHexDump(w, res.Report.Data)
	renderElements(w, res.Report.Data)
	fmt.Fprintf(w, "%s\n\n", banner)
}

func renderHexDump(w io.Writer, data []byte) {
	fmt.Fprintf(w, "  Offset  Hex                                              ASCII\n")
	fmt.Fprintf(w, "  ------  -----------------------------------------------  ----------------\n")
	for i := 0; i < len(data); i += 16 {
		fmt.Fprintf(w, "  0x%04X  ", i)
		for j := 0; j < 16; j++ {
			if i+j < len(data) {
				fmt.Fprintf(w, "%02X ", data[i+j])
			} else {
				fmt.Fprint(w, "   ")
			}
			if j == 7 {
				fmt.Fprint(w, " ")
			}
		}
		fmt.Fprint(w, " ")
		for j := 0; j < 16 && i+j < len(data); j++ {
			c := data[i+j]
			if c >= 32 && c <= 126 {
				fmt.Fprintf(w, "%c", c)
			} else {
				fmt.Fprint(w, ".")
			}
		}
		fmt.Fprintln(w)
	}
}

func renderElements(w io.Writer, data []byte) {
	fmt.Fprintf(w, "\n[AD-STRUCTURES]\n")
	n := 1
	for walker := adv.Walk(data); ; n++ {
		e, ok := walker.Next()
		if !ok {
			break
		}
		st := styleFor(e.Type)
		fmt.Fprintf(w, "  %s\n", st.Render(fmt.Sprintf("[%d] Type 0x%02X: %s (Length: %d bytes)", n, e.Type, adv.TypeName(e.Type), len(e.Data))))
		fmt.Fprintf(w, "      Data: %s\n", st.Render(elementText(e)))
	}
}

func elementText(e adv.Element) string {
	switch e.Type {
	case adv.Flags:
		if len(e.Data) < 1 {
			return ""
		}
		return fmt.Sprintf("0x%02X (%s)", e.Data[0], flagText(e.Data[0]))
	case adv.CompleteName, adv.ShortName:
		return fmt.Sprintf("%q", printable(string(e.Data)))
	case adv.AllUUID16, adv.SomeUUID16:
		var u []string
		for i := 0; i+1 < len(e.Data); i += 2 {
			u = append(u, fmt.Sprintf("0x%02X%02X", e.Data[i+1], e.Data[i]))
		}
		return strings.Join(u, ", ")
	case adv.AllUUID128, adv.SomeUUID128:
		if len(e.Data) < 16 {
			return fmt.Sprintf("%X", e.Data)
		}
		var b strings.Builder
		for i := 15; i >= 0; i-- {
			fmt.Fprintf(&b, "%02X", e.Data[i])
			if i == 12 || i == 10 || i == 8 || i == 6 {
				b.WriteByte('-')
			}
		}
		return b.String()
	case adv.ServiceData16:
		if len(e.Data) < 2 {
			return fmt.Sprintf("%X", e.Data)
		}
		return fmt.Sprintf("UUID: 0x%02X%02X, Data: %X", e.Data[1], e.Data[0], e.Data[2:])
	case adv.ManufacturerData:
		if len(e.Data) < 2 {
			return fmt.Sprintf("%X", e.Data)
		}
		id := uint16(e.Data[0]) | uint16(e.Data[1])<<8
		s := fmt.Sprintf("Company: 0x%04X", id)
		if name := adv.CompanyName(id); name != "" {
			s += fmt.Sprintf(" (%s)", name)
		}
		return s + fmt.Sprintf(", Data: %X", e.Data[2:])
	case adv.TxPower:
		if len(e.Data) < 1 {
			return ""
		}
		return fmt.Sprintf("%d dBm", int(int8(e.Data[0])))
	}
	return fmt.Sprintf("%X", e.Data)
}

func flagText(f byte) string {
	var parts []string
	if f&adv.FlagLimitedDiscoverable != 0 {
		parts = append(parts, "LE Limited")
	}
	if f&adv.FlagGeneralDiscoverable != 0 {
		parts = append(parts, "LE General")
	}
	if f&adv.FlagLEOnly != 0 {
		parts = append(parts, "BR/EDR Not Supported")
	}
	if f&adv.FlagBothController != 0 {
		parts = append(parts, "LE+BR/EDR Controller")
	}
	if f&adv.FlagBothHost != 0 {
		parts = append(parts, "LE+BR/EDR Host")
	}
	return strings.Join(parts, ", ")
}

// printable replaces non-printable name bytes for terminal output.
func printable(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c < 32 || c > 126 {
			b[i] = '?'
		}
	}
	return string(b)
}

func renderSummary(w io.Writer, sum scan.Summary, dedup bool) {
	fmt.Fprintf(w, "\n[SUMMARY] Scan #%d complete\n", sum.Pass)
	fmt.Fprintf(w, "  Total reports:    %d\n", sum.Reports)
	fmt.Fprintf(w, "  Filtered out:     %d\n", sum.Filtered)
	if dedup {
		fmt.Fprintf(w, "  Duplicates:       %d\n", sum.Duplicates)
		fmt.Fprintf(w, "  Displayed:        %d (new or changed)\n", sum.Shown)
		fmt.Fprintf(w, "  Unique devices:   %d\n", sum.Unique)
	} else {
		fmt.Fprintf(w, "  Displayed:        %d\n", sum.Shown)
	}
}

func renderStatus(w io.Writer, st filter.Status) {
	mode := func(active bool) string {
		if active {
			return "ACTIVE"
		}
		return "OFF"
	}
	fmt.Fprintf(w, "[FILTER-STATUS]\n")
	fmt.Fprintf(w, "  Allow: %s (%d OUI, %d names, %d UUIDs, %d payloads)\n",
		mode(st.Allow.Active), st.Allow.OUI, st.Allow.Name, st.Allow.UUID, st.Allow.Payload)
	fmt.Fprintf(w, "  Deny:  %s (%d OUI, %d names, %d UUIDs, %d payloads)\n",
		mode(st.Deny.Active), st.Deny.OUI, st.Deny.Name, st.Deny.UUID, st.Deny.Payload)
}
