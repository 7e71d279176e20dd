package filter

// Builtin deny catalog: common Apple and Google hardware prefixes, device
// name keywords, and the two manufacturer-id payload signatures. Embedded
// so seeding needs no file or network access.

var builtinAppleOUIs = []string{
	"A4:CF:12", "4C:57:CA", "00:00:00", "A8:88:08", "04:0C:CE",
	"98:01:A7", "3C:E0:72", "00:CD:FE", "A4:D1:8C", "78:A3:E4",
	"DC:2B:2A", "00:26:BB", "F0:DB:E2", "68:96:7B", "8C:85:90",
	"80:E6:50", "00:1F:F3", "00:23:12", "00:25:00", "00:25:BC",
	"34:15:9E", "00:88:65", "00:F4:B9", "84:38:35", "C8:2A:14",
	"F0:D1:A9", "70:73:CB", "F4:F1:5A", "D4:90:9C", "98:B8:E3",
	"AC:3C:0B", "00:3E:E1", "DC:86:D8", "3C:07:54", "60:03:08",
	"B0:65:BD", "F0:DC:E2", "94:F6:A3", "98:FE:94", "E0:C7:67",
	"70:CD:60", "BC:4C:C4", "48:43:7C", "34:C0:59", "E8:80:2E",
	"90:84:0D", "D8:30:62", "18:E7:F4", "18:20:32", "00:F7:6F",
}

var builtinGoogleOUIs = []string{
	"F4:F5:E8", "D0:E7:82", "2C:F0:A2", "5C:F8:A1", "7C:2F:80",
	"1C:F2:9A", "00:1A:11", "00:26:B7", "00:17:C9", "00:19:07",
	"00:21:6A", "00:21:91", "00:23:4D", "00:25:9C", "34:FC:EF",
	"3C:5A:B4", "40:B4:CD", "54:60:09", "58:CB:52", "6C:AD:F8",
	"74:E5:43", "78:D6:F0", "7C:BB:8A", "88:75:56", "90:E7:C4",
}

var builtinNames = []string{
	"IPHONE", "IPAD", "MACBOOK", "AIRPODS", "APPLE", "WATCH",
	"PIXEL", "GOOGLE", "NEST", "CHROMECAST", "ANDROID",
}

var builtinPayloads = []string{
	"4C00", // Apple manufacturer data
	"E000", // Google manufacturer data
}

// Seed loads the builtin catalog into the deny list and activates it.
// Seeding twice duplicates entries; matching is a membership test, so
// duplicates only cost memory. It returns the number of entries added.
func (f *Filter) Seed() int {
	n := 0
	for _, oui := range builtinAppleOUIs {
		f.deny.oui = append(f.deny.oui, oui)
		n++
	}
	for _, oui := range builtinGoogleOUIs {
		f.deny.oui = append(f.deny.oui, oui)
		n++
	}
	for _, name := range builtinNames {
		f.deny.name = append(f.deny.name, name)
		n++
	}
	for _, payload := range builtinPayloads {
		f.deny.payload = append(f.deny.payload, payload)
		n++
	}
	if n > 0 {
		f.deny.active = true
	}
	return n
}
