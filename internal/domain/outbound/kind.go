package outbound

import "strings"

// Kind classifies a config entry by its type field
type Kind int

const (
	KindUnknown Kind = iota
	// KindProxy entries connect to a remote server
	KindProxy
	// KindAdministrative entries are built-in outbounds such as direct, block and dns
	KindAdministrative
	// KindGrouping entries reference other entries by tag
	KindGrouping
)

var kindByType = map[string]Kind{
	"direct":       KindAdministrative,
	"block":        KindAdministrative,
	"dns":          KindAdministrative,
	"selector":     KindGrouping,
	"urltest":      KindGrouping,
	"vmess":        KindProxy,
	"vless":        KindProxy,
	"trojan":       KindProxy,
	"shadowsocks":  KindProxy,
	"shadowtls":    KindProxy,
	"hysteria":     KindProxy,
	"hysteria2":    KindProxy,
	"tuic":         KindProxy,
	"wireguard":    KindProxy,
	"socks":        KindProxy,
	"http":         KindProxy,
	"ssh":          KindProxy,
	"tor":          KindProxy,
	"anytls":       KindProxy,
	"shadowsocksr": KindProxy,
}

// KindOf classifies an entry type. Unrecognized types are KindUnknown
// and are passed through untouched.
func KindOf(entryType string) Kind {
	return kindByType[strings.ToLower(strings.TrimSpace(entryType))]
}

func (k Kind) String() string {
	switch k {
	case KindProxy:
		return "proxy"
	case KindAdministrative:
		return "administrative"
	case KindGrouping:
		return "grouping"
	default:
		return "unknown"
	}
}
