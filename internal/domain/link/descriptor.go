package link

import (
	"fmt"
	"strings"
)

// Scheme identifies the share link variant
type Scheme string

const (
	// SchemeVMess is the base64+JSON variant
	SchemeVMess Scheme = "vmess"
	// SchemeVLESS is the uuid@host:port?query#label variant
	SchemeVLESS Scheme = "vless"
	// SchemeTrojan is the password@host:port?query#label variant
	SchemeTrojan Scheme = "trojan"
)

// Transport is the stream transport kind
type Transport string

const (
	// TransportTCP represents plain TCP stream transport
	TransportTCP Transport = "tcp"
	// TransportWS represents WebSocket transport
	TransportWS Transport = "ws"
	// TransportGRPC represents gRPC transport
	TransportGRPC Transport = "grpc"
)

// Security is the transport security kind
type Security string

const (
	// SecurityNone represents no transport security
	SecurityNone Security = "none"
	// SecurityTLS represents standard TLS
	SecurityTLS Security = "tls"
	// SecurityReality represents REALITY
	SecurityReality Security = "reality"
)

// DefaultPort is used when a link omits the port
const DefaultPort = 443

var validTransports = map[Transport]bool{
	TransportTCP:  true,
	TransportWS:   true,
	TransportGRPC: true,
}

var validSecurities = map[Security]bool{
	SecurityNone:    true,
	SecurityTLS:     true,
	SecurityReality: true,
}

// ParseTransport maps a link's transport value to a Transport.
// Empty input yields TransportTCP.
func ParseTransport(s string) (Transport, error) {
	t := Transport(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return TransportTCP, nil
	}
	if !validTransports[t] {
		return "", fmt.Errorf("transport %q is not supported (supported: tcp, ws, grpc)", s)
	}
	return t, nil
}

// ParseSecurity maps a link's security value to a Security.
// Empty input yields fallback.
func ParseSecurity(s string, fallback Security) (Security, error) {
	v := Security(strings.ToLower(strings.TrimSpace(s)))
	if v == "" {
		return fallback, nil
	}
	if !validSecurities[v] {
		return "", fmt.Errorf("security %q is not supported (supported: none, tls, reality)", s)
	}
	return v, nil
}

// TransportParams carries ws/grpc transport options
type TransportParams struct {
	Path        Opt[string]
	Host        Opt[string]
	ServiceName Opt[string]
}

// SecurityParams carries tls/reality options
type SecurityParams struct {
	ServerName  Opt[string]
	Fingerprint Opt[string]
	ALPN        []string
	Insecure    bool

	// REALITY only
	PublicKey Opt[string]
	ShortID   Opt[string]
}

// Descriptor is the normalized form of one share link.
// Server and Port are always set on a successfully parsed Descriptor.
type Descriptor struct {
	Scheme     Scheme
	Server     string
	Port       uint16
	Credential string

	Transport       Transport
	TransportParams *TransportParams

	Security       Security
	SecurityParams *SecurityParams

	Label string

	// VMess hints
	Cipher  Opt[string]
	AlterID Opt[int]

	// VLESS flow control, e.g. xtls-rprx-vision
	Flow Opt[string]
}

// rawFields holds scheme-specific values before normalization.
type rawFields struct {
	transport   string
	security    string
	path        string
	host        string
	serviceName string
	sni         string
	fingerprint string
	alpn        string
	insecure    bool
	publicKey   string
	shortID     string
}

// normalize applies the defaults shared by every scheme.
func (d *Descriptor) normalize(raw rawFields, defaultSecurity Security) error {
	transport, err := ParseTransport(raw.transport)
	if err != nil {
		return err
	}
	security, err := ParseSecurity(raw.security, defaultSecurity)
	if err != nil {
		return err
	}
	d.Transport = transport
	d.Security = security

	if d.Port == 0 {
		d.Port = DefaultPort
	}

	switch transport {
	case TransportWS:
		d.TransportParams = &TransportParams{
			Path: Some(orDefault(raw.path, "/")),
			Host: Some(orDefault(raw.host, d.Server)),
		}
	case TransportGRPC:
		serviceName := raw.serviceName
		if serviceName == "" {
			serviceName = strings.TrimPrefix(raw.path, "/")
		}
		d.TransportParams = &TransportParams{
			ServiceName: optString(serviceName),
		}
	}

	switch security {
	case SecurityTLS, SecurityReality:
		sp := &SecurityParams{
			ServerName:  Some(orDefault(raw.sni, d.Server)),
			Fingerprint: optString(raw.fingerprint),
			ALPN:        splitList(raw.alpn),
			Insecure:    raw.insecure,
		}
		if security == SecurityReality {
			sp.PublicKey = optString(raw.publicKey)
			sp.ShortID = optString(raw.shortID)
		}
		d.SecurityParams = sp
	}

	return nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseBool accepts the truthy spellings seen in share links.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// String returns a short summary without credentials
func (d *Descriptor) String() string {
	return fmt.Sprintf("%s://%s:%d transport=%s security=%s", d.Scheme, d.Server, d.Port, d.Transport, d.Security)
}
