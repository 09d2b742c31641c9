package link

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// vmessShareJSON is the v2rayN payload written by ToURI
type vmessShareJSON struct {
	V    string `json:"v"`
	PS   string `json:"ps"`
	Add  string `json:"add"`
	Port string `json:"port"`
	ID   string `json:"id"`
	Aid  string `json:"aid"`
	Scy  string `json:"scy,omitempty"`
	Net  string `json:"net"`
	Type string `json:"type"`
	Host string `json:"host,omitempty"`
	Path string `json:"path,omitempty"`
	TLS  string `json:"tls"`
	SNI  string `json:"sni,omitempty"`
	ALPN string `json:"alpn,omitempty"`
	FP   string `json:"fp,omitempty"`
}

// ToURI re-encodes the descriptor as a share link of its own scheme.
// remarks replaces the label when non-empty.
func (d *Descriptor) ToURI(remarks string) (string, error) {
	if remarks == "" {
		remarks = d.Label
	}

	switch d.Scheme {
	case SchemeVMess:
		return d.vmessURI(remarks)
	case SchemeVLESS, SchemeTrojan:
		return d.queryURI(remarks), nil
	default:
		return "", fmt.Errorf("unsupported scheme: %s", d.Scheme)
	}
}

func (d *Descriptor) vmessURI(remarks string) (string, error) {
	cfg := vmessShareJSON{
		V:    "2",
		PS:   remarks,
		Add:  d.Server,
		Port: strconv.Itoa(int(d.Port)),
		ID:   d.Credential,
		Aid:  strconv.Itoa(d.AlterID.Value()),
		Scy:  d.Cipher.Value(),
		Net:  string(d.Transport),
		Type: "none",
	}

	if tp := d.TransportParams; tp != nil {
		cfg.Host = tp.Host.Value()
		cfg.Path = tp.Path.Value()
		if d.Transport == TransportGRPC {
			cfg.Path = tp.ServiceName.Value()
		}
	}

	if d.Security != SecurityNone {
		cfg.TLS = string(d.Security)
	}
	if sp := d.SecurityParams; sp != nil {
		cfg.SNI = sp.ServerName.Value()
		cfg.FP = sp.Fingerprint.Value()
		cfg.ALPN = strings.Join(sp.ALPN, ",")
	}

	payload, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal vmess payload: %w", err)
	}
	return "vmess://" + base64.StdEncoding.EncodeToString(payload), nil
}

// queryURI builds identity@host:port?params#remarks for vless and trojan.
func (d *Descriptor) queryURI(remarks string) string {
	identity := d.Credential
	if d.Scheme == SchemeTrojan {
		identity = url.PathEscape(identity)
	}

	uri := fmt.Sprintf("%s://%s@%s", d.Scheme, identity, net.JoinHostPort(d.Server, strconv.Itoa(int(d.Port))))

	params := url.Values{}
	params.Set("type", string(d.Transport))
	params.Set("security", string(d.Security))

	if d.Flow.Present() {
		params.Set("flow", d.Flow.Value())
	}

	if sp := d.SecurityParams; sp != nil {
		if sp.ServerName.Present() {
			params.Set("sni", sp.ServerName.Value())
		}
		if sp.Fingerprint.Present() {
			params.Set("fp", sp.Fingerprint.Value())
		}
		if len(sp.ALPN) > 0 {
			params.Set("alpn", strings.Join(sp.ALPN, ","))
		}
		if sp.Insecure {
			params.Set("allowInsecure", "1")
		}
		if sp.PublicKey.Present() {
			params.Set("pbk", sp.PublicKey.Value())
		}
		if sp.ShortID.Present() {
			params.Set("sid", sp.ShortID.Value())
		}
	}

	if tp := d.TransportParams; tp != nil {
		switch d.Transport {
		case TransportWS:
			if tp.Host.Present() {
				params.Set("host", tp.Host.Value())
			}
			if tp.Path.Present() {
				params.Set("path", tp.Path.Value())
			}
		case TransportGRPC:
			if tp.ServiceName.Present() {
				params.Set("serviceName", tp.ServiceName.Value())
			}
		}
	}

	uri += "?" + params.Encode()

	if remarks != "" {
		uri += "#" + url.PathEscape(remarks)
	}
	return uri
}
