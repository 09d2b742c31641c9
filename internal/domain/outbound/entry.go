// Package outbound defines the sing-box outbound entries produced from share links.
package outbound

import (
	"singmerge/internal/domain/link"
)

// Entry is a sing-box proxy outbound. Empty optional fields are omitted on output.
type Entry struct {
	Tag        string     `json:"tag"`
	Type       string     `json:"type"`
	Server     string     `json:"server"`
	ServerPort uint16     `json:"server_port"`
	UUID       string     `json:"uuid,omitempty"`
	Password   string     `json:"password,omitempty"`
	Security   string     `json:"security,omitempty"`
	AlterID    int        `json:"alter_id,omitempty"`
	Flow       string     `json:"flow,omitempty"`
	TLS        *TLS       `json:"tls,omitempty"`
	Transport  *Transport `json:"transport,omitempty"`
}

// TLS is the outbound tls block
type TLS struct {
	Enabled    bool     `json:"enabled"`
	ServerName string   `json:"server_name,omitempty"`
	Insecure   bool     `json:"insecure,omitempty"`
	ALPN       []string `json:"alpn,omitempty"`
	UTLS       *UTLS    `json:"utls,omitempty"`
	Reality    *Reality `json:"reality,omitempty"`
}

// UTLS selects a client hello fingerprint
type UTLS struct {
	Enabled     bool   `json:"enabled"`
	Fingerprint string `json:"fingerprint"`
}

// Reality carries REALITY client parameters
type Reality struct {
	Enabled   bool   `json:"enabled"`
	PublicKey string `json:"public_key,omitempty"`
	ShortID   string `json:"short_id,omitempty"`
}

// Transport is the outbound v2ray transport block
type Transport struct {
	Type        string            `json:"type"`
	Path        string            `json:"path,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	ServiceName string            `json:"service_name,omitempty"`
}

// FromDescriptor maps a parsed link onto an outbound named tag.
// Only present optional values are copied.
func FromDescriptor(d *link.Descriptor, tag string) Entry {
	e := Entry{
		Tag:        tag,
		Type:       string(d.Scheme),
		Server:     d.Server,
		ServerPort: d.Port,
	}

	switch d.Scheme {
	case link.SchemeVMess:
		e.UUID = d.Credential
		e.Security = d.Cipher.OrElse("auto")
		e.AlterID = d.AlterID.Value()
	case link.SchemeVLESS:
		e.UUID = d.Credential
		e.Flow = d.Flow.Value()
	case link.SchemeTrojan:
		e.Password = d.Credential
	}

	e.TLS = tlsFrom(d)
	e.Transport = transportFrom(d)
	return e
}

func tlsFrom(d *link.Descriptor) *TLS {
	sp := d.SecurityParams
	if d.Security == link.SecurityNone || sp == nil {
		return nil
	}

	t := &TLS{
		Enabled:    true,
		ServerName: sp.ServerName.Value(),
		Insecure:   sp.Insecure,
		ALPN:       sp.ALPN,
	}
	if sp.Fingerprint.Present() {
		t.UTLS = &UTLS{Enabled: true, Fingerprint: sp.Fingerprint.Value()}
	}
	if d.Security == link.SecurityReality {
		t.Reality = &Reality{
			Enabled:   true,
			PublicKey: sp.PublicKey.Value(),
			ShortID:   sp.ShortID.Value(),
		}
	}
	return t
}

func transportFrom(d *link.Descriptor) *Transport {
	tp := d.TransportParams
	if d.Transport == link.TransportTCP || tp == nil {
		return nil
	}

	t := &Transport{Type: string(d.Transport)}
	switch d.Transport {
	case link.TransportWS:
		t.Path = tp.Path.Value()
		if tp.Host.Present() {
			t.Headers = map[string]string{"Host": tp.Host.Value()}
		}
	case link.TransportGRPC:
		t.ServiceName = tp.ServiceName.Value()
	}
	return t
}

// Descriptor reconstructs the link descriptor an entry was built from.
// The label is the entry tag.
func (e Entry) Descriptor() *link.Descriptor {
	d := &link.Descriptor{
		Scheme:     link.Scheme(e.Type),
		Server:     e.Server,
		Port:       e.ServerPort,
		Credential: e.UUID,
		Label:      e.Tag,
		Transport:  link.TransportTCP,
		Security:   link.SecurityNone,
	}

	switch d.Scheme {
	case link.SchemeVMess:
		d.Cipher = link.Some(e.Security)
		d.AlterID = link.Some(e.AlterID)
	case link.SchemeVLESS:
		if e.Flow != "" {
			d.Flow = link.Some(e.Flow)
		}
	case link.SchemeTrojan:
		d.Credential = e.Password
	}

	if t := e.Transport; t != nil {
		d.Transport = link.Transport(t.Type)
		tp := &link.TransportParams{}
		if t.Path != "" {
			tp.Path = link.Some(t.Path)
		}
		if host := t.Headers["Host"]; host != "" {
			tp.Host = link.Some(host)
		}
		if t.ServiceName != "" {
			tp.ServiceName = link.Some(t.ServiceName)
		}
		d.TransportParams = tp
	}

	if t := e.TLS; t != nil && t.Enabled {
		d.Security = link.SecurityTLS
		sp := &link.SecurityParams{
			ALPN:     t.ALPN,
			Insecure: t.Insecure,
		}
		if t.ServerName != "" {
			sp.ServerName = link.Some(t.ServerName)
		}
		if t.UTLS != nil && t.UTLS.Enabled {
			sp.Fingerprint = link.Some(t.UTLS.Fingerprint)
		}
		if r := t.Reality; r != nil && r.Enabled {
			d.Security = link.SecurityReality
			sp.PublicKey = link.Some(r.PublicKey)
			sp.ShortID = link.Some(r.ShortID)
		}
		d.SecurityParams = sp
	}

	return d
}
