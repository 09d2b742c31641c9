package usecases

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"singmerge/internal/domain/link"
	"singmerge/internal/domain/outbound"
)

// Formatter renders converted links without a template
type Formatter interface {
	Format(links []ConvertedLink) (string, error)
	ContentType() string
}

// Format names accepted by NewFormatter
const (
	FormatOutbounds = "outbounds"
	FormatClash     = "clash"
	FormatLinks     = "links"
)

// NewFormatter returns the formatter registered under name
func NewFormatter(name string) (Formatter, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case FormatOutbounds, "singbox", "sing-box":
		return NewOutboundsFormatter(), true
	case FormatClash:
		return NewClashFormatter(), true
	case FormatLinks, "base64":
		return NewLinksFormatter(), true
	default:
		return nil, false
	}
}

// OutboundsFormatter renders {"outbounds": [...]} for pasting into an existing config.
type OutboundsFormatter struct{}

func NewOutboundsFormatter() *OutboundsFormatter {
	return &OutboundsFormatter{}
}

func (f *OutboundsFormatter) Format(links []ConvertedLink) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	doc := struct {
		Outbounds []outbound.Entry `json:"outbounds"`
	}{Outbounds: entriesOf(links)}

	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("failed to marshal outbounds: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func (f *OutboundsFormatter) ContentType() string {
	return "application/json; charset=utf-8"
}

// LinksFormatter re-encodes every link from its outbound entry and base64-encodes the list,
// the usual subscription body format. Defaults filled in by the entry, such as the vmess
// cipher, appear in the re-encoded link.
type LinksFormatter struct{}

func NewLinksFormatter() *LinksFormatter {
	return &LinksFormatter{}
}

func (f *LinksFormatter) Format(links []ConvertedLink) (string, error) {
	uris := make([]string, 0, len(links))
	for _, l := range links {
		uri, err := l.Entry.Descriptor().ToURI(l.Tag)
		if err != nil {
			return "", fmt.Errorf("failed to encode link %q: %w", l.Tag, err)
		}
		uris = append(uris, uri)
	}

	content := strings.Join(uris, "\n")
	return base64.StdEncoding.EncodeToString([]byte(content)), nil
}

func (f *LinksFormatter) ContentType() string {
	return "text/plain; charset=utf-8"
}

// ClashFormatter renders a Clash Meta proxies list
type ClashFormatter struct{}

func NewClashFormatter() *ClashFormatter {
	return &ClashFormatter{}
}

type clashProxy struct {
	Name           string            `yaml:"name"`
	Type           string            `yaml:"type"`
	Server         string            `yaml:"server"`
	Port           uint16            `yaml:"port"`
	UUID           string            `yaml:"uuid,omitempty"`
	Password       string            `yaml:"password,omitempty"`
	AlterID        int               `yaml:"alterId,omitempty"`
	Cipher         string            `yaml:"cipher,omitempty"`
	Flow           string            `yaml:"flow,omitempty"`
	UDP            bool              `yaml:"udp,omitempty"`
	TLS            bool              `yaml:"tls,omitempty"`
	SNI            string            `yaml:"sni,omitempty"`
	ServerName     string            `yaml:"servername,omitempty"`
	SkipCertVerify bool              `yaml:"skip-cert-verify,omitempty"`
	Fingerprint    string            `yaml:"client-fingerprint,omitempty"`
	ALPN           []string          `yaml:"alpn,omitempty"`
	Network        string            `yaml:"network,omitempty"`
	WSOpts         *clashWSOpts      `yaml:"ws-opts,omitempty"`
	GRPCOpts       *clashGRPCOpts    `yaml:"grpc-opts,omitempty"`
	RealityOpts    *clashRealityOpts `yaml:"reality-opts,omitempty"`
}

type clashWSOpts struct {
	Path    string            `yaml:"path,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

type clashGRPCOpts struct {
	GRPCServiceName string `yaml:"grpc-service-name,omitempty"`
}

type clashRealityOpts struct {
	PublicKey string `yaml:"public-key,omitempty"`
	ShortID   string `yaml:"short-id,omitempty"`
}

type clashConfig struct {
	Proxies []clashProxy `yaml:"proxies"`
}

func (f *ClashFormatter) Format(links []ConvertedLink) (string, error) {
	config := clashConfig{
		Proxies: make([]clashProxy, 0, len(links)),
	}
	for _, l := range links {
		config.Proxies = append(config.Proxies, f.buildProxy(l.Descriptor, l.Tag))
	}

	yamlBytes, err := yaml.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("failed to marshal clash config: %w", err)
	}
	return string(yamlBytes), nil
}

func (f *ClashFormatter) buildProxy(d *link.Descriptor, name string) clashProxy {
	proxy := clashProxy{
		Name:   name,
		Type:   string(d.Scheme),
		Server: d.Server,
		Port:   d.Port,
		UDP:    true,
	}

	switch d.Scheme {
	case link.SchemeVMess:
		proxy.UUID = d.Credential
		proxy.AlterID = d.AlterID.Value()
		proxy.Cipher = d.Cipher.OrElse("auto")
	case link.SchemeVLESS:
		proxy.UUID = d.Credential
		proxy.Flow = d.Flow.Value()
	case link.SchemeTrojan:
		proxy.Password = d.Credential
	}

	if sp := d.SecurityParams; sp != nil {
		// trojan is always TLS in Clash and names the SNI field differently
		if d.Scheme == link.SchemeTrojan {
			proxy.SNI = sp.ServerName.Value()
		} else {
			proxy.TLS = true
			proxy.ServerName = sp.ServerName.Value()
		}
		proxy.SkipCertVerify = sp.Insecure
		proxy.Fingerprint = sp.Fingerprint.Value()
		proxy.ALPN = sp.ALPN
		if d.Security == link.SecurityReality {
			proxy.RealityOpts = &clashRealityOpts{
				PublicKey: sp.PublicKey.Value(),
				ShortID:   sp.ShortID.Value(),
			}
		}
	}

	if tp := d.TransportParams; tp != nil {
		switch d.Transport {
		case link.TransportWS:
			proxy.Network = "ws"
			proxy.WSOpts = &clashWSOpts{Path: tp.Path.Value()}
			if tp.Host.Present() {
				proxy.WSOpts.Headers = map[string]string{"Host": tp.Host.Value()}
			}
		case link.TransportGRPC:
			proxy.Network = "grpc"
			proxy.GRPCOpts = &clashGRPCOpts{GRPCServiceName: tp.ServiceName.Value()}
		}
	}

	return proxy
}

func (f *ClashFormatter) ContentType() string {
	return "text/yaml; charset=utf-8"
}
