package link

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// flexString accepts JSON strings, numbers, and booleans.
// v2rayN-style payloads are inconsistent about port and aid types.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*f = flexString(n.String())
		return nil
	}

	var v bool
	if err := json.Unmarshal(b, &v); err == nil {
		*f = flexString(strconv.FormatBool(v))
		return nil
	}

	return fmt.Errorf("unsupported JSON value %s", b)
}

// vmessJSON is the v2rayN JSON payload of a vmess:// link
type vmessJSON struct {
	V              flexString `json:"v"`
	PS             flexString `json:"ps"`
	Add            flexString `json:"add"`
	Port           flexString `json:"port"`
	ID             flexString `json:"id"`
	Aid            flexString `json:"aid"`
	Scy            flexString `json:"scy"`
	Net            flexString `json:"net"`
	Type           flexString `json:"type"`
	Host           flexString `json:"host"`
	Path           flexString `json:"path"`
	TLS            flexString `json:"tls"`
	SNI            flexString `json:"sni"`
	ALPN           flexString `json:"alpn"`
	FP             flexString `json:"fp"`
	AllowInsecure  flexString `json:"allowInsecure"`
	SkipCertVerify flexString `json:"skip-cert-verify"`
}

// decodeBase64 pads s to a multiple of 4 and tries the standard and URL-safe alphabets.
func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "=")
	if missing := len(s) % 4; missing != 0 {
		s += strings.Repeat("=", 4-missing)
	}

	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.URLEncoding,
	}
	var lastErr error
	for _, enc := range encodings {
		b, err := enc.DecodeString(s)
		if err == nil {
			return b, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func parseVMess(raw string) (*Descriptor, error) {
	_, payload, _ := strings.Cut(raw, "://")
	if payload == "" {
		return nil, newParseError(ErrKindMalformedPayload, SchemeVMess, raw, "vmess payload is empty", nil)
	}

	decoded, err := decodeBase64(payload)
	if err != nil {
		return nil, newParseError(ErrKindMalformedPayload, SchemeVMess, raw, "vmess payload is not valid base64", err)
	}

	var cfg vmessJSON
	if err := json.Unmarshal(decoded, &cfg); err != nil {
		return nil, newParseError(ErrKindMalformedPayload, SchemeVMess, raw, "vmess payload is not a valid JSON object", err)
	}

	server := strings.TrimSpace(string(cfg.Add))
	if server == "" {
		return nil, newParseError(ErrKindMissingField, SchemeVMess, raw, "vmess payload has no server address (add)", nil)
	}
	id := strings.TrimSpace(string(cfg.ID))
	if id == "" {
		return nil, newParseError(ErrKindMissingField, SchemeVMess, raw, "vmess payload has no user id (id)", nil)
	}

	port, err := parsePort(string(cfg.Port))
	if err != nil {
		return nil, newParseError(ErrKindInvalidField, SchemeVMess, raw, "vmess port is invalid", err)
	}

	d := &Descriptor{
		Scheme:     SchemeVMess,
		Server:     server,
		Port:       port,
		Credential: canonicalUUID(id),
		Label:      string(cfg.PS),
		Cipher:     optString(string(cfg.Scy)),
	}

	if aid := string(cfg.Aid); aid != "" {
		n, err := strconv.Atoi(aid)
		if err != nil || n < 0 {
			return nil, newParseError(ErrKindInvalidField, SchemeVMess, raw, "vmess alter id (aid) must be a non-negative integer", err)
		}
		d.AlterID = Some(n)
	}

	security := string(cfg.TLS)
	if strings.EqualFold(security, "none") {
		security = ""
	}

	fields := rawFields{
		transport: string(cfg.Net),
		security:  security,
		path:      string(cfg.Path),
		host:      string(cfg.Host),
		// sni falls back to the host header before the server address
		sni:         firstNonEmpty(string(cfg.SNI), string(cfg.Host)),
		fingerprint: string(cfg.FP),
		alpn:        string(cfg.ALPN),
		insecure:    parseBool(firstNonEmpty(string(cfg.AllowInsecure), string(cfg.SkipCertVerify))),
	}

	if err := d.normalize(fields, SecurityNone); err != nil {
		return nil, newParseError(ErrKindInvalidField, SchemeVMess, raw, "link is well-formed but "+err.Error(), nil)
	}
	return d, nil
}
