package link

import (
	"errors"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Parser turns share links into Descriptors
type Parser struct{}

// NewParser creates a new link parser
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes one share link. Every failure is returned as a *ParseError.
func (p *Parser) Parse(raw string) (*Descriptor, error) {
	return Parse(raw)
}

// Parse decodes one share link using the default parser.
func Parse(raw string) (*Descriptor, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, newParseError(ErrKindMalformedPayload, "", raw, "link is empty", nil)
	}

	prefix, _, ok := strings.Cut(raw, "://")
	if !ok {
		return nil, newParseError(ErrKindUnsupportedScheme, "", raw, "link has no scheme", nil)
	}

	switch Scheme(strings.ToLower(prefix)) {
	case SchemeVMess:
		return parseVMess(raw)
	case SchemeVLESS:
		return parseVLESS(raw)
	case SchemeTrojan:
		return parseTrojan(raw)
	default:
		return nil, newParseError(ErrKindUnsupportedScheme, "", raw, "unsupported link scheme "+strconv.Quote(prefix)+" (must be vmess, vless, or trojan)", nil)
	}
}

// uriParts is the decoded shape shared by vless:// and trojan:// links.
type uriParts struct {
	userinfo string
	host     string
	port     uint16
	query    url.Values
	label    string
}

// splitURI decodes identity@host:port[/]?query#fragment.
func splitURI(scheme Scheme, raw string) (uriParts, error) {
	_, rest, _ := strings.Cut(raw, "://")

	var parts uriParts

	rest, frag, hasFrag := strings.Cut(rest, "#")
	if hasFrag {
		decoded, err := url.PathUnescape(frag)
		if err != nil {
			decoded = frag
		}
		parts.label = strings.TrimSpace(decoded)
	}

	rest, rawQuery, _ := strings.Cut(rest, "?")
	// '+' is literal in share links, not a form-encoded space
	query, err := url.ParseQuery(strings.ReplaceAll(rawQuery, "+", "%2B"))
	if err != nil {
		return uriParts{}, newParseError(ErrKindMalformedQuery, scheme, raw, "query string could not be decoded", err)
	}
	parts.query = query

	at := strings.LastIndex(rest, "@")
	if at < 0 {
		return uriParts{}, newParseError(ErrKindMissingField, scheme, raw, "link is missing the identity@host part", nil)
	}
	userinfo, hostPart := rest[:at], rest[at+1:]
	if userinfo == "" {
		return uriParts{}, newParseError(ErrKindMissingField, scheme, raw, "identity is empty", nil)
	}
	if decoded, err := url.PathUnescape(userinfo); err == nil {
		userinfo = decoded
	}
	parts.userinfo = userinfo

	if idx := strings.IndexByte(hostPart, '/'); idx >= 0 {
		hostPart = hostPart[:idx]
	}
	host, port, err := splitHostPort(hostPart)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Scheme = scheme
			pe.Snippet = Snippet(raw)
			return uriParts{}, pe
		}
		return uriParts{}, newParseError(ErrKindInvalidField, scheme, raw, "server address is invalid", err)
	}
	parts.host = host
	parts.port = port

	return parts, nil
}

// splitHostPort accepts host, host:port, [v6] and [v6]:port. A missing port yields 0.
func splitHostPort(s string) (string, uint16, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", 0, &ParseError{Kind: ErrKindMissingField, Message: "server host is empty"}
	}

	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		var addrErr *net.AddrError
		if errors.As(err, &addrErr) && strings.Contains(addrErr.Err, "missing port") {
			host = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
			portStr = ""
		} else {
			return "", 0, err
		}
	}

	host = strings.TrimSpace(host)
	if host == "" {
		return "", 0, &ParseError{Kind: ErrKindMissingField, Message: "server host is empty"}
	}

	port, err := parsePort(portStr)
	if err != nil {
		return "", 0, err
	}
	return host, port, nil
}

// parsePort parses a decimal port. Empty input yields 0 so the caller can apply DefaultPort.
func parsePort(s string) (uint16, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &ParseError{Kind: ErrKindInvalidField, Message: "port is not a number", Cause: err}
	}
	if n < 1 || n > 65535 {
		return 0, &ParseError{Kind: ErrKindInvalidField, Message: "port " + s + " is out of range (1-65535)"}
	}
	return uint16(n), nil
}

// canonicalUUID lowercases and re-hyphenates ids that parse as UUIDs; other strings are kept as-is.
func canonicalUUID(id string) string {
	id = strings.TrimSpace(id)
	if u, err := uuid.Parse(id); err == nil {
		return u.String()
	}
	return id
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseVLESS(raw string) (*Descriptor, error) {
	parts, err := splitURI(SchemeVLESS, raw)
	if err != nil {
		return nil, err
	}
	q := parts.query

	d := &Descriptor{
		Scheme:     SchemeVLESS,
		Server:     parts.host,
		Port:       parts.port,
		Credential: canonicalUUID(parts.userinfo),
		Label:      parts.label,
		Flow:       optString(q.Get("flow")),
	}

	if err := d.normalize(queryFields(q), SecurityNone); err != nil {
		return nil, newParseError(ErrKindInvalidField, SchemeVLESS, raw, "link is well-formed but "+err.Error(), nil)
	}
	return d, nil
}

func parseTrojan(raw string) (*Descriptor, error) {
	parts, err := splitURI(SchemeTrojan, raw)
	if err != nil {
		return nil, err
	}
	q := parts.query

	d := &Descriptor{
		Scheme:     SchemeTrojan,
		Server:     parts.host,
		Port:       parts.port,
		Credential: parts.userinfo,
		Label:      parts.label,
	}

	fields := queryFields(q)
	// trojan is always encrypted; an explicit none is treated as tls
	if strings.EqualFold(strings.TrimSpace(fields.security), string(SecurityNone)) {
		fields.security = string(SecurityTLS)
	}
	if err := d.normalize(fields, SecurityTLS); err != nil {
		return nil, newParseError(ErrKindInvalidField, SchemeTrojan, raw, "link is well-formed but "+err.Error(), nil)
	}
	return d, nil
}

func queryFields(q url.Values) rawFields {
	return rawFields{
		transport:   q.Get("type"),
		security:    q.Get("security"),
		path:        q.Get("path"),
		host:        q.Get("host"),
		serviceName: q.Get("serviceName"),
		sni:         firstNonEmpty(q.Get("sni"), q.Get("peer")),
		fingerprint: q.Get("fp"),
		alpn:        q.Get("alpn"),
		insecure:    parseBool(firstNonEmpty(q.Get("allowInsecure"), q.Get("insecure"))),
		publicKey:   q.Get("pbk"),
		shortID:     q.Get("sid"),
	}
}
