package link

import (
	"fmt"
	"net"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// (SG) or [SG], any case
	bracketCodePattern = regexp.MustCompile(`[\(\[]\s*([A-Za-z]{2})\s*[\)\]]`)
	// SG-Node, SG Node, SG|Node: uppercase only, lowercase words are too ambiguous
	prefixCodePattern = regexp.MustCompile(`^([A-Z]{2})(?:[\s\-_|:.]+|$)`)
	// Node-SG, Node SG
	suffixCodePattern = regexp.MustCompile(`(?:^|[\s\-_|:.]+)([A-Z]{2})$`)

	disallowedCharsPattern = regexp.MustCompile(`[^A-Za-z0-9 \-\[\]]+`)
	whitespacePattern      = regexp.MustCompile(`\s+`)
	dashRunPattern         = regexp.MustCompile(`-{2,}`)
)

// DefaultProviderSuffixes lists hosting domains that carry no useful naming information.
func DefaultProviderSuffixes() []string {
	return []string{
		"workers.dev",
		"pages.dev",
		"herokuapp.com",
		"vercel.app",
		"netlify.app",
		"onrender.com",
		"fly.dev",
		"railway.app",
		"github.io",
		"cloudfront.net",
		"azureedge.net",
		"fastly.net",
		"cloudflare.com",
	}
}

// Namer derives display tags for converted links.
// It holds only read-only lookup data and is safe for concurrent use.
type Namer struct {
	countries       CountryTable
	providerPattern *regexp.Regexp
}

// NewNamer creates a Namer over the given country table and provider suffixes.
func NewNamer(countries CountryTable, providers []string) *Namer {
	n := &Namer{countries: countries}

	quoted := make([]string, 0, len(providers))
	for _, p := range providers {
		p = strings.Trim(strings.ToLower(strings.TrimSpace(p)), ".")
		if p != "" {
			quoted = append(quoted, regexp.QuoteMeta(p))
		}
	}
	if len(quoted) > 0 {
		n.providerPattern = regexp.MustCompile(`(?i)\.?(?:` + strings.Join(quoted, "|") + `)`)
	}
	return n
}

// NewDefaultNamer creates a Namer with the built-in tables
func NewDefaultNamer() *Namer {
	return NewNamer(DefaultCountryTable(), DefaultProviderSuffixes())
}

// Derive composes "[flag] [label] [NN]" from a display label, the server host and the
// 1-based batch index. Absent parts are omitted; index <= 0 omits the number.
func (n *Namer) Derive(label, server string, index int) string {
	label = strings.TrimSpace(norm.NFKC.String(label))

	code, rest := n.extractCountry(label)
	cleaned := n.clean(rest)
	if cleaned == "" {
		cleaned = n.hostLabel(server)
	}

	parts := make([]string, 0, 3)
	if code != "" {
		parts = append(parts, n.countries.Flag(code))
	}
	if cleaned != "" {
		parts = append(parts, cleaned)
	}
	if index > 0 {
		parts = append(parts, fmt.Sprintf("%02d", index))
	}
	return strings.Join(parts, " ")
}

// extractCountry finds a known country token in label and returns it with the label minus that token.
func (n *Namer) extractCountry(label string) (string, string) {
	if code, rest, ok := n.extractFlag(label); ok {
		return code, rest
	}

	patterns := []*regexp.Regexp{bracketCodePattern, prefixCodePattern, suffixCodePattern}
	for _, p := range patterns {
		loc := p.FindStringSubmatchIndex(label)
		if loc == nil {
			continue
		}
		code := strings.ToUpper(label[loc[2]:loc[3]])
		if !n.countries.Has(code) {
			continue
		}
		return code, label[:loc[0]] + " " + label[loc[1]:]
	}

	return "", label
}

// extractFlag recognizes a flag emoji already present in the label.
func (n *Namer) extractFlag(label string) (string, string, bool) {
	runes := []rune(label)
	for i := 0; i+1 < len(runes); i++ {
		code, ok := codeFromFlag(runes[i], runes[i+1])
		if !ok {
			continue
		}
		if !n.countries.Has(code) {
			i++
			continue
		}
		rest := string(runes[:i]) + " " + string(runes[i+2:])
		return code, rest, true
	}
	return "", label, false
}

// clean strips provider suffixes and disallowed characters, then dash-joins the words.
func (n *Namer) clean(s string) string {
	if n.providerPattern != nil {
		s = n.providerPattern.ReplaceAllString(s, " ")
	}
	s = disallowedCharsPattern.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = whitespacePattern.ReplaceAllString(s, "-")
	s = dashRunPattern.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// hostLabel picks a short label from a domain name. IP literals yield "".
func (n *Namer) hostLabel(server string) string {
	server = strings.TrimSpace(strings.Trim(server, "[]"))
	if server == "" || net.ParseIP(server) != nil {
		return ""
	}
	if n.providerPattern != nil {
		server = n.providerPattern.ReplaceAllString(server, "")
	}
	for _, label := range strings.Split(server, ".") {
		if label == "" || strings.EqualFold(label, "www") {
			continue
		}
		return n.clean(label)
	}
	return ""
}
