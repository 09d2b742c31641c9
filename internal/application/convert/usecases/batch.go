package usecases

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"singmerge/internal/domain/link"
	"singmerge/internal/domain/outbound"
	apperrors "singmerge/internal/shared/errors"
	"singmerge/internal/shared/logger"
	"singmerge/internal/shared/utils/setutil"
)

// DefaultMaxLinks caps one batch
const DefaultMaxLinks = 50

// ConvertedLink is one successfully converted link
type ConvertedLink struct {
	// Index is the 1-based position of the link among the non-empty links of the batch
	Index      int
	Tag        string
	Descriptor *link.Descriptor
	Entry      outbound.Entry
}

// SkippedLink records a link that could not be converted
type SkippedLink struct {
	Index   int    `json:"index"`
	Kind    string `json:"kind"`
	Reason  string `json:"reason"`
	Snippet string `json:"snippet"`
}

// SplitLinks splits newline-separated input into candidate links.
// Blank lines and lines starting with # are dropped.
func SplitLinks(text string) []string {
	var links []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		links = append(links, line)
	}
	return links
}

// ValidateBatchSize rejects batches with more than limit non-empty links. limit <= 0 disables the check.
func ValidateBatchSize(links []string, limit int) error {
	if limit <= 0 {
		return nil
	}
	n := 0
	for _, l := range links {
		if strings.TrimSpace(l) != "" {
			n++
		}
	}
	if n > limit {
		return apperrors.NewValidationError(
			"too many links",
			fmt.Sprintf("%d links submitted, at most %d are allowed per batch", n, limit),
		)
	}
	return nil
}

// batchConverter parses and names a batch of links in submission order.
type batchConverter struct {
	parser LinkParser
	namer  TagNamer
	logger logger.Interface
}

// convert parses links and assigns each a tag unique within taken.
// Final tags are added to taken before the next link is processed.
func (c *batchConverter) convert(links []string, taken *setutil.StringSet) ([]ConvertedLink, []SkippedLink) {
	var (
		converted []ConvertedLink
		skipped   []SkippedLink
		index     int
	)

	for _, raw := range links {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		index++

		d, err := c.parser.Parse(raw)
		if err != nil {
			s := skippedFrom(index, raw, err)
			c.logger.Warnw("skipping link",
				"index", index,
				"kind", s.Kind,
				"snippet", s.Snippet,
				"error", err,
			)
			skipped = append(skipped, s)
			continue
		}

		tag := uniqueTag(c.namer.Derive(d.Label, d.Server, index), taken)
		converted = append(converted, ConvertedLink{
			Index:      index,
			Tag:        tag,
			Descriptor: d,
			Entry:      outbound.FromDescriptor(d, tag),
		})

		c.logger.Debugw("link converted",
			"index", index,
			"tag", tag,
			"link", d.String(),
		)
	}

	return converted, skipped
}

// uniqueTag appends -1, -2, ... to base until it is not in taken, then records it.
func uniqueTag(base string, taken *setutil.StringSet) string {
	tag := base
	for n := 1; taken.Has(tag); n++ {
		tag = base + "-" + strconv.Itoa(n)
	}
	taken.Add(tag)
	return tag
}

func skippedFrom(index int, raw string, err error) SkippedLink {
	s := SkippedLink{
		Index:   index,
		Kind:    "parse_error",
		Reason:  err.Error(),
		Snippet: link.Snippet(raw),
	}
	var pe *link.ParseError
	if errors.As(err, &pe) {
		s.Kind = string(pe.Kind)
		s.Reason = pe.Message
		if pe.Snippet != "" {
			s.Snippet = pe.Snippet
		}
	}
	return s
}

// tagsOf returns the tags of converted links in order
func tagsOf(converted []ConvertedLink) []string {
	tags := make([]string, len(converted))
	for i, c := range converted {
		tags[i] = c.Tag
	}
	return tags
}

// entriesOf returns the outbound entries of converted links in order
func entriesOf(converted []ConvertedLink) []outbound.Entry {
	entries := make([]outbound.Entry, len(converted))
	for i, c := range converted {
		entries[i] = c.Entry
	}
	return entries
}
