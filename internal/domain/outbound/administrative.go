package outbound

// Administrative is a built-in outbound with a fixed shape
type Administrative struct {
	Tag  string `json:"tag"`
	Type string `json:"type"`
}

var administrativeDefaults = map[string]Administrative{
	"direct":  {Tag: "direct", Type: "direct"},
	"block":   {Tag: "block", Type: "block"},
	"dns-out": {Tag: "dns-out", Type: "dns"},
	"bypass":  {Tag: "bypass", Type: "direct"},
}

// AdministrativeDefault returns the default shape for a required administrative tag.
// Unknown tags are assumed to be direct outbounds.
func AdministrativeDefault(tag string) Administrative {
	if a, ok := administrativeDefaults[tag]; ok {
		return a
	}
	return Administrative{Tag: tag, Type: "direct"}
}

// KnownAdministrativeTags lists the tags with a documented default shape
func KnownAdministrativeTags() []string {
	return []string{"direct", "block", "dns-out", "bypass"}
}
