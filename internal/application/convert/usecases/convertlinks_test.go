package usecases_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"singmerge/internal/application/convert/testutil"
	"singmerge/internal/application/convert/usecases"
	"singmerge/internal/domain/link"
	apperrors "singmerge/internal/shared/errors"
)

var sampleLinks = []string{
	"trojan://pw@t.example:443?type=ws&path=/ws&host=cdn.example&sni=t.example#Trojan",
	"vless://b831381d-6324-4d53-ad4f-8cda48b30811@v.example:443?security=reality&sni=a.example&fp=chrome&pbk=KEY&sid=ab#Vless",
	"not a link",
}

func newConvertUseCase() *usecases.ConvertLinksUseCase {
	return usecases.NewConvertLinksUseCase(link.NewParser(), link.NewDefaultNamer(), testutil.NewMockLogger())
}

func TestConvertLinks_Clash(t *testing.T) {
	result, err := newConvertUseCase().Execute(context.Background(), usecases.ConvertLinksCommand{
		Links:  sampleLinks,
		Format: "clash",
	})
	require.NoError(t, err)
	assert.Equal(t, "text/yaml; charset=utf-8", result.ContentType)
	assert.Equal(t, []string{"Trojan 01", "Vless 02"}, result.Tags)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, 3, result.Skipped[0].Index)

	var cfg struct {
		Proxies []map[string]any `yaml:"proxies"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(result.Content), &cfg))
	require.Len(t, cfg.Proxies, 2)

	trojan := cfg.Proxies[0]
	assert.Equal(t, "Trojan 01", trojan["name"])
	assert.Equal(t, "trojan", trojan["type"])
	assert.Equal(t, "t.example", trojan["sni"])
	assert.Equal(t, "ws", trojan["network"])
	assert.Equal(t, map[string]any{"path": "/ws", "headers": map[string]any{"Host": "cdn.example"}}, trojan["ws-opts"])

	vless := cfg.Proxies[1]
	assert.Equal(t, true, vless["tls"])
	assert.Equal(t, "a.example", vless["servername"])
	assert.Equal(t, "chrome", vless["client-fingerprint"])
	assert.Equal(t, map[string]any{"public-key": "KEY", "short-id": "ab"}, vless["reality-opts"])
}

func TestConvertLinks_Links(t *testing.T) {
	result, err := newConvertUseCase().Execute(context.Background(), usecases.ConvertLinksCommand{
		Links:  sampleLinks,
		Format: "links",
	})
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(result.Content)
	require.NoError(t, err)
	lines := strings.Split(string(decoded), "\n")
	require.Len(t, lines, 2)

	for i, want := range result.Tags {
		d, err := link.Parse(lines[i])
		require.NoError(t, err)
		assert.Equal(t, want, d.Label)
	}
}

func TestConvertLinks_LinksMatchOutbounds(t *testing.T) {
	vmess := "vmess://" + base64.StdEncoding.EncodeToString([]byte(`{"add":"m.example","port":"443","id":"b831381d-6324-4d53-ad4f-8cda48b30811","net":"ws","path":"/v","tls":"tls","ps":"Media"}`))
	result, err := newConvertUseCase().Execute(context.Background(), usecases.ConvertLinksCommand{
		Links:  []string{vmess},
		Format: "links",
	})
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(result.Content)
	require.NoError(t, err)
	d, err := link.Parse(string(decoded))
	require.NoError(t, err)
	assert.Equal(t, "Media 01", d.Label)
	assert.Equal(t, "auto", d.Cipher.Value(), "cipher default is carried into the link")
	assert.Equal(t, link.TransportWS, d.Transport)
	assert.Equal(t, "/v", d.TransportParams.Path.Value())
}

func TestConvertLinks_Outbounds(t *testing.T) {
	result, err := newConvertUseCase().Execute(context.Background(), usecases.ConvertLinksCommand{
		Links:  sampleLinks[:1],
		Format: "singbox",
	})
	require.NoError(t, err)

	var doc struct {
		Outbounds []map[string]any `json:"outbounds"`
	}
	require.NoError(t, json.Unmarshal([]byte(result.Content), &doc))
	require.Len(t, doc.Outbounds, 1)
	assert.Equal(t, "Trojan 01", doc.Outbounds[0]["tag"])
	assert.True(t, strings.HasPrefix(result.Content, "{\n  \"outbounds\": ["))
}

func TestConvertLinks_Errors(t *testing.T) {
	uc := newConvertUseCase()

	_, err := uc.Execute(context.Background(), usecases.ConvertLinksCommand{Links: sampleLinks, Format: "surge"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))

	_, err = uc.Execute(context.Background(), usecases.ConvertLinksCommand{Links: []string{"bad"}, Format: "clash"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
}

func TestNewFormatter(t *testing.T) {
	for _, name := range []string{"outbounds", "singbox", "sing-box", "clash", "links", "base64", " Clash "} {
		_, ok := usecases.NewFormatter(name)
		assert.True(t, ok, name)
	}
	_, ok := usecases.NewFormatter("surge")
	assert.False(t, ok)
}
