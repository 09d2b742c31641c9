package outbound

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"singmerge/internal/domain/link"
)

func mustParse(t *testing.T, raw string) *link.Descriptor {
	t.Helper()
	d, err := link.Parse(raw)
	require.NoError(t, err)
	return d
}

func TestFromDescriptor_Trojan(t *testing.T) {
	d := mustParse(t, "trojan://pw@host.example:443?security=tls&sni=host.example#MyNode")

	b, err := json.Marshal(FromDescriptor(d, "MyNode 01"))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"tag": "MyNode 01",
		"type": "trojan",
		"server": "host.example",
		"server_port": 443,
		"password": "pw",
		"tls": {"enabled": true, "server_name": "host.example"}
	}`, string(b))
}

func TestFromDescriptor_VLESSReality(t *testing.T) {
	d := mustParse(t, "vless://b831381d-6324-4d53-ad4f-8cda48b30811@1.2.3.4:443"+
		"?security=reality&sni=www.microsoft.com&fp=chrome&pbk=KEY&sid=01&flow=xtls-rprx-vision")

	e := FromDescriptor(d, "n")
	assert.Equal(t, "vless", e.Type)
	assert.Equal(t, "b831381d-6324-4d53-ad4f-8cda48b30811", e.UUID)
	assert.Equal(t, "xtls-rprx-vision", e.Flow)
	assert.Empty(t, e.Password)
	assert.Nil(t, e.Transport)

	require.NotNil(t, e.TLS)
	require.NotNil(t, e.TLS.UTLS)
	assert.Equal(t, "chrome", e.TLS.UTLS.Fingerprint)
	require.NotNil(t, e.TLS.Reality)
	assert.Equal(t, "KEY", e.TLS.Reality.PublicKey)
	assert.Equal(t, "01", e.TLS.Reality.ShortID)
}

func TestFromDescriptor_VMessWebSocket(t *testing.T) {
	payload := `{"add":"v.example","port":"80","id":"x","aid":"0","net":"ws","path":"/ray","host":"cdn.example"}`
	d := mustParse(t, "vmess://"+base64Std(payload))

	b, err := json.Marshal(FromDescriptor(d, "v"))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"tag": "v",
		"type": "vmess",
		"server": "v.example",
		"server_port": 80,
		"uuid": "x",
		"security": "auto",
		"transport": {"type": "ws", "path": "/ray", "headers": {"Host": "cdn.example"}}
	}`, string(b))
}

func TestFromDescriptor_OmitsEmptyFields(t *testing.T) {
	d := mustParse(t, "vless://id@h.example:8443?type=grpc")

	b, err := json.Marshal(FromDescriptor(d, "g"))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.NotContains(t, m, "tls")
	assert.NotContains(t, m, "flow")
	assert.NotContains(t, m, "password")
	assert.Equal(t, map[string]any{"type": "grpc"}, m["transport"])
	assert.NotContains(t, string(b), "null")
	assert.NotContains(t, string(b), `""`)
}

func TestEntry_DescriptorRoundTrip(t *testing.T) {
	links := []string{
		"trojan://pw@host.example:443?security=tls&sni=host.example#MyNode",
		"trojan://pw@t.example:443?type=ws&path=/w&host=cdn.example&alpn=h2,http/1.1&allowInsecure=1",
		"vless://id@1.2.3.4:443?security=reality&sni=a.example&fp=chrome&pbk=KEY&sid=01",
		"vless://id@h.example:8443?type=grpc&serviceName=svc",
		"vmess://" + base64Std(`{"add":"v.example","id":"x","net":"ws","tls":"tls","sni":"s.example"}`),
	}

	for _, raw := range links {
		t.Run(raw, func(t *testing.T) {
			orig := mustParse(t, raw)
			entry := FromDescriptor(orig, "Tag 01")

			uri, err := entry.Descriptor().ToURI("")
			require.NoError(t, err)
			again := mustParse(t, uri)

			assert.Equal(t, orig.Transport, again.Transport)
			assert.Equal(t, orig.Security, again.Security)
			assert.Equal(t, "Tag 01", again.Label)
			assert.Equal(t, entry, FromDescriptor(again, "Tag 01"))
		})
	}
}
