package link

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptor_ToURI_RoundTrip(t *testing.T) {
	links := []string{
		"trojan://p%40ss@t.example:8443?type=ws&path=%2Fws&host=cdn.example&sni=t.example&allowInsecure=1#Node",
		"vless://b831381d-6324-4d53-ad4f-8cda48b30811@203.0.113.7:443?type=tcp&security=reality&sni=www.microsoft.com&fp=chrome&pbk=PUBKEY&sid=ab12&flow=xtls-rprx-vision",
		"vless://id@[2001:db8::1]:8080?type=grpc&serviceName=tun",
		vmessLink(t, map[string]any{
			"add": "v.example", "port": "443", "id": "x", "aid": "1",
			"net": "ws", "path": "/ray", "host": "h.example", "tls": "tls", "alpn": "h2",
		}),
		vmessLink(t, map[string]any{"add": "v.example", "port": 80, "id": "x", "net": "grpc", "path": "svc"}),
	}

	for _, raw := range links {
		t.Run(raw[:strings.Index(raw, "://")], func(t *testing.T) {
			orig, err := Parse(raw)
			require.NoError(t, err)

			uri, err := orig.ToURI("Renamed")
			require.NoError(t, err)

			again, err := Parse(uri)
			require.NoError(t, err, uri)

			assert.Equal(t, orig.Scheme, again.Scheme)
			assert.Equal(t, orig.Server, again.Server)
			assert.Equal(t, orig.Port, again.Port)
			assert.Equal(t, orig.Credential, again.Credential)
			assert.Equal(t, orig.Transport, again.Transport)
			assert.Equal(t, orig.Security, again.Security)
			assert.Equal(t, orig.TransportParams, again.TransportParams)
			assert.Equal(t, orig.SecurityParams, again.SecurityParams)
			assert.Equal(t, orig.Flow, again.Flow)
			assert.Equal(t, "Renamed", again.Label)
		})
	}
}

func TestDescriptor_ToURI_KeepsLabel(t *testing.T) {
	d, err := Parse("trojan://pw@h.example:443#Keep%20Me")
	require.NoError(t, err)

	uri, err := d.ToURI("")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(uri, "#Keep%20Me"), uri)
}

func TestDescriptor_ToURI_UnknownScheme(t *testing.T) {
	d := &Descriptor{Scheme: Scheme("ss")}
	_, err := d.ToURI("x")
	assert.Error(t, err)
}
