package http

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chordhash/chord"
	"chordhash/ring"
)

func TestClientSendRoundTrips(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chord.Envelope
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, chord.CmdGetSucc, req.Command)
		json.NewEncoder(w).Encode(chord.Envelope{Command: chord.CmdGetSucc, Success: true})
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	c := NewClient(2*time.Second, 1, nil)
	resp, err := c.Send(context.Background(), chord.PeerDescriptor{
		ID: ring.FromInt64(1), IPAddr: host, Port: port,
	}, chord.Envelope{Command: chord.CmdGetSucc})
	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestClientSendFailsOnUnreachablePeer(t *testing.T) {
	c := NewClient(100*time.Millisecond, 1, nil)
	_, err := c.Send(context.Background(), chord.PeerDescriptor{
		ID: ring.FromInt64(1), IPAddr: "127.0.0.1", Port: 1,
	}, chord.Envelope{Command: chord.CmdGetSucc})
	assert.Error(t, err)
}
