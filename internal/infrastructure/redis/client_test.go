package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	running := miniredis.RunT(t)

	stopped := miniredis.RunT(t)
	stoppedURL := "redis://" + stopped.Addr()
	stopped.Close()

	tests := []struct {
		name    string
		url     string
		wantErr string
	}{
		{name: "connects", url: "redis://" + running.Addr() + "/0"},
		{name: "malformed url", url: "://bad-url", wantErr: "parse redis URL"},
		{name: "server down", url: stoppedURL, wantErr: "ping redis"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(context.Background(), tt.url)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer client.Close()

			require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
			got, err := running.Get("k")
			require.NoError(t, err)
			assert.Equal(t, "v", got)
		})
	}
}

func TestPinger(t *testing.T) {
	s := miniredis.RunT(t)

	ctx := context.Background()
	client, err := NewClient(ctx, "redis://"+s.Addr())
	require.NoError(t, err)
	defer client.Close()

	p := Pinger{Client: client}
	assert.NoError(t, p.Ping(ctx))

	s.Close()
	assert.Error(t, p.Ping(ctx), "ping must fail once the server is down")
}
