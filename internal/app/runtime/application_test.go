package runtime

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DariaKalinichenko/Yatube/internal/config"
	"github.com/DariaKalinichenko/Yatube/pkg/logger"
)

func TestParseSecretKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantLen int
		ok      bool
	}{
		{"raw", "a passphrase that is long enough", 32, true},
		{"base64", "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY=", 32, true},
		{"hex", "3031323334353637383961626364656630313233343536373839616263646566", 32, true},
		{"too-short", "short", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := parseSecretKey(tt.input)
			if tt.ok {
				if err != nil {
					t.Fatalf("expected success, got error: %v", err)
				}
				if len(key) != tt.wantLen {
					t.Fatalf("unexpected length: got %d want %d", len(key), tt.wantLen)
				}
			} else {
				if err == nil {
					t.Fatalf("expected error, got none")
				}
			}
		})
	}
}

func TestSecretKeyGeneratedWhenEmpty(t *testing.T) {
	a, err := secretKey("", logger.NewDiscard())
	require.NoError(t, err)
	b, err := secretKey("", logger.NewDiscard())
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Media.Root = t.TempDir()
	cfg.Auth.SecretKey = "a passphrase that is long enough"
	return &cfg
}

func TestApplicationServesAndStops(t *testing.T) {
	application, err := NewApplication(testConfig(t), logger.NewDiscard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Run(ctx) }()

	var addr string
	require.Eventually(t, func() bool {
		addr = application.http.Addr()
		return addr != ""
	}, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + addr + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("application did not stop")
	}
}

func TestNewApplicationRejectsBadCacheBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Backend = "memcached"
	_, err := NewApplication(cfg, logger.NewDiscard())
	assert.Error(t, err)
}
