package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Miche5967/movie-analyse-recommendation/pkg/logger"
)

func TestServer_StartAndShutdown(t *testing.T) {
	srv := New(testConfig(), logger.Nop(), newTestRouter(t, testDataset()))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	var port int
	select {
	case a := <-srv.Ready():
		port = a.(*net.TCPAddr).Port
	case err := <-errCh:
		t.Fatalf("server failed to start: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/health", port))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	assert.NoError(t, <-errCh)
}
