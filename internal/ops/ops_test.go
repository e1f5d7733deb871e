package ops

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mirrorcast/websignal/internal/config"
	"github.com/mirrorcast/websignal/internal/registry"
	"github.com/mirrorcast/websignal/internal/signalling"
)

func startApp(t *testing.T, security config.SecurityConfig) (*App, *signalling.Server) {
	t.Helper()
	server, err := signalling.NewServer(
		config.ServerConfig{Host: "127.0.0.1", MaxClients: 4}, registry.Handlers{})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	server.Start()
	t.Cleanup(server.Close)
	return New(security, server), server
}

func registerClient(t *testing.T, server *signalling.Server) registry.ClientID {
	t.Helper()
	local, remote := net.Pipe()
	t.Cleanup(func() {
		_ = local.Close()
		_ = remote.Close()
	})
	id, err := server.Registry().Add(remote)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	return id
}

func basicAuth(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func TestMetricsEndpoint(t *testing.T) {
	app, _ := startApp(t, config.SecurityConfig{})

	resp, err := app.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body failed: %v", err)
	}
	if !strings.Contains(string(body), "webrtc_signal_") {
		t.Error("exposition is missing the server metric family")
	}
}

func TestAdminClientsRequiresCredential(t *testing.T) {
	secret := "hunter2"
	app, server := startApp(t, config.SecurityConfig{AdminCredential: &secret})
	registerClient(t, server)

	resp, err := app.app.Test(httptest.NewRequest(http.MethodGet, "/api/admin/clients", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", resp.StatusCode)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/clients", nil)
	req.Header.Set("Authorization", basicAuth("admin", secret))
	resp, err = app.app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("authenticated status = %d, want 200", resp.StatusCode)
	}

	var infos []registry.ClientInfo
	if err := json.NewDecoder(resp.Body).Decode(&infos); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(infos) != 1 || !infos[0].Alive {
		t.Errorf("snapshot = %+v, want one live client", infos)
	}
}

func TestAdminOpenWithoutCredential(t *testing.T) {
	app, _ := startApp(t, config.SecurityConfig{})

	resp, err := app.app.Test(httptest.NewRequest(http.MethodGet, "/api/admin/clients", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200 when no credential is configured", resp.StatusCode)
	}
}

func TestAdminDisconnectClient(t *testing.T) {
	app, server := startApp(t, config.SecurityConfig{})
	id := registerClient(t, server)

	post := func(path string) int {
		t.Helper()
		resp, err := app.app.Test(httptest.NewRequest(http.MethodPost, path, nil))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	if code := post("/api/admin/clients/0/disconnect"); code != http.StatusOK {
		t.Fatalf("disconnect status = %d, want 200", code)
	}
	if client, _ := server.Registry().Get(id); client.Alive() {
		t.Error("client still alive after admin disconnect")
	}

	if code := post("/api/admin/clients/0/disconnect"); code != http.StatusConflict {
		t.Errorf("repeat disconnect status = %d, want 409", code)
	}
	if code := post("/api/admin/clients/99/disconnect"); code != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", code)
	}
}
