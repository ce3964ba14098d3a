package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"modbase/internal/config"
	"modbase/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

// setupCLITestEnv writes a config pointing at temp directories and, when
// handler is non-nil, at a fake store.
func setupCLITestEnv(t *testing.T, handler http.Handler, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()
	if handler != nil {
		srv := httptest.NewServer(handler)
		t.Cleanup(srv.Close)
		opts = append(opts, testsupport.WithStoreURL(srv.URL))
	}
	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("DEBUG", "")

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(base, "modbase.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliTestEnv{cfg: cfg, configPath: path, baseDir: base}
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(append([]string{"--config", e.configPath}, args...), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

type storeEvent struct {
	GID   string
	Title string
	Body  string
}

// fakeStore serves app details and the partner-event feed.
func fakeStore(events ...storeEvent) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/appdetails", func(w http.ResponseWriter, r *http.Request) {
		switch id := r.URL.Query().Get("appids"); id {
		case "1158310":
			fmt.Fprint(w, `{"1158310":{"success":true,"data":{"name":"Crusader Kings III","dlc":[2000]}}}`)
		case "2000":
			fmt.Fprint(w, `{"2000":{"success":true,"data":{"name":"Crusader Kings III: Tours & Tournaments"}}}`)
		default:
			fmt.Fprintf(w, `{"%s":{"success":false}}`, id)
		}
	})
	mux.HandleFunc("/events/ajaxgetpartnereventspageable", func(w http.ResponseWriter, r *http.Request) {
		var b strings.Builder
		b.WriteString(`{"events":[`)
		if r.URL.Query().Get("offset") == "0" {
			for i, e := range events {
				if i > 0 {
					b.WriteByte(',')
				}
				fmt.Fprintf(&b, `{"gid":%q,"event_name":%q,"announcement_body":{"body":%q,"posttime":1700000000}}`, e.GID, e.Title, e.Body)
			}
		}
		b.WriteString(`]}`)
		fmt.Fprint(w, b.String())
	})
	return mux
}

func writeInstallation(t *testing.T, cfg *config.Config, root, rawVersion string) {
	t.Helper()
	testsupport.WriteText(t, filepath.Join(root, cfg.Product.LauncherSettings),
		fmt.Sprintf(`{"rawVersion": %q, "version": "%s (Scythe)"}`, rawVersion, rawVersion))
	testsupport.WriteBytes(t, filepath.Join(root, cfg.Product.ManifestDir, "1158311_5.manifest"),
		testsupport.ManifestBytes(testsupport.ManifestFields{DepotID: 1158311, CreationTime: 1700000000}))
	testsupport.WriteBytes(t, filepath.Join(root, cfg.Product.ManifestDir, "2000_6.manifest"),
		testsupport.ManifestBytes(testsupport.ManifestFields{DepotID: 2000, CreationTime: 1699990000}))
	testsupport.WriteText(t, filepath.Join(root, "game", "events", "a.txt"), "namespace = a\n")
	testsupport.WriteFile(t, filepath.Join(root, "game", "gfx", "b.dds"), 128)
	testsupport.WriteFile(t, filepath.Join(root, "binaries", "ck3.exe"), 64)
}
