package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/jamesprial/odb-target-loader/internal/catalog"
	"github.com/jamesprial/odb-target-loader/internal/config"
	"github.com/jamesprial/odb-target-loader/internal/graphql"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

// clearEnv blanks every variable the command reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"ODB_URL", "ODB_TIMEOUT_SECONDS", "ODB_PROGRAM_ID", "ODB_CATALOG_PATH",
		"ODB_LOG_LEVEL", "ODB_LOG_FORMAT", "ODB_AUDIT_LOG", "ODB_CONFIG_PATH",
		"ODB_MCP_AUTH_TOKEN",
	} {
		t.Setenv(k, "")
	}
}

// newFakeODB answers create mutations; statuses maps a target name to a
// non-200 reply.
func newFakeODB(t *testing.T, statuses map[string]int) (*httptest.Server, func() []string) {
	t.Helper()
	var (
		mu   sync.Mutex
		seen []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Variables struct {
				CreateSidereal struct {
					Name string `json:"name"`
				} `json:"createSidereal"`
			} `json:"variables"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		name := body.Variables.CreateSidereal.Name

		mu.Lock()
		seen = append(seen, name)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch code := statuses[name]; {
		case code == 0:
			fmt.Fprintf(w, `{"data":{"createSiderealTarget":{"id":"t-1","name":%q}}}`, name)
		case code >= 400 && code < 500:
			w.WriteHeader(code)
			fmt.Fprintf(w, `{"errors":[{"message":"rejected %s"}]}`, name)
		default:
			w.WriteHeader(code)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), seen...)
	}
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// ---------------------------------------------------------------------------
// load
// ---------------------------------------------------------------------------

func Test_Load_ExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		statuses map[string]int
		wantCode int
		wantSeen string
	}{
		{name: "all created", wantCode: 0, wantSeen: "Bellatrix,Alnilam,Alnitak,Saiph"},
		{name: "one rejected", statuses: map[string]int{"Alnilam": 400}, wantCode: 1, wantSeen: "Bellatrix,Alnilam,Alnitak,Saiph"},
		{name: "server failure aborts", statuses: map[string]int{"Alnilam": 500}, wantCode: 2, wantSeen: "Bellatrix,Alnilam"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			srv, seen := newFakeODB(t, tt.statuses)

			code, stdout, stderr := runCLI(t, "load", "--url", srv.URL, "--program", "p-2", "--log-format", "json")
			if code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d\nstderr: %s", code, tt.wantCode, stderr)
			}
			if got := strings.Join(seen(), ","); got != tt.wantSeen {
				t.Errorf("service received %s, want %s", got, tt.wantSeen)
			}
			if !strings.Contains(stdout, `"name": "Bellatrix"`) {
				t.Errorf("stdout missing created Bellatrix:\n%s", stdout)
			}
			if tt.wantCode == 2 && !strings.Contains(stderr, "HTTP 500") {
				t.Errorf("stderr does not report the fatal error:\n%s", stderr)
			}
		})
	}
}

func Test_Load_OnlyAndExclude(t *testing.T) {
	clearEnv(t)
	srv, seen := newFakeODB(t, nil)

	code, _, stderr := runCLI(t, "load", "--url", srv.URL, "--only", "Al*,Saiph", "--exclude", "Alnitak")
	if code != 0 {
		t.Fatalf("exit code = %d\nstderr: %s", code, stderr)
	}
	if got := strings.Join(seen(), ","); got != "Alnilam,Saiph" {
		t.Errorf("service received %s", got)
	}
}

func Test_Load_DryRunSendsNothing(t *testing.T) {
	clearEnv(t)
	srv, seen := newFakeODB(t, nil)

	code, stdout, stderr := runCLI(t, "load", "--url", srv.URL, "--program", "p-9", "--dry-run")
	if code != 0 {
		t.Fatalf("exit code = %d\nstderr: %s", code, stderr)
	}
	if len(seen()) != 0 {
		t.Errorf("dry run contacted the service: %v", seen())
	}
	if strings.Count(stdout, `"operationName": "CreateSiderealTarget"`) != 4 {
		t.Errorf("expected 4 request bodies:\n%s", stdout)
	}
	if !strings.Contains(stdout, `"p-9"`) {
		t.Error("request bodies do not carry the program id")
	}
}

func Test_Load_AuditLog(t *testing.T) {
	clearEnv(t)
	srv, _ := newFakeODB(t, nil)
	auditPath := filepath.Join(t.TempDir(), "audit.jsonl")
	t.Setenv("ODB_AUDIT_LOG", auditPath)

	if code, _, stderr := runCLI(t, "load", "--url", srv.URL); code != 0 {
		t.Fatalf("exit code = %d\nstderr: %s", code, stderr)
	}
	data, err := os.ReadFile(auditPath)
	if err != nil {
		t.Fatalf("read audit log: %v", err)
	}
	if n := strings.Count(string(data), "\n"); n != 4 {
		t.Errorf("audit lines = %d, want 4", n)
	}
}

func Test_Load_ConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "bad url", args: []string{"load", "--url", "ftp://odb"}, want: "http or https"},
		{name: "empty program", args: []string{"load", "--program", ""}, want: "program id"},
		{name: "missing config file", args: []string{"load", "--config", "/nonexistent/odb.yaml"}, want: "no such file"},
		{name: "bad log level", args: []string{"load", "--log-level", "loud"}, want: "logging"},
		{name: "bad pattern", args: []string{"load", "--only", "["}, want: "target selection"},
		{name: "missing catalog", args: []string{"load", "--catalog", "/nonexistent/catalog.yaml"}, want: "no such file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			code, _, stderr := runCLI(t, tt.args...)
			if code != 2 {
				t.Errorf("exit code = %d, want 2", code)
			}
			if !strings.Contains(stderr, tt.want) {
				t.Errorf("stderr = %q, want it to contain %q", stderr, tt.want)
			}
		})
	}
}

func Test_Load_RateFlagOverridesConfig(t *testing.T) {
	configured := config.RateConfig{PerSecond: 5, Burst: 2}

	tests := []struct {
		name      string
		args      []string
		wantRate  float64
		wantBurst int
		wantErr   bool
	}{
		{name: "no flags keep config", args: nil, wantRate: 5, wantBurst: 2},
		{name: "explicit zero disables pacing", args: []string{"--rate", "0"}, wantRate: 0, wantBurst: 2},
		{name: "rate and burst override", args: []string{"--rate", "1.5", "--burst", "4"}, wantRate: 1.5, wantBurst: 4},
		{name: "negative rate rejected", args: []string{"--rate", "-1"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := &loadOptions{}
			f := pflag.NewFlagSet("load", pflag.ContinueOnError)
			opts.bind(f)
			if err := f.Parse(tt.args); err != nil {
				t.Fatalf("Parse() error: %v", err)
			}

			rate, burst, err := opts.pacing(f, configured)
			if (err != nil) != tt.wantErr {
				t.Fatalf("pacing() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if rate != tt.wantRate || burst != tt.wantBurst {
				t.Errorf("pacing() = %v/%d, want %v/%d", rate, burst, tt.wantRate, tt.wantBurst)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// configuration precedence
// ---------------------------------------------------------------------------

func Test_Config_FlagBeatsEnvBeatsFile(t *testing.T) {
	clearEnv(t)
	srv, seen := newFakeODB(t, nil)
	dir := t.TempDir()

	cfgPath := filepath.Join(dir, "odb.yaml")
	content := "graphql:\n  url: http://127.0.0.1:1/odb\nprogram_id: p-file\nselection:\n  allowlist: [Saiph]\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ODB_CONFIG_PATH", cfgPath)
	t.Setenv("ODB_URL", srv.URL)

	code, stdout, stderr := runCLI(t, "load", "--dry-run", "--program", "p-flag")
	if code != 0 {
		t.Fatalf("exit code = %d\nstderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, `"p-flag"`) || strings.Contains(stdout, `"p-file"`) {
		t.Errorf("flag did not override file program:\n%s", stdout)
	}
	if strings.Count(stdout, `"operationName"`) != 1 {
		t.Errorf("file allowlist not applied:\n%s", stdout)
	}

	if code, _, stderr := runCLI(t, "load"); code != 0 {
		t.Fatalf("exit code = %d\nstderr: %s", code, stderr)
	}
	if got := seen(); len(got) != 1 || got[0] != "Saiph" {
		t.Errorf("env url not used or selection wrong: %v", got)
	}
}

func Test_Config_DotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("ODB_PROGRAM_ID")
	envPath := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(envPath, []byte("ODB_PROGRAM_ID=p-dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("ODB_PROGRAM_ID") })

	code, stdout, stderr := runCLI(t, "load", "--dry-run", "--env-file", envPath)
	if code != 0 {
		t.Fatalf("exit code = %d\nstderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, `"p-dotenv"`) {
		t.Errorf("dotenv program not applied:\n%s", stdout)
	}
}

// ---------------------------------------------------------------------------
// catalog
// ---------------------------------------------------------------------------

func Test_Catalog_Listing(t *testing.T) {
	clearEnv(t)

	code, stdout, _ := runCLI(t, "catalog", "--names")
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	var names []string
	if err := json.Unmarshal([]byte(stdout), &names); err != nil {
		t.Fatalf("stdout is not a JSON name list: %v", err)
	}
	if strings.Join(names, ",") != "Bellatrix,Alnilam,Alnitak,Saiph" {
		t.Errorf("names = %v", names)
	}

	catalogPath, _ := filepath.Abs(filepath.Join("..", "..", "testdata", "catalog", "winter.yaml"))
	code, stdout, _ = runCLI(t, "catalog", "--catalog", catalogPath, "--exclude", "Rigel")
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	var targets []catalog.Target
	if err := json.Unmarshal([]byte(stdout), &targets); err != nil {
		t.Fatalf("stdout is not a JSON target list: %v", err)
	}
	if len(targets) != 1 || targets[0].Name != "Betelgeuse" {
		t.Errorf("targets = %v", catalog.Names(targets))
	}
}

// ---------------------------------------------------------------------------
// serve
// ---------------------------------------------------------------------------

func Test_NewMCPServer_RegistersTools(t *testing.T) {
	cfg := config.DefaultConfig()
	client, err := graphql.NewHTTPClient(cfg.GraphQL)
	if err != nil {
		t.Fatalf("NewHTTPClient() error: %v", err)
	}
	s := &settings{cfg: cfg, log: zerolog.Nop(), targets: catalog.Builtin()}

	srv, names, err := newMCPServer(s, client, nil)
	if err != nil {
		t.Fatalf("newMCPServer() error: %v", err)
	}
	if srv == nil {
		t.Fatal("server is nil")
	}
	want := "catalog_list,target_submit,catalog_load,graphql_query"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("tools = %s, want %s", got, want)
	}

	s.cfg.ProgramID = ""
	if _, _, err := newMCPServer(s, client, nil); err == nil {
		t.Error("expected error for empty program id")
	}
}

func Test_NewHTTPHandler_RequiresBearerToken(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.AuthToken = "s3cret"
	client, err := graphql.NewHTTPClient(cfg.GraphQL)
	if err != nil {
		t.Fatalf("NewHTTPClient() error: %v", err)
	}
	s := &settings{cfg: cfg, log: zerolog.Nop(), targets: catalog.Builtin()}
	mcpServer, _, err := newMCPServer(s, client, nil)
	if err != nil {
		t.Fatalf("newMCPServer() error: %v", err)
	}
	srv := httptest.NewServer(newHTTPHandler(s, mcpServer))
	defer srv.Close()

	initialize := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1"}}}`
	post := func(header string) int {
		req, _ := http.NewRequest(http.MethodPost, srv.URL+"/mcp", strings.NewReader(initialize))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json, text/event-stream")
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("POST: %v", err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	for _, header := range []string{"", "Bearer wrong", "s3cret"} {
		if code := post(header); code != http.StatusUnauthorized {
			t.Errorf("Authorization %q: status %d, want 401", header, code)
		}
	}
	if code := post("Bearer s3cret"); code == http.StatusUnauthorized || code >= 500 {
		t.Errorf("valid token: status %d", code)
	}
}

func Test_Serve_DefaultsToLoopback(t *testing.T) {
	clearEnv(t)
	if got := config.DefaultConfig().Server.Host; got != "127.0.0.1" {
		t.Errorf("default host = %q, want 127.0.0.1", got)
	}
}

func Test_Version(t *testing.T) {
	code, stdout, _ := runCLI(t, "--version")
	if code != 0 || !strings.Contains(stdout, version) {
		t.Errorf("code %d, stdout %q", code, stdout)
	}
}
