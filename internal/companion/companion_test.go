package companion

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validOptions(t *testing.T) Options {
	t.Helper()
	return Options{
		Providers: map[string]ProviderOptions{
			"drive":    {Key: "gid", Secret: "gsecret", Scope: []string{DriveScope}},
			"unsplash": {Key: "unsplash-access-key-123456"},
		},
		Server:      ServerOptions{Host: "127.0.0.1:3020", Protocol: "https"},
		CORSOrigins: []string{"https://dev.kboodle.com"},
		FilePath:    filepath.Join(t.TempDir(), "data"),
		Secret:      "s",
		UploadURLs:  []string{"https://127.0.0.1:3020"},
	}
}

func TestOptions_BaseURLAndRedirects(t *testing.T) {
	o := validOptions(t)
	if got := o.BaseURL(); got != "https://127.0.0.1:3020" {
		t.Fatalf("BaseURL: got %q", got)
	}

	o.URL = "https://companion.kboodle.com/"
	got := o.RedirectURIs()
	want := []string{
		"https://companion.kboodle.com/drive/redirect",
		"https://companion.kboodle.com/googlephotos/redirect",
	}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("RedirectURIs: got %v, want %v", got, want)
	}
}

func TestOptions_Validate(t *testing.T) {
	if err := validOptions(t).Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	cases := map[string]func(*Options){
		"no secret":        func(o *Options) { o.Secret = "" },
		"no host":          func(o *Options) { o.Server.Host = "" },
		"bad protocol":     func(o *Options) { o.Server.Protocol = "ftp" },
		"no file path":     func(o *Options) { o.FilePath = "" },
		"relative upload":  func(o *Options) { o.UploadURLs = []string{"/upload"} },
		"wildcard origins": func(o *Options) { o.CORSOrigins = []string{"*"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			o := validOptions(t)
			mutate(&o)
			if err := o.Validate(); err == nil {
				t.Fatal("Validate: got nil, want error")
			}
		})
	}
}

func TestMaskKey(t *testing.T) {
	cases := map[string]string{
		"":                           "(unset)",
		"abc":                        "...abc",
		"unsplash-access-key-123456": "...123456",
	}
	for in, want := range cases {
		if got := MaskKey(in); got != want {
			t.Fatalf("MaskKey(%q): got %q, want %q", in, got, want)
		}
	}
}

func TestNew_CreatesFilePathAndServes(t *testing.T) {
	o := validOptions(t)
	e, err := New(o)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if fi, err := os.Stat(o.FilePath); err != nil || !fi.IsDir() {
		t.Fatalf("file path not created: %v", err)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Welcome") {
		t.Fatalf("welcome: status=%d body=%q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
		t.Fatalf("404 body: %q (%v)", rec.Body.String(), err)
	}
}

func TestNew_RejectsInvalidOptions(t *testing.T) {
	o := validOptions(t)
	o.Secret = ""
	if _, err := New(o); err == nil {
		t.Fatal("New: got nil error for invalid options")
	}
}
