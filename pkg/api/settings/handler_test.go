package settings

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	coreSettings "fin_statements/pkg/core/settings"
)

func newRouter(p coreSettings.Provider) *mux.Router {
	r := mux.NewRouter()
	NewHandler(coreSettings.NewService(p), "").Register(r)
	return r
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandler_GetDefaults(t *testing.T) {
	rec := serve(newRouter(&coreSettings.MemoryProvider{}), "GET", "/api/settings", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got coreSettings.Settings
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got != coreSettings.Default() {
		t.Errorf("settings = %+v, want defaults", got)
	}
}

func TestHandler_Update(t *testing.T) {
	p := &coreSettings.MemoryProvider{}
	r := newRouter(p)

	tests := []struct {
		name   string
		body   string
		status int
		want   coreSettings.Settings
	}{
		{"dark mode only", `{"dark_mode": true}`, http.StatusOK, coreSettings.Settings{DarkMode: true, SecondaryColor: "#00bcd4"}},
		{"preset colour", `{"secondary_color": "#9C27B0"}`, http.StatusOK, coreSettings.Settings{DarkMode: true, SecondaryColor: "#9c27b0"}},
		{"unknown colour", `{"secondary_color": "#123456"}`, http.StatusBadRequest, coreSettings.Settings{DarkMode: true, SecondaryColor: "#9c27b0"}},
		{"bad json", `{`, http.StatusBadRequest, coreSettings.Settings{DarkMode: true, SecondaryColor: "#9c27b0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := serve(r, "PUT", "/api/settings", tt.body); rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			stored, _ := p.Load()
			if stored != tt.want {
				t.Errorf("stored = %+v, want %+v", stored, tt.want)
			}
		})
	}
}

func TestHandler_Presets(t *testing.T) {
	rec := serve(newRouter(&coreSettings.MemoryProvider{}), "GET", "/api/settings/presets", "")
	var presets []coreSettings.Preset
	if err := json.NewDecoder(rec.Body).Decode(&presets); err != nil {
		t.Fatal(err)
	}
	if len(presets) != 12 {
		t.Errorf("%d presets, want 12", len(presets))
	}
}
