package escl

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const capabilitiesXML = `<?xml version="1.0" encoding="UTF-8"?>
<scan:ScannerCapabilities xmlns:pwg="http://www.pwg.org/schemas/2010/12/sm" xmlns:scan="http://schemas.hp.com/imaging/escl/2011/05/03">
  <pwg:Version>2.6</pwg:Version>
  <pwg:MakeAndModel>Epson ET-2850</pwg:MakeAndModel>
  <scan:UUID>cfe92100-67c4-11d4-a45f-f8d027761251</scan:UUID>
  <scan:Platen>
    <scan:PlatenInputCaps>
      <scan:MinWidth>16</scan:MinWidth>
      <scan:MaxWidth>2550</scan:MaxWidth>
      <scan:MinHeight>16</scan:MinHeight>
      <scan:MaxHeight>3508</scan:MaxHeight>
      <scan:SettingProfiles>
        <scan:SettingProfile>
          <scan:ColorModes>
            <scan:ColorMode>BlackAndWhite1</scan:ColorMode>
            <scan:ColorMode>Grayscale8</scan:ColorMode>
            <scan:ColorMode>RGB24</scan:ColorMode>
          </scan:ColorModes>
          <scan:DocumentFormats>
            <pwg:DocumentFormat>image/jpeg</pwg:DocumentFormat>
            <pwg:DocumentFormat>application/pdf</pwg:DocumentFormat>
          </scan:DocumentFormats>
          <scan:SupportedResolutions>
            <scan:DiscreteResolutions>
              <scan:DiscreteResolution><scan:XResolution>300</scan:XResolution><scan:YResolution>300</scan:YResolution></scan:DiscreteResolution>
              <scan:DiscreteResolution><scan:XResolution>100</scan:XResolution><scan:YResolution>100</scan:YResolution></scan:DiscreteResolution>
              <scan:DiscreteResolution><scan:XResolution>600</scan:XResolution><scan:YResolution>600</scan:YResolution></scan:DiscreteResolution>
            </scan:DiscreteResolutions>
          </scan:SupportedResolutions>
        </scan:SettingProfile>
      </scan:SettingProfiles>
    </scan:PlatenInputCaps>
  </scan:Platen>
</scan:ScannerCapabilities>`

const statusXML = `<?xml version="1.0" encoding="UTF-8"?>
<scan:ScannerStatus xmlns:pwg="http://www.pwg.org/schemas/2010/12/sm" xmlns:scan="http://schemas.hp.com/imaging/escl/2011/05/03">
  <pwg:Version>2.6</pwg:Version>
  <pwg:State>Idle</pwg:State>
</scan:ScannerStatus>`

// fakeScanner is a minimal eSCL endpoint under /eSCL.
type fakeScanner struct {
	mu         sync.Mutex
	caps       string
	status     string
	pages      []string
	busyPolls  int
	busyJobs   int
	settings   string
	deleted    bool
	nextCalls  int
	createCode int
}

func newFakeScanner(pages ...string) *fakeScanner {
	return &fakeScanner{caps: capabilitiesXML, status: statusXML, pages: pages}
}

func (f *fakeScanner) start(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /eSCL/ScannerCapabilities", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		_, _ = io.WriteString(w, f.caps)
	})
	mux.HandleFunc("GET /eSCL/ScannerStatus", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.status == "" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, f.status)
	})
	mux.HandleFunc("POST /eSCL/ScanJobs", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.busyJobs > 0 {
			f.busyJobs--
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if f.createCode != 0 {
			w.WriteHeader(f.createCode)
			_, _ = io.WriteString(w, "invalid settings")
			return
		}
		f.settings = string(body)
		w.Header().Set("Location", "/eSCL/ScanJobs/42")
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("GET /eSCL/ScanJobs/42/NextDocument", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.nextCalls++
		if f.busyPolls > 0 {
			f.busyPolls--
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if len(f.pages) == 0 {
			http.NotFound(w, r)
			return
		}
		page := f.pages[0]
		f.pages = f.pages[1:]
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = io.WriteString(w, page)
	})
	mux.HandleFunc("DELETE /eSCL/ScanJobs/42", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.deleted = true
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func (f *fakeScanner) lastSettings() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settings
}

func (f *fakeScanner) wasDeleted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleted
}

func withFeeder(caps string) string {
	adf := `<scan:Adf><scan:AdfSimplexInputCaps>
      <scan:SettingProfiles><scan:SettingProfile>
        <scan:ColorModes><scan:ColorMode>RGB24</scan:ColorMode></scan:ColorModes>
        <scan:DocumentFormats><pwg:DocumentFormat>image/jpeg</pwg:DocumentFormat></scan:DocumentFormats>
        <scan:SupportedResolutions><scan:ResolutionRange><scan:XResolutionRange><scan:Min>75</scan:Min><scan:Max>300</scan:Max><scan:Step>1</scan:Step></scan:XResolutionRange></scan:ResolutionRange></scan:SupportedResolutions>
      </scan:SettingProfile></scan:SettingProfiles>
    </scan:AdfSimplexInputCaps></scan:Adf>
</scan:ScannerCapabilities>`
	return strings.Replace(caps, "</scan:ScannerCapabilities>", adf, 1)
}
