package restyutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

type memoryOutput struct {
	mutex    sync.Mutex
	ids      []string
	contents []string
}

func (o *memoryOutput) Write(id, contents string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.ids = append(o.ids, id)
	o.contents = append(o.contents, contents)
}

func TestFormatHeaders(t *testing.T) {
	require.Equal(t, "", formatHeaders(http.Header{}))
	require.Equal(t, "Accept: */*\nX-A: 1\nX-A: 2", formatHeaders(http.Header{
		"X-A":    {"1", "2"},
		"Accept": {"*/*"},
	}))
}

func TestFormatRequestBody(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://localhost/", nil)
	require.NoError(t, err)
	require.Equal(t, "", formatRequestBody(req))

	req.GetBody = func() (io.ReadCloser, error) { return nil, nil }
	require.Equal(t, "", formatRequestBody(req))

	req, err = http.NewRequest(http.MethodPost, "http://localhost/", strings.NewReader("a=1"))
	require.NoError(t, err)
	require.Equal(t, "a=1", formatRequestBody(req))
}

func TestDumpExchanges(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			http.Redirect(w, r, "/profile", http.StatusFound)
			return
		}
		w.Write([]byte("profile page"))
	}))
	defer server.Close()

	output := &memoryOutput{}
	client := resty.New()
	client.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}))
	DumpExchanges(client, output)

	_, err := client.R().SetBody([]byte("a=1")).Post(server.URL + "/login")
	require.NoError(t, err)
	_, err = client.R().Get(server.URL + "/profile")
	require.NoError(t, err)

	require.Len(t, output.contents, 2)
	require.True(t, strings.HasSuffix(output.ids[0], "-0001"))
	require.Contains(t, output.contents[0], "POST "+server.URL+"/login")
	require.Contains(t, output.contents[0], "a=1")
	require.Contains(t, output.contents[0], "302 -> "+server.URL+"/profile")
	require.Contains(t, output.contents[1], "profile page")
}

func TestFilesystemOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dumps")
	output, err := NewFilesystemOutput(dir)
	require.NoError(t, err)

	output.Write("1-0001", "contents")
	written, err := os.ReadFile(filepath.Join(dir, "1-0001.txt"))
	require.NoError(t, err)
	require.Equal(t, "contents", string(written))
}
