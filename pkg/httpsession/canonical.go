package httpsession

import (
	"net/http"
	"net/url"
	"slices"
	"strings"
)

const (
	AcceptAny  = "*/*"
	AcceptJSON = "application/json"

	ContentTypeForm = "application/x-www-form-urlencoded"

	// FilterSeparator joins the key=value pairs of a flattened filter parameter.
	FilterSeparator = ";"
)

// EncodeQuery encodes query parameters sorted by name using a byte-wise
// comparison, values are taken as-is.
func EncodeQuery(query map[string]string) string {
	values := url.Values{}
	for k, v := range query {
		values.Set(k, v)
	}
	// url.Values.Encode sorts by key with sort.Strings, which is ordinal.
	return values.Encode()
}

// FlattenFilter turns a key -> value filter into a single parameter value
// such as "m=y;z=x", sub-keys sorted ordinally.
func FlattenFilter(filter map[string]string) string {
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + filter[k]
	}
	return strings.Join(pairs, FilterSeparator)
}

// WithQuery appends the canonical encoding of `query` to `path`. Parameters
// already present in `path` are kept unless `query` overrides them. Every
// parameter carries a single value, so a key repeated in `path` keeps only
// its last occurrence.
func WithQuery(path string, query map[string]string) (string, error) {
	parsed, err := url.Parse(path)
	if err != nil {
		return "", err
	}

	merged := map[string]string{}
	for k, v := range parsed.Query() {
		if len(v) > 0 {
			merged[k] = v[len(v)-1]
		}
	}
	for k, v := range query {
		merged[k] = v
	}

	parsed.RawQuery = EncodeQuery(merged)
	return parsed.String(), nil
}

// Form is an url-encoded form body that remembers the order keys were first set in.
type Form struct {
	keys   []string
	values map[string]string
}

func NewForm() *Form {
	return &Form{values: map[string]string{}}
}

// Set assigns a value, a key that already exists keeps its position.
func (f *Form) Set(key, value string) *Form {
	if f.values == nil {
		f.values = map[string]string{}
	}
	if _, exists := f.values[key]; !exists {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
	return f
}

// Del removes a key, setting it again appends it at the end.
func (f *Form) Del(key string) *Form {
	if _, exists := f.values[key]; !exists {
		return f
	}
	delete(f.values, key)
	f.keys = slices.DeleteFunc(f.keys, func(k string) bool { return k == key })
	return f
}

func (f *Form) Get(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

func (f *Form) Keys() []string {
	return slices.Clone(f.keys)
}

func (f *Form) Len() int {
	return len(f.keys)
}

// Encode renders the form in insertion order.
func (f *Form) Encode() string {
	var buf strings.Builder
	for i, k := range f.keys {
		if i > 0 {
			buf.WriteByte('&')
		}
		buf.WriteString(url.QueryEscape(k))
		buf.WriteByte('=')
		buf.WriteString(url.QueryEscape(f.values[k]))
	}
	return buf.String()
}

// NewGet builds a canonical GET request.
func NewGet(path string, query map[string]string, accept string) (Request, error) {
	target, err := WithQuery(path, query)
	if err != nil {
		return Request{}, err
	}
	header := http.Header{}
	if accept != "" {
		header.Set("Accept", accept)
	}
	return Request{
		Method: http.MethodGet,
		Path:   target,
		Header: header,
	}, nil
}

// NewPost builds a canonical url-encoded POST request, a nil form sends an empty body.
func NewPost(path string, query map[string]string, form *Form) (Request, error) {
	target, err := WithQuery(path, query)
	if err != nil {
		return Request{}, err
	}
	header := http.Header{}
	header.Set("Content-Type", ContentTypeForm)

	var body []byte
	if form != nil {
		body = []byte(form.Encode())
	}
	return Request{
		Method: http.MethodPost,
		Path:   target,
		Header: header,
		Body:   body,
	}, nil
}
