package domain

import (
	"encoding/json"
	"net/url"
	"sort"
	"strings"
)

// Action describes how a location was reached.
type Action string

const (
	ActionPush    Action = "PUSH"
	ActionReplace Action = "REPLACE"
	ActionPop     Action = "POP"
)

// Query maps a query-string key to one or more values.
// A key with a single value serializes to JSON as a plain string.
type Query map[string][]string

// ParseQuery decodes a search string, with or without the leading '?'.
// Malformed pairs are skipped.
func ParseQuery(search string) Query {
	search = strings.TrimPrefix(search, "?")
	q := Query{}
	if search == "" {
		return q
	}
	for _, pair := range strings.Split(search, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		k, err := url.QueryUnescape(key)
		if err != nil {
			continue
		}
		v, err := url.QueryUnescape(value)
		if err != nil {
			continue
		}
		q[k] = append(q[k], v)
	}
	return q
}

// Get returns the first value for key, or "".
func (q Query) Get(key string) string {
	if vs := q[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Set replaces the values of key.
func (q Query) Set(key string, values ...string) {
	q[key] = values
}

// Clone returns a deep copy of the query.
func (q Query) Clone() Query {
	if q == nil {
		return nil
	}
	out := make(Query, len(q))
	for k, vs := range q {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// Encode renders the query as "a=1&b=2" with keys sorted.
func (q Query) Encode() string {
	if len(q) == 0 {
		return ""
	}
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		for _, v := range q[k] {
			if sb.Len() > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(url.QueryEscape(k))
			sb.WriteByte('=')
			sb.WriteString(url.QueryEscape(v))
		}
	}
	return sb.String()
}

// Contains reports whether every key/value in sub is present in q.
func (q Query) Contains(sub Query) bool {
	for k, want := range sub {
		have := q[k]
		if len(want) != len(have) {
			return false
		}
		for i := range want {
			if want[i] != have[i] {
				return false
			}
		}
	}
	return true
}

// MarshalJSON encodes single values as strings and the rest as arrays.
func (q Query) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(q))
	for k, vs := range q {
		if len(vs) == 1 {
			out[k] = vs[0]
		} else {
			out[k] = vs
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts both the string and the array form of a value.
func (q *Query) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Query, len(raw))
	for k, msg := range raw {
		var single string
		if err := json.Unmarshal(msg, &single); err == nil {
			out[k] = []string{single}
			continue
		}
		var many []string
		if err := json.Unmarshal(msg, &many); err != nil {
			return err
		}
		out[k] = many
	}
	*q = out
	return nil
}

// Location is a navigation target. It is never mutated after construction;
// the With helpers return modified copies.
type Location struct {
	Pathname string `json:"pathname"`
	Search   string `json:"search,omitempty"`
	Hash     string `json:"hash,omitempty"`
	Query    Query  `json:"query,omitempty"`
	State    any    `json:"state,omitempty"`
	Action   Action `json:"action"`
	Key      string `json:"key,omitempty"`
}

// NewLocation builds a location from a pathname and query.
func NewLocation(pathname string, query Query) *Location {
	if pathname == "" {
		pathname = "/"
	}
	search := ""
	if enc := query.Encode(); enc != "" {
		search = "?" + enc
	}
	if query == nil {
		query = Query{}
	}
	return &Location{
		Pathname: pathname,
		Search:   search,
		Query:    query.Clone(),
		Action:   ActionPop,
	}
}

// ParseLocation splits a path such as "/somewhere?a=b#lol" into a location.
func ParseLocation(path string) *Location {
	loc := &Location{Action: ActionPop}

	if i := strings.IndexByte(path, '#'); i >= 0 {
		loc.Hash = path[i:]
		path = path[:i]
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		loc.Search = path[i:]
		path = path[:i]
	}
	if loc.Search == "?" {
		loc.Search = ""
	}
	if path == "" {
		path = "/"
	}
	loc.Pathname = path
	loc.Query = ParseQuery(loc.Search)
	return loc
}

// Path returns the full path, search and hash included.
func (l *Location) Path() string {
	return l.Pathname + l.Search + l.Hash
}

func (l *Location) clone() *Location {
	c := *l
	c.Query = l.Query.Clone()
	return &c
}

// WithAction returns a copy carrying action.
func (l *Location) WithAction(action Action) *Location {
	c := l.clone()
	c.Action = action
	return c
}

// WithKey returns a copy carrying key.
func (l *Location) WithKey(key string) *Location {
	c := l.clone()
	c.Key = key
	return c
}

// WithState returns a copy carrying state.
func (l *Location) WithState(state any) *Location {
	c := l.clone()
	c.State = state
	return c
}

// WithQuery returns a copy whose query and search are replaced.
func (l *Location) WithQuery(query Query) *Location {
	c := l.clone()
	c.Query = query.Clone()
	c.Search = ""
	if enc := query.Encode(); enc != "" {
		c.Search = "?" + enc
	}
	return c
}
