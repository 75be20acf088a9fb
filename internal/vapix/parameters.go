package vapix

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/muurk/vapix/internal/logging"
	"go.uber.org/zap"
)

const paramPath = "/axis-cgi/param.cgi"

// Parameters is the legacy key/value parameter API at /axis-cgi/param.cgi.
type Parameters struct {
	client     *Client
	apiVersion string
}

// Parameters returns the parameter API without consulting API discovery.
// Every firmware generation ships param.cgi.
func (c *Client) Parameters() *Parameters {
	return &Parameters{client: c, apiVersion: "1.0"}
}

// APIVersion is the version advertised by discovery, "1.0" when unknown.
func (p *Parameters) APIVersion() string {
	return p.apiVersion
}

// ParameterSet maps dotted parameter names (case-sensitive) to values.
type ParameterSet map[string]string

// Keys returns the parameter names in sorted order.
func (s ParameterSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lookup finds name with or without the "root." prefix. Devices answer a
// group query with whichever form the group was requested in.
func (s ParameterSet) Lookup(name string) (string, bool) {
	if v, ok := s[name]; ok {
		return v, true
	}
	if trimmed, ok := strings.CutPrefix(name, "root."); ok {
		v, ok := s[trimmed]
		return v, ok
	}
	v, ok := s["root."+name]
	return v, ok
}

// Pair is one parameter assignment for Update.
type Pair struct {
	Key   string
	Value string
}

// List returns current parameter values, restricted to groups when given.
//
// A body made only of "# Error:" lines means none of the requested groups
// exist, reported as ErrUnsupportedFeature.
func (p *Parameters) List(ctx context.Context, groups ...string) (ParameterSet, error) {
	query := url.Values{"action": {"list"}}
	if len(groups) > 0 {
		query.Set("group", strings.Join(groups, ","))
	}

	body, err := p.client.getText(ctx, paramPath, query.Encode())
	if err != nil {
		return nil, err
	}

	set, errorLines := parseParameterList(body)
	if len(set) == 0 && len(errorLines) > 0 {
		logging.Debug("Parameter groups not present",
			zap.Strings("groups", groups),
			zap.Strings("errors", errorLines),
		)
		return nil, NewUnsupportedError("parameter group not present: " + strings.Join(groups, ","))
	}
	return set, nil
}

// parseParameterList splits a key=value body. Lines without '=' are skipped;
// "# Error" lines are returned separately.
func parseParameterList(body []byte) (ParameterSet, []string) {
	set := ParameterSet{}
	var errorLines []string

	for _, raw := range bytes.Split(body, []byte("\n")) {
		line := strings.TrimSuffix(string(raw), "\r")
		if strings.HasPrefix(line, "# ") {
			errorLines = append(errorLines, line)
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		set[key] = value
	}
	return set, errorLines
}

// ListDefinitions returns the parameter tree with types and current values,
// restricted to groups when given.
func (p *Parameters) ListDefinitions(ctx context.Context, groups ...string) (*ParameterDefinitions, error) {
	query := url.Values{
		"action":     {"listdefinitions"},
		"listformat": {"xmlschema"},
	}
	if len(groups) > 0 {
		query.Set("group", strings.Join(groups, ","))
	}

	var raw rawParameterDefinitions
	if err := p.client.getXML(ctx, paramPath, query.Encode(), &raw); err != nil {
		return nil, err
	}
	return raw.convert(), nil
}

// Update sets parameters in one request. Zero pairs sends nothing. When a key
// repeats, the last value wins. The device must answer exactly "OK"; any
// other body, such as "# Error: ...", is returned as ErrTypeProtocol. The key
// "action" is rejected without sending anything.
func (p *Parameters) Update(ctx context.Context, pairs ...Pair) error {
	if len(pairs) == 0 {
		return nil
	}

	values := url.Values{}
	for _, pair := range pairs {
		if pair.Key == "action" {
			return fmt.Errorf("parameter key %q is reserved by param.cgi", pair.Key)
		}
		values.Set(pair.Key, pair.Value)
	}

	body, err := p.client.getText(ctx, paramPath, "action=update&"+values.Encode())
	if err != nil {
		return err
	}

	if strings.TrimSpace(string(body)) != "OK" {
		return NewProtocolError("parameter update rejected", body)
	}

	logging.Debug("Parameters updated", zap.Int("count", len(values)))
	return nil
}
