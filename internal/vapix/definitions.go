package vapix

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// ParameterDefinitions is the parameter tree returned by listdefinitions.
type ParameterDefinitions struct {
	// SchemaVersion is the version of the definitions format, "1.0" in practice
	SchemaVersion   string
	Model           string
	FirmwareVersion string
	Groups          []*ParameterGroup
}

// ParameterGroup holds parameters and nested groups.
type ParameterGroup struct {
	Name       string
	MaxGroups  int
	Groups     []*ParameterGroup
	Parameters []*ParameterDefinition
}

// ParameterDefinition describes one parameter.
type ParameterDefinition struct {
	Name     string
	Value    string
	HasValue bool
	NiceName string

	// SecurityLevel is nil when the device omitted it or sent a malformed one
	SecurityLevel *SecurityLevel

	// Type is nil when the device sent no type element
	Type *ParameterType
}

// TypeKind identifies the value domain of a parameter.
type TypeKind string

const (
	KindUnknown  TypeKind = ""
	KindString   TypeKind = "string"
	KindPassword TypeKind = "password"
	KindInt      TypeKind = "int"
	KindEnum     TypeKind = "enum"
	KindBool     TypeKind = "bool"
	KindIP       TypeKind = "ip"
	KindIPList   TypeKind = "ipList"
	KindHostname TypeKind = "hostname"
	KindTextArea TypeKind = "textArea"
)

// ParameterType is a parameter's type tag, flags and constraints.
type ParameterType struct {
	Kind TypeKind

	// Constraint is the raw XML inside the type element, kept verbatim so
	// unknown kinds lose nothing.
	Constraint string

	ReadOnly  bool
	WriteOnly bool
	Hidden    bool
	Const     bool
	NoSync    bool
	Internal  bool

	MaxLen *int   // string, password, int
	Min    *int64 // int
	Max    *int64 // int
	Ranges []string

	Entries []EnumEntry // enum

	TrueValue  string // bool
	FalseValue string // bool
}

// EnumEntry is one allowed value of an enum parameter.
type EnumEntry struct {
	Value     string
	NiceValue string
}

// Group finds a direct child group by name.
func (g *ParameterGroup) Group(name string) *ParameterGroup {
	for _, child := range g.Groups {
		if child.Name == name {
			return child
		}
	}
	return nil
}

// Parameter finds a direct child parameter by name.
func (g *ParameterGroup) Parameter(name string) *ParameterDefinition {
	for _, p := range g.Parameters {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Group finds a top-level group by name, usually "root".
func (d *ParameterDefinitions) Group(name string) *ParameterGroup {
	for _, g := range d.Groups {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// Lookup resolves a dotted path such as "root.Properties.System.Soc".
func (d *ParameterDefinitions) Lookup(path string) *ParameterDefinition {
	parts := strings.Split(path, ".")
	if len(parts) < 2 {
		return nil
	}
	g := d.Group(parts[0])
	for _, name := range parts[1 : len(parts)-1] {
		if g == nil {
			return nil
		}
		g = g.Group(name)
	}
	if g == nil {
		return nil
	}
	return g.Parameter(parts[len(parts)-1])
}

// Flatten maps every parameter's dotted path to its definition. Paths use
// the same form as List keys.
func (d *ParameterDefinitions) Flatten() map[string]*ParameterDefinition {
	out := make(map[string]*ParameterDefinition)
	var walk func(prefix string, g *ParameterGroup)
	walk = func(prefix string, g *ParameterGroup) {
		path := g.Name
		if prefix != "" {
			path = prefix + "." + g.Name
		}
		for _, p := range g.Parameters {
			out[path+"."+p.Name] = p
		}
		for _, child := range g.Groups {
			walk(path, child)
		}
	}
	for _, g := range d.Groups {
		walk("", g)
	}
	return out
}

// AsBool interprets a bool parameter's value. ok is false when the parameter
// has no value, is not a bool, or holds neither of the declared values.
func (p *ParameterDefinition) AsBool() (value bool, ok bool) {
	if !p.HasValue || p.Type == nil || p.Type.Kind != KindBool {
		return false, false
	}
	switch p.Value {
	case p.Type.TrueValue:
		return true, true
	case p.Type.FalseValue:
		return false, true
	}
	return false, false
}

// AccessLevel is one digit of a SecurityLevel.
type AccessLevel byte

const (
	AccessUnprotected   AccessLevel = '0'
	AccessViewer        AccessLevel = '1'
	AccessOperator      AccessLevel = '4'
	AccessAdministrator AccessLevel = '6'
	// AccessRoot covers internal parameters changed only by firmware
	// applications or by editing configuration files.
	AccessRoot AccessLevel = '7'
)

func (a AccessLevel) String() string {
	switch a {
	case AccessUnprotected:
		return "unprotected"
	case AccessViewer:
		return "viewer"
	case AccessOperator:
		return "operator"
	case AccessAdministrator:
		return "administrator"
	case AccessRoot:
		return "root"
	default:
		return fmt.Sprintf("AccessLevel(%q)", byte(a))
	}
}

// SecurityLevel is the four-digit create/delete/read/write access code of a
// parameter, e.g. "7404".
type SecurityLevel struct {
	Create AccessLevel
	Delete AccessLevel
	Read   AccessLevel
	Write  AccessLevel
}

// ParseSecurityLevel parses a four-digit security level.
func ParseSecurityLevel(s string) (SecurityLevel, error) {
	if len(s) != 4 {
		return SecurityLevel{}, fmt.Errorf("security level %q: expected 4 digits", s)
	}
	var levels [4]AccessLevel
	for i := 0; i < 4; i++ {
		switch l := AccessLevel(s[i]); l {
		case AccessUnprotected, AccessViewer, AccessOperator, AccessAdministrator, AccessRoot:
			levels[i] = l
		default:
			return SecurityLevel{}, fmt.Errorf("security level %q: bad access level %q", s, s[i])
		}
	}
	return SecurityLevel{Create: levels[0], Delete: levels[1], Read: levels[2], Write: levels[3]}, nil
}

func (s SecurityLevel) String() string {
	return string([]byte{byte(s.Create), byte(s.Delete), byte(s.Read), byte(s.Write)})
}

// Flag is a boolean XML attribute. Firmware spells these "true"/"false" or
// "yes"/"no"; anything else reads as false.
type Flag bool

func (f *Flag) UnmarshalXMLAttr(attr xml.Attr) error {
	switch strings.ToLower(strings.TrimSpace(attr.Value)) {
	case "true", "yes", "1":
		*f = true
	default:
		*f = false
	}
	return nil
}

// The raw* types mirror the xmlschema document. Element names match in any
// namespace.

type rawParameterDefinitions struct {
	XMLName         xml.Name   `xml:"parameterDefinitions"`
	Version         string     `xml:"version,attr"`
	Model           string     `xml:"model,attr"`
	FirmwareVersion string     `xml:"firmwareVersion,attr"`
	Groups          []rawGroup `xml:"group"`
}

type rawGroup struct {
	Name       string         `xml:"name,attr"`
	MaxGroups  string         `xml:"maxGroups,attr"`
	Groups     []rawGroup     `xml:"group"`
	Parameters []rawParameter `xml:"parameter"`
}

type rawParameter struct {
	Name          string   `xml:"name,attr"`
	Value         *string  `xml:"value,attr"`
	SecurityLevel string   `xml:"securityLevel,attr"`
	NiceName      string   `xml:"niceName,attr"`
	Type          *rawType `xml:"type"`
}

type rawType struct {
	ReadOnly  Flag   `xml:"readonly,attr"`
	WriteOnly Flag   `xml:"writeonly,attr"`
	Hidden    Flag   `xml:"hidden,attr"`
	Const     Flag   `xml:"const,attr"`
	NoSync    Flag   `xml:"nosync,attr"`
	Internal  Flag   `xml:"internal,attr"`
	Inner     string `xml:",innerxml"`

	String   *rawLimits `xml:"string"`
	Password *rawLimits `xml:"password"`
	Int      *rawLimits `xml:"int"`
	Enum     *rawEnum   `xml:"enum"`
	Bool     *rawBool   `xml:"bool"`
	IP       *struct{}  `xml:"ip"`
	IPList   *struct{}  `xml:"ipList"`
	Hostname *struct{}  `xml:"hostname"`
	TextArea *struct{}  `xml:"textArea"`
}

type rawLimits struct {
	MaxLen string     `xml:"maxlen,attr"`
	Min    string     `xml:"min,attr"`
	Max    string     `xml:"max,attr"`
	Ranges []rawRange `xml:"range"`
}

type rawRange struct {
	Value string `xml:"value,attr"`
}

type rawEnum struct {
	Entries []rawEntry `xml:"entry"`
}

type rawEntry struct {
	Value     string `xml:"value,attr"`
	NiceValue string `xml:"niceValue,attr"`
}

type rawBool struct {
	True  string `xml:"true,attr"`
	False string `xml:"false,attr"`
}

func (r rawParameterDefinitions) convert() *ParameterDefinitions {
	defs := &ParameterDefinitions{
		SchemaVersion:   r.Version,
		Model:           r.Model,
		FirmwareVersion: r.FirmwareVersion,
	}
	for _, g := range r.Groups {
		defs.Groups = append(defs.Groups, g.convert())
	}
	return defs
}

func (r rawGroup) convert() *ParameterGroup {
	g := &ParameterGroup{Name: r.Name}
	if n, err := strconv.Atoi(r.MaxGroups); err == nil {
		g.MaxGroups = n
	}
	for _, child := range r.Groups {
		g.Groups = append(g.Groups, child.convert())
	}
	for _, p := range r.Parameters {
		g.Parameters = append(g.Parameters, p.convert())
	}
	return g
}

func (r rawParameter) convert() *ParameterDefinition {
	p := &ParameterDefinition{
		Name:     r.Name,
		NiceName: r.NiceName,
	}
	if r.Value != nil {
		p.Value, p.HasValue = *r.Value, true
	}
	if r.SecurityLevel != "" {
		if level, err := ParseSecurityLevel(r.SecurityLevel); err == nil {
			p.SecurityLevel = &level
		}
	}
	if r.Type != nil {
		p.Type = r.Type.convert()
	}
	return p
}

func (r rawType) convert() *ParameterType {
	t := &ParameterType{
		Constraint: strings.TrimSpace(r.Inner),
		ReadOnly:   bool(r.ReadOnly),
		WriteOnly:  bool(r.WriteOnly),
		Hidden:     bool(r.Hidden),
		Const:      bool(r.Const),
		NoSync:     bool(r.NoSync),
		Internal:   bool(r.Internal),
	}

	switch {
	case r.String != nil:
		t.Kind = KindString
		t.applyLimits(r.String)
	case r.Password != nil:
		t.Kind = KindPassword
		t.applyLimits(r.Password)
	case r.Int != nil:
		t.Kind = KindInt
		t.applyLimits(r.Int)
	case r.Enum != nil:
		t.Kind = KindEnum
		for _, e := range r.Enum.Entries {
			t.Entries = append(t.Entries, EnumEntry{Value: e.Value, NiceValue: e.NiceValue})
		}
	case r.Bool != nil:
		t.Kind = KindBool
		t.TrueValue, t.FalseValue = r.Bool.True, r.Bool.False
	case r.IP != nil:
		t.Kind = KindIP
	case r.IPList != nil:
		t.Kind = KindIPList
	case r.Hostname != nil:
		t.Kind = KindHostname
	case r.TextArea != nil:
		t.Kind = KindTextArea
	}
	return t
}

func (t *ParameterType) applyLimits(l *rawLimits) {
	if n, err := strconv.Atoi(l.MaxLen); err == nil {
		t.MaxLen = &n
	}
	if n, err := strconv.ParseInt(l.Min, 10, 64); err == nil {
		t.Min = &n
	}
	if n, err := strconv.ParseInt(l.Max, 10, 64); err == nil {
		t.Max = &n
	}
	for _, r := range l.Ranges {
		t.Ranges = append(t.Ranges, r.Value)
	}
}
