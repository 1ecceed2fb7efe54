package parser

import (
	"regexp"
	"strings"

	"github.com/wouteroostervld/unitygraph/pkg/unity"
)

const (
	// methodAttributeWindow is how far back from a method declaration attributes are collected
	methodAttributeWindow = 200
	// fieldAttributeWindow is how far back from a field declaration attributes are collected
	fieldAttributeWindow = 100
)

// UnityMessages is the fixed set of lifecycle callbacks Unity invokes by name
var UnityMessages = map[string]bool{
	"Awake": true, "Start": true, "Update": true, "FixedUpdate": true,
	"LateUpdate": true, "OnEnable": true, "OnDisable": true, "OnDestroy": true,
	"OnApplicationQuit": true, "OnCollisionEnter": true, "OnCollisionExit": true,
	"OnTriggerEnter": true, "OnTriggerExit": true,
}

// statementKeywords never start a declaration
var statementKeywords = map[string]bool{
	"if": true, "for": true, "foreach": true, "while": true, "switch": true,
	"catch": true, "using": true, "lock": true, "return": true, "new": true,
	"throw": true, "else": true, "yield": true, "await": true, "case": true,
	"goto": true, "namespace": true, "var": true,
}

var modifierKeywords = map[string]bool{
	"public": true, "private": true, "protected": true, "internal": true,
	"static": true, "virtual": true, "override": true, "abstract": true,
	"sealed": true, "async": true, "extern": true, "unsafe": true,
	"partial": true, "readonly": true, "const": true, "volatile": true,
	"event": true,
}

// CSharpParser scans C# source for structural signals with regular
// expressions. A declaration may start anywhere after whitespace or one of
// `;{}`, so single-line class bodies are covered. It is not a compiler front
// end: attributes are attributed by fixed backward windows and multi-line
// signatures are missed.
type CSharpParser struct {
	namespaceRegex *regexp.Regexp
	classRegex     *regexp.Regexp
	baseListRegex  *regexp.Regexp
	methodRegex    *regexp.Regexp
	fieldRegex     *regexp.Regexp
	attributeRegex *regexp.Regexp
	componentRegex *regexp.Regexp
}

// NewCSharpParser compiles the scanner patterns
func NewCSharpParser() *CSharpParser {
	return &CSharpParser{
		namespaceRegex: regexp.MustCompile(`\bnamespace\s+([\w.]+)`),
		classRegex: regexp.MustCompile(
			`(?:(?:public|private|protected|internal)\s+)?(?:(?:static|sealed|abstract|partial)\s+)*\bclass\s+(\w+)`,
		),
		baseListRegex: regexp.MustCompile(`^\s*(?:<[^>{]*>)?\s*:\s*([^{]+)`),
		methodRegex: regexp.MustCompile(
			`(?m)(?:^|[\s;{}])[ \t]*(?:\[[^\]\n]*\][ \t]*)*((?:(?:public|private|protected|internal|static|virtual|override|abstract|sealed|async|extern|unsafe|new|partial)[ \t]+)*)([\w<>\[\],.]+)[ \t]+(\w+)[ \t]*\(([^)\n]*)\)`,
		),
		fieldRegex: regexp.MustCompile(
			`(?m)(?:^|[\s;{}])[ \t]*(?:\[[^\]\n]*\][ \t]*)*((?:(?:public|private|protected|internal|static|readonly|const|volatile|new|event)[ \t]+)*)([\w<>\[\],.]+)[ \t]+(\w+)[ \t]*(?:;|=)`,
		),
		attributeRegex: regexp.MustCompile(`\[(\w+)(?:\((?:[^()\]]|\([^()]*\))*\))?\]`),
		componentRegex: regexp.MustCompile(
			`(?:GetComponent|AddComponent)<\s*(\w+)\s*>|RequireComponent\(\s*typeof\(\s*(\w+)\s*\)`,
		),
	}
}

// Parse extracts a Script record from source. It returns false when no
// class declaration is found. The AssetID is left for the caller to set.
func (p *CSharpParser) Parse(source, filePath string) (*unity.Script, bool) {
	classLoc := p.classRegex.FindStringSubmatchIndex(source)
	if classLoc == nil {
		return nil, false
	}

	script := &unity.Script{
		ClassName:       source[classLoc[2]:classLoc[3]],
		BaseTypes:       []string{},
		Methods:         []unity.Method{},
		Fields:          []unity.Field{},
		UnityMessages:   []string{},
		ComponentUsages: []string{},
	}

	if m := p.namespaceRegex.FindStringSubmatch(source); m != nil {
		script.Namespace = m[1]
	}

	if m := p.baseListRegex.FindStringSubmatch(source[classLoc[1]:]); m != nil {
		for _, b := range strings.Split(m[1], ",") {
			if b = strings.TrimSpace(b); b != "" {
				script.BaseTypes = append(script.BaseTypes, b)
			}
		}
	}

	script.Methods = p.parseMethods(source)
	for _, method := range script.Methods {
		if method.IsUnityMessage {
			script.UnityMessages = append(script.UnityMessages, method.Name)
		}
	}

	script.Fields = p.parseFields(source)
	script.ComponentUsages = p.parseComponentUsages(source)

	return script, true
}

func (p *CSharpParser) parseMethods(source string) []unity.Method {
	methods := []unity.Method{}
	for _, loc := range p.methodRegex.FindAllStringSubmatchIndex(source, -1) {
		returnType := source[loc[4]:loc[5]]
		name := source[loc[6]:loc[7]]
		if statementKeywords[returnType] || statementKeywords[name] || modifierKeywords[returnType] {
			continue
		}

		methods = append(methods, unity.Method{
			Name:           name,
			ReturnType:     returnType,
			Parameters:     parseParameters(source[loc[8]:loc[9]]),
			Attributes:     p.attributesBefore(source, loc[2], methodAttributeWindow),
			IsUnityMessage: UnityMessages[name],
		})
	}
	return methods
}

func (p *CSharpParser) parseFields(source string) []unity.Field {
	fields := []unity.Field{}
	for _, loc := range p.fieldRegex.FindAllStringSubmatchIndex(source, -1) {
		fieldType := source[loc[4]:loc[5]]
		name := source[loc[6]:loc[7]]
		if statementKeywords[fieldType] || statementKeywords[name] || modifierKeywords[fieldType] {
			continue
		}

		attrs := p.attributesBefore(source, loc[2], fieldAttributeWindow)
		fields = append(fields, unity.Field{
			Name:              name,
			Type:              fieldType,
			Attributes:        attrs,
			IsSerializedField: contains(attrs, "SerializeField"),
		})
	}
	return fields
}

// attributesBefore collects attribute names in the window chars preceding pos
func (p *CSharpParser) attributesBefore(source string, pos, window int) []string {
	start := max(0, pos-window)
	attrs := []string{}
	for _, m := range p.attributeRegex.FindAllStringSubmatch(source[start:pos], -1) {
		attrs = append(attrs, m[1])
	}
	return attrs
}

func (p *CSharpParser) parseComponentUsages(source string) []string {
	usages := []string{}
	seen := make(map[string]bool)
	for _, m := range p.componentRegex.FindAllStringSubmatch(source, -1) {
		name := m[1]
		if name == "" {
			name = m[2]
		}
		if !seen[name] {
			seen[name] = true
			usages = append(usages, name)
		}
	}
	return usages
}

// parseParameters splits a parameter list; type is the first token, name the second
func parseParameters(list string) []unity.Parameter {
	params := []unity.Parameter{}
	for _, raw := range strings.Split(list, ",") {
		parts := strings.Fields(raw)
		if len(parts) == 0 {
			continue
		}
		param := unity.Parameter{Type: parts[0]}
		if len(parts) > 1 {
			param.Name = parts[1]
		}
		params = append(params, param)
	}
	return params
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
