package wat

import "fmt"

// valType codes, per the WASM binary format.
const (
	valI32 byte = 0x7F
	valI64 byte = 0x7E
)

// funcType is one function signature, deduplicated by the type section.
type funcType struct {
	params  []byte
	results []byte
}

type importDef struct {
	module, field string
	typeIdx       uint32
}

type funcDef struct {
	typeIdx uint32
	instrs  []*node
}

type exportKind byte

const (
	exportFunc exportKind = 0x00
	exportMem  exportKind = 0x02
)

type exportDef struct {
	name string
	kind exportKind
	idx  uint32
}

type module struct {
	types   []funcType
	imports []importDef
	funcs   []funcDef
	exports []exportDef

	hasMemory bool
	memMin    uint32

	// funcIndex maps an optional $identifier to its index in the combined
	// import+defined function index space.
	funcIndex map[string]uint32
}

// buildModule walks the module's top-level forms (import/memory/func) into
// a module ready for binary encoding.
func buildModule(forms []*node) (*module, error) {
	m := &module{funcIndex: map[string]uint32{}}

	// Imports occupy the low end of the function index space, so they must
	// be assigned before any defined function gets an index.
	for _, f := range forms {
		if len(f.children) == 0 || f.children[0].text != "import" {
			continue
		}
		if err := m.addImport(f); err != nil {
			return nil, err
		}
	}

	for _, f := range forms {
		if len(f.children) == 0 {
			continue
		}
		switch f.children[0].text {
		case "import":
			// handled above
		case "memory":
			if err := m.addMemory(f); err != nil {
				return nil, err
			}
		case "func":
			if err := m.addFunc(f); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("wat: unsupported top-level form %q", f.children[0].text)
		}
	}
	return m, nil
}

func (m *module) addImport(f *node) error {
	if len(f.children) < 4 {
		return fmt.Errorf("wat: malformed import")
	}
	modName, field := f.children[1].text, f.children[2].text
	sig := f.children[3]
	if len(sig.children) == 0 || sig.children[0].text != "func" {
		return fmt.Errorf("wat: only function imports are supported")
	}

	rest := sig.children[1:]
	var id string
	if len(rest) > 0 && len(rest[0].children) == 0 && hasPrefix(rest[0].text, "$") {
		id = rest[0].text
		rest = rest[1:]
	}

	ft, err := parseSignature(rest)
	if err != nil {
		return err
	}
	typeIdx := m.internType(ft)

	idx := uint32(len(m.imports))
	m.imports = append(m.imports, importDef{module: modName, field: field, typeIdx: typeIdx})
	if id != "" {
		m.funcIndex[id] = idx
	}
	return nil
}

func (m *module) addMemory(f *node) error {
	var minPages uint32
	var found bool
	for _, c := range f.children[1:] {
		if len(c.children) > 0 && c.children[0].text == "export" {
			name := c.children[1].text
			m.exports = append(m.exports, exportDef{name: name, kind: exportMem, idx: 0})
			continue
		}
		if len(c.children) == 0 {
			v, err := parseInt(c.text)
			if err != nil {
				return err
			}
			minPages = uint32(v)
			found = true
		}
	}
	if !found {
		return fmt.Errorf("wat: memory declaration missing an initial page count")
	}
	m.hasMemory = true
	m.memMin = minPages
	return nil
}

func (m *module) addFunc(f *node) error {
	rest := f.children[1:]

	var exportName string
	var sigNodes []*node
	var body []*node
	for _, c := range rest {
		if len(c.children) == 0 {
			continue // an identifier on the func itself; unused by its callers
		}
		switch c.children[0].text {
		case "export":
			exportName = c.children[1].text
		case "param", "result":
			sigNodes = append(sigNodes, c)
		default:
			body = append(body, c)
		}
	}

	ft, err := parseSignature(sigNodes)
	if err != nil {
		return err
	}
	typeIdx := m.internType(ft)

	idx := uint32(len(m.imports) + len(m.funcs))
	m.funcs = append(m.funcs, funcDef{typeIdx: typeIdx, instrs: body})
	if exportName != "" {
		m.exports = append(m.exports, exportDef{name: exportName, kind: exportFunc, idx: idx})
	}
	return nil
}

// parseSignature reads a mix of (param t...) and (result t) forms into one
// funcType.
func parseSignature(nodes []*node) (funcType, error) {
	var ft funcType
	for _, n := range nodes {
		switch n.children[0].text {
		case "param":
			for _, t := range n.children[1:] {
				vt, err := valType(t.text)
				if err != nil {
					return ft, err
				}
				ft.params = append(ft.params, vt)
			}
		case "result":
			for _, t := range n.children[1:] {
				vt, err := valType(t.text)
				if err != nil {
					return ft, err
				}
				ft.results = append(ft.results, vt)
			}
		default:
			return ft, fmt.Errorf("wat: expected param/result, got %q", n.children[0].text)
		}
	}
	return ft, nil
}

func valType(s string) (byte, error) {
	switch s {
	case "i32":
		return valI32, nil
	case "i64":
		return valI64, nil
	default:
		return 0, fmt.Errorf("wat: unsupported value type %q", s)
	}
}

// internType returns ft's index in the type section, adding it if this is
// the first function with this exact signature.
func (m *module) internType(ft funcType) uint32 {
	for i, existing := range m.types {
		if equalBytes(existing.params, ft.params) && equalBytes(existing.results, ft.results) {
			return uint32(i)
		}
	}
	m.types = append(m.types, ft)
	return uint32(len(m.types) - 1)
}

func equalBytes(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
