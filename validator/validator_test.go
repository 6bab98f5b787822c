package validator

import "testing"

type fakeModule struct {
	funcs   []string
	mems    []string
	imports []Import
}

func (f fakeModule) ExportedFunctionNames() []string { return f.funcs }
func (f fakeModule) ExportedMemoryNames() []string    { return f.mems }
func (f fakeModule) ImportedFunctions() []Import      { return f.imports }

func validContract() fakeModule {
	return fakeModule{
		funcs: []string{"deploy", "main", "hash_type"},
		mems:  []string{"memory"},
		imports: []Import{
			{Module: "ethereum", Name: "useGas"},
			{Module: "ethereum", Name: "finish"},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := Validate(validContract(), false); err != nil {
		t.Fatalf("expected valid contract to pass, got %v", err)
	}
}

func TestValidate_MissingMemory(t *testing.T) {
	mod := validContract()
	mod.mems = nil
	if err := Validate(mod, false); err == nil {
		t.Fatal("expected error for missing memory export")
	}
}

func TestValidate_MissingExport(t *testing.T) {
	mod := validContract()
	mod.funcs = []string{"deploy", "main"}
	err := Validate(mod, false)
	if err == nil {
		t.Fatal("expected error for missing hash_type export")
	}
}

func TestValidate_EmptyContractRejected(t *testing.T) {
	mod := fakeModule{}
	if err := Validate(mod, false); err == nil {
		t.Fatal("expected an empty module to be rejected")
	}
}

func TestValidate_ExtraExport(t *testing.T) {
	mod := validContract()
	mod.funcs = append(mod.funcs, "backdoor")
	if err := Validate(mod, false); err == nil {
		t.Fatal("expected error for exporting a function outside the BCI")
	}
}

func TestValidate_UnknownImportModule(t *testing.T) {
	mod := validContract()
	mod.imports = append(mod.imports, Import{Module: "env", Name: "memcpy"})
	if err := Validate(mod, false); err == nil {
		t.Fatal("expected error for import from an unrecognized module")
	}
}

func TestValidate_UnknownImportName(t *testing.T) {
	mod := validContract()
	mod.imports = append(mod.imports, Import{Module: "ethereum", Name: "notARealImport"})
	if err := Validate(mod, false); err == nil {
		t.Fatal("expected error for an import name outside the registry")
	}
}

func TestValidate_DebugImportRejectedWhenDisabled(t *testing.T) {
	mod := validContract()
	mod.imports = append(mod.imports, Import{Module: "debug", Name: "print32"})
	if err := Validate(mod, false); err == nil {
		t.Fatal("expected error for a debug import when debug imports are disabled")
	}
}

func TestValidate_DebugImportAcceptedWhenEnabled(t *testing.T) {
	mod := validContract()
	mod.imports = append(mod.imports, Import{Module: "debug", Name: "print32"})
	if err := Validate(mod, true); err != nil {
		t.Fatalf("expected a debug import to pass when debug imports are enabled, got %v", err)
	}
}
