package request

import "testing"

func TestValidateRequiresOperandForInstall(t *testing.T) {
	r := Request{Verb: VerbInstall}
	if err := r.Validate(); err == nil {
		t.Fatal("expected install with no operands to fail validation")
	}
}

func TestValidateAcceptsInstallWithArchive(t *testing.T) {
	r := Request{Verb: VerbInstall, Operands: []string{"t1_1.0_amd64.deb"}}
	if err := r.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateCompareVersionsNeedsExactlyTwo(t *testing.T) {
	r := Request{Verb: VerbCompareVersions, Operands: []string{"1.0"}}
	if err := r.Validate(); err == nil {
		t.Fatal("expected compare-versions with one operand to fail validation")
	}

	r.Operands = []string{"1.0", "1.1"}
	if err := r.Validate(); err != nil {
		t.Fatalf("unexpected error with two operands: %v", err)
	}
}

func TestValidateListHooksNeedsNoOperand(t *testing.T) {
	r := Request{Verb: VerbListHooks}
	if err := r.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
