package inventory

import "testing"

func TestAttachmentPathIsPureAndStable(t *testing.T) {
	first := AttachmentPath("inventario-hospital", "ROT-0421", 0)
	second := AttachmentPath("inventario-hospital", "ROT-0421", 0)
	if first != second {
		t.Fatalf("path not stable across calls: %q vs %q", first, second)
	}
	if first != "rotulos/inventario-hospital/ROT-0421/ROT-0421_01.jpg" {
		t.Fatalf("unexpected path %q", first)
	}
}

func TestAttachmentPathDistinguishesIndexes(t *testing.T) {
	p0 := AttachmentPath("app", "ROT-1", 0)
	p2 := AttachmentPath("app", "ROT-1", 2)
	if p0 == p2 {
		t.Fatal("expected distinct paths per index")
	}
	if p2 != "rotulos/app/ROT-1/ROT-1_03.jpg" {
		t.Fatalf("unexpected path %q", p2)
	}
}

func TestAttachmentPathSanitizesUnsafeCodes(t *testing.T) {
	path := AttachmentPath("Inventario Hospital", "señal/42", 0)
	if path != "rotulos/inventario_hospital/senal_42/senal_42_01.jpg" {
		t.Fatalf("unexpected sanitized path %q", path)
	}
}
