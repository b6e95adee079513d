package peer

import "testing"

func TestNewPeerStartsInStateNew(t *testing.T) {
	p, err := New(0x02)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.State != StateNew {
		t.Fatalf("got state %v, want StateNew", p.State)
	}
	if p.CSN == nil {
		t.Fatalf("expected a seeded CSN")
	}
	if p.OwnSession != nil {
		t.Fatalf("session keystore must not be created eagerly")
	}
}

func TestEnsureSessionIsLazyAndStable(t *testing.T) {
	p, err := New(0x03)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ks1, err := p.EnsureSession()
	if err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	ks2, err := p.EnsureSession()
	if err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	if ks1 != ks2 {
		t.Fatalf("EnsureSession created a second keystore")
	}
}
