package l2cap

import (
	"bytes"
	"io"
	"testing"
)

func TestPipeDatagramFraming(t *testing.T) {
	a, b := Pipe()
	defer a.Close()

	if _, err := a.Write([]byte{1, 2, 3}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := a.Write([]byte{4}); err != nil {
		t.Fatalf("write: %v", err)
	}

	buf := make([]byte, 16)
	n, err := b.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(buf[:n], []byte{1, 2, 3}) {
		t.Errorf("expected first datagram [01 02 03] but got [% X]", buf[:n])
	}
	n, err = b.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(buf[:n], []byte{4}) {
		t.Errorf("datagram boundaries must be preserved, got [% X]", buf[:n])
	}
}

func TestPipeClose(t *testing.T) {
	a, b := Pipe()
	a.Write([]byte{7})
	a.Close()

	buf := make([]byte, 16)
	if n, err := b.Read(buf); err != nil || n != 1 {
		t.Errorf("queued datagram should survive close, got n=%d err=%v", n, err)
	}
	if _, err := b.Read(buf); err != io.EOF {
		t.Errorf("expected EOF after close but got %v", err)
	}
	if _, err := b.Write([]byte{8}); err == nil {
		t.Errorf("expected write on closed pipe to fail")
	}
}

func TestPipeSecurityLevel(t *testing.T) {
	a, b := Pipe()
	defer a.Close()
	if a.SecurityLevel() != SecurityNone {
		t.Errorf("expected new pipe at SecurityNone")
	}
	a.SetSecurityLevel(SecurityMedium)
	if b.SecurityLevel() != SecurityMedium {
		t.Errorf("both ends should observe the new level")
	}
}

func TestPipeBufferFull(t *testing.T) {
	a, _ := Pipe()
	defer a.Close()
	for i := 0; i < bufDepth; i++ {
		if _, err := a.Write([]byte{byte(i)}); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}
	if _, err := a.Write([]byte{0xFF}); err == nil {
		t.Errorf("expected overflow write to fail rather than block")
	}
}
