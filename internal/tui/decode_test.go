package tui

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"testing"
)

func TestTryDecodeValue_StdBase64(t *testing.T) {
	decoded, ok := TryDecodeValue("aGVsbG8gd29ybGQ=")
	if !ok {
		t.Fatal("expected decode success")
	}
	if decoded != "hello world" {
		t.Errorf("got %q, want %q", decoded, "hello world")
	}
}

func TestTryDecodeValue_Base64WithNewlines(t *testing.T) {
	decoded, ok := TryDecodeValue("aGVsbG8g\nd29ybGQ=")
	if !ok {
		t.Fatal("expected decode success")
	}
	if decoded != "hello world" {
		t.Errorf("got %q, want %q", decoded, "hello world")
	}
}

func TestTryDecodeValue_URLBase64(t *testing.T) {
	// ">>>>>>" in URL-safe base64: std gives "Pj4+Pj4+", URL-safe gives "Pj4-Pj4-"
	decoded, ok := TryDecodeValue("Pj4-Pj4-")
	if !ok {
		t.Fatal("expected decode success")
	}
	if decoded != ">>>>>>" {
		t.Errorf("got %q, want %q", decoded, ">>>>>>")
	}
}

func TestTryDecodeValue_RawBase64(t *testing.T) {
	// "hello world" without padding
	decoded, ok := TryDecodeValue("aGVsbG8gd29ybGQ")
	if !ok {
		t.Fatal("expected decode success")
	}
	if decoded != "hello world" {
		t.Errorf("got %q, want %q", decoded, "hello world")
	}
}

func TestTryDecodeValue_GzipBase64(t *testing.T) {
	payload := "#!/bin/bash\necho imported\n"
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, _ = gz.Write([]byte(payload))
	_ = gz.Close()
	b64 := base64.StdEncoding.EncodeToString(buf.Bytes())

	decoded, ok := TryDecodeValue(b64)
	if !ok {
		t.Fatal("expected decode success")
	}
	if decoded != payload {
		t.Errorf("got %q, want %q", decoded, payload)
	}
}

func TestTryDecodeValue_Hex(t *testing.T) {
	decoded, ok := TryDecodeValue("68656c6c6f20776f726c64")
	if !ok {
		t.Fatal("expected decode success")
	}
	if decoded != "hello world" {
		t.Errorf("got %q, want %q", decoded, "hello world")
	}
}

func TestTryDecodeValue_ShortValues(t *testing.T) {
	// Ordinary short cells must never be treated as encoded payloads,
	// even when they happen to be valid hex or base64.
	for _, v := range []string{"", "30", "2024", "null", "abcd"} {
		if _, ok := TryDecodeValue(v); ok {
			t.Errorf("expected decode failure for short value %q", v)
		}
	}
}

func TestTryDecodeValue_PlainText(t *testing.T) {
	_, ok := TryDecodeValue("New York City")
	if ok {
		t.Error("expected decode failure for plain text")
	}
}

func TestTryDecodeValue_NumericCell(t *testing.T) {
	// A long digit run is valid hex but decodes to control bytes.
	_, ok := TryDecodeValue("123456789012")
	if ok {
		t.Error("expected decode failure for numeric cell")
	}
}

func TestTryDecodeValue_NullBytesInOutput(t *testing.T) {
	b64 := base64.StdEncoding.EncodeToString([]byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00})
	_, ok := TryDecodeValue(b64)
	if ok {
		t.Error("expected decode failure for null bytes in output")
	}
}

func TestTryDecodeValue_OddLengthHex(t *testing.T) {
	_, ok := TryDecodeValue("68656c6c6f2")
	if ok {
		t.Error("expected decode failure for odd-length hex")
	}
}

// Gzip magic bytes with an invalid stream must not decode: decompression
// fails and the raw bytes contain control characters.
func TestTryDecodeValue_GzipMagicButInvalidGzip(t *testing.T) {
	fakeGzip := []byte{0x1f, 0x8b, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	b64 := base64.StdEncoding.EncodeToString(fakeGzip)
	_, ok := TryDecodeValue(b64)
	if ok {
		t.Error("expected decode failure for invalid gzip")
	}
}
