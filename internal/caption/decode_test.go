package caption

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/unicode"
)

func TestDecodeText(t *testing.T) {
	const text = "1\n00:00:01,000 --> 00:00:02,000\nXin chào\n"

	utf16le, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(text)
	if err != nil {
		t.Fatalf("failed to encode UTF-16LE fixture: %v", err)
	}
	utf16be, err := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder().String(text)
	if err != nil {
		t.Fatalf("failed to encode UTF-16BE fixture: %v", err)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"plain utf-8", []byte(text)},
		{"utf-8 with bom", append([]byte{0xEF, 0xBB, 0xBF}, text...)},
		{"utf-16le with bom", []byte(utf16le)},
		{"utf-16be with bom", []byte(utf16be)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeText(tt.data)
			if err != nil {
				t.Fatalf("DecodeText returned error: %v", err)
			}
			if got != text {
				t.Errorf("DecodeText = %q, want %q", got, text)
			}
		})
	}
}

func TestDecodeTextInvalidUTF8(t *testing.T) {
	// Latin-1 encoded "café"
	if _, err := DecodeText([]byte{'c', 'a', 'f', 0xE9}); err == nil {
		t.Error("expected error for non UTF-8 input")
	}
}

func TestReadTextErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(dir, "missing.srt")
		_, err := ReadText(path)
		if !errors.Is(err, ErrFatalInput) {
			t.Fatalf("expected ErrFatalInput, got %v", err)
		}
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected underlying not-exist error, got %v", err)
		}
	})

	t.Run("undecodable content", func(t *testing.T) {
		path := filepath.Join(dir, "latin1.srt")
		content := []byte("1\n00:00:01,000 --> 00:00:02,000\nD\xe9j\xe0 vu, tr\xe8s bien, o\xf9 est le caf\xe9?\n")
		if err := os.WriteFile(path, content, 0644); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}

		_, err := ReadText(path)
		var ie *InputError
		if !errors.As(err, &ie) {
			t.Fatalf("expected *InputError, got %T (%v)", err, err)
		}
		if ie.Path != path {
			t.Errorf("InputError.Path = %q, want %q", ie.Path, path)
		}
		if !errors.Is(err, ErrFatalInput) {
			t.Errorf("expected ErrFatalInput, got %v", err)
		}
	})
}

func TestConvertSRTFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "show.S01E01.srt")
	content := "\xEF\xBB\xBF1\r\n00:00:01,000 --> 00:00:02,000\r\nHello\r\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	res, err := ConvertSRTFile(path, ParseOptions{})
	if err != nil {
		t.Fatalf("ConvertSRTFile failed: %v", err)
	}
	if len(res.Records) != 1 || res.Records[0].Text != "Hello" || res.Records[0].Start != 1 {
		t.Errorf("unexpected records: %+v", res.Records)
	}
}
