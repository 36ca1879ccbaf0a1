package wesscdrs

import (
	"bytes"
	"compress/gzip"
	"strings"
	"testing"
)

func TestDetectDataType(t *testing.T) {
	var gz bytes.Buffer
	w := gzip.NewWriter(&gz)
	if _, err := w.Write([]byte("GENE\tPSC\nA1CF\t0.01\n")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	for _, v := range []struct {
		data     []byte
		expected DataType
	}{
		{gz.Bytes(), DataTypeGzip},
		{[]byte("GENE\tPSC\nA1CF\t0.01\n"), DataTypeNoCompression},
		{[]byte{0x42, 0x5a, 0x68, 0x39, 0x31, 0x41}, DataTypeBZip2},
		{[]byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00, 0x00}, DataTypeXZ},
	} {
		dt, err := DetectDataType(bytes.NewReader(v.data))
		if err != nil {
			t.Fatal(err)
		}
		if dt != v.expected {
			t.Fatalf("DetectDataType: got %d, expected %d", dt, v.expected)
		}
	}
}

func TestDetermineDelimiter(t *testing.T) {
	tab := "group\tn_cell\tassoc_mcp\nhepatocyte\t1821\t0.001\nstellate cell\t150\t0.02\n"
	if d := DetermineDelimiter(strings.NewReader(tab)); d != '\t' {
		t.Fatalf("expected tab, got %q", d)
	}
}
