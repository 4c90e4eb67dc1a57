package artifact

import "testing"

func TestKeyIsContentTyped(t *testing.T) {
	cases := []struct {
		kind Kind
		want string
	}{
		{KindDXF, "dxf/job-1.dxf"},
		{KindGCode, "gcode/job-1.gcode"},
		{KindZIP, "zip/job-1.zip"},
		{KindDrilling, "drilling/job-1.zip"},
	}
	for _, c := range cases {
		if got := Key(c.kind, "job-1"); got != c.want {
			t.Errorf("Key(%s, job-1) = %s, want %s", c.kind, got, c.want)
		}
	}
}

func TestContentTypes(t *testing.T) {
	if KindDXF.contentType() != "application/dxf" {
		t.Error("expected dxf content type application/dxf")
	}
	if KindGCode.contentType() != "text/plain" {
		t.Error("expected gcode content type text/plain")
	}
	if KindZIP.contentType() != "application/zip" {
		t.Error("expected zip content type application/zip")
	}
}
