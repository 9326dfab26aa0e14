package gcs

import "testing"

func TestParseURI(t *testing.T) {
	tests := []struct {
		name       string
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{name: "nested object", uri: "gs://posto-exports/exports/2024/vendas.csv", wantBucket: "posto-exports", wantObject: "exports/2024/vendas.csv"},
		{name: "top-level object", uri: "gs://b/file.csv", wantBucket: "b", wantObject: "file.csv"},
		{name: "missing scheme", uri: "s3://b/file.csv", wantErr: true},
		{name: "bucket only", uri: "gs://b", wantErr: true},
		{name: "empty object", uri: "gs://b/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, object, err := ParseURI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseURI(%q) error = %v, wantErr %v", tt.uri, err, tt.wantErr)
			}
			if bucket != tt.wantBucket || object != tt.wantObject {
				t.Errorf("ParseURI(%q) = (%q, %q), want (%q, %q)", tt.uri, bucket, object, tt.wantBucket, tt.wantObject)
			}
		})
	}
}

func TestURIHelpers(t *testing.T) {
	if got := URI("b", "/exports/a.csv"); got != "gs://b/exports/a.csv" {
		t.Errorf("URI = %q", got)
	}
	if got := ObjectName("exports/", "a.csv"); got != "exports/a.csv" {
		t.Errorf("ObjectName = %q", got)
	}
	if got := ObjectName("", "a.csv"); got != "a.csv" {
		t.Errorf("ObjectName without prefix = %q", got)
	}
	if got := Filename("gs://b/exports/a.csv"); got != "a.csv" {
		t.Errorf("Filename = %q", got)
	}
}
