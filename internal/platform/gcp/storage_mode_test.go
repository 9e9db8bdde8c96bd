package gcp

import "testing"

func TestObjectStorageConfigFromEnvFallsBackToEmulator(t *testing.T) {
	t.Setenv("GCS_BUCKET_NAME", "coursehub")
	t.Setenv("OBJECT_STORAGE_MODE", "")
	t.Setenv("STORAGE_EMULATOR_HOST", "http://fake-gcs:4443")
	cfg, err := ObjectStorageConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.IsEmulatorMode() {
		t.Fatalf("expected emulator mode, got %s", cfg.Mode)
	}
}

func TestObjectStorageConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  ObjectStorageConfig
		ok   bool
	}{
		{"gcs", ObjectStorageConfig{Mode: ObjectStorageModeGCS, BucketName: "b"}, true},
		{"missing bucket", ObjectStorageConfig{Mode: ObjectStorageModeGCS}, false},
		{"emulator without host", ObjectStorageConfig{Mode: ObjectStorageModeGCSEmulator, BucketName: "b"}, false},
		{"emulator bad host", ObjectStorageConfig{Mode: ObjectStorageModeGCSEmulator, BucketName: "b", EmulatorHost: "fake-gcs"}, false},
		{"bad mode", ObjectStorageConfig{Mode: "s3", BucketName: "b"}, false},
	}
	for _, tc := range cases {
		err := ValidateObjectStorageConfig(tc.cfg)
		if (err == nil) != tc.ok {
			t.Fatalf("%s: ok=%v err=%v", tc.name, tc.ok, err)
		}
	}
}

func TestInvalidModeFromEnv(t *testing.T) {
	t.Setenv("GCS_BUCKET_NAME", "coursehub")
	t.Setenv("OBJECT_STORAGE_MODE", "s3")
	if _, err := ObjectStorageConfigFromEnv(); err == nil {
		t.Fatalf("expected invalid mode error")
	}
}

func TestPublicURL(t *testing.T) {
	bs := &bucketService{bucket: "coursehub"}
	if got := bs.GetPublicURL("/uploads/image/a.png"); got != "https://storage.googleapis.com/coursehub/uploads/image/a.png" {
		t.Fatalf("unexpected url %q", got)
	}
	bs.cdnDomain = "cdn.example.com"
	if got := bs.GetPublicURL("uploads/image/a.png"); got != "https://cdn.example.com/uploads/image/a.png" {
		t.Fatalf("unexpected cdn url %q", got)
	}
	bs.cdnDomain = ""
	bs.mode = ObjectStorageModeGCSEmulator
	bs.emulatorHost = "http://localhost:4443"
	if got := bs.GetPublicURL("a b.png"); got != "http://localhost:4443/storage/v1/b/coursehub/o/a%20b.png?alt=media" {
		t.Fatalf("unexpected emulator url %q", got)
	}
	if ContentTypeForKey("x/Y.JPG") != "image/jpeg" || ContentTypeForKey("a.bin") != "" {
		t.Fatalf("unexpected content types")
	}
}
