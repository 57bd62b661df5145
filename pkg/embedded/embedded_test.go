package embedded

import (
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"data/animations/walk.yaml": {Data: []byte("clips: []\n")},
		"data/animations/fade.yaml": {Data: []byte("clips: []\n")},
		"data/reanim/Sample.reanim": {Data: []byte("<fps>12</fps>")},
	}
}

// TestNotInitialized 未初始化时所有访问都返回 ErrNotInitialized
func TestNotInitialized(t *testing.T) {
	Init(nil)

	if _, err := ReadFile("data/animations/walk.yaml"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
	if _, err := Sub("data/animations"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized from Sub(), got %v", err)
	}
	if Exists("data/animations/walk.yaml") {
		t.Error("Expected Exists() to be false before Init()")
	}
}

// TestReadFile 路径标准化与前缀校验
func TestReadFile(t *testing.T) {
	Init(testFS())
	defer Init(nil)

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"plain", "data/animations/walk.yaml", false},
		{"dot prefix", "./data/animations/walk.yaml", false},
		{"wrong prefix", "assets/walk.yaml", true},
		{"missing file", "data/animations/run.yaml", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := ReadFile(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadFile(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if !tt.wantErr && string(data) != "clips: []\n" {
				t.Errorf("Unexpected content %q", data)
			}
		})
	}
}

// TestGlobAndExists 文件匹配和存在性检查
func TestGlobAndExists(t *testing.T) {
	Init(testFS())
	defer Init(nil)

	matches, err := Glob("data/animations/*.yaml")
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("Expected 2 matches, got %v", matches)
	}

	if !Exists("data/reanim/Sample.reanim") {
		t.Error("Expected reanim file to exist")
	}
	if Exists("data/reanim/Missing.reanim") {
		t.Error("Expected missing reanim file to be reported absent")
	}
	if Exists("reanim/Sample.reanim") {
		t.Error("Expected paths outside data/ to be rejected")
	}
}

// TestSub 子文件系统以目录为根
func TestSub(t *testing.T) {
	Init(testFS())
	defer Init(nil)

	sub, err := Sub("data/animations")
	if err != nil {
		t.Fatalf("Sub failed: %v", err)
	}
	if _, err := fs.Stat(sub, "fade.yaml"); err != nil {
		t.Errorf("Expected fade.yaml at sub root: %v", err)
	}
}
